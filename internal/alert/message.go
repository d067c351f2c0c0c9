package alert

// Message is the fixed text sent to every user in the audience. Kept short:
// it must survive single-segment SMS delivery.
const Message = "URGENT: Disaster Alert in your area.\n\n" +
	"Stay indoors if possible and avoid risky areas.\n\n" +
	"Your safety is our priority. Stay safe, stay strong!"
