package verify

import (
	"encoding/json"
	"fmt"

	"github.com/jonboulle/clockwork"

	"github.com/mr1hm/go-report-alerts/internal/models"
)

const promptTemplate = `Check if the following disaster report is real by checking current news and social media.
Respond with only "TRUE" if it's currently happening (Today or Yesterday) or "FALSE" if it's outdated or fake.
Also, check for similar disaster incidents within 100km of the provided location.

Title: %s
Description: %s
Location: %s
Date: %s`

// buildPrompt renders the verification prompt for one event. The clock is
// injected so the embedded date is deterministic in tests.
func buildPrompt(event models.DisasterEvent, clock clockwork.Clock) string {
	loc, err := json.Marshal(event.Location)
	if err != nil {
		// A GeoPoint always marshals; keep the prompt well-formed regardless.
		loc = []byte("{}")
	}

	return fmt.Sprintf(promptTemplate,
		event.Title,
		event.Description,
		string(loc),
		clock.Now().Format("2006-01-02"),
	)
}
