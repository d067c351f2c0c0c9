package models

// UserRecord is a row from the user directory. The directory is read-only to
// this service; Pincode may be empty when the user never supplied one.
type UserRecord struct {
	ID      string
	Contact string // phone-number-like, possibly without a country code
	Pincode PostalCode
}

// Candidate pairs a directory user with their resolved home coordinates.
// Produced only during audience selection, never persisted.
type Candidate struct {
	User  UserRecord
	Point GeoPoint
}

// DispatchResult records the outcome of one message submission.
type DispatchResult struct {
	UserID string
	To     string // normalized E.164-like destination
	Sent   bool
	Err    string // empty when Sent
}

// Outcome is what one orchestrator run reports back. Dispatch is nil when the
// event was not verified (or pincode resolution failed); alerting never fails
// the report path.
type Outcome struct {
	Verified bool
	Reason   string
	Dispatch []DispatchResult
}
