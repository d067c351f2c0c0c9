package models

import "fmt"

type MediaKind string

const (
	MediaKindImage MediaKind = "image"
	MediaKindVideo MediaKind = "video"
)

// MIMEType returns the MIME type sent to the analysis service for this kind.
func (k MediaKind) MIMEType() string {
	if k == MediaKindVideo {
		return "video/mp4"
	}
	return "image/jpeg"
}

func ParseMediaKind(s string) (MediaKind, error) {
	switch s {
	case "image":
		return MediaKindImage, nil
	case "video":
		return MediaKindVideo, nil
	default:
		return "", fmt.Errorf("unknown media kind: %q", s)
	}
}

// PostalCode identifies an administrative area. It is the indirection layer
// between coordinates and audience membership: the user directory stores
// pincodes, not raw coordinates.
type PostalCode string

type GeoPoint struct {
	Latitude  float64 `json:"lat"`
	Longitude float64 `json:"lon"`
}

func (p GeoPoint) Validate() error {
	if p.Latitude < -90 || p.Latitude > 90 {
		return fmt.Errorf("latitude out of range: %v", p.Latitude)
	}
	if p.Longitude < -180 || p.Longitude > 180 {
		return fmt.Errorf("longitude out of range: %v", p.Longitude)
	}
	return nil
}

// DisasterEvent is one submitted crowd report. It lives for exactly one
// orchestrator run and is never persisted here; the report itself is stored
// by the upstream report service.
type DisasterEvent struct {
	ID          string // correlation id assigned at ingress
	Title       string
	Description string
	Location    GeoPoint
	MediaURL    string
	MediaKind   MediaKind
}

// Verdict is the output of verification. Reason carries the cause when
// verification could not confirm the event (fetch failure, upstream error,
// or an explicit FALSE from the analysis service).
type Verdict struct {
	Verified bool
	Reason   string
}
