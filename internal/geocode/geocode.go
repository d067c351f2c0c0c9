// Package geocode resolves coordinates to postal codes and back via the
// Google Maps Geocoding API.
package geocode

import (
	"context"

	"github.com/mr1hm/go-report-alerts/internal/models"
)

// Resolver translates between coordinates and postal codes.
type Resolver interface {
	// PincodeFromPoint returns the postal code of the administrative area
	// containing the point. fault.ErrNotFound when the service has no result
	// or no postal_code component for it.
	PincodeFromPoint(ctx context.Context, p models.GeoPoint) (models.PostalCode, error)

	// PointFromPincode returns a representative coordinate for the postal
	// code (the first result's geometry centroid).
	PointFromPincode(ctx context.Context, code models.PostalCode) (models.GeoPoint, error)
}
