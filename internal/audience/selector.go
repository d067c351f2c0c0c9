// Package audience selects which registered users receive an alert for a
// disaster event.
package audience

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/mr1hm/go-report-alerts/internal/directory"
	"github.com/mr1hm/go-report-alerts/internal/geo"
	"github.com/mr1hm/go-report-alerts/internal/geocode"
	"github.com/mr1hm/go-report-alerts/internal/models"
	"github.com/mr1hm/go-report-alerts/internal/observability"
	"github.com/mr1hm/go-report-alerts/internal/worker"
)

const (
	skipNoPincode     = "no_pincode"
	skipResolveFailed = "resolve_failed"
	skipOutOfRadius   = "out_of_radius"
)

// Selector builds the alert audience: every directory user whose home
// pincode resolves to a point within the radius of the disaster's pincode.
type Selector struct {
	resolver geocode.Resolver
	users    directory.UserDirectory
	pool     *worker.Pool
	metrics  *observability.Metrics
}

// NewSelector creates a selector. resolveWorkers bounds concurrent geocoding
// calls; perCallTimeout bounds each one. metrics may be nil.
func NewSelector(resolver geocode.Resolver, users directory.UserDirectory, resolveWorkers int, perCallTimeout time.Duration, metrics *observability.Metrics) *Selector {
	return &Selector{
		resolver: resolver,
		users:    users,
		pool:     worker.NewPool(resolveWorkers, perCallTimeout),
		metrics:  metrics,
	}
}

// SelectWithinRadius returns every user within radiusMeters of the area
// identified by pincode. Failure to resolve the disaster's own point aborts
// selection (no partial audience); failure to resolve one user's point skips
// only that user. Result order is unspecified.
func (s *Selector) SelectWithinRadius(ctx context.Context, pincode models.PostalCode, radiusMeters float64) ([]models.Candidate, error) {
	origin, err := s.resolver.PointFromPincode(ctx, pincode)
	if err != nil {
		return nil, fmt.Errorf("resolving disaster pincode %s: %w", pincode, err)
	}

	users, err := s.users.ListUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing users: %w", err)
	}

	eligible := make([]models.UserRecord, 0, len(users))
	for _, u := range users {
		if u.Pincode == "" {
			slog.Debug("user has no pincode, skipping", "user_id", u.ID)
			s.countSkip(skipNoPincode)
			continue
		}
		eligible = append(eligible, u)
	}

	// One result slot per eligible user; workers never share state beyond the
	// read-only origin and radius.
	slots := make([]*models.Candidate, len(eligible))

	s.pool.ForEach(ctx, len(eligible), func(jobCtx context.Context, i int) {
		u := eligible[i]

		point, err := s.resolver.PointFromPincode(jobCtx, u.Pincode)
		if err != nil {
			slog.Warn("could not resolve user pincode, skipping user",
				"user_id", u.ID, "pincode", u.Pincode, "error", err)
			s.countSkip(skipResolveFailed)
			return
		}

		if geo.DistanceMeters(origin, point) > radiusMeters {
			s.countSkip(skipOutOfRadius)
			return
		}

		slots[i] = &models.Candidate{User: u, Point: point}
	})

	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	candidates := make([]models.Candidate, 0, len(slots))
	for _, c := range slots {
		if c != nil {
			candidates = append(candidates, *c)
		}
	}

	if s.metrics != nil {
		s.metrics.CandidatesSelected.Add(float64(len(candidates)))
	}

	slog.Info("audience selected",
		"pincode", pincode,
		"directory_size", len(users),
		"eligible", len(eligible),
		"selected", len(candidates),
	)

	return candidates, nil
}

func (s *Selector) countSkip(reason string) {
	if s.metrics == nil {
		return
	}
	s.metrics.CandidatesSkipped.WithLabelValues(reason).Inc()
}
