// Package alert sequences the verification and fan-out pipeline for one
// submitted disaster report.
package alert

import (
	"context"
	"log/slog"
	"time"

	"github.com/mr1hm/go-report-alerts/internal/geocode"
	"github.com/mr1hm/go-report-alerts/internal/models"
	"github.com/mr1hm/go-report-alerts/internal/observability"
)

// Verifier decides whether the report describes a genuine live event.
type Verifier interface {
	Verify(ctx context.Context, event models.DisasterEvent) models.Verdict
}

// AudienceSelector builds the set of users to notify.
type AudienceSelector interface {
	SelectWithinRadius(ctx context.Context, pincode models.PostalCode, radiusMeters float64) ([]models.Candidate, error)
}

// Dispatcher delivers the alert message to the audience.
type Dispatcher interface {
	Dispatch(ctx context.Context, candidates []models.Candidate, message string) []models.DispatchResult
}

// Orchestrator runs the pipeline for one event at a time: resolve the
// reported location to a pincode, verify the report, then select and notify
// the audience. It holds no per-run state, so concurrent Run calls are
// independent; a semaphore caps how many run at once to protect the shared
// upstream quotas.
type Orchestrator struct {
	resolver     geocode.Resolver
	verifier     Verifier
	selector     AudienceSelector
	dispatcher   Dispatcher
	radiusMeters float64
	metrics      *observability.Metrics
	runSlots     chan struct{}
}

func NewOrchestrator(resolver geocode.Resolver, verifier Verifier, selector AudienceSelector, dispatcher Dispatcher, radiusMeters float64, maxConcurrentRuns int, metrics *observability.Metrics) *Orchestrator {
	if maxConcurrentRuns < 1 {
		maxConcurrentRuns = 1
	}
	return &Orchestrator{
		resolver:     resolver,
		verifier:     verifier,
		selector:     selector,
		dispatcher:   dispatcher,
		radiusMeters: radiusMeters,
		metrics:      metrics,
		runSlots:     make(chan struct{}, maxConcurrentRuns),
	}
}

// Run processes exactly one event. It never returns an error: alerting is a
// best-effort side channel of report submission, so every failure is folded
// into the outcome (verified=false / empty dispatch) rather than raised.
func (o *Orchestrator) Run(ctx context.Context, event models.DisasterEvent) models.Outcome {
	select {
	case o.runSlots <- struct{}{}:
		defer func() { <-o.runSlots }()
	case <-ctx.Done():
		return models.Outcome{Verified: false, Reason: "cancelled before start: " + ctx.Err().Error()}
	}

	start := time.Now()
	defer func() {
		if o.metrics != nil {
			o.metrics.PipelineDuration.Observe(time.Since(start).Seconds())
		}
	}()

	pincode, err := o.resolver.PincodeFromPoint(ctx, event.Location)
	if err != nil {
		slog.Error("could not resolve report location to a pincode, no alert will be sent",
			"event_id", event.ID, "lat", event.Location.Latitude, "lon", event.Location.Longitude, "error", err)
		return o.finish(models.Outcome{Verified: false, Reason: "pincode resolution failed: " + err.Error()})
	}

	verdict := o.verifier.Verify(ctx, event)
	if !verdict.Verified {
		slog.Info("report not verified, no alert will be sent",
			"event_id", event.ID, "pincode", pincode, "reason", verdict.Reason)
		return o.finish(models.Outcome{Verified: false, Reason: verdict.Reason})
	}

	candidates, err := o.selector.SelectWithinRadius(ctx, pincode, o.radiusMeters)
	if err != nil {
		slog.Error("audience selection failed, no alert will be sent",
			"event_id", event.ID, "pincode", pincode, "error", err)
		return o.finish(models.Outcome{Verified: true, Reason: "audience selection failed: " + err.Error()})
	}

	results := o.dispatcher.Dispatch(ctx, candidates, Message)

	slog.Info("alert pipeline complete",
		"event_id", event.ID, "pincode", pincode, "audience", len(candidates), "dispatched", countSent(results))

	return o.finish(models.Outcome{Verified: true, Dispatch: results})
}

func (o *Orchestrator) finish(out models.Outcome) models.Outcome {
	if o.metrics != nil {
		verdict := "false"
		if out.Verified {
			verdict = "true"
		}
		o.metrics.ReportsProcessed.WithLabelValues(verdict).Inc()
	}
	return out
}

func countSent(results []models.DispatchResult) int {
	n := 0
	for _, r := range results {
		if r.Sent {
			n++
		}
	}
	return n
}
