// Package notify delivers alert messages to the selected audience through
// the external messaging provider.
package notify

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/mr1hm/go-report-alerts/internal/models"
	"github.com/mr1hm/go-report-alerts/internal/observability"
	"github.com/mr1hm/go-report-alerts/internal/worker"
)

// Sender submits one message to one destination.
type Sender interface {
	SendSMS(ctx context.Context, to, body string) error
}

// Dispatcher fans one message out to every candidate. Each submission is
// independent: a failed delivery is recorded in its result and never blocks
// or fails the others. No retries.
type Dispatcher struct {
	sender             Sender
	defaultCountryCode string
	pool               *worker.Pool
	metrics            *observability.Metrics
}

// NewDispatcher creates a dispatcher. dispatchWorkers bounds concurrent
// submissions (a separate budget from geocoding); metrics may be nil.
func NewDispatcher(sender Sender, defaultCountryCode string, dispatchWorkers int, perCallTimeout time.Duration, metrics *observability.Metrics) *Dispatcher {
	return &Dispatcher{
		sender:             sender,
		defaultCountryCode: defaultCountryCode,
		pool:               worker.NewPool(dispatchWorkers, perCallTimeout),
		metrics:            metrics,
	}
}

// Dispatch sends message to every candidate and returns one result per
// candidate, in candidate order. It waits for all attempts; messages already
// delivered when the context is cancelled are not retracted.
func (d *Dispatcher) Dispatch(ctx context.Context, candidates []models.Candidate, message string) []models.DispatchResult {
	results := make([]models.DispatchResult, len(candidates))

	d.pool.ForEach(ctx, len(candidates), func(jobCtx context.Context, i int) {
		c := candidates[i]
		to := d.normalizeContact(c.User.Contact)
		results[i] = models.DispatchResult{UserID: c.User.ID, To: to}

		if err := d.sender.SendSMS(jobCtx, to, message); err != nil {
			slog.Warn("alert delivery failed", "user_id", c.User.ID, "to", to, "error", err)
			results[i].Err = err.Error()
			d.count(false)
			return
		}

		slog.Info("alert sent", "user_id", c.User.ID, "to", to)
		results[i].Sent = true
		d.count(true)
	})

	// Candidates dropped by cancellation still get a result slot, recorded
	// as not sent.
	for i := range results {
		if results[i].UserID == "" {
			results[i] = models.DispatchResult{
				UserID: candidates[i].User.ID,
				To:     d.normalizeContact(candidates[i].User.Contact),
				Err:    context.Canceled.Error(),
			}
		}
	}

	return results
}

// normalizeContact prefixes the default country code when the stored contact
// lacks one.
func (d *Dispatcher) normalizeContact(contact string) string {
	if strings.HasPrefix(contact, "+") {
		return contact
	}
	return d.defaultCountryCode + contact
}

func (d *Dispatcher) count(sent bool) {
	if d.metrics == nil {
		return
	}
	if sent {
		d.metrics.MessagesSent.Inc()
	} else {
		d.metrics.MessagesFailed.Inc()
	}
}
