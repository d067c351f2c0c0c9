// Package verify decides whether a submitted disaster report describes a
// genuine live event, using a generative analysis service.
package verify

import (
	"context"
	"log/slog"
	"strings"

	"github.com/jonboulle/clockwork"

	"github.com/mr1hm/go-report-alerts/internal/models"
)

// MediaFetcher retrieves the event's media as a base64 payload.
type MediaFetcher interface {
	FetchBase64(ctx context.Context, rawURL string) (string, error)
}

// Analyzer submits a prompt plus inline media and returns the model's text.
type Analyzer interface {
	GenerateContent(ctx context.Context, prompt, mimeType, data string) (string, error)
}

// Verifier runs the fail-closed verification step: any inability to confirm
// the event (media fetch failure, analysis failure, or anything but an
// explicit TRUE in the reply) yields an unverified verdict. A missed real
// alert is preferred over a panic alert for a fabricated event.
type Verifier struct {
	fetcher  MediaFetcher
	analyzer Analyzer
	clock    clockwork.Clock
}

func NewVerifier(fetcher MediaFetcher, analyzer Analyzer, clock clockwork.Clock) *Verifier {
	return &Verifier{
		fetcher:  fetcher,
		analyzer: analyzer,
		clock:    clock,
	}
}

// Verify never returns an error; failures are folded into the verdict.
func (v *Verifier) Verify(ctx context.Context, event models.DisasterEvent) models.Verdict {
	data, err := v.fetcher.FetchBase64(ctx, event.MediaURL)
	if err != nil {
		slog.Warn("media fetch failed, treating report as unverified",
			"event_id", event.ID, "url", event.MediaURL, "error", err)
		return models.Verdict{Verified: false, Reason: "media fetch failed: " + err.Error()}
	}

	prompt := buildPrompt(event, v.clock)

	reply, err := v.analyzer.GenerateContent(ctx, prompt, event.MediaKind.MIMEType(), data)
	if err != nil {
		slog.Warn("analysis request failed, treating report as unverified",
			"event_id", event.ID, "error", err)
		return models.Verdict{Verified: false, Reason: "analysis failed: " + err.Error()}
	}

	if !strings.Contains(reply, "TRUE") {
		return models.Verdict{Verified: false, Reason: "analysis service did not confirm the event"}
	}

	return models.Verdict{Verified: true}
}
