package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/mr1hm/go-report-alerts/internal/models"
)

// mockPipeline implements PipelineRunner for testing
type mockPipeline struct {
	lastEvent models.DisasterEvent
	calls     int
	outcome   models.Outcome
}

func (m *mockPipeline) Run(_ context.Context, event models.DisasterEvent) models.Outcome {
	m.calls++
	m.lastEvent = event
	return m.outcome
}

func setupRouter(pipeline PipelineRunner) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	NewHandler(pipeline).RegisterRoutes(r)
	return r
}

const validBody = `{
	"title": "Flooding in South Mumbai",
	"description": "Streets underwater near the fort area",
	"location": {"lat": 19.0760, "lon": 72.8777},
	"media_url": "https://media.example.com/flood.mp4",
	"media_kind": "video"
}`

func TestProcessReport_Verified(t *testing.T) {
	pipeline := &mockPipeline{outcome: models.Outcome{
		Verified: true,
		Dispatch: []models.DispatchResult{
			{UserID: "u1", To: "+919820000001", Sent: true},
			{UserID: "u2", To: "+919820000002", Sent: false, Err: "delivery failed"},
		},
	}}
	router := setupRouter(pipeline)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/reports/alert", strings.NewReader(validBody))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var resp reportResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid response JSON: %v", err)
	}
	if !resp.Verified {
		t.Error("expected verified response")
	}
	if resp.EventID == "" {
		t.Error("expected an event_id")
	}
	if len(resp.Dispatch) != 2 {
		t.Fatalf("expected 2 dispatch entries, got %d", len(resp.Dispatch))
	}
	if resp.Dispatch[1].Error != "delivery failed" {
		t.Errorf("expected recorded failure, got %+v", resp.Dispatch[1])
	}

	if pipeline.lastEvent.MediaKind != models.MediaKindVideo {
		t.Errorf("expected video media kind, got %q", pipeline.lastEvent.MediaKind)
	}
	if pipeline.lastEvent.ID == "" {
		t.Error("handler must assign a correlation id")
	}
}

func TestProcessReport_Unverified(t *testing.T) {
	pipeline := &mockPipeline{outcome: models.Outcome{
		Verified: false,
		Reason:   "analysis service did not confirm the event",
	}}
	router := setupRouter(pipeline)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/reports/alert", strings.NewReader(validBody))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	var resp reportResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid response JSON: %v", err)
	}
	if resp.Verified {
		t.Error("expected unverified response")
	}
	if len(resp.Dispatch) != 0 {
		t.Errorf("expected no dispatch entries, got %d", len(resp.Dispatch))
	}
}

func TestProcessReport_Validation(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"malformed json", `{`},
		{"missing title", `{"title":" ","description":"d","location":{"lat":1,"lon":2},"media_url":"https://x/y.jpg","media_kind":"image"}`},
		{"missing description", `{"title":"t","description":"","location":{"lat":1,"lon":2},"media_url":"https://x/y.jpg","media_kind":"image"}`},
		{"bad latitude", `{"title":"t","description":"d","location":{"lat":91,"lon":2},"media_url":"https://x/y.jpg","media_kind":"image"}`},
		{"missing media url", `{"title":"t","description":"d","location":{"lat":1,"lon":2},"media_url":"","media_kind":"image"}`},
		{"bad media kind", `{"title":"t","description":"d","location":{"lat":1,"lon":2},"media_url":"https://x/y.jpg","media_kind":"audio"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pipeline := &mockPipeline{}
			router := setupRouter(pipeline)

			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/api/reports/alert", strings.NewReader(tt.body))
			req.Header.Set("Content-Type", "application/json")
			router.ServeHTTP(w, req)

			if w.Code != http.StatusBadRequest {
				t.Errorf("expected 400, got %d", w.Code)
			}
			if pipeline.calls != 0 {
				t.Error("pipeline must not run for invalid input")
			}
		})
	}
}

func TestHealth(t *testing.T) {
	router := setupRouter(&mockPipeline{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
}

func TestRateLimitMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RateLimitMiddleware(1))
	r.GET("/ping", func(c *gin.Context) { c.Status(http.StatusOK) })

	var limited bool
	for i := 0; i < 10; i++ {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/ping", nil)
		r.ServeHTTP(w, req)
		if w.Code == http.StatusTooManyRequests {
			limited = true
		}
	}
	if !limited {
		t.Error("expected the burst to trip the rate limit")
	}
}
