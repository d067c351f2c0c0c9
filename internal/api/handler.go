package api

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/mr1hm/go-report-alerts/internal/models"
)

// PipelineRunner runs the alert pipeline for one submitted report.
type PipelineRunner interface {
	Run(ctx context.Context, event models.DisasterEvent) models.Outcome
}

type Handler struct {
	pipeline PipelineRunner
}

func NewHandler(pipeline PipelineRunner) *Handler {
	return &Handler{
		pipeline: pipeline,
	}
}

func (h *Handler) RegisterRoutes(r *gin.Engine) {
	r.POST("/api/reports/alert", h.processReport)
	r.GET("/health", h.health)
}

type reportRequest struct {
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Location    models.GeoPoint `json:"location"`
	MediaURL    string          `json:"media_url"`
	MediaKind   string          `json:"media_kind"`
}

type dispatchEntry struct {
	UserID string `json:"user_id"`
	To     string `json:"to"`
	Sent   bool   `json:"sent"`
	Error  string `json:"error,omitempty"`
}

type reportResponse struct {
	EventID  string          `json:"event_id"`
	Verified bool            `json:"verified"`
	Reason   string          `json:"reason,omitempty"`
	Dispatch []dispatchEntry `json:"dispatch,omitempty"`
}

// processReport accepts one already-stored report (media lives in object
// storage; we get its URL) and runs verification and fan-out synchronously.
// The report itself was accepted upstream regardless of what happens here.
func (h *Handler) processReport(c *gin.Context) {
	var req reportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	if strings.TrimSpace(req.Title) == "" || strings.TrimSpace(req.Description) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "report title and description are required"})
		return
	}
	if err := req.Location.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.MediaURL == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "media_url is required"})
		return
	}
	kind, err := models.ParseMediaKind(req.MediaKind)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	event := models.DisasterEvent{
		ID:          uuid.NewString(),
		Title:       req.Title,
		Description: req.Description,
		Location:    req.Location,
		MediaURL:    req.MediaURL,
		MediaKind:   kind,
	}

	out := h.pipeline.Run(c.Request.Context(), event)

	resp := reportResponse{
		EventID:  event.ID,
		Verified: out.Verified,
		Reason:   out.Reason,
	}
	for _, r := range out.Dispatch {
		resp.Dispatch = append(resp.Dispatch, dispatchEntry{
			UserID: r.UserID,
			To:     r.To,
			Sent:   r.Sent,
			Error:  r.Err,
		})
	}

	c.JSON(http.StatusOK, resp)
}

func (h *Handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
