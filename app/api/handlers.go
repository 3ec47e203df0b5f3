package api

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	json "github.com/goccy/go-json"
	"github.com/lysyi3m/ims-sessions/app/metrics"
	"github.com/lysyi3m/ims-sessions/app/sessions"
)

const contentTypeJSON = "application/json; charset=utf-8"

func NewHandler(service SessionServiceInterface, feeds FeedStatusInterface,
	m *metrics.Metrics, maxAge int, version string) *Handler {
	return &Handler{
		service: service,
		feeds:   feeds,
		metrics: m,
		maxAge:  maxAge,
		version: version,
	}
}

func (h *Handler) GetSessions(c *gin.Context) {
	c.Header("Cache-Control", fmt.Sprintf("max-age=%d, public", h.maxAge))

	response, err := h.service.Sessions(c.Request.Context(), c.Query("ref"))
	switch {
	case errors.Is(err, sessions.ErrInvalidReference):
		h.metrics.SessionRequest(metrics.RequestInvalid)
		h.render(c, http.StatusBadRequest, errorResponse{Error: "Missing or invalid ref"})
		return
	case errors.Is(err, sessions.ErrUpstreamUnavailable):
		slog.Error("IMS feed unavailable", "ref", c.Query("ref"), "error", err)
		h.metrics.SessionRequest(metrics.RequestUnavailable)
		h.render(c, http.StatusBadGateway, errorResponse{Error: "IMS unavailable"})
		return
	case err != nil:
		slog.Error("Session lookup failed", "ref", c.Query("ref"), "error", err)
		h.metrics.SessionRequest(metrics.RequestFailed)
		h.render(c, http.StatusInternalServerError, errorResponse{Error: "Internal error"})
		return
	}

	h.metrics.SessionRequest(metrics.RequestOK)
	h.metrics.SessionsReturned(response.Count)
	h.render(c, http.StatusOK, response)
}

func (h *Handler) GetHealth(c *gin.Context) {
	health := map[string]interface{}{
		"timestamp": time.Now().Format(time.RFC3339),
		"version":   h.version,
		"backend":   h.feeds.Backend(),
	}

	age, ok, err := h.feeds.SnapshotAge(c.Request.Context())
	if err != nil {
		slog.Warn("Failed to read snapshot age", "backend", h.feeds.Backend(), "error", err)
	} else if ok {
		health["snapshot_age_seconds"] = int64(age.Seconds())
	}

	h.render(c, http.StatusOK, health)
}

func (h *Handler) GetInfo(c *gin.Context) {
	h.render(c, http.StatusOK, map[string]interface{}{
		"service":     "IMS Sessions",
		"version":     h.version,
		"description": "Upcoming training sessions from the IMS feed by characterization reference",
		"endpoints": map[string]string{
			"sessions": "/sessions?ref=<digits>",
			"health":   "/health",
			"metrics":  "/metrics",
		},
	})
}

// render writes v as JSON without HTML escaping, so URLs keep their "&"
// and "/" as is.
func (h *Handler) render(c *gin.Context, status int, v interface{}) {
	var buf bytes.Buffer
	encoder := json.NewEncoder(&buf)
	encoder.SetEscapeHTML(false)

	if err := encoder.Encode(v); err != nil {
		slog.Error("Failed to encode response", "error", err)
		c.Status(http.StatusInternalServerError)
		return
	}

	c.Data(status, contentTypeJSON, bytes.TrimRight(buf.Bytes(), "\n"))
}
