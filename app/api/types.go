package api

import (
	"context"
	"time"

	"github.com/lysyi3m/ims-sessions/app/ims"
	"github.com/lysyi3m/ims-sessions/app/metrics"
	"github.com/lysyi3m/ims-sessions/app/sessions"
)

type SessionServiceInterface interface {
	Sessions(ctx context.Context, ref string) (*sessions.Response, error)
}

var _ SessionServiceInterface = (*sessions.Service)(nil)

type FeedStatusInterface interface {
	Backend() string
	SnapshotAge(ctx context.Context) (time.Duration, bool, error)
}

var _ FeedStatusInterface = (*ims.FeedCache)(nil)

type Handler struct {
	service SessionServiceInterface
	feeds   FeedStatusInterface
	metrics *metrics.Metrics
	maxAge  int
	version string
}

type errorResponse struct {
	Error string `json:"error"`
}
