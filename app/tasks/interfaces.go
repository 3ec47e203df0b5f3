package tasks

import (
	"context"

	"github.com/lysyi3m/ims-sessions/app/ims"
)

type FeedRefresherInterface interface {
	Refresh(ctx context.Context) (*ims.Document, error)
}

var _ FeedRefresherInterface = (*ims.FeedCache)(nil)
