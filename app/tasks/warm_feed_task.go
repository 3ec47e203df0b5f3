package tasks

import (
	"context"
	"fmt"
	"log/slog"
)

// WarmFeedTask refetches the IMS feed so requests find a fresh snapshot.
type WarmFeedTask struct {
	Task
	feeds FeedRefresherInterface
}

func NewWarmFeedTask(feeds FeedRefresherInterface) *WarmFeedTask {
	return &WarmFeedTask{
		Task:  NewTask(TaskTypeWarmFeed),
		feeds: feeds,
	}
}

func (t *WarmFeedTask) Execute(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	doc, err := t.feeds.Refresh(ctx)
	if err != nil {
		return fmt.Errorf("failed to warm feed: %w", err)
	}

	slog.Debug("Feed snapshot warmed", "id", t.ID, "roots", len(doc.Roots), "duration", t.GetDuration().String())

	return nil
}
