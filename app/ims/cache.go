package ims

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/lysyi3m/ims-sessions/app/metrics"
)

type FetcherInterface interface {
	URL() string
	Run(ctx context.Context) ([]byte, error)
}

var _ FetcherInterface = (*Fetcher)(nil)

// FeedCache serves the parsed IMS document from the snapshot store while it
// is younger than the TTL and refetches it from upstream otherwise.
type FeedCache struct {
	store   SnapshotStore
	fetcher FetcherInterface
	parser  *Parser
	metrics *metrics.Metrics
	ttl     time.Duration
	now     func() time.Time
}

func NewFeedCache(store SnapshotStore, fetcher FetcherInterface, parser *Parser,
	m *metrics.Metrics, ttl time.Duration) *FeedCache {
	return &FeedCache{
		store:   store,
		fetcher: fetcher,
		parser:  parser,
		metrics: m,
		ttl:     ttl,
		now:     time.Now,
	}
}

func (c *FeedCache) Backend() string {
	return c.store.Name()
}

func (c *FeedCache) GetFeed(ctx context.Context) (*Document, error) {
	snapshot, err := c.store.Load(ctx)
	switch {
	case err != nil:
		slog.Warn("Failed to load feed snapshot", "backend", c.store.Name(), "error", err)
		c.metrics.CacheLookup(metrics.CacheError)

	case snapshot == nil:
		c.metrics.CacheLookup(metrics.CacheMiss)

	case snapshot.Age(c.now()) >= c.ttl:
		slog.Debug("Feed snapshot expired", "backend", c.store.Name(), "age", snapshot.Age(c.now()))
		c.metrics.CacheLookup(metrics.CacheStale)

	default:
		doc, err := c.parser.Run(snapshot.Body)
		if err == nil && !doc.Truncated {
			c.metrics.CacheLookup(metrics.CacheHit)
			return doc, nil
		}
		// A half-written snapshot is refetched; only upstream payloads are
		// served recovered.
		slog.Warn("Feed snapshot is unparseable, refetching", "backend", c.store.Name(), "truncated", err == nil, "error", err)
		c.metrics.CacheLookup(metrics.CacheCorrupt)
	}

	return c.Refresh(ctx)
}

// Refresh fetches the feed from upstream unconditionally and replaces the
// stored snapshot before parsing it.
func (c *FeedCache) Refresh(ctx context.Context) (*Document, error) {
	started := time.Now()
	data, err := c.fetcher.Run(ctx)
	c.metrics.FetchDuration.Observe(time.Since(started).Seconds())
	if err != nil {
		c.metrics.UpstreamFetch(metrics.FetchError)
		return nil, fmt.Errorf("failed to fetch %s: %w", c.fetcher.URL(), err)
	}

	snapshot := Snapshot{Body: data, FetchedAt: c.now()}
	if err := c.store.Save(ctx, snapshot); err != nil {
		slog.Error("Failed to store feed snapshot", "backend", c.store.Name(), "error", err)
	}

	doc, err := c.parser.Run(data)
	if err != nil {
		c.metrics.UpstreamFetch(metrics.FetchParseError)
		return nil, fmt.Errorf("failed to parse fetched feed: %w", err)
	}

	c.metrics.UpstreamFetch(metrics.FetchSuccess)
	slog.Info("Feed snapshot refreshed", "backend", c.store.Name(), "bytes", len(data))

	return doc, nil
}

// SnapshotAge reports the age of the stored snapshot, if there is one.
func (c *FeedCache) SnapshotAge(ctx context.Context) (time.Duration, bool, error) {
	snapshot, err := c.store.Load(ctx)
	if err != nil {
		return 0, false, err
	}
	if snapshot == nil {
		return 0, false, nil
	}
	return snapshot.Age(c.now()), true, nil
}
