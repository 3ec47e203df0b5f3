package sessions

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/lysyi3m/ims-sessions/app/ims"
)

const DefaultMaxSessions = 24

var referencePattern = regexp.MustCompile(`^\d+$`)

type FeedSource interface {
	GetFeed(ctx context.Context) (*ims.Document, error)
}

var _ FeedSource = (*ims.FeedCache)(nil)

type Service struct {
	feeds       FeedSource
	extractor   *Extractor
	maxSessions int
	now         func() time.Time
}

func NewService(feeds FeedSource, extractor *Extractor, maxSessions int) *Service {
	if maxSessions <= 0 {
		maxSessions = DefaultMaxSessions
	}
	return &Service{
		feeds:       feeds,
		extractor:   extractor,
		maxSessions: maxSessions,
		now:         time.Now,
	}
}

// ValidateReference trims raw and checks that it is a non-empty digit string.
func ValidateReference(raw string) (string, error) {
	ref := strings.TrimSpace(raw)
	if !referencePattern.MatchString(ref) {
		return "", ErrInvalidReference
	}
	return ref, nil
}

// Sessions returns the upcoming sessions for a characterization reference,
// earliest first and capped at maxSessions.
func (s *Service) Sessions(ctx context.Context, rawRef string) (*Response, error) {
	ref, err := ValidateReference(rawRef)
	if err != nil {
		return nil, err
	}

	doc, err := s.feeds.GetFeed(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUpstreamUnavailable, err)
	}

	now := s.now()
	sessions := make([]Session, 0)
	for _, record := range s.extractor.Run(doc, ref) {
		if record.Start.Before(now) {
			continue
		}
		sessions = append(sessions, record.Session())
	}

	// Fixed-width ATOM strings sort chronologically.
	sort.SliceStable(sessions, func(i, j int) bool {
		return sessions[i].StartISO < sessions[j].StartISO
	})

	if len(sessions) > s.maxSessions {
		sessions = sessions[:s.maxSessions]
	}

	return &Response{
		Ref:      ref,
		Count:    len(sessions),
		Sessions: sessions,
	}, nil
}
