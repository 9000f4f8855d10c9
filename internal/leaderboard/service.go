package leaderboard

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/victornm/trivia/internal/domain"
	"github.com/victornm/trivia/internal/errors"
	"github.com/victornm/trivia/internal/event"
)

const (
	publishInterval = 200 * time.Millisecond

	defaultLimit = 10
	maxLimit     = 100
)

type Config struct {
	EventBus *event.Bus
	Redis    redis.UniversalClient
	Prefix   string
}

type Service struct {
	eb     *event.Bus
	redis  redis.UniversalClient
	prefix string
}

func NewService(c Config) *Service {
	s := &Service{
		eb:     c.EventBus,
		redis:  c.Redis,
		prefix: c.Prefix,
	}

	s.eb.Subscribe(domain.EventNameAnswerSubmitted, func(ctx context.Context, e event.Event) error {
		return s.UpdateLeaderboard(ctx, e.(domain.EventAnswerSubmitted))
	})
	s.eb.Subscribe(domain.EventNameSessionCreated, func(ctx context.Context, e event.Event) error {
		return s.RecordSessionCreated(ctx, e.(domain.EventSessionCreated))
	})

	return s
}

type GetLeaderboardRequest struct {
	Category string
	Limit    int
}

// GetLeaderboard returns the best players of a category, highest score first.
// The "All" category ranks scores from every category.
func (s *Service) GetLeaderboard(ctx context.Context, req GetLeaderboardRequest) (*domain.Leaderboard, error) {
	category := req.Category
	if category == "" {
		category = domain.CategoryAll
	}

	limit := req.Limit
	switch {
	case limit <= 0:
		limit = defaultLimit
	case limit > maxLimit:
		limit = maxLimit
	}

	res, err := s.redis.ZRevRangeWithScores(ctx, s.getLeaderboardKey(category), 0, int64(limit-1)).Result()
	if err != nil {
		return nil, errors.StorageUnavailable(fmt.Errorf("get leaderboard: %w", err))
	}

	entries := make([]domain.LeaderboardEntry, 0, len(res))
	for _, z := range res {
		entries = append(entries, domain.LeaderboardEntry{
			PlayerID: z.Member.(string),
			Score:    z.Score,
		})
	}

	return &domain.Leaderboard{
		Category: category,
		Entries:  entries,
	}, nil
}

// UpdateLeaderboard adds the points of a correct answer to the player's score
// in the session's category and in the "All" category.
func (s *Service) UpdateLeaderboard(ctx context.Context, e domain.EventAnswerSubmitted) error {
	if err := s.recordAnswer(ctx, e); err != nil {
		return err
	}

	if !e.Record.IsCorrect {
		return nil
	}

	categories := []string{domain.CategoryAll}
	if e.Category != "" && e.Category != domain.CategoryAll {
		categories = append(categories, e.Category)
	}

	_, err := s.redis.Pipelined(ctx, func(p redis.Pipeliner) error {
		for _, c := range categories {
			p.ZIncrBy(ctx, s.getLeaderboardKey(c), domain.PointsPerCorrect, e.PlayerID)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("update leaderboard: %w", err)
	}

	for _, c := range categories {
		if err := s.schedulePublishLeaderboard(ctx, c); err != nil {
			return err
		}
	}

	return nil
}

// schedulePublishLeaderboard publishes the leaderboard changes after a certain interval.
// Many answers arrive in a short time, so the first change of an interval is published
// right away, and the first change within the interval publishes again once it ends,
// so the last standings of a burst are always pushed.
func (s *Service) schedulePublishLeaderboard(ctx context.Context, category string) error {
	timeKey := s.getLeaderboardTimeKey(category)

	ok, err := s.redis.SetNX(ctx, timeKey, time.Now().UnixMilli(), publishInterval).Result()
	if err != nil {
		return fmt.Errorf("setnx: %w", err)
	}

	if ok {
		return s.publishLeaderboard(ctx, category)
	}

	pendingKey := s.getLeaderboardPendingKey(category)
	pending, err := s.redis.SetNX(ctx, pendingKey, 1, 2*publishInterval).Result()
	if err != nil {
		return fmt.Errorf("setnx pending: %w", err)
	}

	// Another answer of this interval already waits for its end.
	if !pending {
		return nil
	}

	wait, err := s.redis.PTTL(ctx, timeKey).Result()
	if err != nil {
		return fmt.Errorf("pttl: %w", err)
	}
	if wait > publishInterval {
		wait = publishInterval
	}

	if wait > 0 {
		t := time.NewTimer(wait)
		defer t.Stop()

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-t.C:
		}
	}

	if err := s.redis.Del(ctx, pendingKey).Err(); err != nil {
		return fmt.Errorf("del pending: %w", err)
	}

	return s.publishLeaderboard(ctx, category)
}

func (s *Service) publishLeaderboard(ctx context.Context, category string) error {
	l, err := s.GetLeaderboard(ctx, GetLeaderboardRequest{
		Category: category,
	})
	if err != nil {
		return fmt.Errorf("get leaderboard failed: category=%s: %w", category, err)
	}

	s.eb.Publish(ctx, domain.EventLeaderboardUpdated{
		Leaderboard: *l,
	})

	return nil
}

func (s *Service) getLeaderboardKey(category string) string {
	return fmt.Sprintf("%s:%s:leaderboard", s.prefix, category)
}

func (s *Service) getLeaderboardTimeKey(category string) string {
	return fmt.Sprintf("%s:%s:time", s.prefix, category)
}

func (s *Service) getLeaderboardPendingKey(category string) string {
	return fmt.Sprintf("%s:%s:pending", s.prefix, category)
}
