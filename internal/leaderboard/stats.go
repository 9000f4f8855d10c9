package leaderboard

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"

	"github.com/victornm/trivia/internal/domain"
	"github.com/victornm/trivia/internal/errors"
)

const (
	fieldGames    = "games"
	fieldAnswered = "answered"
	fieldCorrect  = "correct"
	fieldTimedOut = "timed_out"
)

// RecordSessionCreated counts a new game for the player.
func (s *Service) RecordSessionCreated(ctx context.Context, e domain.EventSessionCreated) error {
	if err := s.redis.HIncrBy(ctx, s.getStatsKey(e.Session.PlayerID), fieldGames, 1).Err(); err != nil {
		return fmt.Errorf("record session: %w", err)
	}

	return nil
}

func (s *Service) recordAnswer(ctx context.Context, e domain.EventAnswerSubmitted) error {
	key := s.getStatsKey(e.PlayerID)

	_, err := s.redis.Pipelined(ctx, func(p redis.Pipeliner) error {
		p.HIncrBy(ctx, key, fieldAnswered, 1)
		if e.Record.IsCorrect {
			p.HIncrBy(ctx, key, fieldCorrect, 1)
		}
		if e.Record.TimedOut {
			p.HIncrBy(ctx, key, fieldTimedOut, 1)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("record answer: %w", err)
	}

	return nil
}

type GetStatsRequest struct {
	PlayerID string
}

// GetStats returns the player's totals over all sessions. A player without games has zero stats.
func (s *Service) GetStats(ctx context.Context, req GetStatsRequest) (*domain.PlayerStats, error) {
	if strings.TrimSpace(req.PlayerID) == "" {
		return nil, errors.MissingField("playerId")
	}

	m, err := s.redis.HGetAll(ctx, s.getStatsKey(req.PlayerID)).Result()
	if err != nil {
		return nil, errors.StorageUnavailable(fmt.Errorf("get stats: %w", err))
	}

	st := &domain.PlayerStats{
		PlayerID: req.PlayerID,
		Accuracy: decimal.Zero,
	}
	for field, dst := range map[string]*int64{
		fieldGames:    &st.Games,
		fieldAnswered: &st.Answered,
		fieldCorrect:  &st.Correct,
		fieldTimedOut: &st.TimedOut,
	} {
		v, ok := m[field]
		if !ok {
			continue
		}
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return nil, errors.Internal(fmt.Errorf("parse stats field %s: %w", field, err))
		}
		*dst = n
	}

	if st.Answered > 0 {
		st.Accuracy = decimal.NewFromInt(st.Correct).DivRound(decimal.NewFromInt(st.Answered), 2)
	}

	return st, nil
}

func (s *Service) getStatsKey(playerID string) string {
	return fmt.Sprintf("%s:player:%s:stats", s.prefix, playerID)
}
