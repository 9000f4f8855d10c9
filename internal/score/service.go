package score

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/victornm/trivia/internal/domain"
	"github.com/victornm/trivia/internal/errors"
	"github.com/victornm/trivia/internal/event"
)

// DB is the part of *pgxpool.Pool the archive uses.
type DB interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

type Config struct {
	EventBus *event.Bus
	DB       DB
}

// Service archives the results of finished sessions.
type Service struct {
	eb *event.Bus
	db DB
}

func NewService(c Config) *Service {
	s := &Service{
		eb: c.EventBus,
		db: c.DB,
	}

	s.eb.Subscribe(domain.EventNameSessionFinished, func(ctx context.Context, e event.Event) error {
		return s.RecordResult(ctx, e.(domain.EventSessionFinished))
	})

	return s
}

// Result is the final outcome of one session.
type Result struct {
	SessionID      string    `json:"sessionId"`
	PlayerID       string    `json:"playerId"`
	Category       string    `json:"category"`
	Score          int       `json:"score"`
	CorrectCount   int       `json:"correctCount"`
	IncorrectCount int       `json:"incorrectCount"`
	FinishTime     time.Time `json:"finishTime"`
}

// RecordResult stores the result of a finished session. Recording the same session twice is a no-op.
func (s *Service) RecordResult(ctx context.Context, e domain.EventSessionFinished) error {
	const stmt = `
INSERT INTO game_results (session_id, player_id, category, score, correct_count, incorrect_count, finish_time)
VALUES ($1, $2, $3, $4, $5, $6, $7)
ON CONFLICT (session_id) DO NOTHING;`

	ss := e.Session
	_, err := s.db.Exec(ctx, stmt,
		ss.SessionID, ss.PlayerID, ss.Category, ss.Score, ss.CorrectCount, ss.IncorrectCount, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("insert result: session=%s: %w", ss.SessionID, err)
	}

	return nil
}

type ListResultsRequest struct {
	PlayerID string
}

// ListResults returns every archived result of a player, best score first.
func (s *Service) ListResults(ctx context.Context, req ListResultsRequest) ([]Result, error) {
	if strings.TrimSpace(req.PlayerID) == "" {
		return nil, errors.MissingField("playerId")
	}

	const stmt = `
SELECT session_id, player_id, category, score, correct_count, incorrect_count, finish_time
FROM game_results
WHERE player_id = $1
ORDER BY score DESC, finish_time DESC;`

	rows, err := s.db.Query(ctx, stmt, req.PlayerID)
	if err != nil {
		return nil, errors.StorageUnavailable(fmt.Errorf("list results: %w", err))
	}

	results, err := pgx.CollectRows(rows, func(r pgx.CollectableRow) (Result, error) {
		var res Result
		err := r.Scan(&res.SessionID, &res.PlayerID, &res.Category, &res.Score, &res.CorrectCount, &res.IncorrectCount, &res.FinishTime)
		return res, err
	})
	if err != nil {
		return nil, errors.StorageUnavailable(fmt.Errorf("collect results: %w", err))
	}

	return results, nil
}
