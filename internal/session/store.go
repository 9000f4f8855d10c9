package session

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/victornm/trivia/internal/domain"
)

var errSessionNotFound = stderrors.New("session not found")

// RedisStore keeps every session as a JSON document keyed by session ID,
// plus one sorted set per player scored by CompletedAt for history queries.
type RedisStore struct {
	redis  redis.UniversalClient
	prefix string
}

func NewRedisStore(r redis.UniversalClient, prefix string) *RedisStore {
	return &RedisStore{
		redis:  r,
		prefix: prefix,
	}
}

// Create writes the session document and its history index in one transaction.
func (s *RedisStore) Create(ctx context.Context, ss *domain.Session) error {
	b, err := json.Marshal(ss)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}

	_, err = s.redis.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.Set(ctx, s.sessionKey(ss.SessionID), b, 0)
		p.ZAdd(ctx, s.playerKey(ss.PlayerID), redis.Z{
			Score:  float64(ss.CompletedAt.UnixMilli()),
			Member: ss.SessionID,
		})
		return nil
	})
	if err != nil {
		return fmt.Errorf("create session: %w", err)
	}

	return nil
}

func (s *RedisStore) Get(ctx context.Context, id string) (*domain.Session, error) {
	b, err := s.redis.Get(ctx, s.sessionKey(id)).Bytes()
	if stderrors.Is(err, redis.Nil) {
		return nil, errSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}

	return decodeSession(b)
}

// Update applies fn to the stored session and writes the result back as one unit.
// The write is dropped, and an error returned, if the session changed concurrently.
func (s *RedisStore) Update(ctx context.Context, id string, fn func(ss *domain.Session) error) (*domain.Session, error) {
	key := s.sessionKey(id)

	var updated *domain.Session
	err := s.redis.Watch(ctx, func(tx *redis.Tx) error {
		b, err := tx.Get(ctx, key).Bytes()
		if stderrors.Is(err, redis.Nil) {
			return errSessionNotFound
		}
		if err != nil {
			return fmt.Errorf("get session: %w", err)
		}

		ss, err := decodeSession(b)
		if err != nil {
			return err
		}

		if err := fn(ss); err != nil {
			return err
		}

		nb, err := json.Marshal(ss)
		if err != nil {
			return fmt.Errorf("marshal session: %w", err)
		}

		_, err = tx.TxPipelined(ctx, func(p redis.Pipeliner) error {
			p.Set(ctx, key, nb, 0)
			return nil
		})
		if err != nil {
			return fmt.Errorf("write session: %w", err)
		}

		updated = ss
		return nil
	}, key)
	if err != nil {
		return nil, err
	}

	return updated, nil
}

// ListByPlayer returns up to limit sessions of the player, most recent CompletedAt first.
func (s *RedisStore) ListByPlayer(ctx context.Context, playerID string, limit int) ([]domain.Session, error) {
	ids, err := s.redis.ZRevRange(ctx, s.playerKey(playerID), 0, int64(limit-1)).Result()
	if err != nil {
		return nil, fmt.Errorf("list session ids: %w", err)
	}

	sessions := make([]domain.Session, 0, len(ids))
	if len(ids) == 0 {
		return sessions, nil
	}

	keys := make([]string, 0, len(ids))
	for _, id := range ids {
		keys = append(keys, s.sessionKey(id))
	}

	docs, err := s.redis.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("get sessions: %w", err)
	}

	for _, d := range docs {
		str, ok := d.(string)
		if !ok {
			continue
		}

		ss, err := decodeSession([]byte(str))
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, *ss)
	}

	return sessions, nil
}

func decodeSession(b []byte) (*domain.Session, error) {
	var ss domain.Session
	if err := json.Unmarshal(b, &ss); err != nil {
		return nil, fmt.Errorf("unmarshal session: %w", err)
	}

	return &ss, nil
}

func (s *RedisStore) sessionKey(id string) string {
	return fmt.Sprintf("%s:session:%s", s.prefix, id)
}

func (s *RedisStore) playerKey(playerID string) string {
	return fmt.Sprintf("%s:player:%s:sessions", s.prefix, playerID)
}
