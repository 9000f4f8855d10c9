package directory

import (
	"context"
	stderrors "errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/victornm/trivia/internal/domain"
	"github.com/victornm/trivia/internal/errors"
)

// DB is the part of *pgxpool.Pool the directory uses.
type DB interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

type Config struct {
	DB DB
}

// Service is the user directory. Every call reads the current account state.
type Service struct {
	db DB
}

func NewService(c Config) *Service {
	return &Service{
		db: c.DB,
	}
}

// GetAccount returns the account with the given ID.
func (s *Service) GetAccount(ctx context.Context, id string) (*domain.Account, error) {
	uid, err := uuid.Parse(id)
	if err != nil {
		return nil, errors.AccountNotFound(errors.WithMessagef("account not found: %s", id))
	}

	const stmt = `SELECT user_id::text, username, role, is_blocked, create_time FROM users WHERE user_id = $1;`

	rows, err := s.db.Query(ctx, stmt, uid)
	if err != nil {
		return nil, errors.UpstreamUnavailable(fmt.Errorf("get account: %w", err))
	}

	a, err := pgx.CollectExactlyOneRow(rows, scanAccount)
	if stderrors.Is(err, pgx.ErrNoRows) {
		return nil, errors.AccountNotFound(errors.WithMessagef("account not found: %s", id))
	}
	if err != nil {
		return nil, errors.UpstreamUnavailable(fmt.Errorf("get account: %w", err))
	}

	return &a, nil
}

// ListAccounts returns all accounts, oldest first.
func (s *Service) ListAccounts(ctx context.Context) ([]domain.Account, error) {
	const stmt = `SELECT user_id::text, username, role, is_blocked, create_time FROM users ORDER BY create_time;`

	rows, err := s.db.Query(ctx, stmt)
	if err != nil {
		return nil, errors.UpstreamUnavailable(fmt.Errorf("list accounts: %w", err))
	}

	as, err := pgx.CollectRows(rows, scanAccount)
	if err != nil {
		return nil, errors.UpstreamUnavailable(fmt.Errorf("collect accounts: %w", err))
	}

	return as, nil
}

type SetBlockedRequest struct {
	AccountID string
	IsBlocked bool
}

func (s *Service) SetBlocked(ctx context.Context, req SetBlockedRequest) (*domain.Account, error) {
	const stmt = `
UPDATE users SET is_blocked = $2 WHERE user_id = $1
RETURNING user_id::text, username, role, is_blocked, create_time;`

	return s.update(ctx, req.AccountID, stmt, req.IsBlocked)
}

type SetRoleRequest struct {
	AccountID string
	Role      string
}

func (s *Service) SetRole(ctx context.Context, req SetRoleRequest) (*domain.Account, error) {
	if req.Role != domain.RoleAdmin && req.Role != domain.RoleUser {
		return nil, errors.InvalidField("role", errors.WithMessagef("role must be %q or %q", domain.RoleAdmin, domain.RoleUser))
	}

	const stmt = `
UPDATE users SET role = $2 WHERE user_id = $1
RETURNING user_id::text, username, role, is_blocked, create_time;`

	return s.update(ctx, req.AccountID, stmt, req.Role)
}

func (s *Service) update(ctx context.Context, id, stmt string, value any) (*domain.Account, error) {
	uid, err := uuid.Parse(id)
	if err != nil {
		return nil, errors.AccountNotFound(errors.WithMessagef("account not found: %s", id))
	}

	rows, err := s.db.Query(ctx, stmt, uid, value)
	if err != nil {
		return nil, errors.UpstreamUnavailable(fmt.Errorf("update account: %w", err))
	}

	a, err := pgx.CollectExactlyOneRow(rows, scanAccount)
	if stderrors.Is(err, pgx.ErrNoRows) {
		return nil, errors.AccountNotFound(errors.WithMessagef("account not found: %s", id))
	}
	if err != nil {
		return nil, errors.UpstreamUnavailable(fmt.Errorf("update account: %w", err))
	}

	return &a, nil
}

func scanAccount(r pgx.CollectableRow) (domain.Account, error) {
	var a domain.Account
	err := r.Scan(&a.AccountID, &a.Username, &a.Role, &a.IsBlocked, &a.CreatedAt)
	return a, err
}
