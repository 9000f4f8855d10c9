package auth

import (
	"context"
	"strings"

	"github.com/victornm/trivia/internal/domain"
	"github.com/victornm/trivia/internal/errors"
)

// Directory reads the current state of an account. Implementations must not cache.
type Directory interface {
	GetAccount(ctx context.Context, id string) (*domain.Account, error)
}

type Config struct {
	Tokens    *Tokens
	Directory Directory
}

// Pipeline runs the authorization stages of a request in order:
// token validation, block gate, role guard and self-target guard.
// Each stage stops the request with its own error kind.
type Pipeline struct {
	tokens *Tokens
	dir    Directory
}

func NewPipeline(c Config) *Pipeline {
	return &Pipeline{
		tokens: c.Tokens,
		dir:    c.Directory,
	}
}

// Authenticate runs the token validator and the block gate on an Authorization header value.
func (p *Pipeline) Authenticate(ctx context.Context, header string) (domain.Identity, error) {
	id, err := p.tokens.Verify(bearer(header))
	if err != nil {
		return domain.Identity{}, err
	}

	if err := p.CheckBlocked(ctx, id); err != nil {
		return domain.Identity{}, err
	}

	return id, nil
}

// CheckBlocked rejects identities whose account is blocked right now,
// regardless of when their credential was issued.
func (p *Pipeline) CheckBlocked(ctx context.Context, id domain.Identity) error {
	a, err := p.dir.GetAccount(ctx, id.SubjectID)
	switch {
	case errors.Is(err, errors.KindAccountNotFound):
		return errors.InvalidCredential(errors.WithMessagef("account %s no longer exists", id.SubjectID))
	case errors.Is(err, errors.KindUpstreamUnavailable):
		return err
	case err != nil:
		return errors.UpstreamUnavailable(err)
	}

	if a.IsBlocked {
		return errors.AccountBlocked()
	}

	return nil
}

// RequireAdmin is the role guard of admin-only routes.
func (*Pipeline) RequireAdmin(id domain.Identity) error {
	if !id.IsAdmin() {
		return errors.InsufficientPrivilege()
	}

	return nil
}

// GuardSelfTarget resolves the target account and rejects the request when the
// caller targets their own account.
func (p *Pipeline) GuardSelfTarget(ctx context.Context, id domain.Identity, targetID string) (*domain.Account, error) {
	target, err := p.dir.GetAccount(ctx, targetID)
	switch {
	case errors.Is(err, errors.KindAccountNotFound), errors.Is(err, errors.KindUpstreamUnavailable):
		return nil, err
	case err != nil:
		return nil, errors.UpstreamUnavailable(err)
	}

	if target.AccountID == id.SubjectID {
		return nil, errors.ForbiddenSelfTarget()
	}

	return target, nil
}

func bearer(header string) string {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}

	return strings.TrimSpace(token)
}
