package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/victornm/trivia/internal/domain"
	"github.com/victornm/trivia/internal/errors"
)

const defaultTokenTTL = time.Hour

type TokenConfig struct {
	Secret []byte
	Issuer string
	TTL    time.Duration
	Now    func() time.Time
}

// claims is the signed identity assertion carried by a bearer credential.
type claims struct {
	UserID string `json:"userId"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

// Tokens verifies and issues time-bounded identity assertions (HS256 JWT).
type Tokens struct {
	secret []byte
	issuer string
	ttl    time.Duration
	now    func() time.Time
}

func NewTokens(c TokenConfig) *Tokens {
	t := &Tokens{
		secret: c.Secret,
		issuer: c.Issuer,
		ttl:    c.TTL,
		now:    c.Now,
	}

	if t.ttl <= 0 {
		t.ttl = defaultTokenTTL
	}
	if t.now == nil {
		t.now = time.Now
	}

	return t
}

// Issue signs an assertion for the subject and role, valid for the configured TTL.
func (t *Tokens) Issue(subjectID, role string) (string, error) {
	now := t.now()

	c := claims{
		UserID: subjectID,
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    t.issuer,
			Subject:   subjectID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(t.ttl)),
		},
	}

	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString(t.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}

	return s, nil
}

// Verify checks signature and expiry of the credential and returns the identity it asserts.
func (t *Tokens) Verify(credential string) (domain.Identity, error) {
	if credential == "" {
		return domain.Identity{}, errors.Unauthenticated()
	}

	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(t.now),
	}
	if t.issuer != "" {
		opts = append(opts, jwt.WithIssuer(t.issuer))
	}

	var c claims
	_, err := jwt.ParseWithClaims(credential, &c, func(*jwt.Token) (any, error) {
		return t.secret, nil
	}, opts...)
	if err != nil {
		return domain.Identity{}, errors.InvalidCredential(errors.WithCause(err))
	}

	if c.UserID == "" {
		return domain.Identity{}, errors.InvalidCredential(errors.WithMessagef("credential carries no subject"))
	}

	return domain.Identity{
		SubjectID: c.UserID,
		Role:      c.Role,
	}, nil
}
