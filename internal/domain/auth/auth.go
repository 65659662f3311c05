// Package auth checks the credentials a request carries against configured
// basic-auth users and bearer tokens.
package auth

import (
	"context"
	"crypto/sha256"
	"crypto/subtle"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/okian/gvera/internal/domain/types"
	"github.com/okian/gvera/pkg/logger"
)

// Scheme names how a principal authenticated.
type Scheme string

// Supported schemes.
const (
	SchemeBasic  Scheme = "basic"
	SchemeBearer Scheme = "bearer"
)

// Principal is an authenticated caller.
type Principal struct {
	Subject string `json:"subject"`
	Scheme  Scheme `json:"scheme"`
}

// Authenticator verifies basic credentials first, then bearer tokens.
type Authenticator struct {
	users  map[string][]byte
	tokens [][sha256.Size]byte
	logger logger.Logger
}

// Option applies a configuration option to the Authenticator.
type Option func(*Authenticator)

// WithLogger sets a custom logger.
func WithLogger(l logger.Logger) Option {
	return func(a *Authenticator) {
		if l != nil {
			a.logger = l
		}
	}
}

// New builds an Authenticator. users maps usernames to bcrypt hashes; every
// hash is checked for well-formedness up front.
func New(users map[string]string, tokens []string, opts ...Option) (*Authenticator, error) {
	a := &Authenticator{
		users:  make(map[string][]byte, len(users)),
		logger: logger.Nop(),
	}
	for _, opt := range opts {
		opt(a)
	}
	for name, hash := range users {
		if _, err := bcrypt.Cost([]byte(hash)); err != nil {
			return nil, fmt.Errorf("%w: user %q: %w", ErrInvalidHash, name, err)
		}
		a.users[name] = []byte(hash)
	}
	for _, t := range tokens {
		if t != "" {
			a.tokens = append(a.tokens, sha256.Sum256([]byte(t)))
		}
	}
	return a, nil
}

// Authenticate accepts creds when they match a configured user, otherwise
// token when it matches a configured bearer token.
func (a *Authenticator) Authenticate(ctx context.Context, creds *types.Credentials, token string) (Principal, error) {
	if creds != nil {
		if hash, ok := a.users[creds.Username]; ok {
			if bcrypt.CompareHashAndPassword(hash, []byte(creds.Password)) == nil {
				return Principal{Subject: creds.Username, Scheme: SchemeBasic}, nil
			}
		}
		a.logger.Debug(ctx, "basic credentials rejected", logger.String("username", creds.Username))
	}

	if token != "" {
		sum := sha256.Sum256([]byte(token))
		matched := 0
		for i := range a.tokens {
			matched |= subtle.ConstantTimeCompare(sum[:], a.tokens[i][:])
		}
		if matched == 1 {
			return Principal{Subject: fmt.Sprintf("token:%x", sum[:4]), Scheme: SchemeBearer}, nil
		}
		a.logger.Debug(ctx, "bearer token rejected")
	}

	return Principal{}, ErrUnauthenticated
}
