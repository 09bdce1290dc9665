package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"golang.org/x/crypto/bcrypt"
)

// ErrInvalidPassword is returned when the shared password does not
// match the configured hash.
var ErrInvalidPassword = errors.New("invalid password")

// ErrNotConfigured means no password hash is set, so login is disabled.
var ErrNotConfigured = errors.New("no site password configured")

// Service validates the shared club password and manages session
// tokens for the private area.
type Service struct {
	store        SessionStore
	passwordHash []byte
	ttl          time.Duration
}

func NewService(store SessionStore, passwordHash string, ttl time.Duration) *Service {
	return &Service{
		store:        store,
		passwordHash: []byte(passwordHash),
		ttl:          ttl,
	}
}

// SessionTTL reports the configured session lifetime.
func (s *Service) SessionTTL() time.Duration {
	return s.ttl
}

// Login checks the shared password and mints a session token.
func (s *Service) Login(ctx context.Context, password string) (string, error) {
	if len(s.passwordHash) == 0 {
		return "", ErrNotConfigured
	}
	if err := bcrypt.CompareHashAndPassword(s.passwordHash, []byte(password)); err != nil {
		return "", ErrInvalidPassword
	}

	token, err := generateToken()
	if err != nil {
		return "", err
	}
	if err := s.store.SaveSession(ctx, token, s.ttl); err != nil {
		return "", err
	}
	return token, nil
}

// Authenticated reports whether a token names a live session. Empty
// tokens and store errors both read as unauthenticated.
func (s *Service) Authenticated(ctx context.Context, token string) bool {
	if token == "" {
		return false
	}
	ok, err := s.store.SessionExists(ctx, token)
	return err == nil && ok
}

// Logout revokes a session token. Revoking an unknown token is a no-op.
func (s *Service) Logout(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	return s.store.RevokeSession(ctx, token)
}

func generateToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate session token: %w", err)
	}
	return hex.EncodeToString(b), nil
}

// HashPassword derives a bcrypt hash for a plaintext password. Used by
// the hash helper command, not by the request path.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}
