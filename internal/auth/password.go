package auth

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/mmynk/workpilot/internal/config"
)

var (
	ErrInvalidCredentials = errors.New("invalid operator name or password")
	ErrWeakPassword       = errors.New("password must be at least 8 characters")
)

// PasswordAuthenticator implements password-based authentication using bcrypt
// against the operators listed in the configuration.
type PasswordAuthenticator struct {
	hashes map[string][]byte
}

var _ Authenticator = (*PasswordAuthenticator)(nil)

// NewPasswordAuthenticator creates a new password-based authenticator.
func NewPasswordAuthenticator(operators []config.Operator) *PasswordAuthenticator {
	hashes := make(map[string][]byte, len(operators))
	for _, op := range operators {
		hashes[op.Name] = []byte(op.PasswordHash)
	}
	return &PasswordAuthenticator{hashes: hashes}
}

// Authenticate verifies the name and password, returning the operator if valid.
func (a *PasswordAuthenticator) Authenticate(_ context.Context, name, credential string) (*Operator, error) {
	hash, ok := a.hashes[name]
	if !ok {
		return nil, ErrInvalidCredentials
	}

	// Compare password hash
	if err := bcrypt.CompareHashAndPassword(hash, []byte(credential)); err != nil {
		return nil, ErrInvalidCredentials
	}

	return &Operator{Name: name}, nil
}

// HashPassword returns the bcrypt hash to put in an operator's password_hash.
func HashPassword(password string) (string, error) {
	if len(password) < 8 {
		return "", ErrWeakPassword
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hashed), nil
}
