package auth

import "context"

// Operator is an authenticated admin API account.
type Operator struct {
	Name string
}

// Authenticator defines the interface for authentication implementations.
// This abstraction allows swapping between different auth methods (password, OAuth, etc.)
// without changing the service layer code.
type Authenticator interface {
	// Authenticate verifies the operator's credentials and returns the operator if successful.
	// Returns an error if authentication fails.
	Authenticate(ctx context.Context, name, credential string) (*Operator, error)
}
