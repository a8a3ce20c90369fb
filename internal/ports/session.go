package ports

import "context"

// SessionSource supplies the bearer token owned by the external session collaborator.
// It returns domain.ErrUnauthenticated when no usable token exists.
type SessionSource interface {
	Token(ctx context.Context) (string, error)
}
