package domain

import "errors"

var (
	ErrPeerNotFound          = errors.New("peer not found")
	ErrProfileNotFound       = errors.New("profile not found")
	ErrSecretNotFound        = errors.New("secret not found")
	ErrUnknownCategory       = errors.New("unknown notification category")
	ErrUnauthenticated       = errors.New("no session token")
	ErrSessionExpired        = errors.New("session expired")
	ErrStaleResponse         = errors.New("stale response")
	ErrConversationNotActive = errors.New("conversation is not active")
	ErrEmptyMessage          = errors.New("message content is empty")
)

// IsAuthFailure reports errors after which polling must stop until a new session is provided.
func IsAuthFailure(err error) bool {
	return errors.Is(err, ErrUnauthenticated) || errors.Is(err, ErrSessionExpired)
}
