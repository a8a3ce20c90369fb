package session

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/bnema/community-inbox/internal/domain"
	"github.com/bnema/community-inbox/internal/ports"
)

// StoreSource reads the token referenced by a profile from the secret store.
// The token is cached after the first read; expiry is checked on every call.
type StoreSource struct {
	profiles ports.ProfileRepository
	secrets  ports.SecretStore
	name     domain.ProfileName
	clock    ports.Clock

	mu     sync.Mutex
	cached string
}

var _ ports.SessionSource = (*StoreSource)(nil)

func NewStoreSource(profiles ports.ProfileRepository, secrets ports.SecretStore, name domain.ProfileName, clock ports.Clock) *StoreSource {
	if clock == nil {
		clock = ports.SystemClock{}
	}
	return &StoreSource{profiles: profiles, secrets: secrets, name: name, clock: clock}
}

func (s *StoreSource) Token(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cached == "" {
		token, err := s.load(ctx)
		if err != nil {
			return "", err
		}
		s.cached = token
	}

	if err := Check(s.cached, s.clock.Now()); err != nil {
		return "", err
	}
	return s.cached, nil
}

// Invalidate drops the cached token so the next call rereads the store.
func (s *StoreSource) Invalidate() {
	s.mu.Lock()
	s.cached = ""
	s.mu.Unlock()
}

func (s *StoreSource) load(ctx context.Context) (string, error) {
	profile, err := s.profiles.Get(ctx, s.name)
	if err != nil {
		if errors.Is(err, domain.ErrProfileNotFound) {
			return "", fmt.Errorf("profile %s: %w", s.name, domain.ErrUnauthenticated)
		}
		return "", fmt.Errorf("get profile: %w", err)
	}
	if !profile.HasSession() {
		return "", fmt.Errorf("profile %s has no session: %w", s.name, domain.ErrUnauthenticated)
	}

	raw, err := s.secrets.Get(ctx, profile.TokenRef)
	if err != nil {
		if errors.Is(err, domain.ErrSecretNotFound) {
			return "", fmt.Errorf("session token for %s: %w", s.name, domain.ErrUnauthenticated)
		}
		return "", fmt.Errorf("read session token: %w", err)
	}

	token := Normalize(raw)
	if token == "" {
		return "", fmt.Errorf("%w: %w", errEmptyToken, domain.ErrUnauthenticated)
	}
	return token, nil
}

// Static serves a token handed in from the environment.
type Static struct {
	token string
	clock ports.Clock
}

var _ ports.SessionSource = Static{}

func NewStatic(token string, clock ports.Clock) Static {
	if clock == nil {
		clock = ports.SystemClock{}
	}
	return Static{token: Normalize(token), clock: clock}
}

func (s Static) Token(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if err := Check(s.token, s.clock.Now()); err != nil {
		return "", err
	}
	return s.token, nil
}
