package application

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/bnema/community-inbox/internal/domain"
	"github.com/bnema/community-inbox/internal/ports"
)

// ProfileService manages community profiles and the session tokens they reference.
type ProfileService struct {
	repo  ports.ProfileRepository
	store ports.SecretStore
	clock ports.Clock
}

func NewProfileService(repo ports.ProfileRepository, store ports.SecretStore, clock ports.Clock) *ProfileService {
	if clock == nil {
		clock = ports.SystemClock{}
	}

	return &ProfileService{
		repo:  repo,
		store: store,
		clock: clock,
	}
}

// SaveProfile creates or updates a profile. The stored token reference is kept.
func (s *ProfileService) SaveProfile(ctx context.Context, profile domain.Profile) error {
	if strings.TrimSpace(string(profile.Name)) == "" {
		return errors.New("profile name is empty")
	}

	existing, err := s.repo.Get(ctx, profile.Name)
	switch {
	case err == nil:
		profile.TokenRef = existing.TokenRef
	case errors.Is(err, domain.ErrProfileNotFound):
		profile.TokenRef = ""
	default:
		return fmt.Errorf("get profile: %w", err)
	}

	if err := s.repo.Save(ctx, profile); err != nil {
		return fmt.Errorf("save profile: %w", err)
	}
	return nil
}

func (s *ProfileService) Get(ctx context.Context, name domain.ProfileName) (domain.Profile, error) {
	profile, err := s.repo.Get(ctx, name)
	if err != nil {
		return domain.Profile{}, fmt.Errorf("get profile: %w", err)
	}
	return profile, nil
}

func (s *ProfileService) List(ctx context.Context) ([]domain.Profile, error) {
	profiles, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list profiles: %w", err)
	}
	return profiles, nil
}

// SetSessionToken stores token under a fresh secret key, points the profile at
// it and deletes the previous key. Every failure rolls back what was written.
func (s *ProfileService) SetSessionToken(ctx context.Context, name domain.ProfileName, token string) error {
	token = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(token), "Bearer "))
	if token == "" {
		return errors.New("session token is empty")
	}

	profile, err := s.repo.Get(ctx, name)
	if err != nil {
		return fmt.Errorf("get profile: %w", err)
	}
	original := profile
	previousRef := profile.TokenRef

	tokenRef := s.tokenRef(name)
	if err := s.store.Put(ctx, tokenRef, token); err != nil {
		return fmt.Errorf("store session token: %w", err)
	}

	profile.TokenRef = tokenRef
	if err := s.repo.Save(ctx, profile); err != nil {
		if rollbackErr := s.store.Delete(ctx, tokenRef); rollbackErr != nil {
			return fmt.Errorf("save profile session and rollback stored token: %w", errors.Join(err, rollbackErr))
		}
		return fmt.Errorf("save profile session: %w", err)
	}

	if previousRef == "" || previousRef == tokenRef {
		return nil
	}

	if err := s.store.Delete(ctx, previousRef); err != nil {
		var rollbackErr error
		if restoreErr := s.repo.Save(ctx, original); restoreErr != nil {
			rollbackErr = errors.Join(rollbackErr, restoreErr)
		}
		if deleteErr := s.store.Delete(ctx, tokenRef); deleteErr != nil {
			rollbackErr = errors.Join(rollbackErr, deleteErr)
		}
		if rollbackErr != nil {
			return fmt.Errorf("delete previous session token and rollback: %w", errors.Join(err, rollbackErr))
		}
		return fmt.Errorf("delete previous session token: %w", err)
	}

	return nil
}

// RemoveSession forgets the profile's token. The profile itself is kept.
func (s *ProfileService) RemoveSession(ctx context.Context, name domain.ProfileName) error {
	profile, err := s.repo.Get(ctx, name)
	if err != nil {
		return fmt.Errorf("get profile: %w", err)
	}
	if profile.TokenRef == "" {
		return nil
	}
	original := profile

	profile.TokenRef = ""
	if err := s.repo.Save(ctx, profile); err != nil {
		return fmt.Errorf("save profile session: %w", err)
	}

	if err := s.store.Delete(ctx, original.TokenRef); err != nil {
		if restoreErr := s.repo.Save(ctx, original); restoreErr != nil {
			return fmt.Errorf("delete session token and restore profile: %w", errors.Join(err, restoreErr))
		}
		return fmt.Errorf("delete session token: %w", err)
	}

	return nil
}

func (s *ProfileService) tokenRef(name domain.ProfileName) string {
	return fmt.Sprintf("inbox/%s/session-%d", name, s.clock.Now().UTC().UnixNano())
}
