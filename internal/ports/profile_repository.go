package ports

import (
	"context"

	"github.com/bnema/community-inbox/internal/domain"
)

type ProfileRepository interface {
	Get(ctx context.Context, name domain.ProfileName) (domain.Profile, error)
	List(ctx context.Context) ([]domain.Profile, error)
	Save(ctx context.Context, profile domain.Profile) error
}
