package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/bnema/community-inbox/internal/domain"
	"github.com/bnema/community-inbox/internal/ports/mocks"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)

type fixedClock struct{}

func (fixedClock) Now() time.Time { return now }

func signedToken(t *testing.T, subject string, expiresAt time.Time) string {
	t.Helper()

	claims := jwt.RegisteredClaims{Subject: subject}
	if !expiresAt.IsZero() {
		claims.ExpiresAt = jwt.NewNumericDate(expiresAt)
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return token
}

func TestNormalizeStripsBearerScheme(t *testing.T) {
	assert.Equal(t, "abc", Normalize("  Bearer abc \n"))
	assert.Equal(t, "abc", Normalize("bearer abc"))
	assert.Equal(t, "abc", Normalize("abc"))
	assert.Empty(t, Normalize("Bearer "))
}

func TestInspectReadsClaimsWithoutSecret(t *testing.T) {
	token := signedToken(t, "u-17", now.Add(time.Hour))

	info := Inspect(token)
	assert.True(t, info.JWT)
	assert.Equal(t, "u-17", info.Subject)
	assert.True(t, info.ExpiresAt.Equal(now.Add(time.Hour)))

	assert.Equal(t, TokenInfo{}, Inspect("opaque-session-cookie"))
	assert.Equal(t, TokenInfo{}, Inspect("not.a.jwt"))
}

func TestCheck(t *testing.T) {
	require.ErrorIs(t, Check("", now), domain.ErrUnauthenticated)
	require.NoError(t, Check("opaque", now))
	require.NoError(t, Check(signedToken(t, "u", now.Add(time.Minute)), now))
	require.NoError(t, Check(signedToken(t, "u", time.Time{}), now))

	err := Check(signedToken(t, "u", now.Add(-time.Minute)), now)
	require.ErrorIs(t, err, domain.ErrSessionExpired)
	assert.True(t, domain.IsAuthFailure(err))
}

func TestStoreSourceReadsAndCachesToken(t *testing.T) {
	profiles := mocks.NewMockProfileRepository(t)
	secrets := mocks.NewMockSecretStore(t)
	profiles.EXPECT().Get(mock.Anything, domain.ProfileName("work")).Return(domain.Profile{Name: "work", TokenRef: "inbox/work/session-1"}, nil).Once()
	secrets.EXPECT().Get(mock.Anything, "inbox/work/session-1").Return("Bearer opaque-token\n", nil).Once()

	source := NewStoreSource(profiles, secrets, "work", fixedClock{})

	for i := 0; i < 3; i++ {
		token, err := source.Token(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "opaque-token", token)
	}
}

func TestStoreSourceInvalidateRereads(t *testing.T) {
	profiles := mocks.NewMockProfileRepository(t)
	secrets := mocks.NewMockSecretStore(t)
	profiles.EXPECT().Get(mock.Anything, domain.ProfileName("work")).Return(domain.Profile{Name: "work", TokenRef: "ref"}, nil).Twice()
	secrets.EXPECT().Get(mock.Anything, "ref").Return("first", nil).Once()
	secrets.EXPECT().Get(mock.Anything, "ref").Return("second", nil).Once()

	source := NewStoreSource(profiles, secrets, "work", fixedClock{})
	token, err := source.Token(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "first", token)

	source.Invalidate()
	token, err = source.Token(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "second", token)
}

func TestStoreSourceWithoutSession(t *testing.T) {
	tests := []struct {
		name  string
		setup func(*mocks.MockProfileRepository, *mocks.MockSecretStore)
	}{
		{
			name: "missing profile",
			setup: func(profiles *mocks.MockProfileRepository, _ *mocks.MockSecretStore) {
				profiles.EXPECT().Get(mock.Anything, domain.ProfileName("work")).Return(domain.Profile{}, domain.ErrProfileNotFound)
			},
		},
		{
			name: "no token ref",
			setup: func(profiles *mocks.MockProfileRepository, _ *mocks.MockSecretStore) {
				profiles.EXPECT().Get(mock.Anything, domain.ProfileName("work")).Return(domain.Profile{Name: "work"}, nil)
			},
		},
		{
			name: "secret missing",
			setup: func(profiles *mocks.MockProfileRepository, secrets *mocks.MockSecretStore) {
				profiles.EXPECT().Get(mock.Anything, domain.ProfileName("work")).Return(domain.Profile{Name: "work", TokenRef: "ref"}, nil)
				secrets.EXPECT().Get(mock.Anything, "ref").Return("", domain.ErrSecretNotFound)
			},
		},
		{
			name: "blank secret",
			setup: func(profiles *mocks.MockProfileRepository, secrets *mocks.MockSecretStore) {
				profiles.EXPECT().Get(mock.Anything, domain.ProfileName("work")).Return(domain.Profile{Name: "work", TokenRef: "ref"}, nil)
				secrets.EXPECT().Get(mock.Anything, "ref").Return("Bearer  ", nil)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			profiles := mocks.NewMockProfileRepository(t)
			secrets := mocks.NewMockSecretStore(t)
			tt.setup(profiles, secrets)

			_, err := NewStoreSource(profiles, secrets, "work", fixedClock{}).Token(context.Background())
			require.ErrorIs(t, err, domain.ErrUnauthenticated)
		})
	}
}

func TestStoreSourcePropagatesStoreFailure(t *testing.T) {
	profiles := mocks.NewMockProfileRepository(t)
	secrets := mocks.NewMockSecretStore(t)
	storeErr := errors.New("gpg agent unavailable")
	profiles.EXPECT().Get(mock.Anything, domain.ProfileName("work")).Return(domain.Profile{Name: "work", TokenRef: "ref"}, nil)
	secrets.EXPECT().Get(mock.Anything, "ref").Return("", storeErr)

	_, err := NewStoreSource(profiles, secrets, "work", fixedClock{}).Token(context.Background())
	require.ErrorIs(t, err, storeErr)
	assert.False(t, domain.IsAuthFailure(err))
}

func TestStoreSourceRejectsExpiredJWT(t *testing.T) {
	profiles := mocks.NewMockProfileRepository(t)
	secrets := mocks.NewMockSecretStore(t)
	profiles.EXPECT().Get(mock.Anything, domain.ProfileName("work")).Return(domain.Profile{Name: "work", TokenRef: "ref"}, nil)
	secrets.EXPECT().Get(mock.Anything, "ref").Return(signedToken(t, "u-17", now.Add(-time.Second)), nil)

	_, err := NewStoreSource(profiles, secrets, "work", fixedClock{}).Token(context.Background())
	require.ErrorIs(t, err, domain.ErrSessionExpired)
}

func TestStatic(t *testing.T) {
	token, err := NewStatic("Bearer env-token", fixedClock{}).Token(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "env-token", token)

	_, err = NewStatic("", fixedClock{}).Token(context.Background())
	require.ErrorIs(t, err, domain.ErrUnauthenticated)
}
