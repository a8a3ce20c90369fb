package pass

import (
	"context"
	"errors"
	"testing"

	"github.com/bnema/community-inbox/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const tokenKey = "inbox/work/session-1"

func TestStorePutInsertsMultiline(t *testing.T) {
	t.Parallel()

	called := false
	store := &Store{
		run: func(ctx context.Context, call invocation) (string, string, error) {
			called = true
			assert.Equal(t, []string{"insert", "--multiline", "--force", tokenKey}, call.args)
			assert.Equal(t, "token\n", call.stdin)
			assert.Empty(t, call.env)
			return "", "", nil
		},
	}

	require.NoError(t, store.Put(context.Background(), tokenKey, "token"))
	assert.True(t, called)
}

func TestStorePutRejectsMultilineSecret(t *testing.T) {
	t.Parallel()

	store := &Store{
		run: func(ctx context.Context, call invocation) (string, string, error) {
			t.Fatalf("pass must not run, got %v", call.args)
			return "", "", nil
		},
	}

	err := store.Put(context.Background(), tokenKey, "token\nsecond")
	require.Error(t, err)
	assert.ErrorContains(t, err, "single line")
}

func TestStoreWithStoreDirSetsEnvironment(t *testing.T) {
	t.Parallel()

	var envs [][]string
	store := NewStore(WithStoreDir("/home/ada/.inbox-store"))
	store.run = func(ctx context.Context, call invocation) (string, string, error) {
		envs = append(envs, call.env)
		return "token\n", "", nil
	}

	require.NoError(t, store.Put(context.Background(), tokenKey, "token"))
	_, err := store.Get(context.Background(), tokenKey)
	require.NoError(t, err)
	require.NoError(t, store.Delete(context.Background(), tokenKey))

	require.Len(t, envs, 3)
	for _, env := range envs {
		assert.Equal(t, []string{"PASSWORD_STORE_DIR=/home/ada/.inbox-store"}, env)
	}
}

func TestStoreGetReturnsFirstLine(t *testing.T) {
	t.Parallel()

	store := &Store{
		run: func(ctx context.Context, call invocation) (string, string, error) {
			assert.Equal(t, []string{"show", tokenKey}, call.args)
			assert.Empty(t, call.stdin)
			return "token\r\nurl: https://community.example\n", "", nil
		},
	}

	value, err := store.Get(context.Background(), tokenKey)
	require.NoError(t, err)
	assert.Equal(t, "token", value)
}

func TestStoreGetMapsMissingEntry(t *testing.T) {
	t.Parallel()

	store := &Store{
		run: func(ctx context.Context, call invocation) (string, string, error) {
			return "", "Error: inbox/work/session-1 is not in the password store.", errors.New("exit status 1")
		},
	}

	_, err := store.Get(context.Background(), tokenKey)
	require.ErrorIs(t, err, domain.ErrSecretNotFound)
}

func TestStoreGetReportsStderr(t *testing.T) {
	t.Parallel()

	store := &Store{
		run: func(ctx context.Context, call invocation) (string, string, error) {
			return "", "gpg: decryption failed: No secret key", errors.New("exit status 2")
		},
	}

	_, err := store.Get(context.Background(), tokenKey)
	require.Error(t, err)
	assert.ErrorContains(t, err, "pass show")
	assert.ErrorContains(t, err, tokenKey)
	assert.ErrorContains(t, err, "No secret key")
}

func TestStoreDeleteIgnoresMissingEntry(t *testing.T) {
	t.Parallel()

	store := &Store{
		run: func(ctx context.Context, call invocation) (string, string, error) {
			assert.Equal(t, []string{"rm", "--force", tokenKey}, call.args)
			return "", "Error: inbox/work/session-1 is not in the password store.", errors.New("exit status 1")
		},
	}

	require.NoError(t, store.Delete(context.Background(), tokenKey))
}

func TestStoreDeletePropagatesUnavailable(t *testing.T) {
	t.Parallel()

	store := &Store{
		run: func(ctx context.Context, call invocation) (string, string, error) {
			return "", "", ErrUnavailable
		},
	}

	require.ErrorIs(t, store.Delete(context.Background(), tokenKey), ErrUnavailable)
}

func TestStoreHonoursCancelledContext(t *testing.T) {
	t.Parallel()

	store := &Store{
		run: func(ctx context.Context, call invocation) (string, string, error) {
			t.Fatalf("pass must not run, got %v", call.args)
			return "", "", nil
		},
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.ErrorIs(t, store.Delete(ctx, tokenKey), context.Canceled)
}
