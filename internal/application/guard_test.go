package application

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/bnema/community-inbox/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGuardNextTokenSupersedesPrevious(t *testing.T) {
	guard := NewGuard()

	first := guard.NextToken(context.Background())
	second := guard.NextToken(context.Background())

	require.ErrorIs(t, first.Context().Err(), context.Canceled)
	assert.False(t, first.Current())
	assert.True(t, second.Current())

	ran := false
	assert.False(t, first.Commit(func() { ran = true }))
	assert.False(t, ran)
	assert.True(t, second.Commit(func() { ran = true }))
	assert.True(t, ran)
}

func TestGuardNextTokenIfRefusalKeepsOutstandingToken(t *testing.T) {
	guard := NewGuard()
	current := guard.NextToken(context.Background())

	refused, ok := guard.NextTokenIf(context.Background(), func() bool { return false })
	assert.False(t, ok)
	assert.Nil(t, refused)
	assert.True(t, current.Current())
	require.NoError(t, current.Context().Err())

	admitted, ok := guard.NextTokenIf(context.Background(), func() bool { return true })
	require.True(t, ok)
	assert.True(t, admitted.Current())
	assert.False(t, current.Current())

	guard.Close()
	called := false
	_, ok = guard.NextTokenIf(context.Background(), func() bool { called = true; return true })
	assert.False(t, ok)
	assert.False(t, called)
}

func TestGuardCancelPendingAbortsWithoutReplacement(t *testing.T) {
	guard := NewGuard()
	token := guard.NextToken(context.Background())

	guard.CancelPending()

	require.ErrorIs(t, token.Context().Err(), context.Canceled)
	assert.False(t, token.Commit(func() {}))
	assert.True(t, guard.IsAlive())
	assert.True(t, guard.NextToken(context.Background()).Current())
}

func TestGuardCloseIsPermanent(t *testing.T) {
	guard := NewGuard()
	token := guard.NextToken(context.Background())

	guard.Close()

	assert.False(t, guard.IsAlive())
	require.ErrorIs(t, token.Context().Err(), context.Canceled)

	late := guard.NextToken(context.Background())
	require.ErrorIs(t, late.Context().Err(), context.Canceled)
	assert.False(t, late.Commit(func() { t.Fatal("commit after close") }))
}

func TestGuardTokenFollowsParentCancellation(t *testing.T) {
	guard := NewGuard()
	ctx, cancel := context.WithCancel(context.Background())
	token := guard.NextToken(ctx)

	cancel()

	assert.False(t, token.Commit(func() { t.Fatal("commit after parent cancel") }))
}

func TestIsCancellation(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{name: "context canceled", err: context.Canceled, want: true},
		{name: "wrapped canceled", err: fmt.Errorf("list peers: %w", context.Canceled), want: true},
		{name: "stale response", err: domain.ErrStaleResponse, want: true},
		{name: "deadline is a transient failure", err: context.DeadlineExceeded, want: false},
		{name: "server error", err: errors.New("502 bad gateway"), want: false},
		{name: "nil", err: nil, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsCancellation(tt.err))
		})
	}
}
