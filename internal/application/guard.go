package application

import (
	"context"
	"errors"
	"sync"

	"github.com/bnema/community-inbox/internal/domain"
)

// Guard serializes one (view, purpose) stream of requests: every new token
// aborts the previous one, and only the latest token of a live guard may
// commit state.
type Guard struct {
	mu     sync.Mutex
	alive  bool
	gen    uint64
	cancel context.CancelFunc
}

func NewGuard() *Guard {
	return &Guard{alive: true}
}

func (g *Guard) IsAlive() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.alive
}

// NextToken aborts any outstanding token and issues a new one derived from ctx.
// Tokens issued after Close are born cancelled.
func (g *Guard) NextToken(ctx context.Context) *Token {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.nextLocked(ctx)
}

// NextTokenIf runs admit under the guard lock and issues a token only when it
// reports true. A refused or closed guard leaves the outstanding token untouched.
func (g *Guard) NextTokenIf(ctx context.Context, admit func() bool) (*Token, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if !g.alive || !admit() {
		return nil, false
	}
	return g.nextLocked(ctx), true
}

func (g *Guard) nextLocked(ctx context.Context) *Token {
	if g.cancel != nil {
		g.cancel()
	}
	g.gen++

	tokenCtx, cancel := context.WithCancel(ctx)
	if !g.alive {
		cancel()
	}
	g.cancel = cancel

	return &Token{guard: g, gen: g.gen, ctx: tokenCtx}
}

// CancelPending aborts the outstanding token, if any, without issuing a new one.
func (g *Guard) CancelPending() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.cancelLocked()
}

// Close marks the owning view as gone. It is permanent.
func (g *Guard) Close() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.alive = false
	g.cancelLocked()
}

func (g *Guard) cancelLocked() {
	if g.cancel != nil {
		g.cancel()
		g.cancel = nil
	}
	g.gen++
}

type Token struct {
	guard *Guard
	gen   uint64
	ctx   context.Context
}

// Context is cancelled as soon as the token is superseded or the guard closes.
func (t *Token) Context() context.Context {
	return t.ctx
}

func (t *Token) Current() bool {
	t.guard.mu.Lock()
	defer t.guard.mu.Unlock()
	return t.currentLocked()
}

// Commit runs fn while holding the guard lock if the token is still current.
// It reports whether fn ran.
func (t *Token) Commit(fn func()) bool {
	t.guard.mu.Lock()
	defer t.guard.mu.Unlock()

	if !t.currentLocked() {
		return false
	}
	fn()
	return true
}

func (t *Token) currentLocked() bool {
	return t.guard.alive && t.guard.gen == t.gen && t.ctx.Err() == nil
}

// IsCancellation reports errors caused by superseded or torn-down requests.
// They are not failures and never reach the user.
func IsCancellation(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, domain.ErrStaleResponse)
}
