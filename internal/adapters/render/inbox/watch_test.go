package inbox

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/bnema/community-inbox/internal/application"
	"github.com/bnema/community-inbox/internal/domain"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeActions struct {
	snapshot application.Snapshot
	selected []domain.PeerID
	sent     []string
	closed   int
	sendErr  error
}

func (f *fakeActions) Snapshot() application.Snapshot { return f.snapshot }

func (f *fakeActions) SelectPeer(_ context.Context, peerID domain.PeerID) error {
	f.selected = append(f.selected, peerID)
	return nil
}

func (f *fakeActions) CloseWidget() { f.closed++ }

func (f *fakeActions) Send(_ context.Context, _ domain.PeerID, content string) (domain.Message, error) {
	f.sent = append(f.sent, content)
	return domain.Message{}, f.sendErr
}

func (f *fakeActions) MarkAllRead(context.Context) error { return nil }

func (f *fakeActions) Refresh(context.Context) error { return nil }

func newWatch(actions *fakeActions) WatchModel {
	return NewWatchModel(actions, WatchOptions{Self: "me", Clock: func() time.Time { return now }})
}

func press(t *testing.T, m WatchModel, key tea.KeyMsg) (WatchModel, tea.Cmd) {
	t.Helper()
	updated, cmd := m.Update(key)
	next, ok := updated.(WatchModel)
	require.True(t, ok)
	return next, cmd
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestWatchModelOpensPeerUnderCursor(t *testing.T) {
	actions := &fakeActions{snapshot: sampleSnapshot()}
	m := newWatch(actions)

	m, _ = press(t, m, runes("j"))
	assert.Equal(t, 1, m.cursor)
	m, _ = press(t, m, runes("j"))
	m, _ = press(t, m, runes("j"))
	assert.Equal(t, 2, m.cursor)

	m, cmd := press(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	done, ok := cmd().(actionDoneMsg)
	require.True(t, ok)
	require.NoError(t, done.err)
	assert.Equal(t, []domain.PeerID{"zoe"}, actions.selected)
	assert.True(t, m.input.Focused())
}

func TestWatchModelSendsComposedMessage(t *testing.T) {
	actions := &fakeActions{snapshot: sampleSnapshot()}
	m := newWatch(actions)
	m.input.Focus()

	for _, r := range "hello" {
		m, _ = press(t, m, runes(string(r)))
	}
	m, cmd := press(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	msg := cmd()

	assert.Equal(t, []string{"hello"}, actions.sent)
	assert.Empty(t, m.input.Value())

	updated, _ := m.Update(msg)
	assert.Equal(t, "sent", updated.(WatchModel).status)
}

func TestWatchModelReportsFailedSend(t *testing.T) {
	actions := &fakeActions{snapshot: sampleSnapshot(), sendErr: errors.New("bad gateway")}
	m := newWatch(actions)
	m.input.Focus()
	m.input.SetValue("hi")

	m, cmd := press(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	updated, _ := m.Update(cmd())
	assert.Contains(t, updated.(WatchModel).status, "sent failed: bad gateway")
	assert.Contains(t, updated.View(), "bad gateway")
}

func TestWatchModelEscClosesWidgetAndSnapshotUpdatesView(t *testing.T) {
	actions := &fakeActions{snapshot: sampleSnapshot()}
	m := newWatch(actions)
	m.cursor = 2

	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	assert.Equal(t, 1, actions.closed)

	updated, _ := m.Update(SnapshotMsg(application.Snapshot{Authenticated: true, Peers: []domain.Peer{{ID: "alice"}}}))
	next := updated.(WatchModel)
	assert.Zero(t, next.cursor)
	assert.Contains(t, next.View(), "conversations: 1")
	assert.NotContains(t, next.View(), "dinner?")
}

func TestWatchModelQuits(t *testing.T) {
	m := newWatch(&fakeActions{})

	_, cmd := press(t, m, runes("q"))
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}
