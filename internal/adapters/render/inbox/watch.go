package inbox

import (
	"context"
	"strings"
	"time"

	"github.com/bnema/community-inbox/internal/application"
	"github.com/bnema/community-inbox/internal/domain"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

const actionTimeout = 15 * time.Second

// Actions is the part of the engine the live view drives.
type Actions interface {
	Snapshot() application.Snapshot
	SelectPeer(ctx context.Context, peerID domain.PeerID) error
	CloseWidget()
	Send(ctx context.Context, peerID domain.PeerID, content string) (domain.Message, error)
	MarkAllRead(ctx context.Context) error
	Refresh(ctx context.Context) error
}

// SnapshotMsg delivers an engine snapshot to the live view.
type SnapshotMsg application.Snapshot

type actionDoneMsg struct {
	label string
	err   error
}

type WatchOptions struct {
	Self  domain.PeerID
	Clock func() time.Time
}

// WatchModel is the interactive inbox: a peer list, the open conversation and a composer.
type WatchModel struct {
	actions  Actions
	opts     WatchOptions
	styles   styles
	snapshot application.Snapshot
	cursor   int
	spinner  spinner.Model
	input    textinput.Model
	status   string
	width    int
}

func NewWatchModel(actions Actions, opts WatchOptions) WatchModel {
	if opts.Clock == nil {
		opts.Clock = time.Now
	}

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	input := textinput.New()
	input.Placeholder = "write a message, enter to send"
	input.CharLimit = 2000

	return WatchModel{
		actions:  actions,
		opts:     opts,
		styles:   newStyles(),
		snapshot: actions.Snapshot(),
		spinner:  sp,
		input:    input,
	}
}

func (m WatchModel) Init() tea.Cmd {
	return m.spinner.Tick
}

func (m WatchModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case SnapshotMsg:
		m.snapshot = application.Snapshot(msg)
		m.cursor = clampCursor(m.cursor, len(m.snapshot.Peers))
		return m, nil

	case actionDoneMsg:
		if msg.err != nil {
			m.status = msg.label + " failed: " + msg.err.Error()
		} else {
			m.status = msg.label
		}
		return m, nil

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.input.Width = max(msg.Width-4, 10)
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		if m.input.Focused() {
			return m.updateComposer(msg)
		}
		return m.updateList(msg)
	}

	return m, nil
}

func (m WatchModel) updateList(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "q":
		return m, tea.Quit
	case "up", "k":
		m.cursor = clampCursor(m.cursor-1, len(m.snapshot.Peers))
	case "down", "j":
		m.cursor = clampCursor(m.cursor+1, len(m.snapshot.Peers))
	case "enter":
		if len(m.snapshot.Peers) == 0 {
			return m, nil
		}
		peerID := m.snapshot.Peers[m.cursor].ID
		m.input.Focus()
		return m, m.run("opened "+string(peerID), func(ctx context.Context) error {
			return m.actions.SelectPeer(ctx, peerID)
		})
	case "esc":
		m.actions.CloseWidget()
		m.status = "conversation closed"
	case "r":
		return m, m.run("refreshed", m.actions.Refresh)
	case "a":
		return m, m.run("all conversations marked read", m.actions.MarkAllRead)
	}
	return m, nil
}

func (m WatchModel) updateComposer(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyCtrlC:
		return m, tea.Quit
	case tea.KeyEsc:
		m.input.Blur()
		return m, nil
	case tea.KeyEnter:
		content := strings.TrimSpace(m.input.Value())
		peerID := m.snapshot.Selected
		if content == "" || peerID == "" {
			return m, nil
		}
		m.input.Reset()
		return m, m.run("sent", func(ctx context.Context) error {
			_, err := m.actions.Send(ctx, peerID, content)
			return err
		})
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m WatchModel) run(label string, fn func(context.Context) error) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), actionTimeout)
		defer cancel()
		return actionDoneMsg{label: label, err: fn(ctx)}
	}
}

func (m WatchModel) View() string {
	opts := RenderOptions{
		Now:          m.opts.Clock(),
		Self:         m.opts.Self,
		Cursor:       m.cursor,
		PreviewWidth: previewWidth(m.width),
	}

	parts := []string{renderView(m.snapshot, opts, m.styles)}
	if m.snapshot.WidgetOpen && m.snapshot.Conversation.State == application.StreamLoading {
		parts = append(parts, m.spinner.View()+" loading conversation")
	}
	if m.snapshot.Selected != "" {
		parts = append(parts, m.styles.section.Render(m.input.View()))
	}

	help := "↑/↓ move · enter open · esc close · r refresh · a mark all read · q quit"
	if m.input.Focused() {
		help = "enter send · esc back to list · ctrl+c quit"
	}
	if m.status != "" {
		help = m.status + " · " + help
	}
	parts = append(parts, m.styles.section.Render(m.styles.statusLine.Render(help)))

	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func clampCursor(cursor int, n int) int {
	if n == 0 || cursor < 0 {
		return 0
	}
	if cursor >= n {
		return n - 1
	}
	return cursor
}

func previewWidth(width int) int {
	if width <= 0 {
		return 60
	}
	return max(width-30, 20)
}
