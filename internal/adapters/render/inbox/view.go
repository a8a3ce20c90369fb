package inbox

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/bnema/community-inbox/internal/application"
	"github.com/bnema/community-inbox/internal/domain"
	"github.com/charmbracelet/lipgloss"
)

// Section selects the parts of a snapshot to draw.
type Section uint8

const (
	SectionCounts Section = 1 << iota
	SectionPeers
	SectionConversation

	SectionAll = SectionCounts | SectionPeers | SectionConversation
)

type RenderOptions struct {
	Now      time.Time
	Self     domain.PeerID
	Sections Section
	// Cursor highlights a peer row in the interactive view. Negative hides it.
	Cursor int
	// PreviewWidth truncates previews and message bodies; zero keeps them whole.
	PreviewWidth int
}

func (o RenderOptions) has(section Section) bool {
	sections := o.Sections
	if sections == 0 {
		sections = SectionAll
	}
	return sections&section != 0
}

func renderView(snapshot application.Snapshot, opts RenderOptions, s styles) string {
	lines := []string{s.title.Render(titleLine(snapshot))}
	if !snapshot.Authenticated {
		lines = append(lines, s.warning.Render("Not signed in. Run `inbox auth set-token` to connect this profile."))
	}

	if opts.has(SectionCounts) {
		lines = append(lines, s.header.Render(countsLine(snapshot.Counts, s)))
	}
	if opts.has(SectionPeers) {
		lines = append(lines, s.section.Render(renderPeers(snapshot, opts, s)))
	}
	if opts.has(SectionConversation) && snapshot.Selected != "" {
		lines = append(lines, s.section.Render(renderConversation(snapshot, opts, s)))
	}

	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func titleLine(snapshot application.Snapshot) string {
	if snapshot.Badge == 0 {
		return "Inbox"
	}
	return fmt.Sprintf("Inbox (%d unread)", snapshot.Badge)
}

func countsLine(counts domain.NotificationCounts, s styles) string {
	parts := make([]string, 0, len(domain.Categories())+1)
	for _, category := range domain.Categories() {
		parts = append(parts, s.countKey.Render(string(category)+":")+" "+fmt.Sprint(counts.Get(category)))
	}
	parts = append(parts, s.countKey.Render("total:")+" "+fmt.Sprint(counts.Total))
	return strings.Join(parts, "  ")
}

func renderPeers(snapshot application.Snapshot, opts RenderOptions, s styles) string {
	header := s.header.Render(fmt.Sprintf("conversations: %d", len(snapshot.Peers)))
	if len(snapshot.Peers) == 0 {
		return lipgloss.JoinVertical(lipgloss.Left, header, s.empty.Render("No conversations yet."))
	}

	rows := []string{header}
	for i, peer := range snapshot.Peers {
		rows = append(rows, peerRow(peer, i == opts.Cursor, peer.ID == snapshot.Selected, opts, s))
	}
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

func peerRow(peer domain.Peer, cursor bool, active bool, opts RenderOptions, s styles) string {
	marker := "  "
	if active {
		marker = "> "
	}

	name := peerName(peer)
	nameStyle := s.peer
	if cursor {
		nameStyle = s.selected
	}

	parts := []string{marker, nameStyle.Render(name)}
	if peer.UnreadCount > 0 {
		badge := lipgloss.NewStyle().Inherit(s.unread).Foreground(unreadColor(peer.UnreadCount))
		parts = append(parts, " ", badge.Render(fmt.Sprintf("[%d]", peer.UnreadCount)))
	}
	if peer.Local {
		parts = append(parts, " ", s.local.Render("(new)"))
	}
	if peer.LastMessagePreview != "" {
		parts = append(parts, "  ", s.preview.Render(truncate(peer.LastMessagePreview, opts.PreviewWidth)))
	}
	if !peer.LastMessageTime.IsZero() {
		parts = append(parts, "  ", s.timestamp.Render(formatRelative(peer.LastMessageTime, opts.Now)))
	}

	return lipgloss.JoinHorizontal(lipgloss.Top, parts...)
}

func renderConversation(snapshot application.Snapshot, opts RenderOptions, s styles) string {
	view := snapshot.Conversation
	title := s.title.Render("with " + selectedName(snapshot))

	switch {
	case view.State == application.StreamLoading && len(view.Messages) == 0:
		return lipgloss.JoinVertical(lipgloss.Left, title, s.empty.Render("loading…"))
	case len(view.Messages) == 0:
		return lipgloss.JoinVertical(lipgloss.Left, title, s.empty.Render("No messages yet."))
	}

	rows := []string{title}
	for _, message := range view.Messages {
		rows = append(rows, messageRow(message, view.Failed[message.ID], opts, s))
	}
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

func messageRow(message domain.Message, failed bool, opts RenderOptions, s styles) string {
	mine := message.Local || (opts.Self != "" && message.SenderID == opts.Self)

	author := message.SenderName
	if author == "" {
		author = string(message.SenderID)
	}
	style := s.other
	if mine {
		author = "you"
		style = s.self
	}

	line := s.timestamp.Render(formatClock(message.CreatedAt, opts.Now)) + " " +
		style.Render(author+": "+truncate(message.Content, opts.PreviewWidth))
	switch {
	case failed:
		line += " " + s.failed.Render("[not sent]")
	case message.Local:
		line += " " + s.statusLine.Render("[sending]")
	}
	return line
}

func selectedName(snapshot application.Snapshot) string {
	for _, peer := range snapshot.Peers {
		if peer.ID == snapshot.Selected {
			return peerName(peer)
		}
	}
	return string(snapshot.Selected)
}

func peerName(peer domain.Peer) string {
	name := strings.TrimSpace(peer.DisplayName)
	if name == "" {
		return string(peer.ID)
	}
	return name
}

func truncate(text string, width int) string {
	text = strings.Join(strings.Fields(text), " ")
	if width <= 0 {
		return text
	}
	runes := []rune(text)
	if len(runes) <= width {
		return text
	}
	if width == 1 {
		return "…"
	}
	return string(runes[:width-1]) + "…"
}

func formatClock(at, now time.Time) string {
	if at.IsZero() {
		return "--:--"
	}
	if now.IsZero() {
		return at.Format("15:04")
	}

	yearA, monthA, dayA := now.Date()
	yearB, monthB, dayB := at.Date()
	if yearA == yearB && monthA == monthB && dayA == dayB {
		return at.Format("15:04")
	}
	return at.Format("02 Jan 15:04")
}

func formatRelative(at, now time.Time) string {
	if now.IsZero() {
		return formatClock(at, now)
	}

	elapsed := now.Sub(at)
	switch {
	case elapsed < time.Minute:
		return "just now"
	case elapsed < time.Hour:
		return plural(int(elapsed.Minutes()), "minute") + " ago"
	case elapsed < 24*time.Hour:
		return plural(int(elapsed.Hours()), "hour") + " ago"
	case elapsed < 7*24*time.Hour:
		return plural(int(math.Floor(elapsed.Hours()/24)), "day") + " ago"
	default:
		return at.Format("02 Jan")
	}
}

func plural(n int, unit string) string {
	if n == 1 {
		return "1 " + unit
	}
	return fmt.Sprintf("%d %ss", n, unit)
}

// unreadColor brightens from grey to white as the count approaches ten.
func unreadColor(count int) lipgloss.Color {
	return interpolateColor(float64(count), 0, 10)
}

func interpolateColor(value, min, max float64) lipgloss.Color {
	if max == min {
		return lipgloss.Color("255")
	}

	normalized := (value - min) / (max - min)
	if normalized < 0 {
		normalized = 0
	}
	if normalized > 1 {
		normalized = 1
	}

	const base, target = 244.0, 255.0
	return lipgloss.Color(fmt.Sprintf("%d", int(base+(target-base)*normalized)))
}
