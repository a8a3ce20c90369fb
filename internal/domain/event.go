package domain

import "time"

// UnreadEvent is the unread picture broadcast to external sinks whenever it changes.
type UnreadEvent struct {
	Profile    ProfileName
	Badge      int
	Counts     NotificationCounts
	PeerUnread map[PeerID]int
	At         time.Time
}

// SameCounters reports whether two events carry identical counters, ignoring time.
func (e UnreadEvent) SameCounters(other UnreadEvent) bool {
	if e.Profile != other.Profile || e.Badge != other.Badge || e.Counts != other.Counts {
		return false
	}
	if len(e.PeerUnread) != len(other.PeerUnread) {
		return false
	}
	for id, count := range e.PeerUnread {
		if otherCount, ok := other.PeerUnread[id]; !ok || otherCount != count {
			return false
		}
	}
	return true
}
