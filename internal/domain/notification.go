package domain

import (
	"fmt"
	"strings"
)

type Category string

const (
	CategoryReply   Category = "reply"
	CategoryMention Category = "mention"
	CategoryMessage Category = "message"
	CategorySystem  Category = "system"
)

var categories = []Category{CategoryReply, CategoryMention, CategoryMessage, CategorySystem}

func Categories() []Category {
	out := make([]Category, len(categories))
	copy(out, categories)
	return out
}

func ParseCategory(raw string) (Category, error) {
	category := Category(strings.ToLower(strings.TrimSpace(raw)))
	switch category {
	case CategoryReply, CategoryMention, CategoryMessage, CategorySystem:
		return category, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownCategory, raw)
	}
}

// NotificationCounts holds unread notification counters per category.
// Total is whatever the server reported; a zero Total with non-zero
// categories means the payload omitted it.
type NotificationCounts struct {
	Reply   int
	Mention int
	Message int
	System  int
	Total   int
}

func (c NotificationCounts) Get(category Category) int {
	switch category {
	case CategoryReply:
		return c.Reply
	case CategoryMention:
		return c.Mention
	case CategoryMessage:
		return c.Message
	case CategorySystem:
		return c.System
	default:
		return 0
	}
}

func (c *NotificationCounts) Set(category Category, value int) {
	value = ClampUnread(value)
	switch category {
	case CategoryReply:
		c.Reply = value
	case CategoryMention:
		c.Mention = value
	case CategoryMessage:
		c.Message = value
	case CategorySystem:
		c.System = value
	}
}

// Sum adds the four category counters, ignoring Total.
func (c NotificationCounts) Sum() int {
	return c.Reply + c.Mention + c.Message + c.System
}
