package usecases

import (
	"sync"

	"cloudinbox/internal/entities"
)

// ConversationCache holds the last aggregated view keyed by conversation
// id. It exists so read-state and reply results can be merged locally
// between polls instead of waiting for a full refetch; the next poll's
// server truth overwrites whatever is here.
type ConversationCache struct {
	mu   sync.RWMutex
	byID map[string]entities.Conversation
}

func NewConversationCache() *ConversationCache {
	return &ConversationCache{byID: make(map[string]entities.Conversation)}
}

// Replace swaps the whole cache for a freshly aggregated snapshot.
func (c *ConversationCache) Replace(conversations []entities.Conversation) {
	next := make(map[string]entities.Conversation, len(conversations))
	for _, conv := range conversations {
		next[conv.ID] = conv
	}
	c.mu.Lock()
	c.byID = next
	c.mu.Unlock()
}

func (c *ConversationCache) Get(id string) (entities.Conversation, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	conv, ok := c.byID[id]
	return conv, ok
}

// Snapshot returns every cached conversation, most recently active first.
func (c *ConversationCache) Snapshot() []entities.Conversation {
	c.mu.RLock()
	conversations := make([]entities.Conversation, 0, len(c.byID))
	for _, conv := range c.byID {
		conversations = append(conversations, conv)
	}
	c.mu.RUnlock()
	return sortConversations(conversations)
}

// MarkRead flips every unread message of the conversation to "read",
// zeroes the unread counter and bumps UpdatedAt to the latest touched
// message timestamp. Returns false when nothing changed.
//
// Cached message slices are shared with conversation lists already
// handed to callers, so mutations always go through a fresh copy.
func (c *ConversationCache) MarkRead(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	conv, ok := c.byID[id]
	if !ok {
		return false
	}

	read := "read"
	changed := false
	messages := copyMessages(conv.Messages)
	for i := range messages {
		if messages[i].Status == nil {
			status := read
			messages[i].Status = &status
			changed = true
			if messages[i].SentAt.After(conv.UpdatedAt) {
				conv.UpdatedAt = messages[i].SentAt
			}
		}
	}
	if !changed {
		return false
	}

	conv.Messages = messages
	conv.UnreadCount = 0
	c.byID[id] = conv
	return true
}

// AppendMessage merges a just-sent agent reply into its conversation:
// append, refresh the preview and activity timestamp, clear unread, and
// promote a pending conversation back to open.
func (c *ConversationCache) AppendMessage(msg entities.Message) {
	c.mu.Lock()
	defer c.mu.Unlock()

	conv, ok := c.byID[msg.ConversationID]
	if !ok {
		return
	}

	conv.Messages = append(copyMessages(conv.Messages), msg)
	conv.LastMessagePreview = msg.Body
	conv.LastMessageAt = msg.SentAt
	conv.UpdatedAt = msg.SentAt
	conv.UnreadCount = 0
	if conv.Status == entities.ConversationPending {
		conv.Status = entities.ConversationOpen
	}
	c.byID[msg.ConversationID] = conv
}

func copyMessages(messages []entities.Message) []entities.Message {
	fresh := make([]entities.Message, len(messages))
	copy(fresh, messages)
	return fresh
}
