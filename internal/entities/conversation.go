package entities

import "time"

type Priority string

const (
	PriorityNormal Priority = "normal"
	PriorityHigh   Priority = "high"
)

type ConversationStatus string

const (
	ConversationOpen    ConversationStatus = "open"
	ConversationPending ConversationStatus = "pending"
	ConversationClosed  ConversationStatus = "closed"
	ConversationSnoozed ConversationStatus = "snoozed"
)

type DeliveryStatus string

const (
	DeliverySent      DeliveryStatus = "sent"
	DeliveryDelivered DeliveryStatus = "delivered"
	DeliveryRead      DeliveryStatus = "read"
)

type Participant struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Handle string `json:"handle,omitempty"`
}

type Message struct {
	ID             string         `json:"id"`
	ConversationID string         `json:"conversationId"`
	AuthorID       string         `json:"authorId"`
	AuthorType     string         `json:"authorType"` // "agent" or "customer"
	Body           string         `json:"body"`
	SentAt         time.Time      `json:"sentAt"`
	UpdatedAt      time.Time      `json:"updatedAt"`
	Channel        string         `json:"channel"`
	DeliveryStatus DeliveryStatus `json:"deliveryStatus"`
	Status         *string        `json:"status"`
}

// Conversation is the derived view model for one session. Summary fields
// are functions of the latest row's parsed content and are recomputed on
// every fetch, never stored.
type Conversation struct {
	ID                 string             `json:"id"`
	Subject            string             `json:"subject"`
	Participants       []Participant      `json:"participants"`
	LastMessagePreview string             `json:"lastMessagePreview"`
	LastMessageAt      time.Time          `json:"lastMessageAt"`
	UpdatedAt          time.Time          `json:"updatedAt"`
	UnreadCount        int                `json:"unreadCount"`
	Priority           Priority           `json:"priority"`
	Status             ConversationStatus `json:"status"`
	Tags               []string           `json:"tags"`
	Channel            string             `json:"channel"`
	AssignedTo         *Participant       `json:"assignedTo,omitempty"`
	Messages           []Message          `json:"messages"`
}
