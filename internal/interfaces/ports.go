package interfaces

import (
	"context"

	"cloudinbox/internal/entities"
)

// UserStore holds registered inbox users.
type UserStore interface {
	Create(ctx context.Context, user *entities.User) error
	GetByEmail(ctx context.Context, email string) (*entities.User, error)
	GetByID(ctx context.Context, id string) (*entities.User, error)
	TouchUpdatedAt(ctx context.Context, id string) error
}

// RowSource is the external query service returning chat event rows.
type RowSource interface {
	ListRows(ctx context.Context, sessionID string, limit int) ([]entities.ChatHistory, error)
	MarkSessionRead(ctx context.Context, sessionID string) (int64, error)
}

// WebhookSender delivers an agent reply through the external messaging
// webhook, which is the source of truth for delivery.
type WebhookSender interface {
	Configured() bool
	Send(ctx context.Context, conversationID, message string) ([]entities.WebhookAck, error)
}

// ReplySink persists the webhook's acknowledgement as a new chat row.
type ReplySink interface {
	InsertAgentReply(ctx context.Context, sessionID, body, externalID string) error
}

// CatalogSource returns metadata about generated catalog artifacts.
type CatalogSource interface {
	LatestMetadata(ctx context.Context) (*entities.CatalogMetadata, error)
}
