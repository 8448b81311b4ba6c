package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"cloudinbox/internal/entities"

	"github.com/jackc/pgx/v5/pgxpool"
)

// ChatRepository is the row source: it reads and mutates the flat
// n8n_chat_histories table that the ingestion flow writes into. Rows are
// never deleted here, only inserted (agent replies) and status-flipped
// (mark as read).
type ChatRepository struct {
	db *pgxpool.Pool
}

func NewChatRepository(db *pgxpool.Pool) *ChatRepository {
	return &ChatRepository{db: db}
}

// ListRows returns raw event rows, newest id first like the upstream
// query service did. sessionID and limit are optional filters.
func (r *ChatRepository) ListRows(ctx context.Context, sessionID string, limit int) ([]entities.ChatHistory, error) {
	query := `SELECT id, session_id, message, status, app_state, created_at, updated_at
	          FROM n8n_chat_histories`
	args := []any{}
	if s := strings.TrimSpace(sessionID); s != "" {
		query += " WHERE session_id = $1"
		args = append(args, s)
	}
	query += " ORDER BY id DESC"
	if limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", limit)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, &entities.UpstreamError{Msg: "No se pudo consultar el historial de chat", Err: err}
	}
	defer rows.Close()

	var histories []entities.ChatHistory
	for rows.Next() {
		var (
			h       entities.ChatHistory
			rawMsg  []byte
			created *time.Time
			updated *time.Time
		)
		if err := rows.Scan(&h.ID, &h.SessionID, &rawMsg, &h.Status, &h.AppState, &created, &updated); err != nil {
			return nil, &entities.UpstreamError{Msg: "No se pudo leer el historial de chat", Err: err}
		}
		if created != nil {
			h.CreatedAt = *created
		}
		if updated != nil {
			h.UpdatedAt = *updated
		}
		// Malformed message payloads stay renderable as empty bags
		if err := json.Unmarshal(rawMsg, &h.Message); err != nil {
			h.Message = entities.ChatMessage{}
		}
		histories = append(histories, h)
	}
	if err := rows.Err(); err != nil {
		return nil, &entities.UpstreamError{Msg: "No se pudo leer el historial de chat", Err: err}
	}
	return histories, nil
}

// MarkSessionRead flips every unread row in the session to "read" and
// returns how many rows changed. Calling it again is a no-op.
func (r *ChatRepository) MarkSessionRead(ctx context.Context, sessionID string) (int64, error) {
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return 0, entities.NewValidationError("El identificador de la conversación es obligatorio")
	}

	tag, err := r.db.Exec(ctx,
		`UPDATE n8n_chat_histories SET status = 'read', updated_at = $1
		 WHERE session_id = $2 AND status IS NULL`,
		time.Now().UTC(), sessionID)
	if err != nil {
		return 0, &entities.UpstreamError{Msg: "No se pudo actualizar el estado de los mensajes", Err: err}
	}
	return tag.RowsAffected(), nil
}

// InsertAgentReply persists the webhook's acknowledgement as a new
// agent-authored row, tagged so it is distinguishable from rows written
// by the ingestion flow.
func (r *ChatRepository) InsertAgentReply(ctx context.Context, sessionID, body, externalID string) error {
	message := entities.ChatMessage{
		"type":    "ai",
		"content": map[string]any{"respuesta": body},
	}
	if externalID != "" {
		message["external_id"] = externalID
	}
	rawMsg, err := json.Marshal(message)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	_, err = r.db.Exec(ctx,
		`INSERT INTO n8n_chat_histories (session_id, message, status, app_state, created_at, updated_at)
		 VALUES ($1, $2, 'read', $3, $4, $4)`,
		sessionID, rawMsg, entities.AppStateAgentReply, now)
	if err != nil {
		return &entities.UpstreamError{Msg: "No se pudo guardar la respuesta enviada", Err: err}
	}
	return nil
}
