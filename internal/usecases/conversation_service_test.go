package usecases

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cloudinbox/internal/entities"
	"cloudinbox/internal/logger"
)

type fakeRowSource struct {
	rows      []entities.ChatHistory
	err       error
	markCount int64
	markErr   error
}

func (f *fakeRowSource) ListRows(ctx context.Context, sessionID string, limit int) ([]entities.ChatHistory, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.rows, nil
}

func (f *fakeRowSource) MarkSessionRead(ctx context.Context, sessionID string) (int64, error) {
	return f.markCount, f.markErr
}

func row(id int64, sessionID, msgType string, content any, createdAt time.Time) entities.ChatHistory {
	return entities.ChatHistory{
		ID:        id,
		SessionID: sessionID,
		Message:   entities.ChatMessage{"type": msgType, "content": content},
		CreatedAt: createdAt,
		UpdatedAt: createdAt,
	}
}

func TestNormalizeRow(t *testing.T) {
	h := row(1, "wa-3001234567", "human", map[string]any{"cliente": "Ana", "celular": "3009998877"}, time.Now())
	normalized := NormalizeRow(h)

	assert.Equal(t, "human", normalized.Type)
	assert.Equal(t, "3009998877", normalized.Phone)
	require.NotNil(t, normalized.Parsed)
	assert.Equal(t, "Ana", normalized.Parsed.Cliente)

	t.Run("phone defaults to session id", func(t *testing.T) {
		normalized := NormalizeRow(row(2, "wa-123", "ai", "hola", time.Now()))
		assert.Equal(t, "wa-123", normalized.Phone)
	})

	t.Run("missing type is unknown", func(t *testing.T) {
		normalized := NormalizeRow(entities.ChatHistory{SessionID: "wa-123"})
		assert.Equal(t, "unknown", normalized.Type)
	})
}

func TestAggregate(t *testing.T) {
	base := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	rows := []entities.ChatHistory{
		row(3, "wa-100", "ai", map[string]any{"respuesta": "Confirmado", "cliente": "Tienda Sol", "isPedido": true, "pedido": "12 pares"}, base.Add(2*time.Hour)),
		row(1, "wa-100", "human", "quiero 12 pares", base),
		row(2, "wa-200", "human", "hola", base.Add(time.Hour)),
	}

	conversations := Aggregate(rows)
	require.Len(t, conversations, 2)

	first := conversations[0]
	assert.Equal(t, "wa-100", first.ID)
	require.Len(t, first.Messages, 2)

	t.Run("messages sorted ascending", func(t *testing.T) {
		assert.True(t, first.Messages[0].SentAt.Before(first.Messages[1].SentAt))
		assert.Equal(t, "wa-100-1", first.Messages[0].ID)
		assert.Equal(t, "wa-100-3", first.Messages[1].ID)
	})

	t.Run("summary derived from latest row", func(t *testing.T) {
		assert.Equal(t, "Pedido para Tienda Sol", first.Subject)
		assert.Equal(t, "Confirmado", first.LastMessagePreview)
		assert.Equal(t, entities.PriorityHigh, first.Priority)
		assert.Equal(t, entities.ConversationOpen, first.Status)
		assert.Contains(t, first.Tags, "pedido")
	})

	t.Run("participants include the agent", func(t *testing.T) {
		require.Len(t, first.Participants, 2)
		assert.Equal(t, "Tienda Sol", first.Participants[0].Name)
		assert.Equal(t, AgentID, first.Participants[1].ID)
		require.NotNil(t, first.AssignedTo)
		assert.Equal(t, AgentID, first.AssignedTo.ID)
	})

	t.Run("author types by row type", func(t *testing.T) {
		assert.Equal(t, "customer", first.Messages[0].AuthorType)
		assert.Equal(t, entities.DeliveryRead, first.Messages[0].DeliveryStatus)
		assert.Equal(t, "agent", first.Messages[1].AuthorType)
		assert.Equal(t, AgentID, first.Messages[1].AuthorID)
		assert.Equal(t, entities.DeliveryDelivered, first.Messages[1].DeliveryStatus)
	})

	t.Run("unread counts customer rows without status", func(t *testing.T) {
		assert.Equal(t, 1, first.UnreadCount)
	})
}

func TestAggregateMissingTimestamps(t *testing.T) {
	base := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	conversations := Aggregate([]entities.ChatHistory{
		row(2, "wa-100", "ai", "hola", base),
		row(1, "wa-100", "human", "buenas", time.Time{}),
	})
	require.Len(t, conversations, 1)
	conv := conversations[0]

	// Zero timestamps sort first and get synthesized values
	require.Len(t, conv.Messages, 2)
	assert.Equal(t, "wa-100-1", conv.Messages[0].ID)
	assert.False(t, conv.Messages[0].SentAt.IsZero())
	assert.False(t, conv.LastMessageAt.IsZero())
}

func TestAggregateClosedStatus(t *testing.T) {
	closed := "closed"
	read := "read"
	base := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

	first := row(1, "wa-100", "human", "hola", base)
	first.Status = &read
	last := row(2, "wa-100", "ai", "adiós", base.Add(time.Minute))
	last.Status = &closed

	conversations := Aggregate([]entities.ChatHistory{first, last})
	require.Len(t, conversations, 1)
	assert.Equal(t, entities.ConversationClosed, conversations[0].Status)
	assert.Equal(t, 0, conversations[0].UnreadCount)
}

func TestFetchConversations(t *testing.T) {
	ctx := context.Background()
	log := logger.NewNop()

	t.Run("aggregates live rows and fills the cache", func(t *testing.T) {
		base := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
		source := &fakeRowSource{rows: []entities.ChatHistory{
			row(1, "wa-100", "human", "hola", base),
			row(2, "wa-200", "human", "buenas", base.Add(time.Hour)),
		}}
		cache := NewConversationCache()
		svc := NewConversationService(source, cache, log)

		conversations, err := svc.FetchConversations(ctx)
		require.NoError(t, err)
		require.Len(t, conversations, 2)
		// Newest session first
		assert.Equal(t, "wa-200", conversations[0].ID)

		cached, ok := cache.Get("wa-100")
		require.True(t, ok)
		assert.Equal(t, "wa-100", cached.ID)
	})

	t.Run("row source failure falls back to samples", func(t *testing.T) {
		source := &fakeRowSource{err: errors.New("connection refused")}
		svc := NewConversationService(source, NewConversationCache(), log)

		conversations, err := svc.FetchConversations(ctx)
		require.NoError(t, err)
		assert.Len(t, conversations, 4)
	})

	t.Run("empty table falls back to samples", func(t *testing.T) {
		svc := NewConversationService(&fakeRowSource{}, NewConversationCache(), log)

		conversations, err := svc.FetchConversations(ctx)
		require.NoError(t, err)
		assert.Len(t, conversations, 4)
	})

	t.Run("auth failures surface", func(t *testing.T) {
		source := &fakeRowSource{err: &entities.AuthError{Msg: "Sesión no válida"}}
		svc := NewConversationService(source, NewConversationCache(), log)

		_, err := svc.FetchConversations(ctx)
		var authErr *entities.AuthError
		require.ErrorAs(t, err, &authErr)
	})
}

func TestListHistories(t *testing.T) {
	source := &fakeRowSource{rows: []entities.ChatHistory{
		row(1, "wa-100", "human", map[string]any{"celular": "3001112233"}, time.Now()),
	}}
	svc := NewConversationService(source, NewConversationCache(), logger.NewNop())

	rows, err := svc.ListHistories(context.Background(), "", 0)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "3001112233", rows[0].Phone)
	require.NotNil(t, rows[0].Parsed)
}

func TestBuildSubject(t *testing.T) {
	t.Run("order takes precedence", func(t *testing.T) {
		subject := buildSubject(&entities.ParsedContent{Pedido: "12 pares", Cliente: "Ana"}, "wa-100")
		assert.Equal(t, "Pedido para Ana", subject)
	})

	t.Run("error notes followup", func(t *testing.T) {
		subject := buildSubject(&entities.ParsedContent{Error: "sin stock"}, "wa-100")
		assert.Equal(t, "Seguimiento pendiente (sin stock)", subject)
	})

	t.Run("fallback trims channel prefix", func(t *testing.T) {
		assert.Equal(t, "Conversación 3001234567", buildSubject(nil, "wa-3001234567"))
	})

	t.Run("short session ids stay intact", func(t *testing.T) {
		assert.Equal(t, "Conversación ab", buildSubject(nil, "ab"))
	})
}

func TestDescribeContent(t *testing.T) {
	t.Run("plain string passes through", func(t *testing.T) {
		h := row(1, "wa-100", "human", "hola", time.Now())
		assert.Equal(t, "hola", describeContent(&h))
	})

	t.Run("structured content renders as json", func(t *testing.T) {
		h := row(1, "wa-100", "human", map[string]any{"pedido": "12"}, time.Now())
		assert.Contains(t, describeContent(&h), "pedido")
	})

	t.Run("nil row", func(t *testing.T) {
		assert.Equal(t, "Mensaje sin contenido", describeContent(nil))
	})

	t.Run("truncation keeps runes whole", func(t *testing.T) {
		h := row(1, "wa-100", "human", map[string]any{"notas": strings.Repeat("ñ", 200)}, time.Now())
		got := describeContent(&h)
		assert.LessOrEqual(t, len(got), 140)
		assert.True(t, utf8.ValidString(got))
	})
}
