package usecases

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cloudinbox/internal/entities"
	"cloudinbox/internal/infrastructure"
	"cloudinbox/internal/logger"
)

type fakeWebhook struct {
	configured bool
	acks       []entities.WebhookAck
	err        error
	calls      int
	lastBody   string
}

func (f *fakeWebhook) Configured() bool { return f.configured }

func (f *fakeWebhook) Send(ctx context.Context, conversationID, message string) ([]entities.WebhookAck, error) {
	f.calls++
	f.lastBody = message
	return f.acks, f.err
}

type fakeSink struct {
	err     error
	inserts []insertedReply
}

type insertedReply struct {
	sessionID  string
	body       string
	externalID string
}

func (f *fakeSink) InsertAgentReply(ctx context.Context, sessionID, body, externalID string) error {
	if f.err != nil {
		return f.err
	}
	f.inserts = append(f.inserts, insertedReply{sessionID: sessionID, body: body, externalID: externalID})
	return nil
}

func newReplyService(webhook *fakeWebhook, sink *fakeSink, cache *ConversationCache) *ReplyService {
	if cache == nil {
		cache = NewConversationCache()
	}
	return NewReplyService(webhook, sink, cache, nil, logger.NewNop())
}

func TestSendReplyValidation(t *testing.T) {
	svc := newReplyService(&fakeWebhook{configured: true}, &fakeSink{}, nil)

	var validationErr *entities.ValidationError

	_, err := svc.SendReply(context.Background(), "  ", "hola")
	require.ErrorAs(t, err, &validationErr)

	_, err = svc.SendReply(context.Background(), "wa-100", "   ")
	require.ErrorAs(t, err, &validationErr)
}

func TestSendReplyViaWebhook(t *testing.T) {
	ctx := context.Background()

	t.Run("persists the acknowledgement", func(t *testing.T) {
		webhook := &fakeWebhook{configured: true, acks: []entities.WebhookAck{{ID: "ext-1", Message: "hola!"}}}
		sink := &fakeSink{}
		svc := newReplyService(webhook, sink, nil)

		msg, err := svc.SendReply(ctx, "wa-100", "  hola  ")
		require.NoError(t, err)

		assert.Equal(t, "hola", msg.Body)
		assert.Equal(t, "hola", webhook.lastBody)
		assert.Equal(t, AgentID, msg.AuthorID)
		assert.Equal(t, "agent", msg.AuthorType)
		assert.Equal(t, entities.DeliverySent, msg.DeliveryStatus)

		require.Len(t, sink.inserts, 1)
		assert.Equal(t, insertedReply{sessionID: "wa-100", body: "hola!", externalID: "ext-1"}, sink.inserts[0])
	})

	t.Run("empty ack message falls back to the sent body", func(t *testing.T) {
		webhook := &fakeWebhook{configured: true, acks: []entities.WebhookAck{{ID: "ext-2"}}}
		sink := &fakeSink{}
		svc := newReplyService(webhook, sink, nil)

		_, err := svc.SendReply(ctx, "wa-100", "hola")
		require.NoError(t, err)
		require.Len(t, sink.inserts, 1)
		assert.Equal(t, "hola", sink.inserts[0].body)
	})

	t.Run("ack persistence failure does not fail the reply", func(t *testing.T) {
		webhook := &fakeWebhook{configured: true, acks: []entities.WebhookAck{{ID: "ext-3"}}}
		svc := newReplyService(webhook, &fakeSink{err: errors.New("insert failed")}, nil)

		_, err := svc.SendReply(ctx, "wa-100", "hola")
		require.NoError(t, err)
	})

	t.Run("webhook failure surfaces", func(t *testing.T) {
		webhook := &fakeWebhook{configured: true, err: &entities.UpstreamError{Msg: "Webhook request failed with status 500: boom", Status: 500}}
		sink := &fakeSink{}
		svc := newReplyService(webhook, sink, nil)

		_, err := svc.SendReply(ctx, "wa-100", "hola")
		var upstreamErr *entities.UpstreamError
		require.ErrorAs(t, err, &upstreamErr)
		assert.Empty(t, sink.inserts)
	})
}

func TestSendReplyFallbackToStore(t *testing.T) {
	sink := &fakeSink{}
	svc := newReplyService(&fakeWebhook{configured: false}, sink, nil)

	msg, err := svc.SendReply(context.Background(), "wa-100", "hola")
	require.NoError(t, err)
	assert.Equal(t, "hola", msg.Body)

	require.Len(t, sink.inserts, 1)
	assert.Equal(t, insertedReply{sessionID: "wa-100", body: "hola", externalID: ""}, sink.inserts[0])
}

func TestSendReplyFallbackErrorsPropagate(t *testing.T) {
	sink := &fakeSink{err: &entities.AuthError{Msg: "Sesión no válida"}}
	svc := newReplyService(&fakeWebhook{configured: false}, sink, nil)

	_, err := svc.SendReply(context.Background(), "wa-100", "hola")
	var authErr *entities.AuthError
	require.ErrorAs(t, err, &authErr)
}

func TestSendReplyNoStrategyAvailable(t *testing.T) {
	svc := NewReplyService(&fakeWebhook{configured: false}, nil, NewConversationCache(), nil, logger.NewNop())

	_, err := svc.SendReply(context.Background(), "wa-100", "hola")
	var upstreamErr *entities.UpstreamError
	require.ErrorAs(t, err, &upstreamErr)
}

func TestSendReplyUpdatesCache(t *testing.T) {
	base := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	cache := NewConversationCache()
	conv := cachedConversation("wa-100", base)
	conv.Status = entities.ConversationPending
	conv.UnreadCount = 2
	cache.Replace([]entities.Conversation{conv})

	svc := newReplyService(&fakeWebhook{configured: true}, &fakeSink{}, cache)

	msg, err := svc.SendReply(context.Background(), "wa-100", "ya va en camino")
	require.NoError(t, err)

	got, ok := cache.Get("wa-100")
	require.True(t, ok)
	require.Len(t, got.Messages, 1)
	assert.Equal(t, msg.ID, got.Messages[0].ID)
	assert.Equal(t, "ya va en camino", got.LastMessagePreview)
	assert.Equal(t, 0, got.UnreadCount)
	assert.Equal(t, entities.ConversationOpen, got.Status)
}

func TestSendReplyThrottled(t *testing.T) {
	limiter := infrastructure.NewReplyRateLimiter(0.001, 2)
	defer limiter.Close()
	svc := NewReplyService(&fakeWebhook{configured: true}, &fakeSink{}, NewConversationCache(), limiter, logger.NewNop())

	ctx := context.Background()
	for i := 0; i < 2; i++ {
		_, err := svc.SendReply(ctx, "wa-100", "hola")
		require.NoError(t, err)
	}

	_, err := svc.SendReply(ctx, "wa-100", "hola")
	var rateErr *entities.RateLimitError
	require.ErrorAs(t, err, &rateErr)

	t.Run("other sessions are unaffected", func(t *testing.T) {
		_, err := svc.SendReply(ctx, "wa-200", "hola")
		require.NoError(t, err)
	})
}
