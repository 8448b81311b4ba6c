package usecases

import (
	"context"
	"errors"
	"strings"
	"time"

	"cloudinbox/internal/entities"
	"cloudinbox/internal/infrastructure"
	"cloudinbox/internal/interfaces"
	"cloudinbox/internal/logger"

	"github.com/google/uuid"
)

// errStrategyUnavailable marks a delivery strategy that cannot run at all
// (e.g. no webhook configured), as opposed to one that ran and failed.
var errStrategyUnavailable = errors.New("reply strategy unavailable")

type replyStrategy func(ctx context.Context, conversationID, body string) (entities.Message, error)

// ReplyService dispatches agent replies through an ordered strategy
// chain: the configured n8n webhook first, local persistence when no
// webhook exists. A strategy that is unavailable demotes to the next
// one; a strategy that ran and failed surfaces its error, because the
// webhook is the source of truth for delivery and simulating success
// here would lie to the agent.
type ReplyService struct {
	webhook interfaces.WebhookSender
	sink    interfaces.ReplySink
	cache   *ConversationCache
	limiter *infrastructure.ReplyRateLimiter
	log     *logger.Logger
}

func NewReplyService(webhook interfaces.WebhookSender, sink interfaces.ReplySink, cache *ConversationCache, limiter *infrastructure.ReplyRateLimiter, log *logger.Logger) *ReplyService {
	return &ReplyService{
		webhook: webhook,
		sink:    sink,
		cache:   cache,
		limiter: limiter,
		log:     log,
	}
}

// SendReply validates, throttles and dispatches an outbound reply, then
// returns a synthesized agent Message so the UI can render immediately
// without waiting for the next poll.
func (s *ReplyService) SendReply(ctx context.Context, conversationID, body string) (entities.Message, error) {
	conversationID = strings.TrimSpace(conversationID)
	body = strings.TrimSpace(body)
	if conversationID == "" {
		return entities.Message{}, entities.NewValidationError("El identificador de la conversación es obligatorio")
	}
	if body == "" {
		return entities.Message{}, entities.NewValidationError("El mensaje no puede estar vacío")
	}
	if s.limiter != nil && !s.limiter.Allow(conversationID) {
		return entities.Message{}, &entities.RateLimitError{Msg: "Demasiados envíos seguidos a esta conversación, espera un momento"}
	}

	strategies := []replyStrategy{s.sendViaWebhook, s.sendViaStore}
	for _, strategy := range strategies {
		msg, err := strategy(ctx, conversationID, body)
		if errors.Is(err, errStrategyUnavailable) {
			continue
		}
		if err != nil {
			return entities.Message{}, err
		}
		s.cache.AppendMessage(msg)
		return msg, nil
	}
	return entities.Message{}, &entities.UpstreamError{Msg: "No hay ninguna vía configurada para enviar respuestas"}
}

func (s *ReplyService) sendViaWebhook(ctx context.Context, conversationID, body string) (entities.Message, error) {
	if s.webhook == nil || !s.webhook.Configured() {
		return entities.Message{}, errStrategyUnavailable
	}

	acks, err := s.webhook.Send(ctx, conversationID, body)
	if err != nil {
		return entities.Message{}, err
	}

	// The webhook already accepted the message; failing to record its
	// acknowledgement must not fail the reply.
	if len(acks) > 0 && s.sink != nil {
		ack := acks[0]
		echoed := ack.Message
		if echoed == "" {
			echoed = body
		}
		if err := s.sink.InsertAgentReply(ctx, conversationID, echoed, ack.ID); err != nil {
			s.log.Error("failed to persist webhook acknowledgement", "session_id", conversationID, "error", err)
		}
	}

	return s.syntheticReply(conversationID, body), nil
}

func (s *ReplyService) sendViaStore(ctx context.Context, conversationID, body string) (entities.Message, error) {
	if s.sink == nil {
		return entities.Message{}, errStrategyUnavailable
	}
	if err := s.sink.InsertAgentReply(ctx, conversationID, body, ""); err != nil {
		return entities.Message{}, err
	}
	return s.syntheticReply(conversationID, body), nil
}

func (s *ReplyService) syntheticReply(conversationID, body string) entities.Message {
	now := time.Now()
	pending := "pending"
	return entities.Message{
		ID:             uuid.NewString(),
		ConversationID: conversationID,
		AuthorID:       AgentID,
		AuthorType:     "agent",
		Body:           body,
		SentAt:         now,
		UpdatedAt:      now,
		Channel:        ChannelWhatsApp,
		DeliveryStatus: entities.DeliverySent,
		Status:         &pending,
	}
}
