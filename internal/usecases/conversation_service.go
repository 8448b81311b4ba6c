package usecases

import (
	"context"
	"encoding/json"
	"errors"
	"sort"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"cloudinbox/internal/entities"
	"cloudinbox/internal/interfaces"
	"cloudinbox/internal/logger"
)

// The inbox models a single shared agent identity; every outbound message
// is attributed to it.
const (
	AgentID         = "agent-cloud"
	AgentName       = "Equipo Cloud Jeans"
	AgentHandle     = "cloud-jeans"
	ChannelWhatsApp = "whatsapp"
)

func agentParticipant() entities.Participant {
	return entities.Participant{ID: AgentID, Name: AgentName, Handle: AgentHandle}
}

// ConversationService turns flat chat event rows into the Conversation
// view models the inbox renders, with a fixed sample set as fallback so
// the UI is never empty during development.
type ConversationService struct {
	rows  interfaces.RowSource
	cache *ConversationCache
	log   *logger.Logger
}

func NewConversationService(rows interfaces.RowSource, cache *ConversationCache, log *logger.Logger) *ConversationService {
	return &ConversationService{rows: rows, cache: cache, log: log}
}

// NormalizeRow derives the phone, author type and parsed content of a raw
// event row.
func NormalizeRow(h entities.ChatHistory) entities.ChatHistory {
	h.Parsed = ParseContent(h.Message.Content())
	h.Type = h.Message.Type()
	h.Phone = h.SessionID
	if h.Parsed != nil && h.Parsed.Celular != "" {
		h.Phone = h.Parsed.Celular
	}
	return h
}

// ListHistories returns normalized rows for the raw history endpoints.
func (s *ConversationService) ListHistories(ctx context.Context, sessionID string, limit int) ([]entities.ChatHistory, error) {
	rows, err := s.rows.ListRows(ctx, sessionID, limit)
	if err != nil {
		return nil, err
	}
	normalized := make([]entities.ChatHistory, 0, len(rows))
	for _, row := range rows {
		normalized = append(normalized, NormalizeRow(row))
	}
	return normalized, nil
}

// FetchConversations pulls every row, aggregates per session and refreshes
// the cache. Row-source failures and an empty table degrade to the mock
// set; an authentication failure must surface instead of being masked.
func (s *ConversationService) FetchConversations(ctx context.Context) ([]entities.Conversation, error) {
	rows, err := s.rows.ListRows(ctx, "", 0)
	if err != nil {
		var authErr *entities.AuthError
		if errors.As(err, &authErr) {
			return nil, err
		}
		s.log.Warn("row source failed, falling back to mock conversations", "error", err)
		return sortConversations(MockConversations()), nil
	}
	if len(rows) == 0 {
		return sortConversations(MockConversations()), nil
	}

	conversations := sortConversations(Aggregate(rows))
	s.cache.Replace(conversations)
	return conversations, nil
}

// Aggregate groups rows by session key and builds one Conversation per
// group. The summary is a function of the latest row's parsed content
// only; every row becomes one Message in ascending createdAt order.
func Aggregate(rows []entities.ChatHistory) []entities.Conversation {
	grouped := make(map[string][]entities.ChatHistory)
	var order []string

	for _, row := range rows {
		row = NormalizeRow(row)
		key := row.SessionID
		if key == "" {
			key = row.Phone
		}
		if _, seen := grouped[key]; !seen {
			order = append(order, key)
		}
		grouped[key] = append(grouped[key], row)
	}

	conversations := make([]entities.Conversation, 0, len(order))
	for _, sessionID := range order {
		conversations = append(conversations, toConversation(sessionID, grouped[sessionID]))
	}
	return conversations
}

func toConversation(sessionID string, rows []entities.ChatHistory) entities.Conversation {
	// Missing timestamps sort first; ties keep insertion order
	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].CreatedAt.Before(rows[j].CreatedAt)
	})

	latest := rows[len(rows)-1]
	parsed := latest.Parsed

	customerName := sessionID
	customerHandle := sessionID
	if parsed != nil {
		if parsed.Cliente != "" {
			customerName = parsed.Cliente
		}
		if parsed.Celular != "" {
			customerHandle = parsed.Celular
		}
	}

	lastMessageAt := latest.CreatedAt
	if lastMessageAt.IsZero() {
		lastMessageAt = time.Now()
	}
	updatedAt := latest.UpdatedAt
	if updatedAt.IsZero() {
		updatedAt = lastMessageAt
	}

	preview := describeContent(&latest)
	if parsed != nil && parsed.Respuesta != "" {
		preview = parsed.Respuesta
	}

	status := entities.ConversationOpen
	if latest.Status != nil && *latest.Status == "closed" {
		status = entities.ConversationClosed
	}

	priority := entities.PriorityNormal
	if parsed != nil && parsed.IsPedido {
		priority = entities.PriorityHigh
	}

	agent := agentParticipant()
	conversation := entities.Conversation{
		ID:      sessionID,
		Subject: buildSubject(parsed, sessionID),
		Participants: []entities.Participant{
			{ID: "customer-" + sessionID, Name: customerName, Handle: customerHandle},
			agent,
		},
		LastMessagePreview: preview,
		LastMessageAt:      lastMessageAt,
		UpdatedAt:          updatedAt,
		Priority:           priority,
		Status:             status,
		Tags:               buildTags(parsed),
		Channel:            ChannelWhatsApp,
		AssignedTo:         &agent,
	}

	conversation.Messages = make([]entities.Message, 0, len(rows))
	for i, row := range rows {
		msg := toMessage(sessionID, row, i)
		if msg.AuthorType == "customer" && row.Status == nil {
			conversation.UnreadCount++
		}
		conversation.Messages = append(conversation.Messages, msg)
	}
	return conversation
}

func toMessage(conversationID string, row entities.ChatHistory, index int) entities.Message {
	parsed := row.Parsed
	isAgent := row.Type == "ai"

	body := describeContent(&row)
	if parsed != nil {
		if isAgent {
			if parsed.Respuesta != "" {
				body = parsed.Respuesta
			}
		} else if parsed.Pedido != "" {
			body = parsed.Pedido
		} else if parsed.Respuesta != "" {
			body = parsed.Respuesta
		}
	}

	sentAt := row.CreatedAt
	if sentAt.IsZero() {
		sentAt = time.Now().Add(-time.Duration(index) * time.Minute)
	}
	updatedAt := row.UpdatedAt
	if updatedAt.IsZero() {
		updatedAt = sentAt
	}

	authorID := "customer-" + conversationID
	authorType := "customer"
	delivery := entities.DeliveryRead
	if isAgent {
		authorID = AgentID
		authorType = "agent"
		delivery = entities.DeliveryDelivered
	}

	return entities.Message{
		ID:             conversationID + "-" + itoa(row.ID),
		ConversationID: conversationID,
		AuthorID:       authorID,
		AuthorType:     authorType,
		Body:           body,
		SentAt:         sentAt,
		UpdatedAt:      updatedAt,
		Channel:        ChannelWhatsApp,
		DeliveryStatus: delivery,
		Status:         row.Status,
	}
}

func buildSubject(parsed *entities.ParsedContent, sessionID string) string {
	if parsed != nil && parsed.Pedido != "" {
		return "Pedido para " + firstNonEmpty(parsed.Cliente, sessionID)
	}
	if parsed != nil && parsed.Error != "" {
		return "Seguimiento pendiente (" + parsed.Error + ")"
	}
	label := sessionID
	if len(label) > 3 {
		label = label[3:]
	}
	if parsed != nil && parsed.Cliente != "" {
		label = parsed.Cliente
	}
	return "Conversación " + label
}

// describeContent renders raw content when no structured answer exists:
// plain strings as-is, anything else as truncated JSON.
func describeContent(row *entities.ChatHistory) string {
	if row == nil {
		return "Mensaje sin contenido"
	}
	if s, ok := row.Message.Content().(string); ok {
		return s
	}
	value := row.Message.Content()
	if value == nil {
		value = map[string]any(row.Message)
	}
	rendered, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return "Mensaje sin contenido"
	}
	if len(rendered) > 140 {
		cut := 140
		// Back up to a rune boundary so multibyte text is not split
		for cut > 0 && !utf8.RuneStart(rendered[cut]) {
			cut--
		}
		rendered = rendered[:cut]
	}
	return string(rendered)
}

func buildTags(parsed *entities.ParsedContent) []string {
	tags := []string{}
	seen := make(map[string]bool)
	add := func(tag string) {
		if tag != "" && !seen[tag] {
			seen[tag] = true
			tags = append(tags, tag)
		}
	}
	if parsed != nil {
		add(parsed.Volumen)
		if parsed.IsPedido {
			add("pedido")
		}
		if parsed.Error != "" {
			add("requiere-revision")
		}
	}
	return tags
}

func sortConversations(conversations []entities.Conversation) []entities.Conversation {
	sort.SliceStable(conversations, func(i, j int) bool {
		return conversations[i].LastMessageAt.After(conversations[j].LastMessageAt)
	})
	return conversations
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

func itoa(n int64) string {
	return strconv.FormatInt(n, 10)
}
