package entities

import (
	"encoding/json"
	"time"
)

// ChatMessage is the loosely-typed JSON bag stored in the row's message
// column. Upstream writes whatever shape it likes; only "type" and
// "content" are read here, everything else passes through untouched.
type ChatMessage map[string]any

func (m ChatMessage) Type() string {
	if m == nil {
		return "unknown"
	}
	if t, ok := m["type"].(string); ok && t != "" {
		return t
	}
	return "unknown"
}

func (m ChatMessage) Content() any {
	if m == nil {
		return nil
	}
	return m["content"]
}

// ChatHistory is one chat event row. Raw rows come out of the row source
// with only ID, SessionID, Message, Status, AppState and timestamps set;
// Phone, Type and Parsed are filled in by normalization.
type ChatHistory struct {
	ID        int64          `json:"id"`
	SessionID string         `json:"sessionId"`
	Phone     string         `json:"phone"`
	Type      string         `json:"type"`
	Message   ChatMessage    `json:"message"`
	Status    *string        `json:"status,omitempty"`
	AppState  *string        `json:"appState,omitempty"`
	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
	Parsed    *ParsedContent `json:"parsedContent,omitempty"`
}

// AppStateAgentReply marks rows created by the inbox's own reply path,
// as opposed to rows ingested from the n8n flow.
const AppStateAgentReply = "sent_from_inbox"

// WebhookAck is one acknowledgement entry from the outbound webhook's
// response: the delivery flow's own identifier plus the echoed text.
type WebhookAck struct {
	ID      string `json:"id"`
	Message string `json:"message"`
}

// ParsedContent is the structured view extracted from message content.
// Recognized keys are promoted to fields; unknown keys survive in Extra
// so nothing written upstream is lost on the way to the client.
type ParsedContent struct {
	IsPedido  bool
	Pedido    string
	Volumen   string
	Cliente   string
	Celular   string
	Error     string
	Respuesta string
	Extra     map[string]any
}

// MarshalJSON renders recognized fields under their wire names and folds
// unrecognized keys back in, keeping the payload an open mapping.
func (p ParsedContent) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(p.Extra)+7)
	for k, v := range p.Extra {
		out[k] = v
	}
	if p.IsPedido {
		out["isPedido"] = true
	}
	if p.Pedido != "" {
		out["pedido"] = p.Pedido
	}
	if p.Volumen != "" {
		out["volumen"] = p.Volumen
	}
	if p.Cliente != "" {
		out["cliente"] = p.Cliente
	}
	if p.Celular != "" {
		out["celular"] = p.Celular
	}
	if p.Error != "" {
		out["error"] = p.Error
	}
	if p.Respuesta != "" {
		out["respuesta"] = p.Respuesta
	}
	return json.Marshal(out)
}
