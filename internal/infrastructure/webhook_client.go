package infrastructure

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"cloudinbox/internal/entities"
	"cloudinbox/internal/logger"
)

// Guidance shown when the n8n flow answers 404: the workflow is not
// activated (in test mode the webhook accepts a single call after each
// activation), so a generic status-code message would send the agent
// looking in the wrong place.
const webhookInactiveMessage = "El webhook de n8n no está activo o no se encuentra registrado. " +
	"Abre el flujo en n8n, pulsa \"Test workflow\" y vuelve a intentar el envío " +
	"(en modo test el webhook sólo acepta una llamada tras activarlo)."

// WebhookClient delivers agent replies to the configured n8n WhatsApp
// webhook. n8n owns the actual delivery to the messaging network.
type WebhookClient struct {
	url      string
	user     string
	password string
	http     *http.Client
	log      *logger.Logger
}

func NewWebhookClient(url, user, password string, log *logger.Logger) *WebhookClient {
	return &WebhookClient{
		url:      url,
		user:     user,
		password: password,
		http:     &http.Client{Timeout: 30 * time.Second},
		log:      log,
	}
}

// Configured reports whether an outbound webhook URL is set at all.
func (c *WebhookClient) Configured() bool {
	return c.url != ""
}

// Send posts the reply and returns whatever acknowledgement entries the
// flow echoed back. Basic auth is attached only when both credentials
// are configured.
func (c *WebhookClient) Send(ctx context.Context, conversationID, message string) ([]entities.WebhookAck, error) {
	if c.url == "" {
		return nil, &entities.UpstreamError{Msg: "El webhook de n8n no está configurado (N8N_WHATSAPP_WEBHOOK_URL)"}
	}

	payload, _ := json.Marshal(map[string]any{
		"conversationId": conversationID,
		"message":        message,
	})

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(payload))
	if err != nil {
		return nil, &entities.UpstreamError{Msg: "No se pudo preparar la llamada al webhook", Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	if c.user != "" && c.password != "" {
		req.SetBasicAuth(c.user, c.password)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &entities.UpstreamError{Msg: "No se pudo contactar el webhook de n8n", Err: err}
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		if resp.StatusCode == http.StatusNotFound {
			return nil, &entities.UpstreamError{Msg: webhookInactiveMessage, Status: resp.StatusCode}
		}
		details := string(bytes.TrimSpace(body))
		if details == "" {
			details = "No response body"
		}
		return nil, &entities.UpstreamError{
			Msg:    fmt.Sprintf("Webhook request failed with status %d: %s", resp.StatusCode, details),
			Status: resp.StatusCode,
		}
	}

	return parseAcks(body, c.log), nil
}

// parseAcks tolerates every response shape n8n has been seen to emit:
// an array of entries, a single entry object, or no body at all.
func parseAcks(body []byte, log *logger.Logger) []entities.WebhookAck {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return nil
	}

	var acks []entities.WebhookAck
	if err := json.Unmarshal(trimmed, &acks); err == nil {
		return acks
	}

	var single entities.WebhookAck
	if err := json.Unmarshal(trimmed, &single); err == nil && (single.ID != "" || single.Message != "") {
		return []entities.WebhookAck{single}
	}

	log.Debug("webhook response body is not an ack payload", "body", string(trimmed))
	return nil
}
