package usecases

import (
	"encoding/json"
	"strconv"
	"strings"

	"cloudinbox/internal/entities"
)

// Recognized payload keys promoted into ParsedContent fields. Everything
// else passes through in Extra.
var knownContentKeys = map[string]bool{
	"isPedido":  true,
	"pedido":    true,
	"volumen":   true,
	"cliente":   true,
	"celular":   true,
	"error":     true,
	"respuesta": true,
}

// ParseContent extracts a structured payload from the free-form message
// content. It is total: any input yields either nil ("no structured
// content") or a ParsedContent, never an error. Malformed JSON degrades
// to a raw-text fallback so the UI always has something to render.
func ParseContent(content any) *entities.ParsedContent {
	switch v := content.(type) {
	case nil:
		return nil
	case map[string]any:
		return extractPayload(v)
	case string:
		s := strings.TrimSpace(v)
		if s == "" {
			return nil
		}
		if strings.HasPrefix(s, "{") || strings.HasPrefix(s, "[") {
			var decoded any
			if err := json.Unmarshal([]byte(s), &decoded); err == nil {
				if m, ok := decoded.(map[string]any); ok {
					return extractPayload(m)
				}
			}
			// Broken or non-object JSON still has to reach the agent
			return &entities.ParsedContent{Respuesta: v}
		}
		return &entities.ParsedContent{Respuesta: v}
	default:
		return nil
	}
}

// extractPayload unwraps the upstream convention of nesting structured
// answers under an "output" object, then promotes recognized keys.
func extractPayload(value map[string]any) *entities.ParsedContent {
	if value == nil {
		return nil
	}
	if output, ok := value["output"].(map[string]any); ok && output != nil {
		value = output
	}

	parsed := &entities.ParsedContent{
		IsPedido:  truthy(value["isPedido"]),
		Pedido:    asString(value["pedido"]),
		Volumen:   asString(value["volumen"]),
		Cliente:   asString(value["cliente"]),
		Celular:   asString(value["celular"]),
		Error:     asString(value["error"]),
		Respuesta: asString(value["respuesta"]),
	}
	for k, v := range value {
		if knownContentKeys[k] {
			continue
		}
		if parsed.Extra == nil {
			parsed.Extra = make(map[string]any)
		}
		parsed.Extra[k] = v
	}
	return parsed
}

func truthy(v any) bool {
	switch t := v.(type) {
	case bool:
		return t
	case string:
		return t != "" && !strings.EqualFold(t, "false")
	case float64:
		return t != 0
	default:
		return false
	}
}

func asString(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	default:
		return ""
	}
}
