package usecases

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseContent(t *testing.T) {
	t.Run("nil content", func(t *testing.T) {
		assert.Nil(t, ParseContent(nil))
	})

	t.Run("empty string", func(t *testing.T) {
		assert.Nil(t, ParseContent("   "))
	})

	t.Run("plain text becomes respuesta", func(t *testing.T) {
		parsed := ParseContent("Hola, ¿en qué puedo ayudarte?")
		require.NotNil(t, parsed)
		assert.Equal(t, "Hola, ¿en qué puedo ayudarte?", parsed.Respuesta)
		assert.False(t, parsed.IsPedido)
	})

	t.Run("structured map", func(t *testing.T) {
		parsed := ParseContent(map[string]any{
			"isPedido": true,
			"pedido":   "12 pares clásicos",
			"volumen":  "12",
			"cliente":  "Tienda Sol",
			"celular":  "3001234567",
		})
		require.NotNil(t, parsed)
		assert.True(t, parsed.IsPedido)
		assert.Equal(t, "12 pares clásicos", parsed.Pedido)
		assert.Equal(t, "Tienda Sol", parsed.Cliente)
		assert.Equal(t, "3001234567", parsed.Celular)
	})

	t.Run("output wrapper is unwrapped", func(t *testing.T) {
		parsed := ParseContent(map[string]any{
			"output": map[string]any{
				"respuesta": "Tu pedido está confirmado",
				"isPedido":  "true",
			},
		})
		require.NotNil(t, parsed)
		assert.Equal(t, "Tu pedido está confirmado", parsed.Respuesta)
		assert.True(t, parsed.IsPedido)
	})

	t.Run("json string is decoded", func(t *testing.T) {
		parsed := ParseContent(`{"respuesta":"Listo","cliente":"Ana"}`)
		require.NotNil(t, parsed)
		assert.Equal(t, "Listo", parsed.Respuesta)
		assert.Equal(t, "Ana", parsed.Cliente)
	})

	t.Run("broken json falls back to raw text", func(t *testing.T) {
		raw := `{"respuesta":"truncad`
		parsed := ParseContent(raw)
		require.NotNil(t, parsed)
		assert.Equal(t, raw, parsed.Respuesta)
	})

	t.Run("json array falls back to raw text", func(t *testing.T) {
		raw := `["uno","dos"]`
		parsed := ParseContent(raw)
		require.NotNil(t, parsed)
		assert.Equal(t, raw, parsed.Respuesta)
	})

	t.Run("unknown keys are kept in extra", func(t *testing.T) {
		parsed := ParseContent(map[string]any{
			"respuesta": "ok",
			"descuento": 0.15,
		})
		require.NotNil(t, parsed)
		require.NotNil(t, parsed.Extra)
		assert.Equal(t, 0.15, parsed.Extra["descuento"])
		assert.NotContains(t, parsed.Extra, "respuesta")
	})

	t.Run("numeric fields are stringified", func(t *testing.T) {
		parsed := ParseContent(map[string]any{"volumen": float64(24), "celular": float64(3001234567)})
		require.NotNil(t, parsed)
		assert.Equal(t, "24", parsed.Volumen)
		assert.Equal(t, "3001234567", parsed.Celular)
	})

	t.Run("unsupported content type", func(t *testing.T) {
		assert.Nil(t, ParseContent(42))
	})
}

func TestTruthy(t *testing.T) {
	assert.True(t, truthy(true))
	assert.True(t, truthy("yes"))
	assert.True(t, truthy(float64(1)))
	assert.False(t, truthy(false))
	assert.False(t, truthy(""))
	assert.False(t, truthy("FALSE"))
	assert.False(t, truthy(float64(0)))
	assert.False(t, truthy(nil))
}
