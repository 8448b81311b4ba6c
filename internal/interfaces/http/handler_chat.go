package http

import (
	"net/http"
	"strconv"
	"strings"

	"cloudinbox/internal/interfaces"
	"cloudinbox/internal/logger"
	"cloudinbox/internal/usecases"

	"github.com/gin-gonic/gin"
)

type ChatHandler struct {
	conversations *usecases.ConversationService
	replies       *usecases.ReplyService
	rows          interfaces.RowSource
	cache         *usecases.ConversationCache
	log           *logger.Logger
}

func NewChatHandler(conversations *usecases.ConversationService, replies *usecases.ReplyService, rows interfaces.RowSource, cache *usecases.ConversationCache, log *logger.Logger) *ChatHandler {
	return &ChatHandler{
		conversations: conversations,
		replies:       replies,
		rows:          rows,
		cache:         cache,
		log:           log,
	}
}

// ListHistories returns normalized raw rows, optionally filtered by
// sessionId and capped by limit.
func (h *ChatHandler) ListHistories(c *gin.Context) {
	sessionID := strings.TrimSpace(c.Query("sessionId"))
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			limit = parsed
		}
	}

	histories, err := h.conversations.ListHistories(c.Request.Context(), sessionID, limit)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": histories})
}

func (h *ChatHandler) GetSessionHistories(c *gin.Context) {
	sessionID := c.Param("sessionId")
	if !ValidSessionID(sessionID) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Identificador de conversación inválido"})
		return
	}

	histories, err := h.conversations.ListHistories(c.Request.Context(), sessionID, 0)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": histories})
}

// ListConversations serves the aggregated view models the inbox renders.
func (h *ChatHandler) ListConversations(c *gin.Context) {
	conversations, err := h.conversations.FetchConversations(c.Request.Context())
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": conversations})
}

// MarkRead flips the session's unread rows to read and merges the result
// into the cached view so the UI updates before the next poll.
func (h *ChatHandler) MarkRead(c *gin.Context) {
	sessionID := c.Param("sessionId")
	if !ValidSessionID(sessionID) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Identificador de conversación inválido"})
		return
	}

	updated, err := h.rows.MarkSessionRead(c.Request.Context(), sessionID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	h.cache.MarkRead(sessionID)

	c.JSON(http.StatusOK, gin.H{"data": gin.H{"updatedCount": updated}})
}

func (h *ChatHandler) Reply(c *gin.Context) {
	sessionID := c.Param("sessionId")
	if !ValidSessionID(sessionID) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Identificador de conversación inválido"})
		return
	}

	var req struct {
		Message string `json:"message"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "El mensaje no puede estar vacío"})
		return
	}

	body := SanitizeString(req.Message)
	if !ValidateLength(strings.TrimSpace(body), 1, MaxMessageLength) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "El mensaje no puede estar vacío"})
		return
	}

	message, err := h.replies.SendReply(c.Request.Context(), sessionID, body)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"data": gin.H{"message": message}})
}

type CatalogHandler struct {
	catalog interfaces.CatalogSource
	log     *logger.Logger
}

func NewCatalogHandler(catalog interfaces.CatalogSource, log *logger.Logger) *CatalogHandler {
	return &CatalogHandler{catalog: catalog, log: log}
}

// Latest returns the newest generated catalog artifact with its owning
// user, or null when nothing has been generated yet.
func (h *CatalogHandler) Latest(c *gin.Context) {
	metadata, err := h.catalog.LatestMetadata(c.Request.Context())
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": metadata})
}
