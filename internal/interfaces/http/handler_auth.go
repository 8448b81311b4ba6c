package http

import (
	"net/http"

	"cloudinbox/internal/config"
	"cloudinbox/internal/logger"
	"cloudinbox/internal/usecases"

	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	auth *usecases.AuthUsecase
	cfg  *config.Config
	log  *logger.Logger
}

func NewAuthHandler(auth *usecases.AuthUsecase, cfg *config.Config, log *logger.Logger) *AuthHandler {
	return &AuthHandler{auth: auth, cfg: cfg, log: log}
}

func (h *AuthHandler) Register(c *gin.Context) {
	var req struct {
		Email    string  `json:"email"`
		Password string  `json:"password"`
		FullName *string `json:"fullName"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Correo y contraseña son obligatorios"})
		return
	}
	if req.Email == "" || req.Password == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Correo y contraseña son obligatorios"})
		return
	}

	user, err := h.auth.Register(c.Request.Context(), req.Email, req.Password, req.FullName)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	token, err := h.auth.IssueToken(user)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	h.setSessionCookie(c, token)

	c.JSON(http.StatusCreated, gin.H{"data": gin.H{"user": user}})
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.Email == "" || req.Password == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Correo y contraseña son obligatorios"})
		return
	}

	user, err := h.auth.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	token, err := h.auth.IssueToken(user)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	h.setSessionCookie(c, token)

	c.JSON(http.StatusOK, gin.H{"data": gin.H{"user": user}})
}

func (h *AuthHandler) Logout(c *gin.Context) {
	h.clearSessionCookie(c)
	c.JSON(http.StatusOK, gin.H{"data": gin.H{"success": true}})
}

func (h *AuthHandler) Me(c *gin.Context) {
	authUser := CurrentUser(c)
	if authUser == nil {
		h.clearSessionCookie(c)
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Sesión no válida"})
		return
	}

	user, err := h.auth.CurrentUser(c.Request.Context(), authUser.ID)
	if err != nil {
		h.clearSessionCookie(c)
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": gin.H{"user": user}})
}

func (h *AuthHandler) setSessionCookie(c *gin.Context, token string) {
	maxAge := h.cfg.SessionDurationDays * 24 * 60 * 60
	h.writeSessionCookie(c, token, maxAge)
}

func (h *AuthHandler) clearSessionCookie(c *gin.Context) {
	h.writeSessionCookie(c, "", -1)
}

// Cross-site deployments (separate frontend origin) need SameSite=None
// with Secure; local development keeps Lax over plain http.
func (h *AuthHandler) writeSessionCookie(c *gin.Context, token string, maxAge int) {
	if h.cfg.IsProduction() {
		c.SetSameSite(http.SameSiteNoneMode)
	} else {
		c.SetSameSite(http.SameSiteLaxMode)
	}
	c.SetCookie(h.cfg.SessionCookieName, token, maxAge, "/", "", h.cfg.IsProduction(), true)
}
