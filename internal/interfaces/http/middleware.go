package http

import (
	"errors"
	"net/http"
	"strings"
	"sync"

	"cloudinbox/internal/entities"
	"cloudinbox/internal/usecases"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

const userContextKey = "auth_user"

type Middleware struct {
	auth         *usecases.AuthUsecase
	cookieName   string
	rateLimiters map[string]*rate.Limiter
	mu           sync.Mutex
}

func NewMiddleware(auth *usecases.AuthUsecase, cookieName string) *Middleware {
	return &Middleware{
		auth:         auth,
		cookieName:   cookieName,
		rateLimiters: make(map[string]*rate.Limiter),
	}
}

// ExtractToken reads the session token from the http-only cookie, with
// a bearer Authorization header as fallback for non-browser clients.
func (m *Middleware) ExtractToken(c *gin.Context) string {
	if cookie, err := c.Cookie(m.cookieName); err == nil {
		if token := strings.TrimSpace(cookie); token != "" {
			return token
		}
	}

	authHeader := strings.TrimSpace(c.GetHeader("Authorization"))
	if authHeader == "" {
		return ""
	}
	if strings.HasPrefix(strings.ToLower(authHeader), "bearer ") {
		return strings.TrimSpace(authHeader[len("bearer "):])
	}
	return ""
}

func (m *Middleware) AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := m.ExtractToken(c)
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "No autorizado"})
			return
		}

		user, err := m.auth.VerifyToken(token)
		if err != nil {
			status := http.StatusUnauthorized
			var authErr *entities.AuthError
			if errors.As(err, &authErr) && authErr.Forbidden {
				status = http.StatusForbidden
			}
			c.AbortWithStatusJSON(status, gin.H{"error": err.Error()})
			return
		}

		c.Set(userContextKey, user)
		c.Next()
	}
}

// CurrentUser returns the identity set by AuthRequired.
func CurrentUser(c *gin.Context) *entities.AuthenticatedUser {
	value, exists := c.Get(userContextKey)
	if !exists {
		return nil
	}
	user, _ := value.(*entities.AuthenticatedUser)
	return user
}

// RateLimitPerUser limits requests per authenticated user (must follow AuthRequired)
func (m *Middleware) RateLimitPerUser(r rate.Limit, b int) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := CurrentUser(c)
		if user == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "No autorizado"})
			return
		}

		m.mu.Lock()
		limiter, exists := m.rateLimiters[user.ID]
		if !exists {
			limiter = rate.NewLimiter(r, b)
			m.rateLimiters[user.ID] = limiter
		}
		m.mu.Unlock()

		if !limiter.Allow() {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "Demasiadas solicitudes, intenta de nuevo en unos segundos"})
			return
		}

		c.Next()
	}
}

// SecurityHeaders adds security headers to prevent common attacks
func SecurityHeaders() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("X-Content-Type-Options", "nosniff")
		c.Writer.Header().Set("X-Frame-Options", "DENY")
		c.Writer.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
		c.Next()
	}
}

// RequestSizeLimiter limits request body size to prevent DoS
func RequestSizeLimiter(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}
