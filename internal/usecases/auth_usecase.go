package usecases

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"cloudinbox/internal/entities"
	"cloudinbox/internal/interfaces"
	"cloudinbox/internal/logger"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

const bcryptCost = 12

var emailPattern = regexp.MustCompile(`.+@.+\..+`)

type AuthUsecase struct {
	users           interfaces.UserStore
	jwtSecret       []byte
	sessionDuration time.Duration
	log             *logger.Logger
}

func NewAuthUsecase(users interfaces.UserStore, secret string, sessionDurationDays int, log *logger.Logger) *AuthUsecase {
	return &AuthUsecase{
		users:           users,
		jwtSecret:       []byte(secret),
		sessionDuration: time.Duration(sessionDurationDays) * 24 * time.Hour,
		log:             log,
	}
}

func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (uc *AuthUsecase) Register(ctx context.Context, email, password string, fullName *string) (*entities.User, error) {
	email = NormalizeEmail(email)
	if !emailPattern.MatchString(email) {
		return nil, entities.NewValidationError("Correo inválido")
	}
	if len(strings.TrimSpace(password)) < 8 {
		return nil, entities.NewValidationError("La contraseña debe tener al menos 8 caracteres")
	}
	if fullName != nil {
		trimmed := strings.TrimSpace(*fullName)
		if trimmed == "" {
			fullName = nil
		} else {
			fullName = &trimmed
		}
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return nil, err
	}

	user := &entities.User{
		Email:        email,
		PasswordHash: string(hashed),
		FullName:     fullName,
		Role:         "user",
		IsActive:     true,
	}
	if err := uc.users.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (uc *AuthUsecase) Login(ctx context.Context, email, password string) (*entities.User, error) {
	user, err := uc.users.GetByEmail(ctx, NormalizeEmail(email))
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, &entities.AuthError{Msg: "Credenciales inválidas"}
	}
	if !user.IsActive {
		return nil, &entities.AuthError{Msg: "La cuenta está deshabilitada", Forbidden: true}
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, &entities.AuthError{Msg: "Credenciales inválidas"}
	}

	if err := uc.users.TouchUpdatedAt(ctx, user.ID); err != nil {
		uc.log.Warn("failed to touch user timestamp", "user_id", user.ID, "error", err)
	}
	return user, nil
}

// CurrentUser re-loads the token's subject so a deleted or deactivated
// account invalidates its session on the next /me call.
func (uc *AuthUsecase) CurrentUser(ctx context.Context, id string) (*entities.User, error) {
	user, err := uc.users.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, &entities.AuthError{Msg: "Sesión no válida"}
	}
	return user, nil
}

// IssueToken signs a session JWT carrying the identity the middleware
// needs without a database round trip.
func (uc *AuthUsecase) IssueToken(user *entities.User) (string, error) {
	claims := jwt.MapClaims{
		"sub":      user.ID,
		"email":    user.Email,
		"role":     user.Role,
		"isActive": user.IsActive,
		"exp":      time.Now().Add(uc.sessionDuration).Unix(),
	}
	if user.FullName != nil {
		claims["fullName"] = *user.FullName
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(uc.jwtSecret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %v", err)
	}
	return signed, nil
}

func (uc *AuthUsecase) VerifyToken(tokenString string) (*entities.AuthenticatedUser, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return uc.jwtSecret, nil
	})
	if err != nil || !token.Valid {
		return nil, &entities.AuthError{Msg: "Sesión inválida"}
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, &entities.AuthError{Msg: "Sesión inválida"}
	}

	user := &entities.AuthenticatedUser{
		Role:     "user",
		IsActive: true,
	}
	if sub, ok := claims["sub"].(string); ok {
		user.ID = sub
	}
	if email, ok := claims["email"].(string); ok {
		user.Email = email
	}
	if role, ok := claims["role"].(string); ok && role != "" {
		user.Role = role
	}
	if fullName, ok := claims["fullName"].(string); ok {
		user.FullName = &fullName
	}
	if isActive, ok := claims["isActive"].(bool); ok {
		user.IsActive = isActive
	}

	if user.ID == "" {
		return nil, &entities.AuthError{Msg: "Sesión inválida"}
	}
	if !user.IsActive {
		return nil, &entities.AuthError{Msg: "Cuenta deshabilitada", Forbidden: true}
	}
	return user, nil
}
