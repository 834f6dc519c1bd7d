package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yigit/coursecatalog/internal/app/models/dto"
	"github.com/yigit/coursecatalog/internal/pkg/apperrors"
	"github.com/yigit/coursecatalog/internal/pkg/auth"
)

// Context keys set by the auth middleware.
const (
	ContextKeyAuthorized = "authorized"
	ContextKeySubject    = "subject"
)

// AuthMiddleware turns bearer tokens into the authorized flag.
type AuthMiddleware struct {
	jwtService *auth.JWTService
}

// NewAuthMiddleware creates a new AuthMiddleware
func NewAuthMiddleware(jwtService *auth.JWTService) *AuthMiddleware {
	return &AuthMiddleware{
		jwtService: jwtService,
	}
}

func (m *AuthMiddleware) authenticate(c *gin.Context) (*auth.Claims, error) {
	header := c.GetHeader("Authorization")
	if header == "" {
		return nil, nil
	}
	token, err := auth.ExtractBearerToken(header)
	if err != nil {
		return nil, err
	}
	return m.jwtService.ValidateToken(token)
}

// JWTAuth rejects requests without a valid bearer token.
func (m *AuthMiddleware) JWTAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, err := m.authenticate(c)
		if err == nil && claims == nil {
			errorDetail := dto.NewErrorDetail(dto.ErrorCodeUnauthorized, "Authentication required").
				WithDetails("Authorization header missing")
			c.AbortWithStatusJSON(http.StatusUnauthorized, dto.NewErrorResponse(errorDetail))
			return
		}
		if err != nil {
			abortWithTokenError(c, err)
			return
		}

		c.Set(ContextKeyAuthorized, true)
		c.Set(ContextKeySubject, claims.Subject)
		c.Next()
	}
}

// OptionalAuth marks the request authorized when it carries a valid token.
// Anonymous requests pass through; a token that is present but invalid is
// still rejected so clients notice expired credentials.
func (m *AuthMiddleware) OptionalAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, err := m.authenticate(c)
		if err != nil {
			abortWithTokenError(c, err)
			return
		}
		if claims != nil {
			c.Set(ContextKeyAuthorized, true)
			c.Set(ContextKeySubject, claims.Subject)
		}
		c.Next()
	}
}

// IsAuthorized reports whether the auth middleware accepted a token.
func IsAuthorized(c *gin.Context) bool {
	return c.GetBool(ContextKeyAuthorized)
}

func abortWithTokenError(c *gin.Context, err error) {
	errorCode := dto.ErrorCodeInvalidToken
	details := "Invalid token"
	switch {
	case errors.Is(err, apperrors.ErrTokenExpired):
		errorCode = dto.ErrorCodeExpiredToken
		details = "Token has expired"
	case errors.Is(err, apperrors.ErrInvalidFormat):
		details = "Invalid token format"
	}

	errorDetail := dto.NewErrorDetail(errorCode, "Authentication failed").WithDetails(details)
	c.AbortWithStatusJSON(http.StatusUnauthorized, dto.NewErrorResponse(errorDetail))
}
