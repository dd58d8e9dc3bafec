package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/cmosqueda1/FMS-TMS-Checkstatus/internal/infrastructure/auth"
	"github.com/cmosqueda1/FMS-TMS-Checkstatus/internal/infrastructure/logger"
	"github.com/cmosqueda1/FMS-TMS-Checkstatus/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// JWT context keys
const (
	JWTClaimsKey  = "jwt_claims"
	AuthHeaderKey = "Authorization"
	BearerPrefix  = "Bearer "
)

// CallerAuth validates the bearer token when service is non-nil and stores
// the claims on the context. A nil service lets every request through.
func CallerAuth(service *auth.JWTService) gin.HandlerFunc {
	if service == nil {
		return func(c *gin.Context) { c.Next() }
	}

	return func(c *gin.Context) {
		header := c.GetHeader(AuthHeaderKey)
		if !strings.HasPrefix(header, BearerPrefix) {
			abortAuth(c, http.StatusUnauthorized, dto.ErrCodeUnauthorized, "Missing bearer token")
			return
		}

		claims, err := service.Validate(strings.TrimSpace(strings.TrimPrefix(header, BearerPrefix)))
		if err != nil {
			code, message := dto.ErrCodeTokenInvalid, "Invalid token"
			if errors.Is(err, auth.ErrExpiredToken) {
				code, message = dto.ErrCodeTokenExpired, "Token has expired"
			}
			logger.L(c.Request.Context()).Debug("caller token rejected", zap.Error(err))
			abortAuth(c, http.StatusUnauthorized, code, message)
			return
		}

		c.Set(JWTClaimsKey, claims)
		ctx, _ := logger.WithCaller(c.Request.Context(), logger.FromContext(c.Request.Context()), claims.Subject)
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

// RequireScope rejects callers whose token lacks scope. Without claims on
// the context (auth disabled) it lets the request through.
func RequireScope(scope string) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := GetClaims(c)
		if claims != nil && !claims.HasScope(scope) {
			abortAuth(c, http.StatusForbidden, dto.ErrCodeForbidden, "Token lacks scope "+scope)
			return
		}
		c.Next()
	}
}

// GetClaims returns the validated caller claims, or nil
func GetClaims(c *gin.Context) *auth.Claims {
	v, ok := c.Get(JWTClaimsKey)
	if !ok {
		return nil
	}
	claims, _ := v.(*auth.Claims)
	return claims
}

func abortAuth(c *gin.Context, status int, code, message string) {
	c.AbortWithStatusJSON(status, dto.NewErrorResponseWithRequestID(code, message, GetRequestID(c)))
}
