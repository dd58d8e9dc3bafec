package handler

import (
	"errors"
	"net/http"

	"github.com/cmosqueda1/FMS-TMS-Checkstatus/internal/domain/reconcile"
	"github.com/cmosqueda1/FMS-TMS-Checkstatus/internal/infrastructure/logger"
	"github.com/cmosqueda1/FMS-TMS-Checkstatus/internal/interfaces/http/dto"
	"github.com/cmosqueda1/FMS-TMS-Checkstatus/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// BaseHandler provides common handler utilities
type BaseHandler struct{}

// Success sends a success response
func (h *BaseHandler) Success(c *gin.Context, data any) {
	c.JSON(http.StatusOK, dto.NewSuccessResponse(data))
}

// SuccessWithMeta sends a success response with meta
func (h *BaseHandler) SuccessWithMeta(c *gin.Context, data, meta any) {
	c.JSON(http.StatusOK, dto.NewSuccessResponseWithMeta(data, meta))
}

// Error sends an error response with the status derived from code
func (h *BaseHandler) Error(c *gin.Context, code, message string) {
	c.JSON(dto.GetHTTPStatus(code), dto.NewErrorResponseWithRequestID(code, message, middleware.GetRequestID(c)))
}

// BadRequest sends a 400 bad request response
func (h *BaseHandler) BadRequest(c *gin.Context, message string) {
	h.Error(c, dto.ErrCodeBadRequest, message)
}

// InternalError sends a 500 internal server error response
func (h *BaseHandler) InternalError(c *gin.Context, message string) {
	h.Error(c, dto.ErrCodeInternal, message)
}

// HandleError maps reconciliation errors to HTTP responses. Upstream causes
// are logged but not echoed to the caller.
func (h *BaseHandler) HandleError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	log := logger.L(c.Request.Context())

	var (
		cfgErr  *reconcile.ConfigError
		authErr *reconcile.AuthError
		upErr   *reconcile.UpstreamError
	)
	switch {
	case errors.Is(err, reconcile.ErrInvalidMode):
		h.Error(c, dto.ErrCodeInvalidMode, err.Error())
	case errors.Is(err, reconcile.ErrBatchTooLarge):
		h.Error(c, dto.ErrCodeBatchTooLarge, err.Error())
	case errors.As(err, &cfgErr):
		log.Error("backend not configured", zap.String("backend", cfgErr.Backend), zap.Strings("missing", cfgErr.Missing))
		h.Error(c, dto.ErrCodeConfig, cfgErr.Error())
	case errors.As(err, &authErr):
		log.Warn("backend login failed", zap.String("backend", authErr.Backend), zap.Error(authErr.Err))
		h.Error(c, dto.ErrCodeUpstreamAuth, "Login to "+authErr.Backend+" failed")
	case errors.As(err, &upErr):
		log.Warn("backend call failed", zap.String("backend", upErr.Backend), zap.String("op", upErr.Op), zap.Error(upErr.Err))
		h.Error(c, dto.ErrCodeUpstream, upErr.Backend+" "+upErr.Op+" failed")
	default:
		log.Error("unexpected error", zap.Error(err))
		h.InternalError(c, "An unexpected error occurred")
	}
}
