package handler

import (
	"context"

	appreconcile "github.com/cmosqueda1/FMS-TMS-Checkstatus/internal/application/reconcile"
	"github.com/cmosqueda1/FMS-TMS-Checkstatus/internal/domain/reconcile"
	"github.com/cmosqueda1/FMS-TMS-Checkstatus/internal/infrastructure/logger"
	"github.com/cmosqueda1/FMS-TMS-Checkstatus/internal/infrastructure/telemetry"
	"github.com/cmosqueda1/FMS-TMS-Checkstatus/internal/interfaces/http/dto"
	"github.com/cmosqueda1/FMS-TMS-Checkstatus/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Reconciler runs reconciliation batches
type Reconciler interface {
	Reconcile(ctx context.Context, mode reconcile.Mode, identifiers []string, opts ...appreconcile.ReconcileOption) ([]reconcile.ReconciliationResult, error)
	MaxBatch() int
}

// SessionInvalidator drops the cached Order-System token
type SessionInvalidator interface {
	Invalidate(ctx context.Context) error
}

// ReconcileHandler serves the reconciliation API
type ReconcileHandler struct {
	BaseHandler
	engine   Reconciler
	sessions SessionInvalidator
}

// NewReconcileHandler creates a ReconcileHandler
func NewReconcileHandler(engine Reconciler, sessions SessionInvalidator) *ReconcileHandler {
	return &ReconcileHandler{engine: engine, sessions: sessions}
}

// InvalidateSessionResponse is the data of a session invalidation
// @name HandlerInvalidateSessionResponse
type InvalidateSessionResponse struct {
	Invalidated bool `json:"invalidated" example:"true"`
}

// Reconcile godoc
// @ID           postReconcile
// @Summary      Reconcile a batch of identifiers
// @Description  Looks up tracking or pickup numbers in Order-System and Trace-System and returns one result per identifier, in input order.
// @Description  Identifiers are trimmed and de-duplicated; batches above the configured maximum are truncated and reported in meta.
// @Tags         reconcile
// @Accept       json
// @Produce      json
// @Param        request body dto.ReconcileRequest true "Batch to reconcile"
// @Success      200 {object} dto.Response{data=dto.ReconcileResponse,meta=dto.ReconcileMeta}
// @Failure      400 {object} dto.Response
// @Failure      401 {object} dto.Response
// @Failure      403 {object} dto.Response
// @Failure      429 {object} dto.Response
// @Failure      500 {object} dto.Response
// @Failure      502 {object} dto.Response
// @Security     BearerAuth
// @Router       /reconcile [post]
func (h *ReconcileHandler) Reconcile(c *gin.Context) {
	var req dto.ReconcileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	mode, err := reconcile.ParseMode(req.Mode)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	ids, truncated := dto.NormalizeIdentifiers(req.Identifiers, h.engine.MaxBatch())
	if truncated > 0 {
		logger.L(c.Request.Context()).Warn("batch truncated",
			zap.Int("requested", len(req.Identifiers)),
			zap.Int("truncated", truncated),
		)
	}

	var opts []appreconcile.ReconcileOption
	if req.ForceRefresh {
		opts = append(opts, appreconcile.WithForceRefresh())
	}

	var results []reconcile.ReconciliationResult
	labels := map[string]string{
		telemetry.ProfilingLabelOperation: "reconcile",
		telemetry.ProfilingLabelMode:      mode.String(),
	}
	telemetry.WithProfilingLabels(c.Request.Context(), labels, func(ctx context.Context) {
		results, err = h.engine.Reconcile(ctx, mode, ids, opts...)
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c,
		dto.ReconcileResponse{Results: dto.ToResultViews(results)},
		dto.ReconcileMeta{
			Mode:      mode.String(),
			Requested: len(req.Identifiers),
			Processed: len(ids),
			Truncated: truncated,
			BatchMax:  h.engine.MaxBatch(),
		},
	)
}

// InvalidateSession godoc
// @ID           postSessionInvalidate
// @Summary      Invalidate the Order-System session
// @Description  Drops the cached Order-System token so the next batch logs in again
// @Tags         session
// @Produce      json
// @Success      200 {object} dto.Response{data=InvalidateSessionResponse}
// @Failure      401 {object} dto.Response
// @Failure      403 {object} dto.Response
// @Failure      500 {object} dto.Response
// @Security     BearerAuth
// @Router       /session/invalidate [post]
func (h *ReconcileHandler) InvalidateSession(c *gin.Context) {
	if err := h.sessions.Invalidate(c.Request.Context()); err != nil {
		logger.L(c.Request.Context()).Error("failed to invalidate Order-System token", zap.Error(err))
		h.InternalError(c, "Failed to invalidate session")
		return
	}
	logger.L(c.Request.Context()).Info("Order-System token invalidated")
	h.Success(c, InvalidateSessionResponse{Invalidated: true})
}
