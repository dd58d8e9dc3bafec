package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// HealthResponse represents the liveness response
// @name HandlerHealthResponse
type HealthResponse struct {
	Status string `json:"status" example:"healthy"`
	Name   string `json:"name" example:"checkstatus"`
	Env    string `json:"env" example:"development"`
}

// HealthHandler reports liveness
type HealthHandler struct {
	name string
	env  string
}

// NewHealthHandler creates a HealthHandler
func NewHealthHandler(name, env string) *HealthHandler {
	return &HealthHandler{name: name, env: env}
}

// Health godoc
// @ID           getHealth
// @Summary      Health check
// @Description  Reports that the service is up. Served outside the versioned API and without authentication.
// @Tags         system
// @Produce      json
// @Success      200 {object} HealthResponse
// @Router       /health [get]
func (h *HealthHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{
		Status: "healthy",
		Name:   h.name,
		Env:    h.env,
	})
}
