package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Eddy007Saive/serverlog/internal/realtime"
)

type HealthHandler struct {
	registry *realtime.ConnectionRegistry
}

func NewHealthHandler(registry *realtime.ConnectionRegistry) *HealthHandler {
	return &HealthHandler{registry: registry}
}

func (h *HealthHandler) HealthCheck(c *gin.Context) {
	out := gin.H{"status": "ok"}
	if h.registry != nil {
		out["connections"] = h.registry.Total()
	}
	c.JSON(http.StatusOK, out)
}
