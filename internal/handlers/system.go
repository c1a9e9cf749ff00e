package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/crm-api/internal/dto"
	apierrors "github.com/yukikurage/crm-api/internal/errors"
	"github.com/yukikurage/crm-api/internal/services"
)

// SystemHandler serves dashboard statistics and administrative maintenance.
type SystemHandler struct {
	statsService  *services.StatsService
	systemService *services.SystemService
}

func NewSystemHandler(statsService *services.StatsService, systemService *services.SystemService) *SystemHandler {
	return &SystemHandler{statsService: statsService, systemService: systemService}
}

func (h *SystemHandler) DashboardStats(c *gin.Context) {
	principal, ok := currentPrincipal(c)
	if !ok {
		return
	}

	counts, err := h.statsService.Dashboard(c.Request.Context(), principal)
	if err != nil {
		apierrors.Handle(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToDashboardDTO(counts))
}

// ResetData wipes all data and reloads the demo set
func (h *SystemHandler) ResetData(c *gin.Context) {
	principal, ok := currentPrincipal(c)
	if !ok {
		return
	}

	summary, err := h.systemService.ResetData(c.Request.Context(), principal)
	if err != nil {
		apierrors.Handle(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Database reset and seeded",
		"summary": summary,
	})
}
