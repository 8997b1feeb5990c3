package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// GetDashboard handles GET /dashboard. The report is recomputed from the
// movement history on every uncached call.
func (h *Handler) GetDashboard(c *gin.Context) {
	report, err := h.analytics.Dashboard(c.Request.Context(), time.Now())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to build dashboard"})
		return
	}
	c.JSON(http.StatusOK, report)
}
