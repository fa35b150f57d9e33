package server

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	customerdomain "github.com/opennoc/fiberplant/internal/customer/domain"
)

// DashboardSummary is a thin read projection: customer counts per status,
// per-type asset utilization and recent assignment volume.
func (s *Server) DashboardSummary(c *gin.Context) {
	ctx := c.Request.Context()

	customerCounts := map[string]int{}
	for _, status := range []customerdomain.Status{
		customerdomain.StatusPending,
		customerdomain.StatusActive,
		customerdomain.StatusInactive,
	} {
		customers, err := s.customerSvc.ListByStatus(ctx, status)
		if err != nil {
			AbortWithError(c, err)
			return
		}
		customerCounts[string(status)] = len(customers)
	}

	utilization, err := s.assetSvc.UtilizationStats(ctx)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	recentAssignments, err := s.ledgerSvc.CountSince(ctx, time.Now().UTC().AddDate(0, 0, -30))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": gin.H{
		"customers":            customerCounts,
		"asset_utilization":    utilization,
		"assignments_last_30d": recentAssignments,
	}})
}
