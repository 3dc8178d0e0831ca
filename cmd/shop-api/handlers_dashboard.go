package main

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mcampos87/comercio-api/internal/dashboard"
	"github.com/mcampos87/comercio-api/internal/httpx"
)

// dashboardStatsHandler serves aggregate counts, revenue trend, top
// sellers and low-stock products.
// @Summary Dashboard stats
// @Tags dashboard
// @Produce json
// @Security BearerAuth
// @Param days query int false "trend window in days"
// @Param low_stock_below query int false "low stock threshold"
// @Success 200 {object} httpx.Envelope
// @Router /dashboard/stats [get]
func dashboardStatsHandler(dash dashboard.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		stats, err := dash.Stats(c.Request.Context(),
			intQuery(c, "days", 7), intQuery(c, "low_stock_below", 5))
		if err != nil {
			failErr(c, err)
			return
		}
		httpx.OK(c, http.StatusOK, stats)
	}
}
