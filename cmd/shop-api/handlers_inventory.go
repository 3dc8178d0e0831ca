package main

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mcampos87/comercio-api/internal/httpx"
	"github.com/mcampos87/comercio-api/internal/inventory"
)

// adjustStockHandler applies a manual stock adjustment and records the
// resulting ledger movement.
// @Summary Adjust product stock
// @Tags inventory
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param productId path string true "product id"
// @Param body body inventory.AdjustStockRequest true "adjustment"
// @Success 200 {object} httpx.Envelope
// @Failure 400 {object} httpx.Envelope "untracked product or bad operation"
// @Router /inventory/{productId}/stock [patch]
func adjustStockHandler(inv inventory.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req inventory.AdjustStockRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			httpx.Fail(c, http.StatusBadRequest, "invalid json")
			return
		}

		errs := map[string]string{}
		switch req.Operation {
		case inventory.OpIncrease, inventory.OpDecrease:
			if req.Quantity <= 0 {
				errs["quantity"] = "quantity must be a positive integer"
			}
		case inventory.OpSet:
			if req.Quantity < 0 {
				errs["quantity"] = "quantity must not be negative"
			}
		default:
			errs["operation"] = "operation must be increase, decrease or set"
		}
		typ := req.Type
		if typ == "" {
			typ = inventory.MovementAdjustment
		}
		if len(errs) > 0 {
			httpx.FailValidation(c, errs)
			return
		}

		m, stock, err := inv.Adjust(c.Request.Context(), inventory.Adjustment{
			ProductID: c.Param("productId"),
			Operation: req.Operation,
			Quantity:  req.Quantity,
			Type:      typ,
			Reason:    req.Reason,
			ActorID:   httpx.UserID(c),
		})
		if err != nil {
			failErr(c, err)
			return
		}
		httpx.OK(c, http.StatusOK, gin.H{"movement": m, "stock": stock})
	}
}

func listMovementsHandler(inv inventory.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		out, err := inv.ListByProduct(c.Request.Context(), c.Param("productId"),
			intQuery(c, "limit", 50), intQuery(c, "offset", 0))
		if err != nil {
			failErr(c, err)
			return
		}
		httpx.OK(c, http.StatusOK, gin.H{"items": out})
	}
}
