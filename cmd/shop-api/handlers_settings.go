package main

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/mcampos87/comercio-api/internal/httpx"
	"github.com/mcampos87/comercio-api/internal/settings"
)

func listSettingsHandler(st settings.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		out, err := st.List(c.Request.Context())
		if err != nil {
			failErr(c, err)
			return
		}
		httpx.OK(c, http.StatusOK, gin.H{"items": out})
	}
}

// putSettingHandler upserts a setting. Pricing keys must hold
// non-negative decimals, everything else is stored as-is.
// @Summary Upsert a setting
// @Tags settings
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param key path string true "setting key"
// @Success 200 {object} httpx.Envelope
// @Router /settings/{key} [put]
func putSettingHandler(st settings.Repository) gin.HandlerFunc {
	pricingKeys := map[string]bool{
		settings.KeyTaxRate:               true,
		settings.KeyFreeShippingThreshold: true,
		settings.KeyShippingCost:          true,
	}
	return func(c *gin.Context) {
		var req struct {
			Value string `json:"value"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			httpx.Fail(c, http.StatusBadRequest, "invalid json")
			return
		}
		key := c.Param("key")
		if strings.TrimSpace(key) == "" || strings.TrimSpace(req.Value) == "" {
			httpx.FailValidation(c, map[string]string{"value": "value is required"})
			return
		}
		if pricingKeys[key] {
			d, err := decimal.NewFromString(req.Value)
			if err != nil || d.IsNegative() {
				httpx.FailValidation(c, map[string]string{"value": "value must be a non-negative decimal"})
				return
			}
		}

		if err := st.Set(c.Request.Context(), key, req.Value); err != nil {
			failErr(c, err)
			return
		}
		v, err := st.Get(c.Request.Context(), key)
		if err != nil {
			failErr(c, err)
			return
		}
		httpx.OK(c, http.StatusOK, gin.H{"key": key, "value": v})
	}
}
