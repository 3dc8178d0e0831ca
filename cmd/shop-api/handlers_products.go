package main

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/mcampos87/comercio-api/internal/httpx"
	"github.com/mcampos87/comercio-api/internal/product"
)

// listProductsHandler serves the public catalog.
// @Summary List products
// @Tags products
// @Produce json
// @Param q query string false "search"
// @Param category query string false "category id"
// @Param status query string false "status filter"
// @Param limit query int false "page size"
// @Param offset query int false "page offset"
// @Success 200 {object} product.ListResponse
// @Router /products [get]
func listProductsHandler(products product.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		q := product.Query{
			Q:          c.Query("q"),
			CategoryID: c.Query("category"),
			Status:     c.Query("status"),
			Limit:      intQuery(c, "limit", 20),
			Offset:     intQuery(c, "offset", 0),
		}
		items, err := products.List(c.Request.Context(), q)
		if err != nil {
			failErr(c, err)
			return
		}
		httpx.OK(c, http.StatusOK, product.ListResponse{Q: q.Q, Limit: q.Limit, Offset: q.Offset, Items: items})
	}
}

func getProductHandler(products product.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, err := products.GetByID(c.Request.Context(), c.Param("id"))
		if err != nil {
			failErr(c, err)
			return
		}
		httpx.OK(c, http.StatusOK, p)
	}
}

func createProductHandler(products product.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req product.CreateProductRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			httpx.Fail(c, http.StatusBadRequest, "invalid json")
			return
		}

		errs := map[string]string{}
		if strings.TrimSpace(req.Name) == "" {
			errs["name"] = "name is required"
		}
		if strings.TrimSpace(req.SKU) == "" {
			errs["sku"] = "sku is required"
		}
		price, err := decimal.NewFromString(req.Price)
		if err != nil || price.IsNegative() {
			errs["price"] = "price must be a non-negative decimal"
		}
		cost := decimal.Zero
		if req.Cost != "" {
			if cost, err = decimal.NewFromString(req.Cost); err != nil || cost.IsNegative() {
				errs["cost"] = "cost must be a non-negative decimal"
			}
		}
		if req.Stock < 0 {
			errs["stock"] = "stock must not be negative"
		}
		if len(errs) > 0 {
			httpx.FailValidation(c, errs)
			return
		}

		tracked := true
		if req.TrackInventory != nil {
			tracked = *req.TrackInventory
		}
		status := req.Status
		if status == "" {
			status = product.StatusDraft
		}
		if tracked && req.Stock == 0 && status == product.StatusActive {
			status = product.StatusOutOfStock
		}

		p := &product.Product{
			ID:             uuid.NewString(),
			Name:           req.Name,
			SKU:            req.SKU,
			Description:    req.Description,
			ImageURL:       req.ImageURL,
			CategoryID:     req.CategoryID,
			Price:          price,
			Cost:           cost,
			Stock:          req.Stock,
			TrackInventory: tracked,
			Status:         status,
		}
		if err := products.Create(c.Request.Context(), p); err != nil {
			failErr(c, err)
			return
		}
		httpx.OK(c, http.StatusCreated, p)
	}
}

func updateProductHandler(products product.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req product.UpdateProductRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			httpx.Fail(c, http.StatusBadRequest, "invalid json")
			return
		}

		p := &product.Product{
			ID:          c.Param("id"),
			Name:        req.Name,
			Description: req.Description,
			ImageURL:    req.ImageURL,
			CategoryID:  req.CategoryID,
			Status:      req.Status,
		}
		updatePrice := false
		if req.Price != "" {
			price, err := decimal.NewFromString(req.Price)
			if err != nil || price.IsNegative() {
				httpx.FailValidation(c, map[string]string{"price": "price must be a non-negative decimal"})
				return
			}
			p.Price = price
			updatePrice = true
		}
		if req.Cost != "" {
			cost, err := decimal.NewFromString(req.Cost)
			if err != nil || cost.IsNegative() {
				httpx.FailValidation(c, map[string]string{"cost": "cost must be a non-negative decimal"})
				return
			}
			p.Cost = cost
			if !updatePrice {
				// the price/cost pair is written together; carry the current price
				current, err := products.GetByID(c.Request.Context(), p.ID)
				if err != nil {
					failErr(c, err)
					return
				}
				p.Price = current.Price
				updatePrice = true
			}
		} else if updatePrice {
			current, err := products.GetByID(c.Request.Context(), p.ID)
			if err != nil {
				failErr(c, err)
				return
			}
			p.Cost = current.Cost
		}

		if err := products.Update(c.Request.Context(), p, updatePrice); err != nil {
			failErr(c, err)
			return
		}
		out, err := products.GetByID(c.Request.Context(), p.ID)
		if err != nil {
			failErr(c, err)
			return
		}
		httpx.OK(c, http.StatusOK, out)
	}
}

func deleteProductHandler(products product.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		ok, err := products.Delete(c.Request.Context(), c.Param("id"))
		if err != nil {
			failErr(c, err)
			return
		}
		if !ok {
			httpx.Fail(c, http.StatusNotFound, "product not found")
			return
		}
		httpx.OKMessage(c, http.StatusOK, nil, "product deleted")
	}
}
