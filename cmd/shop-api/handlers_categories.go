package main

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/mcampos87/comercio-api/internal/category"
	"github.com/mcampos87/comercio-api/internal/httpx"
)

func listCategoriesHandler(categories category.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		out, err := categories.List(c.Request.Context(), c.Query("active") == "true")
		if err != nil {
			failErr(c, err)
			return
		}
		httpx.OK(c, http.StatusOK, gin.H{"items": out})
	}
}

func getCategoryHandler(categories category.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		out, err := categories.GetByID(c.Request.Context(), c.Param("id"))
		if err != nil {
			failErr(c, err)
			return
		}
		httpx.OK(c, http.StatusOK, out)
	}
}

func createCategoryHandler(categories category.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req category.CreateCategoryRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			httpx.Fail(c, http.StatusBadRequest, "invalid json")
			return
		}
		if strings.TrimSpace(req.Name) == "" {
			httpx.FailValidation(c, map[string]string{"name": "name is required"})
			return
		}
		slug := req.Slug
		if slug == "" {
			slug = strings.ToLower(strings.ReplaceAll(strings.TrimSpace(req.Name), " ", "-"))
		}
		cat := &category.Category{
			ID:          uuid.NewString(),
			Name:        req.Name,
			Slug:        slug,
			Description: req.Description,
			Active:      true,
		}
		if err := categories.Create(c.Request.Context(), cat); err != nil {
			failErr(c, err)
			return
		}
		httpx.OK(c, http.StatusCreated, cat)
	}
}

func updateCategoryHandler(categories category.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			Name        string `json:"name"`
			Slug        string `json:"slug"`
			Description string `json:"description"`
			Active      *bool  `json:"active"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			httpx.Fail(c, http.StatusBadRequest, "invalid json")
			return
		}
		current, err := categories.GetByID(c.Request.Context(), c.Param("id"))
		if err != nil {
			failErr(c, err)
			return
		}
		active := current.Active
		if req.Active != nil {
			active = *req.Active
		}
		cat := &category.Category{
			ID:          current.ID,
			Name:        req.Name,
			Slug:        req.Slug,
			Description: req.Description,
			Active:      active,
		}
		if err := categories.Update(c.Request.Context(), cat); err != nil {
			failErr(c, err)
			return
		}
		out, err := categories.GetByID(c.Request.Context(), current.ID)
		if err != nil {
			failErr(c, err)
			return
		}
		httpx.OK(c, http.StatusOK, out)
	}
}

func deleteCategoryHandler(categories category.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		ok, err := categories.Delete(c.Request.Context(), c.Param("id"))
		if err != nil {
			failErr(c, err)
			return
		}
		if !ok {
			httpx.Fail(c, http.StatusNotFound, "category not found")
			return
		}
		httpx.OKMessage(c, http.StatusOK, nil, "category deleted")
	}
}
