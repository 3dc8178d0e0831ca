package main

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mcampos87/comercio-api/internal/httpx"
	"github.com/mcampos87/comercio-api/internal/user"
)

func meHandler(users user.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		u, err := users.GetByID(c.Request.Context(), httpx.UserID(c))
		if err != nil {
			failErr(c, err)
			return
		}
		httpx.OK(c, http.StatusOK, u)
	}
}

func updateMeHandler(users user.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req user.UpdateProfileRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			httpx.Fail(c, http.StatusBadRequest, "invalid json")
			return
		}
		u := &user.User{ID: httpx.UserID(c), Name: req.Name, Email: req.Email}
		if err := users.Update(c.Request.Context(), u); err != nil {
			failErr(c, err)
			return
		}
		out, err := users.GetByID(c.Request.Context(), u.ID)
		if err != nil {
			failErr(c, err)
			return
		}
		httpx.OK(c, http.StatusOK, out)
	}
}

func listUsersHandler(users user.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		out, err := users.List(c.Request.Context(), intQuery(c, "limit", 20), intQuery(c, "offset", 0))
		if err != nil {
			failErr(c, err)
			return
		}
		httpx.OK(c, http.StatusOK, gin.H{"items": out})
	}
}
