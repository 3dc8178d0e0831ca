package main

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/mcampos87/comercio-api/internal/config"
	"github.com/mcampos87/comercio-api/internal/httpx"
	"github.com/mcampos87/comercio-api/internal/user"
)

// registerHandler creates an account and returns a bearer token.
// @Summary Register a new user
// @Tags auth
// @Accept json
// @Produce json
// @Param body body user.RegisterRequest true "account"
// @Success 201 {object} httpx.Envelope
// @Failure 409 {object} httpx.Envelope
// @Router /auth/register [post]
func registerHandler(users user.Repository, cfg config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req user.RegisterRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			httpx.Fail(c, http.StatusBadRequest, "invalid json")
			return
		}
		errs := map[string]string{}
		if strings.TrimSpace(req.Name) == "" {
			errs["name"] = "name is required"
		}
		if !strings.Contains(req.Email, "@") {
			errs["email"] = "valid email is required"
		}
		if len(req.Password) < 8 {
			errs["password"] = "password must be at least 8 characters"
		}
		if len(errs) > 0 {
			httpx.FailValidation(c, errs)
			return
		}

		hash, err := user.HashPassword(req.Password)
		if err != nil {
			failErr(c, err)
			return
		}
		u := &user.User{
			ID:           uuid.NewString(),
			Name:         req.Name,
			Email:        strings.ToLower(strings.TrimSpace(req.Email)),
			PasswordHash: hash,
			Role:         user.RoleCustomer,
		}
		if err := users.Create(c.Request.Context(), u); err != nil {
			failErr(c, err)
			return
		}

		token, err := httpx.SignToken(cfg.JWTSecret, u.ID, u.Role, cfg.TokenTTL)
		if err != nil {
			failErr(c, err)
			return
		}
		httpx.OK(c, http.StatusCreated, gin.H{"user": u, "token": token})
	}
}

// loginHandler authenticates by email and password.
// @Summary Log in
// @Tags auth
// @Accept json
// @Produce json
// @Param body body user.LoginRequest true "credentials"
// @Success 200 {object} httpx.Envelope
// @Failure 401 {object} httpx.Envelope
// @Router /auth/login [post]
func loginHandler(users user.Repository, cfg config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req user.LoginRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			httpx.Fail(c, http.StatusBadRequest, "invalid json")
			return
		}

		u, err := users.GetByEmail(c.Request.Context(), strings.ToLower(strings.TrimSpace(req.Email)))
		if err != nil || !user.CheckPassword(u.PasswordHash, req.Password) {
			// same answer for unknown email and bad password
			httpx.Fail(c, http.StatusUnauthorized, "invalid credentials")
			return
		}

		token, err := httpx.SignToken(cfg.JWTSecret, u.ID, u.Role, cfg.TokenTTL)
		if err != nil {
			failErr(c, err)
			return
		}
		httpx.OK(c, http.StatusOK, gin.H{"user": u, "token": token})
	}
}
