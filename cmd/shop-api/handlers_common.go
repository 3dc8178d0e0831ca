package main

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/mcampos87/comercio-api/internal/category"
	"github.com/mcampos87/comercio-api/internal/httpx"
	"github.com/mcampos87/comercio-api/internal/inventory"
	"github.com/mcampos87/comercio-api/internal/notification"
	"github.com/mcampos87/comercio-api/internal/order"
	"github.com/mcampos87/comercio-api/internal/payment"
	"github.com/mcampos87/comercio-api/internal/product"
	"github.com/mcampos87/comercio-api/internal/settings"
	"github.com/mcampos87/comercio-api/internal/user"
)

// failErr maps domain errors onto the response envelope:
// 400 business-rule violation, 403 ownership, 404 missing entity,
// 409 duplicate, 500 anything unexpected.
func failErr(c *gin.Context, err error) {
	var stockErr *order.StockError
	switch {
	case errors.As(err, &stockErr):
		httpx.Fail(c, http.StatusBadRequest, stockErr.Error())

	case errors.Is(err, order.ErrNotFound),
		errors.Is(err, order.ErrUserNotFound),
		errors.Is(err, order.ErrProductNotFound),
		errors.Is(err, user.ErrNotFound),
		errors.Is(err, product.ErrNotFound),
		errors.Is(err, category.ErrNotFound),
		errors.Is(err, inventory.ErrNotFound),
		errors.Is(err, notification.ErrNotFound),
		errors.Is(err, payment.ErrNotFound),
		errors.Is(err, settings.ErrNotFound):
		httpx.Fail(c, http.StatusNotFound, err.Error())

	case errors.Is(err, order.ErrInvalidTransition),
		errors.Is(err, order.ErrNotCancellable),
		errors.Is(err, inventory.ErrNotTracked),
		errors.Is(err, inventory.ErrBadOp),
		errors.Is(err, payment.ErrUnknownMethod),
		errors.Is(err, payment.ErrAlreadyPaid):
		httpx.Fail(c, http.StatusBadRequest, err.Error())

	case errors.Is(err, order.ErrForbidden):
		httpx.Fail(c, http.StatusForbidden, err.Error())

	case errors.Is(err, user.ErrAlreadyExist),
		errors.Is(err, product.ErrAlreadyExist),
		errors.Is(err, category.ErrAlreadyExist):
		httpx.Fail(c, http.StatusConflict, err.Error())

	default:
		log.Printf("[http] unexpected error: %v", err)
		httpx.Fail(c, http.StatusInternalServerError, "internal server error")
	}
}

func actorFrom(c *gin.Context) order.Actor {
	return order.Actor{
		ID:    httpx.UserID(c),
		Admin: httpx.Role(c) == user.RoleAdmin,
	}
}

func intQuery(c *gin.Context, key string, def int) int {
	if n, err := strconv.Atoi(c.Query(key)); err == nil {
		return n
	}
	return def
}
