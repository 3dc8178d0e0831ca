package main

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/mcampos87/comercio-api/internal/httpx"
	"github.com/mcampos87/comercio-api/internal/notification"
	"github.com/mcampos87/comercio-api/internal/order"
	"github.com/mcampos87/comercio-api/internal/settings"
)

func validateCreateOrder(req order.CreateRequest) map[string]string {
	errs := map[string]string{}
	if len(req.Items) == 0 {
		errs["items"] = "at least one item is required"
	}
	for i, it := range req.Items {
		if it.ProductID == "" {
			errs[fmt.Sprintf("items[%d].product_id", i)] = "product_id is required"
		}
		if it.Quantity <= 0 {
			errs[fmt.Sprintf("items[%d].quantity", i)] = "quantity must be a positive integer"
		}
	}
	if strings.TrimSpace(req.CustomerName) == "" {
		errs["customer_name"] = "customer_name is required"
	}
	if !strings.Contains(req.CustomerEmail, "@") {
		errs["customer_email"] = "valid customer_email is required"
	}
	if strings.TrimSpace(req.ShippingAddress) == "" {
		errs["shipping_address"] = "shipping_address is required"
	}
	if strings.TrimSpace(req.ShippingCity) == "" {
		errs["shipping_city"] = "shipping_city is required"
	}
	if strings.TrimSpace(req.ShippingCountry) == "" {
		errs["shipping_country"] = "shipping_country is required"
	}
	if strings.TrimSpace(req.PaymentMethod) == "" {
		errs["payment_method"] = "payment_method is required"
	}
	return errs
}

// createOrderHandler runs the order creation workflow.
// @Summary Create an order
// @Tags orders
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body order.CreateRequest true "order"
// @Success 201 {object} httpx.Envelope
// @Failure 400 {object} httpx.Envelope "insufficient stock or validation"
// @Failure 404 {object} httpx.Envelope
// @Router /orders [post]
func createOrderHandler(orders order.Repository, st settings.Repository, notifier *notification.Notifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req order.CreateRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			httpx.Fail(c, http.StatusBadRequest, "invalid json")
			return
		}
		if errs := validateCreateOrder(req); len(errs) > 0 {
			httpx.FailValidation(c, errs)
			return
		}

		pricing, err := st.LoadPricing(c.Request.Context())
		if err != nil {
			failErr(c, err)
			return
		}

		o, err := orders.Create(c.Request.Context(), order.CreateInput{
			UserID:  httpx.UserID(c),
			Req:     req,
			Pricing: pricing,
		})
		if err != nil {
			failErr(c, err)
			return
		}

		notifier.Notify(c.Request.Context(), o.UserID, o.CustomerEmail, notification.TypeOrderCreated,
			"Order placed", fmt.Sprintf("Order %s received, total %s", o.Number, o.Total.StringFixed(2)))

		httpx.OK(c, http.StatusCreated, o)
	}
}

func getOrderHandler(orders order.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		o, err := orders.GetByID(c.Request.Context(), c.Param("id"))
		if err != nil {
			failErr(c, err)
			return
		}
		actor := actorFrom(c)
		if !actor.Admin && o.UserID != actor.ID {
			failErr(c, order.ErrForbidden)
			return
		}
		httpx.OK(c, http.StatusOK, o)
	}
}

func listOrdersHandler(orders order.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor := actorFrom(c)
		limit, offset := intQuery(c, "limit", 20), intQuery(c, "offset", 0)

		if actor.Admin && c.Query("all") == "true" {
			out, err := orders.List(c.Request.Context(), order.Query{
				Status: c.Query("status"),
				Limit:  limit,
				Offset: offset,
			})
			if err != nil {
				failErr(c, err)
				return
			}
			httpx.OK(c, http.StatusOK, gin.H{"items": out})
			return
		}

		out, err := orders.ListByUser(c.Request.Context(), actor.ID, limit, offset)
		if err != nil {
			failErr(c, err)
			return
		}
		httpx.OK(c, http.StatusOK, gin.H{"items": out})
	}
}

// updateOrderStatusHandler applies a state-machine-guarded status change.
// When only payment_status is supplied the order status is derived.
// @Summary Update order status
// @Tags orders
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "order id"
// @Param body body order.UpdateStatusRequest true "statuses"
// @Success 200 {object} httpx.Envelope
// @Failure 400 {object} httpx.Envelope "invalid transition"
// @Router /orders/{id}/status [patch]
func updateOrderStatusHandler(orders order.Repository, notifier *notification.Notifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req order.UpdateStatusRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			httpx.Fail(c, http.StatusBadRequest, "invalid json")
			return
		}

		var ch order.StatusChange
		errs := map[string]string{}
		if req.Status != "" {
			s, err := order.ParseStatus(req.Status)
			if err != nil {
				errs["status"] = err.Error()
			} else {
				ch.Status = &s
			}
		}
		if req.PaymentStatus != "" {
			s, err := order.ParsePaymentStatus(req.PaymentStatus)
			if err != nil {
				errs["payment_status"] = err.Error()
			} else {
				ch.PaymentStatus = &s
			}
		}
		if req.FulfillmentStatus != "" {
			s, err := order.ParseFulfillmentStatus(req.FulfillmentStatus)
			if err != nil {
				errs["fulfillment_status"] = err.Error()
			} else {
				ch.FulfillmentStatus = &s
			}
		}
		if len(errs) > 0 {
			httpx.FailValidation(c, errs)
			return
		}
		if ch.Status == nil && ch.PaymentStatus == nil && ch.FulfillmentStatus == nil {
			httpx.Fail(c, http.StatusBadRequest, "no status fields supplied")
			return
		}

		o, err := orders.UpdateStatus(c.Request.Context(), c.Param("id"), ch)
		if err != nil {
			failErr(c, err)
			return
		}

		notifier.Notify(c.Request.Context(), o.UserID, o.CustomerEmail, notification.TypeOrderStatus,
			"Order updated", fmt.Sprintf("Order %s is now %s", o.Number, o.Status))

		httpx.OK(c, http.StatusOK, o)
	}
}

// cancelOrderHandler cancels a PENDING or CONFIRMED order, restoring stock.
// @Summary Cancel an order
// @Tags orders
// @Produce json
// @Security BearerAuth
// @Param id path string true "order id"
// @Success 200 {object} httpx.Envelope
// @Failure 400 {object} httpx.Envelope "not cancellable"
// @Failure 403 {object} httpx.Envelope
// @Router /orders/{id}/cancel [post]
func cancelOrderHandler(orders order.Repository, notifier *notification.Notifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		o, err := orders.Cancel(c.Request.Context(), c.Param("id"), actorFrom(c))
		if err != nil {
			failErr(c, err)
			return
		}

		notifier.Notify(c.Request.Context(), o.UserID, o.CustomerEmail, notification.TypeOrderStatus,
			"Order cancelled", fmt.Sprintf("Order %s was cancelled", o.Number))

		httpx.OK(c, http.StatusOK, o)
	}
}
