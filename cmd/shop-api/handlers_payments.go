package main

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/mcampos87/comercio-api/internal/httpx"
	"github.com/mcampos87/comercio-api/internal/order"
	"github.com/mcampos87/comercio-api/internal/payment"
)

// processPaymentHandler settles a payment synchronously through the
// configured provider (or immediately for offline methods).
// @Summary Process a payment
// @Tags payments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body payment.ProcessRequest true "payment"
// @Success 200 {object} httpx.Envelope
// @Failure 400 {object} httpx.Envelope "unknown method or already paid"
// @Failure 403 {object} httpx.Envelope
// @Router /payments/process [post]
func processPaymentHandler(svc *payment.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req payment.ProcessRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			httpx.Fail(c, http.StatusBadRequest, "invalid json")
			return
		}
		if strings.TrimSpace(req.OrderID) == "" {
			httpx.FailValidation(c, map[string]string{"order_id": "order_id is required"})
			return
		}

		p, o, err := svc.Process(c.Request.Context(), req, actorFrom(c))
		if err != nil {
			failErr(c, err)
			return
		}
		httpx.OK(c, http.StatusOK, gin.H{"payment": p, "order": o})
	}
}

// initiatePaymentHandler starts a redirect payment flow.
// @Summary Initiate a redirect payment
// @Tags payments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body payment.InitiateRequest true "payment"
// @Success 200 {object} httpx.Envelope
// @Router /payments/initiate [post]
func initiatePaymentHandler(svc *payment.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req payment.InitiateRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			httpx.Fail(c, http.StatusBadRequest, "invalid json")
			return
		}
		errs := map[string]string{}
		if strings.TrimSpace(req.OrderID) == "" {
			errs["order_id"] = "order_id is required"
		}
		if strings.TrimSpace(req.Method) == "" {
			errs["method"] = "method is required"
		}
		if len(errs) > 0 {
			httpx.FailValidation(c, errs)
			return
		}

		p, err := svc.Initiate(c.Request.Context(), req, actorFrom(c))
		if err != nil {
			failErr(c, err)
			return
		}
		httpx.OK(c, http.StatusOK, p)
	}
}

// paymentWebhookHandler receives gateway callbacks. The raw body is
// handed to the provider for verification.
// @Summary Payment gateway webhook
// @Tags payments
// @Accept json
// @Produce json
// @Param provider path string true "provider name"
// @Success 200 {object} httpx.Envelope
// @Router /payments/webhook/{provider} [post]
func paymentWebhookHandler(svc *payment.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw, err := io.ReadAll(io.LimitReader(c.Request.Body, 1<<20))
		if err != nil {
			httpx.Fail(c, http.StatusBadRequest, "unreadable body")
			return
		}
		var req payment.WebhookRequest
		if err := json.Unmarshal(raw, &req); err != nil || req.TransactionID == "" {
			httpx.Fail(c, http.StatusBadRequest, "transaction_id is required")
			return
		}

		p, err := svc.HandleWebhook(c.Request.Context(), c.Param("provider"), req.TransactionID, raw)
		if err != nil {
			failErr(c, err)
			return
		}
		httpx.OK(c, http.StatusOK, p)
	}
}

func listOrderPaymentsHandler(payments payment.Repository, orders order.Repository) gin.HandlerFunc {
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
		out, err := payments.ListByOrder(c.Request.Context(), o.ID)
		if err != nil {
			failErr(c, err)
			return
		}
		httpx.OK(c, http.StatusOK, gin.H{"items": out})
	}
}
