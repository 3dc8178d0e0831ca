package main

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mcampos87/comercio-api/internal/httpx"
	"github.com/mcampos87/comercio-api/internal/notification"
)

func listNotificationsHandler(notifications notification.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		out, err := notifications.ListByUser(c.Request.Context(), httpx.UserID(c),
			c.Query("unread") == "true", intQuery(c, "limit", 20), intQuery(c, "offset", 0))
		if err != nil {
			failErr(c, err)
			return
		}
		httpx.OK(c, http.StatusOK, gin.H{"items": out})
	}
}

func markNotificationReadHandler(notifications notification.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := notifications.MarkRead(c.Request.Context(), c.Param("id"), httpx.UserID(c)); err != nil {
			failErr(c, err)
			return
		}
		httpx.OKMessage(c, http.StatusOK, nil, "notification marked read")
	}
}
