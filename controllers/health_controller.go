package controllers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type HealthController struct {
	Ping func(ctx context.Context) error
	Log  logrus.FieldLogger
}

func NewHealthController(ping func(ctx context.Context) error, log logrus.FieldLogger) *HealthController {
	return &HealthController{Ping: ping, Log: log}
}

func (h *HealthController) Health(c *gin.Context) {
	if h.Ping != nil {
		if err := h.Ping(c.Request.Context()); err != nil {
			h.Log.WithError(err).Warn("database ping failed")
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
