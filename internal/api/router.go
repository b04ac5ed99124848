package api

import (
	"github.com/gin-gonic/gin"

	"alert-service/internal/config"
	"alert-service/internal/logging"
)

func NewRouter(cfg config.Config, h *Handler, logger *logging.Logger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(RequestLoggingMiddleware(logger))

	api := r.Group(cfg.API.BasePath)
	{
		api.POST("/alerts", h.CreateAlert)
		api.GET("/alerts", h.ListAlerts)
		api.GET("/alerts/:id", h.GetAlert)
		api.PATCH("/alerts/:id/status", h.UpdateAlertStatus)
		api.DELETE("/alerts/:id", h.DeleteAlert)
	}
	r.GET("/ws", h.WebSocket)

	return r
}
