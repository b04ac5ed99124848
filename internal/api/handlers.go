package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"alert-service/internal/logging"
	"alert-service/internal/models"
	"alert-service/internal/repository"
	"alert-service/internal/storage"
	"alert-service/internal/ws"
)

type Handler struct {
	repo     *repository.Repository
	hub      *ws.Hub
	logger   *logging.Logger
	upgrader websocket.Upgrader
}

func NewHandler(repo *repository.Repository, hub *ws.Hub, logger *logging.Logger) *Handler {
	return &Handler{
		repo:   repo,
		hub:    hub,
		logger: logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
	}
}

// CreateAlert accepts an alert as an untyped JSON record; missing ids are
// assigned here. The record is coerced to the Alert entity before storage.
func (h *Handler) CreateAlert(c *gin.Context) {
	var rec models.Record
	if err := c.ShouldBindJSON(&rec); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if id, _ := rec["id"].(string); id == "" {
		rec["id"] = uuid.NewString()
	}
	if _, ok := rec["enabled"]; !ok {
		rec["enabled"] = true
	}

	alert, err := models.FromRecord(rec)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	stored, err := h.repo.CreateAlert(c.Request.Context(), alert)
	if err != nil {
		h.logger.Errorf("Create alert failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, stored)
}

// ListAlerts returns the active alert set.
func (h *Handler) ListAlerts(c *gin.Context) {
	alerts, err := h.repo.GetActiveAlerts(c.Request.Context())
	if err != nil {
		h.logger.Errorf("List alerts failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, alerts)
}

func (h *Handler) GetAlert(c *gin.Context) {
	alert, err := h.repo.GetAlert(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		h.logger.Errorf("Get alert failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, alert)
}

type statusUpdate struct {
	Enabled *bool `json:"enabled" binding:"required"`
}

// UpdateAlertStatus enables or disables an alert.
func (h *Handler) UpdateAlertStatus(c *gin.Context) {
	var req statusUpdate
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	id := c.Param("id")
	if err := h.repo.SetEnabled(c.Request.Context(), id, *req.Enabled); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		h.logger.Errorf("Update alert status failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": id, "enabled": *req.Enabled})
}

func (h *Handler) DeleteAlert(c *gin.Context) {
	err := h.repo.DeleteAlert(c.Request.Context(), c.Param("id"))
	if err != nil {
		var capErr *storage.CapabilityError
		switch {
		case errors.As(err, &capErr):
			c.JSON(http.StatusNotImplemented, gin.H{"error": err.Error()})
		case errors.Is(err, storage.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		default:
			h.logger.Errorf("Delete alert failed: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return
	}
	c.Status(http.StatusNoContent)
}

// WebSocket upgrades the connection and attaches it to the update hub.
func (h *Handler) WebSocket(c *gin.Context) {
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Errorf("WebSocket upgrade failed: %v", err)
		return
	}
	h.hub.Add(conn)
	go func() {
		defer func() {
			h.hub.Remove(conn)
			_ = conn.Close()
		}()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}
