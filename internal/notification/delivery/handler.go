package delivery

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"coachly-backend/internal/notification/repository"
)

type NotificationHandler struct {
	tokenRepo repository.DeviceTokenRepository
}

func NewNotificationHandler(tokenRepo repository.DeviceTokenRepository) *NotificationHandler {
	return &NotificationHandler{tokenRepo: tokenRepo}
}

type registerTokenRequest struct {
	Token  string `json:"token" binding:"required"`
	Device string `json:"device"`
}

// RegisterToken handles POST /api/notifications/token
func (h *NotificationHandler) RegisterToken(c *gin.Context) {
	var req registerTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.tokenRepo.SaveToken(c.GetString("userID"), req.Token, req.Device); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to register token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Token registered"})
}

type unregisterTokenRequest struct {
	Token string `json:"token" binding:"required"`
}

// UnregisterToken handles DELETE /api/notifications/token
func (h *NotificationHandler) UnregisterToken(c *gin.Context) {
	var req unregisterTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.tokenRepo.DeleteToken(req.Token); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to remove token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Token removed"})
}
