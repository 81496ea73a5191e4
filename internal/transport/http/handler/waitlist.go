package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"punch/internal/app"
	"punch/internal/transport/http/response"
)

type WaitlistHandler struct {
	waitlistService *app.WaitlistService
	logger          *zap.Logger
}

type JoinWaitlistRequest struct {
	Email string `json:"email"`
}

func NewWaitlistHandler(waitlistService *app.WaitlistService, logger *zap.Logger) *WaitlistHandler {
	return &WaitlistHandler{waitlistService: waitlistService, logger: logger}
}

func (h *WaitlistHandler) Join(c *gin.Context) {
	var req JoinWaitlistRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid request payload")
		return
	}

	if _, err := h.waitlistService.Join(c.Request.Context(), req.Email); err != nil {
		switch {
		case errors.Is(err, app.ErrInvalidEmail):
			response.Error(c, http.StatusBadRequest, "Invalid email address")
		case errors.Is(err, app.ErrAlreadyRegistered):
			response.Error(c, http.StatusConflict, "Email already registered")
		default:
			h.logger.Error("join waitlist failed", zap.Error(err))
			response.Error(c, http.StatusInternalServerError, "Failed to add to waitlist")
		}
		return
	}

	response.Success(c, "Added to waitlist")
}
