package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"punch/internal/app"
	"punch/internal/transport/http/response"
)

type IdentityHandler struct {
	identityService *app.IdentityService
	logger          *zap.Logger
}

type RegisterRequest struct {
	UserID string `json:"user_id" binding:"required,max=128"`
	Name   string `json:"name" binding:"required,max=64"`
	Phone  string `json:"phone" binding:"max=32"`
}

type RegisterResponse struct {
	UserID string `json:"user_id"`
	Token  string `json:"token"`
}

func NewIdentityHandler(identityService *app.IdentityService, logger *zap.Logger) *IdentityHandler {
	return &IdentityHandler{identityService: identityService, logger: logger}
}

func (h *IdentityHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid request payload")
		return
	}

	result, err := h.identityService.Register(c.Request.Context(), app.RegisterInput{
		UserID: req.UserID,
		Name:   req.Name,
		Phone:  req.Phone,
	})
	if err != nil {
		switch {
		case errors.Is(err, app.ErrInvalidInput):
			response.Error(c, http.StatusBadRequest, err.Error())
		default:
			h.logger.Error("register failed", zap.Error(err))
			response.Error(c, http.StatusInternalServerError, "register failed")
		}
		return
	}

	response.OK(c, RegisterResponse{UserID: result.UserID, Token: result.Token})
}
