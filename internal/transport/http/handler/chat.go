package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"punch/internal/app"
	"punch/internal/transport/http/middleware"
	"punch/internal/transport/http/response"
)

type ChatHandler struct {
	chatService *app.ChatService
	logger      *zap.Logger
}

type ChatRequest struct {
	UserID  string `json:"user_id" binding:"required,max=128"`
	Message string `json:"message"`
}

type ChatResponse struct {
	Response string `json:"response"`
}

func NewChatHandler(chatService *app.ChatService, logger *zap.Logger) *ChatHandler {
	return &ChatHandler{chatService: chatService, logger: logger}
}

func (h *ChatHandler) Chat(c *gin.Context) {
	var req ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid request payload")
		return
	}

	if tokenUserID, ok := middleware.AuthenticatedUserID(c); ok && tokenUserID != req.UserID {
		response.Error(c, http.StatusUnauthorized, "token does not match user_id")
		return
	}

	reply, err := h.chatService.Reply(c.Request.Context(), req.UserID, req.Message)
	if err != nil {
		switch {
		case errors.Is(err, app.ErrInvalidInput), errors.Is(err, app.ErrMessageEmpty):
			response.Error(c, http.StatusBadRequest, err.Error())
		case errors.Is(err, app.ErrLLMConfig):
			response.Error(c, http.StatusServiceUnavailable, "chat backend is not configured")
		case errors.Is(err, app.ErrLLMUnavailable):
			response.Error(c, http.StatusBadGateway, "chat backend unavailable")
		default:
			h.logger.Error("chat failed", zap.Error(err))
			response.Error(c, http.StatusInternalServerError, "chat failed")
		}
		return
	}

	response.OK(c, ChatResponse{Response: reply})
}
