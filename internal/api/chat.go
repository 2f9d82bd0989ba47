package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/pageza/worldchef/backend/internal/llm"
	"github.com/pageza/worldchef/backend/internal/middleware"
	"github.com/pageza/worldchef/backend/internal/service"
	"github.com/pageza/worldchef/backend/internal/types"
)

// ChatHandler exposes the chat relay over HTTP
type ChatHandler struct {
	relay  service.IChatRelay
	logger *zap.Logger
}

// NewChatHandler creates a new ChatHandler instance
func NewChatHandler(relay service.IChatRelay, logger *zap.Logger) *ChatHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ChatHandler{relay: relay, logger: logger}
}

// RegisterRoutes registers the chat routes. extra middleware runs before the
// POST handler only, so preflight requests never reach it.
func (h *ChatHandler) RegisterRoutes(router *gin.RouterGroup, extra ...gin.HandlerFunc) {
	handlers := append(append([]gin.HandlerFunc{}, extra...), h.Chat)
	router.POST("/chat", handlers...)
	router.OPTIONS("/chat", Preflight)
}

// Preflight answers OPTIONS requests that the CORS middleware let through
func Preflight(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

// Chat handles one chat exchange
func (h *ChatHandler) Chat(c *gin.Context) {
	var req types.ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		err = fmt.Errorf("%w: %v", service.ErrMalformedInput, err)
		_ = c.Error(err)
		h.logger.Debug("rejected chat request", zap.Error(err))
		c.JSON(http.StatusBadRequest, middleware.ErrorResponse{Error: "invalid request body"})
		return
	}

	resp, err := h.relay.Handle(c.Request.Context(), req)
	if err != nil {
		_ = c.Error(err)
		fields := []zap.Field{
			zap.String("request_id", c.GetString(middleware.RequestIDKey)),
			zap.Error(err),
		}
		var perr *llm.ProviderError
		if errors.As(err, &perr) {
			fields = append(fields, zap.Int("upstream_status", perr.StatusCode))
		}
		h.logger.Error("chat request failed", fields...)
		c.JSON(http.StatusInternalServerError, middleware.ErrorResponse{Error: "failed to process chat request"})
		return
	}

	c.JSON(http.StatusOK, resp)
}
