package server

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/edibez/cryptochat/internal/chat"
	"github.com/edibez/cryptochat/internal/tools"
	"github.com/edibez/cryptochat/pkg/types"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func handleRoot(c *gin.Context) {
	c.String(http.StatusOK, "Crypto Chat Backend")
}

func handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, types.HealthResponse{Status: "ok", Timestamp: time.Now().Unix()})
}

func handleTools(c *gin.Context) {
	c.JSON(http.StatusOK, tools.Declarations())
}

func (s *Server) handleChat(c *gin.Context) {
	var req types.ChatRequest
	// A body that does not decode carries no message.
	_ = c.ShouldBindJSON(&req)

	resp, status, errMsg := s.runChat(c, req)
	if errMsg != "" {
		c.JSON(status, types.ErrorResponse{Error: errMsg})
		return
	}
	c.JSON(http.StatusOK, resp)
}

// runChat calls the orchestrator and maps failures to a status and public message.
func (s *Server) runChat(c *gin.Context, req types.ChatRequest) (*chat.Response, int, string) {
	resp, err := s.chat.Handle(c.Request.Context(), chat.Request{
		Message:   req.Message,
		SessionID: req.SessionID,
	})
	switch {
	case err == nil:
		return resp, http.StatusOK, ""
	case errors.Is(err, chat.ErrBadRequest):
		return nil, http.StatusBadRequest, err.Error()
	default:
		s.logger.Error("error in chat handling", zap.Error(err))
		return nil, http.StatusInternalServerError, chat.PublicMessage(err)
	}
}

func (s *Server) handlePrice(c *gin.Context) {
	symbol := strings.TrimSpace(c.Param("symbol"))
	if symbol == "" {
		c.JSON(http.StatusBadRequest, types.ErrorResponse{Error: "Coin symbol is required."})
		return
	}

	price, err := s.market.GetCurrentPrice(c.Request.Context(), symbol)
	if err != nil {
		s.logger.Warn("price lookup failed", zap.String("symbol", symbol), zap.Error(err))
		c.JSON(http.StatusInternalServerError, types.ErrorResponse{Error: "Failed to fetch price"})
		return
	}

	c.JSON(http.StatusOK, types.PriceResponse{Symbol: symbol, Price: price})
}

func (s *Server) handleTrending(c *gin.Context) {
	coins, err := s.market.ListTrendingCoins(c.Request.Context())
	if err != nil {
		s.logger.Warn("trending lookup failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, types.ErrorResponse{Error: chat.PublicMessage(err)})
		return
	}
	c.JSON(http.StatusOK, gin.H{"coins": coins})
}
