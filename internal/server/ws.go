package server

import (
	"encoding/json"

	"github.com/edibez/cryptochat/pkg/types"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const maxFrameSize = 64 * 1024

// handleChatWS serves chat over a websocket. Each text frame is a chat
// request; frames are answered in order, one orchestrator call each.
func (s *Server) handleChatWS(c *gin.Context) {
	conn, err := s.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()
	conn.SetReadLimit(maxFrameSize)

	for {
		_, message, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				s.logger.Warn("websocket read error", zap.Error(err))
			}
			return
		}

		var out any
		var req types.ChatRequest
		if err := json.Unmarshal(message, &req); err != nil {
			out = types.ErrorResponse{Error: "invalid JSON message"}
		} else if resp, _, errMsg := s.runChat(c, req); errMsg != "" {
			out = types.ErrorResponse{Error: errMsg}
		} else {
			out = resp
		}

		if err := conn.WriteJSON(out); err != nil {
			s.logger.Warn("websocket write error", zap.Error(err))
			return
		}
	}
}
