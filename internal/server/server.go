// Package server exposes the chat service over HTTP and websocket.
package server

import (
	"context"
	"net/http"

	"github.com/edibez/cryptochat/internal/chat"
	"github.com/edibez/cryptochat/internal/logging"
	"github.com/edibez/cryptochat/internal/market"
	"github.com/edibez/cryptochat/internal/metrics"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// Chatter handles one chat turn.
type Chatter interface {
	Handle(ctx context.Context, req chat.Request) (*chat.Response, error)
}

// Market is the market data used directly by HTTP routes.
type Market interface {
	GetCurrentPrice(ctx context.Context, symbol string) (float64, error)
	ListTrendingCoins(ctx context.Context) ([]market.TrendingCoin, error)
}

// Deps are the collaborators of the HTTP server.
type Deps struct {
	Chat     Chatter
	Market   Market
	Metrics  *metrics.Metrics
	Gatherer prometheus.Gatherer
	Logger   *zap.Logger
}

// Server holds the HTTP handlers.
type Server struct {
	chat     Chatter
	market   Market
	metrics  *metrics.Metrics
	gatherer prometheus.Gatherer
	logger   *zap.Logger
	upgrader websocket.Upgrader
}

// New creates a server from its dependencies.
func New(deps Deps) *Server {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{
		chat:     deps.Chat,
		market:   deps.Market,
		metrics:  deps.Metrics,
		gatherer: deps.Gatherer,
		logger:   logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
	}
}

// Router builds the gin engine with every route registered.
func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(logging.GinLogger(s.logger))
	if s.metrics != nil {
		r.Use(s.metrics.TimeTracking())
	}
	r.Use(cors())

	r.GET("/", handleRoot)
	r.GET("/health", handleHealth)
	r.GET("/price/:symbol", s.handlePrice)

	api := r.Group("/api")
	{
		api.POST("/chat", s.handleChat)
		api.GET("/chat/ws", s.handleChatWS)
		api.GET("/tools", handleTools)
		api.GET("/trending", s.handleTrending)
	}

	if s.gatherer != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{})))
	}

	return r
}

// cors allows browser clients from any origin.
func cors() gin.HandlerFunc {
	return func(c *gin.Context) {
		h := c.Writer.Header()
		h.Set("Access-Control-Allow-Origin", "*")
		h.Set("Access-Control-Allow-Methods", "GET,HEAD,PUT,PATCH,POST,DELETE")
		h.Set("Access-Control-Allow-Headers", "Content-Type")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}
