package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/edibez/cryptochat/internal/cache"
	"github.com/edibez/cryptochat/internal/chat"
	"github.com/edibez/cryptochat/internal/config"
	"github.com/edibez/cryptochat/internal/llm"
	"github.com/edibez/cryptochat/internal/logging"
	"github.com/edibez/cryptochat/internal/market"
	"github.com/edibez/cryptochat/internal/metrics"
	"github.com/edibez/cryptochat/internal/portfolio"
	"github.com/edibez/cryptochat/internal/server"
	"github.com/edibez/cryptochat/internal/tools"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		// No logger yet; zap's example logger keeps the output format.
		zap.NewExample().Fatal("invalid configuration", zap.Error(err))
	}

	logger, err := logging.New(cfg.LogLevel)
	if err != nil {
		zap.NewExample().Fatal("invalid LOG_LEVEL", zap.Error(err))
	}
	defer logger.Sync()

	ctx := context.Background()

	// Market data client
	marketOpts := []market.Option{
		market.WithHTTPClient(&http.Client{Timeout: cfg.HTTPTimeout}),
		market.WithLogger(logging.Component(logger, "market")),
	}
	if cfg.MarketCacheTTL > 0 {
		var store cache.Cache = cache.NewMemory()
		if cfg.RedisAddr != "" {
			redisCache, err := cache.NewRedis(ctx, cfg.RedisAddr)
			if err != nil {
				logger.Fatal("failed to initialize redis cache", zap.Error(err))
			}
			defer redisCache.Close()
			store = redisCache
		}
		marketOpts = append(marketOpts, market.WithCache(store, cfg.MarketCacheTTL))
	}
	marketClient := market.NewClient(cfg.CoinGeckoBaseURL, cfg.CoinGeckoAPIKey, marketOpts...)

	// Portfolio ledger
	var ledger portfolio.Ledger
	switch cfg.PortfolioBackend {
	case "sqlite":
		sqliteLedger, err := portfolio.NewSQLiteLedger(cfg.PortfolioDSN)
		if err != nil {
			logger.Fatal("failed to initialize portfolio store", zap.Error(err))
		}
		defer sqliteLedger.Close()
		ledger = sqliteLedger
	default:
		ledger = portfolio.NewMemoryLedger()
	}
	portfolioService := portfolio.NewService(ledger, marketClient,
		portfolio.WithAmountValidation(cfg.PortfolioValidateAmounts),
		portfolio.WithLogger(logging.Component(logger, "portfolio")),
	)

	// Model
	model, err := llm.NewGemini(ctx, cfg.GeminiAPIKey, cfg.GeminiModel, logging.Component(logger, "llm"))
	if err != nil {
		logger.Fatal("failed to initialize model", zap.Error(err))
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(registry)

	orchestrator := chat.NewOrchestrator(model, tools.NewRegistry(marketClient, portfolioService),
		chat.WithRecorder(m),
		chat.WithLogger(logging.Component(logger, "chat")),
	)

	gin.SetMode(gin.ReleaseMode)
	srv := server.New(server.Deps{
		Chat:     orchestrator,
		Market:   marketClient,
		Metrics:  m,
		Gatherer: registry,
		Logger:   logging.Component(logger, "http"),
	})

	httpServer := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: srv.Router(),
	}

	go func() {
		logger.Info("server is listening", zap.String("addr", "http://localhost:"+cfg.Port))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", zap.Error(err))
	}
}
