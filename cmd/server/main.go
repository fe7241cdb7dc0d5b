package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/opensettle/marketgate/internal/config"
	"github.com/opensettle/marketgate/internal/engine"
	"github.com/opensettle/marketgate/internal/event"
	"github.com/opensettle/marketgate/internal/handler"
	"github.com/opensettle/marketgate/internal/ledger"
	"github.com/opensettle/marketgate/internal/middleware"
	"github.com/opensettle/marketgate/internal/pkg/logger"
	"github.com/opensettle/marketgate/internal/registry"
	"github.com/opensettle/marketgate/internal/repository"
	"github.com/opensettle/marketgate/internal/service"
	"github.com/opensettle/marketgate/internal/stream"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger.Init(cfg.Log.Level)

	admin := mustAddress("market.admin_address", cfg.Market.AdminAddress)
	engineAddr := mustAddress("chain.engine_address", cfg.Chain.EngineAddress)
	payee := admin
	if cfg.Market.Payee != "" {
		payee = mustAddress("market.payee", cfg.Market.Payee)
	}

	// Event sinks. The log sink and the websocket hub are always on; redis and
	// postgres join the fanout when configured.
	hub := stream.NewHub()
	sinks := event.Fanout{&event.LogSink{}, hub}

	var redisSink *repository.RedisEventSink
	if cfg.Redis.Addr != "" {
		redisClient, err := repository.NewRedisClient(cfg)
		if err == nil {
			logger.Info("✅ Connected to Redis")
			redisSink = repository.NewRedisEventSink(redisClient, cfg.Redis.EventsListKey, cfg.Redis.EventsListMax)
			sinks = append(sinks, redisSink)
		} else {
			logger.Error("⚠️ Failed to connect to Redis, event cache disabled", "error", err)
		}
	}

	var store *repository.SettlementStore
	if cfg.Database.DSN != "" {
		db, err := repository.NewDB(cfg)
		if err == nil {
			logger.Info("✅ Connected to PostgreSQL")
			store = repository.NewSettlementStore(db)
			sinks = append(sinks, store)
		} else {
			logger.Error("⚠️ Failed to connect to DB, settlement history disabled", "error", err)
		}
	}

	// Core services
	assets := ledger.NewAssetLedger()
	payments := ledger.NewPaymentLedger()
	royalties := registry.New(admin, sinks)

	engCfg := engine.NewConfig(admin, engineAddr, cfg.Chain.ID, payee, cfg.Market.FeeBps)
	eng := engine.New(engCfg, assets, payments, sinks)

	svc := service.NewSettlementService(eng, royalties, assets, payments)
	if err := svc.EnableRoyaltyRegistry(context.Background()); err != nil {
		log.Fatalf("Failed to attach royalty registry: %v", err)
	}
	if cfg.Market.PaymentToken != "" {
		if err := svc.SetPaymentToken(context.Background(), cfg.Market.PaymentToken); err != nil {
			log.Fatalf("Invalid market.payment_token: %v", err)
		}
	}

	marketHandler := handler.NewMarketHandler(svc)
	royaltyHandler := handler.NewRoyaltyHandler(svc)
	adminHandler := handler.NewAdminHandler(svc)
	eventsHandler := handler.NewEventsHandler(redisSink, store, hub)

	r := gin.Default()
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.MetricsMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok", "service": "marketgate"})
	})

	if cfg.Metrics.Enabled {
		r.GET(cfg.Metrics.Path, gin.WrapH(promhttp.Handler()))
	}

	v1 := r.Group("/v1")
	v1.Use(middleware.RateLimitMiddleware(cfg))
	{
		v1.POST("/settlements/buy", marketHandler.BuyNFT)
		v1.POST("/settlements/bundle", marketHandler.BuyBundle)
		v1.POST("/settlements/offer", marketHandler.AcceptOffer)

		v1.GET("/royalties/:collection", royaltyHandler.GetRoyalty)
		v1.GET("/config", adminHandler.GetConfig)

		v1.GET("/events", eventsHandler.Recent)
		v1.GET("/events/history", eventsHandler.History)
		v1.GET("/events/stream", eventsHandler.Stream)

		v1.GET("/assets/:collection/:token_id/owner", adminHandler.OwnerOf)
		v1.GET("/balances/:address", adminHandler.BalanceOf)

		adm := v1.Group("/admin")
		adm.Use(middleware.AdminMiddleware(cfg))
		{
			adm.POST("/royalties", royaltyHandler.SetRoyalty)
			adm.POST("/config/payee", adminHandler.SetMarketPayee)
			adm.POST("/config/percent", adminHandler.SetMarketPercent)
			adm.POST("/config/payment-token", adminHandler.SetPaymentToken)
			adm.POST("/assets/mint", adminHandler.MintAsset)
			adm.POST("/assets/approve", adminHandler.ApproveAsset)
			adm.POST("/funds/mint", adminHandler.MintFunds)
			adm.POST("/funds/approve", adminHandler.ApproveFunds)
		}
	}

	srv := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: r,
	}

	go func() {
		logger.Info("🚀 MarketGate started", "port", cfg.Server.Port, "chain_id", cfg.Chain.ID)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server listen failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("🛑 Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	hub.Close()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	logger.Info("Server exited")
}

func mustAddress(key, value string) common.Address {
	if !common.IsHexAddress(value) {
		log.Fatalf("Invalid %s: %q", key, value)
	}
	return common.HexToAddress(value)
}
