package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/nthminh/Pho-Viet/internal/adapter/handler"
	"github.com/nthminh/Pho-Viet/internal/adapter/storage"
	"github.com/nthminh/Pho-Viet/internal/config"
	"github.com/nthminh/Pho-Viet/internal/core/service"
	"github.com/nthminh/Pho-Viet/internal/metrics"
	"github.com/nthminh/Pho-Viet/internal/port"
	"github.com/nthminh/Pho-Viet/internal/seed"
)

const connectTimeout = 10 * time.Second

func main() {
	cfg := config.Load()

	log := zerolog.New(os.Stderr).With().Timestamp().Logger()
	if cfg.Env == "development" {
		log = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	met := metrics.New()

	// The memory store always exists: it is the fallback when the cloud
	// backend errors, and the only store when none is configured.
	memory := storage.NewMemoryStore()
	if err := seed.Load(ctx, memory); err != nil {
		log.Fatal().Err(err).Msg("failed to seed memory store")
	}

	var remoteMenu port.MenuStore
	var remoteOrders port.OrderStore
	var remote *storage.SurrealStore
	if cfg.Cloud.Configured() {
		connectCtx, connectCancel := context.WithTimeout(ctx, connectTimeout)
		var err error
		remote, err = storage.NewSurrealStore(connectCtx, cfg.Cloud.Endpoint(), cfg.Cloud.ProjectID, cfg.Cloud.ProjectID, "root", cfg.Cloud.APIKey)
		connectCancel()
		if err != nil {
			log.Warn().Err(err).Str("endpoint", cfg.Cloud.Endpoint()).
				Msg("cloud backend unreachable, running on memory store only")
		} else {
			remoteMenu = remote
			remoteOrders = remote
			log.Info().Str("endpoint", cfg.Cloud.Endpoint()).Str("project", cfg.Cloud.ProjectID).
				Msg("connected to cloud backend")
		}
	} else {
		log.Info().Msg("cloud backend not configured, running on memory store")
	}

	menuService := service.NewMenuService(remoteMenu, memory, log, met)
	orderService := service.NewOrderService(remoteOrders, memory, log, met)

	router := gin.New()
	router.Use(gin.Recovery())

	httpHandler := handler.NewHTTPHandler(menuService, orderService, log)
	httpHandler.Register(router)

	wsHandler := handler.NewWSHandler(menuService, orderService, log)
	wsHandler.Register(router)

	router.GET("/metrics", gin.WrapH(met.Handler()))

	server := &http.Server{
		Addr:    cfg.Addr,
		Handler: router,
	}

	go func() {
		log.Info().Str("addr", cfg.Addr).Msg("http server listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("http server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("http server shutdown")
	}

	if remote != nil {
		remote.Close()
	}
	log.Info().Msg("stopped")
}
