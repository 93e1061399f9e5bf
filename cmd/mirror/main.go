package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"pharmacy-store/config"
	"pharmacy-store/internal/admin"
	"pharmacy-store/internal/broker"
	"pharmacy-store/internal/mirror"
	"pharmacy-store/internal/util"
	"pharmacy-store/internal/worker"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// The read-only consumer of the owner's tables. It never migrates; it checks
// that the live tables still match the declarations and serves a console that
// refuses writes.
//
//	mirror           verify, follow schema events and serve
//	mirror verify    verify once and exit non-zero on drift
func main() {
	cfg := config.Load()

	if err := util.InitLogger(cfg.Server.Env); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer util.SyncLogger()

	logger := util.GetLogger()

	tp, err := util.InitTracer("pharmacy-mirror", cfg.Observ.JaegerEndpoint)
	if err != nil {
		logger.Fatal("Failed to initialize tracer", zap.Error(err))
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tp.Shutdown(ctx); err != nil {
			logger.Error("Error shutting down tracer", zap.Error(err))
		}
	}()

	m, err := mirror.Open(cfg.Database.Driver, cfg.Database.MirrorURL)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer m.Close()

	if len(os.Args) > 1 && os.Args[1] == "verify" {
		drifts, err := m.Verify(context.Background())
		if err != nil {
			logger.Fatal("Verification failed", zap.Error(err))
		}
		for _, d := range drifts {
			fmt.Println(d)
		}
		if len(drifts) > 0 {
			os.Exit(1)
		}
		return
	}

	workerCtx, workerCancel := context.WithCancel(context.Background())
	defer workerCancel()

	consumer := broker.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.TopicSchema, cfg.Kafka.ConsumerGroup)
	mirrorWorker := worker.NewMirrorWorker(consumer, m)
	go func() {
		if err := mirrorWorker.Start(workerCtx); err != nil && err != context.Canceled {
			logger.Error("Mirror worker error", zap.Error(err))
		}
	}()

	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	handler := admin.NewHandler(admin.Deps{DB: m, Reader: m})
	handler.SetupRoutes(router)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Server.Port),
		Handler: router,
	}

	go func() {
		logger.Info("Starting read-only console", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down mirror...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}

	workerCancel()
	mirrorWorker.Stop()

	logger.Info("Mirror exited")
}
