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
	"pharmacy-store/internal/migrate"
	"pharmacy-store/internal/redisclient"
	"pharmacy-store/internal/schema"
	"pharmacy-store/internal/store"
	"pharmacy-store/internal/util"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// The owning application. It creates and migrates the tables and serves the
// read-write admin console.
//
//	server           migrate (when MIGRATE_ON_START) and serve
//	server migrate   apply pending steps and exit
//	server status    list applied and pending steps
//	server ddl       print the CREATE statements the current declarations
//	                 render to, as a starting point for a new step
func main() {
	cfg := config.Load()

	if err := util.InitLogger(cfg.Server.Env); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer util.SyncLogger()

	logger := util.GetLogger()

	command := "serve"
	if len(os.Args) > 1 {
		command = os.Args[1]
	}

	if command == "ddl" {
		if err := printDDL(cfg.Database.Driver); err != nil {
			logger.Fatal("Failed to render DDL", zap.Error(err))
		}
		return
	}

	tp, err := util.InitTracer("pharmacy-store", cfg.Observ.JaegerEndpoint)
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

	db, err := store.Open(cfg.Database.Driver, cfg.Database.URL)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	s := store.New(db)
	defer s.Close()
	logger.Info("Database connected", zap.String("driver", cfg.Database.Driver))

	var opts []migrate.Option
	redisClient, err := redisclient.NewClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		logger.Warn("Redis unavailable, migrating without lock", zap.Error(err))
	} else {
		defer redisClient.Close()
		opts = append(opts, migrate.WithLocker(redisClient), migrate.WithVersionStore(redisClient))
	}

	var publisher *broker.EventPublisher
	if command != "status" {
		producer := broker.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.TopicSchema)
		defer producer.Close()
		publisher = broker.NewEventPublisher(producer)
		opts = append(opts, migrate.WithNotifier(publisher))
	}

	runner, err := migrate.NewRunner(db, opts...)
	if err != nil {
		logger.Fatal("Failed to create migration runner", zap.Error(err))
	}

	ctx := context.Background()
	switch command {
	case "migrate":
		if _, err := runner.Up(ctx); err != nil {
			logger.Fatal("Migration failed", zap.Error(err))
		}
		return
	case "status":
		if err := printStatus(ctx, runner, redisClient); err != nil {
			logger.Fatal("Failed to read migration status", zap.Error(err))
		}
		return
	case "serve":
	default:
		logger.Fatal("Unknown command", zap.String("command", command))
	}

	if cfg.Database.MigrateOnStart {
		if _, err := runner.Up(ctx); err != nil {
			logger.Fatal("Migration failed", zap.Error(err))
		}
	}

	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	deps := admin.Deps{DB: db, Reader: s, Publisher: publisher}
	if !cfg.Admin.ReadOnly {
		deps.Writer = s
	}
	router := gin.New()
	admin.NewHandler(deps).SetupRoutes(router)

	serve(router, cfg.Server.Port, logger)
}

func printStatus(ctx context.Context, runner *migrate.Runner, redisClient *redisclient.Client) error {
	applied, err := runner.Applied(ctx)
	if err != nil {
		return err
	}
	pending, err := runner.Pending(ctx)
	if err != nil {
		return err
	}

	for _, a := range applied {
		fmt.Printf("[x] %s  %s  (%s)\n", a.ID, a.Description, a.AppliedAt.Format(time.RFC3339))
	}
	for _, p := range pending {
		fmt.Printf("[ ] %s  %s\n", p.ID, p.Description)
	}

	if redisClient != nil {
		version, err := redisClient.GetSchemaVersion(ctx)
		if err != nil {
			return err
		}
		fmt.Printf("published schema version: %q\n", version)
	}
	return nil
}

func printDDL(driver string) error {
	dialect, err := schema.DialectFor(driver)
	if err != nil {
		return err
	}
	for _, t := range schema.Tables() {
		fmt.Printf("%s;\n\n", dialect.CreateTable(t))
		for _, stmt := range dialect.CreateIndexes(t) {
			fmt.Printf("%s;\n", stmt)
		}
	}
	return nil
}

func serve(router *gin.Engine, port string, logger *zap.Logger) {
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", port),
		Handler: router,
	}

	go func() {
		logger.Info("Starting HTTP server", zap.String("port", port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exited")
}
