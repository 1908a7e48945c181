package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/stagegate/stagegate/pkg/activity"
	"github.com/stagegate/stagegate/pkg/apiserver"
	"github.com/stagegate/stagegate/pkg/auth"
	"github.com/stagegate/stagegate/pkg/config"
	"github.com/stagegate/stagegate/pkg/eventbus"
	"github.com/stagegate/stagegate/pkg/notify"
	"github.com/stagegate/stagegate/pkg/store/postgres"
	redisclient "github.com/stagegate/stagegate/pkg/store/redis"
	"github.com/stagegate/stagegate/pkg/team"
	"github.com/stagegate/stagegate/pkg/workflow"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger, _ := zap.NewProduction()
	defer logger.Sync()

	db, err := postgres.NewStore(&cfg.Database)
	if err != nil {
		logger.Fatal("failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	if err := db.AutoMigrate(); err != nil {
		logger.Fatal("failed to run migrations", zap.Error(err))
	}

	redis, err := redisclient.NewClient(&cfg.Redis)
	if err != nil {
		logger.Fatal("failed to connect to redis", zap.Error(err))
	}
	defer redis.Close()

	definitionRepo := postgres.NewWorkflowRepository(db.DB())
	submissionRepo := postgres.NewSubmissionRepository(db.DB())
	activityRepo := postgres.NewActivityRepository(db.DB())
	memberRepo := postgres.NewMemberRepository(db.DB())
	outboxRepo := postgres.NewOutboxRepository(db.DB())

	directory := team.NewDirectory(memberRepo)
	recorder := activity.NewRecorder(activityRepo, logger)
	notifier := notify.NewNotifier(outboxRepo, eventbus.NewBus(redis.Client()), logger)
	clock := workflow.SystemClock{}

	workflows := workflow.NewWorkflowService(definitionRepo, directory, recorder, notifier, clock, logger)
	submissions := workflow.NewSubmissionService(definitionRepo, submissionRepo, recorder, directory, notifier, clock, logger)

	tokens := auth.NewTokenManager([]byte(cfg.Auth.JWTSecret), cfg.Auth.TokenTTL)
	server := apiserver.NewServer(workflows, submissions, activityRepo, tokens, cfg, logger)

	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.HTTPPort),
		Handler:      server.Router(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.ReadTimeout * 2,
	}

	go func() {
		logger.Info("starting API server", zap.Int("port", cfg.Server.HTTPPort))
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server error", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(ctx); err != nil {
		logger.Error("server forced to shutdown", zap.Error(err))
	}
}
