// @title Welth API
// @version 1.0
// @description Wellness backend: accounts, the WelthIA assistant and habit tracking.
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/welth-app/welth/docs"
	"github.com/welth-app/welth/internal/api/handlers"
	"github.com/welth-app/welth/internal/api/router"
	"github.com/welth-app/welth/internal/config"
	"github.com/welth-app/welth/internal/generation"
	"github.com/welth-app/welth/internal/pkg/logger"
	"github.com/welth-app/welth/internal/pkg/validator"
	"github.com/welth-app/welth/internal/repository/postgres"
	"github.com/welth-app/welth/internal/services"
	"github.com/welth-app/welth/internal/worker"
	"github.com/welth-app/welth/migrations"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "welth-api: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log := logger.Init(logger.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
	})

	db, err := postgres.New(cfg.Database)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer db.Close()

	ran, err := postgres.RunMigrations(ctx, db, migrations.GetFS())
	if err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	for _, name := range ran {
		log.Infof("Applied migration %s", name)
	}

	userRepo := postgres.NewUserRepository(db)
	subRepo := postgres.NewSubscriptionRepository(db)
	chatRepo := postgres.NewChatRepository(db)
	planRepo := postgres.NewPlanRepository(db)

	// A missing credential only disables the chat endpoint
	generator, genErr := generation.New(cfg.Generation)
	if genErr != nil {
		log.WithError(genErr).Warn("Text generation unavailable; /api/chat will report a configuration error")
	}

	userService := services.NewUserService(userRepo, log, cfg.Auth.BCryptCost, cfg.Auth.SignupsEnabled)
	accountService := services.NewAccountService(subRepo, planRepo, log)
	planService := services.NewPlanService(planRepo, accountService, log)
	chatService := services.NewChatService(
		generator,
		genErr,
		cfg.Generation.Provider,
		chatRepo,
		services.NewHistoryLoader(chatRepo, planRepo),
		accountService,
		log,
	)

	if schedule := cfg.Worker.SubscriptionSweepSchedule; schedule != "" {
		sweeper := worker.NewSubscriptionSweeper(subRepo, schedule, log)
		if err := sweeper.Start(ctx); err != nil {
			return err
		}
		defer sweeper.Stop()
	}

	h := router.New(cfg, log, &router.Handlers{
		Health:  handlers.NewHealthHandler(db, log),
		Auth:    handlers.NewAuthHandler(userService, cfg, log, validator.New()),
		Chat:    handlers.NewChatHandler(chatService, log),
		Account: handlers.NewAccountHandler(accountService, log),
		Plan:    handlers.NewPlanHandler(planService, log),
	})

	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      h,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Infof("Welth API listening on %s", srv.Addr)
		serveErr <- srv.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
