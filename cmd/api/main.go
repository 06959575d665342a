package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"payout/internal/config"
	httphandler "payout/internal/handler/http"
	"payout/internal/ledger"
	"payout/internal/logger"
	"payout/internal/notifier"
	"payout/internal/repository/migration"
	"payout/internal/repository/postgresql"
	"payout/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("failed to load configuration:", err)
	}

	zlog, err := logger.New(cfg.Logger.LoggerLevel)
	if err != nil {
		log.Fatal("failed to build logger:", err)
	}
	defer zlog.Sync()

	db, err := sql.Open("postgres", cfg.DB.DatabaseURL)
	if err != nil {
		zlog.Fatal("failed to open database", zap.Error(err))
	}
	db.SetMaxOpenConns(cfg.DB.MaxOpenConnection)
	db.SetMaxIdleConns(cfg.DB.MaxIdleConnection)
	db.SetConnMaxLifetime(cfg.DB.ConnectionLifetime)
	defer db.Close()

	if err := migration.RunMigrations(db, zlog); err != nil {
		zlog.Fatal("failed to run migrations", zap.Error(err))
	}

	withdrawalRepo := postgresql.NewWithdrawalRepository(db)
	auditRepo := postgresql.NewAuditLogRepository(db)
	ledgerClient := ledger.NewClient(cfg.Ledger.BaseURL)
	emailClient := notifier.NewEmailClient(cfg.Email.BaseURL)

	orchestrator := service.NewOrchestrator(withdrawalRepo, auditRepo, ledgerClient, cfg.Webhook.Secret, zlog)
	lifecycle := service.NewLifecycle(withdrawalRepo, auditRepo, ledgerClient, emailClient, zlog)

	h := httphandler.NewWithdrawalHandler(orchestrator, lifecycle, zlog)
	server := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: httphandler.NewRouter(h),
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		zlog.Info("starting payout server", zap.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		zlog.Info("shutting down server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown error: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		zlog.Fatal("application terminated with error", zap.Error(err))
	}
}
