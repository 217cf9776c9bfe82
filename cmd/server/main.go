package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/mamadbah2/autoshop/internal/config"
	"github.com/mamadbah2/autoshop/internal/repository/memory"
	"github.com/mamadbah2/autoshop/internal/repository/mongodb"
	"github.com/mamadbah2/autoshop/internal/repository/sheets"
	"github.com/mamadbah2/autoshop/internal/scheduler"
	"github.com/mamadbah2/autoshop/internal/server/handlers"
	"github.com/mamadbah2/autoshop/internal/server/router"
	"github.com/mamadbah2/autoshop/internal/service/alerts"
	"github.com/mamadbah2/autoshop/internal/service/catalog"
	"github.com/mamadbah2/autoshop/internal/service/ledger"
	"github.com/mamadbah2/autoshop/internal/service/notifications"
	"github.com/mamadbah2/autoshop/internal/service/reporting"
	"github.com/mamadbah2/autoshop/pkg/clients/sms"
	"github.com/mamadbah2/autoshop/pkg/logger"
)

// storage is everything the services need from the persistence backend.
type storage interface {
	catalog.Store
	ledger.ProductStore
	alerts.ProductStore
	alerts.Directory
	notifications.DeliveryLog
	reporting.Store
	handlers.NotificationLog
	Close(ctx context.Context) error
}

func main() {
	cfg, err := config.Load("")
	if err != nil {
		panic(err)
	}

	baseLogger := logger.Must(logger.New(cfg.Server.LogLevel))
	defer func() { _ = baseLogger.Sync() }()

	zap.ReplaceGlobals(baseLogger)

	store, err := openStorage(context.Background(), cfg, baseLogger.Named("repo"))
	if err != nil {
		baseLogger.Fatal("failed to init storage", zap.Error(err))
	}
	defer func() {
		if err := store.Close(context.Background()); err != nil {
			baseLogger.Error("failed to close storage", zap.Error(err))
		}
	}()

	var sender sms.Client
	if cfg.SMS.Enabled() {
		sender = sms.NewClient(cfg.SMS)
		baseLogger.Info("sms alerts enabled")
	} else {
		baseLogger.Warn("twilio credentials missing, low-stock alerts will be logged as failed")
	}

	var sheetsRepo sheets.Repository
	if cfg.Sheets.Enabled() {
		sheetsRepo, err = sheets.NewGoogleSheetRepository(context.Background(), cfg.Sheets, baseLogger.Named("repo.sheets"))
		if err != nil {
			baseLogger.Fatal("failed to init sheets repository", zap.Error(err))
		}
	} else {
		baseLogger.Info("google sheets export disabled")
	}

	loc, err := cfg.Reporting.Location()
	if err != nil {
		baseLogger.Fatal("failed to load timezone", zap.Error(err))
	}

	dispatcher := notifications.NewDispatcher(sender, store, baseLogger.Named("svc.notifications"))
	trigger := alerts.NewTrigger(store, store, dispatcher, cfg.Alerts, baseLogger.Named("svc.alerts"))
	ledgerSvc := ledger.NewService(store, store, trigger, cfg.Ledger, baseLogger.Named("svc.ledger"))
	catalogSvc := catalog.NewService(store, baseLogger.Named("svc.catalog"))
	reportingSvc := reporting.NewService(store, sheetsRepo, loc, baseLogger.Named("svc.reporting"))

	engine := router.New(router.Handlers{
		Catalog: handlers.NewCatalogHandler(catalogSvc, baseLogger.Named("handlers.catalog")),
		Stock:   handlers.NewStockHandler(ledgerSvc, baseLogger.Named("handlers.stock")),
		Reports: handlers.NewReportHandler(reportingSvc, trigger, store, baseLogger.Named("handlers.reports")),
	}, baseLogger.Named("router"))

	var exporter scheduler.SummaryExporter
	if sheetsRepo != nil {
		exporter = reportingSvc
	}
	sched := scheduler.NewScheduler(cfg.Reporting, loc, trigger, exporter, baseLogger.Named("scheduler"))
	if err := sched.Start(); err != nil {
		baseLogger.Fatal("failed to start scheduler", zap.Error(err))
	}
	defer sched.Stop()

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      engine,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		baseLogger.Info("server starting", zap.String("port", cfg.Server.Port), zap.String("storage", cfg.Storage.Driver))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			baseLogger.Fatal("http server crashed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	baseLogger.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		baseLogger.Error("graceful shutdown failed", zap.Error(err))
	}
}

func openStorage(ctx context.Context, cfg *config.Config, log *zap.Logger) (storage, error) {
	switch cfg.Storage.Driver {
	case config.StorageMemory:
		log.Warn("using in-memory storage, data is lost on restart")
		return memory.NewStore(), nil
	case config.StorageMongoDB:
		repo, err := mongodb.NewMongoDBRepository(ctx, cfg.MongoDB.URI, cfg.MongoDB.DBName)
		if err != nil {
			return nil, err
		}
		indexCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
		defer cancel()
		if err := repo.EnsureIndexes(indexCtx); err != nil {
			_ = repo.Close(ctx)
			return nil, fmt.Errorf("ensure indexes: %w", err)
		}
		return repo, nil
	default:
		return nil, fmt.Errorf("unsupported storage driver %q", cfg.Storage.Driver)
	}
}
