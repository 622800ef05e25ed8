package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"time"

	"go.uber.org/zap"

	"github.com/mamadbah2/inventaire/internal/config"
	"github.com/mamadbah2/inventaire/internal/repository/mongodb"
	"github.com/mamadbah2/inventaire/internal/repository/sheets"
	"github.com/mamadbah2/inventaire/internal/scheduler"
	"github.com/mamadbah2/inventaire/internal/server/handlers"
	"github.com/mamadbah2/inventaire/internal/server/router"
	inventorysvc "github.com/mamadbah2/inventaire/internal/service/inventory"
	"github.com/mamadbah2/inventaire/internal/service/labeling"
	barcodeclient "github.com/mamadbah2/inventaire/pkg/clients/barcode"
	"github.com/mamadbah2/inventaire/pkg/logger"
)

func main() {
	cfg, err := config.Load("")
	if err != nil {
		panic(err)
	}

	baseLogger := logger.Must(logger.New())
	defer func() { _ = baseLogger.Sync() }()

	zap.ReplaceGlobals(baseLogger)

	mongoRepo, err := mongodb.NewMongoDBRepository(context.Background(), cfg.MongoDB.URI, cfg.MongoDB.DBName)
	if err != nil {
		baseLogger.Fatal("failed to init mongodb repository", zap.Error(err))
	}
	defer func() {
		if err := mongoRepo.Close(context.Background()); err != nil {
			baseLogger.Error("failed to close mongodb connection", zap.Error(err))
		}
	}()

	// The Sheets mirror is optional; a nil repository disables it.
	var sheetsRepo sheets.Repository
	if cfg.SheetsEnabled() {
		sheetsRepo, err = sheets.NewGoogleSheetRepository(context.Background(), cfg.Sheets, baseLogger.Named("repo.sheets"))
		if err != nil {
			baseLogger.Fatal("failed to init sheets repository", zap.Error(err))
		}
		baseLogger.Info("google sheets mirror enabled")
	}

	renderer := barcodeclient.NewClient(cfg.Barcode, baseLogger.Named("client.barcode"))
	composer := labeling.NewComposer(baseLogger.Named("svc.labeling"))
	inventorySvc := inventorysvc.NewService(renderer, composer, mongoRepo, cfg.Label.Mode, baseLogger.Named("svc.inventory"))

	inventoryHandler := handlers.NewInventoryHandler(inventorySvc, cfg.Label.Mode, baseLogger.Named("handlers.inventory"))
	engine := router.New(inventoryHandler, baseLogger.Named("router"))

	sched := scheduler.NewScheduler(cfg.Snapshot, inventorySvc, sheetsRepo, baseLogger.Named("scheduler"))
	sched.Start()
	defer sched.Stop()

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      engine,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	go func() {
		baseLogger.Info("server starting",
			zap.String("port", cfg.Server.Port),
			zap.String("label_mode", string(cfg.Label.Mode)))
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
