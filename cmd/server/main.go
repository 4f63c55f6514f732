package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"time"

	"go.uber.org/zap"

	"github.com/bloemp/stockreport/internal/config"
	"github.com/bloemp/stockreport/internal/repository/mongodb"
	"github.com/bloemp/stockreport/internal/repository/rediscache"
	"github.com/bloemp/stockreport/internal/repository/sheets"
	"github.com/bloemp/stockreport/internal/scheduler"
	"github.com/bloemp/stockreport/internal/server/handlers"
	"github.com/bloemp/stockreport/internal/server/router"
	exportsvc "github.com/bloemp/stockreport/internal/service/export"
	reportsvc "github.com/bloemp/stockreport/internal/service/report"
	"github.com/bloemp/stockreport/pkg/clients/media"
	"github.com/bloemp/stockreport/pkg/logger"
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

	var reportCache rediscache.Cache
	if cfg.Redis.Enabled() {
		reportCache = rediscache.New(cfg.Redis)
		baseLogger.Info("report cache enabled", zap.String("addr", cfg.Redis.Addr))
	} else {
		baseLogger.Warn("redis address missing, report caching disabled")
	}

	var mediaClient media.Client
	if cfg.Media.Enabled() {
		mediaClient = media.NewClient(cfg.Media)
		baseLogger.Info("media client enabled", zap.String("base_url", cfg.Media.BaseURL))
	} else {
		baseLogger.Warn("media base url missing, reports render without images")
	}

	renderer, err := reportsvc.NewRenderer(reportsvc.FormatContext{DateLayout: cfg.Reporting.DateLayout})
	if err != nil {
		baseLogger.Fatal("failed to build report renderer", zap.Error(err))
	}

	reportService := reportsvc.NewService(mongoRepo, reportCache, mediaClient, renderer, baseLogger.Named("svc.report"))

	var exportService *exportsvc.Service
	if cfg.Sheets.Enabled() {
		sheetsRepo, err := sheets.NewGoogleSheetRepository(context.Background(), cfg.Sheets, baseLogger.Named("repo.sheets"))
		if err != nil {
			baseLogger.Fatal("failed to init sheets repository", zap.Error(err))
		}
		exportService = exportsvc.NewService(sheetsRepo, baseLogger.Named("svc.export"))
		baseLogger.Info("sheets export enabled")
	} else {
		baseLogger.Warn("sheets credentials missing, QA export disabled")
	}

	reportHandler := handlers.NewReportHandler(reportService, baseLogger.Named("handlers.report"))
	engine := router.New(reportHandler, baseLogger.Named("router"))

	sched := scheduler.NewScheduler(cfg.Reporting, reportService, exportService, mongoRepo, baseLogger.Named("scheduler"))
	sched.Start()
	defer sched.Stop()

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      engine,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	go func() {
		baseLogger.Info("server starting", zap.String("port", cfg.Server.Port))
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
