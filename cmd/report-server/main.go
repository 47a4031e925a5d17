package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"client-report-engine/internal/api"
	"client-report-engine/internal/brandstore"
	"client-report-engine/internal/common/config"
	"client-report-engine/internal/common/logger"
	"client-report-engine/internal/common/observability"
	"client-report-engine/internal/convert"
	"client-report-engine/internal/render"
	"client-report-engine/internal/report"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.New("info", "console").Fatal("config load failed", zap.Error(err))
	}

	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	defer zapLog.Sync()
	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("starting report server",
		zap.String("version", cfg.App.Version),
		zap.String("environment", cfg.App.Environment),
	)

	obs := observability.New(cfg.App.Name)
	defer obs.Shutdown()

	store, err := brandstore.New(cfg.Paths.BrandsFile, cfg.Paths.LogoDir, log)
	if err != nil {
		zapLog.Fatal("brand store init failed", zap.Error(err))
	}

	renderer := render.New(cfg.Paths.TemplateDir, cfg.Paths.OutputDir, log)
	converter := convert.New(cfg.Convert, log)
	generator := report.NewGenerator(store, renderer, converter, obs, log)
	server := api.NewServer(cfg, store, renderer, generator, log)

	httpServer := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      server.Router(),
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	go func() {
		zapLog.Info("listening", zap.String("addr", httpServer.Addr))
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zapLog.Fatal("http server failed", zap.Error(err))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	zapLog.Info("shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(),
		time.Duration(cfg.Server.ShutdownTimeout)*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		zapLog.Error("graceful shutdown failed", zap.Error(err))
	}
}
