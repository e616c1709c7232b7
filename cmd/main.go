package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/noamk2004/image-to-text/config"
	"github.com/noamk2004/image-to-text/controllers"
	"github.com/noamk2004/image-to-text/routes"
	"github.com/noamk2004/image-to-text/services"
	"github.com/noamk2004/image-to-text/storage"
)

func main() {
	logger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("load configuration", zap.Error(err))
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	kv, err := newKV(ctx, cfg)
	if err != nil {
		logger.Fatal("initialize storage backend", zap.Error(err))
	}

	store := storage.NewMealStore(kv, logger)
	if err := store.Load(ctx); err != nil {
		logger.Fatal("load meal collection", zap.Error(err))
	}

	analyzer := services.NewGeminiService(cfg.GeminiAPIKey, cfg.GeminiModel, cfg.AnalysisTimeout)
	submissions := services.NewSubmissionService(analyzer, store, logger)
	ctrl := controllers.NewMealController(submissions, store, cfg.MaxUploadBytes)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: routes.SetupRouter(ctrl, cfg),
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("starting server",
			zap.String("addr", srv.Addr),
			zap.String("store", cfg.StoreBackend))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-sigCh:
		logger.Info("received shutdown signal")
	case err := <-errCh:
		logger.Error("server error", zap.Error(err))
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown", zap.Error(err))
	}
}

func newKV(ctx context.Context, cfg *config.Config) (storage.KV, error) {
	if cfg.StoreBackend == "s3" {
		return storage.NewS3KV(ctx, cfg.S3Bucket, cfg.S3Region, cfg.S3Prefix)
	}
	return storage.NewFileKV(cfg.DataDir)
}
