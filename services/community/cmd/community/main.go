package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"tfdcommunity/internal/util"
	"tfdcommunity/pkg/storage"
	"tfdcommunity/services/community/internal/app"
	"tfdcommunity/services/community/internal/config"
	"tfdcommunity/services/community/internal/security"
	"tfdcommunity/services/community/internal/server"
)

func main() {
	cfg, err := config.Load(config.PathFromEnv())
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	presignTTL, err := config.ParsePresignTTL(cfg.ObjectStore.PresignTTL)
	if err != nil {
		log.Fatalf("failed to parse presign TTL: %v", err)
	}
	trustedProxies, err := util.NewTrustedProxies(cfg.TrustedProxies)
	if err != nil {
		log.Fatalf("failed to parse trusted proxies: %v", err)
	}

	logger := util.InitLogger(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	appCore, err := app.New(app.Config{
		DatabaseURL: cfg.DatabaseURL,
		JWTSecret:   cfg.JWTSecretKey,
	})
	if err != nil {
		log.Fatalf("failed to init app: %v", err)
	}
	defer func() {
		if err := appCore.Close(); err != nil {
			logger.Warn("store close failed", "err", err)
		}
	}()

	alerter := security.NewAuditAlerter(cfg.RedisAddr, cfg.RedisPassword, "")
	defer alerter.Close()

	var objects storage.ObjectStore
	if cfg.ObjectStore.Endpoint != "" {
		minioStore, err := storage.NewMinioStore(ctx, storage.MinioConfig{
			Endpoint:  cfg.ObjectStore.Endpoint,
			AccessKey: cfg.ObjectStore.AccessKey,
			SecretKey: cfg.ObjectStore.SecretKey,
			Bucket:    cfg.ObjectStore.Bucket,
			UseSSL:    cfg.ObjectStore.UseSSL,
		})
		if err != nil {
			log.Fatalf("failed to init object store: %v", err)
		}
		objects = minioStore
	} else {
		logger.Info("object store not configured, image uploads disabled")
	}

	httpServer := server.New(server.Config{
		App:            appCore,
		Alerter:        alerter,
		CORSOrigins:    cfg.CORSOrigins,
		TrustedProxies: trustedProxies,
		Objects:        objects,
		UploadMaxBytes: cfg.UploadMaxBytes,
		PresignTTL:     presignTTL,
	})

	addr := ":" + cfg.Port
	srv := &http.Server{
		Addr:              addr,
		Handler:           httpServer.Router(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		slog.Info("community server listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	if err := g.Wait(); err != nil {
		logger.Error("server error", "err", err)
	}
	slog.Info("community server stopped")
}
