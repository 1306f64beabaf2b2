package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"bottender/internal/backup"
	"bottender/internal/config"
	"bottender/internal/database"
	"bottender/internal/logging"
	"bottender/internal/server"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}

	logger := logging.Setup(cfg.LogLevel)

	db, err := database.Open(cfg.Database.Path)
	if err != nil {
		logger.Error("open database", "path", cfg.Database.Path, "error", err)
		os.Exit(1)
	}
	defer db.Close()

	backupMgr := backup.NewManager(backup.Config{
		S3: backup.S3Config{
			Endpoint:  cfg.Backup.Endpoint,
			Bucket:    cfg.Backup.Bucket,
			Region:    cfg.Backup.Region,
			AccessKey: cfg.Backup.AccessKey,
			SecretKey: cfg.Backup.SecretKey,
		},
		DBPath:        cfg.Database.Path,
		Prefix:        cfg.Backup.Prefix,
		Interval:      cfg.Backup.Interval,
		Passphrase:    cfg.Backup.Passphrase,
		RetentionDays: cfg.Backup.RetentionDays,
	}, db, logger.With("component", "backup"))

	srv := server.New(db, server.Config{
		AdminPassword: cfg.Admin.Password,
		CatalogPath:   cfg.Import.CatalogPath,
	}, backupMgr, logger)

	if cfg.Import.LoadOnStartup && cfg.Import.CatalogPath != "" {
		res, err := srv.Importer().ImportFile(cfg.Import.CatalogPath)
		if err != nil {
			logger.Error("load catalog", "path", cfg.Import.CatalogPath, "error", err)
			os.Exit(1)
		}
		logger.Info("catalog loaded", "drinks", res.Drinks, "skipped", res.Skipped)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	backupMgr.Start(ctx)
	defer backupMgr.Stop()

	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      srv.Router(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		logger.Info("server listening", "addr", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")
	srv.Hub().Broadcast("Server is shutting down, see you soon")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown error", "error", err)
	}
}
