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

	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"

	"mahfaza/internal/auth"
	"mahfaza/internal/db"
	"mahfaza/internal/docs"
	"mahfaza/internal/server"
	"mahfaza/internal/storage"
	"mahfaza/internal/store"
	"mahfaza/pkg/types"
)

var serveCommand = &cli.Command{
	Name:   "serve",
	Usage:  "Start the HTTP server",
	Action: serve,
}

func serve(cCtx *cli.Context) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})

	config, err := loadConfig()
	if err != nil {
		return err
	}

	pool, err := db.Connect(ctx, config)
	if err != nil {
		return err
	}
	defer pool.Close()

	userRepo := store.NewUserRepository(pool)
	documentRepo := store.NewDocumentRepository(pool)

	files, err := buildFileStore(config)
	if err != nil {
		return err
	}

	credentials := auth.NewCredentials(userRepo)
	documents := docs.New(documentRepo, files, logger)

	srv, err := server.New(config, logger, credentials, documents)
	if err != nil {
		return err
	}

	go func() {
		logger.WithField("port", config.ServerPort).Infof("server starting http://localhost:%d", config.ServerPort)
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Fatal("server failed")
		}
	}()

	<-ctx.Done()
	logger.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	return srv.Stop(shutdownCtx)
}

func buildFileStore(config *types.Config) (storage.Store, error) {
	switch config.StorageBackend {
	case "s3":
		files, err := storage.NewMinIO(config)
		if err != nil {
			return nil, fmt.Errorf("init s3 storage: %w", err)
		}
		return files, nil
	default:
		files, err := storage.NewDisk(config.UploadDir)
		if err != nil {
			return nil, fmt.Errorf("init disk storage: %w", err)
		}
		return files, nil
	}
}
