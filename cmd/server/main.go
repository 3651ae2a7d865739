package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fishingindustry/catalog/app/config"
	"github.com/fishingindustry/catalog/app/database"
	"github.com/fishingindustry/catalog/app/fish"
	"github.com/fishingindustry/catalog/app/server"
	"github.com/fishingindustry/catalog/app/uploads"
	"github.com/fishingindustry/catalog/app/vessels"
	"github.com/fishingindustry/catalog/app/zones"
	"github.com/fishingindustry/catalog/models"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	db, err := database.Open(cfg)
	if err != nil {
		logger.Error("failed to open database", "driver", cfg.DBDriver, "error", err)
		os.Exit(1)
	}
	defer database.Close(db)

	store := uploads.NewStore(cfg.UploadsRoot, logger)
	handlers := server.Handlers{
		Fish:    fish.NewFishHandler(models.NewFishTypesRepository(db), store, logger),
		Zones:   zones.NewZoneHandler(models.NewFishingZonesRepository(db), store, logger),
		Vessels: vessels.NewVesselHandler(models.NewVesselsRepository(db), store, logger),
	}
	router := server.NewRouter(handlers, server.Options{
		AdminToken:      cfg.AdminToken,
		UploadsRoot:     cfg.UploadsRoot,
		MaxRequestBytes: cfg.MaxRequestBytes,
	}, logger)

	srv := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		ErrorLog:     slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		logger.Info("starting server", "addr", cfg.HTTPAddr, "driver", cfg.DBDriver)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server stopped", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", "error", err)
	}
}
