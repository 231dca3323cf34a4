package main

import (
	"context"
	"embed"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"mtapulse/internal/app"
	"mtapulse/internal/dataprocessing"
)

// Page template and static assets.
//
//go:embed all:frontend/*
var frontendFiles embed.FS

func main() {
	frontendFS, err := fs.Sub(frontendFiles, "frontend")
	if err != nil {
		slog.Error("Frontend embedding failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	application, err := app.NewApplication(frontendFS)
	if err != nil {
		if dataprocessing.IsLoadError(err) {
			slog.Error("Ridership data could not be loaded", slog.String("error", err.Error()))
		} else {
			slog.Error("Failed to initialize application", slog.String("error", err.Error()))
		}
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := application.Run(ctx); err != nil {
		application.Logger.Error("Application error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
