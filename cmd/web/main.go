package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"dreinsights/internal/app"
)

func main() {
	var (
		host = flag.String("host", "", "bind address (overrides config)")
		port = flag.Int("port", 0, "listen port (overrides config)")
	)
	flag.Parse()

	application, err := app.NewApplication(app.Overrides{Host: *host, Port: *port})
	if err != nil {
		slog.Error("failed to initialize application", slog.String("error", err.Error()))
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := application.Run(ctx); err != nil {
		slog.Error("application error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
