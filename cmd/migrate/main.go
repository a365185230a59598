package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/eapdesk/eapdesk/internal/app"
	"github.com/eapdesk/eapdesk/internal/platform/db"
)

func main() {
	flag.Usage = func() {
		fmt.Fprintln(flag.CommandLine.Output(), "usage: migrate [up|down|status]")
	}
	flag.Parse()
	cmd := flag.Arg(0)
	if cmd == "" {
		cmd = "up"
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	_ = godotenv.Load()
	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}
	logger := app.NewLogger(cfg)

	pool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect database", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	switch cmd {
	case "up":
		err = db.Migrate(ctx, pool)
	case "down":
		err = db.Rollback(ctx, pool)
	case "status":
		err = db.MigrationStatus(ctx, pool)
	default:
		flag.Usage()
		pool.Close()
		os.Exit(2)
	}
	if err != nil {
		logger.Error("migrate", slog.String("command", cmd), slog.Any("error", err))
		pool.Close()
		os.Exit(1)
	}
	logger.Info("migrate done", slog.String("command", cmd))
}
