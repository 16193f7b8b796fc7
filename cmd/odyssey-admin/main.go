// Command odyssey-admin is a terminal console for the admin API.
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/odyssey-erp/odyssey-admin/internal/app"
	"github.com/odyssey-erp/odyssey-admin/internal/console"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping console startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))

	env := &environment{
		client:    console.NewClient(cfg.ConsoleAPIURL, cfg.ConsoleRequestTimeout),
		redisAddr: cfg.RedisAddr,
		logger:    logger,
		out:       os.Stdout,
	}
	if err := run(ctx, env, os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

type environment struct {
	client       *console.Client
	operatorRole int64
	redisAddr    string
	logger       *slog.Logger
	out          io.Writer
}

const usage = `usage: odyssey-admin [-as NAME] [-as-role ID] <command> [flags]

commands:
  users              list users
  roles              list roles
  permissions        list role permissions (-role N filters)
  role-create        create a role (-name, -inactive)
  role-update        update a role (-id; only the given -name, -inactive change)
  role-delete        delete a role (-id)
  permission-create  create a permission (-role, -main, -module, -view, -create, -update, -delete)
  permission-update  update a permission (-id; only the given permission-create flags change)
  permission-delete  delete a permission (-id)
  dashboard          show metrics and charts
  jobs               queue helpers: jobs stats | jobs warmup
`
