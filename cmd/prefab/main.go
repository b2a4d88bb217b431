// Command prefab evaluates layout scripts and inspects module catalogs
// without starting the editor.
package main

import (
	"context"
	"os"
	"os/signal"

	"github.com/chazu/prefab/pkg/config"
	"github.com/chazu/prefab/pkg/logging"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.New("error", nil).Error("load config", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	root := newRootCmd(cfg, logging.New(cfg.LogLevel, nil))
	if err := root.ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}
