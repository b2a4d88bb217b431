package main

import (
	"context"
	"embed"
	"os"

	"github.com/chazu/prefab/pkg/catalog"
	"github.com/chazu/prefab/pkg/config"
	"github.com/chazu/prefab/pkg/design"
	"github.com/chazu/prefab/pkg/logging"
	"github.com/wailsapp/wails/v2"
	"github.com/wailsapp/wails/v2/pkg/options"
	"github.com/wailsapp/wails/v2/pkg/options/assetserver"
)

//go:embed all:frontend/dist
var assets embed.FS

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.New("error", nil).Error("load config", "error", err)
		os.Exit(1)
	}
	log := logging.New(cfg.LogLevel, nil)

	cat := catalog.Defaults()
	if cfg.CatalogPath != "" {
		if cat, err = catalog.LoadFile(cfg.CatalogPath); err != nil {
			log.Error("load catalog", "path", cfg.CatalogPath, "error", err)
			os.Exit(1)
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if cfg.MetricsAddr != "" {
		go func() {
			if err := design.ServeMetrics(ctx, cfg.MetricsAddr, log); err != nil {
				log.Error("metrics", "error", err)
			}
		}()
	}

	app := NewApp(cfg, cat, log)
	err = wails.Run(&options.App{
		Title:       "Prefab",
		Width:       1280,
		Height:      800,
		AssetServer: &assetserver.Options{Assets: assets},
		OnStartup:   app.startup,
		Bind:        []interface{}{app},
	})
	if err != nil {
		log.Error("run", "error", err)
		cancel()
		os.Exit(1)
	}
}
