package main

import (
	"context"
	"fmt"
	"time"

	"owidtrends/internal/api"
	"owidtrends/internal/config"
	"owidtrends/internal/download"
	"owidtrends/internal/engine"

	"github.com/labstack/gommon/log"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}
	cfg.SetupLogging()

	opts, err := cfg.LoadOptions()
	if err != nil {
		log.Fatal(err)
	}

	// The API is live immediately and answers 503 until the index is published.
	h := api.NewHandler(nil, cfg.Groups)
	e := api.NewServer(h, cfg)

	go func() {
		log.Info("BACKGROUND: Starting dataset load...")
		t0 := time.Now()

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
		path, err := resolveDataset(ctx, download.NewFetcher(cfg.SourceURL), cfg)
		cancel()
		if err != nil {
			log.Errorf("BACKGROUND: %v", err)
			return
		}

		idx, err := engine.LoadFile(path, opts)
		if err != nil {
			log.Errorf("BACKGROUND: load failed: %v", err)
			return
		}
		h.SetData(idx)

		log.Infof("BACKGROUND: Load complete in %v. API is fully ready.", time.Since(t0))
	}()

	log.Infof("Server ready on %s (dataset loading in background...)", cfg.ServerAddr)
	e.Logger.Fatal(e.Start(cfg.ServerAddr))
}

// resolveDataset makes sure today's file is present, falling back to the newest
// earlier data_*.csv in the data directory when the download fails.
func resolveDataset(ctx context.Context, f *download.Fetcher, cfg config.Config) (string, error) {
	path := cfg.DataPath()
	if f.Ensure(ctx, path) {
		return path, nil
	}
	if prev, ok := download.Latest(cfg.DataDir); ok {
		log.Warnf("BACKGROUND: download failed, falling back to %s", prev)
		return prev, nil
	}
	return "", fmt.Errorf("download failed and no earlier dataset found in %s", cfg.DataDir)
}
