package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"owidtrends/internal/config"
	"owidtrends/internal/download"
)

func TestResolveDatasetFallsBack(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	dir := t.TempDir()
	prev := filepath.Join(dir, "data_2020-10-01.csv")
	if err := os.WriteFile(prev, []byte("iso,continent,location,date\n"), 0644); err != nil {
		t.Fatal(err)
	}

	cfg := config.Default(time.Date(2020, 10, 3, 0, 0, 0, 0, time.UTC))
	cfg.DataDir = dir

	got, err := resolveDataset(context.Background(), download.NewFetcher(srv.URL), cfg)
	if err != nil {
		t.Fatal(err)
	}
	if got != prev {
		t.Errorf("Expected fallback to %s, got %s", prev, got)
	}
}

func TestResolveDatasetNothingAvailable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	cfg := config.Default(time.Now())
	cfg.DataDir = t.TempDir()

	if _, err := resolveDataset(context.Background(), download.NewFetcher(srv.URL), cfg); err == nil {
		t.Error("Expected an error when no dataset exists")
	}
}
