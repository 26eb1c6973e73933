package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"owidtrends/internal/engine"

	"github.com/labstack/gommon/log"
)

func TestDefault(t *testing.T) {
	day := time.Date(2020, 10, 3, 15, 0, 0, 0, time.UTC)
	cfg := Default(day)

	if cfg.FileName != "data_2020-10-03.csv" {
		t.Errorf("Unexpected file name %s", cfg.FileName)
	}
	if cfg.SourceURL != DefaultSourceURL {
		t.Errorf("Unexpected URL %s", cfg.SourceURL)
	}
	if len(cfg.Groups["OECD"]) != 37 {
		t.Errorf("Expected 37 OECD countries, got %d", len(cfg.Groups["OECD"]))
	}
	if cfg.DataPath() != "data_2020-10-03.csv" {
		t.Errorf("Unexpected data path %s", cfg.DataPath())
	}
}

func TestFromEnv(t *testing.T) {
	dir := t.TempDir()
	groupsPath := filepath.Join(dir, "groups.csv")
	if err := os.WriteFile(groupsPath, []byte("group,country\nLevant,Israel\nLevant,Lebanon\nOECD,Israel\n"), 0644); err != nil {
		t.Fatal(err)
	}

	t.Setenv("OWID_DATA_DIR", dir)
	t.Setenv("OWID_FILE", "owid.csv")
	t.Setenv("OWID_ADDR", ":9090")
	t.Setenv("OWID_RATE_LIMIT", "5")
	t.Setenv("OWID_DUPLICATES", "merge")
	t.Setenv("OWID_GROUPS_FILE", groupsPath)

	cfg, err := FromEnv(Default(time.Now()))
	if err != nil {
		t.Fatal(err)
	}

	if cfg.DataPath() != filepath.Join(dir, "owid.csv") {
		t.Errorf("Unexpected data path %s", cfg.DataPath())
	}
	if cfg.ServerAddr != ":9090" || cfg.RateLimit != 5 {
		t.Errorf("Overrides not applied: %+v", cfg)
	}
	if got := cfg.Groups["Levant"]; len(got) != 2 || got[1] != "Lebanon" {
		t.Errorf("Levant group: %v", got)
	}
	if len(cfg.Groups["OECD"]) != 37 {
		t.Errorf("Merging an existing member must not duplicate it, got %d", len(cfg.Groups["OECD"]))
	}

	opts, err := cfg.LoadOptions()
	if err != nil {
		t.Fatal(err)
	}
	if opts.Duplicates != engine.MergeFields || opts.CountryColumn != 2 || opts.DateColumn != 3 {
		t.Errorf("Unexpected load options %+v", opts)
	}
}

func TestFromEnvInvalidRateLimit(t *testing.T) {
	t.Setenv("OWID_RATE_LIMIT", "fast")
	if _, err := FromEnv(Default(time.Now())); err == nil {
		t.Error("Expected error for non-numeric rate limit")
	}
}

func TestLevel(t *testing.T) {
	cfg := Config{LogLevel: "DEBUG"}
	if cfg.Level() != log.DEBUG {
		t.Errorf("Expected DEBUG, got %v", cfg.Level())
	}
	cfg.LogLevel = "bogus"
	if cfg.Level() != log.INFO {
		t.Errorf("Expected INFO fallback, got %v", cfg.Level())
	}
}

func TestParseGroups(t *testing.T) {
	groups, err := ParseGroups(strings.NewReader("country,group\nIsrael,Levant\n,Levant\nJapan,Asia\n"))
	if err != nil {
		t.Fatal(err)
	}
	if names := groups.Names(); len(names) != 2 || names[0] != "Asia" {
		t.Errorf("Unexpected group names %v", names)
	}
	if members, _ := groups.Lookup("Levant"); len(members) != 1 {
		t.Errorf("Blank country rows must be skipped, got %v", members)
	}
	if _, err := groups.Lookup("Nordics"); err == nil {
		t.Error("Expected unknown group error")
	}

	empty, err := ParseGroups(strings.NewReader(""))
	if err != nil || len(empty) != 0 {
		t.Errorf("Empty file: %v, %v", empty, err)
	}
}

func TestDefaultGroupsIsCopy(t *testing.T) {
	g := DefaultGroups()
	g["OECD"][0] = "Atlantis"
	if OECD[0] != "Israel" {
		t.Error("DefaultGroups must not alias the OECD list")
	}
}
