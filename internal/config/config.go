package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"owidtrends/internal/engine"

	"github.com/joho/godotenv"
	"github.com/labstack/gommon/log"
)

const DefaultSourceURL = "https://covid.ourworldindata.org/data/owid-covid-data.csv"

// Config is built once at startup and passed by value.
type Config struct {
	SourceURL  string
	DataDir    string
	FileName   string
	ServerAddr string
	LogLevel   string
	RateLimit  float64
	GroupsFile string
	Duplicates string
	Groups     Groups
}

// DailyFileName is the name a download made on day t is saved under.
func DailyFileName(t time.Time) string {
	return "data_" + t.Format(engine.DateLayout) + ".csv"
}

func Default(today time.Time) Config {
	return Config{
		SourceURL:  DefaultSourceURL,
		DataDir:    ".",
		FileName:   DailyFileName(today),
		ServerAddr: ":8080",
		LogLevel:   "info",
		RateLimit:  20,
		Duplicates: "overwrite",
		Groups:     DefaultGroups(),
	}
}

// Load reads an optional .env file, then applies OWID_* environment overrides.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Debugf("No .env file found or error loading it: %v", err)
	}
	return FromEnv(Default(time.Now()))
}

// FromEnv applies OWID_* environment variables on top of cfg.
func FromEnv(cfg Config) (Config, error) {
	if v := os.Getenv("OWID_SOURCE_URL"); v != "" {
		cfg.SourceURL = v
	}
	if v := os.Getenv("OWID_DATA_DIR"); v != "" {
		cfg.DataDir = v
	}
	if v := os.Getenv("OWID_FILE"); v != "" {
		cfg.FileName = v
	}
	if v := os.Getenv("OWID_ADDR"); v != "" {
		cfg.ServerAddr = v
	}
	if v := os.Getenv("OWID_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv("OWID_DUPLICATES"); v != "" {
		cfg.Duplicates = v
	}
	if v := os.Getenv("OWID_RATE_LIMIT"); v != "" {
		rl, err := strconv.ParseFloat(v, 64)
		if err != nil || rl <= 0 {
			return cfg, fmt.Errorf("invalid OWID_RATE_LIMIT %q", v)
		}
		cfg.RateLimit = rl
	}
	if v := os.Getenv("OWID_GROUPS_FILE"); v != "" {
		cfg.GroupsFile = v
	}

	if cfg.GroupsFile != "" {
		extra, err := LoadGroupsFile(cfg.GroupsFile)
		if err != nil {
			return cfg, err
		}
		cfg.Groups = cfg.Groups.Merge(extra)
	}
	return cfg, nil
}

// DataPath is where the dataset file is read from and downloaded to.
func (c Config) DataPath() string {
	return filepath.Join(c.DataDir, c.FileName)
}

func (c Config) LoadOptions() (engine.LoadOptions, error) {
	opts := engine.DefaultLoadOptions()
	p, err := engine.ParseDuplicatePolicy(c.Duplicates)
	if err != nil {
		return opts, err
	}
	opts.Duplicates = p
	return opts, nil
}

// Level maps LogLevel onto a gommon level, defaulting to INFO.
func (c Config) Level() log.Lvl {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return log.DEBUG
	case "warn", "warning":
		return log.WARN
	case "error":
		return log.ERROR
	case "off":
		return log.OFF
	default:
		return log.INFO
	}
}

// SetupLogging configures the package-level logger. Logs go to stderr so
// command output stays machine readable.
func (c Config) SetupLogging() {
	log.SetOutput(os.Stderr)
	log.SetLevel(c.Level())
	log.SetHeader("${time_rfc3339} ${level}")
}
