package cfg

import (
	"cmp"
	"fmt"
	"time"

	"github.com/jessevdk/go-flags"
)

// Version is set at build time via -ldflags
var Version = "dev"

func GetVersion() string {
	return cmp.Or(Version, "unknown")
}

type rawCfg struct {
	// Storage configuration
	DBPath   string `long:"db-path" env:"DB_PATH" default:"./data/syncpress.db" description:"Path to the SQLite database file"`
	MediaDir string `long:"media-dir" env:"MEDIA_DIR" default:"./data/media" description:"Directory for locally stored media files"`

	// Application configuration
	Port         string `long:"port" env:"PORT" default:"8080" description:"HTTP server port"`
	BaseUrl      string `long:"base-url" env:"BASE_URL" default:"http://localhost:8080" description:"Public base URL for permalinks and media URLs"`
	APIAccessKey string `long:"api-key" env:"API_ACCESS_KEY" description:"Access key for the import REST endpoints (optional)"`
	SettingsFile string `long:"settings-file" env:"SETTINGS_FILE" description:"YAML file with import setting defaults (optional)"`

	// Image import configuration
	ImageOrigin  string `long:"image-origin" env:"IMAGE_ORIGIN" description:"URL prefix of the external image host eligible for import"`
	BatchSize    int    `long:"batch-size" env:"BATCH_SIZE" default:"5" description:"Documents processed per bulk import tick"`
	TickDelay    int    `long:"tick-delay" env:"TICK_DELAY" default:"10" description:"Delay between bulk import ticks in seconds"`
	FetchTimeout int    `long:"fetch-timeout" env:"FETCH_TIMEOUT" default:"30" description:"Timeout for remote image downloads in seconds"`
	WorkerCount  int    `long:"worker-count" env:"WORKER_COUNT" default:"2" description:"Number of background task workers"`

	// Application metadata
	UserAgent string `long:"user-agent" env:"USER_AGENT" default:"SyncPress/1.0" description:"User agent string for HTTP requests"`
	Timezone  string `long:"timezone" env:"TZ" default:"UTC" description:"Timezone for timestamps (e.g., UTC, America/New_York)"`
	Debug     bool   `long:"debug" env:"DEBUG" description:"Enable debug logging"`
}

var globalCfg *Cfg

func Load() (*Cfg, error) {
	var raw rawCfg

	parser := flags.NewParser(&raw, flags.Default)

	if _, err := parser.Parse(); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok {
			if flagsErr.Type == flags.ErrHelp {
				return nil, nil
			}
		}
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}

	cfg := &Cfg{
		DBPath:       raw.DBPath,
		MediaDir:     raw.MediaDir,
		Port:         raw.Port,
		BaseUrl:      raw.BaseUrl,
		APIAccessKey: raw.APIAccessKey,
		SettingsFile: raw.SettingsFile,
		ImageOrigin:  raw.ImageOrigin,
		BatchSize:    raw.BatchSize,
		TickDelay:    raw.TickDelay,
		FetchTimeout: raw.FetchTimeout,
		WorkerCount:  raw.WorkerCount,
		UserAgent:    raw.UserAgent,
		Timezone:     raw.Timezone,
		Debug:        raw.Debug,
		Version:      GetVersion(),
	}

	if err := applyTimezone(cfg.Timezone); err != nil {
		fmt.Printf("Warning: Invalid timezone '%s', using system default: %v\n", cfg.Timezone, err)
	}

	globalCfg = cfg

	return cfg, nil
}

func Get() *Cfg {
	if globalCfg == nil {
		panic("configuration not loaded - call cfg.Load() first")
	}
	return globalCfg
}

func applyTimezone(timezone string) error {
	if timezone != "" {
		if loc, err := time.LoadLocation(timezone); err != nil {
			return err
		} else {
			time.Local = loc
		}
	}
	return nil
}
