package cfg

import (
	"testing"
)

func TestGetVersion(t *testing.T) {
	if GetVersion() == "" {
		t.Error("GetVersion should never return empty string")
	}
}

func TestConfigFields(t *testing.T) {
	cfg := &Cfg{
		DBPath:       "./data/test.db",
		MediaDir:     "./data/media",
		Port:         "8080",
		BaseUrl:      "https://content.example.com",
		APIAccessKey: "test-key",
		SettingsFile: "./settings.yml",
		ImageOrigin:  "https://images.example.com/api/image/",
		BatchSize:    5,
		TickDelay:    10,
		FetchTimeout: 30,
		WorkerCount:  2,
		UserAgent:    "Test Agent",
		Timezone:     "UTC",
		Debug:        true,
		Version:      "test-version",
	}

	if cfg.DBPath != "./data/test.db" {
		t.Errorf("Expected DB path './data/test.db', got '%s'", cfg.DBPath)
	}
	if cfg.BaseUrl != "https://content.example.com" {
		t.Errorf("Expected base URL 'https://content.example.com', got '%s'", cfg.BaseUrl)
	}
	if cfg.ImageOrigin != "https://images.example.com/api/image/" {
		t.Errorf("Expected image origin 'https://images.example.com/api/image/', got '%s'", cfg.ImageOrigin)
	}
	if cfg.BatchSize != 5 {
		t.Errorf("Expected batch size 5, got %d", cfg.BatchSize)
	}
	if cfg.TickDelay != 10 {
		t.Errorf("Expected tick delay 10, got %d", cfg.TickDelay)
	}
	if cfg.WorkerCount != 2 {
		t.Errorf("Expected worker count 2, got %d", cfg.WorkerCount)
	}
	if cfg.APIAccessKey != "test-key" {
		t.Errorf("Expected API key 'test-key', got '%s'", cfg.APIAccessKey)
	}
	if !cfg.Debug {
		t.Error("Expected debug to be enabled")
	}
}
