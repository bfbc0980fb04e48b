package imports

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/avelichko/syncpress/app/database"
)

const (
	settingAutoImport      = "image_auto_import"
	settingPostTypes       = "image_import_post_types"
	settingProcessingMode  = "processing_mode"
	settingFirstAsFeatured = "first_image_as_featured"
)

// SettingsStore reads the import configuration from the settings repository
// and can seed absent keys from a YAML file on startup.
type SettingsStore struct {
	settings database.SettingRepository
}

func NewSettingsStore(settings database.SettingRepository) *SettingsStore {
	return &SettingsStore{settings: settings}
}

// ImportConfig assembles the effective configuration. Missing keys fall back
// to defaults, so a fresh database behaves the same as a seeded one.
func (s *SettingsStore) ImportConfig() (Config, error) {
	auto, err := s.settings.Get(settingAutoImport, "enabled")
	if err != nil {
		return Config{}, fmt.Errorf("failed to read %s: %w", settingAutoImport, err)
	}

	postTypes, err := s.settings.Get(settingPostTypes, "post,page")
	if err != nil {
		return Config{}, fmt.Errorf("failed to read %s: %w", settingPostTypes, err)
	}

	mode, err := s.settings.Get(settingProcessingMode, ModeBackground)
	if err != nil {
		return Config{}, fmt.Errorf("failed to read %s: %w", settingProcessingMode, err)
	}
	if mode != ModeBackground && mode != ModeImmediate {
		mode = ModeBackground
	}

	featured, err := s.settings.Get(settingFirstAsFeatured, "off")
	if err != nil {
		return Config{}, fmt.Errorf("failed to read %s: %w", settingFirstAsFeatured, err)
	}

	return Config{
		AutoImport:           auto == "enabled",
		PostTypes:            splitPostTypes(postTypes),
		ProcessingMode:       mode,
		FirstImageAsFeatured: featured == "on",
	}, nil
}

func splitPostTypes(value string) []string {
	parts := strings.Split(value, ",")
	types := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			types = append(types, trimmed)
		}
	}
	return types
}

type settingsFile struct {
	Settings map[string]string `yaml:"settings"`
}

// SeedFromFile loads a YAML settings file and stores keys that are not yet
// present. Existing values are never overwritten, so operator changes made
// through the API survive restarts.
func (s *SettingsStore) SeedFromFile(path string) error {
	if path == "" {
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to read settings file: %w", err)
	}

	var file settingsFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return fmt.Errorf("failed to parse settings file: %w", err)
	}

	for key, value := range file.Settings {
		has, err := s.settings.Has(key)
		if err != nil {
			return fmt.Errorf("failed to check setting %s: %w", key, err)
		}
		if has {
			continue
		}
		if err := s.settings.Set(key, value); err != nil {
			return fmt.Errorf("failed to seed setting %s: %w", key, err)
		}
	}

	return nil
}
