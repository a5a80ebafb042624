// config.go: settings struct and functions to load and save the herdwatch configuration.
package conf

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/herdwatch/herdwatch-go/internal/errors"
)

// Log rotation types
const (
	RotationDaily  = "daily"
	RotationWeekly = "weekly"
	RotationSize   = "size"
)

// LogConfig defines the configuration for a log file
type LogConfig struct {
	Enabled  bool   // true to enable this log
	Path     string // path to log file
	Rotation string // rotation type: daily, weekly or size
	MaxSize  int64  // max size in bytes for size rotation
}

// MainSettings contains top level application settings
type MainSettings struct {
	Name string    // name of this node, also used as the station name
	Log  LogConfig // main log settings
}

// FirstTestWindow bounds the days-in-milk range that counts as a first test
// after calving.
type FirstTestWindow struct {
	MinDIM int // lower bound, inclusive
	MaxDIM int // upper bound, inclusive
}

// MonitorSettings contains settings for the udder health indicator engine.
type MonitorSettings struct {
	SCCThreshold        float64         // somatic cell count threshold, unit 10^4/ml
	SystemType          string          // herd management system of the herd-master export
	MinOverlap          int             // overlap size below which results carry a warning
	DryOffGestationDays int             // gestation days above which a cow counts as pre-dry-off
	FirstTest           FirstTestWindow // DIM window for first-test prevalence
}

// OutputSettings contains settings for result and sample persistence.
type OutputSettings struct {
	SQLite struct {
		Enabled bool   // true to enable sqlite output
		Path    string // path to sqlite database
	}
	MySQL struct {
		Enabled  bool   // true to enable mysql output
		Username string // username for mysql database
		Password string // password for mysql database
		Database string // database name for mysql database
		Host     string // host for mysql database
		Port     string // port for mysql database
	}
}

// Settings contains all application settings
type Settings struct {
	Debug   bool // true to enable debug mode
	Main    MainSettings
	Monitor MonitorSettings
	Output  OutputSettings
}

var (
	settingsInstance *Settings
	once             sync.Once
	settingsMutex    sync.RWMutex
)

// Load reads the configuration file, applies defaults and environment
// overrides, and validates the result.
func Load() (*Settings, error) {
	settingsMutex.Lock()
	defer settingsMutex.Unlock()

	settings, err := loadSettings()
	if err != nil {
		return nil, err
	}
	settingsInstance = settings
	return settingsInstance, nil
}

func loadSettings() (*Settings, error) {
	setDefaultConfig()

	if err := initViper(); err != nil {
		return nil, err
	}

	settings := &Settings{}
	if err := viper.Unmarshal(settings); err != nil {
		return nil, errors.New(fmt.Errorf("error unmarshaling config: %w", err)).
			Component("conf").
			Category(errors.CategoryConfiguration).
			Build()
	}

	if err := ValidateSettings(settings); err != nil {
		return nil, errors.New(err).
			Component("conf").
			Category(errors.CategoryValidation).
			Build()
	}

	return settings, nil
}

func initViper() error {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")

	configPaths, err := GetDefaultConfigPaths()
	if err != nil {
		return fmt.Errorf("error getting config paths: %w", err)
	}
	for _, path := range configPaths {
		viper.AddConfigPath(path)
	}

	viper.SetEnvPrefix("herdwatch")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("error reading config file: %w", err)
		}
		// No config file is fine, defaults apply.
	}
	return nil
}

// Setting returns the current settings instance, loading them on first use.
// Exits fatally when loading fails, configuration errors are not recoverable.
func Setting() *Settings {
	once.Do(func() {
		if settingsInstance == nil {
			if _, err := Load(); err != nil {
				log.Fatalf("error loading settings: %v", err)
			}
		}
	})

	settingsMutex.RLock()
	defer settingsMutex.RUnlock()
	return settingsInstance
}

// GetDefaultConfigPaths returns the directories searched for config.yaml,
// current working directory first.
func GetDefaultConfigPaths() ([]string, error) {
	paths := []string{"."}
	configDir, err := os.UserConfigDir()
	if err == nil {
		paths = append(paths, filepath.Join(configDir, "herdwatch"))
	}
	return paths, nil
}

// GetBasePath expands a possibly relative directory path and ensures it
// exists. Used for sqlite and log file locations.
func GetBasePath(path string) string {
	if path == "" {
		path = "."
	}
	if !filepath.IsAbs(path) {
		wd, err := os.Getwd()
		if err == nil {
			path = filepath.Join(wd, path)
		}
	}
	if err := os.MkdirAll(path, 0o755); err != nil {
		log.Printf("failed to create directory %s: %v", path, err)
	}
	return path
}

// SaveSettings writes the given settings as YAML to the given path, creating
// parent directories as needed. Used to generate an editable config file.
func SaveSettings(settings *Settings, path string) error {
	data, err := yaml.Marshal(settings)
	if err != nil {
		return errors.New(fmt.Errorf("error marshaling settings: %w", err)).
			Component("conf").
			Category(errors.CategoryConfiguration).
			Build()
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errors.New(err).
			Component("conf").
			Category(errors.CategoryFileIO).
			Context("path", path).
			Build()
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errors.New(err).
			Component("conf").
			Category(errors.CategoryFileIO).
			Context("path", path).
			Build()
	}
	return nil
}
