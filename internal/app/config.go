package app

import (
	"errors"
	"time"
)

// Config holds all the necessary configuration for an App instance to run.
type Config struct {
	CatalogPath  string // hcl/json catalog files
	AssetsRoot   string // directory holding assets/sigils
	SettingsPath string // engine settings file, optional when DisplayURL is set
	Watch        bool

	DisplayURL         string
	DisplayNamespace   string
	InsecureSkipVerify bool

	SnapshotPath string
	UploadURL    string // pre-signed object URL
	Print        bool

	LogFormat       string
	LogLevel        string
	HealthcheckPort int
	VerseTimeout    time.Duration
}

func NewConfig(cfg Config) (*Config, error) {
	if cfg.CatalogPath == "" {
		return nil, errors.New("CatalogPath is a required configuration field and cannot be empty")
	}
	if cfg.SettingsPath == "" && cfg.DisplayURL == "" {
		return nil, errors.New("either a settings file or a display URL is required to configure the engine")
	}
	if cfg.Watch && cfg.SettingsPath == "" {
		return nil, errors.New("watch requires a settings file")
	}
	if cfg.DisplayNamespace == "" {
		cfg.DisplayNamespace = "/"
	}
	return &cfg, nil
}
