package cli

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/spf13/cobra"

	"github.com/vk/prayerclock/internal/app"
)

// ExitError is a custom error type that includes a specific exit code.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

// defaults are read from the environment; flags override them.
type defaults struct {
	Catalog         string        `env:"PRAYERCLOCK_CATALOG"              envDefault:"data/catalog"`
	Assets          string        `env:"PRAYERCLOCK_ASSETS"               envDefault:"data"`
	Settings        string        `env:"PRAYERCLOCK_SETTINGS"`
	Watch           bool          `env:"PRAYERCLOCK_WATCH"`
	DisplayURL      string        `env:"PRAYERCLOCK_DISPLAY_URL"`
	Namespace       string        `env:"PRAYERCLOCK_DISPLAY_NAMESPACE"    envDefault:"/"`
	Insecure        bool          `env:"PRAYERCLOCK_INSECURE_SKIP_VERIFY"`
	SnapshotFile    string        `env:"PRAYERCLOCK_SNAPSHOT_FILE"`
	UploadURL       string        `env:"PRAYERCLOCK_UPLOAD_URL"`
	Print           bool          `env:"PRAYERCLOCK_PRINT"`
	HealthcheckPort int           `env:"PRAYERCLOCK_HEALTHCHECK_PORT"`
	LogFormat       string        `env:"PRAYERCLOCK_LOG_FORMAT"           envDefault:"json"`
	LogLevel        string        `env:"PRAYERCLOCK_LOG_LEVEL"            envDefault:"info"`
	VerseTimeout    time.Duration `env:"PRAYERCLOCK_VERSE_TIMEOUT"        envDefault:"10s"`
}

// Parse processes command-line arguments. It returns a populated Config,
// a boolean indicating if the program should exit cleanly, or an ExitError.
func Parse(args []string, output io.Writer) (*app.Config, bool, error) {
	slog.Debug("CLI parser started.")
	var d defaults
	if err := env.Parse(&d); err != nil {
		return nil, false, &ExitError{Code: 2, Message: fmt.Sprintf("parse env: %v", err)}
	}

	var (
		config *app.Config
		ran    bool
	)
	cmd := &cobra.Command{
		Use:   "prayerclock [SETTINGS_FILE]",
		Short: "Planetary-hours engine feeding a prayer clock display",
		Long: `PrayerClock computes the current planetary hour for a location and
publishes a snapshot of it, with focus-area content and citations, to a
display over socket.io, to a file, or to the console.

Every flag can also be set through the PRAYERCLOCK_* environment variable
named after it.`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			ran = true
			if len(args) == 1 {
				d.Settings = args[0]
			}
			if d.Settings == "" && d.DisplayURL == "" {
				slog.Debug("No settings source provided, printing usage and exiting.")
				return cmd.Help()
			}

			logFormat := strings.ToLower(d.LogFormat)
			if logFormat != "text" && logFormat != "json" {
				return errors.New("invalid log-format: must be 'text' or 'json'")
			}
			logLevel := strings.ToLower(d.LogLevel)
			switch logLevel {
			case "debug", "info", "warn", "error":
				// valid
			default:
				return errors.New("invalid log-level: must be 'debug', 'info', 'warn', or 'error'")
			}

			var err error
			config, err = app.NewConfig(app.Config{
				CatalogPath:        d.Catalog,
				AssetsRoot:         d.Assets,
				SettingsPath:       d.Settings,
				Watch:              d.Watch,
				DisplayURL:         d.DisplayURL,
				DisplayNamespace:   d.Namespace,
				InsecureSkipVerify: d.Insecure,
				SnapshotPath:       d.SnapshotFile,
				UploadURL:          d.UploadURL,
				Print:              d.Print,
				LogFormat:          logFormat,
				LogLevel:           logLevel,
				HealthcheckPort:    d.HealthcheckPort,
				VerseTimeout:       d.VerseTimeout,
			})
			return err
		},
	}
	// A nil slice would make cobra fall back to os.Args.
	cmd.SetArgs(append([]string{}, args...))
	cmd.SetOut(output)
	cmd.SetErr(output)

	f := cmd.Flags()
	f.StringVarP(&d.Catalog, "catalog", "c", d.Catalog, "Path to the catalog file or directory (planets, weekdays, focus packs, sigils).")
	f.StringVar(&d.Assets, "assets", d.Assets, "Directory containing assets/sigils.")
	f.StringVarP(&d.Settings, "settings", "s", d.Settings, "Engine settings file (.hcl or .json).")
	f.BoolVarP(&d.Watch, "watch", "w", d.Watch, "Re-apply the settings file whenever it changes.")
	f.StringVar(&d.DisplayURL, "display-url", d.DisplayURL, "socket.io URL of the display. Settings sent by the display reconfigure the engine.")
	f.StringVar(&d.Namespace, "display-namespace", d.Namespace, "socket.io namespace of the display.")
	f.BoolVar(&d.Insecure, "insecure-skip-verify", d.Insecure, "Skip TLS certificate verification for the display.")
	f.StringVar(&d.SnapshotFile, "snapshot-file", d.SnapshotFile, "Write every snapshot to this JSON file.")
	f.StringVar(&d.UploadURL, "upload-url", d.UploadURL, "PUT every snapshot to this pre-signed object URL.")
	f.BoolVarP(&d.Print, "print", "p", d.Print, "Print every snapshot to stdout.")
	f.IntVar(&d.HealthcheckPort, "healthcheck-port", d.HealthcheckPort, "Port for the HTTP health check server. 0 is disabled.")
	f.StringVar(&d.LogFormat, "log-format", d.LogFormat, "Log output format. Options: 'text' or 'json'.")
	f.StringVar(&d.LogLevel, "log-level", d.LogLevel, "Set the logging level. Options: 'debug', 'info', 'warn', 'error'.")
	f.DurationVar(&d.VerseTimeout, "verse-timeout", d.VerseTimeout, "Timeout for a single verse service lookup.")

	if err := cmd.Execute(); err != nil {
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}
	if !ran || config == nil {
		return nil, true, nil
	}

	slog.Debug("CLI parser finished successfully.", "config", config)
	return config, false, nil
}
