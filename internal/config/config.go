package config

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/caarlos0/env/v11"

	"github.com/atomicstack/bimview/internal/app"
)

// Config captures runtime configuration for the application.
type Config struct {
	App      app.Config
	Logging  Logging
	Features Features
	Flags    map[string]string
	Args     []string
}

type Logging struct {
	FilePath string
	Trace    bool
}

type Features struct {
	Verbose bool
}

const envPrefix = "BIMVIEW_"

// envConfig holds the BIMVIEW_* environment values that seed flag defaults.
type envConfig struct {
	Width      int    `env:"WIDTH"`
	Height     int    `env:"HEIGHT"`
	ShowFooter bool   `env:"FOOTER"`
	Verbose    bool   `env:"VERBOSE"`
	Trace      bool   `env:"TRACE"`
	LogFile    string `env:"LOG_FILE"`
	DBPath     string `env:"DB"`
	ChecksPath string `env:"CHECKS"`
	Watch      bool   `env:"WATCH" envDefault:"true"`
	RootMenu   string `env:"ROOT_MENU"`
}

// Load parses configuration from CLI arguments and environment variables.
func Load() (Config, error) {
	return LoadArgs(os.Args[1:], os.Environ())
}

// LoadArgs allows tests to supply specific args/environment.
func LoadArgs(args []string, environ []string) (Config, error) {
	var defaults envConfig
	if err := env.ParseWithOptions(&defaults, env.Options{
		Environment: parseEnv(environ),
		Prefix:      envPrefix,
	}); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}

	fs := flag.NewFlagSet("bimview", flag.ContinueOnError)
	fs.SetOutput(new(strings.Builder))

	width := fs.Int("width", defaults.Width, "desired viewport width in cells (0 uses terminal width)")
	height := fs.Int("height", defaults.Height, "desired viewport height in rows (0 uses terminal height)")
	footer := fs.Bool("footer", defaults.ShowFooter, "enable footer hint row (disabled by default)")
	trace := fs.Bool("trace", defaults.Trace, "enable verbose JSON trace logging")
	verbose := fs.Bool("verbose", defaults.Verbose, "show the session id in the status line")
	logFile := fs.String("log-file", defaults.LogFile, "path to the log file")
	dbPath := fs.String("db", defaults.DBPath, "path to the recent-files database (empty disables history)")
	checksPath := fs.String("checks", defaults.ChecksPath, "path to a YAML checks file (built-in checks when empty)")
	watch := fs.Bool("watch", defaults.Watch, "reload the current model when its file changes on disk")
	rootMenu := fs.String("root-menu", defaults.RootMenu, "open the menu at this node instead of the main menu")

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	if *width < 0 {
		return Config{}, fmt.Errorf("width must be >= 0 (got %d)", *width)
	}
	if *height < 0 {
		return Config{}, fmt.Errorf("height must be >= 0 (got %d)", *height)
	}

	paths := append([]string(nil), fs.Args()...)
	cfg := Config{
		App: app.Config{
			Width:      *width,
			Height:     *height,
			ShowFooter: *footer,
			Verbose:    *verbose,
			RootMenu:   strings.TrimSpace(*rootMenu),
			DBPath:     *dbPath,
			ChecksPath: *checksPath,
			Watch:      *watch,
			Paths:      paths,
		},
		Logging: Logging{
			FilePath: *logFile,
			Trace:    *trace,
		},
		Features: Features{
			Verbose: *verbose,
		},
		Flags: map[string]string{
			"width":    strconv.Itoa(*width),
			"height":   strconv.Itoa(*height),
			"footer":   strconv.FormatBool(*footer),
			"trace":    strconv.FormatBool(*trace),
			"verbose":  strconv.FormatBool(*verbose),
			"logFile":  *logFile,
			"db":       *dbPath,
			"checks":   *checksPath,
			"watch":    strconv.FormatBool(*watch),
			"rootMenu": *rootMenu,
			"paths":    strings.Join(paths, ","),
		},
		Args: append([]string(nil), args...),
	}

	return cfg, nil
}

func parseEnv(environ []string) map[string]string {
	values := make(map[string]string, len(environ))
	for _, entry := range environ {
		if entry == "" {
			continue
		}
		key, value, ok := strings.Cut(entry, "=")
		if !ok {
			continue
		}
		values[key] = value
	}
	return values
}

// MustLoad returns configuration or exits.
func MustLoad() Config {
	cfg, err := Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Configuration error: %v\n", err)
		os.Exit(2)
	}
	return cfg
}

// Validate ensures referenced files exist before the UI starts.
func Validate(cfg Config) error {
	if path := cfg.App.ChecksPath; path != "" {
		info, err := os.Stat(path)
		if err != nil {
			return fmt.Errorf("checks file: %w", err)
		}
		if info.IsDir() {
			return fmt.Errorf("checks file: %s is a directory", path)
		}
	}
	for _, path := range cfg.App.Paths {
		if strings.TrimSpace(path) == "" {
			return errors.New("model path must not be empty")
		}
	}
	return nil
}
