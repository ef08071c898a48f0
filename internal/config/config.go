// Package config loads the server settings once at startup.
//
// Sources, lowest to highest precedence: defaults, an optional .env file,
// the process environment, command-line flags.
package config

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"io/fs"
	"net"
	"strconv"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

const bytesPerMB = 1024 * 1024

// Config is built once and then only read.
type Config struct {
	Host            string `env:"HOST" envDefault:"0.0.0.0"`
	Port            int    `env:"PORT" envDefault:"8080"`
	UploadDir       string `env:"UPLOAD_DIR" envDefault:"uploads"`
	MaxFileSizeMB   int64  `env:"MAX_FILE_SIZE" envDefault:"50"`
	RefreshInterval int    `env:"REFRESH_INTERVAL" envDefault:"30000"` // milliseconds
	MaxClients      int    `env:"MAX_CLIENTS" envDefault:"256"`
	CleanupRejected bool   `env:"CLEANUP_REJECTED" envDefault:"false"`
	LogLevel        string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat       string `env:"LOG_FORMAT" envDefault:"text"`

	// MaxFileSizeBytes, when positive, overrides MaxFileSizeMB. Not read from the
	// environment; lets callers express a ceiling that is not MB aligned.
	MaxFileSizeBytes int64 `env:"-"`

	ShowHelp bool `env:"-"`
	NoQR     bool `env:"-"`
}

// Load reads .env (if present) and the environment, then applies flags from args
// (without the program name). The result is validated.
func Load(args []string) (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse environment: %w", err)
	}

	if err := cfg.parseFlags(args); err != nil {
		return Config{}, err
	}
	if cfg.ShowHelp {
		return cfg, nil
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// parseFlags overlays command-line flags on cfg; each flag defaults to the value
// already loaded so an absent flag changes nothing.
func (c *Config) parseFlags(args []string) error {
	flags := flag.NewFlagSet("lanshare", flag.ContinueOnError)
	flags.SetOutput(io.Discard)

	flags.BoolVar(&c.ShowHelp, "h", false, "show help information")
	flags.StringVar(&c.Host, "host", c.Host, "interface to bind")
	flags.IntVar(&c.Port, "port", c.Port, "port to listen on")
	flags.StringVar(&c.UploadDir, "dir", c.UploadDir, "directory holding shared files")
	flags.Int64Var(&c.MaxFileSizeMB, "max", c.MaxFileSizeMB, "maximum upload size per file, in MB")
	flags.IntVar(&c.RefreshInterval, "refresh", c.RefreshInterval, "page auto-refresh interval, in milliseconds")
	flags.IntVar(&c.MaxClients, "clients", c.MaxClients, "maximum concurrent requests")
	flags.BoolVar(&c.CleanupRejected, "cleanup", c.CleanupRejected, "remove partial files of rejected uploads")
	flags.StringVar(&c.LogLevel, "log-level", c.LogLevel, "log level: debug, info, warn, error")
	flags.StringVar(&c.LogFormat, "log-format", c.LogFormat, "log format: text, json")
	flags.BoolVar(&c.NoQR, "no-qr", false, "do not print the QR code at startup")

	if err := flags.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			c.ShowHelp = true
			return nil
		}
		return fmt.Errorf("parse flags: %w", err)
	}
	return nil
}

// Validate reports the first invalid setting.
func (c Config) Validate() error {
	switch {
	case c.Port < 1 || c.Port > 65535:
		return fmt.Errorf("invalid port %d", c.Port)
	case c.UploadDir == "":
		return errors.New("upload directory must not be empty")
	case c.MaxFileSizeMB <= 0 && c.MaxFileSizeBytes <= 0:
		return fmt.Errorf("invalid max file size %d MB", c.MaxFileSizeMB)
	case c.RefreshInterval <= 0:
		return fmt.Errorf("invalid refresh interval %d ms", c.RefreshInterval)
	case c.MaxClients <= 0:
		return fmt.Errorf("invalid max clients %d", c.MaxClients)
	}
	return nil
}

// MaxUploadBytes is the per-file ceiling in bytes.
func (c Config) MaxUploadBytes() int64 {
	if c.MaxFileSizeBytes > 0 {
		return c.MaxFileSizeBytes
	}
	return c.MaxFileSizeMB * bytesPerMB
}

// Refresh is the page auto-refresh period.
func (c Config) Refresh() time.Duration {
	return time.Duration(c.RefreshInterval) * time.Millisecond
}

// Addr is the listen address.
func (c Config) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}
