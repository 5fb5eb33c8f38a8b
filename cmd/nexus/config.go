package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

// settings is the resolved CLI configuration.
type settings struct {
	Port              string
	ConnectBaud       int
	UploadBaud        int
	LogLevel          string
	FirstBlockTimeout time.Duration
	UploadTimeout     time.Duration
}

func defaultSettings() settings {
	return settings{LogLevel: "info"}
}

type fileConfig struct {
	Port              string `toml:"port"`
	ConnectBaud       int    `toml:"connect_baud"`
	UploadBaud        int    `toml:"upload_baud"`
	LogLevel          string `toml:"log_level"`
	FirstBlockTimeout string `toml:"first_block_timeout"`
	UploadTimeout     string `toml:"upload_timeout"`
}

// loadSettings reads a TOML file over the defaults. Keys absent from the
// file keep their default value.
func loadSettings(path string) (settings, error) {
	cfg := defaultSettings()

	var raw fileConfig
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return settings{}, fmt.Errorf("load config: %w", err)
	}

	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return settings{}, fmt.Errorf("load config: unknown key %q", undecoded[0].String())
	}

	if meta.IsDefined("port") {
		cfg.Port = strings.TrimSpace(raw.Port)
	}

	if meta.IsDefined("connect_baud") {
		cfg.ConnectBaud = raw.ConnectBaud
	}

	if meta.IsDefined("upload_baud") {
		cfg.UploadBaud = raw.UploadBaud
	}

	if meta.IsDefined("log_level") {
		cfg.LogLevel = strings.TrimSpace(raw.LogLevel)
	}

	if meta.IsDefined("first_block_timeout") {
		d, err := time.ParseDuration(strings.TrimSpace(raw.FirstBlockTimeout))
		if err != nil {
			return settings{}, fmt.Errorf("parse first_block_timeout: %w", err)
		}
		cfg.FirstBlockTimeout = d
	}

	if meta.IsDefined("upload_timeout") {
		d, err := time.ParseDuration(strings.TrimSpace(raw.UploadTimeout))
		if err != nil {
			return settings{}, fmt.Errorf("parse upload_timeout: %w", err)
		}
		cfg.UploadTimeout = d
	}

	return cfg, cfg.validate()
}

// override applies command-line values. Zero values mean the flag was not given.
func (s *settings) override(port string, connectBaud, uploadBaud int, logLevel string) {
	if port != "" {
		s.Port = port
	}
	if connectBaud != 0 {
		s.ConnectBaud = connectBaud
	}
	if uploadBaud != 0 {
		s.UploadBaud = uploadBaud
	}
	if logLevel != "" {
		s.LogLevel = logLevel
	}
}

func (s settings) validate() error {
	if s.ConnectBaud < 0 {
		return fmt.Errorf("connect baud rate must not be negative, got %d", s.ConnectBaud)
	}
	if s.UploadBaud < 0 {
		return fmt.Errorf("upload baud rate must not be negative, got %d", s.UploadBaud)
	}
	if s.FirstBlockTimeout < 0 || s.UploadTimeout < 0 {
		return fmt.Errorf("timeouts must not be negative")
	}
	return nil
}
