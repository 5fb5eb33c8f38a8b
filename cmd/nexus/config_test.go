package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "nexus.toml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadSettingsDefaultsAndOverrides(t *testing.T) {
	path := writeConfig(t, `
port = " /dev/ttyUSB0 "
connect_baud = 115200
upload_baud = 921600
log_level = "debug"
first_block_timeout = "3s"
upload_timeout = "750ms"
`)

	cfg, err := loadSettings(path)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.Port != "/dev/ttyUSB0" {
		t.Fatalf("unexpected port: %q", cfg.Port)
	}
	if cfg.ConnectBaud != 115200 {
		t.Fatalf("unexpected connect baud: %d", cfg.ConnectBaud)
	}
	if cfg.UploadBaud != 921600 {
		t.Fatalf("unexpected upload baud: %d", cfg.UploadBaud)
	}
	if cfg.LogLevel != "debug" {
		t.Fatalf("unexpected log level: %q", cfg.LogLevel)
	}
	if cfg.FirstBlockTimeout != 3*time.Second {
		t.Fatalf("unexpected first block timeout: %v", cfg.FirstBlockTimeout)
	}
	if cfg.UploadTimeout != 750*time.Millisecond {
		t.Fatalf("unexpected upload timeout: %v", cfg.UploadTimeout)
	}
}

func TestLoadSettingsPartialKeepsDefaults(t *testing.T) {
	path := writeConfig(t, `upload_baud = 460800`)

	cfg, err := loadSettings(path)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	want := defaultSettings()
	want.UploadBaud = 460800
	if cfg != want {
		t.Fatalf("unexpected settings: %+v", cfg)
	}
}

func TestLoadSettingsErrors(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr string
	}{
		{"bad duration", `upload_timeout = "soon"`, "parse upload_timeout"},
		{"bad first block duration", `first_block_timeout = "3"`, "parse first_block_timeout"},
		{"unknown key", `baud = 9600`, `unknown key "baud"`},
		{"negative baud", `connect_baud = -1`, "must not be negative"},
		{"negative timeout", `upload_timeout = "-1s"`, "must not be negative"},
		{"malformed", `port = `, "load config"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := loadSettings(writeConfig(t, tt.body))
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("error %q does not contain %q", err, tt.wantErr)
			}
		})
	}
}

func TestLoadSettingsMissingFile(t *testing.T) {
	if _, err := loadSettings(filepath.Join(t.TempDir(), "missing.toml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestSettingsOverride(t *testing.T) {
	cfg := settings{Port: "/dev/ttyUSB0", ConnectBaud: 9600, UploadBaud: 115200, LogLevel: "warn"}

	cfg.override("", 0, 921600, "")
	if cfg.Port != "/dev/ttyUSB0" || cfg.ConnectBaud != 9600 || cfg.LogLevel != "warn" {
		t.Fatalf("unset flags changed settings: %+v", cfg)
	}
	if cfg.UploadBaud != 921600 {
		t.Fatalf("unexpected upload baud: %d", cfg.UploadBaud)
	}

	cfg.override("/dev/ttyACM0", 57600, 0, "debug")
	if cfg.Port != "/dev/ttyACM0" || cfg.ConnectBaud != 57600 || cfg.LogLevel != "debug" {
		t.Fatalf("flags did not override: %+v", cfg)
	}
}
