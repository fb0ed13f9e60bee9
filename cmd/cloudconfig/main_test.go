package main

import (
	"path/filepath"
	"testing"
)

func TestStatusConnectAddr(t *testing.T) {
	cases := map[string]string{
		":8080":             "127.0.0.1:8080",
		"0.0.0.0:8080":      "127.0.0.1:8080",
		"[::]:8080":         "127.0.0.1:8080",
		"localhost:9090":    "localhost:9090",
		"10.0.0.5:8080":     "10.0.0.5:8080",
		"no-port-no-parse":  "no-port-no-parse",
	}

	for in, want := range cases {
		if got := statusConnectAddr(in); got != want {
			t.Errorf("statusConnectAddr(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestLoadConfigListenOverride(t *testing.T) {
	t.Setenv("DATABASE_PATH", filepath.Join(t.TempDir(), "test.db"))

	cfg, err := loadConfig("", ":7777")
	if err != nil {
		t.Fatalf("loadConfig failed: %v", err)
	}
	if cfg.ListenAddr != ":7777" {
		t.Errorf("ListenAddr = %q, want ':7777'", cfg.ListenAddr)
	}
}

func TestLoadConfigInvalid(t *testing.T) {
	t.Setenv("MAX_BODY_SIZE_BYTES", "0")

	if _, err := loadConfig("", ""); err == nil {
		t.Error("expected validation error for zero body size")
	}
}
