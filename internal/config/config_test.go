package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
)

func TestLoadDefaults(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("CONFIG_ENV", "missing")

	cfg, err := Load(nil)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Port != 5001 || cfg.MeshMax != 8 || cfg.Mode != "release" {
		t.Errorf("Unexpected defaults %+v", cfg)
	}
	if cfg.PingPeriod != 54*time.Second {
		t.Errorf("Expected ping period 54s, got %s", cfg.PingPeriod)
	}
	if cfg.RateLimit.Events != 50 || cfg.RateLimit.Interval != time.Second {
		t.Errorf("Unexpected rate limit %+v", cfg.RateLimit)
	}
	if cfg.Forwarding.RTCMinPort != 10000 || cfg.Forwarding.RTCMaxPort != 10100 {
		t.Errorf("Unexpected RTC port range %+v", cfg.Forwarding)
	}
	if len(cfg.Forwarding.Codecs) != 2 {
		t.Fatalf("Expected 2 default codecs, got %d", len(cfg.Forwarding.Codecs))
	}
	if got := cfg.Forwarding.Codecs[1].Parameters["x-google-start-bitrate"]; got != "1000" {
		t.Errorf("Expected VP8 start bitrate 1000, got %q", got)
	}
	if len(cfg.ICEServers) != 1 {
		t.Errorf("Expected default STUN server, got %+v", cfg.ICEServers)
	}
}

func TestLoadFileAndOverrides(t *testing.T) {
	dir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(dir, "config"), 0o755); err != nil {
		t.Fatal(err)
	}
	yaml := []byte("mode: debug\nport: 7000\nmesh_max: 4\nbackpressure: drop\n")
	if err := os.WriteFile(filepath.Join(dir, "config", "config.test.yaml"), yaml, 0o644); err != nil {
		t.Fatal(err)
	}
	t.Chdir(dir)
	t.Setenv("CONFIG_ENV", "test")
	t.Setenv("MESHCALL_MESH_MAX", "6")

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.Int("port", 5001, "")
	if err := flags.Set("port", "7100"); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(flags)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Mode != "debug" || cfg.Backpressure != "drop" {
		t.Errorf("Expected values from file, got mode=%s backpressure=%s", cfg.Mode, cfg.Backpressure)
	}
	if cfg.MeshMax != 6 {
		t.Errorf("Expected env to override mesh_max, got %d", cfg.MeshMax)
	}
	if cfg.Port != 7100 {
		t.Errorf("Expected flag to override port, got %d", cfg.Port)
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("CONFIG_ENV", "missing")
	t.Setenv("MESHCALL_MESH_MAX", "0")

	if _, err := Load(nil); err == nil {
		t.Error("Expected error for mesh_max 0")
	}
}
