package config

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := load(t.TempDir())
	if err != nil {
		t.Fatalf("load() error = %v", err)
	}

	if cfg.Endpoint != "http://localhost:3000" {
		t.Errorf("Endpoint = %q", cfg.Endpoint)
	}
	if cfg.Player.Command != "mpv" {
		t.Errorf("Player.Command = %q", cfg.Player.Command)
	}
	if want := []string{"--no-terminal", "--force-window=yes", "{url}"}; !reflect.DeepEqual(cfg.Player.Args, want) {
		t.Errorf("Player.Args = %v, want %v", cfg.Player.Args, want)
	}
	if cfg.RefreshInterval != 0 {
		t.Errorf("RefreshInterval = %d", cfg.RefreshInterval)
	}
	if cfg.ListenAddr != "127.0.0.1:7451" {
		t.Errorf("ListenAddr = %q", cfg.ListenAddr)
	}
	if cfg.HTTP.Timeout != 10 || cfg.HTTP.Retries != 3 {
		t.Errorf("HTTP = %+v", cfg.HTTP)
	}
	if cfg.Cache.Path != "" || cfg.Cache.MaxAge != 24 {
		t.Errorf("Cache = %+v", cfg.Cache)
	}
	if cfg.OutputFormat != "{{.Index}}. {{.Title}}" {
		t.Errorf("OutputFormat = %q", cfg.OutputFormat)
	}
}

func TestLoad_File(t *testing.T) {
	dir := t.TempDir()
	content := `endpoint: https://player.example.org
refresh_interval: 30
boards:
  wsg: Worksafe GIF
player:
  command: vlc
  args: ["--play-and-exit", "{url}"]
http:
  retries: 5
`
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(content), 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	cfg, err := load(dir)
	if err != nil {
		t.Fatalf("load() error = %v", err)
	}

	if cfg.Endpoint != "https://player.example.org" {
		t.Errorf("Endpoint = %q", cfg.Endpoint)
	}
	if cfg.RefreshInterval != 30 {
		t.Errorf("RefreshInterval = %d", cfg.RefreshInterval)
	}
	if cfg.Boards["wsg"] != "Worksafe GIF" {
		t.Errorf("Boards = %v", cfg.Boards)
	}
	if cfg.Player.Command != "vlc" || !reflect.DeepEqual(cfg.Player.Args, []string{"--play-and-exit", "{url}"}) {
		t.Errorf("Player = %+v", cfg.Player)
	}
	if cfg.HTTP.Retries != 5 {
		t.Errorf("HTTP.Retries = %d", cfg.HTTP.Retries)
	}
	// Unset keys keep their defaults
	if cfg.HTTP.Timeout != 10 {
		t.Errorf("HTTP.Timeout = %d", cfg.HTTP.Timeout)
	}
}

func TestLoad_Environment(t *testing.T) {
	t.Setenv("THREADPLAY_ENDPOINT", "http://env.example.org")
	t.Setenv("THREADPLAY_PLAYER_COMMAND", "ffplay")
	t.Setenv("THREADPLAY_REFRESH_INTERVAL", "15")

	cfg, err := load(t.TempDir())
	if err != nil {
		t.Fatalf("load() error = %v", err)
	}

	if cfg.Endpoint != "http://env.example.org" {
		t.Errorf("Endpoint = %q", cfg.Endpoint)
	}
	if cfg.Player.Command != "ffplay" {
		t.Errorf("Player.Command = %q", cfg.Player.Command)
	}
	if cfg.RefreshInterval != 15 {
		t.Errorf("RefreshInterval = %d", cfg.RefreshInterval)
	}
}

func TestLoad_InvalidFile(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("endpoint: [unclosed"), 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	if _, err := load(dir); err == nil {
		t.Error("expected error for invalid yaml")
	}
}

func TestSaveRoundTrip(t *testing.T) {
	dir := t.TempDir()

	cfg, err := load(dir)
	if err != nil {
		t.Fatalf("load() error = %v", err)
	}
	cfg.Endpoint = "https://saved.example.org"
	cfg.OutputWidth = 40

	if err := cfg.saveTo(filepath.Join(dir, "config.yaml")); err != nil {
		t.Fatalf("saveTo() error = %v", err)
	}

	loaded, err := load(dir)
	if err != nil {
		t.Fatalf("load() error = %v", err)
	}
	if loaded.Endpoint != "https://saved.example.org" || loaded.OutputWidth != 40 {
		t.Errorf("loaded = %+v", loaded)
	}
}
