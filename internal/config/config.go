package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/jfmyers9/threadplay/internal/boards"
)

// Config holds application configuration
type Config struct {
	// Base URL of the enqueue endpoint serving thread playlists
	Endpoint string

	// Board directory used to look up display names, "" disables it
	BoardsEndpoint string

	// Board display name overrides, keyed by board id
	Boards map[string]string

	// External player used as the media sink
	Player PlayerConfig

	// Refresh interval for the current thread (in seconds, 0 disables)
	RefreshInterval int

	// Address of the local HTTP server (object URLs, metrics, control API)
	ListenAddr string

	// HTTP client settings for the enqueue endpoint
	HTTP HTTPConfig

	// Thread payload cache
	Cache CacheConfig

	// Output format template for the list command
	// Default: "{{.Index}}. {{.Title}}"
	OutputFormat string

	// Fixed output width for the list command (0 = disabled)
	OutputWidth int
}

// PlayerConfig holds media player configuration
type PlayerConfig struct {
	Command string   // Executable name or path
	Args    []string // Arguments; "{url}" is replaced by the source
}

// HTTPConfig holds HTTP client configuration
type HTTPConfig struct {
	Timeout int // Request timeout in seconds
	Retries int // Maximum attempts per request
}

// CacheConfig holds thread cache configuration
type CacheConfig struct {
	Path   string // SQLite database path, "" keeps the cache in memory
	MaxAge int    // Entries older than this many hours are dropped on exit
}

// Load reads configuration from file and environment
func Load() (*Config, error) {
	return load(getConfigDir(), ".")
}

// load reads config.yaml from the first of paths that has one
func load(paths ...string) (*Config, error) {
	v := viper.New()

	// Set config name and paths
	v.SetConfigName("config")
	v.SetConfigType("yaml")

	// Config file locations (in order of precedence)
	for _, p := range paths {
		v.AddConfigPath(p)
	}

	setDefaults(v)

	// Read config file (optional - don't fail if missing)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	// Read from environment variables, e.g. THREADPLAY_PLAYER_COMMAND
	v.SetEnvPrefix("THREADPLAY")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Map config to struct
	cfg := &Config{
		Endpoint:        v.GetString("endpoint"),
		BoardsEndpoint:  v.GetString("boards_endpoint"),
		Boards:          v.GetStringMapString("boards"),
		RefreshInterval: v.GetInt("refresh_interval"),
		ListenAddr:      v.GetString("listen_addr"),
		Player: PlayerConfig{
			Command: v.GetString("player.command"),
			Args:    v.GetStringSlice("player.args"),
		},
		HTTP: HTTPConfig{
			Timeout: v.GetInt("http.timeout"),
			Retries: v.GetInt("http.retries"),
		},
		Cache: CacheConfig{
			Path:   v.GetString("cache.path"),
			MaxAge: v.GetInt("cache.max_age"),
		},
		OutputFormat: v.GetString("output_format"),
		OutputWidth:  v.GetInt("output_width"),
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("endpoint", "http://localhost:3000")
	v.SetDefault("boards_endpoint", boards.DefaultEndpoint)
	v.SetDefault("boards", map[string]string{})
	v.SetDefault("player.command", "mpv")
	v.SetDefault("player.args", []string{"--no-terminal", "--force-window=yes", "{url}"})
	v.SetDefault("refresh_interval", 0)
	v.SetDefault("listen_addr", "127.0.0.1:7451")
	v.SetDefault("http.timeout", 10)
	v.SetDefault("http.retries", 3)
	v.SetDefault("cache.path", "")
	v.SetDefault("cache.max_age", 24)
	v.SetDefault("output_format", "{{.Index}}. {{.Title}}")
	v.SetDefault("output_width", 0)
}

// getConfigDir returns the configuration directory path
// Creates the directory if it doesn't exist
func getConfigDir() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "."
	}

	configDir := filepath.Join(homeDir, ".config", "threadplay")

	// Create config directory if it doesn't exist
	_ = os.MkdirAll(configDir, 0755)

	return configDir
}

// GetConfigDir returns the configuration directory path (public helper)
func GetConfigDir() string {
	return getConfigDir()
}

// Save writes configuration to config.yaml in the configuration directory
func (c *Config) Save() error {
	return c.saveTo(filepath.Join(getConfigDir(), "config.yaml"))
}

func (c *Config) saveTo(configFile string) error {
	v := viper.New()

	// Set values in viper
	v.Set("endpoint", c.Endpoint)
	v.Set("boards_endpoint", c.BoardsEndpoint)
	v.Set("boards", c.Boards)
	v.Set("player.command", c.Player.Command)
	v.Set("player.args", c.Player.Args)
	v.Set("refresh_interval", c.RefreshInterval)
	v.Set("listen_addr", c.ListenAddr)
	v.Set("http.timeout", c.HTTP.Timeout)
	v.Set("http.retries", c.HTTP.Retries)
	v.Set("cache.path", c.Cache.Path)
	v.Set("cache.max_age", c.Cache.MaxAge)
	v.Set("output_format", c.OutputFormat)
	v.Set("output_width", c.OutputWidth)

	// Write to file
	return v.WriteConfigAs(configFile)
}
