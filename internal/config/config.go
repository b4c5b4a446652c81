package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

type Config struct {
	Providers   []string                  `toml:"providers"`
	LLMs        map[string]*LLMConfig     `toml:"llm"`
	Gateway     GatewayConfig             `toml:"gateway"`
	Memory      MemoryConfig              `toml:"memory"`
	History     HistoryConfig             `toml:"history"`
	Trace       TraceConfig               `toml:"trace"`
	EventStream EventStreamConfig         `toml:"eventstream"`
	Channels    map[string]*ChannelConfig `toml:"channel"`
	Log         LogConfig                 `toml:"log"`
}

type LLMConfig struct {
	Model       string  `toml:"model"`
	BaseURL     string  `toml:"base_url"`
	APIKey      string  `toml:"api_key"`
	APIKeyEnv   string  `toml:"api_key_env"`
	Temperature float64 `toml:"temperature"`
}

// Key returns the configured API key, falling back to the APIKeyEnv variable.
func (c *LLMConfig) Key() string {
	if c.APIKey != "" {
		return c.APIKey
	}
	if c.APIKeyEnv != "" {
		return os.Getenv(c.APIKeyEnv)
	}
	return ""
}

type GatewayConfig struct {
	Addr       string `toml:"addr"`
	CookieName string `toml:"cookie_name"`
}

type MemoryConfig struct {
	Backend    string      `toml:"backend"` // file, sqlite, redis
	Path       string      `toml:"path"`
	SQLitePath string      `toml:"sqlite_path"`
	Redis      RedisConfig `toml:"redis"`
}

type RedisConfig struct {
	Addr     string `toml:"addr"`
	Password string `toml:"password"`
	DB       int    `toml:"db"`
	Prefix   string `toml:"prefix"`
}

type HistoryConfig struct {
	Path   string `toml:"path"`
	Window int    `toml:"window"`
}

type TraceConfig struct {
	Enabled  bool   `toml:"enabled"`
	Endpoint string `toml:"endpoint"`
	URLPath  string `toml:"url_path"`
	APIKey   string `toml:"api_key"`
}

type EventStreamConfig struct {
	Enabled bool     `toml:"enabled"`
	Brokers []string `toml:"brokers"`
	Topic   string   `toml:"topic"`
}

type ChannelConfig struct {
	Enabled  bool              `toml:"enabled"`
	Type     string            `toml:"type"`
	Settings map[string]string `toml:"settings"`
}

type LogConfig struct {
	Debug  bool `toml:"debug"`
	Pretty bool `toml:"pretty"`
}

// Load reads the config file at path over the defaults. An empty path means
// the default location; a missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path == "" {
		path = configPath()
	}
	if _, err := os.Stat(path); err == nil {
		if _, err := toml.DecodeFile(path, cfg); err != nil {
			return nil, err
		}
	}

	applyDefaults(cfg)
	return cfg, nil
}

// Default returns the built-in configuration: Groq first, OpenAI as fallback,
// file-backed facts and history under the user's data directory.
func Default() *Config {
	return &Config{
		Providers: []string{"groq", "openai"},
		LLMs: map[string]*LLMConfig{
			"groq": {
				Model:       "llama3-8b-8192",
				BaseURL:     "https://api.groq.com/openai/v1",
				APIKeyEnv:   "GROQ_API_KEY",
				Temperature: 0.4,
			},
			"openai": {
				Model:       "gpt-4o-mini",
				APIKeyEnv:   "OPENAI_API_KEY",
				Temperature: 0.4,
			},
		},
		Gateway: GatewayConfig{
			Addr:       ":8484",
			CookieName: "uid",
		},
		Memory: MemoryConfig{
			Backend:    "file",
			Path:       filepath.Join(dataDir(), "memory.json"),
			SQLitePath: filepath.Join(dataDir(), "memory.db"),
			Redis: RedisConfig{
				Addr:   "localhost:6379",
				Prefix: "mnemo:facts:",
			},
		},
		History: HistoryConfig{
			Path:   filepath.Join(dataDir(), "conversations.jsonl"),
			Window: 100,
		},
		EventStream: EventStreamConfig{
			Topic: "mnemo.turns",
		},
	}
}

func applyDefaults(cfg *Config) {
	d := Default()
	if cfg.Gateway.Addr == "" {
		cfg.Gateway.Addr = d.Gateway.Addr
	}
	if cfg.Gateway.CookieName == "" {
		cfg.Gateway.CookieName = d.Gateway.CookieName
	}
	if cfg.Memory.Backend == "" {
		cfg.Memory.Backend = d.Memory.Backend
	}
	if cfg.Memory.Path == "" {
		cfg.Memory.Path = d.Memory.Path
	}
	if cfg.Memory.SQLitePath == "" {
		cfg.Memory.SQLitePath = d.Memory.SQLitePath
	}
	if cfg.Memory.Redis.Prefix == "" {
		cfg.Memory.Redis.Prefix = d.Memory.Redis.Prefix
	}
	if cfg.History.Path == "" {
		cfg.History.Path = d.History.Path
	}
	if cfg.History.Window <= 0 {
		cfg.History.Window = d.History.Window
	}
	if cfg.EventStream.Topic == "" {
		cfg.EventStream.Topic = d.EventStream.Topic
	}
	for _, llm := range cfg.LLMs {
		if llm.Temperature == 0 {
			llm.Temperature = 0.4
		}
	}

	cfg.Memory.Path = ExpandHome(cfg.Memory.Path)
	cfg.Memory.SQLitePath = ExpandHome(cfg.Memory.SQLitePath)
	cfg.History.Path = ExpandHome(cfg.History.Path)
}

// ExpandHome replaces a leading ~/ with the user's home directory.
func ExpandHome(path string) string {
	if !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[2:])
}

func configPath() string {
	dir, _ := os.UserConfigDir()
	return filepath.Join(dir, "mnemo", "config.toml")
}

func dataDir() string {
	dir, _ := os.UserHomeDir()
	return filepath.Join(dir, ".local", "share", "mnemo")
}
