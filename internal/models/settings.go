package models

import "time"

// APIConfig holds backend endpoint settings.
type APIConfig struct {
	BaseURL string        `yaml:"base_url"` // REST base, e.g. http://localhost:8000/api
	PushURL string        `yaml:"push_url"` // websocket endpoint for live events
	Timeout time.Duration `yaml:"timeout"`  // per-request timeout
}

// PushConfig holds push channel settings.
type PushConfig struct {
	Reconnect  bool          `yaml:"reconnect"`
	MinBackoff time.Duration `yaml:"min_backoff"`
	MaxBackoff time.Duration `yaml:"max_backoff"`
}

// LogsConfig holds live log tail settings.
type LogsConfig struct {
	Capacity int `yaml:"capacity"`
}

// LoggingConfig holds diagnostic logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // logrus level name
	File  string `yaml:"file"`  // empty = ~/.autoreflex/logs/autoreflex.log
}

// Settings represents global client settings.
// This corresponds to ~/.autoreflex/settings.yaml.
type Settings struct {
	Version int           `yaml:"version"`
	API     APIConfig     `yaml:"api"`
	Push    PushConfig    `yaml:"push"`
	Logs    LogsConfig    `yaml:"logs"`
	Logging LoggingConfig `yaml:"logging"`
}

// Defaults matching the stock backend.
const (
	DefaultBaseURL     = "http://localhost:8000/api"
	DefaultPushURL     = "ws://localhost:8000/api/ws"
	DefaultTimeout     = 5 * time.Second
	DefaultLogCapacity = 500
)

// NewSettings creates settings with default values.
func NewSettings() *Settings {
	return &Settings{
		Version: 1,
		API: APIConfig{
			BaseURL: DefaultBaseURL,
			PushURL: DefaultPushURL,
			Timeout: DefaultTimeout,
		},
		Push: PushConfig{
			Reconnect:  false,
			MinBackoff: time.Second,
			MaxBackoff: 30 * time.Second,
		},
		Logs: LogsConfig{
			Capacity: DefaultLogCapacity,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Normalize fills zero values left by a partial settings file.
func (s *Settings) Normalize() {
	def := NewSettings()
	if s.Version == 0 {
		s.Version = def.Version
	}
	if s.API.BaseURL == "" {
		s.API.BaseURL = def.API.BaseURL
	}
	if s.API.PushURL == "" {
		s.API.PushURL = def.API.PushURL
	}
	if s.API.Timeout <= 0 {
		s.API.Timeout = def.API.Timeout
	}
	if s.Push.MinBackoff <= 0 {
		s.Push.MinBackoff = def.Push.MinBackoff
	}
	if s.Push.MaxBackoff < s.Push.MinBackoff {
		s.Push.MaxBackoff = def.Push.MaxBackoff
		if s.Push.MaxBackoff < s.Push.MinBackoff {
			s.Push.MaxBackoff = s.Push.MinBackoff
		}
	}
	if s.Logs.Capacity <= 0 {
		s.Logs.Capacity = def.Logs.Capacity
	}
	if s.Logging.Level == "" {
		s.Logging.Level = def.Logging.Level
	}
}
