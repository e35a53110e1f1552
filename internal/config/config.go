// Package config loads tasklistd configuration from JSONC or YAML files,
// with environment templating, a dotenv loader and defaults.
package config

import "time"

// Config is the root configuration for tasklistd.
type Config struct {
	Server ServerConfig `json:"server" yaml:"server"`
	Store  StoreConfig  `json:"store" yaml:"store"`
	Auth   AuthConfig   `json:"auth" yaml:"auth"`
	Events EventsConfig `json:"events" yaml:"events"`
}

// ServerConfig holds the HTTP server settings.
type ServerConfig struct {
	Host string `json:"host" yaml:"host"`
	Port int    `json:"port" yaml:"port"`
}

// StoreConfig selects and configures the key-value engine.
type StoreConfig struct {
	Driver string `json:"driver" yaml:"driver"` // "sqlite" or "memory"
	Path   string `json:"path" yaml:"path"`     // sqlite database file
}

// AuthConfig holds session-token settings. The signing secret itself is
// not configured here; it lives age-encrypted in the data directory.
type AuthConfig struct {
	TokenTTL      Duration `json:"token_ttl" yaml:"token_ttl"`
	SweepSchedule string   `json:"sweep_schedule" yaml:"sweep_schedule"` // cron, 5-field
}

// EventsConfig holds event bus settings.
type EventsConfig struct {
	BufferSize int `json:"buffer_size" yaml:"buffer_size"`
}

// Duration wraps time.Duration for JSON and YAML unmarshaling from
// strings like "24h".
type Duration time.Duration

func (d Duration) Duration() time.Duration {
	return time.Duration(d)
}

func (d *Duration) UnmarshalJSON(b []byte) error {
	s := string(b)
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		s = s[1 : len(s)-1]
	}
	return d.parse(s)
}

func (d Duration) MarshalJSON() ([]byte, error) {
	return []byte(`"` + time.Duration(d).String() + `"`), nil
}

func (d *Duration) UnmarshalYAML(unmarshal func(any) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}
	return d.parse(s)
}

func (d *Duration) parse(s string) error {
	dur, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	*d = Duration(dur)
	return nil
}
