package project

import "time"

// Config is the persisted per-project configuration, stored at
// <project>/.tfmux/config.yaml.
type Config struct {
	Version     string    `yaml:"version"`
	ID          string    `yaml:"id"`
	Name        string    `yaml:"name"`
	DefaultUser string    `yaml:"defaultUser,omitempty"`
	CreatedAt   time.Time `yaml:"createdAt"`
}

// DefaultConfig returns a Config with defaults applied
func DefaultConfig() *Config {
	return &Config{
		Version:     "1.0",
		DefaultUser: "default",
	}
}

// Info describes a project on disk
type Info struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Path      string    `json:"path"`
	CreatedAt time.Time `json:"created_at"`
}
