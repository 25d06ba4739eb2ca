package config

import (
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type AuthConfig struct {
	AccessSecret    string `yaml:"access_secret"`
	RefreshSecret   string `yaml:"refresh_secret"`
	AccessTTLHours  int    `yaml:"access_ttl_hours"`
	RefreshTTLHours int    `yaml:"refresh_ttl_hours"`
	// в проде куки secure + SameSite=None, в деве — Lax
	Production bool `yaml:"production"`
}

func (a AuthConfig) AccessTTL() time.Duration {
	return time.Duration(a.AccessTTLHours) * time.Hour
}

func (a AuthConfig) RefreshTTL() time.Duration {
	return time.Duration(a.RefreshTTLHours) * time.Hour
}

type Config struct {
	Server struct {
		Port int `yaml:"port"`
	} `yaml:"server"`
	Database struct {
		DSN string `yaml:"url"`
	} `yaml:"database"`
	Email struct {
		SMTPHost     string `yaml:"smtp_host"`
		SMTPPort     int    `yaml:"smtp_port"`
		SMTPUser     string `yaml:"smtp_user"`
		SMTPPassword string `yaml:"smtp_password"`
		FromEmail    string `yaml:"from_email"`
	} `yaml:"email"`
	Auth AuthConfig `yaml:"auth"`
}

func LoadConfig() *Config {
	f, err := os.Open("config/config.yaml")
	if err != nil {
		panic("Failed to open config.yaml: " + err.Error())
	}
	defer f.Close()

	var cfg Config
	if err := yaml.NewDecoder(f).Decode(&cfg); err != nil {
		panic("Failed to parse config.yaml: " + err.Error())
	}

	if cfg.Auth.AccessTTLHours <= 0 {
		cfg.Auth.AccessTTLHours = 24
	}
	if cfg.Auth.RefreshTTLHours <= 0 {
		cfg.Auth.RefreshTTLHours = 7 * 24
	}
	return &cfg
}
