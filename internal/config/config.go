// Package config loads the gateway server configuration from TOML.
package config

import (
	_ "embed"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

//go:embed defaults.toml
var defaultConf []byte

// Config is the server configuration.
type Config struct {
	Server   ServerConfig   `toml:"server"`
	Database DatabaseConfig `toml:"database"`
	Auth     AuthConfig     `toml:"auth"`
	Storage  StorageConfig  `toml:"storage"`
}

type ServerConfig struct {
	Addr         string  `toml:"addr"`
	TLSCert      string  `toml:"tls_cert"`
	TLSKey       string  `toml:"tls_key"`
	Dev          bool    `toml:"dev"`
	RateLimit    float64 `toml:"rate_limit"`
	RateBurst    int     `toml:"rate_burst"`
	MaxMessageMB int     `toml:"max_message_mb"`
}

type DatabaseConfig struct {
	DSN string `toml:"dsn"`
}

type AuthConfig struct {
	JWTKey      string      `toml:"jwt_key"`
	AccessTTL   Duration    `toml:"access_ttl"`
	SignInLimit SignInLimit `toml:"signin_limit"`
}

// SignInLimit configures the sign-in lockout.
type SignInLimit struct {
	Window   Duration `toml:"window"`
	MaxFails int      `toml:"max_fails"`
	BlockFor Duration `toml:"block_for"`
}

type StorageConfig struct {
	Root       string `toml:"root"`
	PublicBase string `toml:"public_base"`
}

// Duration decodes TOML strings such as "15m".
type Duration struct{ time.Duration }

func (d *Duration) UnmarshalText(b []byte) error {
	v, err := time.ParseDuration(string(b))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

func (d Duration) MarshalText() ([]byte, error) { return []byte(d.String()), nil }

// Default returns the embedded defaults.
func Default() *Config {
	var c Config
	if _, err := toml.Decode(string(defaultConf), &c); err != nil {
		panic(fmt.Sprintf("embedded default config: %v", err))
	}
	return &c
}

// DefaultTOML returns the annotated default configuration file.
func DefaultTOML() []byte { return append([]byte(nil), defaultConf...) }

// Load reads path on top of the defaults. An empty path yields the defaults.
// Unknown keys are rejected so typos do not silently fall back to defaults.
func Load(path string) (*Config, error) {
	c := Default()
	if path == "" {
		return c, nil
	}
	md, err := toml.DecodeFile(path, c)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	if und := md.Undecoded(); len(und) > 0 {
		keys := make([]string, len(und))
		for i, k := range und {
			keys[i] = k.String()
		}
		return nil, fmt.Errorf("config %s: unknown keys %s", path, strings.Join(keys, ", "))
	}
	return c, nil
}

// Validate checks the settings the server cannot start without.
func (c *Config) Validate() error {
	var problems []error
	if c.Auth.JWTKey == "" {
		problems = append(problems, errors.New("auth.jwt_key is required"))
	}
	if c.Auth.AccessTTL.Duration <= 0 {
		problems = append(problems, errors.New("auth.access_ttl must be positive"))
	}
	if c.Database.DSN == "" {
		problems = append(problems, errors.New("database.dsn is required"))
	}
	if c.Storage.Root == "" {
		problems = append(problems, errors.New("storage.root is required"))
	}
	if c.Server.MaxMessageMB <= 0 {
		problems = append(problems, errors.New("server.max_message_mb must be positive"))
	}
	return errors.Join(problems...)
}
