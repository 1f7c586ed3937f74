package config

import (
	"fmt"
	"os"
	"strings"

	// Pick up a local .env before anything reads the environment.
	_ "github.com/joho/godotenv/autoload"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// EnvPrefix is the prefix of structured environment overrides.
// Nested keys are separated by a double underscore: PORTFOLIO_SERVER__PORT -> server.port.
const EnvPrefix = "PORTFOLIO_"

// legacyEnv maps the plain variables the site has always read onto config keys.
var legacyEnv = map[string]string{
	"PORT":           "server.port",
	"GIN_MODE":       "server.mode",
	"SMTP_HOST":      "relay.smtp.host",
	"SMTP_PORT":      "relay.smtp.port",
	"SMTP_USER":      "relay.smtp.user",
	"SMTP_PASS":      "relay.smtp.pass",
	"TO_EMAIL":       "relay.smtp.to",
	"ADMIN_USERNAME": "admin.username",
	"ADMIN_PASSWORD": "admin.password",
	"REDIS_ADDR":     "session.redis_addr",
}

// Load reads configuration from the given YAML file, then overlays the legacy
// environment variables and finally PORTFOLIO_* overrides.
func Load(path string) (*Config, error) {
	k := koanf.New(".")
	cfg := DefaultConfig()

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
				return nil, fmt.Errorf("reading config %s: %w", path, err)
			}
		} else if !os.IsNotExist(err) {
			return nil, fmt.Errorf("accessing config %s: %w", path, err)
		}
	}

	for name, key := range legacyEnv {
		if v, ok := os.LookupEnv(name); ok && v != "" {
			if err := k.Set(key, v); err != nil {
				return nil, fmt.Errorf("applying %s: %w", name, err)
			}
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("loading env overrides: %w", err)
	}

	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}

	return cfg, nil
}

func envKey(s string) string {
	s = strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	return strings.ReplaceAll(s, "__", ".")
}

var validBackends = map[SessionBackend]bool{
	BackendMemory: true,
	BackendSQLite: true,
	BackendRedis:  true,
}

var validRelays = map[RelayProvider]bool{
	RelayEmailJS: true,
	RelaySMTP:    true,
	RelayNone:    true,
}

// Validate checks that the configuration contains usable values.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server.port %d", c.Server.Port)
	}
	switch c.Server.Mode {
	case "debug", "release", "test":
	default:
		return fmt.Errorf("invalid server.mode %q: must be one of debug, release, test", c.Server.Mode)
	}

	if !validBackends[c.Session.Backend] {
		return fmt.Errorf("invalid session.backend %q: must be one of memory, sqlite, redis", c.Session.Backend)
	}
	if c.Session.CookieName == "" {
		return fmt.Errorf("session.cookie_name is required")
	}
	if c.Session.Backend == BackendRedis && c.Session.RedisAddr == "" {
		return fmt.Errorf("session.redis_addr is required for the redis backend")
	}
	if c.Session.Backend == BackendSQLite && c.Database.Path == "" {
		return fmt.Errorf("database.path is required for the sqlite backend")
	}

	if !validRelays[c.Relay.Provider] {
		return fmt.Errorf("invalid relay.provider %q: must be one of emailjs, smtp, none", c.Relay.Provider)
	}
	if c.Relay.Provider == RelayEmailJS {
		if c.Relay.ServiceID == "" || c.Relay.TemplateID == "" || c.Relay.PublicKey == "" {
			return fmt.Errorf("relay.service_id, relay.template_id and relay.public_key are required for emailjs")
		}
	}

	if c.Transition.RevealDelay < 0 {
		return fmt.Errorf("transition.reveal_delay must be non-negative")
	}

	return nil
}

// Addr is the listen address for the HTTP server.
func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Server.Port)
}
