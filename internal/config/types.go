package config

import "time"

// SessionBackend selects where per-session visit flags are kept.
type SessionBackend string

const (
	BackendMemory SessionBackend = "memory"
	BackendSQLite SessionBackend = "sqlite"
	BackendRedis  SessionBackend = "redis"
)

// RelayProvider selects how contact form messages are delivered.
type RelayProvider string

const (
	RelayEmailJS RelayProvider = "emailjs"
	RelaySMTP    RelayProvider = "smtp"
	RelayNone    RelayProvider = "none"
)

// Config is the full runtime configuration of the portfolio server.
type Config struct {
	Server     ServerConfig     `koanf:"server" yaml:"server"`
	Log        LogConfig        `koanf:"log" yaml:"log"`
	Database   DatabaseConfig   `koanf:"database" yaml:"database"`
	Session    SessionConfig    `koanf:"session" yaml:"session"`
	Relay      RelayConfig      `koanf:"relay" yaml:"relay"`
	Admin      AdminConfig      `koanf:"admin" yaml:"admin"`
	Transition TransitionConfig `koanf:"transition" yaml:"transition"`
}

type ServerConfig struct {
	Port         int    `koanf:"port" yaml:"port"`
	Mode         string `koanf:"mode" yaml:"mode"`
	TemplatesDir string `koanf:"templates_dir" yaml:"templates_dir"`
	StaticDir    string `koanf:"static_dir" yaml:"static_dir"`
	ImagesDir    string `koanf:"images_dir" yaml:"images_dir"`
}

type LogConfig struct {
	Level string `koanf:"level" yaml:"level"`
}

type DatabaseConfig struct {
	Path string `koanf:"path" yaml:"path"`
}

type SessionConfig struct {
	Backend       SessionBackend `koanf:"backend" yaml:"backend"`
	CookieName    string         `koanf:"cookie_name" yaml:"cookie_name"`
	TTL           time.Duration  `koanf:"ttl" yaml:"ttl"`
	RedisAddr     string         `koanf:"redis_addr" yaml:"redis_addr"`
	RedisPassword string         `koanf:"redis_password" yaml:"redis_password"`
	RedisDB       int            `koanf:"redis_db" yaml:"redis_db"`
}

type RelayConfig struct {
	Provider   RelayProvider `koanf:"provider" yaml:"provider"`
	Endpoint   string        `koanf:"endpoint" yaml:"endpoint"`
	ServiceID  string        `koanf:"service_id" yaml:"service_id"`
	TemplateID string        `koanf:"template_id" yaml:"template_id"`
	PublicKey  string        `koanf:"public_key" yaml:"public_key"`
	ToName     string        `koanf:"to_name" yaml:"to_name"`
	Timeout    time.Duration `koanf:"timeout" yaml:"timeout"`
	SMTP       SMTPConfig    `koanf:"smtp" yaml:"smtp"`
}

type SMTPConfig struct {
	Host string `koanf:"host" yaml:"host"`
	Port string `koanf:"port" yaml:"port"`
	User string `koanf:"user" yaml:"user"`
	Pass string `koanf:"pass" yaml:"pass"`
	To   string `koanf:"to" yaml:"to"`
}

type AdminConfig struct {
	Username string `koanf:"username" yaml:"username"`
	Password string `koanf:"password" yaml:"password"`
}

// TransitionConfig tunes the route-change reveal.
type TransitionConfig struct {
	RevealDelay time.Duration `koanf:"reveal_delay" yaml:"reveal_delay"`
}
