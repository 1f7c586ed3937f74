package config

import "time"

// DefaultConfig returns the configuration used when no file or env overrides exist.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:         8080,
			Mode:         "release",
			TemplatesDir: "templates",
			StaticDir:    "static",
			ImagesDir:    "images",
		},
		Log: LogConfig{Level: "info"},
		Database: DatabaseConfig{
			Path: "data/portfolio.db",
		},
		Session: SessionConfig{
			Backend:    BackendSQLite,
			CookieName: "portfolio_session",
			TTL:        12 * time.Hour,
			RedisAddr:  "localhost:6379",
		},
		Relay: RelayConfig{
			Provider:   RelayEmailJS,
			Endpoint:   "https://api.emailjs.com/api/v1.0/email/send",
			ServiceID:  "service_3q79ey8",
			TemplateID: "template_6boqaee",
			PublicKey:  "KAHMMRSws4oNcz19y",
			ToName:     "Bernard",
			Timeout:    10 * time.Second,
			SMTP: SMTPConfig{
				Host: "smtp.gmail.com",
				Port: "587",
				To:   "bernard.regaspi.pixel8@gmail.com",
			},
		},
		Transition: TransitionConfig{
			RevealDelay: 200 * time.Millisecond,
		},
	}
}
