package config

import "time"

// ApplyDefaults sets default values for any zero values in cfg.
func ApplyDefaults(cfg *Config) {
	if cfg.Server.Host == "" {
		cfg.Server.Host = "localhost"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Storage.DatabasePath == "" {
		cfg.Storage.DatabasePath = "/usr/local/var/handbook/progress.db"
	}
	if cfg.Search.ContextChars == 0 {
		cfg.Search.ContextChars = 50
	}
	if cfg.Search.DefaultLimit == 0 {
		cfg.Search.DefaultLimit = 20
	}
	if cfg.Search.MaxLimit == 0 {
		cfg.Search.MaxLimit = 200
	}
	if cfg.Search.DefaultMode == "" {
		cfg.Search.DefaultMode = "substring"
	}
	if cfg.Search.TitleBoost == 0 {
		cfg.Search.TitleBoost = 2.0
	}
	if cfg.Session.TTL == 0 {
		cfg.Session.TTL = 30 * time.Minute
	}
	if cfg.Session.MaxSessions == 0 {
		cfg.Session.MaxSessions = 1000
	}
}
