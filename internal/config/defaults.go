package config

import (
	"time"

	"github.com/canoeh/nocs/internal/builder"
	"github.com/canoeh/nocs/internal/models"
)

// Default returns a config with every default applied.
func Default() *Config {
	cfg := &Config{}
	ApplyDefaults(cfg)
	return cfg
}

// ApplyDefaults sets default values for any zero values in cfg.
func ApplyDefaults(cfg *Config) {
	if cfg.Server.Host == "" {
		cfg.Server.Host = "localhost"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = 10 * time.Second
	}
	if cfg.Server.WriteTimeout == 0 {
		cfg.Server.WriteTimeout = 30 * time.Second
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = 15 * time.Second
	}
	if cfg.Server.CORSOrigins == nil {
		cfg.Server.CORSOrigins = []string{"*"}
	}
	if cfg.Dataset.SnapshotPath == "" {
		cfg.Dataset.SnapshotPath = "data/noc.json"
	}
	if cfg.Dataset.Version == "" {
		cfg.Dataset.Version = builder.DefaultVersion
	}
	if cfg.Dataset.Source == "" {
		cfg.Dataset.Source = builder.DefaultSource
	}
	if cfg.Dataset.ReferenceLinkTemplate == "" {
		cfg.Dataset.ReferenceLinkTemplate = builder.DefaultLinkTemplate
	}
	if cfg.Query.MaxLimit == 0 {
		cfg.Query.MaxLimit = models.MaxPageLimit
	}
	if cfg.Query.DefaultLimit == 0 {
		cfg.Query.DefaultLimit = min(models.DefaultPageLimit, cfg.Query.MaxLimit)
	}
	if cfg.Query.SuggestLimit == 0 {
		cfg.Query.SuggestLimit = 10
	}
	if cfg.Cache.ListMaxAge == 0 {
		cfg.Cache.ListMaxAge = time.Hour
	}
	if cfg.Cache.DetailMaxAge == 0 {
		cfg.Cache.DetailMaxAge = 24 * time.Hour
	}
	if cfg.Cache.InfoMaxAge == 0 {
		cfg.Cache.InfoMaxAge = 7 * 24 * time.Hour
	}
	if cfg.RateLimit.RequestsPerSecond == 0 {
		cfg.RateLimit.RequestsPerSecond = 100
	}
	if cfg.RateLimit.Burst == 0 {
		cfg.RateLimit.Burst = 200
	}
}
