package uverse

import (
	jlconfig "github.com/JeremyLoy/config"
	"github.com/rotisserie/eris"
)

const (
	// DefaultEntityChunkSize is how many entity slots a universe adds to its
	// free-list in one batch when the list runs empty.
	DefaultEntityChunkSize = 32

	DefaultLogLevel = "info"
)

// Config tunes allocator behavior. Values are loaded from the environment;
// fallback values are used for anything unset.
type Config struct {
	// UverseEntityChunkSize overrides the free-list growth batch size.
	UverseEntityChunkSize int `config:"UVERSE_ENTITY_CHUNK_SIZE"`
	// UverseLogLevel is a zerolog level name applied to registry loggers.
	UverseLogLevel string `config:"UVERSE_LOG_LEVEL"`
}

var defaultConfig = Config{
	UverseEntityChunkSize: DefaultEntityChunkSize,
	UverseLogLevel:        DefaultLogLevel,
}

func loadConfig() (*Config, error) {
	cfg := defaultConfig
	if err := jlconfig.FromEnv().To(&cfg); err != nil {
		return nil, eris.Wrap(err, "failed to load config from env")
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.UverseEntityChunkSize <= 0 {
		return eris.Errorf("entity chunk size must be positive, got %d", c.UverseEntityChunkSize)
	}
	return nil
}
