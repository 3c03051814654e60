package uverse

import (
	"testing"

	"gotest.tools/v3/assert"
)

func TestConfig_Defaults(t *testing.T) {
	cfg, err := loadConfig()
	assert.NilError(t, err)
	assert.Equal(t, cfg.UverseEntityChunkSize, DefaultEntityChunkSize)
	assert.Equal(t, cfg.UverseLogLevel, DefaultLogLevel)
}

func TestConfig_LoadFromEnv(t *testing.T) {
	t.Setenv("UVERSE_ENTITY_CHUNK_SIZE", "128")
	t.Setenv("UVERSE_LOG_LEVEL", "warn")

	cfg, err := loadConfig()
	assert.NilError(t, err)
	assert.Equal(t, cfg.UverseEntityChunkSize, 128)
	assert.Equal(t, cfg.UverseLogLevel, "warn")
}

func TestConfig_RejectsBadChunkSize(t *testing.T) {
	t.Setenv("UVERSE_ENTITY_CHUNK_SIZE", "0")
	_, err := loadConfig()
	assert.Assert(t, err != nil)
}

func TestConfig_RejectsBadLogLevel(t *testing.T) {
	t.Setenv("UVERSE_LOG_LEVEL", "shouting")
	_, err := NewRegistry()
	assert.Assert(t, err != nil)
}
