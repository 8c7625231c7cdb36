package common

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitLogger_StdoutOnly(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Logging.Output = []string{"stdout"}
	cfg.Logging.Level = "debug"

	logger := InitLogger(cfg)
	require.NotNil(t, logger)

	// InitLogger replaces the global instance
	assert.Equal(t, logger, GetLogger())

	// Exercise the writer so a misconfigured logger fails loudly here
	logger.Debug().Str("check", "ok").Msg("logger configured")
}

func TestGetLogger_LazyDefault(t *testing.T) {
	logger := GetLogger()
	require.NotNil(t, logger)
	logger.Info().Int("n", 1).Msg("default logger works")
}
