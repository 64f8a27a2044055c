package logging

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	for _, level := range []string{"debug", "info", "warn", "error", "bogus", ""} {
		logger := New(level)
		require.NotNil(t, logger, "level %q", level)
		require.NotNil(t, logger.Logger)
	}
}

func TestDefault(t *testing.T) {
	require.NotNil(t, Default())
}

func TestComponent(t *testing.T) {
	logger := Default().Component("booking")
	require.NotNil(t, logger)
	require.NotNil(t, logger.Logger)
}
