package app

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/fx"
)

func TestCreateApp(t *testing.T) {
	t.Setenv("TELEGRAM_BOT_TOKEN", "test-token-123")
	t.Setenv("TELEGRAM_BOT_USERNAME", "stickers_bot")

	// Validate fx dependency graph
	require.NoError(t, fx.ValidateApp(CreateApp()))
}
