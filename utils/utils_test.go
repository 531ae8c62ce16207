package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestAssertInvariant(t *testing.T) {
	t.Run("does nothing when condition holds", func(t *testing.T) {
		assert.NotPanics(t, func() {
			AssertInvariant(true, "should not panic")
		})
	})

	t.Run("panics when condition is violated", func(t *testing.T) {
		assert.PanicsWithValue(t, "invariant violated - queue corrupted", func() {
			AssertInvariant(false, "queue corrupted")
		})
	})
}

func TestFormatDiscordTimestamp(t *testing.T) {
	ts := time.Date(2025, 6, 15, 18, 30, 0, 0, time.UTC)

	t.Run("full style", func(t *testing.T) {
		assert.Equal(t, "<t:1750012200:F>", FormatDiscordTimestamp(ts, "F"))
	})

	t.Run("relative style", func(t *testing.T) {
		assert.Equal(t, "<t:1750012200:R>", FormatDiscordTimestamp(ts, "R"))
	})
}
