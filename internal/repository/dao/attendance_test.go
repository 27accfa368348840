package dao

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDate_Scan(t *testing.T) {
	t.Run("time.Time from the driver keeps the calendar shape", func(t *testing.T) {
		var d Date

		require.NoError(t, d.Scan(time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)))

		assert.Equal(t, Date("2026-09-01"), d)
	})

	t.Run("string passes through unchanged", func(t *testing.T) {
		var d Date

		require.NoError(t, d.Scan("2026-09-01"))

		assert.Equal(t, Date("2026-09-01"), d)
	})

	t.Run("byte slice passes through unchanged", func(t *testing.T) {
		var d Date

		require.NoError(t, d.Scan([]byte("2026-09-01")))

		assert.Equal(t, Date("2026-09-01"), d)
	})

	t.Run("unsupported column type", func(t *testing.T) {
		var d Date

		assert.Error(t, d.Scan(42))
	})
}

func TestDate_Value(t *testing.T) {
	v, err := Date("2026-09-01").Value()

	require.NoError(t, err)
	assert.Equal(t, "2026-09-01", v)
}
