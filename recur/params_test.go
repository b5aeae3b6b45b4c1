package recur

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseParams(t *testing.T) {
	t.Run("single scalar", func(t *testing.T) {
		params, err := ParseParams("interval:15")
		require.NoError(t, err)
		assert.Equal(t, Params{"interval": {15}}, params)
		assert.Equal(t, 15, params.Int("interval", 1))
	})

	t.Run("multiple keys", func(t *testing.T) {
		params, err := ParseParams("byhour:6;byminute:40")
		require.NoError(t, err)
		assert.Equal(t, Params{"byhour": {6}, "byminute": {40}}, params)
	})

	t.Run("value lists", func(t *testing.T) {
		params, err := ParseParams("bysecond:1;byminute:1,2,4,5")
		require.NoError(t, err)
		assert.Equal(t, []int{1}, params.Values("bysecond"))
		assert.Equal(t, []int{1, 2, 4, 5}, params.Values("byminute"))
	})

	t.Run("malformed token dropped silently", func(t *testing.T) {
		params, err := ParseParams("badtoken")
		require.NoError(t, err)
		assert.Empty(t, params)

		params, err = ParseParams("interval:10;badtoken;byhour:6")
		require.NoError(t, err)
		assert.Equal(t, Params{"interval": {10}, "byhour": {6}}, params)
	})

	t.Run("token with two colons dropped", func(t *testing.T) {
		params, err := ParseParams("byhour:6:7")
		require.NoError(t, err)
		assert.Empty(t, params)
	})

	t.Run("non-integer value rejected", func(t *testing.T) {
		_, err := ParseParams("interval:soon")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "interval")
	})

	t.Run("empty string", func(t *testing.T) {
		params, err := ParseParams("")
		require.NoError(t, err)
		assert.Empty(t, params)
	})
}

func TestParamsAccessors(t *testing.T) {
	params, err := ParseParams("byminute:1,2,4,5")
	require.NoError(t, err)

	assert.True(t, params.Has("byminute"))
	assert.False(t, params.Has("byhour"))
	assert.Equal(t, 1, params.Int("byminute", 0))
	assert.Equal(t, 99, params.Int("missing", 99))
	assert.Nil(t, params.Values("missing"))
}

func TestParseFrequency(t *testing.T) {
	assert.Equal(t, Hourly, ParseFrequency("HOURLY"))
	assert.Equal(t, Weekly, ParseFrequency("weekly"))
	assert.Equal(t, Daily, ParseFrequency(" daily "))
	// Unknown frequencies fall back to Daily.
	assert.Equal(t, Daily, ParseFrequency("FORTNIGHTLY"))
	assert.Equal(t, Daily, ParseFrequency(""))
}
