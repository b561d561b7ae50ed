package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
)

func TestInitConfigDefaults(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	InitConfig()

	assert.Equal(t, 20, PageSize)
	assert.Equal(t, 3, RetryAttempts)
	assert.Equal(t, time.Second, RetryDelay)
	assert.Equal(t, 300*time.Millisecond, DebounceWindow)
	assert.True(t, CacheEnabled)
	assert.Equal(t, 256, MaxSessions)
	assert.Empty(t, GoogleBooksAPIKey)
	assert.Empty(t, TrendingTerms)
	assert.Equal(t, "sqlite", viper.GetString("catalog.backend"))
	assert.Equal(t, time.Hour, viper.GetDuration("cache.ttl"))
}

func TestInitConfigOverrides(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	viper.Set("search.pagesize", 10)
	viper.Set("providers.retrydelay", "250ms")
	viper.Set("googlebooks.apikey", "abc")
	viper.Set("suggest.trending", []string{"fantasy", "poetry"})

	InitConfig()

	assert.Equal(t, 10, PageSize)
	assert.Equal(t, 250*time.Millisecond, RetryDelay)
	assert.Equal(t, "abc", GoogleBooksAPIKey)
	assert.Equal(t, []string{"fantasy", "poetry"}, TrendingTerms)
}

func TestSetPageSize(t *testing.T) {
	original := PageSize
	t.Cleanup(func() { PageSize = original })

	testCases := []struct {
		name     string
		input    int
		start    int
		expected int
	}{
		{name: "positive value", input: 5, start: 20, expected: 5},
		{name: "zero ignored", input: 0, start: 20, expected: 20},
		{name: "negative ignored", input: -3, start: 7, expected: 7},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			PageSize = tc.start
			SetPageSize(tc.input)
			assert.Equal(t, tc.expected, PageSize)
		})
	}
}
