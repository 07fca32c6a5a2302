package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatUnixDay(t *testing.T) {
	// 2024-04-26T07:00:00Z
	assert.Equal(t, "Fri Apr 26 2024", FormatUnixDay(1714114800))
}

func TestFormatLocalDay(t *testing.T) {
	day, err := FormatLocalDay("2024-04-26T19:30:00")
	require.NoError(t, err)
	assert.Equal(t, "Fri Apr 26 2024", day)

	_, err = FormatLocalDay("next friday")
	assert.Error(t, err)
}

func TestPosterURL(t *testing.T) {
	assert.Equal(t, "https://image.tmdb.org/t/p/original/abc.jpg", PosterURL("/abc.jpg"))
	assert.Empty(t, PosterURL(""))
}
