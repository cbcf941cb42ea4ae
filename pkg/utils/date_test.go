package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFeedDate(t *testing.T) {
	testCases := []struct {
		in   string
		want time.Time
	}{
		{"2016.01.05", time.Date(2016, 1, 5, 0, 0, 0, 0, time.UTC)},
		{"05.01.2016", time.Date(2016, 1, 5, 0, 0, 0, 0, time.UTC)},
		{"2016-01-05", time.Date(2016, 1, 5, 0, 0, 0, 0, time.UTC)},
		{" 2016-01-05 ", time.Date(2016, 1, 5, 0, 0, 0, 0, time.UTC)},
		{"2016-01-05 10:30:00", time.Date(2016, 1, 5, 10, 30, 0, 0, time.UTC)},
		{"2016-01-05T10:30:00Z", time.Date(2016, 1, 5, 10, 30, 0, 0, time.UTC)},
	}

	for _, tc := range testCases {
		t.Run(tc.in, func(t *testing.T) {
			got, err := ParseFeedDate(tc.in)
			require.NoError(t, err)
			assert.True(t, tc.want.Equal(got), "got %s", got)
		})
	}
}

func TestParseFeedDate_Invalid(t *testing.T) {
	for _, in := range []string{"", "yesterday", "2016/01/05", "32.01.2016"} {
		_, err := ParseFeedDate(in)
		assert.Error(t, err, in)
	}
}

func TestFormatDate(t *testing.T) {
	assert.Equal(t, "2016-01-05", FormatDate(time.Date(2016, 1, 5, 23, 59, 0, 0, time.UTC)))
}
