package stats

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestValidateWindow(t *testing.T) {
	from := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	assert.NoError(t, ValidateWindow(from, from.AddDate(0, 0, 1)))
	assert.NoError(t, ValidateWindow(from, from.AddDate(0, 0, MaxWindowDays)))
	assert.ErrorIs(t, ValidateWindow(from, from), ErrInvalidWindow)
	assert.ErrorIs(t, ValidateWindow(from, from.AddDate(0, 0, -1)), ErrInvalidWindow)
	assert.ErrorIs(t, ValidateWindow(from, from.AddDate(0, 0, MaxWindowDays+1)), ErrInvalidWindow)
}

func TestValidateLimit(t *testing.T) {
	assert.NoError(t, ValidateLimit(1))
	assert.NoError(t, ValidateLimit(MaxTopBooks))
	assert.ErrorIs(t, ValidateLimit(0), ErrInvalidLimit)
	assert.ErrorIs(t, ValidateLimit(MaxTopBooks+1), ErrInvalidLimit)
}
