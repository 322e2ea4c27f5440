package shared

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewPage(t *testing.T) {
	assert.Equal(t, Page{Page: 1, Size: DefaultPageSize}, NewPage(0, 0))
	assert.Equal(t, Page{Page: 3, Size: MaxPageSize}, NewPage(3, 1000))
	assert.Equal(t, 20, NewPage(3, 10).Offset())
}
