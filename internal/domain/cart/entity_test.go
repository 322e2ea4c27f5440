package cart

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestValidateQuantity(t *testing.T) {
	for _, q := range []int{1, 10, 999} {
		assert.NoError(t, ValidateQuantity(q), q)
	}
	for _, q := range []int{-1, 0, 1000} {
		assert.ErrorIs(t, ValidateQuantity(q), ErrInvalidQuantity, q)
	}
}

func TestSubtotalAndSum(t *testing.T) {
	a := NewItem(1, 1, 3, decimal.NewFromInt(10000), "CNY")
	b := NewItem(1, 2, 2, decimal.RequireFromString("0.10"), "CNY")

	assert.True(t, a.Subtotal().Equal(decimal.NewFromInt(30000)))
	assert.True(t, Sum([]*Item{a, b}).Equal(decimal.RequireFromString("30000.20")))
	assert.True(t, Sum(nil).IsZero())
}

func TestNewCart(t *testing.T) {
	c := NewCart(7)
	assert.True(t, c.IsActive())
	c.Status = StatusCheckedOut
	assert.False(t, c.IsActive())
}
