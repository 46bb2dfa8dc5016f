package domain

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestCart_TotalAndCount(t *testing.T) {
	cart := Cart{Lines: []CartLine{
		{Item: MenuItem{ID: "a", Price: decimal.NewFromInt(50000)}, Quantity: 2},
		{Item: MenuItem{ID: "b", Price: decimal.NewFromInt(30000)}, Quantity: 1},
	}}

	assert.True(t, decimal.NewFromInt(130000).Equal(cart.Total()))
	assert.Equal(t, 3, cart.Count())
}

func TestCart_EmptyTotalIsZero(t *testing.T) {
	assert.True(t, Cart{}.Total().IsZero())
	assert.Equal(t, 0, Cart{}.Count())
}

func TestCart_Find(t *testing.T) {
	cart := Cart{Lines: []CartLine{
		{Item: MenuItem{ID: "a"}, Quantity: 1},
		{Item: MenuItem{ID: "b"}, Quantity: 1},
	}}

	i, ok := cart.Find("b")
	assert.True(t, ok)
	assert.Equal(t, 1, i)

	_, ok = cart.Find("zzz")
	assert.False(t, ok)
}

func TestCartLine_LineTotal_Fractional(t *testing.T) {
	line := CartLine{Item: MenuItem{Price: decimal.RequireFromString("12.50")}, Quantity: 3}
	assert.Equal(t, "37.5", line.LineTotal().String())
}
