package engine

import (
	"testing"

	"github.com/nikolaydubina/fpdecimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBookSide_BidOrdering(t *testing.T) {
	side := newBookSide(Buy)

	side.getOrCreate(fpdecimal.FromFloat(99.0))
	side.getOrCreate(fpdecimal.FromFloat(101.0))
	side.getOrCreate(fpdecimal.FromFloat(100.0))

	// Bids: highest price is best.
	best := side.best()
	require.NotNil(t, best)
	assert.True(t, best.Price().Equal(fpdecimal.FromFloat(101.0)))

	var prices []fpdecimal.Decimal
	side.ascend(func(lvl *priceLevel) bool {
		prices = append(prices, lvl.Price())
		return true
	})
	require.Len(t, prices, 3)
	assert.True(t, prices[0].GreaterThan(prices[1]))
	assert.True(t, prices[1].GreaterThan(prices[2]))
}

func TestBookSide_AskOrdering(t *testing.T) {
	side := newBookSide(Sell)

	side.getOrCreate(fpdecimal.FromFloat(101.0))
	side.getOrCreate(fpdecimal.FromFloat(99.0))
	side.getOrCreate(fpdecimal.FromFloat(100.0))

	// Asks: lowest price is best.
	best := side.best()
	require.NotNil(t, best)
	assert.True(t, best.Price().Equal(fpdecimal.FromFloat(99.0)))
}

func TestBookSide_GetOrCreateReusesLevel(t *testing.T) {
	side := newBookSide(Buy)

	a := side.getOrCreate(fpdecimal.FromFloat(100.0))
	b := side.getOrCreate(fpdecimal.FromFloat(100.0))

	assert.Same(t, a, b)
	assert.Equal(t, 1, side.Len())
}

func TestBookSide_RemoveLevel(t *testing.T) {
	side := newBookSide(Sell)

	lvl := side.getOrCreate(fpdecimal.FromFloat(100.0))
	side.getOrCreate(fpdecimal.FromFloat(101.0))
	require.Equal(t, 2, side.Len())

	side.removeLevel(lvl)

	assert.Equal(t, 1, side.Len())
	assert.Nil(t, side.get(fpdecimal.FromFloat(100.0)))

	best := side.best()
	require.NotNil(t, best)
	assert.True(t, best.Price().Equal(fpdecimal.FromFloat(101.0)))
}

func TestBookSide_EmptyBest(t *testing.T) {
	side := newBookSide(Buy)
	assert.Nil(t, side.best())
	assert.Equal(t, 0, side.Len())
}
