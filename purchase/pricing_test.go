package purchase

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParsePrice(t *testing.T) {
	cases := map[string]float64{
		"":        0,
		"1,280":   1280,
		" 350 ":   350,
		"abc":     0,
		"Inf":     0,
		"199.5":   199.5,
		"1,0,0,0": 1000,
	}
	for in, want := range cases {
		assert.Equal(t, want, ParsePrice(in), "ParsePrice(%q)", in)
	}
}

func TestCurrentPrice(t *testing.T) {
	withThreshold := Book{OnePrice: "350", GroupPrice: GroupPrice{Price: "300", MinQuantity: "10"}, BasePrice: "400"}
	assert.Equal(t, 350.0, withThreshold.CurrentPrice(9))
	assert.Equal(t, 300.0, withThreshold.CurrentPrice(10))
	assert.Equal(t, 350.0, withThreshold.ListPrice())

	noThreshold := Book{OnePrice: "350", GroupPrice: GroupPrice{Price: "300"}}
	assert.Equal(t, 300.0, noThreshold.ListPrice())

	groupOnly := Book{GroupPrice: GroupPrice{Price: "250", MinQuantity: "30"}, BasePrice: "500"}
	assert.Equal(t, 250.0, groupOnly.CurrentPrice(1), "group price beats list price even below threshold")

	baseOnly := Book{BasePrice: "1,200"}
	assert.Equal(t, 1200.0, baseOnly.CurrentPrice(5))
}

func TestPriceLabels(t *testing.T) {
	b := Book{OnePrice: "350", GroupPrice: GroupPrice{Price: "300", MinQuantity: "10"}, BasePrice: "400"}

	assert.Equal(t, []string{
		"單購價 NT$ 350 (目前價格)",
		"團體價 NT$ 300 (滿10本)",
		"定價 NT$ 400",
	}, b.PriceLabels(3))

	assert.Equal(t, []string{
		"團體價 NT$ 300 (滿10本) (目前價格)",
		"單購價 NT$ 350",
		"定價 NT$ 400",
	}, b.PriceLabels(12))

	assert.Equal(t, "單購價 NT$ 350 (目前價格)", b.ListPriceLabels()[0])
	assert.Equal(t, []string{"-"}, Book{}.ListPriceLabels())
	assert.Equal(t, []string{"定價 NT$ 500 (目前價格)"}, Book{BasePrice: "500"}.PriceLabels(0))
}

func TestOrdersTotal(t *testing.T) {
	orders := []Order{
		{Book: Book{OnePrice: "350", GroupPrice: GroupPrice{Price: "300", MinQuantity: "2"}}, TotalOrdered: 2},
		{Book: Book{BasePrice: "1,000"}, TotalOrdered: 1},
	}
	assert.Equal(t, 1300.0, OrdersTotal(orders))
}
