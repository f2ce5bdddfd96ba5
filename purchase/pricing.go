package purchase

import (
	"math"
	"sort"
	"strconv"
	"strings"
)

// ParsePrice reads a price cell such as "1,280". Blank or invalid => 0.
func ParsePrice(s string) float64 {
	s = strings.TrimSpace(strings.ReplaceAll(s, ",", ""))
	if s == "" {
		return 0
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsInf(v, 0) || math.IsNaN(v) {
		return 0
	}
	return v
}

func (b Book) minQuantity() float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(b.GroupPrice.MinQuantity), 64)
	if err != nil {
		return 0
	}
	return v
}

// CurrentPrice is what one copy costs when totalOrdered copies are on order:
// the group price once its threshold is met (or when it has none), otherwise
// the single price, then the group price, then the list price.
func (b Book) CurrentPrice(totalOrdered int) float64 {
	return b.price(float64(totalOrdered), true)
}

// ListPrice is CurrentPrice without knowledge of the order count.
func (b Book) ListPrice() float64 { return b.price(0, false) }

func (b Book) price(total float64, known bool) float64 {
	group := ParsePrice(b.GroupPrice.Price)
	one := ParsePrice(b.OnePrice)
	minQty := b.minQuantity()
	reached := known && total >= minQty

	switch {
	case group > 0 && (minQty <= 0 || reached):
		return group
	case one > 0:
		return one
	case group > 0:
		return group
	}
	return ParsePrice(b.BasePrice)
}

// PriceLabels lists the available prices, the applicable one first and
// tagged "(目前價格)". A book without prices yields ["-"].
func (b Book) PriceLabels(totalOrdered int) []string {
	return b.labels(float64(totalOrdered), true)
}

// ListPriceLabels is PriceLabels without knowledge of the order count.
func (b Book) ListPriceLabels() []string { return b.labels(0, false) }

func (b Book) labels(total float64, known bool) []string {
	minQty := b.minQuantity()
	reached := known && total >= minQty

	type item struct {
		label    string
		priority int
	}
	var items []item
	if b.OnePrice != "" {
		p := 1
		if reached {
			p = 2
		}
		items = append(items, item{"單購價 " + formatPrice(b.OnePrice), p})
	}
	if b.GroupPrice.Price != "" {
		threshold := ""
		if minQty > 0 {
			threshold = " (滿" + strconv.FormatFloat(minQty, 'f', -1, 64) + "本)"
		}
		p := 2
		if reached {
			p = 1
		}
		items = append(items, item{"團體價 " + formatPrice(b.GroupPrice.Price) + threshold, p})
	}
	if b.BasePrice != "" {
		items = append(items, item{"定價 " + formatPrice(b.BasePrice), 3})
	}
	if len(items) == 0 {
		return []string{"-"}
	}

	sort.SliceStable(items, func(i, j int) bool { return items[i].priority < items[j].priority })
	items[0].label += " (目前價格)"
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.label
	}
	return out
}

func formatPrice(v string) string { return "NT$ " + v }

// OrdersTotal sums the current price of every order, each at its own count.
func OrdersTotal(orders []Order) float64 {
	var sum float64
	for _, o := range orders {
		sum += o.Book.CurrentPrice(o.TotalOrdered)
	}
	return sum
}
