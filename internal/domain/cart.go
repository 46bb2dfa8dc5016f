package domain

import "github.com/shopspring/decimal"

type Cart struct {
	Lines []CartLine `json:"lines"`
}

type CartLine struct {
	Item     MenuItem `json:"item"`
	Quantity int      `json:"quantity"`
}

func (l CartLine) LineTotal() decimal.Decimal {
	return l.Item.Price.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// Total is always derived from the lines, never stored.
func (c Cart) Total() decimal.Decimal {
	total := decimal.Zero
	for _, l := range c.Lines {
		total = total.Add(l.LineTotal())
	}
	return total
}

// Count is the number of units across all lines.
func (c Cart) Count() int {
	n := 0
	for _, l := range c.Lines {
		n += l.Quantity
	}
	return n
}

func (c Cart) Find(itemID string) (int, bool) {
	for i, l := range c.Lines {
		if l.Item.ID == itemID {
			return i, true
		}
	}
	return -1, false
}
