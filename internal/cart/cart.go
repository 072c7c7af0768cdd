package cart

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AddOnSelection snapshots one add-on the guest picked for a line. Prices are
// copied at selection time so later menu edits never reprice an open cart.
type AddOnSelection struct {
	GroupName string          `json:"group_name"`
	ItemName  string          `json:"item_name"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Quantity  int             `json:"quantity"`
}

// Line is one cart entry. ID is minted per add, so the same product added
// twice yields two independent lines.
type Line struct {
	ID          uuid.UUID        `json:"id"`
	ProductID   uuid.UUID        `json:"product_id"`
	ProductName string           `json:"product_name"`
	UnitPrice   decimal.Decimal  `json:"unit_price"`
	Quantity    int              `json:"quantity"`
	Notes       string           `json:"notes,omitempty"`
	AddOns      []AddOnSelection `json:"add_ons,omitempty"`
}

// Subtotal prices the line: the unit price plus all add-ons, times the line
// quantity. Always computed, never stored.
func (l Line) Subtotal() decimal.Decimal {
	unit := l.UnitPrice
	for _, a := range l.AddOns {
		unit = unit.Add(a.UnitPrice.Mul(decimal.NewFromInt(int64(a.Quantity))))
	}
	return unit.Mul(decimal.NewFromInt(int64(l.Quantity))).Round(2)
}

// Cart is the full persisted cart for one guest device.
type Cart struct {
	Lines []Line `json:"lines"`
}

// Total sums all line subtotals, rounded to cents.
func (c Cart) Total() decimal.Decimal {
	total := decimal.Zero
	for _, l := range c.Lines {
		total = total.Add(l.Subtotal())
	}
	return total.Round(2)
}

// ItemCount is the number of units across every line.
func (c Cart) ItemCount() int {
	count := 0
	for _, l := range c.Lines {
		count += l.Quantity
	}
	return count
}

func (c Cart) IsEmpty() bool {
	return len(c.Lines) == 0
}

func (c *Cart) line(id uuid.UUID) (int, bool) {
	for i := range c.Lines {
		if c.Lines[i].ID == id {
			return i, true
		}
	}
	return 0, false
}
