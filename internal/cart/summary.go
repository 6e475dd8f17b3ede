package cart

import (
	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"

	"github.com/angelmondragon/storefront/pkg/types"
)

// Pricing turns a snapshot into the totals shown on the cart and review
// screens. Shipping is a flat fee charged only when the cart has lines.
type Pricing struct {
	Currency    currency.Unit
	ShippingFee decimal.Decimal
}

// Summary holds the money values derived from a cart snapshot.
type Summary struct {
	Subtotal  types.Money
	Shipping  types.Money
	Total     types.Money
	ItemCount int
	LineCount int
}

func (p Pricing) Summarize(snapshot Snapshot) Summary {
	shipping := decimal.Zero
	if !snapshot.IsEmpty() {
		shipping = p.ShippingFee
	}
	subtotal := types.NewMoney(snapshot.Subtotal, p.Currency)
	fee := types.NewMoney(shipping, p.Currency)
	// both amounts carry p.Currency, so Add cannot report a mismatch
	total, _ := subtotal.Add(fee)
	return Summary{
		Subtotal:  subtotal,
		Shipping:  fee,
		Total:     total,
		ItemCount: snapshot.ItemCount,
		LineCount: snapshot.LineCount,
	}
}
