package orders

import (
	"context"
	"time"

	"github.com/angelmondragon/storefront/internal/cart"
)

// Submitter hands a finished checkout to whatever accepts orders.
type Submitter interface {
	Submit(ctx context.Context, req Request) (Receipt, error)
}

// Address is the shipping destination captured by the checkout wizard.
type Address struct {
	FullName string `json:"fullName"`
	Address  string `json:"address"`
	City     string `json:"city"`
	State    string `json:"state"`
	ZipCode  string `json:"zipCode"`
	Phone    string `json:"phone"`
}

// Request is everything needed to place an order. Card data never leaves the
// wizard unmasked.
type Request struct {
	Lines          []cart.Line
	Summary        cart.Summary
	ShipTo         Address
	CardLast4      string
	CardHolderName string
}

// Receipt is returned once an order is accepted.
type Receipt struct {
	OrderID  string
	PlacedAt time.Time
}
