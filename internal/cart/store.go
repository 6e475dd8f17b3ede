package cart

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/angelmondragon/storefront/pkg/enums"
	pkgerrors "github.com/angelmondragon/storefront/pkg/errors"
)

const variantSeparator = "#"

// MaxLineQuantity caps the units held on a single line.
const MaxLineQuantity = 999

// Product is the catalog data a detail screen hands to the cart.
type Product struct {
	ID        string
	Name      string
	Variant   string
	UnitPrice decimal.Decimal
	ImageRef  string
}

// Line is one distinct product (and variant) in the cart.
type Line struct {
	ID        string
	ProductID string
	Name      string
	Variant   string
	UnitPrice decimal.Decimal
	Quantity  int
	ImageRef  string
}

// LineTotal is unit price times quantity.
func (l Line) LineTotal() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// Snapshot is a read-only copy of the cart handed to renderers and observers.
type Snapshot struct {
	Lines     []Line
	ItemCount int
	LineCount int
	Subtotal  decimal.Decimal
}

// IsEmpty reports whether the snapshot holds no lines.
func (s Snapshot) IsEmpty() bool {
	return len(s.Lines) == 0
}

// Change describes a completed mutation together with the resulting state.
type Change struct {
	Op       enums.CartMutation
	LineID   string
	Snapshot Snapshot
}

// Observer is invoked synchronously after every mutation.
type Observer func(Change)

type subscription struct {
	id int
	fn Observer
}

// Store owns the cart lines for a single shopper. It has exactly one writer
// at a time and carries no locking of its own.
type Store struct {
	lines     []Line
	index     map[string]int
	observers []subscription
	nextSubID int
}

func NewStore() *Store {
	return &Store{index: map[string]int{}}
}

// LineID derives the cart key for a product and optional variant.
func LineID(productID, variant string) string {
	productID = strings.TrimSpace(productID)
	variant = strings.TrimSpace(variant)
	if variant == "" {
		return productID
	}
	return productID + variantSeparator + variant
}

// AddItem increments the existing line for the product or appends a new one.
func (s *Store) AddItem(product Product, quantity int) (Line, error) {
	if strings.TrimSpace(product.ID) == "" {
		return Line{}, pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
	}
	if strings.Contains(product.ID, variantSeparator) {
		return Line{}, pkgerrors.Newf(pkgerrors.CodeValidation, "product id must not contain %q", variantSeparator)
	}
	if product.UnitPrice.IsNegative() {
		return Line{}, pkgerrors.New(pkgerrors.CodeValidation, "unit price must be non-negative")
	}
	if quantity < 1 || quantity > MaxLineQuantity {
		return Line{}, quantityError(quantity)
	}

	id := LineID(product.ID, product.Variant)
	if i, ok := s.index[id]; ok {
		if quantity > MaxLineQuantity-s.lines[i].Quantity {
			return Line{}, quantityError(s.lines[i].Quantity + quantity)
		}
		s.lines[i].Quantity += quantity
		line := s.lines[i]
		s.notify(enums.CartMutationAdd, id)
		return line, nil
	}

	line := Line{
		ID:        id,
		ProductID: strings.TrimSpace(product.ID),
		Name:      product.Name,
		Variant:   strings.TrimSpace(product.Variant),
		UnitPrice: product.UnitPrice,
		Quantity:  quantity,
		ImageRef:  product.ImageRef,
	}
	s.lines = append(s.lines, line)
	s.index[id] = len(s.lines) - 1
	s.notify(enums.CartMutationAdd, id)
	return line, nil
}

// UpdateQuantity sets a line's quantity. Values below one are rejected and
// leave the cart untouched; use RemoveItem to drop a line.
func (s *Store) UpdateQuantity(id string, quantity int) (Line, error) {
	i, ok := s.index[id]
	if !ok {
		return Line{}, pkgerrors.Newf(pkgerrors.CodeNotFound, "cart line %q not found", id)
	}
	if quantity < 1 || quantity > MaxLineQuantity {
		return Line{}, quantityError(quantity)
	}
	if s.lines[i].Quantity == quantity {
		return s.lines[i], nil
	}
	s.lines[i].Quantity = quantity
	line := s.lines[i]
	s.notify(enums.CartMutationUpdate, id)
	return line, nil
}

// Increment adds one unit to the line.
func (s *Store) Increment(id string) (Line, error) {
	line, ok := s.Line(id)
	if !ok {
		return Line{}, pkgerrors.Newf(pkgerrors.CodeNotFound, "cart line %q not found", id)
	}
	return s.UpdateQuantity(id, line.Quantity+1)
}

// Decrement removes one unit; it fails at quantity one instead of removing.
func (s *Store) Decrement(id string) (Line, error) {
	line, ok := s.Line(id)
	if !ok {
		return Line{}, pkgerrors.Newf(pkgerrors.CodeNotFound, "cart line %q not found", id)
	}
	return s.UpdateQuantity(id, line.Quantity-1)
}

// RemoveItem deletes the line and reports whether anything was removed.
func (s *Store) RemoveItem(id string) bool {
	i, ok := s.index[id]
	if !ok {
		return false
	}
	s.lines = append(s.lines[:i], s.lines[i+1:]...)
	s.reindex()
	s.notify(enums.CartMutationRemove, id)
	return true
}

// Clear empties the cart.
func (s *Store) Clear() {
	s.lines = nil
	s.index = map[string]int{}
	s.notify(enums.CartMutationClear, "")
}

// Total is the subtotal: the sum of unit price times quantity.
func (s *Store) Total() decimal.Decimal {
	total := decimal.Zero
	for _, line := range s.lines {
		total = total.Add(line.LineTotal())
	}
	return total
}

// ItemCount is the number of units across all lines.
func (s *Store) ItemCount() int {
	count := 0
	for _, line := range s.lines {
		count += line.Quantity
	}
	return count
}

// LineCount is the number of distinct lines.
func (s *Store) LineCount() int {
	return len(s.lines)
}

func (s *Store) IsEmpty() bool {
	return len(s.lines) == 0
}

// Line returns a copy of the line with the given id.
func (s *Store) Line(id string) (Line, bool) {
	i, ok := s.index[id]
	if !ok {
		return Line{}, false
	}
	return s.lines[i], true
}

// Snapshot copies the current lines in display order.
func (s *Store) Snapshot() Snapshot {
	lines := make([]Line, len(s.lines))
	copy(lines, s.lines)
	return Snapshot{
		Lines:     lines,
		ItemCount: s.ItemCount(),
		LineCount: s.LineCount(),
		Subtotal:  s.Total(),
	}
}

// Subscribe registers an observer and returns a function that removes it.
func (s *Store) Subscribe(fn Observer) func() {
	if fn == nil {
		return func() {}
	}
	s.nextSubID++
	id := s.nextSubID
	s.observers = append(s.observers, subscription{id: id, fn: fn})
	return func() {
		for i, sub := range s.observers {
			if sub.id == id {
				s.observers = append(s.observers[:i:i], s.observers[i+1:]...)
				return
			}
		}
	}
}

func (s *Store) notify(op enums.CartMutation, lineID string) {
	if len(s.observers) == 0 {
		return
	}
	change := Change{Op: op, LineID: lineID, Snapshot: s.Snapshot()}
	observers := make([]subscription, len(s.observers))
	copy(observers, s.observers)
	for _, sub := range observers {
		sub.fn(change)
	}
}

func (s *Store) reindex() {
	s.index = make(map[string]int, len(s.lines))
	for i, line := range s.lines {
		s.index[line.ID] = i
	}
}

func quantityError(quantity int) error {
	msg := "quantity must be at least 1"
	if quantity > MaxLineQuantity {
		msg = fmt.Sprintf("quantity must be at most %d", MaxLineQuantity)
	}
	return pkgerrors.New(pkgerrors.CodeValidation, msg).WithDetails(map[string]any{
		"quantity": quantity,
	})
}
