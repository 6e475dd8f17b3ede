package checkout

import (
	"context"
	"fmt"
	"time"

	"github.com/angelmondragon/storefront/internal/cart"
	"github.com/angelmondragon/storefront/internal/orders"
	"github.com/angelmondragon/storefront/pkg/enums"
	pkgerrors "github.com/angelmondragon/storefront/pkg/errors"
	"github.com/angelmondragon/storefront/pkg/logger"
	"github.com/angelmondragon/storefront/pkg/metrics"
	"github.com/angelmondragon/storefront/pkg/types"
)

// CartSource is the part of the cart store the wizard depends on.
type CartSource interface {
	Snapshot() cart.Snapshot
	Clear()
}

// WizardParams wires a Wizard to its collaborators.
type WizardParams struct {
	Cart      CartSource
	Pricing   cart.Pricing
	Submitter orders.Submitter
	Logger    *logger.Logger
	Metrics   *metrics.CheckoutMetrics
	Now       func() time.Time
}

// Confirmation is what the confirmation screen shows after a successful order.
type Confirmation struct {
	OrderID   string      `json:"orderId"`
	Total     types.Money `json:"total"`
	ItemCount int         `json:"itemCount"`
	LineCount int         `json:"lineCount"`
	PlacedAt  time.Time   `json:"placedAt"`
}

// Review is the read-only view rendered on the final stage.
type Review struct {
	Shipping       ShippingForm
	MaskedCard     string
	ExpiryDate     string
	CardHolderName string
	Lines          []cart.Line
	Summary        cart.Summary
}

// Wizard walks a buyer through shipping, payment and review, then hands the
// order to a Submitter. It is not safe for concurrent use.
type Wizard struct {
	cart      CartSource
	pricing   cart.Pricing
	submitter orders.Submitter
	logg      *logger.Logger
	metrics   *metrics.CheckoutMetrics
	now       func() time.Time

	draft        Draft
	errors       FieldErrors
	confirmation *Confirmation
}

func NewWizard(params WizardParams) (*Wizard, error) {
	if params.Cart == nil {
		return nil, fmt.Errorf("cart required")
	}
	if params.Submitter == nil {
		return nil, fmt.Errorf("order submitter required")
	}
	if params.Logger == nil {
		params.Logger = logger.Nop()
	}
	if params.Now == nil {
		params.Now = time.Now
	}
	return &Wizard{
		cart:      params.Cart,
		pricing:   params.Pricing,
		submitter: params.Submitter,
		logg:      params.Logger,
		metrics:   params.Metrics,
		now:       params.Now,
		draft:     Draft{Stage: enums.CheckoutStageShipping},
		errors:    FieldErrors{},
	}, nil
}

func (w *Wizard) Stage() enums.CheckoutStage {
	return w.draft.Stage
}

// Draft returns a copy of the collected form data.
func (w *Wizard) Draft() Draft {
	return w.draft
}

// Errors returns the field errors from the last blocked advance, minus any
// fields edited since.
func (w *Wizard) Errors() FieldErrors {
	out := make(FieldErrors, len(w.errors))
	for k, v := range w.errors {
		out[k] = v
	}
	return out
}

// Completed reports whether an order was placed through this wizard.
func (w *Wizard) Completed() bool {
	return w.confirmation != nil
}

// Confirmation returns the placed order, if any.
func (w *Wizard) Confirmation() (Confirmation, bool) {
	if w.confirmation == nil {
		return Confirmation{}, false
	}
	return *w.confirmation, true
}

// SetShipping replaces the shipping form. Only allowed on the shipping stage.
func (w *Wizard) SetShipping(form ShippingForm) error {
	if err := w.requireStage(enums.CheckoutStageShipping); err != nil {
		return err
	}
	w.draft.Shipping = form.normalized()
	w.errors = FieldErrors{}
	return nil
}

// SetPayment replaces the payment form. Only allowed on the payment stage.
func (w *Wizard) SetPayment(form PaymentForm) error {
	if err := w.requireStage(enums.CheckoutStagePayment); err != nil {
		return err
	}
	w.draft.Payment = form.normalized()
	w.errors = FieldErrors{}
	return nil
}

// SetShippingField updates one shipping field and clears its pending error.
func (w *Wizard) SetShippingField(field, value string) error {
	if err := w.requireStage(enums.CheckoutStageShipping); err != nil {
		return err
	}
	if err := w.draft.Shipping.set(field, value); err != nil {
		return err
	}
	delete(w.errors, field)
	return nil
}

// SetPaymentField updates one payment field and clears its pending error.
func (w *Wizard) SetPaymentField(field, value string) error {
	if err := w.requireStage(enums.CheckoutStagePayment); err != nil {
		return err
	}
	if err := w.draft.Payment.set(field, value); err != nil {
		return err
	}
	delete(w.errors, field)
	return nil
}

// SetField routes a single field update to the form of the current stage.
func (w *Wizard) SetField(field, value string) error {
	switch w.draft.Stage {
	case enums.CheckoutStageShipping:
		return w.SetShippingField(field, value)
	case enums.CheckoutStagePayment:
		return w.SetPaymentField(field, value)
	}
	return pkgerrors.New(pkgerrors.CodeStateConflict, "review has no editable fields").
		WithDetails(map[string]any{"stage": w.draft.Stage.String()})
}

// GoNext validates the current stage and advances when it is clean. On a
// validation failure the stage is unchanged and the returned FieldErrors are
// also carried in the error details.
func (w *Wizard) GoNext(ctx context.Context) (FieldErrors, error) {
	if w.Completed() {
		return nil, w.completedError()
	}
	from := w.draft.Stage

	var problems FieldErrors
	switch from {
	case enums.CheckoutStageShipping:
		problems = ValidateShipping(w.draft.Shipping)
	case enums.CheckoutStagePayment:
		problems = ValidatePayment(w.draft.Payment)
	default:
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "review is the last checkout stage").
			WithDetails(map[string]any{"stage": from.String()})
	}

	if !problems.Empty() {
		w.errors = problems
		w.metrics.IncValidationFailure(from.String())
		ctx = w.logg.WithFields(ctx, map[string]any{
			"stage":  from.String(),
			"fields": len(problems),
		})
		w.logg.Debug(ctx, "checkout.stage.blocked")
		return problems, pkgerrors.New(pkgerrors.CodeValidation, "please correct the highlighted fields").
			WithDetails(map[string]string(problems))
	}

	to, _ := from.Next()
	w.draft.Stage = to
	w.errors = FieldErrors{}
	w.metrics.IncStageAdvance(from.String(), to.String())
	w.logTransition(ctx, from, to)
	return nil, nil
}

// GoBack returns to the previous stage without validating. Entered data is kept.
func (w *Wizard) GoBack(ctx context.Context) error {
	if w.Completed() {
		return w.completedError()
	}
	from := w.draft.Stage
	to, ok := from.Previous()
	if !ok {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "shipping is the first checkout stage").
			WithDetails(map[string]any{"stage": from.String()})
	}
	w.draft.Stage = to
	w.errors = FieldErrors{}
	w.metrics.IncStageAdvance(from.String(), to.String())
	w.logTransition(ctx, from, to)
	return nil
}

// Summary prices the cart as it currently stands.
func (w *Wizard) Summary() cart.Summary {
	return w.pricing.Summarize(w.cart.Snapshot())
}

// Review builds the final-stage view with the card masked.
func (w *Wizard) Review() Review {
	snapshot := w.cart.Snapshot()
	return Review{
		Shipping:       w.draft.Shipping,
		MaskedCard:     MaskCardNumber(w.draft.Payment.CardNumber),
		ExpiryDate:     w.draft.Payment.ExpiryDate,
		CardHolderName: w.draft.Payment.CardHolderName,
		Lines:          snapshot.Lines,
		Summary:        w.pricing.Summarize(snapshot),
	}
}

// PlaceOrder submits the order from the review stage. On success the cart is
// cleared and the wizard is finished; on failure or cancellation the cart is
// left as it was and the call may be repeated.
func (w *Wizard) PlaceOrder(ctx context.Context) (Confirmation, error) {
	if w.Completed() {
		return Confirmation{}, w.completedError()
	}
	if err := w.requireStage(enums.CheckoutStageReview); err != nil {
		return Confirmation{}, err
	}
	snapshot := w.cart.Snapshot()
	if snapshot.IsEmpty() {
		return Confirmation{}, pkgerrors.New(pkgerrors.CodeStateConflict, "cart is empty")
	}

	summary := w.pricing.Summarize(snapshot)
	shipping := w.draft.Shipping
	req := orders.Request{
		Lines:   snapshot.Lines,
		Summary: summary,
		ShipTo: orders.Address{
			FullName: shipping.FullName,
			Address:  shipping.Address,
			City:     shipping.City,
			State:    shipping.State,
			ZipCode:  shipping.ZipCode,
			Phone:    shipping.Phone,
		},
		CardLast4:      CardLast4(w.draft.Payment.CardNumber),
		CardHolderName: w.draft.Payment.CardHolderName,
	}

	start := w.now()
	receipt, err := w.submitter.Submit(ctx, req)
	w.metrics.ObserveOrder(w.now().Sub(start), err)
	if err != nil {
		w.logg.Error(ctx, "checkout.order.failed", err)
		return Confirmation{}, err
	}

	w.cart.Clear()
	confirmation := Confirmation{
		OrderID:   receipt.OrderID,
		Total:     summary.Total,
		ItemCount: summary.ItemCount,
		LineCount: summary.LineCount,
		PlacedAt:  receipt.PlacedAt,
	}
	w.confirmation = &confirmation

	ctx = w.logg.WithOrderID(ctx, receipt.OrderID)
	ctx = w.logg.WithField(ctx, "total", summary.Total.Format())
	w.logg.Info(ctx, "checkout.order.placed")
	return confirmation, nil
}

func (w *Wizard) requireStage(stage enums.CheckoutStage) error {
	if w.Completed() {
		return w.completedError()
	}
	if w.draft.Stage != stage {
		return pkgerrors.Newf(pkgerrors.CodeStateConflict, "checkout is not on the %s stage", stage).
			WithDetails(map[string]any{
				"stage":    w.draft.Stage.String(),
				"expected": stage.String(),
			})
	}
	return nil
}

func (w *Wizard) completedError() error {
	return pkgerrors.New(pkgerrors.CodeStateConflict, "order already placed")
}

func (w *Wizard) logTransition(ctx context.Context, from, to enums.CheckoutStage) {
	ctx = w.logg.WithFields(ctx, map[string]any{
		"from": from.String(),
		"to":   to.String(),
	})
	w.logg.Info(ctx, "checkout.stage.changed")
}
