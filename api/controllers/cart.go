package controllers

import (
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/storefront/api/middleware"
	"github.com/angelmondragon/storefront/api/responses"
	"github.com/angelmondragon/storefront/api/validators"
	"github.com/angelmondragon/storefront/internal/cart"
	"github.com/angelmondragon/storefront/internal/session"
	pkgerrors "github.com/angelmondragon/storefront/pkg/errors"
	"github.com/angelmondragon/storefront/pkg/logger"
	"github.com/angelmondragon/storefront/pkg/types"
)

const lineIDParam = "lineId"

// CartFetch returns the session cart with its priced summary.
func CartFetch(registry *session.Registry, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var resp cartResponse
		err := registry.With(r.Context(), middleware.SessionIDFromContext(r.Context()), func(sess *session.Session) error {
			resp = newCartResponse(sess.ID(), sess.Cart().Snapshot(), registry.Pricing())
			return nil
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, resp)
	}
}

// CartAddItem adds a product to the cart, merging with an existing line.
func CartAddItem(registry *session.Registry, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload addItemRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var resp cartResponse
		err := registry.With(r.Context(), middleware.SessionIDFromContext(r.Context()), func(sess *session.Session) error {
			if _, err := sess.Cart().AddItem(payload.toProduct(), payload.quantity()); err != nil {
				return err
			}
			resp = newCartResponse(sess.ID(), sess.Cart().Snapshot(), registry.Pricing())
			return nil
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, resp)
	}
}

// CartUpdateItem sets a line quantity or steps it by one.
func CartUpdateItem(registry *session.Registry, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		lineID, err := lineIDFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var payload updateItemRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var resp cartResponse
		err = registry.With(r.Context(), middleware.SessionIDFromContext(r.Context()), func(sess *session.Session) error {
			store := sess.Cart()
			var err error
			switch {
			case payload.Action == actionIncrement:
				_, err = store.Increment(lineID)
			case payload.Action == actionDecrement:
				_, err = store.Decrement(lineID)
			case payload.Quantity != nil:
				_, err = store.UpdateQuantity(lineID, *payload.Quantity)
			default:
				err = pkgerrors.New(pkgerrors.CodeValidation, "quantity or action required").
					WithDetails(map[string]string{"quantity": "is required"})
			}
			if err != nil {
				return err
			}
			resp = newCartResponse(sess.ID(), store.Snapshot(), registry.Pricing())
			return nil
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, resp)
	}
}

// CartRemoveItem drops a line. Removing an unknown line is not an error.
func CartRemoveItem(registry *session.Registry, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		lineID, err := lineIDFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var resp cartResponse
		err = registry.With(r.Context(), middleware.SessionIDFromContext(r.Context()), func(sess *session.Session) error {
			sess.Cart().RemoveItem(lineID)
			resp = newCartResponse(sess.ID(), sess.Cart().Snapshot(), registry.Pricing())
			return nil
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, resp)
	}
}

// CartClear empties the cart.
func CartClear(registry *session.Registry, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var resp cartResponse
		err := registry.With(r.Context(), middleware.SessionIDFromContext(r.Context()), func(sess *session.Session) error {
			sess.Cart().Clear()
			resp = newCartResponse(sess.ID(), sess.Cart().Snapshot(), registry.Pricing())
			return nil
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, resp)
	}
}

const (
	actionIncrement = "increment"
	actionDecrement = "decrement"
)

type addItemRequest struct {
	ProductID string          `json:"productId" validate:"required"`
	Name      string          `json:"name" validate:"required"`
	Variant   string          `json:"variant"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
	Quantity  *int            `json:"quantity" validate:"omitempty,min=1,max=999"`
	ImageRef  string          `json:"imageRef"`
}

func (p addItemRequest) toProduct() cart.Product {
	return cart.Product{
		ID:        p.ProductID,
		Name:      p.Name,
		Variant:   p.Variant,
		UnitPrice: p.UnitPrice,
		ImageRef:  p.ImageRef,
	}
}

func (p addItemRequest) quantity() int {
	if p.Quantity == nil {
		return 1
	}
	return *p.Quantity
}

type updateItemRequest struct {
	Quantity *int   `json:"quantity" validate:"omitempty,max=999"`
	Action   string `json:"action" validate:"omitempty,oneof=increment decrement"`
}

type cartLineResponse struct {
	ID        string      `json:"id"`
	ProductID string      `json:"productId"`
	Name      string      `json:"name"`
	Variant   string      `json:"variant,omitempty"`
	UnitPrice types.Money `json:"unitPrice"`
	Quantity  int         `json:"quantity"`
	LineTotal types.Money `json:"lineTotal"`
	ImageRef  string      `json:"imageRef,omitempty"`
}

type summaryResponse struct {
	Subtotal  types.Money `json:"subtotal"`
	Shipping  types.Money `json:"shipping"`
	Total     types.Money `json:"total"`
	ItemCount int         `json:"itemCount"`
	LineCount int         `json:"lineCount"`
}

type cartResponse struct {
	SessionID string             `json:"sessionId"`
	Lines     []cartLineResponse `json:"lines"`
	Summary   summaryResponse    `json:"summary"`
}

func newCartResponse(sessionID string, snapshot cart.Snapshot, pricing cart.Pricing) cartResponse {
	return cartResponse{
		SessionID: sessionID,
		Lines:     newLineResponses(snapshot.Lines, pricing),
		Summary:   newSummaryResponse(pricing.Summarize(snapshot)),
	}
}

func newLineResponses(lines []cart.Line, pricing cart.Pricing) []cartLineResponse {
	out := make([]cartLineResponse, 0, len(lines))
	for _, line := range lines {
		out = append(out, cartLineResponse{
			ID:        line.ID,
			ProductID: line.ProductID,
			Name:      line.Name,
			Variant:   line.Variant,
			UnitPrice: types.NewMoney(line.UnitPrice, pricing.Currency),
			Quantity:  line.Quantity,
			LineTotal: types.NewMoney(line.LineTotal(), pricing.Currency),
			ImageRef:  line.ImageRef,
		})
	}
	return out
}

func newSummaryResponse(summary cart.Summary) summaryResponse {
	return summaryResponse{
		Subtotal:  summary.Subtotal,
		Shipping:  summary.Shipping,
		Total:     summary.Total,
		ItemCount: summary.ItemCount,
		LineCount: summary.LineCount,
	}
}

// lineIDFromRequest reads the {lineId} segment. Variant lines carry a '#'
// that clients send as %23. chi matches on the decoded path unless the URL
// kept a distinct RawPath, so only that case still needs unescaping.
func lineIDFromRequest(r *http.Request) (string, error) {
	lineID := chi.URLParam(r, lineIDParam)
	var err error
	if r.URL.RawPath != "" {
		lineID, err = url.PathUnescape(lineID)
	}
	if err != nil || lineID == "" {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "invalid line id").
			WithDetails(map[string]string{lineIDParam: "is invalid"})
	}
	return lineID, nil
}
