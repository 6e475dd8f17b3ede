package controllers

import (
	"net/http"

	"github.com/angelmondragon/storefront/api/middleware"
	"github.com/angelmondragon/storefront/api/responses"
	"github.com/angelmondragon/storefront/api/validators"
	"github.com/angelmondragon/storefront/internal/cart"
	"github.com/angelmondragon/storefront/internal/checkout"
	"github.com/angelmondragon/storefront/internal/session"
	"github.com/angelmondragon/storefront/pkg/enums"
	pkgerrors "github.com/angelmondragon/storefront/pkg/errors"
	"github.com/angelmondragon/storefront/pkg/logger"
)

// CheckoutBegin starts (or restarts) the wizard for a non-empty cart.
func CheckoutBegin(registry *session.Registry, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var resp checkoutResponse
		err := registry.With(r.Context(), middleware.SessionIDFromContext(r.Context()), func(sess *session.Session) error {
			wizard, err := registry.BeginCheckout(sess)
			if err != nil {
				return err
			}
			resp = newCheckoutResponse(sess.ID(), wizard, registry.Pricing())
			return nil
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, resp)
	}
}

// CheckoutFetch renders the wizard as it stands.
func CheckoutFetch(registry *session.Registry, logg *logger.Logger) http.HandlerFunc {
	return withWizard(registry, logg, http.StatusOK, func(r *http.Request, wizard *checkout.Wizard) error {
		return nil
	})
}

// CheckoutSetShipping replaces the shipping form on the shipping stage.
func CheckoutSetShipping(registry *session.Registry, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload shippingRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		withWizard(registry, logg, http.StatusOK, func(r *http.Request, wizard *checkout.Wizard) error {
			return wizard.SetShipping(payload.toForm())
		})(w, r)
	}
}

// CheckoutSetPayment replaces the payment form on the payment stage.
func CheckoutSetPayment(registry *session.Registry, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload paymentRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		withWizard(registry, logg, http.StatusOK, func(r *http.Request, wizard *checkout.Wizard) error {
			return wizard.SetPayment(payload.toForm())
		})(w, r)
	}
}

// CheckoutSetField updates a single field of the current stage's form, the
// way a text input does on every keystroke. An optional stage pins the edit to
// that form so a stale client cannot write into the wrong one.
func CheckoutSetField(registry *session.Registry, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload fieldRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var stage enums.CheckoutStage
		if payload.Stage != "" {
			parsed, err := enums.ParseCheckoutStage(payload.Stage)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid checkout stage").
					WithDetails(map[string]string{"stage": "is invalid"}))
				return
			}
			stage = parsed
		}
		withWizard(registry, logg, http.StatusOK, func(r *http.Request, wizard *checkout.Wizard) error {
			switch stage {
			case "":
				return wizard.SetField(payload.Field, payload.Value)
			case enums.CheckoutStageShipping:
				return wizard.SetShippingField(payload.Field, payload.Value)
			case enums.CheckoutStagePayment:
				return wizard.SetPaymentField(payload.Field, payload.Value)
			}
			return pkgerrors.New(pkgerrors.CodeStateConflict, "review has no editable fields").
				WithDetails(map[string]any{"stage": stage.String()})
		})(w, r)
	}
}

// CheckoutNext validates the current stage and advances. A blocked advance
// answers 400 with the field messages in the error details.
func CheckoutNext(registry *session.Registry, logg *logger.Logger) http.HandlerFunc {
	return withWizard(registry, logg, http.StatusOK, func(r *http.Request, wizard *checkout.Wizard) error {
		_, err := wizard.GoNext(r.Context())
		return err
	})
}

func CheckoutBack(registry *session.Registry, logg *logger.Logger) http.HandlerFunc {
	return withWizard(registry, logg, http.StatusOK, func(r *http.Request, wizard *checkout.Wizard) error {
		return wizard.GoBack(r.Context())
	})
}

// CheckoutPlaceOrder submits the order from the review stage and returns the
// confirmation. The session is held for the whole submission.
func CheckoutPlaceOrder(registry *session.Registry, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var confirmation checkout.Confirmation
		err := registry.With(r.Context(), middleware.SessionIDFromContext(r.Context()), func(sess *session.Session) error {
			wizard, err := sess.Wizard()
			if err != nil {
				return err
			}
			confirmation, err = wizard.PlaceOrder(r.Context())
			return err
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, confirmation)
	}
}

// CheckoutAbandon discards the wizard and its draft. The cart is kept.
func CheckoutAbandon(registry *session.Registry, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		err := registry.With(r.Context(), middleware.SessionIDFromContext(r.Context()), func(sess *session.Session) error {
			if _, err := sess.Wizard(); err != nil {
				return err
			}
			registry.AbandonCheckout(sess)
			return nil
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteNoContent(w)
	}
}

type wizardAction func(r *http.Request, wizard *checkout.Wizard) error

// withWizard runs action against the session's wizard and renders the result.
func withWizard(registry *session.Registry, logg *logger.Logger, status int, action wizardAction) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var resp checkoutResponse
		err := registry.With(r.Context(), middleware.SessionIDFromContext(r.Context()), func(sess *session.Session) error {
			wizard, err := sess.Wizard()
			if err != nil {
				return err
			}
			if err := action(r, wizard); err != nil {
				return err
			}
			resp = newCheckoutResponse(sess.ID(), wizard, registry.Pricing())
			return nil
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, status, resp)
	}
}

type shippingRequest struct {
	FullName string `json:"fullName"`
	Address  string `json:"address"`
	City     string `json:"city"`
	State    string `json:"state"`
	ZipCode  string `json:"zipCode"`
	Phone    string `json:"phone"`
}

func (p shippingRequest) toForm() checkout.ShippingForm {
	return checkout.ShippingForm{
		FullName: p.FullName,
		Address:  p.Address,
		City:     p.City,
		State:    p.State,
		ZipCode:  p.ZipCode,
		Phone:    p.Phone,
	}
}

type paymentRequest struct {
	CardNumber     string `json:"cardNumber"`
	ExpiryDate     string `json:"expiryDate"`
	CVV            string `json:"cvv"`
	CardHolderName string `json:"cardHolderName"`
}

func (p paymentRequest) toForm() checkout.PaymentForm {
	return checkout.PaymentForm{
		CardNumber:     p.CardNumber,
		ExpiryDate:     p.ExpiryDate,
		CVV:            p.CVV,
		CardHolderName: p.CardHolderName,
	}
}

type fieldRequest struct {
	Stage string `json:"stage"`
	Field string `json:"field" validate:"required"`
	Value string `json:"value"`
}

// paymentResponse never echoes the CVV and only shows the masked card.
type paymentResponse struct {
	MaskedCard     string `json:"maskedCard,omitempty"`
	CardLast4      string `json:"cardLast4,omitempty"`
	ExpiryDate     string `json:"expiryDate"`
	HasCVV         bool   `json:"hasCvv"`
	CardHolderName string `json:"cardHolderName"`
}

type reviewResponse struct {
	Shipping       shippingRequest    `json:"shipping"`
	MaskedCard     string             `json:"maskedCard"`
	ExpiryDate     string             `json:"expiryDate"`
	CardHolderName string             `json:"cardHolderName"`
	Lines          []cartLineResponse `json:"lines"`
	Summary        summaryResponse    `json:"summary"`
}

type checkoutResponse struct {
	SessionID    string                 `json:"sessionId"`
	Stage        enums.CheckoutStage    `json:"stage"`
	Step         int                    `json:"step"`
	Steps        int                    `json:"steps"`
	Shipping     shippingRequest        `json:"shipping"`
	Payment      paymentResponse        `json:"payment"`
	Errors       checkout.FieldErrors   `json:"errors"`
	Summary      summaryResponse        `json:"summary"`
	Review       *reviewResponse        `json:"review,omitempty"`
	Completed    bool                   `json:"completed"`
	Confirmation *checkout.Confirmation `json:"confirmation,omitempty"`
}

func newCheckoutResponse(sessionID string, wizard *checkout.Wizard, pricing cart.Pricing) checkoutResponse {
	draft := wizard.Draft()
	resp := checkoutResponse{
		SessionID: sessionID,
		Stage:     draft.Stage,
		Step:      draft.Stage.Position(),
		Steps:     len(enums.CheckoutStages()),
		Shipping:  newShippingResponse(draft.Shipping),
		Payment: paymentResponse{
			MaskedCard:     checkout.MaskCardNumber(draft.Payment.CardNumber),
			CardLast4:      checkout.CardLast4(draft.Payment.CardNumber),
			ExpiryDate:     draft.Payment.ExpiryDate,
			HasCVV:         draft.Payment.CVV != "",
			CardHolderName: draft.Payment.CardHolderName,
		},
		Errors:    wizard.Errors(),
		Summary:   newSummaryResponse(wizard.Summary()),
		Completed: wizard.Completed(),
	}
	if draft.Stage == enums.CheckoutStageReview && !wizard.Completed() {
		review := wizard.Review()
		resp.Review = &reviewResponse{
			Shipping:       newShippingResponse(review.Shipping),
			MaskedCard:     review.MaskedCard,
			ExpiryDate:     review.ExpiryDate,
			CardHolderName: review.CardHolderName,
			Lines:          newLineResponses(review.Lines, pricing),
			Summary:        newSummaryResponse(review.Summary),
		}
	}
	if confirmation, ok := wizard.Confirmation(); ok {
		resp.Confirmation = &confirmation
	}
	return resp
}

func newShippingResponse(form checkout.ShippingForm) shippingRequest {
	return shippingRequest{
		FullName: form.FullName,
		Address:  form.Address,
		City:     form.City,
		State:    form.State,
		ZipCode:  form.ZipCode,
		Phone:    form.Phone,
	}
}
