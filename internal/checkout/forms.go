package checkout

import (
	"github.com/angelmondragon/storefront/pkg/enums"
	pkgerrors "github.com/angelmondragon/storefront/pkg/errors"
)

// Shipping form field names, as reported in FieldErrors.
const (
	FieldFullName = "fullName"
	FieldAddress  = "address"
	FieldCity     = "city"
	FieldState    = "state"
	FieldZipCode  = "zipCode"
	FieldPhone    = "phone"
)

// Payment form field names, as reported in FieldErrors.
const (
	FieldCardNumber     = "cardNumber"
	FieldExpiryDate     = "expiryDate"
	FieldCVV            = "cvv"
	FieldCardHolderName = "cardHolderName"
)

// ShippingForm is the first wizard stage.
type ShippingForm struct {
	FullName string `json:"fullName" validate:"notblank"`
	Address  string `json:"address" validate:"notblank"`
	City     string `json:"city" validate:"notblank"`
	State    string `json:"state" validate:"notblank"`
	ZipCode  string `json:"zipCode" validate:"notblank,zipcode"`
	Phone    string `json:"phone" validate:"notblank,phone10"`
}

// PaymentForm is the second wizard stage.
type PaymentForm struct {
	CardNumber     string `json:"cardNumber" validate:"notblank,card16"`
	ExpiryDate     string `json:"expiryDate" validate:"notblank,expiry"`
	CVV            string `json:"cvv" validate:"notblank,cvv"`
	CardHolderName string `json:"cardHolderName" validate:"notblank"`
}

// Draft is the unpersisted data collected while the wizard is open.
type Draft struct {
	Stage    enums.CheckoutStage
	Shipping ShippingForm
	Payment  PaymentForm
}

// FieldErrors maps a form field name to a message suitable for inline display.
type FieldErrors map[string]string

func (f FieldErrors) Empty() bool {
	return len(f) == 0
}

func (f *ShippingForm) set(field, value string) error {
	switch field {
	case FieldFullName:
		f.FullName = value
	case FieldAddress:
		f.Address = value
	case FieldCity:
		f.City = value
	case FieldState:
		f.State = value
	case FieldZipCode:
		f.ZipCode = value
	case FieldPhone:
		f.Phone = FormatPhoneNumber(value)
	default:
		return unknownFieldError(enums.CheckoutStageShipping, field)
	}
	return nil
}

func (f *PaymentForm) set(field, value string) error {
	switch field {
	case FieldCardNumber:
		f.CardNumber = FormatCardNumber(value)
	case FieldExpiryDate:
		f.ExpiryDate = FormatExpiryDate(value)
	case FieldCVV:
		f.CVV = value
	case FieldCardHolderName:
		f.CardHolderName = value
	default:
		return unknownFieldError(enums.CheckoutStagePayment, field)
	}
	return nil
}

// normalized applies the input masks that set applies per field.
func (f ShippingForm) normalized() ShippingForm {
	f.Phone = FormatPhoneNumber(f.Phone)
	return f
}

func (f PaymentForm) normalized() PaymentForm {
	f.CardNumber = FormatCardNumber(f.CardNumber)
	f.ExpiryDate = FormatExpiryDate(f.ExpiryDate)
	return f
}

func unknownFieldError(stage enums.CheckoutStage, field string) error {
	return pkgerrors.New(pkgerrors.CodeValidation, "unknown form field").WithDetails(map[string]any{
		"stage": stage.String(),
		"field": field,
	})
}
