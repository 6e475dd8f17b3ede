package checkout

import (
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"
)

var (
	zipCodePattern = regexp.MustCompile(`^\d{5}(-\d{4})?$`)
	phonePattern   = regexp.MustCompile(`^\d{10}$`)
	cardPattern    = regexp.MustCompile(`^\d{16}$`)
	expiryPattern  = regexp.MustCompile(`^(0[1-9]|1[0-2])/([0-9]{2})$`)
	cvvPattern     = regexp.MustCompile(`^\d{3,4}$`)

	nonDigits  = regexp.MustCompile(`\D`)
	whitespace = regexp.MustCompile(`\s`)
)

// messages holds the inline text per field and failing tag.
var messages = map[string]map[string]string{
	FieldFullName: {"notblank": "Full name is required"},
	FieldAddress:  {"notblank": "Address is required"},
	FieldCity:     {"notblank": "City is required"},
	FieldState:    {"notblank": "State is required"},
	FieldZipCode: {
		"notblank": "ZIP code is required",
		"zipcode":  "Invalid ZIP code format",
	},
	FieldPhone: {
		"notblank": "Phone number is required",
		"phone10":  "Invalid phone number format",
	},
	FieldCardNumber: {
		"notblank": "Card number is required",
		"card16":   "Invalid card number",
	},
	FieldExpiryDate: {
		"notblank": "Expiry date is required",
		"expiry":   "Invalid expiry date format (MM/YY)",
	},
	FieldCVV: {
		"notblank": "CVV is required",
		"cvv":      "Invalid CVV",
	},
	FieldCardHolderName: {"notblank": "Cardholder name is required"},
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		tag := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if tag == "" {
			return f.Name
		}
		return tag
	})
	mustRegister(v, "notblank", validators.NotBlank)
	mustRegister(v, "zipcode", matchString(zipCodePattern, nil))
	mustRegister(v, "phone10", matchString(phonePattern, nonDigits))
	mustRegister(v, "card16", matchString(cardPattern, whitespace))
	mustRegister(v, "expiry", matchString(expiryPattern, nil))
	mustRegister(v, "cvv", matchString(cvvPattern, nil))
	return v
}

func mustRegister(v *validator.Validate, tag string, fn validator.Func) {
	if err := v.RegisterValidation(tag, fn); err != nil {
		panic(err)
	}
}

// matchString strips every match of strip (when set) before testing pattern.
func matchString(pattern, strip *regexp.Regexp) validator.Func {
	return func(fl validator.FieldLevel) bool {
		value := fl.Field().String()
		if strip != nil {
			value = strip.ReplaceAllString(value, "")
		}
		return pattern.MatchString(value)
	}
}

// ValidateShipping returns the per-field problems with the shipping form.
func ValidateShipping(form ShippingForm) FieldErrors {
	return collect(validate.Struct(form))
}

// ValidatePayment returns the per-field problems with the payment form.
func ValidatePayment(form PaymentForm) FieldErrors {
	return collect(validate.Struct(form))
}

func collect(err error) FieldErrors {
	out := FieldErrors{}
	if err == nil {
		return out
	}
	errs, ok := err.(validator.ValidationErrors)
	if !ok {
		out["form"] = "is invalid"
		return out
	}
	for _, fieldErr := range errs {
		out[fieldErr.Field()] = messageFor(fieldErr.Field(), fieldErr.Tag())
	}
	return out
}

func messageFor(field, tag string) string {
	if byTag, ok := messages[field]; ok {
		if msg, ok := byTag[tag]; ok {
			return msg
		}
	}
	return "is invalid"
}
