package seller

import (
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"

	"github.com/angelmondragon/storefront/pkg/enums"
)

// SubmitField carries registration failures that are not tied to one input.
const SubmitField = "submit"

// Application is the become-a-seller form.
type Application struct {
	StoreName   string           `json:"storeName" validate:"notblank"`
	Description string           `json:"description" validate:"notblank"`
	Phone       string           `json:"phone" validate:"notblank"`
	Address     string           `json:"address" validate:"notblank"`
	Plan        enums.SellerPlan `json:"plan" validate:"sellerplan"`
}

var applicationMessages = map[string]string{
	"storeName":   "Store name is required",
	"description": "Description is required",
	"phone":       "Phone number is required",
	"address":     "Address is required",
	"plan":        "Please select a subscription plan",
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
	if err := v.RegisterValidation("notblank", validators.NotBlank); err != nil {
		panic(err)
	}
	if err := v.RegisterValidation("sellerplan", func(fl validator.FieldLevel) bool {
		_, err := enums.ParseSellerPlan(fl.Field().String())
		return err == nil
	}); err != nil {
		panic(err)
	}
	return v
}

// Validate returns a field to message map; empty when the application is complete.
func (a Application) Validate() map[string]string {
	out := map[string]string{}
	err := validate.Struct(a)
	if err == nil {
		return out
	}
	errs, ok := err.(validator.ValidationErrors)
	if !ok {
		out[SubmitField] = "is invalid"
		return out
	}
	for _, fieldErr := range errs {
		msg, ok := applicationMessages[fieldErr.Field()]
		if !ok {
			msg = "is invalid"
		}
		out[fieldErr.Field()] = msg
	}
	return out
}

func (a Application) normalized() Application {
	a.StoreName = strings.TrimSpace(a.StoreName)
	a.Description = strings.TrimSpace(a.Description)
	a.Phone = strings.TrimSpace(a.Phone)
	a.Address = strings.TrimSpace(a.Address)
	return a
}
