package controllers

import (
	"net/http"

	"github.com/angelmondragon/storefront/api/responses"
	"github.com/angelmondragon/storefront/api/validators"
	"github.com/angelmondragon/storefront/internal/seller"
	"github.com/angelmondragon/storefront/pkg/enums"
	"github.com/angelmondragon/storefront/pkg/logger"
)

// SellerPlans lists the subscription plans offered during onboarding.
func SellerPlans(svc seller.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		responses.WriteSuccess(w, svc.Plans())
	}
}

// SellerRegister submits a become-a-seller application. Field problems come
// back as a 400 keyed by input name; backend failures use the "submit" key.
func SellerRegister(svc seller.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload sellerRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		registration, err := svc.Register(r.Context(), payload.toApplication())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, registration)
	}
}

type sellerRequest struct {
	StoreName   string `json:"storeName"`
	Description string `json:"description"`
	Phone       string `json:"phone"`
	Address     string `json:"address"`
	Plan        string `json:"plan"`
}

func (p sellerRequest) toApplication() seller.Application {
	return seller.Application{
		StoreName:   p.StoreName,
		Description: p.Description,
		Phone:       p.Phone,
		Address:     p.Address,
		Plan:        enums.SellerPlan(p.Plan),
	}
}
