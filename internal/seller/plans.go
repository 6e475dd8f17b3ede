package seller

import (
	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"

	"github.com/angelmondragon/storefront/pkg/enums"
	pkgerrors "github.com/angelmondragon/storefront/pkg/errors"
	"github.com/angelmondragon/storefront/pkg/types"
)

// Plan is a seller subscription tier. Prices are monthly.
type Plan struct {
	ID       enums.SellerPlan `json:"id"`
	Name     string           `json:"name"`
	Price    types.Money      `json:"price"`
	Period   string           `json:"period"`
	Features []string         `json:"features"`
}

type planSpec struct {
	id         enums.SellerPlan
	name       string
	priceMinor int64
	features   []string
}

// prices are held in minor units (kobo for NGN)
var planSpecs = []planSpec{
	{
		id:         enums.SellerPlanStandard,
		name:       "Standard",
		priceMinor: 100000,
		features: []string{
			"Up to 100 product listings",
			"Basic seller dashboard",
			"Email support",
			"Standard payment processing",
			"Basic analytics",
			"Mobile app access",
		},
	},
	{
		id:         enums.SellerPlanPremium,
		name:       "Premium",
		priceMinor: 300000,
		features: []string{
			"Unlimited product listings",
			"Advanced seller dashboard",
			"Priority support 24/7",
			"Reduced payment fees",
			"Advanced analytics",
			"API access",
			"Featured products",
			"Custom reports",
		},
	},
}

// Catalog lists the available plans priced in unit.
func Catalog(unit currency.Unit) []Plan {
	plans := make([]Plan, 0, len(planSpecs))
	for _, spec := range planSpecs {
		plans = append(plans, spec.plan(unit))
	}
	return plans
}

// FindPlan returns the plan with the given id.
func FindPlan(unit currency.Unit, id enums.SellerPlan) (Plan, error) {
	for _, spec := range planSpecs {
		if spec.id == id {
			return spec.plan(unit), nil
		}
	}
	return Plan{}, pkgerrors.New(pkgerrors.CodeNotFound, "subscription plan not found")
}

func (s planSpec) plan(unit currency.Unit) Plan {
	features := make([]string, len(s.features))
	copy(features, s.features)
	return Plan{
		ID:       s.id,
		Name:     s.name,
		Price:    types.NewMoney(decimal.New(s.priceMinor, -2), unit),
		Period:   "month",
		Features: features,
	}
}
