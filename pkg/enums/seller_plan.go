package enums

import "fmt"

// SellerPlan is the subscription tier chosen during seller onboarding.
type SellerPlan string

const (
	SellerPlanStandard SellerPlan = "standard"
	SellerPlanPremium  SellerPlan = "premium"
)

var validSellerPlans = []SellerPlan{
	SellerPlanStandard,
	SellerPlanPremium,
}

// String implements fmt.Stringer.
func (p SellerPlan) String() string {
	return string(p)
}

// IsValid reports whether the value is a known SellerPlan.
func (p SellerPlan) IsValid() bool {
	for _, candidate := range validSellerPlans {
		if candidate == p {
			return true
		}
	}
	return false
}

// ParseSellerPlan converts raw input into a SellerPlan.
func ParseSellerPlan(value string) (SellerPlan, error) {
	for _, candidate := range validSellerPlans {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid seller plan %q", value)
}
