package enums

import "fmt"

// CheckoutStage identifies the step the checkout wizard is on.
type CheckoutStage string

const (
	CheckoutStageShipping CheckoutStage = "shipping"
	CheckoutStagePayment  CheckoutStage = "payment"
	CheckoutStageReview   CheckoutStage = "review"
)

// ordered by wizard progression
var validCheckoutStages = []CheckoutStage{
	CheckoutStageShipping,
	CheckoutStagePayment,
	CheckoutStageReview,
}

// CheckoutStages returns the stages in wizard order.
func CheckoutStages() []CheckoutStage {
	return append([]CheckoutStage(nil), validCheckoutStages...)
}

// String implements fmt.Stringer.
func (s CheckoutStage) String() string {
	return string(s)
}

// IsValid reports whether the value is a known CheckoutStage.
func (s CheckoutStage) IsValid() bool {
	return s.index() >= 0
}

// Next returns the following stage and false when s is the last stage.
func (s CheckoutStage) Next() (CheckoutStage, bool) {
	i := s.index()
	if i < 0 || i == len(validCheckoutStages)-1 {
		return s, false
	}
	return validCheckoutStages[i+1], true
}

// Previous returns the preceding stage and false when s is the first stage.
func (s CheckoutStage) Previous() (CheckoutStage, bool) {
	i := s.index()
	if i <= 0 {
		return s, false
	}
	return validCheckoutStages[i-1], true
}

// Position is the 1-based step number used by step indicators.
func (s CheckoutStage) Position() int {
	return s.index() + 1
}

func (s CheckoutStage) index() int {
	for i, candidate := range validCheckoutStages {
		if candidate == s {
			return i
		}
	}
	return -1
}

// ParseCheckoutStage converts raw input into a CheckoutStage.
func ParseCheckoutStage(value string) (CheckoutStage, error) {
	for _, candidate := range validCheckoutStages {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid checkout stage %q", value)
}
