package enums

// CartMutation labels the operation that changed a cart.
type CartMutation string

const (
	CartMutationAdd    CartMutation = "add"
	CartMutationUpdate CartMutation = "update"
	CartMutationRemove CartMutation = "remove"
	CartMutationClear  CartMutation = "clear"
)

// String implements fmt.Stringer.
func (m CartMutation) String() string {
	return string(m)
}
