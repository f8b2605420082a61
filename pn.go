package hyperbolic

import "fmt"

// Order is the post-Newtonian truncation order, counted in half-integer powers of 1/c².
// The integer value is twice the PN order (e.g. Order2_5PN is 5).
type Order int

const (
	// Newtonian retains only the leading terms.
	Newtonian Order = 0
	// Order1PN adds the 1PN corrections.
	Order1PN Order = 2
	// Order1_5PN adds the leading spin-orbit corrections.
	Order1_5PN Order = 3
	// Order2PN adds the 2PN corrections but not the 1.5PN spin-orbit ones.
	Order2PN Order = 4
	// Order2_5PN is the full 2.5PN spin-orbit model.
	Order2_5PN Order = 5
)

// gates multiplies each PN correction of matching half-integer order.
type gates struct {
	pn1, pn15, pn2, pn25 float64
}

var orderGates = map[Order]gates{
	Newtonian:  {},
	Order1PN:   {pn1: 1},
	Order1_5PN: {pn1: 1, pn15: 1},
	Order2PN:   {pn1: 1, pn2: 1},
	Order2_5PN: {pn1: 1, pn15: 1, pn2: 1, pn25: 1},
}

// ParseOrder returns the Order matching the provided integer selector.
func ParseOrder(v int) (Order, error) {
	o := Order(v)
	if _, ok := orderGates[o]; !ok {
		return Newtonian, fmt.Errorf("%w: %d not in {0,2,3,4,5}", ErrInvalidOrder, v)
	}
	return o, nil
}

// Valid returns whether this order is one of the supported truncations.
func (o Order) Valid() bool {
	_, ok := orderGates[o]
	return ok
}

func (o Order) gates() gates {
	return orderGates[o]
}

func (o Order) String() string {
	if !o.Valid() {
		return fmt.Sprintf("Order(%d)", int(o))
	}
	return fmt.Sprintf("%gPN", float64(o)/2)
}
