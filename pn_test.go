package hyperbolic

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseOrder(t *testing.T) {
	for v, exp := range map[int]string{0: "0PN", 2: "1PN", 3: "1.5PN", 4: "2PN", 5: "2.5PN"} {
		o, err := ParseOrder(v)
		require.NoError(t, err)
		require.Equal(t, exp, o.String())
		require.True(t, o.Valid())
	}
	for _, v := range []int{-1, 1, 6, 10} {
		_, err := ParseOrder(v)
		require.ErrorIs(t, err, ErrInvalidOrder)
		require.False(t, Order(v).Valid())
	}
	require.Equal(t, "Order(7)", Order(7).String())
}

func TestOrderGates(t *testing.T) {
	// 2PN without the 1.5PN spin-orbit terms is a supported truncation.
	g := Order2PN.gates()
	if g.pn1 != 1 || g.pn15 != 0 || g.pn2 != 1 || g.pn25 != 0 {
		t.Fatalf("unexpected 2PN gates %+v", g)
	}
	if g := Order2_5PN.gates(); g != (gates{1, 1, 1, 1}) {
		t.Fatalf("unexpected 2.5PN gates %+v", g)
	}
	if g := Newtonian.gates(); g != (gates{}) {
		t.Fatalf("unexpected Newtonian gates %+v", g)
	}
}
