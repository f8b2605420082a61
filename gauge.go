package hyperbolic

import "gonum.org/v1/gonum/spatial/r3"

// KinematicSample is the relative motion at one instant.
type KinematicSample struct {
	R, Dr  float64 // separation and radial velocity
	N, V   r3.Vec  // unit separation and relative velocity
	S1, S2 r3.Vec  // spin directions
}

// ToHarmonic maps a sample from ADM to harmonic coordinates.
// The spin-orbit correction enters at 1.5PN and the point mass one at 2PN.
func ToHarmonic(s KinematicSample, sys System, order Order) KinematicSample {
	g := order.gates()
	η := sys.Eta
	S := r3.Add(r3.Scale(sys.S1, s.S1), r3.Scale(sys.S2, s.S2))
	r, dr, n, v := s.R, s.Dr, s.N, s.V
	r2 := r * r
	dr2 := dr * dr
	v2 := r3.Dot(v, v)
	sNV := r3.Dot(S, r3.Cross(n, v))

	rH := r - g.pn15*0.5*η*sNV + g.pn2*(η*(5*v2-19*dr2)/8+(3*η+0.25)/r)

	nH := r3.Add(n, r3.Scale(g.pn15*0.5*η/r, r3.Sub(r3.Scale(sNV, n), r3.Cross(S, v))))
	nH = r3.Add(nH, r3.Scale(g.pn2*0.25*9*dr*η/r, r3.Sub(r3.Scale(dr, n), v)))

	vH := r3.Sub(v, r3.Scale(g.pn15*0.5*η/r2, r3.Cross(S, n)))
	pm := r3.Scale(η/(8*r), r3.Add(r3.Scale(dr*(3*dr2-7*v2), n), r3.Scale(17*dr2-13*v2, v)))
	pm = r3.Add(pm, r3.Scale(0.25/r2, r3.Sub(r3.Scale(21*η+1, v), r3.Scale((19*η+2)*dr, n))))
	vH = r3.Add(vH, r3.Scale(g.pn2, pm))

	return KinematicSample{R: rH, Dr: r3.Dot(vH, nH), N: nH, V: vH, S1: s.S1, S2: s.S2}
}
