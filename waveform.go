package hyperbolic

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// Observer defines the direction and the sources seen by a distant observer.
type Observer struct {
	Theta      float64 // angle between the line of sight and z, in the xz plane
	Distance   float64 // in units of the total mass, for Waveform.AtDistance
	M1, M2     float64 // component masses
	Chi1, Chi2 float64 // dimensionless spin magnitudes
	// GWOrder keeps the waveform terms up to this index: 0 is the quadrupole, 1 the 0.5PN,
	// 2 the 1PN and 3 the spin-orbit correction. 4 keeps everything.
	GWOrder int
}

// skyBasis returns the line of sight N and the polarization basis p, q.
func (o Observer) skyBasis() (N, p, q r3.Vec) {
	sΘ, cΘ := math.Sincos(o.Theta)
	return r3.Vec{X: sΘ, Z: cΘ}, r3.Vec{Y: -1}, r3.Vec{X: cΘ, Z: -sΘ}
}

func (o Observer) validate() error {
	if !(o.M1 > 0) || !(o.M2 > 0) {
		return fmt.Errorf("%w: masses m1=%g, m2=%g", ErrNumericalDomain, o.M1, o.M2)
	}
	if o.GWOrder < 0 || o.GWOrder > 4 {
		return fmt.Errorf("%w: GW order %d not in [0, 4]", ErrInvalidOrder, o.GWOrder)
	}
	return nil
}

// Waveform stores both polarizations, without the μ/R amplitude.
type Waveform struct {
	T           []float64
	Plus, Cross []float64
	Mu          float64 // reduced mass m1*m2/(m1+m2)
}

// AtDistance returns the strain seen at distance R, in units of the total mass.
// The factor 2 of the amplitude is already part of the polarizations.
func (w *Waveform) AtDistance(R float64) *Waveform {
	scaled := &Waveform{
		T:     append([]float64(nil), w.T...),
		Plus:  make([]float64, len(w.Plus)),
		Cross: make([]float64, len(w.Cross)),
		Mu:    w.Mu,
	}
	f := w.Mu / R
	for i := range w.Plus {
		scaled.Plus[i] = f * w.Plus[i]
		scaled.Cross[i] = f * w.Cross[i]
	}
	return scaled
}

// Polarizations returns the plus and cross polarizations of the trajectory, evaluated in
// harmonic coordinates.
func Polarizations(obs Observer, tr *Trajectory) (*Waveform, error) {
	if err := obs.validate(); err != nil {
		return nil, err
	}
	m := obs.M1 + obs.M2
	w := &Waveform{
		T:     append([]float64(nil), tr.T...),
		Plus:  make([]float64, tr.Len()),
		Cross: make([]float64, tr.Len()),
		Mu:    obs.M1 * obs.M2 / m,
	}
	for i, s := range tr.Harmonic() {
		w.Plus[i], w.Cross[i] = obs.polarization(s)
		if !isFinite(w.Plus[i], w.Cross[i]) {
			return nil, fmt.Errorf("%w: non finite polarization at t=%g", ErrNumericalDomain, tr.T[i])
		}
	}
	return w, nil
}

// polarization returns h+ and h× of a single sample.
func (o Observer) polarization(s KinematicSample) (hp, hc float64) {
	var gw [4]float64
	for i := range gw {
		if i <= o.GWOrder {
			gw[i] = 1
		}
	}
	m := o.M1 + o.M2
	η := o.M1 * o.M2 / (m * m)
	δ := math.Abs(o.M1-o.M2) / m
	X1, X2 := o.M1/m, o.M2/m

	N, p, q := o.skyBasis()
	pdn, qdn, Ndn := r3.Dot(p, s.N), r3.Dot(q, s.N), r3.Dot(N, s.N)
	pdv, qdv, Ndv := r3.Dot(p, s.V), r3.Dot(q, s.V), r3.Dot(N, s.V)
	s1N, s2N := r3.Cross(s.S1, N), r3.Cross(s.S2, N)
	pds1N, pds2N := r3.Dot(p, s1N), r3.Dot(p, s2N)
	qds1N, qds2N := r3.Dot(q, s1N), r3.Dot(q, s2N)

	z := 1 / s.R
	z2 := z * z
	dr := s.Dr
	dr2 := dr * dr
	v2 := r3.Dot(s.V, s.V)
	pdn2, qdn2, Ndn2 := pdn*pdn, qdn*qdn, Ndn*Ndn
	pdv2, qdv2, Ndv2 := pdv*pdv, qdv*qdv, Ndv*Ndv

	lo := gw[0]*(qdn2-pdn2)*z + pdv2 - qdv2
	nlo := -gw[1] * 0.5 * δ * ((Ndn*dr-Ndv)*z*pdn2 - 6*z*Ndn*pdn*pdv + (-3*Ndn*dr+Ndv)*z*qdn2 + 6*z*Ndn*qdn*qdv + 2*(pdv2-qdv2)*Ndv)
	nnlo := gw[2] / 6 * (6*Ndv2*(pdv2-qdv2)*(1-3*η) +
		((6*η-2)*Ndv2*pdn2+(96*η-32)*Ndv*Ndn*pdv*pdn+(-6*η+2)*Ndv2*qdn2+(-96*η+32)*Ndv*Ndn*qdv*qdn+((-14+42*η)*Ndn2-4+6*η)*pdv2+((-42*η+14)*Ndn2+4-6*η)*qdv2)*z +
		((-9*η+3)*pdv2+(-3+9*η)*qdv2)*v2 +
		((29+(7-21*η)*Ndn2)*pdn2+(-29+(21*η-7)*Ndn2)*qdn2)*z2 +
		(((-9*η+3)*Ndn2-10-3*η)*pdn2+((-3+9*η)*Ndn2+10+3*η)*qdn2)*z*v2 +
		((-36*η+12)*Ndv*Ndn*pdn2+((-90*η+30)*Ndn2+12*η+20)*pdv*pdn+(-12+36*η)*Ndv*Ndn*qdn2+((90*η-30)*Ndn2-12*η-20)*qdv*qdn)*z*dr +
		(((45*η-15)*Ndn2-9*η+3)*pdn2+((15-45*η)*Ndn2-3+9*η)*qdn2)*z*dr2)
	nnloSO := gw[3] * z2 * (pdn*(X2*o.Chi2*pds2N-X1*o.Chi1*pds1N) + qdn*(X1*o.Chi1*qds1N-X2*o.Chi2*qds2N))

	loC := -gw[0]*pdn*qdn*z + pdv*qdv
	nloC := -gw[1] * δ * ((((3*Ndn*dr-Ndv)*qdn-3*Ndn*qdv)*pdn-3*Ndn*qdn*pdv)*z + 2*pdv*qdv*Ndv)
	nnloC := gw[2] / 6 * (6*(1-3*η)*Ndv2*pdv*qdv +
		(((6*η-2)*Ndv2*qdn+(48*η-16)*Ndv*Ndn*qdv)*pdn+(48*η-16)*Ndv*Ndn*pdv*qdn+((-14+42*η)*Ndn2-4+6*η)*qdv*pdv)*z +
		(-9*η+3)*qdv*pdv*v2 +
		(29+(7-21*η)*Ndn2)*qdn*pdn*z2 +
		((-9*η+3)*Ndn2-10-3*η)*qdn*pdn*z*v2 +
		(((-36*η+12)*Ndv*Ndn*qdn+((15-45*η)*Ndn2+10+6*η)*qdv)*pdn+((15-45*η)*Ndn2+10+6*η)*pdv*qdn)*dr*z +
		((45*η-15)*Ndn2-9*η+3)*qdn*pdn*dr2*z)
	nnloSOC := gw[3] * z2 * qdn * (X2*o.Chi2*pds2N - X1*o.Chi1*pds1N)

	return 2 * (lo + nlo + nnlo + nnloSO), 4 * (loC + nloC + nnloC + nnloSOC)
}
