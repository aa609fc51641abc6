package beam

import (
	"log"
	"math"
)

// RefPart is the reference particle of a bunch: the single privileged
// trajectory that sets the unit scaling and frame geometry for every
// macro-particle at the current location along the beamline.
//
// Momenta are stored in units of m*c. Pt holds -gamma, so that the energy
// deviation of a macro-particle is measured against -RefPart.Pt. Exactly one
// RefPart exists per container and it is mutated only by an element's
// reference map, once per slice, before that slice's particle maps run.
type RefPart struct {
	X, Y, Z, T     float64 // position in m (T is c*time in m)
	Px, Py, Pz, Pt float64 // momentum in units of m*c, Pt = -gamma
	S              float64 // integrated path length in m

	MassEV float64 // rest mass energy in eV
	Charge float64 // charge in units of the elementary charge
}

// FromKineticEnergyEV builds a reference particle at the lattice entrance
// moving along +z with the given kinetic energy.
func FromKineticEnergyEV(kinEV, massEV, charge float64) RefPart {
	if kinEV <= 0 || massEV <= 0 || charge == 0 {
		log.Fatalf(
			"Reference particle needs positive energy and mass and "+
				"nonzero charge, got E=%g eV, m=%g eV, q=%g.",
			kinEV, massEV, charge,
		)
	}

	gamma := 1.0 + kinEV/massEV
	return RefPart{
		Pz:     math.Sqrt(gamma*gamma - 1.0),
		Pt:     -gamma,
		MassEV: massEV,
		Charge: charge,
	}
}

// Gamma returns the relativistic gamma factor.
func (r *RefPart) Gamma() float64 { return -r.Pt }

// BetaGamma returns the normalized momentum magnitude beta*gamma.
func (r *RefPart) BetaGamma() float64 {
	return math.Sqrt(r.Pt*r.Pt - 1.0)
}

// Beta returns the velocity in units of c.
func (r *RefPart) Beta() float64 {
	bg2 := r.Pt*r.Pt - 1.0
	return math.Sqrt(bg2 / (1.0 + bg2))
}

// RigidityTm returns the magnetic rigidity p/q in T*m. It sets the scaling
// between physical field strengths and the dimensionless map coefficients.
func (r *RefPart) RigidityTm() float64 {
	return r.BetaGamma() * r.MassEV / (SpeedOfLight * r.Charge)
}

// KineticEnergyEV returns the kinetic energy in eV.
func (r *RefPart) KineticEnergyEV() float64 {
	return (r.Gamma() - 1.0) * r.MassEV
}
