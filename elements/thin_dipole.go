package elements

import (
	"log"
	"math"

	"github.com/n01r/impactx/beam"
)

// ThinDipole is a general thin-kick dipole with chromatic effects. The model
// is the symplectic six-dimensional thin-lens dipole of G. Ripken and
// F. Schmidt, "A Symplectic Six-Dimensional Thin-Lens Formalism for
// Tracking," CERN/SL/95-12 (AP), 1995, Section 3.1, and is intended to
// replicate the thin-lens dipole model in MAD-X.
type ThinDipole struct {
	thin
	noFinalize

	theta float64 // total bending angle in rad
	rc    float64 // curvature radius in m
}

// NewThinDipole creates a thin dipole kick with total bending angle theta
// (degrees) and curvature radius rc (m).
func NewThinDipole(thetaDeg, rc float64) *ThinDipole {
	if rc == 0 {
		log.Fatalf("ThinDipole needs a nonzero curvature radius.")
	}
	return &ThinDipole{theta: thetaDeg * degree2rad, rc: rc}
}

func (e *ThinDipole) Name() string { return "ThinDipole" }

// Advance applies the thin-lens dipole kick to one particle.
func (e *ThinDipole) Advance(p *beam.Phase, ref *beam.RefPart) {
	x, t := p.X, p.T
	px, pt := p.Px, p.Pt

	betaRef := ref.Beta()

	// the function expressing dp/p in terms of pt, labeled f in Ripken
	// and Schmidt, and its derivative
	f := -1.0 + math.Sqrt(1.0-2.0*pt/betaRef+pt*pt)
	fprime := (1.0 - betaRef*pt) / (betaRef * (1.0 + f))

	// effective (equivalent) arc length and curvature
	ds := e.theta * e.rc
	kx := 1.0 / e.rc

	p.Px = px - kx*kx*ds*x + kx*ds*f // eq (3.2b)
	p.T = t + kx*x*ds*fprime         // eq (3.2e)
	p.Pt = pt
}
