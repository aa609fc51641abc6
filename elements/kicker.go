package elements

import (
	"github.com/n01r/impactx/beam"
)

// KickUnit selects the unit system of a Kicker's strengths.
type KickUnit int

const (
	// Dimensionless kick strengths are fractions of the reference
	// momentum.
	Dimensionless KickUnit = iota
	// Tm kick strengths are integrated field values in T*m, normalized by
	// the reference rigidity at application time.
	Tm
)

// Kicker is a thin transverse kicker: it adds a constant transverse momentum
// displacement from the reference orbit.
type Kicker struct {
	thin
	noFinalize

	xkick, ykick float64
	unit         KickUnit
}

// NewKicker creates a thin kicker with horizontal strength xkick and
// vertical strength ykick, both in the given unit system.
func NewKicker(xkick, ykick float64, unit KickUnit) *Kicker {
	return &Kicker{xkick: xkick, ykick: ykick, unit: unit}
}

func (e *Kicker) Name() string { return "Kicker" }

// Advance applies the transverse kick to one particle.
func (e *Kicker) Advance(p *beam.Phase, ref *beam.RefPart) {
	dpx, dpy := e.xkick, e.ykick
	if e.unit == Tm {
		dpx /= ref.RigidityTm()
		dpy /= ref.RigidityTm()
	}

	p.Px += dpx
	p.Py += dpy
}
