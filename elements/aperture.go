package elements

import (
	"log"

	"github.com/n01r/impactx/beam"
)

// Shape selects the transverse boundary geometry of an Aperture.
type Shape int

const (
	Rectangular Shape = iota
	Elliptical
)

// Aperture is a thin collimator: a pure predicate on the transverse
// coordinates. Particles outside the boundary are marked lost by negating
// their id in place; positions and momenta are left untouched. The boundary
// itself is inclusive: a particle exactly on it survives. Removal of marked
// particles is the container's business, not the aperture's.
type Aperture struct {
	thin
	noFinalize

	xmax, ymax float64
	shape      Shape
}

// NewAperture creates an aperture with half-extents xmax and ymax in m. For
// the rectangular shape |x| and |y| are bounded independently; for the
// elliptical shape the combined normalized radius is bounded.
func NewAperture(xmax, ymax float64, shape Shape) *Aperture {
	if xmax <= 0 || ymax <= 0 {
		log.Fatalf(
			"Aperture needs positive extents, got xmax=%g, ymax=%g.",
			xmax, ymax,
		)
	}
	return &Aperture{xmax: xmax, ymax: ymax, shape: shape}
}

func (e *Aperture) Name() string { return "Aperture" }

// Advance tests one particle against the boundary.
func (e *Aperture) Advance(p *beam.Phase, ref *beam.RefPart) {
	u := p.X / e.xmax
	v := p.Y / e.ymax

	switch e.shape {
	case Rectangular:
		if u*u > 1 || v*v > 1 {
			p.MarkLost()
		}
	case Elliptical:
		if u*u+v*v > 1 {
			p.MarkLost()
		}
	}
}
