package elements

import (
	"log"
	"math"

	"github.com/n01r/impactx/beam"
)

// DipEdge is the edge focusing at a bend entry or exit: a linear kick to the
// transverse momenta derived from the pole-face angle, the bend radius, and
// a first-order fringe-field gap correction. The linear fringe map is given
// to first order in g/rc, after K. L. Brown, SLAC Report No. 75 (1982), and
// K. Hwang and S. Y. Lee, PRAB 18, 122401 (2015).
type DipEdge struct {
	thin
	noFinalize

	psi float64 // pole face angle in rad
	rc  float64 // bend radius in m
	g   float64 // gap parameter in m
	k2  float64 // fringe field integral, unitless
}

// NewDipEdge creates a dipole edge with pole-face angle psi (rad), bend
// radius rc (m), gap parameter g (m) and fringe field integral k2. With
// g = 0 the map reduces to the zero-gap edge matrix.
func NewDipEdge(psi, rc, g, k2 float64) *DipEdge {
	if rc == 0 {
		log.Fatalf("DipEdge needs a nonzero bend radius.")
	}
	return &DipEdge{psi: psi, rc: rc, g: g, k2: k2}
}

func (e *DipEdge) Name() string { return "DipEdge" }

// Advance applies the edge focusing kick to one particle.
func (e *DipEdge) Advance(p *beam.Phase, ref *beam.RefPart) {
	// edge focusing matrix elements at zero gap
	r21 := math.Tan(e.psi) / e.rc
	r43 := -r21

	// first-order effect of nonzero gap
	sinPsi := math.Sin(e.psi)
	cosPsi := math.Cos(e.psi)
	vf := (1.0 + sinPsi*sinPsi) / (cosPsi * cosPsi * cosPsi)
	vf *= e.g * e.k2 / (e.rc * e.rc)
	r43 += vf

	p.Px += r21 * p.X
	p.Py += r43 * p.Y
}
