package elements

import (
	"log"
	"math"

	"github.com/n01r/impactx/beam"
)

// CFbend is a combined-function bend: an ideal sector bend with an upright
// quadrupole focusing component superimposed. The horizontal and longitudinal
// planes evolve under the net focusing strength k + 1/rc^2, the vertical
// plane under -k alone; each plane independently takes the oscillatory or
// hyperbolic branch depending on the sign of its strength.
type CFbend struct {
	segment
	noFinalize

	rc float64 // bend radius in m
	k  float64 // quadrupole strength in m^-2 (MAD-X convention)
}

// NewCFbend creates a combined-function bend of length ds (m) with radius of
// curvature rc (m) and quadrupole strength k in m^-2, where k equals the
// field gradient in T/m divided by the rigidity in T*m. k > 0 focuses
// horizontally.
func NewCFbend(ds, rc, k float64, nslice int) *CFbend {
	if nslice < 1 {
		log.Fatalf("CFbend needs nslice >= 1, got %d.", nslice)
	}
	if rc == 0 {
		log.Fatalf("CFbend needs a nonzero radius of curvature.")
	}
	return &CFbend{segment: segment{ds: ds, nslice: nslice}, rc: rc, k: k}
}

func (e *CFbend) Name() string { return "CFbend" }

// Advance carries one particle through one slice of the bend.
func (e *CFbend) Advance(p *beam.Phase, ref *beam.RefPart) {
	x, y, t := p.X, p.Y, p.T
	px, py, pt := p.Px, p.Py, p.Pt

	ds := e.sliceDs()

	ptRef := ref.Pt
	betgam2 := ptRef*ptRef - 1.0
	bet := math.Sqrt(betgam2 / (1.0 + betgam2))

	// horizontal and longitudinal plane: net focusing strength
	gx := e.k + 1.0/(e.rc*e.rc)
	omegax := math.Sqrt(math.Abs(gx))

	var pxout float64
	switch {
	case gx > 0:
		sinx, cosx := math.Sincos(omegax * ds)
		r56 := ds/betgam2 +
			(sinx-omegax*ds)/(gx*omegax*bet*bet*e.rc*e.rc)

		p.X = cosx*x + sinx/omegax*px - (1.0-cosx)/(gx*bet*e.rc)*pt
		pxout = -omegax*sinx*x + cosx*px - sinx/(omegax*bet*e.rc)*pt

		p.T = sinx/(omegax*bet*e.rc)*x + (1.0-cosx)/(gx*bet*e.rc)*px +
			t + r56*pt
	case gx < 0:
		sinhx, coshx := math.Sinh(omegax*ds), math.Cosh(omegax*ds)
		r56 := ds/betgam2 +
			(sinhx-omegax*ds)/(gx*omegax*bet*bet*e.rc*e.rc)

		p.X = coshx*x + sinhx/omegax*px - (1.0-coshx)/(gx*bet*e.rc)*pt
		pxout = omegax*sinhx*x + coshx*px - sinhx/(omegax*bet*e.rc)*pt

		p.T = sinhx/(omegax*bet*e.rc)*x + (1.0-coshx)/(gx*bet*e.rc)*px +
			t + r56*pt
	default:
		// gx = 0: the omega -> 0 limit of either branch, a drift with
		// dispersion. sin(w*ds)/w -> ds, (1-cos)/g -> ds^2/2,
		// (sin - w*ds)/(g*w) -> -ds^3/6.
		r56 := ds/betgam2 - ds*ds*ds/(6.0*bet*bet*e.rc*e.rc)

		p.X = x + ds*px - ds*ds/(2.0*bet*e.rc)*pt
		pxout = px - ds/(bet*e.rc)*pt

		p.T = ds/(bet*e.rc)*x + ds*ds/(2.0*bet*e.rc)*px + t + r56*pt
	}

	// vertical plane: quadrupole only
	gy := -e.k
	omegay := math.Sqrt(math.Abs(gy))

	var pyout float64
	switch {
	case gy > 0:
		siny, cosy := math.Sincos(omegay * ds)
		p.Y = cosy*y + siny/omegay*py
		pyout = -omegay*siny*y + cosy*py
	case gy < 0:
		sinhy, coshy := math.Sinh(omegay*ds), math.Cosh(omegay*ds)
		p.Y = coshy*y + sinhy/omegay*py
		pyout = omegay*sinhy*y + coshy*py
	default:
		// k = 0: vertical drift
		p.Y = y + ds*py
		pyout = py
	}

	p.Px = pxout
	p.Py = pyout
	p.Pt = pt
}

// AdvanceRef rotates the reference trajectory through one slice of the bend.
// The quadrupole component has no effect on the on-axis reference particle.
func (e *CFbend) AdvanceRef(ref *beam.RefPart) {
	x, px := ref.X, ref.Px
	y, py := ref.Y, ref.Py
	z, pz := ref.Z, ref.Pz
	t, pt := ref.T, ref.Pt

	sliceDs := e.sliceDs()
	theta := sliceDs / e.rc
	b := math.Sqrt(pt*pt-1.0) / e.rc

	sinTheta, cosTheta := math.Sincos(theta)

	ref.Px = px*cosTheta - pz*sinTheta
	ref.Py = py
	ref.Pz = pz*cosTheta + px*sinTheta
	ref.Pt = pt

	ref.X = x + (ref.Pz-pz)/b
	ref.Y = y + (theta/b)*py
	ref.Z = z - (ref.Px-px)/b
	ref.T = t - (theta/b)*pt

	ref.S += sliceDs
}
