package elements

import (
	"log"
	"math"

	"github.com/n01r/impactx/beam"
)

// ExactSbend is the body of an ideal sector bend, using the exact nonlinear
// transfer map for a uniform bending field with hard edges. Pole faces are
// normal to the entry and exit velocity of the reference particle. The map
// follows D. L. Bruhwiler et al, Proc. of EPAC 98, pp. 1171-1173 (1998); in
// the ultrarelativistic limit it reduces to E. Forest et al, Part. Accel. 45,
// pp. 65-94 (1994).
type ExactSbend struct {
	segment
	noFinalize

	phi float64 // bend angle in rad
	b   float64 // magnetic field in T
}

// NewExactSbend creates a sector bend of length ds (m) and bend angle phi
// (degrees). When b is zero the reference bending radius is ds/phi,
// corresponding to a field of rigidity/radius; otherwise the radius is
// rigidity/b with b in T.
func NewExactSbend(ds, phiDeg, b float64, nslice int) *ExactSbend {
	if nslice < 1 {
		log.Fatalf("ExactSbend needs nslice >= 1, got %d.", nslice)
	}
	if b == 0 && phiDeg == 0 {
		log.Fatalf(
			"ExactSbend with B = 0 and phi = 0 has an undefined " +
				"bend radius.",
		)
	}
	return &ExactSbend{
		segment: segment{ds: ds, nslice: nslice},
		phi:     phiDeg * degree2rad,
		b:       b,
	}
}

func (e *ExactSbend) Name() string { return "ExactSbend" }

// radius returns the reference orbital radius for the current rigidity.
func (e *ExactSbend) radius(ref *beam.RefPart) float64 {
	if e.b != 0 {
		return ref.RigidityTm() / e.b
	}
	return e.ds / e.phi
}

// Advance carries one particle through one slice of the bend.
func (e *ExactSbend) Advance(p *beam.Phase, ref *beam.RefPart) {
	x, y, t := p.X, p.Y, p.T
	px, py, pt := p.Px, p.Py, p.Pt

	// angle of arc for the current slice
	slicePhi := e.phi / float64(e.nslice)

	bet := ref.Beta()
	rc := e.radius(ref)

	// transverse momentum available for the bend plane
	pperp := math.Sqrt(pt*pt - 2.0/bet*pt - py*py + 1.0)
	pzi := math.Sqrt(pperp*pperp - px*px)
	rho := rc + x
	sinPhi, cosPhi := math.Sincos(slicePhi)

	pxout := px*cosPhi + (pzi-rho/rc)*sinPhi

	// angle of momentum rotation
	pzf := math.Sqrt(pperp*pperp - pxout*pxout)
	theta := slicePhi + math.Asin(px/pperp) - math.Asin(pxout/pperp)

	p.X = -rc + rho*cosPhi + rc*(pzf+px*sinPhi-pzi*cosPhi)
	p.Y = y + theta*rc*py
	p.T = t - theta*rc*(pt-1.0/bet) - slicePhi*rc/bet

	p.Px = pxout
	p.Py = py
	p.Pt = pt
}

// AdvanceRef rotates the reference trajectory rigidly through one slice and
// advances the integrated path length by the slice length.
func (e *ExactSbend) AdvanceRef(ref *beam.RefPart) {
	x, px := ref.X, ref.Px
	y, py := ref.Y, ref.Py
	z, pz := ref.Z, ref.Pz
	t, pt := ref.T, ref.Pt

	sliceDs := e.sliceDs()
	theta := e.phi / float64(e.nslice)
	rc := e.radius(ref)
	b := ref.BetaGamma() / rc

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
