package elements

import (
	"math"
	"math/rand"
	"testing"

	"github.com/n01r/impactx/beam"
)

func randomPhase(rng *rand.Rand, id int64) beam.Phase {
	return beam.Phase{
		X: rng.NormFloat64() * 1e-3,
		Y: rng.NormFloat64() * 1e-3,
		T: rng.NormFloat64() * 1e-3,

		Px: rng.NormFloat64() * 1e-4,
		Py: rng.NormFloat64() * 1e-4,
		Pt: rng.NormFloat64() * 1e-4,

		ID: id,
	}
}

// A zero-strength kicker must be exactly the identity, down to the last
// bit, for every particle.
func TestKickerZeroStrengthIdentity(t *testing.T) {
	ref := protonRef()
	kick := NewKicker(0, 0, Dimensionless)
	rng := rand.New(rand.NewSource(1))

	for i := 0; i < 10*1000; i++ {
		p := randomPhase(rng, int64(i+1))
		q := p
		kick.Advance(&q, &ref)
		if q != p {
			t.Fatalf("%d) Expected %+v, got %+v", i, p, q)
		}
	}
}

func TestKickerUnits(t *testing.T) {
	ref := protonRef()
	brho := ref.RigidityTm()

	dimless := NewKicker(2e-4, -1e-4, Dimensionless)
	fields := NewKicker(2e-4*brho, -1e-4*brho, Tm)

	p1 := beam.Phase{ID: 1}
	p2 := beam.Phase{ID: 1}
	dimless.Advance(&p1, &ref)
	fields.Advance(&p2, &ref)

	if !almostEq(p1.Px, p2.Px, 1e-14) || !almostEq(p1.Py, p2.Py, 1e-14) {
		t.Errorf("Expected kicks (%g, %g), got (%g, %g)",
			p1.Px, p1.Py, p2.Px, p2.Py)
	}
	if !almostEq(p1.Px, 2e-4, 1e-14) {
		t.Errorf("Expected px kick 2e-4, got %g", p1.Px)
	}
}

func TestApertureBoundary(t *testing.T) {
	table := []struct {
		shape Shape
		x, y  float64
		lost  bool
	}{
		{Rectangular, 0, 0, false},
		{Rectangular, 1e-3, 2e-3, false}, // exactly on the corner
		{Rectangular, -1e-3, 0, false},
		{Rectangular, 1.2e-3, 0, true},
		{Rectangular, 0, -2.4e-3, true},

		{Elliptical, 0, 0, false},
		{Elliptical, 1e-3, 0, false}, // exactly on the boundary
		{Elliptical, 0, -2e-3, false},
		{Elliptical, 1e-3, 2e-3, true}, // corner is outside the ellipse
		{Elliptical, 1.01e-3, 0, true},
	}

	ref := protonRef()
	for i, test := range table {
		ap := NewAperture(1e-3, 2e-3, test.shape)
		p := beam.Phase{X: test.x, Y: test.y, Px: 0.5, ID: 42}
		ap.Advance(&p, &ref)

		if p.Lost() != test.lost {
			t.Errorf("%d) Expected lost = %v at (%g, %g), got %v",
				i, test.lost, test.x, test.y, p.Lost())
		}
		wantID := int64(42)
		if test.lost {
			wantID = -42
		}
		if p.ID != wantID {
			t.Errorf("%d) Expected id %d, got %d", i, wantID, p.ID)
		}
		if p.X != test.x || p.Y != test.y || p.Px != 0.5 {
			t.Errorf("%d) Expected coordinates untouched, got %+v", i, p)
		}
	}
}

func TestApertureLostStaysLost(t *testing.T) {
	ref := protonRef()
	ap := NewAperture(1e-3, 1e-3, Rectangular)

	p := beam.Phase{X: 5e-3, ID: -7} // already marked
	ap.Advance(&p, &ref)
	if p.ID != -7 {
		t.Errorf("Expected id -7, got %d", p.ID)
	}
}

func TestDipEdgeZeroGapMatrix(t *testing.T) {
	const (
		psi = 0.2
		rc  = 5.0
	)
	ref := protonRef()
	edge := NewDipEdge(psi, rc, 0, 0)

	p := beam.Phase{X: 1e-3, Y: -2e-3, T: 3e-3, Px: 1e-4, Py: 2e-4,
		Pt: -1e-4, ID: 1}
	q := p
	edge.Advance(&q, &ref)

	r21 := math.Tan(psi) / rc
	if !almostEq(q.Px, p.Px+r21*p.X, 1e-14) {
		t.Errorf("Expected px = %g, got %g", p.Px+r21*p.X, q.Px)
	}
	if !almostEq(q.Py, p.Py-r21*p.Y, 1e-14) {
		t.Errorf("Expected py = %g, got %g", p.Py-r21*p.Y, q.Py)
	}
	if q.X != p.X || q.Y != p.Y || q.T != p.T || q.Pt != p.Pt {
		t.Errorf("Expected positions and pt untouched, got %+v", q)
	}
}

// The gap correction weakens the vertical edge focusing but leaves the
// horizontal plane alone.
func TestDipEdgeGapCorrection(t *testing.T) {
	ref := protonRef()
	sharp := NewDipEdge(0.2, 5.0, 0, 0.5)
	fringe := NewDipEdge(0.2, 5.0, 0.05, 0.5)

	p1 := beam.Phase{X: 1e-3, Y: 1e-3, ID: 1}
	p2 := p1
	sharp.Advance(&p1, &ref)
	fringe.Advance(&p2, &ref)

	if p1.Px != p2.Px {
		t.Errorf("Expected same px kick, got %g and %g", p1.Px, p2.Px)
	}
	if p2.Py <= p1.Py {
		t.Errorf("Expected gap correction to raise py, got %g <= %g",
			p2.Py, p1.Py)
	}
}

// An on-energy particle at the reference arrival time gets no net kick
// beyond the reference acceleration itself.
func TestThinDipoleOnMomentum(t *testing.T) {
	ref := protonRef()
	dip := NewThinDipole(5.0, 2.0)

	p := beam.Phase{X: 1e-3, Px: 1e-4, ID: 1}
	dip.Advance(&p, &ref)

	// pt = 0 means f = 0: a pure quadrupole-like geometric kick
	theta := 5.0 * degree2rad
	ds := theta * 2.0
	want := 1e-4 - (1.0/4.0)*ds*1e-3
	if !almostEq(p.Px, want, 1e-13) {
		t.Errorf("Expected px = %g, got %g", want, p.Px)
	}
	if p.Pt != 0 {
		t.Errorf("Expected pt unchanged, got %g", p.Pt)
	}
}

func TestThinDipoleChromatic(t *testing.T) {
	ref := protonRef()
	bet := ref.Beta()
	dip := NewThinDipole(5.0, 2.0)

	// small pt: f ~ -pt/beta to first order, so the dispersive kick is
	// approximately -kx*ds*pt/beta
	pt := 1e-5
	p := beam.Phase{Pt: pt, ID: 1}
	dip.Advance(&p, &ref)

	theta := 5.0 * degree2rad
	ds := theta * 2.0
	want := (1.0 / 2.0) * ds * (-pt / bet)
	if math.Abs(p.Px-want) > 1e-3*math.Abs(want) {
		t.Errorf("Expected px ~ %g, got %g", want, p.Px)
	}
}

// The RF gap with zero voltage must leave both the particles and the
// reference untouched.
func TestShortRFZeroVoltage(t *testing.T) {
	ref := protonRef()
	refBefore := ref
	rf := NewShortRF(0, 1.3e9, -30.0)
	rng := rand.New(rand.NewSource(2))

	rf.AdvanceRef(&ref)
	if ref != refBefore {
		t.Errorf("Expected reference unchanged, got %+v", ref)
	}

	for i := 0; i < 1000; i++ {
		p := randomPhase(rng, int64(i+1))
		q := p
		rf.Advance(&q, &ref)
		if !phaseAlmostEq(p, q, 1e-14) {
			t.Fatalf("%d) Expected %+v, got %+v", i, p, q)
		}
	}
}

func TestShortRFReferenceKick(t *testing.T) {
	table := []struct {
		v, phaseDeg float64
	}{
		{1e-2, 0},
		{1e-2, -45.0},
		{5e-3, 180.0},
	}

	for i, test := range table {
		ref := protonRef()
		gamma0 := ref.Gamma()
		rf := NewShortRF(test.v, 1.3e9, test.phaseDeg)
		rf.AdvanceRef(&ref)

		want := gamma0 + test.v*math.Cos(test.phaseDeg*degree2rad)
		if !almostEq(ref.Gamma(), want, 1e-13) {
			t.Errorf("%d) Expected gamma = %g, got %g",
				i, want, ref.Gamma())
		}

		// the momentum direction must survive the rescaling
		if ref.Px != 0 || ref.Py != 0 {
			t.Errorf("%d) Expected transverse momenta zero, got %+v",
				i, ref)
		}
		if !almostEq(ref.Pz, ref.BetaGamma(), 1e-13) {
			t.Errorf("%d) Expected Pz = %g, got %g",
				i, ref.BetaGamma(), ref.Pz)
		}
	}
}

// A particle arriving exactly with the reference gets the same kick the
// reference got, so its relative pt must return to zero.
func TestShortRFSynchronousParticle(t *testing.T) {
	ref := protonRef()
	rf := NewShortRF(1e-2, 1.3e9, -30.0)

	p := beam.Phase{T: 0, ID: 1}
	rf.AdvanceRef(&ref)
	rf.Advance(&p, &ref)

	if math.Abs(p.Pt) > 1e-15 {
		t.Errorf("Expected pt = 0, got %g", p.Pt)
	}
}
