package elements

import (
	"math"

	"github.com/n01r/impactx/beam"
)

// ShortRF is a short RF cavity gap. The sinusoidal energy kick is applied in
// "dynamic" momentum units (scaled by m*c rather than by the reference
// momentum), so the particle map brackets the kick with unit conversions
// whose scale factor differs before and after the acceleration. The
// reference particle defines phase zero and receives the on-crest kick with
// no time dependence.
type ShortRF struct {
	noFinalize

	v     float64 // normalized voltage, max energy gain / (m*c^2)
	freq  float64 // RF frequency in Hz
	phase float64 // synchronous phase in degrees
}

// NewShortRF creates a short RF cavity with normalized voltage v, frequency
// freq in Hz, and synchronous phase in degrees. Phase 0 is on-crest maximum
// energy gain, -90 degrees is the bunching zero-crossing, +90 degrees the
// debunching one.
func NewShortRF(v, freq, phaseDeg float64) *ShortRF {
	return &ShortRF{v: v, freq: freq, phase: phaseDeg}
}

func (e *ShortRF) Name() string { return "ShortRF" }

func (e *ShortRF) Kind() Kind      { return Thin }
func (e *ShortRF) Length() float64 { return 0 }
func (e *ShortRF) NSlice() int     { return 1 }

// Advance applies the RF kick to one particle. The reference particle has
// already been advanced through the gap, so its pt is the final value; the
// initial value is reconstructed from the on-crest kick.
func (e *ShortRF) Advance(p *beam.Phase, ref *beam.RefPart) {
	t := p.T

	k := (2.0 * math.Pi / beam.SpeedOfLight) * e.freq
	phi := e.phase * degree2rad

	// reference particle values, final and initial
	ptfRef := ref.Pt
	ptiRef := ptfRef + e.v*math.Cos(phi)
	bgf := math.Sqrt(ptfRef*ptfRef - 1.0)
	bgi := math.Sqrt(ptiRef*ptiRef - 1.0)

	// initial conversion from static to dynamic units
	px := p.Px * bgi
	py := p.Py * bgi
	pt := p.Pt * bgi

	// energy kick as a function of the time-of-flight coordinate
	pt = pt - e.v*math.Cos(k*t+phi) + e.v*math.Cos(phi)

	// final conversion from dynamic back to static units
	p.Px = px / bgf
	p.Py = py / bgf
	p.Pt = pt / bgf
}

// AdvanceRef applies the on-crest energy kick to the reference particle and
// rescales its momenta to the new energy.
func (e *ShortRF) AdvanceRef(ref *beam.RefPart) {
	px, py, pz := ref.Px, ref.Py, ref.Pz
	pt := ref.Pt

	phi := e.phase * degree2rad

	bgi := math.Sqrt(pt*pt - 1.0)

	ref.Pt = pt - e.v*math.Cos(phi)

	ptf := ref.Pt
	bgf := math.Sqrt(ptf*ptf - 1.0)

	// positions are unchanged; momenta rescale with beta*gamma
	ref.Px = px * bgf / bgi
	ref.Py = py * bgf / bgi
	ref.Pz = pz * bgf / bgi
}
