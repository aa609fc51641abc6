package beam

import "math"

// Phase is the phase-space block of a single macro-particle, borrowed from
// container storage for the duration of one map application. Positions are in
// m, momenta are scaled by the reference momentum magnitude. The third slots
// follow the active Frame: (T, Pt) at fixed s, (z, pz) at fixed t.
//
// The id doubles as the liveness flag: a negative sign means the particle is
// lost, and the absolute value preserves its original identity.
type Phase struct {
	X, Y, T    float64
	Px, Py, Pt float64
	ID         int64
}

// Lost returns true if the particle has been marked lost.
func (p *Phase) Lost() bool { return p.ID < 0 }

// MarkLost flips the sign of the id in place. Marking an already lost
// particle is a no-op, so the original identity is never destroyed.
func (p *Phase) MarkLost() {
	if p.ID > 0 {
		p.ID = -p.ID
	}
}

// Finite returns false if any coordinate is NaN or infinite.
func (p Phase) Finite() bool {
	for _, v := range [6]float64{p.X, p.Y, p.T, p.Px, p.Py, p.Pt} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}
