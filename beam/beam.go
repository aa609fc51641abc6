/*package beam contains the phase-space primitives shared by every part of
impactx: the reference particle that defines the moving coordinate frame, the
per-particle phase-space coordinate block, and the frame mode that fixes the
meaning of the third coordinate slot.
*/
package beam

// Physical constants in SI units.
const (
	SpeedOfLight     = 299792458.0     // m/s
	ElementaryCharge = 1.602176634e-19 // C
)

// Frame selects the interpretation of the third position and momentum slots.
// At fixed s the slots hold c*time-of-flight and the energy deviation, at
// fixed t they hold the longitudinal position and momentum. The frame is a
// single process-wide mode: a container is never in both frames at once.
type Frame int

const (
	FixedS Frame = iota
	FixedT
)

func (f Frame) String() string {
	switch f {
	case FixedS:
		return "fixed-s"
	case FixedT:
		return "fixed-t"
	}
	panic("Unknown frame")
}
