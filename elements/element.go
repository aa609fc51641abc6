/*package elements contains the beamline element transfer maps. Every element
is a pair of coordinate transforms: a per-particle map applied independently
to each macro-particle, and a reference map that advances the reference
particle through the same step. Per-particle maps have no shared mutable
state and no cross-particle ordering dependency, which is what allows the
container to apply them concurrently over tiles.
*/
package elements

import (
	"math"

	"github.com/n01r/impactx/beam"
)

const degree2rad = math.Pi / 180.0

// Kind tags an element as having physical length or not.
type Kind int

const (
	// Thick elements carry a length and a slice count. Each call to the
	// maps advances by length/nslice so external effects can be
	// interleaved between slices.
	Thick Kind = iota
	// Thin elements are zero-length single-shot kicks.
	Thin
)

// Element is a single unit of beamline physics.
type Element interface {
	Name() string
	Kind() Kind

	// Length returns the full element length in m, 0 for thin elements.
	Length() float64
	// NSlice returns the number of sub-steps a thick element is split
	// into, 1 for thin elements.
	NSlice() int

	// Advance applies the per-particle map for one slice. It mutates p in
	// place and reads, but never writes, the reference particle.
	Advance(p *beam.Phase, ref *beam.RefPart)
	// AdvanceRef applies the companion reference-particle map for one
	// slice. It is the only operation that mutates the reference particle.
	AdvanceRef(ref *beam.RefPart)

	// Finalize runs once after the element's last slice. A no-op for all
	// elements defined here.
	Finalize()
}

// segment carries the length and slice count shared by all thick elements.
type segment struct {
	ds     float64
	nslice int
}

func (s segment) Kind() Kind      { return Thick }
func (s segment) Length() float64 { return s.ds }
func (s segment) NSlice() int     { return s.nslice }

// sliceDs returns the length of one slice.
func (s segment) sliceDs() float64 { return s.ds / float64(s.nslice) }

// thin is embedded by all zero-length elements. Its reference map is the
// identity: a zero-length element does not move the reference particle.
type thin struct{}

func (thin) Kind() Kind               { return Thin }
func (thin) Length() float64          { return 0 }
func (thin) NSlice() int              { return 1 }
func (thin) AdvanceRef(*beam.RefPart) {}

// noFinalize is embedded by elements without a finalize step.
type noFinalize struct{}

func (noFinalize) Finalize() {}
