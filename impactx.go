/*package impactx tracks bunches of charged macro-particles through a
beamline. The Manager owns the slice-execution loop: for every slice of
every element it advances the reference particle through the element's
reference map, then applies the element's per-particle map to all live
particles, in parallel over the container's tiles, and finally sweeps
particles marked lost into the registered lost-particle container.
*/
package impactx

import (
	"log"
	"runtime"

	"github.com/n01r/impactx/bunch"
	"github.com/n01r/impactx/deposit"
	"github.com/n01r/impactx/elements"
)

// SliceFunc is called after every completed slice, with the element just
// applied and the slice index. Space-charge solves and beam monitors hook
// in here.
type SliceFunc func(elem elements.Element, slice int)

// Manager drives a bunch through a lattice.
type Manager struct {
	pc      *bunch.Container
	lattice []elements.Element

	workers int
	log     bool

	// optional space-charge deposition between slices
	rho      map[int]*deposit.Grid
	refRatio []int

	onSlice []SliceFunc
}

// NewManager creates a tracking manager for the given container and
// lattice. The number of workers defaults to the number of logical cores.
func NewManager(pc *bunch.Container, lattice []elements.Element) *Manager {
	man := &Manager{
		pc:      pc,
		lattice: lattice,
		workers: runtime.NumCPU(),
	}
	runtime.GOMAXPROCS(man.workers)
	return man
}

// Log enables or disables progress logging.
func (man *Manager) Log(flag bool) { man.log = flag }

// SetWorkers sets the number of tile workers.
func (man *Manager) SetWorkers(n int) {
	if n < 1 {
		log.Fatalf("Need at least one worker, got %d.", n)
	}
	man.workers = n
	man.pc.SetWorkers(n)
}

// EnableSpaceCharge registers the charge grids deposited onto between
// slices. The field solve itself happens in the OnSlice hooks of whoever
// registered the grids.
func (man *Manager) EnableSpaceCharge(
	rho map[int]*deposit.Grid, refRatio []int,
) {
	man.rho = rho
	man.refRatio = refRatio
}

// OnSlice registers a hook run after every completed slice.
func (man *Manager) OnSlice(f SliceFunc) {
	man.onSlice = append(man.onSlice, f)
}

// Track pushes the bunch through the full lattice in order.
func (man *Manager) Track() {
	for i, elem := range man.lattice {
		if man.log {
			log.Printf(
				"Tracking element %d/%d: %s",
				i+1, len(man.lattice), elem.Name(),
			)
		}
		man.Push(elem)
	}
}
