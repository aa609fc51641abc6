package impactx

import (
	"github.com/n01r/impactx/elements"
)

// Push advances the bunch through one element, slice by slice. Within a
// slice the reference particle is advanced first, so every particle map
// reads the already-advanced reference state of its own slice. After the
// last slice the element's finalize hook runs and lost particles are swept
// into the registered sink.
func (man *Manager) Push(elem elements.Element) {
	for slice := 0; slice < elem.NSlice(); slice++ {
		// the one sequential step: exactly one writer, before any reader
		elem.AdvanceRef(man.pc.RefParticle())

		man.advanceParticles(elem)

		if man.rho != nil {
			man.pc.DepositCharge(man.rho, man.refRatio)
		}
		for _, f := range man.onSlice {
			f(elem, slice)
		}
	}

	elem.Finalize()
	man.pc.SweepLost()
}

// advanceParticles applies the element's per-particle map to every live
// particle. Tiles are handed out through a channel so that workers pull
// work as they finish: particle counts per tile are highly non-uniform and
// a static split would leave workers idle.
func (man *Manager) advanceParticles(elem elements.Element) {
	work := make(chan int, man.pc.NTiles())
	for i := 0; i < man.pc.NTiles(); i++ {
		work <- i
	}
	close(work)

	out := make(chan int, man.workers)
	for id := 0; id < man.workers-1; id++ {
		go man.chanAdvance(id, elem, work, out)
	}
	man.chanAdvance(man.workers-1, elem, work, out)

	for i := 0; i < man.workers; i++ {
		<-out
	}
}

// chanAdvance is a tile worker. The reference particle is read-only here:
// maps receive a stable, fully-updated reference state for the whole slice.
func (man *Manager) chanAdvance(
	id int, elem elements.Element, work <-chan int, out chan<- int,
) {
	ref := man.pc.RefParticle()

	for i := range work {
		tile := man.pc.Tile(i)
		for j := 0; j < tile.Len(); j++ {
			p := tile.Phase(j)
			if p.Lost() {
				continue
			}

			elem.Advance(&p, ref)

			// A map that ran out of its physical domain (for example a
			// square root of a negative argument) yields non-finite
			// coordinates. Mark the particle lost instead of letting
			// NaN propagate through the rest of the lattice.
			if !p.Finite() {
				p = tile.Phase(j)
				p.MarkLost()
			}

			tile.SetPhase(j, p)
		}
	}

	out <- id
}
