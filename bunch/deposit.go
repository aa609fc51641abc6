package bunch

import (
	"sort"

	"github.com/n01r/impactx/beam"
	"github.com/n01r/impactx/deposit"
)

// DepositCharge deposits the charge of every live particle onto the given
// per-level grids. Each grid is zeroed first, so the operation is idempotent
// per invocation and safe to call repeatedly across a stepping loop. Workers
// pull tiles from a channel and deposit into private buffers; the buffers
// are then summed into the level grid and the ghost halo is folded back, so
// every physical contribution is counted exactly once.
//
// refRatio holds the refinement ratios between consecutive levels and must
// be consistent with the grid geometry.
func (c *Container) DepositCharge(
	grids map[int]*deposit.Grid, refRatio []int,
) {
	order := c.ParticleShape()
	deposit.CheckRatios(grids, refRatio)

	levels := make([]int, 0, len(grids))
	for lev := range grids {
		levels = append(levels, lev)
	}
	sort.Ints(levels)

	for _, lev := range levels {
		grid := grids[lev]
		grid.Zero()

		bufs := make([]*deposit.Grid, c.workers)
		for w := range bufs {
			bufs[w] = grid.Clone()
		}

		// tiles are handed out dynamically: particle counts per tile
		// are uneven, so workers pull rather than take a fixed share
		work := make(chan int, len(c.tiles))
		for i := range c.tiles {
			work <- i
		}
		close(work)

		out := make(chan int, c.workers)
		for w := 0; w < c.workers; w++ {
			go c.chanDeposit(w, order, bufs[w], work, out)
		}

		// merge worker buffers: this is the boundary-sum reduction
		for w := 0; w < c.workers; w++ {
			id := <-out
			grid.Add(bufs[id])
		}

		grid.SumBoundary()
	}
}

// chanDeposit is a worker: it deposits the particles of every tile it pulls
// from work into its private buffer, then reports its id on out.
func (c *Container) chanDeposit(
	id, order int, buf *deposit.Grid, work <-chan int, out chan<- int,
) {
	for i := range work {
		tile := &c.tiles[i]
		for j := 0; j < tile.Len(); j++ {
			if tile.id[j] < 0 {
				continue
			}
			x, y, z := tile.x[j], tile.y[j], tile.t[j]
			if !buf.Contains(x, y, z) {
				continue
			}
			q := tile.w[j] * beam.ElementaryCharge
			buf.Deposit(order, x, y, z, q)
		}
	}
	out <- id
}
