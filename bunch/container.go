/*package bunch stores the macro-particles of a beam, partitioned into tiles,
and owns the reference particle that defines their coordinate frame. The
container exposes the bulk operations the rest of impactx needs: appending
particles, reduced position statistics, charge deposition, and the transfer
of lost particles into a companion container.
*/
package bunch

import (
	"log"
	"runtime"

	"github.com/n01r/impactx/beam"
)

// Decomp describes the part of the spatial decomposition this container
// lives on: the owning rank and the number of tile buckets it holds. The
// decomposition itself is built by the surrounding runtime; the container
// only requires that it exists before particles are appended.
type Decomp struct {
	Rank  int
	Tiles int
}

// Container holds the macro-particles of a beam distributed over tiles.
type Container struct {
	frame beam.Frame
	ref   beam.RefPart

	decomp *Decomp
	tiles  []Tile

	// the particle shape order, -1 until configured
	shape int

	// non-owning reference to the lost-particle sink, nil until registered
	lost *Container

	nextID  int64
	workers int
}

// New creates an empty container in the fixed-s frame. Particles cannot be
// appended until SetDecomp has been called.
func New() *Container {
	return &Container{
		shape:   -1,
		nextID:  1,
		workers: runtime.NumCPU(),
	}
}

// SetDecomp attaches the spatial decomposition. It must be called exactly
// once, before any particles are appended.
func (c *Container) SetDecomp(d Decomp) {
	if c.decomp != nil {
		log.Fatalf("The container's decomposition was set twice.")
	}
	if d.Tiles < 1 {
		log.Fatalf("Decomposition needs at least one tile, got %d.", d.Tiles)
	}
	c.decomp = &d
	c.tiles = make([]Tile, d.Tiles)
}

// SetWorkers sets the number of goroutines used by bulk operations. The
// default is the number of logical cores.
func (c *Container) SetWorkers(n int) {
	if n < 1 {
		log.Fatalf("Need at least one worker, got %d.", n)
	}
	c.workers = n
}

// AddNParticles appends one macro-particle per input tuple. All six
// coordinate slices must have the same length. qm is the charge-to-mass
// ratio in e/eV shared by the new particles, and bunchChargeC the total
// charge of the bunch in C, from which the per-particle statistical weight
// is derived.
//
// Calling this before SetDecomp is a usage error and aborts the run: tile
// storage is sized by the decomposition.
func (c *Container) AddNParticles(
	x, y, t, px, py, pt []float64, qm, bunchChargeC float64,
) {
	if c.decomp == nil {
		log.Fatalf(
			"AddNParticles called before the spatial decomposition " +
				"was set.",
		)
	}
	n := len(x)
	if len(y) != n || len(t) != n ||
		len(px) != n || len(py) != n || len(pt) != n {
		log.Fatalf(
			"AddNParticles needs equal-length attribute slices, got "+
				"%d %d %d %d %d %d.",
			len(x), len(y), len(t), len(px), len(py), len(pt),
		)
	}
	if n == 0 {
		return
	}

	weight := abs(bunchChargeC) / beam.ElementaryCharge / float64(n)

	for i := 0; i < n; i++ {
		tile := &c.tiles[i%len(c.tiles)]
		tile.append(record{
			x: x[i], y: y[i], t: t[i],
			px: px[i], py: py[i], pt: pt[i],
			qm: qm, w: weight,
			id: c.nextID, cpu: int32(c.decomp.Rank),
		})
		c.nextID++
	}
}

func abs(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}

// SetRefParticle sets the reference particle attributes.
func (c *Container) SetRefParticle(r beam.RefPart) { c.ref = r }

// RefParticle returns the container's reference particle. The pointer is
// borrowed: only an element's reference map may mutate it, once per slice.
func (c *Container) RefParticle() *beam.RefPart { return &c.ref }

// SetLostParticleContainer registers the sink that receives particles
// marked lost. Losses marked while no sink is registered are removed
// without a trace at the next sweep, so the sink should be registered
// before any aperture runs.
func (c *Container) SetLostParticleContainer(lc *Container) { c.lost = lc }

// LostParticleContainer returns the registered sink, or nil.
func (c *Container) LostParticleContainer() *Container { return c.lost }

// SetParticleShape sets the interpolation order used by charge deposition.
// It can only be called once: the ghost regions of already-built grids are
// sized by the shape, so reconfiguring is a logic error.
func (c *Container) SetParticleShape(order int) {
	if c.shape >= 0 {
		log.Fatalf(
			"The particle shape was set twice; it can only be set "+
				"once per simulation (was %d, now %d).",
			c.shape, order,
		)
	}
	if order < 0 || order > 2 {
		log.Fatalf("Particle shape order %d is not in [0, 2].", order)
	}
	c.shape = order
}

// ParticleShape returns the configured interpolation order.
func (c *Container) ParticleShape() int {
	if c.shape < 0 {
		log.Fatalf("The particle shape was read before being set.")
	}
	return c.shape
}

// SetFrame switches the interpretation of the third coordinate slots. This
// is a process-wide mode change: the storage is untouched, only its meaning
// changes.
func (c *Container) SetFrame(f beam.Frame) { c.frame = f }

// Frame returns the active frame mode.
func (c *Container) Frame() beam.Frame { return c.frame }

// NTiles returns the number of tile buckets.
func (c *Container) NTiles() int { return len(c.tiles) }

// Tile returns the i-th tile.
func (c *Container) Tile(i int) *Tile { return &c.tiles[i] }

// TotalParticles counts all records, lost ones included.
func (c *Container) TotalParticles() int {
	n := 0
	for i := range c.tiles {
		n += c.tiles[i].Len()
	}
	return n
}

// LiveParticles counts the records not marked lost.
func (c *Container) LiveParticles() int {
	n := 0
	for i := range c.tiles {
		tile := &c.tiles[i]
		for j := 0; j < tile.Len(); j++ {
			if tile.id[j] > 0 {
				n++
			}
		}
	}
	return n
}

// PositionNames returns the ordered labels of the position slots under the
// active frame.
func (c *Container) PositionNames() []string {
	if c.frame == beam.FixedT {
		return []string{"position_x", "position_y", "position_z"}
	}
	return []string{"position_x", "position_y", "position_t"}
}

// MomentumNames returns the ordered labels of the momentum and scalar
// attribute slots under the active frame.
func (c *Container) MomentumNames() []string {
	if c.frame == beam.FixedT {
		return []string{
			"momentum_x", "momentum_y", "momentum_z", "qm", "weighting",
		}
	}
	return []string{
		"momentum_x", "momentum_y", "momentum_t", "qm", "weighting",
	}
}

// SweepLost moves every record marked lost out of the live tiles. If a lost
// sink is registered each record is copied there with all attributes and
// its negative id intact; without a sink the records are dropped, which is
// why the sink should be registered first.
func (c *Container) SweepLost() {
	for i := range c.tiles {
		tile := &c.tiles[i]
		for j := 0; j < tile.Len(); {
			if tile.id[j] >= 0 {
				j++
				continue
			}
			if c.lost != nil {
				c.lost.addRecord(tile.record(j))
			}
			tile.remove(j)
			// the swapped-in record at j has not been inspected yet
		}
	}
}

// Restore refills an empty container from checkpointed attribute columns,
// ids and sign included. The id counter is advanced past the largest
// restored identity so later appends stay unique.
func (c *Container) Restore(
	x, y, t, px, py, pt, qm, w []float64, ids []int64, cpus []int32,
) {
	if c.TotalParticles() != 0 {
		log.Fatalf("Restore called on a container that already has particles.")
	}
	for i := range x {
		c.addRecord(record{
			x: x[i], y: y[i], t: t[i],
			px: px[i], py: py[i], pt: pt[i],
			qm: qm[i], w: w[i], id: ids[i], cpu: cpus[i],
		})
		id := ids[i]
		if id < 0 {
			id = -id
		}
		if id >= c.nextID {
			c.nextID = id + 1
		}
	}
}

// addRecord appends a full record, creating a single tile if the container
// has none. Lost-particle sinks are plain containers that may never see a
// decomposition of their own.
func (c *Container) addRecord(r record) {
	if len(c.tiles) == 0 {
		c.tiles = make([]Tile, 1)
	}
	c.tiles[0].append(r)
}
