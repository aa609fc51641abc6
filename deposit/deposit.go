/*package deposit accumulates macro-particle charge onto scalar grids for the
field solver. A grid owns a ghost halo sized by the particle shape order;
workers deposit into private buffers which are then summed into the level
grid, and the ghost halo is folded back into the valid region so that charge
split across a boundary is counted exactly once.
*/
package deposit

import (
	"log"
)

// MaxShape is the highest supported interpolation order.
const MaxShape = 2

// Grid is a single-level scalar charge grid with a ghost halo. Data is laid
// out x-fastest; valid cell indices run over [0, Dims), the halo extends
// NGhost cells beyond each face.
type Grid struct {
	Origin   [3]float64 // position of the low corner of the valid region in m
	CellSize [3]float64 // cell widths in m
	Dims     [3]int     // valid cells per dimension
	NGhost   int

	data []float64
}

// NewGrid creates a zeroed grid. The ghost width must cover the particle
// shape's support, i.e. nghost >= the interpolation order.
func NewGrid(origin, cellSize [3]float64, dims [3]int, nghost int) *Grid {
	for k := 0; k < 3; k++ {
		if dims[k] < 1 || cellSize[k] <= 0 {
			log.Fatalf(
				"Invalid grid geometry: dims=%v, cell size=%v.",
				dims, cellSize,
			)
		}
	}
	if nghost < 0 {
		log.Fatalf("Invalid ghost width %d.", nghost)
	}

	g := &Grid{Origin: origin, CellSize: cellSize, Dims: dims, NGhost: nghost}
	n := 1
	for k := 0; k < 3; k++ {
		n *= dims[k] + 2*nghost
	}
	g.data = make([]float64, n)
	return g
}

// Clone returns a zeroed grid with the same geometry, used as a per-worker
// deposition buffer.
func (g *Grid) Clone() *Grid {
	return NewGrid(g.Origin, g.CellSize, g.Dims, g.NGhost)
}

// index maps cell coordinates, ghost range included, to the flat data slice.
func (g *Grid) index(i, j, k int) int {
	nx := g.Dims[0] + 2*g.NGhost
	ny := g.Dims[1] + 2*g.NGhost
	return (i + g.NGhost) + nx*((j+g.NGhost)+ny*(k+g.NGhost))
}

// At returns the charge in cell (i, j, k). Ghost cells are addressable with
// indices in [-NGhost, Dims+NGhost).
func (g *Grid) At(i, j, k int) float64 { return g.data[g.index(i, j, k)] }

// Zero clears the grid, ghost halo included.
func (g *Grid) Zero() {
	for i := range g.data {
		g.data[i] = 0
	}
}

// Add accumulates the contents of buf into g. Both grids must share a
// geometry; this is the reduction step that merges worker buffers.
func (g *Grid) Add(buf *Grid) {
	if len(buf.data) != len(g.data) {
		panic("Grid geometry mismatch in Add")
	}
	for i := range g.data {
		g.data[i] += buf.data[i]
	}
}

// SumBoundary folds every ghost cell into the nearest valid cell and clears
// the halo. After this call all deposited charge lives in the valid region.
func (g *Grid) SumBoundary() {
	if g.NGhost == 0 {
		return
	}
	lo := -g.NGhost
	for k := lo; k < g.Dims[2]+g.NGhost; k++ {
		for j := lo; j < g.Dims[1]+g.NGhost; j++ {
			for i := lo; i < g.Dims[0]+g.NGhost; i++ {
				if g.valid(i, j, k) {
					continue
				}
				idx := g.index(i, j, k)
				if g.data[idx] == 0 {
					continue
				}
				ci, cj, ck := clamp(i, g.Dims[0]),
					clamp(j, g.Dims[1]), clamp(k, g.Dims[2])
				g.data[g.index(ci, cj, ck)] += g.data[idx]
				g.data[idx] = 0
			}
		}
	}
}

func (g *Grid) valid(i, j, k int) bool {
	return i >= 0 && i < g.Dims[0] &&
		j >= 0 && j < g.Dims[1] &&
		k >= 0 && k < g.Dims[2]
}

func clamp(i, n int) int {
	if i < 0 {
		return 0
	}
	if i >= n {
		return n - 1
	}
	return i
}

// Contains returns true if the position falls inside the valid region.
func (g *Grid) Contains(x, y, z float64) bool {
	p := [3]float64{x, y, z}
	for k := 0; k < 3; k++ {
		span := float64(g.Dims[k]) * g.CellSize[k]
		if p[k] < g.Origin[k] || p[k] >= g.Origin[k]+span {
			return false
		}
	}
	return true
}

// TotalCharge sums the valid region.
func (g *Grid) TotalCharge() float64 {
	sum := 0.0
	for k := 0; k < g.Dims[2]; k++ {
		for j := 0; j < g.Dims[1]; j++ {
			for i := 0; i < g.Dims[0]; i++ {
				sum += g.data[g.index(i, j, k)]
			}
		}
	}
	return sum
}

// Deposit adds charge q at position (x, y, z), spread over nearby cells by
// the shape factor of the given order. Contributions that would land beyond
// the ghost halo are dropped.
func (g *Grid) Deposit(order int, x, y, z, q float64) {
	var ix, iy, iz [3]int
	var wx, wy, wz [3]float64

	nx := shape1D(order, (x-g.Origin[0])/g.CellSize[0], &ix, &wx)
	ny := shape1D(order, (y-g.Origin[1])/g.CellSize[1], &iy, &wy)
	nz := shape1D(order, (z-g.Origin[2])/g.CellSize[2], &iz, &wz)

	for c := 0; c < nz; c++ {
		if !g.inHalo(iz[c], 2) {
			continue
		}
		for b := 0; b < ny; b++ {
			if !g.inHalo(iy[b], 1) {
				continue
			}
			for a := 0; a < nx; a++ {
				if !g.inHalo(ix[a], 0) {
					continue
				}
				g.data[g.index(ix[a], iy[b], iz[c])] +=
					q * wx[a] * wy[b] * wz[c]
			}
		}
	}
}

func (g *Grid) inHalo(i, dim int) bool {
	return i >= -g.NGhost && i < g.Dims[dim]+g.NGhost
}

// shape1D fills the cell indices and weights of the one-dimensional shape
// factor of the given order at position u, measured in cell widths from the
// grid origin. It returns the number of cells touched.
//
// Order 0 is nearest-grid-point, 1 is cloud-in-cell, 2 is the
// triangular-shaped-cloud quadratic spline. Weights sum to one.
func shape1D(order int, u float64, idx *[3]int, w *[3]float64) int {
	switch order {
	case 0:
		idx[0] = floor(u)
		w[0] = 1
		return 1
	case 1:
		s := u - 0.5
		i0 := floor(s)
		f := s - float64(i0)
		idx[0], idx[1] = i0, i0+1
		w[0], w[1] = 1-f, f
		return 2
	case 2:
		i0 := floor(u)
		d := u - (float64(i0) + 0.5)
		idx[0], idx[1], idx[2] = i0-1, i0, i0+1
		w[0] = 0.5 * (0.5 - d) * (0.5 - d)
		w[1] = 0.75 - d*d
		w[2] = 0.5 * (0.5 + d) * (0.5 + d)
		return 3
	}
	log.Fatalf("Particle shape order %d is not in [0, %d].", order, MaxShape)
	panic("unreachable")
}

func floor(x float64) int {
	i := int(x)
	if x < 0 && float64(i) != x {
		i--
	}
	return i
}

// CheckRatios verifies that the per-level grids are consistent with the
// refinement ratios between levels: level l must refine level l-1 by
// refRatio[l-1] in every dimension. Violations are logic errors in the
// caller and abort the run.
func CheckRatios(grids map[int]*Grid, refRatio []int) {
	for lev := 1; ; lev++ {
		fine, ok := grids[lev]
		if !ok {
			break
		}
		coarse, ok := grids[lev-1]
		if !ok {
			log.Fatalf("Grid level %d present without level %d.", lev, lev-1)
		}
		if lev-1 >= len(refRatio) {
			log.Fatalf(
				"No refinement ratio given for levels %d -> %d.",
				lev-1, lev,
			)
		}
		r := float64(refRatio[lev-1])
		for k := 0; k < 3; k++ {
			if !approxEq(coarse.CellSize[k], fine.CellSize[k]*r) {
				log.Fatalf(
					"Level %d cell size %g is not %gx finer than "+
						"level %d cell size %g.",
					lev, fine.CellSize[k], r, lev-1, coarse.CellSize[k],
				)
			}
		}
	}
}

func approxEq(a, b float64) bool {
	d := a - b
	if d < 0 {
		d = -d
	}
	return d <= 1e-12*(a+b)
}
