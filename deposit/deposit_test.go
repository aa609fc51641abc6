package deposit

import (
	"math"
	"math/rand"
	"testing"
)

func testGrid(nghost int) *Grid {
	return NewGrid(
		[3]float64{0, 0, 0},
		[3]float64{1, 1, 1},
		[3]int{8, 8, 8},
		nghost,
	)
}

func TestShape1DWeights(t *testing.T) {
	table := []struct {
		order int
		u     float64
	}{
		{0, 0.5}, {0, 3.7}, {0, -1.2},
		{1, 0.5}, {1, 3.7}, {1, -1.2},
		{2, 0.5}, {2, 3.7}, {2, -1.2},
	}

	for i, test := range table {
		var idx [3]int
		var w [3]float64
		n := shape1D(test.order, test.u, &idx, &w)

		if n != test.order+1 {
			t.Errorf("%d) Expected %d cells, got %d",
				i, test.order+1, n)
		}

		sum := 0.0
		for a := 0; a < n; a++ {
			if w[a] < 0 {
				t.Errorf("%d) Expected nonnegative weight, got %g",
					i, w[a])
			}
			sum += w[a]
		}
		if math.Abs(sum-1) > 1e-14 {
			t.Errorf("%d) Expected weights to sum to 1, got %g", i, sum)
		}
	}
}

func TestShape1DCells(t *testing.T) {
	var idx [3]int
	var w [3]float64

	// nearest grid point: the containing cell
	shape1D(0, 3.7, &idx, &w)
	if idx[0] != 3 {
		t.Errorf("Expected cell 3, got %d", idx[0])
	}

	// cloud in cell at a cell center: all charge in that cell
	shape1D(1, 3.5, &idx, &w)
	if idx[0] != 3 || w[0] != 1 || w[1] != 0 {
		t.Errorf("Expected all charge in cell 3, got %v %v", idx, w)
	}

	// quadratic spline at a cell center: the classic 1/8, 3/4, 1/8
	shape1D(2, 3.5, &idx, &w)
	if idx[0] != 2 || idx[1] != 3 || idx[2] != 4 {
		t.Errorf("Expected cells 2..4, got %v", idx)
	}
	if math.Abs(w[0]-0.125) > 1e-14 || math.Abs(w[1]-0.75) > 1e-14 ||
		math.Abs(w[2]-0.125) > 1e-14 {
		t.Errorf("Expected weights (1/8, 3/4, 1/8), got %v", w)
	}
}

// Depositing anywhere inside the valid region must conserve total charge
// once the ghost halo is folded back, even right at the boundary.
func TestDepositConservesCharge(t *testing.T) {
	rng := rand.New(rand.NewSource(3))

	for order := 0; order <= MaxShape; order++ {
		g := testGrid(MaxShape)
		total := 0.0
		for i := 0; i < 100; i++ {
			x := rng.Float64() * 8
			y := rng.Float64() * 8
			z := rng.Float64() * 8
			g.Deposit(order, x, y, z, 1.0)
			total += 1.0
		}
		// boundary positions spread charge into the halo
		g.Deposit(order, 0, 0, 0, 2.0)
		g.Deposit(order, 7.999, 7.999, 7.999, 2.0)
		total += 4.0

		g.SumBoundary()
		if math.Abs(g.TotalCharge()-total) > 1e-10*total {
			t.Errorf("order %d) Expected total %g, got %g",
				order, total, g.TotalCharge())
		}
	}
}

func TestSumBoundaryClearsHalo(t *testing.T) {
	g := testGrid(2)
	g.Deposit(2, 0.1, 0.1, 0.1, 1.0)
	g.SumBoundary()

	for k := -2; k < 10; k++ {
		for j := -2; j < 10; j++ {
			for i := -2; i < 10; i++ {
				if g.valid(i, j, k) {
					continue
				}
				if g.At(i, j, k) != 0 {
					t.Fatalf("Expected empty halo at (%d,%d,%d), got %g",
						i, j, k, g.At(i, j, k))
				}
			}
		}
	}
}

func TestZeroThenDepositIdempotent(t *testing.T) {
	g := testGrid(1)
	deposit := func() {
		g.Zero()
		g.Deposit(1, 3.3, 4.4, 5.5, 2.5)
		g.SumBoundary()
	}

	deposit()
	first := make([]float64, len(g.data))
	copy(first, g.data)

	deposit()
	for i := range g.data {
		if g.data[i] != first[i] {
			t.Fatalf("Expected identical grids after redeposit")
		}
	}
}

func TestContains(t *testing.T) {
	g := testGrid(1)
	table := []struct {
		x, y, z float64
		in      bool
	}{
		{0, 0, 0, true},
		{7.999, 7.999, 7.999, true},
		{8, 0, 0, false},
		{-0.001, 0, 0, false},
		{4, 4, 4, true},
	}

	for i, test := range table {
		if g.Contains(test.x, test.y, test.z) != test.in {
			t.Errorf("%d) Expected Contains(%g, %g, %g) = %v",
				i, test.x, test.y, test.z, test.in)
		}
	}
}

func TestFloor(t *testing.T) {
	table := []struct {
		x float64
		i int
	}{
		{0, 0}, {0.9, 0}, {1.0, 1}, {-0.1, -1}, {-1.0, -1}, {-1.5, -2},
	}
	for i, test := range table {
		if floor(test.x) != test.i {
			t.Errorf("%d) Expected floor(%g) = %d, got %d",
				i, test.x, test.i, floor(test.x))
		}
	}
}

func BenchmarkDepositNGP(b *testing.B) { benchmarkDeposit(b, 0) }
func BenchmarkDepositCIC(b *testing.B) { benchmarkDeposit(b, 1) }
func BenchmarkDepositTSC(b *testing.B) { benchmarkDeposit(b, 2) }

func benchmarkDeposit(b *testing.B, order int) {
	g := NewGrid(
		[3]float64{0, 0, 0},
		[3]float64{1, 1, 1},
		[3]int{64, 64, 64},
		MaxShape,
	)
	rng := rand.New(rand.NewSource(4))
	n := 1000
	xs := make([]float64, 3*n)
	for i := range xs {
		xs[i] = rng.Float64() * 64
	}

	b.ResetTimer()
	for i := 0; i < (b.N/n)+1; i++ {
		for j := 0; j < n; j++ {
			g.Deposit(order, xs[3*j], xs[3*j+1], xs[3*j+2], 1.0)
		}
	}
}
