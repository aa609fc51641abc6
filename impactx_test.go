package impactx

import (
	"math"
	"testing"

	"github.com/n01r/impactx/beam"
	"github.com/n01r/impactx/bunch"
	"github.com/n01r/impactx/deposit"
	"github.com/n01r/impactx/elements"
)

func trackingBunch(xs []float64) *bunch.Container {
	pc := bunch.New()
	pc.SetDecomp(bunch.Decomp{Rank: 0, Tiles: 3})
	pc.SetRefParticle(beam.FromKineticEnergyEV(2.0e9, 938.272e6, 1.0))

	zero := make([]float64, len(xs))
	pc.AddNParticles(xs, zero, zero, zero, zero, zero,
		1.0/938.272e6, 1e-9)
	return pc
}

func TestTrackSweepsLostParticles(t *testing.T) {
	pc := trackingBunch([]float64{0, 5e-4, 2e-3, -3e-3, 1e-4})
	sink := bunch.New()
	pc.SetLostParticleContainer(sink)

	lattice := []elements.Element{
		elements.NewAperture(1e-3, 1e-3, elements.Rectangular),
	}
	man := NewManager(pc, lattice)
	man.SetWorkers(2)
	man.Track()

	if pc.TotalParticles() != 3 || pc.LiveParticles() != 3 {
		t.Errorf("Expected 3 live particles, got %d/%d",
			pc.LiveParticles(), pc.TotalParticles())
	}
	if sink.TotalParticles() != 2 {
		t.Fatalf("Expected 2 particles in the sink, got %d",
			sink.TotalParticles())
	}
	tile := sink.Tile(0)
	for j := 0; j < tile.Len(); j++ {
		p := tile.Phase(j)
		if p.ID >= 0 {
			t.Errorf("Expected negative id in the sink, got %d", p.ID)
		}
		if p.X != 2e-3 && p.X != -3e-3 {
			t.Errorf("Expected the out-of-bounds x intact, got %g", p.X)
		}
	}

	// a thin lattice does not move the reference particle
	if pc.RefParticle().S != 0 {
		t.Errorf("Expected s = 0, got %g", pc.RefParticle().S)
	}
}

// A particle whose transverse momentum exceeds its total momentum has no
// real trajectory through the bend. The map yields non-finite coordinates;
// the runtime must mark it lost at its pre-map coordinates instead of
// letting NaN spread.
func TestTrackMarksNonFiniteLost(t *testing.T) {
	pc := trackingBunch([]float64{0, 1e-4})

	// give the second particle an unphysically large py
	for i := 0; i < pc.NTiles(); i++ {
		tile := pc.Tile(i)
		for j := 0; j < tile.Len(); j++ {
			if p := tile.Phase(j); p.X == 1e-4 {
				p.Py = 2.0
				tile.SetPhase(j, p)
			}
		}
	}

	sink := bunch.New()
	pc.SetLostParticleContainer(sink)

	lattice := []elements.Element{
		elements.NewExactSbend(0.5, 10.0, 0.0, 2),
	}
	man := NewManager(pc, lattice)
	man.SetWorkers(2)
	man.Track()

	if pc.LiveParticles() != 1 {
		t.Fatalf("Expected 1 live particle, got %d", pc.LiveParticles())
	}
	if sink.TotalParticles() != 1 {
		t.Fatalf("Expected 1 particle in the sink, got %d",
			sink.TotalParticles())
	}

	p := sink.Tile(0).Phase(0)
	if p.X != 1e-4 || p.Py != 2.0 {
		t.Errorf("Expected pre-map coordinates in the sink, got %+v", p)
	}
	if !p.Finite() {
		t.Errorf("Expected finite sink coordinates, got %+v", p)
	}

	// the survivor must be clean
	tile := pc.Tile(0)
	for i := 0; i < pc.NTiles(); i++ {
		tile = pc.Tile(i)
		for j := 0; j < tile.Len(); j++ {
			if !tile.Phase(j).Finite() {
				t.Errorf("Expected finite live coordinates, got %+v",
					tile.Phase(j))
			}
		}
	}
}

func TestTrackAdvancesReference(t *testing.T) {
	pc := trackingBunch([]float64{0, 1e-4, -1e-4})

	lattice := []elements.Element{
		elements.NewExactSbend(0.5, 10.0, 0.0, 4),
		elements.NewCFbend(0.25, 10.0, 0.2, 2),
	}
	man := NewManager(pc, lattice)
	man.SetWorkers(2)
	man.Track()

	if math.Abs(pc.RefParticle().S-0.75) > 1e-14 {
		t.Errorf("Expected s = 0.75, got %g", pc.RefParticle().S)
	}
}

// A zero-strength kicker lattice must return every particle bit-identical.
func TestTrackZeroKickIdentity(t *testing.T) {
	xs := make([]float64, 1000)
	for i := range xs {
		xs[i] = 1e-3 * math.Sin(float64(i))
	}
	pc := trackingBunch(xs)

	before := map[int64]beam.Phase{}
	for i := 0; i < pc.NTiles(); i++ {
		tile := pc.Tile(i)
		for j := 0; j < tile.Len(); j++ {
			before[tile.ID(j)] = tile.Phase(j)
		}
	}

	lattice := []elements.Element{
		elements.NewKicker(0, 0, elements.Dimensionless),
	}
	man := NewManager(pc, lattice)
	man.SetWorkers(4)
	man.Track()

	for i := 0; i < pc.NTiles(); i++ {
		tile := pc.Tile(i)
		for j := 0; j < tile.Len(); j++ {
			p := tile.Phase(j)
			if p != before[p.ID] {
				t.Fatalf("Expected %+v, got %+v", before[p.ID], p)
			}
		}
	}
}

func TestTrackSliceHooksAndSpaceCharge(t *testing.T) {
	pc := trackingBunch([]float64{0, 1e-4, -1e-4, 5e-5})
	pc.SetParticleShape(1)

	grid := deposit.NewGrid(
		[3]float64{-4e-3, -4e-3, -4e-3},
		[3]float64{1e-3, 1e-3, 1e-3},
		[3]int{8, 8, 8},
		deposit.MaxShape,
	)
	grids := map[int]*deposit.Grid{0: grid}

	lattice := []elements.Element{
		elements.NewCFbend(0.5, 10.0, 0.0, 5),
	}
	man := NewManager(pc, lattice)
	man.SetWorkers(2)
	man.EnableSpaceCharge(grids, nil)

	calls := 0
	man.OnSlice(func(elem elements.Element, slice int) {
		calls++
		if elem.Name() != "CFbend" {
			t.Errorf("Expected CFbend in the hook, got %s", elem.Name())
		}
		if grid.TotalCharge() <= 0 {
			t.Errorf("Expected deposited charge before the hook")
		}
	})
	man.Track()

	if calls != 5 {
		t.Errorf("Expected 5 slice hook calls, got %d", calls)
	}
}
