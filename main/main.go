package main

import (
	"flag"
	"fmt"
	"log"
	"runtime"

	"golang.org/x/exp/rand"

	"gonum.org/v1/gonum/stat/distuv"

	"gopkg.in/gcfg.v1"

	"github.com/n01r/impactx"
	"github.com/n01r/impactx/beam"
	"github.com/n01r/impactx/bunch"
	"github.com/n01r/impactx/checkpoint"
	"github.com/n01r/impactx/diag"
	"github.com/n01r/impactx/elements"
)

func main() {
	var (
		trackConfig   string
		exampleConfig bool
		threads       int
	)

	flag.StringVar(&trackConfig, "Track", "",
		"Track config file. Run with -ExampleConfig for an example.")
	flag.BoolVar(&exampleConfig, "ExampleConfig", false,
		"Print an example Track config file to stdout and exit.")
	flag.IntVar(&threads, "Threads", 0,
		"Number of worker goroutines. Overrides the config file value. "+
			"Defaults to the number of logical cores.")
	flag.Parse()

	if exampleConfig {
		fmt.Println(ExampleTrackFile)
		return
	}
	if trackConfig == "" {
		log.Fatalf(
			"No mode selected. Run with either the -Track or the " +
				"-ExampleConfig flag.",
		)
	}

	wrap := DefaultTrackWrapper()
	if err := gcfg.ReadFileInto(wrap, trackConfig); err != nil {
		log.Fatalf("Error reading '%s': %s", trackConfig, err.Error())
	}
	if threads > 0 {
		wrap.Track.Threads = threads
	}
	if err := wrap.Track.Validate(); err != nil {
		log.Fatalf("Error in '%s': %s", trackConfig, err.Error())
	}

	track(wrap)
}

func track(wrap *TrackWrapper) {
	con := &wrap.Track

	workers := con.Threads
	if workers < 1 {
		workers = runtime.NumCPU()
	}
	runtime.GOMAXPROCS(workers)

	lattice := buildLattice(wrap)
	pc := buildBunch(con)

	lost := bunch.New()
	lost.SetDecomp(bunch.Decomp{Rank: 0, Tiles: 1})
	pc.SetLostParticleContainer(lost)

	man := impactx.NewManager(pc, lattice)
	man.SetWorkers(workers)
	man.Log(true)

	mon, err := diag.NewBeamMonitor(con.Monitor)
	if err != nil {
		log.Fatalf("Error opening '%s': %s", con.Monitor, err.Error())
	}
	man.OnSlice(func(elem elements.Element, slice int) {
		if err := mon.Snapshot(pc); err != nil {
			log.Fatalf("Error writing monitor row: %s", err.Error())
		}
	})

	man.Track()

	if err := mon.Close(); err != nil {
		log.Fatalf("Error closing '%s': %s", con.Monitor, err.Error())
	}

	ref := pc.RefParticle()
	log.Printf(
		"Tracking finished at s = %g m with %d live and %d lost particles.",
		ref.S, pc.LiveParticles(), lost.TotalParticles(),
	)

	if con.Checkpoint != "" {
		if err := checkpoint.Write(con.Checkpoint, pc); err != nil {
			log.Fatalf(
				"Error writing '%s': %s", con.Checkpoint, err.Error(),
			)
		}
	}
}

func buildLattice(wrap *TrackWrapper) []elements.Element {
	names := wrap.Track.LatticeNames()
	lattice := make([]elements.Element, len(names))
	for i, name := range names {
		ec, ok := wrap.Element[name]
		if !ok {
			log.Fatalf(
				"Lattice names element '%s', but there is no "+
					"[Element \"%s\"] section.", name, name,
			)
		}
		elem, err := ec.Build(name)
		if err != nil {
			log.Fatalf(err.Error())
		}
		lattice[i] = elem
	}
	return lattice
}

func buildBunch(con *TrackConfig) *bunch.Container {
	if con.Restart != "" {
		pc, err := checkpoint.Read(con.Restart)
		if err != nil {
			log.Fatalf("Error reading '%s': %s", con.Restart, err.Error())
		}
		return pc
	}

	pc := bunch.New()
	pc.SetDecomp(bunch.Decomp{Rank: 0, Tiles: con.Tiles})
	pc.SetParticleShape(con.Shape)
	pc.SetRefParticle(beam.FromKineticEnergyEV(
		con.EnergyEV, con.MassEV, con.Charge,
	))

	src := rand.NewSource(uint64(con.Seed))
	n := con.Particles
	x, px := gaussianColumn(n, con.SigmaX, con.SigmaPx, src)
	y, py := gaussianColumn(n, con.SigmaY, con.SigmaPy, src)
	t, pt := gaussianColumn(n, con.SigmaT, con.SigmaPt, src)

	qm := con.Charge / con.MassEV
	pc.AddNParticles(x, y, t, px, py, pt, qm, con.BunchChargeC)

	return pc
}

// gaussianColumn samples one uncorrelated position-momentum plane.
func gaussianColumn(
	n int, sigmaU, sigmaPu float64, src rand.Source,
) (u, pu []float64) {
	distU := distuv.Normal{Mu: 0, Sigma: sigmaU, Src: src}
	distPu := distuv.Normal{Mu: 0, Sigma: sigmaPu, Src: src}

	u, pu = make([]float64, n), make([]float64, n)
	for i := range u {
		u[i], pu[i] = distU.Rand(), distPu.Rand()
	}
	return u, pu
}
