package main

import (
	"fmt"
	"strings"

	"github.com/n01r/impactx/elements"
)

const ExampleTrackFile = `[Track]

#######################
# Required Parameters #
#######################

# Number of macro-particles in the bunch.
Particles = 10000

# Kinetic energy of the reference particle in eV.
EnergyEV = 2.0e9
# Rest mass energy of the tracked species in eV.
MassEV = 938.272e6
# Charge of the tracked species in units of the elementary charge.
Charge = 1.0
# Total bunch charge in C.
BunchChargeC = 1.0e-9

# Space-separated element names, tracked in order. Each name must have an
# [Element "name"] section below.
Lattice = bend1

#######################
# Optional Parameters #
#######################

# RMS widths of the initial Gaussian bunch: positions in m, momenta
# dimensionless. Default is 1e-3 for positions and 1e-4 for momenta.
# SigmaX = 1e-3
# SigmaY = 1e-3
# SigmaT = 1e-3
# SigmaPx = 1e-4
# SigmaPy = 1e-4
# SigmaPt = 1e-4

# Charge deposition shape order (0 - 2) and tile count.
# Shape = 2
# Tiles = 64

# Number of worker goroutines. Default is the number of logical cores.
# Threads = 0

# Random seed of the initial bunch.
# Seed = 42

# CSV beam monitor output, written after every slice.
# Monitor = monitor.csv

# Checkpoint file written after tracking completes, and an optional
# checkpoint to restart from instead of sampling a fresh bunch.
# Checkpoint = bunch.ckpt
# Restart = bunch.ckpt

[Element "bend1"]
Type = ExactSbend
Ds = 0.5
# Bend angle in degrees.
Phi = 10.0
NSlice = 10`

// TrackConfig is the [Track] section of a tracking run.
type TrackConfig struct {
	Particles    int
	EnergyEV     float64
	MassEV       float64
	Charge       float64
	BunchChargeC float64
	Lattice      string

	SigmaX, SigmaY, SigmaT    float64
	SigmaPx, SigmaPy, SigmaPt float64

	Shape   int
	Tiles   int
	Threads int
	Seed    int

	Monitor    string
	Checkpoint string
	Restart    string
}

// TrackWrapper is the gcfg wrapper: one [Track] section plus any number of
// [Element "name"] subsections.
type TrackWrapper struct {
	Track   TrackConfig
	Element map[string]*ElementConfig
}

// DefaultTrackWrapper returns a wrapper with the optional parameters set to
// their defaults.
func DefaultTrackWrapper() *TrackWrapper {
	return &TrackWrapper{
		Track: TrackConfig{
			SigmaX: 1e-3, SigmaY: 1e-3, SigmaT: 1e-3,
			SigmaPx: 1e-4, SigmaPy: 1e-4, SigmaPt: 1e-4,
			Shape: 2,
			Tiles: 64,
			Seed:  42,
		},
	}
}

func (con *TrackConfig) Validate() error {
	if con.Restart == "" {
		if con.Particles < 1 {
			return fmt.Errorf("Need a positive 'Particles' value.")
		}
		if con.EnergyEV <= 0 || con.MassEV <= 0 {
			return fmt.Errorf(
				"Need positive 'EnergyEV' and 'MassEV' values.",
			)
		}
		if con.Charge == 0 {
			return fmt.Errorf("Need a nonzero 'Charge' value.")
		}
	}
	if strings.TrimSpace(con.Lattice) == "" {
		return fmt.Errorf("Need a non-empty 'Lattice' value.")
	}
	if con.Shape < 0 || con.Shape > 2 {
		return fmt.Errorf("'Shape' must be in [0, 2], but is %d.", con.Shape)
	}
	if con.Tiles < 1 {
		return fmt.Errorf("'Tiles' must be positive, but is %d.", con.Tiles)
	}
	return nil
}

// LatticeNames splits the ordered element name list.
func (con *TrackConfig) LatticeNames() []string {
	return strings.Fields(con.Lattice)
}

// ElementConfig is one [Element "name"] subsection. Which fields are
// meaningful depends on Type; unused fields are ignored.
type ElementConfig struct {
	Type string

	// thick elements
	Ds     float64
	NSlice int

	// bends
	Phi float64 // degrees
	B   float64 // T
	Rc  float64 // m
	K   float64 // m^-2

	// thin dipole
	Theta float64 // degrees

	// kicker
	Xkick, Ykick float64
	Unit         string // "" or "dimensionless" or "Tm"

	// aperture
	Xmax, Ymax float64
	Shape      string // "rectangular" or "elliptical"

	// rf cavity
	V     float64
	Freq  float64 // Hz
	Phase float64 // degrees

	// dipole edge
	Psi float64 // rad
	G   float64 // m
	K2  float64
}

// Build constructs the element this subsection describes. Configuration
// mistakes are reported against the section name.
func (ec *ElementConfig) Build(name string) (elements.Element, error) {
	switch ec.Type {
	case "ExactSbend":
		return elements.NewExactSbend(ec.Ds, ec.Phi, ec.B, ec.nslice()), nil
	case "CFbend":
		return elements.NewCFbend(ec.Ds, ec.Rc, ec.K, ec.nslice()), nil
	case "ThinDipole":
		return elements.NewThinDipole(ec.Theta, ec.Rc), nil
	case "Kicker":
		unit := elements.Dimensionless
		switch strings.ToLower(ec.Unit) {
		case "", "dimensionless":
		case "tm":
			unit = elements.Tm
		default:
			return nil, fmt.Errorf(
				"Element '%s' has unknown kick unit '%s'.", name, ec.Unit,
			)
		}
		return elements.NewKicker(ec.Xkick, ec.Ykick, unit), nil
	case "Aperture":
		shape := elements.Rectangular
		switch strings.ToLower(ec.Shape) {
		case "", "rectangular":
		case "elliptical":
			shape = elements.Elliptical
		default:
			return nil, fmt.Errorf(
				"Element '%s' has unknown aperture shape '%s'.",
				name, ec.Shape,
			)
		}
		return elements.NewAperture(ec.Xmax, ec.Ymax, shape), nil
	case "ShortRF":
		return elements.NewShortRF(ec.V, ec.Freq, ec.Phase), nil
	case "DipEdge":
		return elements.NewDipEdge(ec.Psi, ec.Rc, ec.G, ec.K2), nil
	case "":
		return nil, fmt.Errorf("Element '%s' has no 'Type' value.", name)
	}
	return nil, fmt.Errorf(
		"Element '%s' has unrecognized type '%s'.", name, ec.Type,
	)
}

func (ec *ElementConfig) nslice() int {
	if ec.NSlice == 0 {
		return 1
	}
	return ec.NSlice
}
