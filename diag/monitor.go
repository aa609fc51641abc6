/*package diag collects reduced beam statistics along the lattice and writes
them out as a CSV time series for offline analysis.
*/
package diag

import (
	"fmt"
	"math"
	"os"

	"github.com/gocarina/gocsv"
	"gonum.org/v1/gonum/stat"

	"github.com/n01r/impactx/bunch"
)

// Record is one row of the beam monitor: the reduced position statistics of
// the live bunch at one longitudinal location.
type Record struct {
	S    float64 `csv:"s"`
	Live int     `csv:"live"`
	Lost int     `csv:"lost"`

	XMean float64 `csv:"x_mean"`
	XStd  float64 `csv:"x_std"`
	YMean float64 `csv:"y_mean"`
	YStd  float64 `csv:"y_std"`
	TMean float64 `csv:"t_mean"`
	TStd  float64 `csv:"t_std"`

	XMin float64 `csv:"x_min"`
	XMax float64 `csv:"x_max"`
	YMin float64 `csv:"y_min"`
	YMax float64 `csv:"y_max"`
	TMin float64 `csv:"t_min"`
	TMax float64 `csv:"t_max"`

	XEmit float64 `csv:"x_emittance"`
	YEmit float64 `csv:"y_emittance"`
}

// BeamMonitor appends one Record per snapshot to a CSV file.
type BeamMonitor struct {
	file          *os.File
	headerWritten bool
}

// NewBeamMonitor creates the monitor file. An empty fname disables the
// monitor: all methods on a nil monitor are no-ops.
func NewBeamMonitor(fname string) (*BeamMonitor, error) {
	if fname == "" {
		return nil, nil
	}
	f, err := os.Create(fname)
	if err != nil {
		return nil, fmt.Errorf("creating beam monitor file: %w", err)
	}
	return &BeamMonitor{file: f}, nil
}

// Snapshot reduces the container's position statistics and appends them to
// the monitor file.
func (m *BeamMonitor) Snapshot(pc *bunch.Container) error {
	if m == nil {
		return nil
	}

	min, max := pc.MinMaxPositions()
	mean, std := pc.MeanStdPositions()
	live := pc.LiveParticles()

	rec := Record{
		S:    pc.RefParticle().S,
		Live: live,
		Lost: pc.TotalParticles() - live,

		XMean: mean[0], XStd: std[0],
		YMean: mean[1], YStd: std[1],
		TMean: mean[2], TStd: std[2],

		XMin: min[0], XMax: max[0],
		YMin: min[1], YMax: max[1],
		TMin: min[2], TMax: max[2],
	}
	rec.XEmit, rec.YEmit = Emittances(pc)

	records := []Record{rec}
	if !m.headerWritten {
		if err := gocsv.Marshal(records, m.file); err != nil {
			return fmt.Errorf("writing beam monitor: %w", err)
		}
		m.headerWritten = true
		return nil
	}
	if err := gocsv.MarshalWithoutHeaders(records, m.file); err != nil {
		return fmt.Errorf("writing beam monitor: %w", err)
	}
	return nil
}

// Close closes the monitor file.
func (m *BeamMonitor) Close() error {
	if m == nil {
		return nil
	}
	return m.file.Close()
}

// Emittances returns the rms transverse emittances of the live bunch,
// eps_u = sqrt(<u^2><pu^2> - <u*pu>^2) with centered, weighted moments.
func Emittances(pc *bunch.Container) (ex, ey float64) {
	n := pc.TotalParticles()
	x := make([]float64, 0, n)
	px := make([]float64, 0, n)
	y := make([]float64, 0, n)
	py := make([]float64, 0, n)
	w := make([]float64, 0, n)

	for i := 0; i < pc.NTiles(); i++ {
		tile := pc.Tile(i)
		for j := 0; j < tile.Len(); j++ {
			p := tile.Phase(j)
			if p.Lost() {
				continue
			}
			x, px = append(x, p.X), append(px, p.Px)
			y, py = append(y, p.Y), append(py, p.Py)
			w = append(w, tile.Weight(j))
		}
	}
	if len(w) < 2 {
		return 0, 0
	}

	return emittance(x, px, w), emittance(y, py, w)
}

func emittance(u, pu, w []float64) float64 {
	uu := stat.Variance(u, w)
	pp := stat.Variance(pu, w)
	up := stat.Covariance(u, pu, w)

	det := uu*pp - up*up
	if det <= 0 {
		return 0
	}
	return math.Sqrt(det)
}
