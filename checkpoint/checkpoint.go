/*package checkpoint serializes the state a restarted run needs: the bunch's
particle attribute arrays and the reference particle's scalar state. Files
carry a small fixed header followed by one zstd-compressed block per
attribute column.
*/
package checkpoint

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"os"

	"github.com/DataDog/zstd"

	"github.com/n01r/impactx/beam"
	"github.com/n01r/impactx/bunch"
)

const (
	// MagicNumber starts every checkpoint file so that reading something
	// else by accident fails fast.
	MagicNumber = 0x1beab1e5
	Version     = 1
)

// All checkpoint files are little endian.
var order = binary.LittleEndian

type header struct {
	Magic, Version uint32
	Frame          int32
	Shape          int32
	Count          int64

	// reference particle scalars
	X, Y, Z, T     float64
	Px, Py, Pz, Pt float64
	S              float64
	MassEV, Charge float64
}

// Write serializes the container to fname. Lost particles that have not
// been swept out yet are written as-is, negative ids included: a restart
// sees exactly the state that was checkpointed.
func Write(fname string, pc *bunch.Container) error {
	n := pc.TotalParticles()

	cols := make([][]float64, 8)
	for k := range cols {
		cols[k] = make([]float64, 0, n)
	}
	ids := make([]int64, 0, n)
	cpus := make([]int32, 0, n)

	for i := 0; i < pc.NTiles(); i++ {
		tile := pc.Tile(i)
		for j := 0; j < tile.Len(); j++ {
			p := tile.Phase(j)
			cols[0] = append(cols[0], p.X)
			cols[1] = append(cols[1], p.Y)
			cols[2] = append(cols[2], p.T)
			cols[3] = append(cols[3], p.Px)
			cols[4] = append(cols[4], p.Py)
			cols[5] = append(cols[5], p.Pt)
			cols[6] = append(cols[6], tile.ChargeToMass(j))
			cols[7] = append(cols[7], tile.Weight(j))
			ids = append(ids, p.ID)
			cpus = append(cpus, tile.Rank(j))
		}
	}

	ref := pc.RefParticle()
	hd := header{
		Magic: MagicNumber, Version: Version,
		Frame: int32(pc.Frame()), Shape: int32(pc.ParticleShape()),
		Count: int64(n),
		X:     ref.X, Y: ref.Y, Z: ref.Z, T: ref.T,
		Px: ref.Px, Py: ref.Py, Pz: ref.Pz, Pt: ref.Pt,
		S: ref.S, MassEV: ref.MassEV, Charge: ref.Charge,
	}

	f, err := os.Create(fname)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := binary.Write(f, order, &hd); err != nil {
		return err
	}
	for _, col := range cols {
		if err := writeBlock(f, float64Bytes(col)); err != nil {
			return err
		}
	}
	if err := writeBlock(f, int64Bytes(ids)); err != nil {
		return err
	}
	return writeBlock(f, int32Bytes(cpus))
}

// Read restores a checkpointed bunch into a fresh container. The container
// is created without a decomposition: a restarting driver attaches its own
// decomposition before tracking resumes.
func Read(fname string) (*bunch.Container, error) {
	f, err := os.Open(fname)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	hd := header{}
	if err := binary.Read(f, order, &hd); err != nil {
		return nil, err
	}
	if hd.Magic != MagicNumber {
		return nil, fmt.Errorf(
			"%s is not a checkpoint file: magic number is %x, not %x.",
			fname, hd.Magic, MagicNumber,
		)
	}
	if hd.Version != Version {
		return nil, fmt.Errorf(
			"%s has checkpoint version %d, this build reads version %d.",
			fname, hd.Version, Version,
		)
	}

	n := int(hd.Count)
	cols := make([][]float64, 8)
	for k := range cols {
		b, err := readBlock(f, 8*n)
		if err != nil {
			return nil, err
		}
		cols[k] = bytesFloat64(b)
	}
	idBytes, err := readBlock(f, 8*n)
	if err != nil {
		return nil, err
	}
	ids := bytesInt64(idBytes)
	cpuBytes, err := readBlock(f, 4*n)
	if err != nil {
		return nil, err
	}
	cpus := bytesInt32(cpuBytes)

	pc := bunch.New()
	pc.SetFrame(beam.Frame(hd.Frame))
	pc.SetParticleShape(int(hd.Shape))
	pc.SetRefParticle(beam.RefPart{
		X: hd.X, Y: hd.Y, Z: hd.Z, T: hd.T,
		Px: hd.Px, Py: hd.Py, Pz: hd.Pz, Pt: hd.Pt,
		S: hd.S, MassEV: hd.MassEV, Charge: hd.Charge,
	})
	pc.Restore(cols[0], cols[1], cols[2], cols[3], cols[4], cols[5],
		cols[6], cols[7], ids, cpus)

	return pc, nil
}

// writeBlock compresses b and writes it with a length prefix.
func writeBlock(f *os.File, b []byte) error {
	buf, err := zstd.CompressLevel(nil, b, 1)
	if err != nil {
		return err
	}
	if err := binary.Write(f, order, int64(len(buf))); err != nil {
		return err
	}
	_, err = f.Write(buf)
	return err
}

// readBlock reads a length-prefixed compressed block and decompresses it
// into rawLen bytes.
func readBlock(f *os.File, rawLen int) ([]byte, error) {
	var n int64
	if err := binary.Read(f, order, &n); err != nil {
		return nil, err
	}
	buf := make([]byte, n)
	if _, err := readFull(f, buf); err != nil {
		return nil, err
	}
	return zstd.Decompress(make([]byte, 0, rawLen), buf)
}

func readFull(f *os.File, buf []byte) (int, error) {
	total := 0
	for total < len(buf) {
		n, err := f.Read(buf[total:])
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

func float64Bytes(xs []float64) []byte {
	buf := new(bytes.Buffer)
	binary.Write(buf, order, xs)
	return buf.Bytes()
}

func int64Bytes(xs []int64) []byte {
	buf := new(bytes.Buffer)
	binary.Write(buf, order, xs)
	return buf.Bytes()
}

func int32Bytes(xs []int32) []byte {
	buf := new(bytes.Buffer)
	binary.Write(buf, order, xs)
	return buf.Bytes()
}

func bytesFloat64(b []byte) []float64 {
	xs := make([]float64, len(b)/8)
	binary.Read(bytes.NewReader(b), order, xs)
	return xs
}

func bytesInt64(b []byte) []int64 {
	xs := make([]int64, len(b)/8)
	binary.Read(bytes.NewReader(b), order, xs)
	return xs
}

func bytesInt32(b []byte) []int32 {
	xs := make([]int32, len(b)/4)
	binary.Read(bytes.NewReader(b), order, xs)
	return xs
}
