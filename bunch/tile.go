package bunch

import "github.com/n01r/impactx/beam"

// Tile is one bucket of the container's particle storage. Attributes are
// kept as parallel arrays; the slot meaning of the third position/momentum
// columns follows the container's frame mode.
type Tile struct {
	x, y, t    []float64
	px, py, pt []float64
	qm         []float64 // charge-to-mass ratio in e/eV
	w          []float64 // statistical weight
	id         []int64   // identity, negative when lost
	cpu        []int32   // owning rank tag
}

// Len returns the number of records in the tile, lost ones included.
func (t *Tile) Len() int { return len(t.id) }

// Phase copies the j-th record's phase-space block out of storage. The copy
// is the mutable borrow handed to element maps: workers operate on it and
// write it back with SetPhase, so concurrent maps never share state.
func (t *Tile) Phase(j int) beam.Phase {
	return beam.Phase{
		X: t.x[j], Y: t.y[j], T: t.t[j],
		Px: t.px[j], Py: t.py[j], Pt: t.pt[j],
		ID: t.id[j],
	}
}

// SetPhase writes a phase-space block back into the j-th record.
func (t *Tile) SetPhase(j int, p beam.Phase) {
	t.x[j], t.y[j], t.t[j] = p.X, p.Y, p.T
	t.px[j], t.py[j], t.pt[j] = p.Px, p.Py, p.Pt
	t.id[j] = p.ID
}

// Weight returns the statistical weight of the j-th record.
func (t *Tile) Weight(j int) float64 { return t.w[j] }

// ChargeToMass returns the charge-to-mass ratio of the j-th record.
func (t *Tile) ChargeToMass(j int) float64 { return t.qm[j] }

// ID returns the signed identity of the j-th record.
func (t *Tile) ID(j int) int64 { return t.id[j] }

// Rank returns the owning-rank tag of the j-th record.
func (t *Tile) Rank(j int) int32 { return t.cpu[j] }

// record is one particle's full attribute set, used for loss transfers.
type record struct {
	x, y, t, px, py, pt, qm, w float64
	id                         int64
	cpu                        int32
}

func (t *Tile) record(j int) record {
	return record{
		x: t.x[j], y: t.y[j], t: t.t[j],
		px: t.px[j], py: t.py[j], pt: t.pt[j],
		qm: t.qm[j], w: t.w[j], id: t.id[j], cpu: t.cpu[j],
	}
}

func (t *Tile) append(r record) {
	t.x, t.y, t.t = append(t.x, r.x), append(t.y, r.y), append(t.t, r.t)
	t.px, t.py, t.pt = append(t.px, r.px), append(t.py, r.py), append(t.pt, r.pt)
	t.qm, t.w = append(t.qm, r.qm), append(t.w, r.w)
	t.id = append(t.id, r.id)
	t.cpu = append(t.cpu, r.cpu)
}

// remove deletes the j-th record by swapping in the last one. Order within a
// tile carries no meaning, so this is safe.
func (t *Tile) remove(j int) {
	last := len(t.id) - 1
	t.x[j], t.y[j], t.t[j] = t.x[last], t.y[last], t.t[last]
	t.px[j], t.py[j], t.pt[j] = t.px[last], t.py[last], t.pt[last]
	t.qm[j], t.w[j] = t.qm[last], t.w[last]
	t.id[j], t.cpu[j] = t.id[last], t.cpu[last]

	t.x, t.y, t.t = t.x[:last], t.y[:last], t.t[:last]
	t.px, t.py, t.pt = t.px[:last], t.py[:last], t.pt[:last]
	t.qm, t.w = t.qm[:last], t.w[:last]
	t.id, t.cpu = t.id[:last], t.cpu[:last]
}
