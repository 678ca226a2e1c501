// Package field reduces the raw [T, P, F] intensity tensor into the 2-D
// time x position field the line detector operates on, and derives the
// binary occupancy mask from it.
package field

// Field is a dense [T, P] intensity field in row-major order.
type Field struct {
	data []float64
	t, p int
}

// NewField allocates a zeroed field.
func NewField(t, p int) *Field {
	return &Field{data: make([]float64, t*p), t: t, p: p}
}

// Dims returns the (time, position) dimensions.
func (f *Field) Dims() (t, p int) {
	return f.t, f.p
}

// At returns the intensity at (t, p).
func (f *Field) At(t, p int) float64 {
	return f.data[t*f.p+p]
}

// Set stores the intensity at (t, p).
func (f *Field) Set(t, p int, v float64) {
	f.data[t*f.p+p] = v
}

// Raw exposes the backing slice in row-major [T, P] order.
func (f *Field) Raw() []float64 {
	return f.data
}

// Mask is a [T, P] boolean occupancy mask, defined over exactly the valid
// indices of the field it was derived from.
type Mask struct {
	data []bool
	t, p int
}

// NewMask allocates an all-false mask.
func NewMask(t, p int) *Mask {
	return &Mask{data: make([]bool, t*p), t: t, p: p}
}

// Dims returns the (time, position) dimensions.
func (m *Mask) Dims() (t, p int) {
	return m.t, m.p
}

// At reports whether cell (t, p) is occupied.
func (m *Mask) At(t, p int) bool {
	return m.data[t*m.p+p]
}

// Set marks cell (t, p).
func (m *Mask) Set(t, p int, v bool) {
	m.data[t*m.p+p] = v
}

// Count returns the number of occupied cells.
func (m *Mask) Count() int {
	var n int
	for _, v := range m.data {
		if v {
			n++
		}
	}
	return n
}
