package recording

// Reference deployment geometry. The interrogator emits one time step every
// TimeStep seconds and resolves the corridor into one cell per metre, up to
// CorridorMeters cells, with Channels frequency channels per cell.
const (
	TimeStep       = 0.62 // seconds per time step
	CorridorMeters = 4000 // monitored corridor length, one cell per metre
	Channels       = 96   // frequency channels per cell
)

// Tensor is a dense [T, P, F] intensity tensor stored in row-major order.
type Tensor struct {
	data    []float32
	t, p, f int
}

// NewTensor allocates a zeroed tensor with the given dimensions.
func NewTensor(t, p, f int) *Tensor {
	return &Tensor{
		data: make([]float32, t*p*f),
		t:    t,
		p:    p,
		f:    f,
	}
}

// Dims returns the (time, position, channel) dimensions.
func (x *Tensor) Dims() (t, p, f int) {
	return x.t, x.p, x.f
}

// At returns the intensity at (t, p, f).
func (x *Tensor) At(t, p, f int) float32 {
	return x.data[(t*x.p+p)*x.f+f]
}

// Set stores the intensity at (t, p, f).
func (x *Tensor) Set(t, p, f int, v float32) {
	x.data[(t*x.p+p)*x.f+f] = v
}

// Raw exposes the backing slice in row-major [T, P, F] order.
func (x *Tensor) Raw() []float32 {
	return x.data
}

// Recording is one complete sensor recording: the raw intensity tensor and
// the absolute timestamp of every time step, in fractional Unix seconds.
// A recording is immutable once loaded and owned by a single analysis run.
type Recording struct {
	Intensity  *Tensor
	Timestamps []float64
}
