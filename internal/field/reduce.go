package field

import "github.com/das-traffic/corridor/internal/recording"

// Per-channel weights. Low channels carry the heavy-vehicle signature,
// mid channels the light-vehicle one, and high channels are noise
// dominated and suppressed.
const (
	lowChannelWeight  = 1.6 // channels 0-19
	midChannelWeight  = 1.4 // channels 20-39
	highChannelWeight = 0.4 // channels 40+

	lowChannelEnd = 20
	midChannelEnd = 40

	// Channels beyond this index contribute nothing but summing cost on
	// wide tensors; the weighted prefix carries the vehicle signal.
	maxSummedChannels = 50
)

// ChannelWeight returns the fixed weight applied to frequency channel f.
func ChannelWeight(f int) float64 {
	switch {
	case f < lowChannelEnd:
		return lowChannelWeight
	case f < midChannelEnd:
		return midChannelWeight
	default:
		return highChannelWeight
	}
}

// Reduce collapses the frequency axis of the tensor into a [T, P] field:
// a weighted sum over the first min(50, F) channels, followed by a short
// spatial median filter that suppresses isolated position noise without
// blurring across time.
func Reduce(x *recording.Tensor) *Field {
	t, p, f := x.Dims()
	out := NewField(t, p)

	channels := min(maxSummedChannels, f)
	for ti := 0; ti < t; ti++ {
		for pi := 0; pi < p; pi++ {
			var sum float64
			for fi := 0; fi < channels; fi++ {
				sum += float64(x.At(ti, pi, fi)) * ChannelWeight(fi)
			}
			out.Set(ti, pi, sum)
		}
	}

	return medianFilter1x2(out)
}

// medianFilter1x2 applies a median filter with a 1x2 window: temporal size
// one, spatial size two. For the two-sample window the upper median is
// taken; the left edge clamps to the cell itself.
func medianFilter1x2(f *Field) *Field {
	t, p := f.Dims()
	out := NewField(t, p)

	for ti := 0; ti < t; ti++ {
		for pi := 0; pi < p; pi++ {
			v := f.At(ti, pi)
			if pi > 0 {
				v = max(v, f.At(ti, pi-1))
			}
			out.Set(ti, pi, v)
		}
	}
	return out
}
