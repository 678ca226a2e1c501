// Package hough implements a straight-line Hough transform over a binary
// occupancy mask, with peak extraction in the (angle, offset) parameter
// space. Lines are parameterised as offset = x*cos(theta) + y*sin(theta)
// with x the position index and y the time index.
package hough

import (
	"errors"
	"math"
)

// NumAngles is the angular resolution of the accumulator: one bin per
// degree over [-90, 90).
const NumAngles = 180

// ErrDegenerateMask reports a mask the transform cannot vote on: zero
// dimensions or no occupied cells. Callers are expected to recover by
// treating the search as having found nothing.
var ErrDegenerateMask = errors.New("degenerate occupancy mask")

// Grid is the minimal view of a binary mask the transform needs.
type Grid interface {
	Dims() (t, p int)
	At(t, p int) bool
}

// Line is one accumulator peak: an (angle, offset) pair with its vote
// count.
type Line struct {
	Angle  float64 // radians, in [-pi/2, pi/2)
	Offset float64 // signed distance from the origin
	Votes  int
}

// Transform holds the voted accumulator for one mask.
type Transform struct {
	votes     []int // [offsetIdx * NumAngles + angleIdx]
	numOffset int
	maxOffset int

	sin, cos [NumAngles]float64
}

// New votes the full accumulator for the mask. It fails with
// ErrDegenerateMask when the mask has zero dimensions or no occupied
// cells.
func New(mask Grid) (*Transform, error) {
	t, p := mask.Dims()
	if t == 0 || p == 0 {
		return nil, ErrDegenerateMask
	}

	maxOffset := int(math.Ceil(math.Hypot(float64(t), float64(p))))
	tr := &Transform{
		numOffset: 2*maxOffset + 1,
		maxOffset: maxOffset,
	}
	tr.votes = make([]int, tr.numOffset*NumAngles)

	for i := 0; i < NumAngles; i++ {
		theta := angleAt(i)
		tr.sin[i] = math.Sin(theta)
		tr.cos[i] = math.Cos(theta)
	}

	var any bool
	for ti := 0; ti < t; ti++ {
		for pi := 0; pi < p; pi++ {
			if !mask.At(ti, pi) {
				continue
			}
			any = true
			for i := 0; i < NumAngles; i++ {
				offset := int(math.Round(float64(pi)*tr.cos[i] + float64(ti)*tr.sin[i]))
				tr.votes[(offset+maxOffset)*NumAngles+i]++
			}
		}
	}
	if !any {
		return nil, ErrDegenerateMask
	}

	return tr, nil
}

func angleAt(i int) float64 {
	return -math.Pi/2 + math.Pi*float64(i)/NumAngles
}

// MaxVotes returns the strongest accumulator bin.
func (tr *Transform) MaxVotes() int {
	var m int
	for _, v := range tr.votes {
		if v > m {
			m = v
		}
	}
	return m
}
