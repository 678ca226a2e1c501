package hough

import "sort"

// PeakParams bound the peak search: at most MaxPeaks lines, each with at
// least Threshold votes, separated from stronger peaks by more than
// MinDistance offset bins or MinAngle angle bins.
type PeakParams struct {
	MaxPeaks    int
	Threshold   int
	MinDistance int
	MinAngle    int
}

type bin struct {
	offsetIdx int
	angleIdx  int
	votes     int
}

// Peaks extracts accumulator peaks in descending vote order, greedily
// suppressing the neighbourhood of every accepted peak so near-duplicate
// detections of the same physical line collapse into one. Equal-vote bins
// are ordered by offset then angle index, which makes the returned order
// deterministic. The angle axis wraps around.
func (tr *Transform) Peaks(params PeakParams) []Line {
	threshold := max(params.Threshold, 1)

	var bins []bin
	for oi := 0; oi < tr.numOffset; oi++ {
		for ai := 0; ai < NumAngles; ai++ {
			if v := tr.votes[oi*NumAngles+ai]; v >= threshold {
				bins = append(bins, bin{offsetIdx: oi, angleIdx: ai, votes: v})
			}
		}
	}

	sort.Slice(bins, func(i, j int) bool {
		if bins[i].votes != bins[j].votes {
			return bins[i].votes > bins[j].votes
		}
		if bins[i].offsetIdx != bins[j].offsetIdx {
			return bins[i].offsetIdx < bins[j].offsetIdx
		}
		return bins[i].angleIdx < bins[j].angleIdx
	})

	var peaks []Line
	var accepted []bin
	for _, b := range bins {
		if len(peaks) >= params.MaxPeaks {
			break
		}
		if suppressed(b, accepted, params) {
			continue
		}
		accepted = append(accepted, b)
		peaks = append(peaks, Line{
			Angle:  angleAt(b.angleIdx),
			Offset: float64(b.offsetIdx - tr.maxOffset),
			Votes:  b.votes,
		})
	}
	return peaks
}

func suppressed(b bin, accepted []bin, params PeakParams) bool {
	for _, a := range accepted {
		dOffset := abs(b.offsetIdx - a.offsetIdx)
		dAngle := abs(b.angleIdx - a.angleIdx)
		if wrapped := NumAngles - dAngle; wrapped < dAngle {
			dAngle = wrapped
		}
		if dOffset <= params.MinDistance && dAngle <= params.MinAngle {
			return true
		}
	}
	return false
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
