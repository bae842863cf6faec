// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text


package squeeze

// NumElectrodes is the number of electrodes on the sensing shield.
const NumElectrodes = 8

// ShieldDim is the number of values in one measurement cycle when the
// shield is attached: one per unique electrode pair, C(8,2) = 28.
const ShieldDim = 28

// WindowSize is the number of recent vectors kept for time-series analysis.
const WindowSize = 5

// PairLabels names the electrode pair behind each position in a raw
// measurement and each component of the corresponding vector. For example
// the value at index 11 is measured between electrodes 1 and 6. Only
// meaningful when the shield is attached (dim == 28).
var PairLabels = [ShieldDim]string{
	"0-1", "0-2", "0-3", "0-4", "0-5", "0-6", "0-7",
	"1-2", "1-3", "1-4", "1-5", "1-6", "1-7",
	"2-3", "2-4", "2-5", "2-6", "2-7",
	"3-4", "3-5", "3-6", "3-7",
	"4-5", "4-6", "4-7",
	"5-6", "5-7",
	"6-7",
}

// SubvectorMap lists, per electrode, the indices of the 7 measurement
// values that involve that electrode. SubvectorMap[3] points at the values
// for pairs 0-3, 1-3, 2-3, 3-4, 3-5, 3-6 and 3-7. Every index appears in
// exactly two rows, one per electrode of its pair, so per-electrode views
// read each value twice. Only meaningful when the shield is attached
// (dim == 28).
var SubvectorMap = [NumElectrodes][NumElectrodes - 1]int{
	{0, 1, 2, 3, 4, 5, 6},
	{0, 7, 8, 9, 10, 11, 12},
	{1, 7, 13, 14, 15, 16, 17},
	{2, 8, 13, 18, 19, 20, 21},
	{3, 9, 14, 18, 22, 23, 24},
	{4, 10, 15, 19, 22, 25, 26},
	{5, 11, 16, 20, 23, 25, 27},
	{6, 12, 17, 21, 24, 26, 27},
}

// subvector extracts the components of v that involve electrode e. The
// result is a 7-dimensional vector when v is a full shield measurement and
// a zero-magnitude vector otherwise, so time-series math over mixed-shape
// windows degrades to zeros instead of failing.
func subvector(v Vector, e int) Vector {
	if v.Dim() != ShieldDim || e < 0 || e >= NumElectrodes {
		return Vector{}
	}
	sub := make([]float64, NumElectrodes-1)
	for i, idx := range SubvectorMap[e] {
		sub[i] = v.x[idx]
	}
	return Vector{x: sub}
}
