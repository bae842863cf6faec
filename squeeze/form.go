// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text


package squeeze

// Form is a recorded squeeze shape: a label plus one or more direction
// samples to match against. The empty label is valid and denotes the
// unlabeled form.
type Form struct {
	label   string
	samples []Vector
}

// NewForm creates a form holding a single direction sample.
func NewForm(label string, sample Vector) *Form {
	return &Form{label: label, samples: []Vector{sample}}
}

// Label returns the form's label.
func (f *Form) Label() string {
	return f.label
}

// Is reports whether the form carries the given label.
func (f *Form) Is(label string) bool {
	return f.label == label
}

// Record replaces the sample set with the single given sample.
func (f *Form) Record(sample Vector) {
	f.samples = []Vector{sample}
}

// Add appends a sample, keeping the existing ones. Several samples of the
// same form make recognition tolerant to variation in how the squeeze is
// performed.
func (f *Form) Add(sample Vector) {
	f.samples = append(f.samples, sample)
}

// SampleCount returns the number of stored samples.
func (f *Form) SampleCount() int {
	return len(f.samples)
}

// Fit returns how well dir matches the form: the best dot product between
// dir and any stored sample. For sensor data the result stays in [0, 1],
// 1 meaning an exact directional match. A form without samples fits 0.
func (f *Form) Fit(dir Vector) float64 {
	fit := 0.0
	for _, s := range f.samples {
		if d := s.Dot(dir); d > fit {
			fit = d
		}
	}
	return fit
}
