// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text


// Package squeeze senses physical deformation through an 8-electrode
// resistive sensor and turns its byte stream into a continuously updated
// vector representation, with features derived from standard vector
// analysis (magnitude, direction, dot product), time-series analysis over
// a sliding window (moving average, standard deviation, derivative) and
// form recognition against recorded squeeze shapes.
package squeeze

import (
	"math"
	"sync"
)

// Engine owns the full signal state of one physical sensor: the frame
// decoder, the current measurement and its vector, the running maximum
// trackers, the sliding window and the recorded forms. Construct it with
// New and drive it by passing newly received bytes to Tick.
//
// All methods are safe for concurrent use. A single mutex serializes Tick
// against every query, so each query observes the state left behind by a
// completed tick, never a half-applied one.
type Engine struct {
	mu  sync.Mutex
	dec Decoder

	raw    []int                  // latest complete frame, nil until the first one
	vec    Vector                 // current squeeze vector, rebuilt every tick
	mag    float64                // momentary whole-vector magnitude
	max    float64                // highest magnitude observed so far
	submag [NumElectrodes]float64 // momentary per-electrode magnitudes
	submax [NumElectrodes]float64 // highest per-electrode magnitudes so far
	win    window

	forms  map[string]*Form
	labels []string // form labels in first-recorded order
}

// New creates an idle engine. Every feature reads as zero or empty until
// the first complete frame arrives through Tick.
func New() *Engine {
	return &Engine{forms: make(map[string]*Form)}
}

// Tick feeds newly received bytes to the frame decoder and refreshes the
// engine state. When the chunk completes one or more frames the newest one
// becomes the current measurement; the vector, the magnitude trackers and
// the sliding window are then brought up to date. Call Tick once per cycle
// of the driving loop: the window advances once per call, not once per
// frame, so the time-series features follow the caller's cadence.
func (e *Engine) Tick(chunk []byte) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if frames := e.dec.Feed(chunk); len(frames) > 0 {
		e.raw = frames[len(frames)-1]
	}
	if e.raw == nil {
		// nothing decoded yet, stay idle
		return
	}

	// invert and scale: raw 255 (no contact, max resistance) becomes 0,
	// raw 1 (hard squeeze) approaches 1
	x := make([]float64, len(e.raw))
	for i, r := range e.raw {
		x[i] = (255 - float64(r)) / 255
	}
	e.vec = Vector{x: x}

	e.mag = e.vec.Magnitude()
	if e.mag > e.max {
		e.max = e.mag
	}
	if len(e.raw) == ShieldDim {
		for el := 0; el < NumElectrodes; el++ {
			e.submag[el] = subvector(e.vec, el).Magnitude()
			if e.submag[el] > e.submax[el] {
				e.submax[el] = e.submag[el]
			}
		}
	}

	e.win.push(e.vec)
}

// Dim returns the number of values in the current measurement, 0 until the
// first frame completes. With unchanged physical components this settles
// immediately and never moves.
func (e *Engine) Dim() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.raw)
}

// Running reports whether the engine holds a usable measurement. It turns
// false again if the stream degrades to empty frames, and features read as
// zero in that state; this is normal and recoverable, not an error.
func (e *Engine) Running() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.runningLocked()
}

// Shield reports whether the current measurement matches the 28-pair
// shield layout, which is what enables the per-electrode queries.
func (e *Engine) Shield() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.shieldLocked()
}

// Raw returns the current measurement values, one per electrode pair in
// device order, each in 1..255. Larger values mean larger resistance,
// meaning less deformation. Nil until the first frame completes.
func (e *Engine) Raw() []int {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.raw == nil {
		return nil
	}
	out := make([]int, len(e.raw))
	copy(out, e.raw)
	return out
}

// ElectrodeRaw returns the 7 raw values measured between electrode el and
// every other electrode, or nil when the shield layout is not active.
func (e *Engine) ElectrodeRaw(el int) []int {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.shieldLocked() || el < 0 || el >= NumElectrodes {
		return nil
	}
	out := make([]int, NumElectrodes-1)
	for i, idx := range SubvectorMap[el] {
		out[i] = e.raw[idx]
	}
	return out
}

// Vector returns the current squeeze vector: the measurement scaled and
// inverted so every component runs from 0 (no deformation) to 1 (maximum
// deformation). The zero vector until the first frame completes.
func (e *Engine) Vector() Vector {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.vec
}

// ElectrodeVector returns the subvector of the current squeeze vector that
// involves electrode el, or the zero vector when the shield layout is not
// active.
func (e *Engine) ElectrodeVector(el int) Vector {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.shieldLocked() {
		return Vector{}
	}
	return subvector(e.vec, el)
}

// Magnitude returns the momentary vector magnitude, a single-number
// measure of how deep the squeeze is.
func (e *Engine) Magnitude() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.mag
}

// ElectrodeMagnitude returns the momentary magnitude of the subvector for
// electrode el, 0 when the shield layout is not active.
func (e *Engine) ElectrodeMagnitude(el int) float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.shieldLocked() || el < 0 || el >= NumElectrodes {
		return 0
	}
	return e.submag[el]
}

// Direction returns the unit vector of the current squeeze vector, a
// description of the squeeze's shape independent of its depth. The zero
// vector while the sensor is at rest.
func (e *Engine) Direction() Vector {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.vec.Direction()
}

// ElectrodeDirection returns the unit subvector for electrode el, the zero
// vector when the shield layout is not active.
func (e *Engine) ElectrodeDirection(el int) Vector {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.shieldLocked() {
		return Vector{}
	}
	return subvector(e.vec, el).Direction()
}

// Max returns the highest vector magnitude observed since the engine was
// created or ResetMax was last called. Useful for scaling signals into
// 0..1, see Norm.
func (e *Engine) Max() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.max
}

// ElectrodeMax returns the highest subvector magnitude observed for
// electrode el since the engine was created or ResetMax was last called.
func (e *Engine) ElectrodeMax(el int) float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	if el < 0 || el >= NumElectrodes {
		return 0
	}
	return e.submax[el]
}

// Average returns the moving average of the vector magnitude over the
// sliding window, a smoothed depth signal. 0 while the window is empty.
func (e *Engine) Average() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.win.average(Vector.Magnitude)
}

// ElectrodeAverage returns the moving average of the subvector magnitude
// for electrode el, 0 when the shield layout is not active.
func (e *Engine) ElectrodeAverage(el int) float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.shieldLocked() || el < 0 || el >= NumElectrodes {
		return 0
	}
	return e.win.average(electrodeMagnitude(el))
}

// Stdev returns the moving population standard deviation of the vector
// magnitude over the sliding window, a measure of signal stability.
func (e *Engine) Stdev() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.win.stdev(Vector.Magnitude)
}

// ElectrodeStdev returns the moving standard deviation of the subvector
// magnitude for electrode el, 0 when the shield layout is not active.
func (e *Engine) ElectrodeStdev(el int) float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.shieldLocked() || el < 0 || el >= NumElectrodes {
		return 0
	}
	return e.win.stdev(electrodeMagnitude(el))
}

// Derivative returns the five-point-stencil first derivative of the vector
// magnitude: the speed of change, signed by its direction (squeezing vs
// releasing). 0 until the window has filled.
func (e *Engine) Derivative() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.win.derivative(Vector.Magnitude)
}

// ElectrodeDerivative returns the derivative of the subvector magnitude
// for electrode el, 0 when the shield layout is not active.
func (e *Engine) ElectrodeDerivative(el int) float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.shieldLocked() || el < 0 || el >= NumElectrodes {
		return 0
	}
	return e.win.derivative(electrodeMagnitude(el))
}

// Norm returns the moving average scaled against the observed maximum, a
// smoothed depth signal in 0..1. While a squeeze pushes past the historical
// maximum the value briefly reads above 1; it is not clamped. 0 while the
// engine is not running or nothing has been observed yet.
func (e *Engine) Norm() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.normLocked()
}

// ElectrodeNorm returns the normalized moving average for electrode el,
// 0 when the shield layout is not active.
func (e *Engine) ElectrodeNorm(el int) float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.electrodeNormLocked(el)
}

// Invert returns 1 - Norm, a normalized signal that grows as the squeeze
// releases.
func (e *Engine) Invert() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return 1 - e.normLocked()
}

// ElectrodeInvert returns 1 - ElectrodeNorm for electrode el.
func (e *Engine) ElectrodeInvert(el int) float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return 1 - e.electrodeNormLocked(el)
}

// Square returns Norm squared, emphasizing strong deformations.
func (e *Engine) Square() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	n := e.normLocked()
	return n * n
}

// ElectrodeSquare returns ElectrodeNorm squared for electrode el.
func (e *Engine) ElectrodeSquare(el int) float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	n := e.electrodeNormLocked(el)
	return n * n
}

// Root returns the square root of Norm, emphasizing light deformations.
func (e *Engine) Root() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return math.Sqrt(e.normLocked())
}

// ElectrodeRoot returns the square root of ElectrodeNorm for electrode el.
func (e *Engine) ElectrodeRoot(el int) float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return math.Sqrt(e.electrodeNormLocked(el))
}

// Record stores the current squeeze direction as the single sample of the
// form with the given label, creating the form on first use and replacing
// its samples otherwise. The empty label records the unlabeled form.
// Recording while the engine is not running is a no-op. Avoid calling this
// from the per-cycle loop, or each cycle overwrites the previous sample.
func (e *Engine) Record(label string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.runningLocked() {
		return
	}
	dir := e.vec.Direction()
	if f, ok := e.forms[label]; ok {
		f.Record(dir)
		return
	}
	e.forms[label] = NewForm(label, dir)
	e.labels = append(e.labels, label)
}

// AddSample appends the current squeeze direction to the samples of the
// form with the given label, creating the form if needed. Unlike Record it
// keeps the existing samples, letting a form match several variations of
// the same squeeze. A no-op while the engine is not running.
func (e *Engine) AddSample(label string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.runningLocked() {
		return
	}
	dir := e.vec.Direction()
	if f, ok := e.forms[label]; ok {
		f.Add(dir)
		return
	}
	e.forms[label] = NewForm(label, dir)
	e.labels = append(e.labels, label)
}

// Recognize returns how well the current squeeze matches the recorded form
// with the given label, as a fit in 0..1 where 1 means the same direction.
// Unknown labels and an idle engine both yield 0.
func (e *Engine) Recognize(label string) float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	f, ok := e.forms[label]
	if !ok {
		return 0
	}
	return f.Fit(e.vec.Direction())
}

// Forms lists the recorded forms in first-recorded order, each with its
// momentary fit against the current squeeze. Nil when nothing has been
// recorded.
func (e *Engine) Forms() []FormFit {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.formsLocked()
}

// ResetMax clears the running maximum trackers so normalization re-adapts
// to current conditions, for example after moving the sensor to a new
// object. Recorded forms and the sliding window are untouched. The
// trackers never reset on their own.
func (e *Engine) ResetMax() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.max = 0
	e.submax = [NumElectrodes]float64{}
}

func (e *Engine) runningLocked() bool {
	return len(e.raw) > 0
}

func (e *Engine) shieldLocked() bool {
	return len(e.raw) == ShieldDim
}

func (e *Engine) normLocked() float64 {
	if !e.runningLocked() || e.max == 0 {
		return 0
	}
	return e.win.average(Vector.Magnitude) / e.max
}

func (e *Engine) electrodeNormLocked(el int) float64 {
	if !e.shieldLocked() || el < 0 || el >= NumElectrodes || e.submax[el] == 0 {
		return 0
	}
	return e.win.average(electrodeMagnitude(el)) / e.submax[el]
}

func (e *Engine) formsLocked() []FormFit {
	if len(e.labels) == 0 {
		return nil
	}
	dir := e.vec.Direction()
	out := make([]FormFit, 0, len(e.labels))
	for _, label := range e.labels {
		f := e.forms[label]
		out = append(out, FormFit{Label: label, Fit: f.Fit(dir), Samples: f.SampleCount()})
	}
	return out
}

// electrodeMagnitude projects a stored vector onto the magnitude of its
// subvector for electrode el, for use with the window analysis helpers.
func electrodeMagnitude(el int) func(Vector) float64 {
	return func(v Vector) float64 {
		return subvector(v, el).Magnitude()
	}
}
