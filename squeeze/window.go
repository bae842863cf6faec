package squeeze

import "math"

// window is a fixed-capacity ring of the most recent squeeze vectors.
// Position 0 is the current cycle's vector, position 1 the cycle before,
// and so on. The analysis helpers work on a caller-chosen magnitude
// projection so the same math serves whole-vector and per-electrode views.
type window struct {
	slots [WindowSize]Vector
	head  int // slot the next push writes to
	count int // slots filled so far, caps at WindowSize
}

// push stores v as the newest entry, evicting the oldest once full.
func (w *window) push(v Vector) {
	w.slots[w.head] = v
	w.head = (w.head + 1) % WindowSize
	if w.count < WindowSize {
		w.count++
	}
}

// at returns the entry i cycles back (0 = newest). ok is false while the
// window has not yet filled that far.
func (w *window) at(i int) (Vector, bool) {
	if i < 0 || i >= w.count {
		return Vector{}, false
	}
	return w.slots[(w.head-1-i+2*WindowSize)%WindowSize], true
}

// full reports whether every slot holds data.
func (w *window) full() bool {
	return w.count == WindowSize
}

// average returns the mean of mag over the filled slots, 0 when empty.
func (w *window) average(mag func(Vector) float64) float64 {
	if w.count == 0 {
		return 0
	}
	sum := 0.0
	for i := 0; i < w.count; i++ {
		v, _ := w.at(i)
		sum += mag(v)
	}
	return sum / float64(w.count)
}

// stdev returns the population standard deviation of mag over the filled
// slots, 0 when empty.
func (w *window) stdev(mag func(Vector) float64) float64 {
	if w.count == 0 {
		return 0
	}
	avg := w.average(mag)
	variance := 0.0
	for i := 0; i < w.count; i++ {
		v, _ := w.at(i)
		d := mag(v) - avg
		variance += d * d
	}
	variance /= float64(w.count)
	return math.Sqrt(variance)
}

// derivative approximates the first derivative of mag across the window
// with the five-point stencil (-1, 8, 0, -8, 1)/12, newest entry first.
// The formula needs a full window; 0 is returned while warming up.
func (w *window) derivative(mag func(Vector) float64) float64 {
	if !w.full() {
		return 0
	}
	var m [WindowSize]float64
	for i := 0; i < WindowSize; i++ {
		v, _ := w.at(i)
		m[i] = mag(v)
	}
	return (-1*m[0] + 8*m[1] - 8*m[3] + 1*m[4]) / 12
}
