package squeeze

// Decoder segments the sensor byte stream into raw measurement frames. The
// device sends one byte per electrode pair and terminates each measurement
// cycle with a zero byte; the pull-up divider keeps genuine readings out of
// zero, which frees that value to act as the delimiter. The first zero seen
// doubles as the synchronization point: bytes arriving before it belong to
// a partially transmitted cycle and are dropped.
//
// State persists across calls, so the stream may be fed in chunks split at
// any boundary.
type Decoder struct {
	synced bool
	buf    []int
}

// Feed consumes a chunk of newly received bytes and returns the frames it
// completed, in arrival order. A frame holds the values strictly between
// two delimiters, so back-to-back zero bytes yield empty frames.
func (d *Decoder) Feed(p []byte) [][]int {
	var frames [][]int
	for _, b := range p {
		if !d.synced {
			if b == 0 {
				d.synced = true
				d.buf = d.buf[:0]
			}
			continue
		}
		if b == 0 {
			frame := make([]int, len(d.buf))
			copy(frame, d.buf)
			frames = append(frames, frame)
			d.buf = d.buf[:0]
			continue
		}
		d.buf = append(d.buf, int(b))
	}
	return frames
}

// Synced reports whether the start of a cycle has been located yet.
func (d *Decoder) Synced() bool {
	return d.synced
}

// Reset returns the decoder to its initial unsynchronized state, dropping
// any partially accumulated frame.
func (d *Decoder) Reset() {
	d.synced = false
	d.buf = nil
}
