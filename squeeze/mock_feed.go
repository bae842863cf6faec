// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text


package squeeze

import (
	"math"
	"time"
)

// MockFeed is an io.Reader that synthesizes the byte stream of a shield
// sensing a smoothly changing squeeze, for development without hardware.
// Generated values stay in 1..255 so the zero delimiter never collides
// with data, exactly like the pull-up-biased real sensor. Reads pace
// themselves to roughly the cycle rate of the real device at 9600 baud.
type MockFeed struct {
	start   time.Time
	pending []byte
}

// NewMockFeed creates a mock feed that generates smooth changing values.
func NewMockFeed() *MockFeed {
	return &MockFeed{start: time.Now()}
}

// Read fills p with the next bytes of the synthetic stream. It blocks
// briefly while the next cycle is "measured" and never returns an error.
func (m *MockFeed) Read(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	if len(m.pending) == 0 {
		m.pending = m.frame()
	}
	n := copy(p, m.pending)
	m.pending = m.pending[n:]
	return n, nil
}

// frame renders one full measurement cycle: 28 pair values plus the
// terminating zero byte.
func (m *MockFeed) frame() []byte {
	time.Sleep(30 * time.Millisecond)

	elapsed := time.Since(m.start).Seconds()
	out := make([]byte, 0, ShieldDim+1)
	for i := 0; i < ShieldDim; i++ {
		// every pair swings with its own phase so the squeeze appears to
		// travel around the electrodes
		depth := 0.5 + 0.5*math.Sin(elapsed+0.4*float64(i))
		out = append(out, byte(255-int(depth*254)))
	}
	return append(out, 0)
}
