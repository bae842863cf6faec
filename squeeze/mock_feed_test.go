package squeeze

import "testing"

func TestMockFeedProducesValidFrames(t *testing.T) {
	feed := NewMockFeed()
	d := &Decoder{}

	buf := make([]byte, 64)
	var frames [][]int
	for i := 0; i < 20 && len(frames) < 3; i++ {
		n, err := feed.Read(buf)
		if err != nil {
			t.Fatalf("Read: %v", err)
		}
		frames = append(frames, d.Feed(buf[:n])...)
	}

	if len(frames) < 3 {
		t.Fatalf("collected %d frames, want at least 3", len(frames))
	}
	for i, f := range frames {
		if len(f) != ShieldDim {
			t.Fatalf("frame %d has %d values, want %d", i, len(f), ShieldDim)
		}
		for j, v := range f {
			if v < 1 || v > 255 {
				t.Fatalf("frame %d value %d = %d, want in 1..255", i, j, v)
			}
		}
	}
}

func TestMockFeedDrivesEngine(t *testing.T) {
	feed := NewMockFeed()
	e := New()

	buf := make([]byte, 64)
	for i := 0; i < 20 && !e.Shield(); i++ {
		n, err := feed.Read(buf)
		if err != nil {
			t.Fatalf("Read: %v", err)
		}
		e.Tick(buf[:n])
	}

	if !e.Running() || !e.Shield() {
		t.Fatal("mock feed did not bring the engine to the shield layout")
	}
	if e.Magnitude() <= 0 {
		t.Fatalf("Magnitude() = %v, want > 0", e.Magnitude())
	}
	if e.Max() < e.Magnitude() {
		t.Fatalf("Max() = %v below Magnitude() = %v", e.Max(), e.Magnitude())
	}
}

func TestMockFeedEmptyBuffer(t *testing.T) {
	feed := NewMockFeed()
	if n, err := feed.Read(nil); n != 0 || err != nil {
		t.Fatalf("Read(nil) = %d, %v, want 0, nil", n, err)
	}
}
