package squeeze

import "testing"

func TestFormLabel(t *testing.T) {
	f := NewForm("grab", NewVector([]float64{1, 0}))

	if f.Label() != "grab" {
		t.Fatalf("Label() = %q, want %q", f.Label(), "grab")
	}
	if !f.Is("grab") || f.Is("pinch") {
		t.Fatal("Is() does not match on label")
	}
	if f.SampleCount() != 1 {
		t.Fatalf("SampleCount() = %d, want 1", f.SampleCount())
	}
}

func TestFormUnlabeled(t *testing.T) {
	f := NewForm("", NewVector([]float64{1, 0}))
	if !f.Is("") {
		t.Fatal("empty label must be a valid form identity")
	}
}

func TestFormFitSelfMatch(t *testing.T) {
	sample := NewVector([]float64{0.3, 0.4, 0.5})
	f := NewForm("grab", sample)

	if got := f.Fit(sample); !almostEqual(got, 1) {
		t.Fatalf("Fit(own sample) = %v, want 1", got)
	}
}

func TestFormFitPicksBestSample(t *testing.T) {
	f := NewForm("grab", NewVector([]float64{1, 0}))
	f.Add(NewVector([]float64{0, 1}))

	if f.SampleCount() != 2 {
		t.Fatalf("SampleCount() = %d, want 2", f.SampleCount())
	}
	// matches the second sample exactly even though the first fits 0
	if got := f.Fit(NewVector([]float64{0, 1})); !almostEqual(got, 1) {
		t.Fatalf("Fit = %v, want 1 (best of all samples)", got)
	}
	// between the two samples the better one wins
	diag := NewVector([]float64{1, 1})
	if got := f.Fit(diag); got <= 0.5 || got >= 1 {
		t.Fatalf("Fit of diagonal = %v, want in (0.5, 1)", got)
	}
}

func TestFormRecordReplacesSamples(t *testing.T) {
	f := NewForm("grab", NewVector([]float64{1, 0}))
	f.Add(NewVector([]float64{0, 1}))

	f.Record(NewVector([]float64{0, 1}))
	if f.SampleCount() != 1 {
		t.Fatalf("SampleCount() after Record = %d, want 1", f.SampleCount())
	}
	if got := f.Fit(NewVector([]float64{1, 0})); got != 0 {
		t.Fatalf("Fit against replaced sample = %v, want 0", got)
	}
}

func TestFormFitDimensionMismatch(t *testing.T) {
	f := NewForm("grab", NewVector([]float64{1, 0, 0}))
	if got := f.Fit(NewVector([]float64{1, 0})); got != 0 {
		t.Fatalf("Fit across dimensions = %v, want 0", got)
	}
}
