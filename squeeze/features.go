package squeeze

import (
	"math"
	"time"
)

// FormFit pairs a recorded form label with its momentary fit against the
// current squeeze direction.
type FormFit struct {
	Label   string  `json:"label"`
	Fit     float64 `json:"fit"`
	Samples int     `json:"samples"`
}

// ElectrodeFeatures carries the signal features of one electrode's
// subvector, only populated while the shield layout is active.
type ElectrodeFeatures struct {
	Electrode  int     `json:"electrode"`
	Magnitude  float64 `json:"mag"`
	Max        float64 `json:"max"`
	Average    float64 `json:"avg"`
	Stdev      float64 `json:"stdev"`
	Derivative float64 `json:"deriv"`
	Norm       float64 `json:"norm"`
	Invert     float64 `json:"inv"`
	Square     float64 `json:"square"`
	Root       float64 `json:"root"`
}

// Features is a consistent snapshot of everything the engine derives from
// the signal, taken at a single instant between ticks. It marshals to the
// JSON payload published over MQTT and served by the web API.
type Features struct {
	Dim        int                 `json:"dim"`
	Running    bool                `json:"running"`
	Shield     bool                `json:"shield"`
	Raw        []int               `json:"raw,omitempty"`
	Vector     []float64           `json:"vector,omitempty"`
	Magnitude  float64             `json:"mag"`
	Max        float64             `json:"max"`
	Average    float64             `json:"avg"`
	Stdev      float64             `json:"stdev"`
	Derivative float64             `json:"deriv"`
	Norm       float64             `json:"norm"`
	Invert     float64             `json:"inv"`
	Square     float64             `json:"square"`
	Root       float64             `json:"root"`
	Electrodes []ElectrodeFeatures `json:"electrodes,omitempty"`
	Forms      []FormFit           `json:"forms,omitempty"`
	Time       string              `json:"time"`
}

// Snapshot assembles the full feature set in one locked read, so every
// field describes the same instant. Prefer it over separate queries when
// fields need to be consistent with each other, for example when
// publishing.
func (e *Engine) Snapshot() Features {
	e.mu.Lock()
	defer e.mu.Unlock()

	f := Features{
		Dim:        len(e.raw),
		Running:    e.runningLocked(),
		Shield:     e.shieldLocked(),
		Magnitude:  e.mag,
		Max:        e.max,
		Average:    e.win.average(Vector.Magnitude),
		Stdev:      e.win.stdev(Vector.Magnitude),
		Derivative: e.win.derivative(Vector.Magnitude),
		Norm:       e.normLocked(),
		Forms:      e.formsLocked(),
		Time:       time.Now().Format(time.RFC3339),
	}
	f.Invert = 1 - f.Norm
	f.Square = f.Norm * f.Norm
	f.Root = math.Sqrt(f.Norm)

	if e.raw != nil {
		f.Raw = make([]int, len(e.raw))
		copy(f.Raw, e.raw)
		f.Vector = e.vec.Components()
	}

	if f.Shield {
		f.Electrodes = make([]ElectrodeFeatures, NumElectrodes)
		for el := range f.Electrodes {
			n := e.electrodeNormLocked(el)
			f.Electrodes[el] = ElectrodeFeatures{
				Electrode:  el,
				Magnitude:  e.submag[el],
				Max:        e.submax[el],
				Average:    e.win.average(electrodeMagnitude(el)),
				Stdev:      e.win.stdev(electrodeMagnitude(el)),
				Derivative: e.win.derivative(electrodeMagnitude(el)),
				Norm:       n,
				Invert:     1 - n,
				Square:     n * n,
				Root:       math.Sqrt(n),
			}
		}
	}

	return f
}
