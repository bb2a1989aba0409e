package schema

import (
	"github.com/KaramelBytes/exoscope/internal/table"
)

// Quantity is an optional measurement. Present is false when the source cell
// was missing or could not be read as a number; Value is then meaningless.
type Quantity struct {
	Value   float64
	Present bool
}

// Get returns the value and whether it is present.
func (q Quantity) Get() (float64, bool) { return q.Value, q.Present }

// Or returns the value, or def when absent.
func (q Quantity) Or(def float64) float64 {
	if q.Present {
		return q.Value
	}
	return def
}

// Features is the typed view of a normalized row.
type Features struct {
	Name          string
	Period        Quantity
	Duration      Quantity
	Depth         Quantity
	Radius        Quantity
	Teq           Quantity
	Insol         Quantity
	SNR           Quantity
	StellarTemp   Quantity
	StellarRadius Quantity
}

// Extract reads the canonical fields of a normalized row.
func Extract(r table.Row) Features {
	return Features{
		Name:          r.Get(string(Name)).String(),
		Period:        quantity(r, Period),
		Duration:      quantity(r, Duration),
		Depth:         quantity(r, Depth),
		Radius:        quantity(r, Radius),
		Teq:           quantity(r, Teq),
		Insol:         quantity(r, Insol),
		SNR:           quantity(r, SNR),
		StellarTemp:   quantity(r, StellarTemp),
		StellarRadius: quantity(r, StellarRadius),
	}
}

func quantity(r table.Row, f Field) Quantity {
	v, ok := r.Float(string(f))
	return Quantity{Value: v, Present: ok}
}
