// Package schema maps catalog-specific column names (Kepler KOI, TESS TOI,
// K2) onto one canonical field set.
package schema

import (
	"log/slog"

	"github.com/KaramelBytes/exoscope/internal/table"
)

// Field is a canonical column name.
type Field string

const (
	Name          Field = "name"
	Period        Field = "period"
	Duration      Field = "duration"
	Depth         Field = "depth"
	Radius        Field = "radius"
	Teq           Field = "teq"
	Insol         Field = "insol"
	SNR           Field = "snr"
	StellarTemp   Field = "stellar_temp"
	StellarRadius Field = "stellar_radius"
)

// Alias lists the source columns for a canonical field in priority order.
type Alias struct {
	Field   Field
	Sources []string
}

// DefaultAliases is the alias table for the supported NASA catalogs.
var DefaultAliases = []Alias{
	{Name, []string{"kepoi_name", "kepler_name", "toi", "pl_name", "id", "rowid"}},
	{Period, []string{"koi_period", "pl_orbper"}},
	{Duration, []string{"koi_duration", "pl_trandurh"}},
	{Depth, []string{"koi_depth", "pl_trandep"}},
	{Radius, []string{"koi_prad", "pl_rade"}},
	{Teq, []string{"koi_teq", "pl_eqt"}},
	{Insol, []string{"koi_insol", "pl_insol"}},
	{SNR, []string{"koi_model_snr"}},
	{StellarTemp, []string{"koi_steff", "st_teff"}},
	{StellarRadius, []string{"koi_srad", "st_rad"}},
}

// Normalizer augments tables with canonical columns.
type Normalizer struct {
	aliases []Alias
}

// NewNormalizer returns a Normalizer for the given alias table, or
// DefaultAliases when none is given.
func NewNormalizer(aliases ...Alias) *Normalizer {
	if len(aliases) == 0 {
		aliases = DefaultAliases
	}
	cp := make([]Alias, len(aliases))
	for i, a := range aliases {
		cp[i] = Alias{Field: a.Field, Sources: append([]string(nil), a.Sources...)}
	}
	return &Normalizer{aliases: cp}
}

// Aliases returns the normalizer's alias table.
func (n *Normalizer) Aliases() []Alias {
	out := make([]Alias, len(n.aliases))
	copy(out, n.aliases)
	return out
}

// Normalize returns a new table with one column per canonical field appended
// after the original columns. For each row the canonical cell takes the first
// non-null value among the field's source columns that exist in the table; a
// field with no such value is null for that row. A column that already
// carries the canonical name is kept as is and not duplicated. The input
// table is never modified, and the empty sentinel is returned unchanged.
func (n *Normalizer) Normalize(t *table.Table) *table.Table {
	if t.Malformed() {
		return t
	}
	type plan struct {
		field   Field
		sources []string
	}
	var plans []plan
	for _, a := range n.aliases {
		if t.HasColumn(string(a.Field)) {
			continue
		}
		var present []string
		for _, s := range a.Sources {
			if t.HasColumn(s) {
				present = append(present, s)
			}
		}
		plans = append(plans, plan{field: a.Field, sources: present})
	}
	if len(plans) == 0 {
		return t
	}
	extra := make([]string, len(plans))
	for i, p := range plans {
		extra[i] = string(p.field)
	}
	out, err := t.Augment(extra, func(r table.Row) []table.Value {
		vals := make([]table.Value, len(plans))
		for i, p := range plans {
			for _, s := range p.sources {
				if v := r.Get(s); !v.IsNull() {
					vals[i] = v
					break
				}
			}
		}
		return vals
	})
	if err != nil {
		// canonical names were checked against existing columns above
		slog.Debug("schema normalization skipped", "error", err)
		return t
	}
	return out
}

// Resolve reports, per canonical field, the columns of t that can feed it, in
// priority order. A field already present under its canonical name maps to
// that name alone.
func (n *Normalizer) Resolve(t *table.Table) map[Field][]string {
	out := make(map[Field][]string, len(n.aliases))
	for _, a := range n.aliases {
		if t.HasColumn(string(a.Field)) {
			out[a.Field] = []string{string(a.Field)}
			continue
		}
		for _, s := range a.Sources {
			if t.HasColumn(s) {
				out[a.Field] = append(out[a.Field], s)
			}
		}
	}
	return out
}

// Normalize applies the default alias table.
func Normalize(t *table.Table) *table.Table {
	return NewNormalizer().Normalize(t)
}

// NumericFields lists the canonical measurement fields in display order.
func NumericFields() []Field {
	return []Field{Period, Duration, Depth, Radius, Teq, Insol, SNR, StellarTemp, StellarRadius}
}
