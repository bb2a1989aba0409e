// Package dataset ties one uploaded table to its classification and serves
// the derived views, memoized per table version and selection.
package dataset

import (
	"fmt"
	"io"
	"log/slog"
	"slices"
	"strings"
	"sync"

	"github.com/KaramelBytes/exoscope/internal/cache"
	"github.com/KaramelBytes/exoscope/internal/classify"
	"github.com/KaramelBytes/exoscope/internal/label"
	"github.com/KaramelBytes/exoscope/internal/orbit"
	"github.com/KaramelBytes/exoscope/internal/schema"
	"github.com/KaramelBytes/exoscope/internal/stats"
	"github.com/KaramelBytes/exoscope/internal/table"
)

// AllLabels selects every row regardless of label.
const AllLabels label.Label = ""

// Options configures how snapshots are built and what they derive.
type Options struct {
	Normalizer *schema.Normalizer
	// LabelColumn overrides where labels are read from. When empty the
	// predicted column is used, falling back to the detected mission's
	// disposition column for catalog files that were never classified.
	LabelColumn string
	Orbit       orbit.Config
	Bins        stats.BinPolicy
	Area        stats.PlotArea
	CacheSize   int
}

// DefaultOptions returns the viewer defaults.
func DefaultOptions() Options {
	return Options{
		Normalizer: schema.NewNormalizer(),
		Orbit:      orbit.DefaultConfig(),
		Bins:       stats.DefaultPolicy(),
		Area:       stats.DefaultArea,
		CacheSize:  cache.DefaultSize,
	}
}

// Session owns the caches shared by successive snapshots. Opening a new
// snapshot evicts everything derived from earlier ones.
type Session struct {
	opts      Options
	projector *orbit.Projector
	canon     *label.Canonicalizer

	summaries *cache.Memo[[]stats.ColumnStatistic]
	hists     *cache.Memo[[]stats.HistogramBin]
	scatters  *cache.Memo[[]stats.ScatterPoint]
	orbits    *cache.Memo[orbit.Projection]

	mu      sync.Mutex
	current *Snapshot
}

// NewSession validates opts and returns an empty session.
func NewSession(opts Options) (*Session, error) {
	if opts.Normalizer == nil {
		opts.Normalizer = schema.NewNormalizer()
	}
	if opts.Area.Width <= 0 || opts.Area.Height <= 0 {
		return nil, fmt.Errorf("plot area must be positive, got %gx%g", opts.Area.Width, opts.Area.Height)
	}
	p, err := orbit.NewProjector(opts.Orbit)
	if err != nil {
		return nil, err
	}
	return &Session{
		opts:      opts,
		projector: p,
		canon:     label.NewCanonicalizer(),
		summaries: cache.New[[]stats.ColumnStatistic](opts.CacheSize),
		hists:     cache.New[[]stats.HistogramBin](opts.CacheSize),
		scatters:  cache.New[[]stats.ScatterPoint](opts.CacheSize),
		orbits:    cache.New[orbit.Projection](opts.CacheSize),
	}, nil
}

// Open normalizes and classifies raw and makes the result current.
func (s *Session) Open(raw *table.Table) *Snapshot {
	norm := s.opts.Normalizer.Normalize(raw)
	labelCol := s.opts.LabelColumn
	if labelCol == "" {
		labelCol = classify.PredictedColumn
		if !norm.HasColumn(labelCol) {
			if m, ok := schema.DetectMission(raw.Columns()); ok && norm.HasColumn(m.DispositionColumn()) {
				labelCol = m.DispositionColumn()
			}
		}
	}
	set := classify.FromTable(norm, classify.Options{LabelColumn: labelCol, Canonicalizer: s.canon})
	snap := &Snapshot{
		session:     s,
		raw:         raw,
		set:         set,
		labelColumn: labelCol,
		agg:         classify.Aggregate(set.Rows()),
	}

	s.mu.Lock()
	s.current = snap
	s.mu.Unlock()
	v := snap.Version()
	s.summaries.Retain(v)
	s.hists.Retain(v)
	s.scatters.Retain(v)
	s.orbits.Retain(v)

	slog.Debug("snapshot opened", "version", v, "rows", set.Len(), "label_column", labelCol)
	return snap
}

// Current is the most recently opened snapshot, or nil.
func (s *Session) Current() *Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// Open builds a snapshot in a fresh session.
func Open(raw *table.Table, opts Options) (*Snapshot, error) {
	s, err := NewSession(opts)
	if err != nil {
		return nil, err
	}
	return s.Open(raw), nil
}

// Snapshot is the immutable state of one upload.
type Snapshot struct {
	session     *Session
	raw         *table.Table
	set         *classify.Set
	labelColumn string
	agg         classify.Aggregation

	previewOnce sync.Once
	preview     *table.Table
}

// Err reports why the upload could not be read, if it could not.
func (s *Snapshot) Err() error { return s.raw.Err() }

// Version identifies the classified table; it changes with every upload.
func (s *Snapshot) Version() string { return s.set.Table().Version() }

// Raw is the table as uploaded.
func (s *Snapshot) Raw() *table.Table { return s.raw }

// Table is the normalized table.
func (s *Snapshot) Table() *table.Table { return s.set.Table() }

// Set is the classified rows.
func (s *Snapshot) Set() *classify.Set { return s.set }

// LabelColumn names the column labels were read from.
func (s *Snapshot) LabelColumn() string { return s.labelColumn }

// Aggregation returns a copy of the per-label breakdown of all rows.
func (s *Snapshot) Aggregation() classify.Aggregation { return s.agg.Clone() }

// Counts returns the number of rows per label.
func (s *Snapshot) Counts() map[label.Label]int {
	out := make(map[label.Label]int, len(s.agg.Counts))
	for l, n := range s.agg.Counts {
		out[l] = n
	}
	return out
}

// Percentages returns the share of rows per label as a percentage in [0,100].
func (s *Snapshot) Percentages() map[label.Label]float64 {
	out := make(map[label.Label]float64, len(label.All))
	for _, l := range label.All {
		out[l] = 100 * s.agg.Percentage(l)
	}
	return out
}

// Rows returns the classified rows with label l, or every row for AllLabels.
func (s *Snapshot) Rows(l label.Label) []classify.ClassifiedRow {
	if l == AllLabels {
		return s.set.Rows()
	}
	return slices.Clone(s.agg.ByLabel[l])
}

// Preview pages through the raw table with all-null rows and columns removed.
func (s *Snapshot) Preview(offset, limit int) (columns []string, rows []table.Row) {
	s.previewOnce.Do(func() { s.preview = s.raw.Preview() })
	return s.preview.Columns(), s.preview.Page(offset, limit)
}

// NumericColumns lists the canonical measurement columns, in display order.
func (s *Snapshot) NumericColumns() []string {
	var out []string
	for _, f := range schema.NumericFields() {
		if s.Table().HasColumn(string(f)) {
			out = append(out, string(f))
		}
	}
	return out
}

func (s *Snapshot) key(kind string, l label.Label, columns ...string) cache.Key {
	ls := string(l)
	if l == AllLabels {
		ls = "*"
	}
	return cache.Key{Kind: kind, Version: s.Version(), Label: ls, Columns: columns}
}

// Summaries summarizes columns over the rows labeled l. A nil columns
// slice uses NumericColumns. Columns with no numeric values are omitted.
func (s *Snapshot) Summaries(l label.Label, columns []string) []stats.ColumnStatistic {
	if columns == nil {
		columns = s.NumericColumns()
	}
	v, _ := s.session.summaries.Get(s.key("summary", l, columns...), func() ([]stats.ColumnStatistic, error) {
		return stats.Summaries(classify.TableRows(s.Rows(l)), columns), nil
	})
	return slices.Clone(v)
}

// Histogram bins column over the rows labeled l under the session's policy.
func (s *Snapshot) Histogram(l label.Label, column string) []stats.HistogramBin {
	return s.HistogramWith(l, column, s.session.opts.Bins)
}

// HistogramWith bins column under an explicit policy.
func (s *Snapshot) HistogramWith(l label.Label, column string, policy stats.BinPolicy) []stats.HistogramBin {
	v, _ := s.session.hists.Get(s.key("hist", l, column, policy.String()), func() ([]stats.HistogramBin, error) {
		return stats.ColumnHistogram(classify.TableRows(s.Rows(l)), column, policy), nil
	})
	return slices.Clone(v)
}

// Scatter projects the rows labeled l onto two columns in the session's plot area.
func (s *Snapshot) Scatter(l label.Label, x, y string) []stats.ScatterPoint {
	area := s.session.opts.Area
	dims := fmt.Sprintf("%gx%g", area.Width, area.Height)
	v, _ := s.session.scatters.Get(s.key("scatter", l, x, y, dims), func() ([]stats.ScatterPoint, error) {
		return stats.Scatter(s.Rows(l), x, y, area), nil
	})
	return slices.Clone(v)
}

// Orbits projects the rows labeled l into an orbital system.
func (s *Snapshot) Orbits(l label.Label) orbit.Projection {
	v, _ := s.session.orbits.Get(s.key("orbit", l), func() (orbit.Projection, error) {
		return s.session.projector.Project(s.set.Rows(), l), nil
	})
	v.Bodies = slices.Clone(v.Bodies)
	return v
}

// Export writes the original columns plus the predicted label to w as
// "csv" or "xlsx".
func (s *Snapshot) Export(w io.Writer, format string) error {
	cols := s.raw.Columns()
	switch strings.ToLower(format) {
	case "", "csv":
		return s.set.WriteCSV(w, cols)
	case "xlsx":
		return s.set.WriteXLSX(w, cols, classify.DefaultSheet)
	default:
		return fmt.Errorf("%w: export format %q", table.ErrUnsupportedFormat, format)
	}
}
