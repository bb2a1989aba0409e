package orbit

import (
	"hash/fnv"
	"math"
	"strconv"

	"github.com/golang/geo/r3"
	"github.com/soniakeys/unit"
	xrand "golang.org/x/exp/rand"

	"github.com/KaramelBytes/exoscope/internal/classify"
	"github.com/KaramelBytes/exoscope/internal/label"
	"github.com/KaramelBytes/exoscope/internal/schema"
)

// ColorClass is the render palette entry of a body.
type ColorClass string

const (
	ColorConfirmed     ColorClass = "confirmed"
	ColorCandidate     ColorClass = "candidate"
	ColorFalsePositive ColorClass = "false-positive"
	ColorUnknown       ColorClass = "unknown"
)

// ColorFor returns the palette entry of l.
func ColorFor(l label.Label) ColorClass {
	switch l {
	case label.Confirmed:
		return ColorConfirmed
	case label.Candidate:
		return ColorCandidate
	case label.FalsePositive:
		return ColorFalsePositive
	default:
		return ColorUnknown
	}
}

// Body is one rendered planet.
type Body struct {
	Name          string     `json:"name"`
	Row           int        `json:"row"`
	OrbitalRadius float64    `json:"orbital_radius"`
	BodyRadius    float64    `json:"body_radius"`
	AngularSpeed  float64    `json:"angular_speed"`
	Phase         unit.Angle `json:"phase"`
	Position      r3.Vector  `json:"position"`
	ColorClass    ColorClass `json:"color_class"`
	Confidence    float64    `json:"confidence"`
}

// Projection is the result of projecting one label selection.
// NoSystem is set for FALSE_POSITIVE, which never renders a system.
type Projection struct {
	Label     label.Label `json:"label"`
	Bodies    []Body      `json:"bodies"`
	NoSystem  bool        `json:"no_system"`
	Truncated int         `json:"truncated"`
}

// Projector maps classified rows to bodies under a fixed Config.
type Projector struct {
	cfg Config
}

// NewProjector validates cfg and returns a Projector.
func NewProjector(cfg Config) (*Projector, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Projector{cfg: cfg}, nil
}

// Config returns the projector's constants.
func (p *Projector) Config() Config { return p.cfg }

// Project filters rows to selected, caps them at MaxBodies and maps each to
// a Body. The same rows always produce the same bodies.
func (p *Projector) Project(rows []classify.ClassifiedRow, selected label.Label) Projection {
	if selected == label.FalsePositive {
		return Projection{Label: selected, Bodies: []Body{}, NoSystem: true}
	}
	picked := classify.Filter(rows, selected)
	out := Projection{Label: selected}
	if len(picked) > p.cfg.MaxBodies {
		out.Truncated = len(picked) - p.cfg.MaxBodies
		picked = picked[:p.cfg.MaxBodies]
	}
	out.Bodies = make([]Body, len(picked))
	rnd := xrand.New(&xrand.PCGSource{})
	for i, cr := range picked {
		out.Bodies[i] = p.body(rnd, i, cr)
	}
	return out
}

func (p *Projector) body(rnd *xrand.Rand, index int, cr classify.ClassifiedRow) Body {
	f := schema.Extract(cr.Row)
	key := f.Name
	if key == "" {
		key = "#" + strconv.Itoa(cr.Row.Index())
	}
	rnd.Seed(p.cfg.Seed ^ stableHash(key))

	b := Body{
		Name:          f.Name,
		Row:           cr.Row.Index(),
		OrbitalRadius: p.OrbitalRadius(f.Period, index),
		BodyRadius:    p.BodyRadius(f.Radius),
		AngularSpeed:  p.cfg.SpeedMin + rnd.Float64()*(p.cfg.SpeedMax-p.cfg.SpeedMin),
		Phase:         unit.Angle(rnd.Float64() * 2 * math.Pi),
		ColorClass:    ColorFor(cr.Label),
		Confidence:    cr.RenderConfidence(),
	}
	sin, cos := math.Sincos(b.Phase.Rad())
	b.Position = r3.Vector{X: b.OrbitalRadius * cos, Y: 0, Z: b.OrbitalRadius * sin}
	return b
}

// OrbitalRadius compresses period with a power law. A missing, negative
// or non-finite period places the body on the index-th evenly spaced orbit.
func (p *Projector) OrbitalRadius(period schema.Quantity, index int) float64 {
	if v, ok := period.Get(); ok && v >= 0 && !math.IsInf(v, 0) {
		return p.cfg.BaseOffset + math.Pow(v, p.cfg.Exponent)
	}
	return p.cfg.BaseOffset + float64(index)*p.cfg.Spacing
}

// BodyRadius scales the planet radius, floored at MinRadius. A missing
// radius uses DefaultRadius.
func (p *Projector) BodyRadius(radius schema.Quantity) float64 {
	v, ok := radius.Get()
	if !ok {
		return p.cfg.DefaultRadius
	}
	return math.Max(p.cfg.MinRadius, v*p.cfg.RadiusScale)
}

func stableHash(key string) uint64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(key))
	return h.Sum64()
}
