// Package label canonicalizes disposition tokens from the different catalogs
// and from the classifier into one fixed label set.
package label

import (
	"strings"
	"sync"

	"github.com/KaramelBytes/exoscope/internal/table"
)

// Label is a canonical classification outcome.
type Label string

const (
	Confirmed     Label = "CONFIRMED"
	Candidate     Label = "CANDIDATE"
	FalsePositive Label = "FALSE_POSITIVE"
	Unknown       Label = "UNKNOWN"
)

// All lists every label in display order.
var All = []Label{Confirmed, Candidate, FalsePositive, Unknown}

func (l Label) String() string { return string(l) }

// Valid reports whether l is one of the four canonical labels.
func (l Label) Valid() bool {
	switch l {
	case Confirmed, Candidate, FalsePositive, Unknown:
		return true
	}
	return false
}

// Display is a human-readable label name.
func (l Label) Display() string {
	switch l {
	case Confirmed:
		return "Confirmed"
	case Candidate:
		return "Candidate"
	case FalsePositive:
		return "False Positive"
	default:
		return "Unknown"
	}
}

// tokens maps a normalized token (upper case, single spaces) to its label.
var tokens = map[string]Label{
	"CONFIRMED":        Confirmed,
	"CONFIRMED PLANET": Confirmed,
	"CP":               Confirmed,
	"KP":               Confirmed,
	"CANDIDATE":        Candidate,
	"PLANET CANDIDATE": Candidate,
	"PC":               Candidate,
	"FALSE POSITIVE":   FalsePositive,
	"FALSEPOSITIVE":    FalsePositive,
	"FP":               FalsePositive,
	"UNKNOWN":          Unknown,
}

// Canonicalize maps any disposition token to a Label. Matching ignores case
// and treats underscores, hyphens and runs of whitespace as one space.
// Anything unrecognized, including the empty string, is Unknown.
func Canonicalize(token string) Label {
	if l, ok := tokens[normalize(token)]; ok {
		return l
	}
	return Unknown
}

// FromValue canonicalizes a table cell; null cells are Unknown.
func FromValue(v table.Value) Label {
	if v.IsNull() {
		return Unknown
	}
	return Canonicalize(v.String())
}

func normalize(token string) string {
	s := strings.Map(func(r rune) rune {
		if r == '_' || r == '-' {
			return ' '
		}
		return r
	}, token)
	return strings.ToUpper(strings.Join(strings.Fields(s), " "))
}

// Canonicalizer memoizes Canonicalize per distinct raw token. Catalog
// disposition columns hold a handful of distinct values, so the memo stays
// small even for large tables. It is safe for concurrent use.
type Canonicalizer struct {
	mu   sync.RWMutex
	memo map[string]Label
}

// NewCanonicalizer returns an empty memoizing canonicalizer.
func NewCanonicalizer() *Canonicalizer {
	return &Canonicalizer{memo: make(map[string]Label)}
}

// Canonicalize returns the label for token, computing it at most once per token.
func (c *Canonicalizer) Canonicalize(token string) Label {
	c.mu.RLock()
	l, ok := c.memo[token]
	c.mu.RUnlock()
	if ok {
		return l
	}
	l = Canonicalize(token)
	c.mu.Lock()
	c.memo[token] = l
	c.mu.Unlock()
	return l
}

// FromValue canonicalizes a table cell through the memo.
func (c *Canonicalizer) FromValue(v table.Value) Label {
	if v.IsNull() {
		return Unknown
	}
	return c.Canonicalize(v.String())
}

// Size is the number of distinct tokens seen.
func (c *Canonicalizer) Size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.memo)
}
