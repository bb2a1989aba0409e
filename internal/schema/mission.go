package schema

import (
	"fmt"
	"strings"
)

// Mission identifies the survey a table was exported from.
type Mission string

const (
	Kepler Mission = "kepler"
	TESS   Mission = "tess"
	K2     Mission = "k2"
)

var dispositionColumns = map[Mission]string{
	Kepler: "koi_disposition",
	TESS:   "tfopwg_disp",
	K2:     "disposition",
}

// DispositionColumn is the mission's ground-truth disposition column.
func (m Mission) DispositionColumn() string { return dispositionColumns[m] }

// ParseMission accepts a mission name in any case, plus common aliases.
func ParseMission(s string) (Mission, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "kepler", "koi":
		return Kepler, nil
	case "tess", "toi":
		return TESS, nil
	case "k2":
		return K2, nil
	default:
		return "", fmt.Errorf("unknown mission: %q (use kepler, tess or k2)", s)
	}
}

// DetectMission guesses the mission from a table's columns. ok is false when
// no signature column is found.
func DetectMission(columns []string) (Mission, bool) {
	var hasDisposition, hasPlanetCols bool
	for _, c := range columns {
		lc := strings.ToLower(c)
		switch {
		case lc == "koi_disposition" || strings.HasPrefix(lc, "koi_") || lc == "kepoi_name":
			return Kepler, true
		case lc == "tfopwg_disp" || lc == "toi":
			return TESS, true
		case lc == "disposition":
			hasDisposition = true
		case strings.HasPrefix(lc, "pl_"):
			hasPlanetCols = true
		}
	}
	if hasDisposition && hasPlanetCols {
		return K2, true
	}
	return "", false
}
