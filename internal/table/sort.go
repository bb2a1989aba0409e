package table

import (
	"sort"
	"strings"
)

// SortRows returns a copy of rows stably ordered by column. Numbers compare
// numerically and rank below text; null cells sort last in either direction.
func SortRows(rows []Row, column string, desc bool) []Row {
	out := make([]Row, len(rows))
	copy(out, rows)
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i].Get(column), out[j].Get(column)
		if a.IsNull() || b.IsNull() {
			return !a.IsNull() && b.IsNull()
		}
		c := compare(a, b)
		if desc {
			return c > 0
		}
		return c < 0
	})
	return out
}

func compare(a, b Value) int {
	x, xok := a.Float()
	y, yok := b.Float()
	switch {
	case xok && yok:
		switch {
		case x < y:
			return -1
		case x > y:
			return 1
		}
		return 0
	case xok:
		return -1
	case yok:
		return 1
	}
	return strings.Compare(strings.ToLower(a.String()), strings.ToLower(b.String()))
}
