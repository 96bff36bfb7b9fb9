package model1

import (
	"sort"
	"strings"
	"time"

	"github.com/fvbommel/sortorder"
)

// SortRows orders rows in place on the given column. Ties fall back on
// the row id so the order stays stable across refreshes.
func SortRows(rows Rows, h Header, col int, asc bool) {
	if col < 0 || col >= len(h) {
		return
	}
	isNumber, isDuration := h.IsNumericCol(col), h.IsDurationCol(col)
	sort.SliceStable(rows, func(i, j int) bool {
		r1, r2 := rows[i], rows[j]
		less := Less(isNumber, isDuration, r1.ID, r2.ID, r1.Text(col), r2.Text(col))
		if asc {
			return less
		}
		return !less
	})
}

// Less returns true if v1 <= v2
func Less(isNumber, isDuration bool, id1, id2, v1, v2 string) bool {
	if v1 == v2 {
		return sortorder.NaturalLess(id1, id2)
	}
	// Absent values always sort first.
	switch {
	case v1 == Placeholder:
		return true
	case v2 == Placeholder:
		return false
	}

	switch {
	case isNumber:
		return lessNumber(v1, v2)
	case isDuration:
		return lessDuration(v1, v2)
	default:
		return sortorder.NaturalLess(v1, v2)
	}
}

func lessDuration(s1, s2 string) bool {
	d1, err1 := time.ParseDuration(s1)
	d2, err2 := time.ParseDuration(s2)
	if err1 != nil || err2 != nil {
		return sortorder.NaturalLess(s1, s2)
	}
	return d1 <= d2
}

func lessNumber(s1, s2 string) bool {
	v1, v2 := strings.ReplaceAll(s1, ",", ""), strings.ReplaceAll(s2, ",", "")
	if len(v1) != len(v2) {
		return len(v1) < len(v2)
	}
	return sortorder.NaturalLess(v1, v2)
}
