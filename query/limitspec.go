package query

import "sort"

// LimitSpec orders and truncates a groupBy's final merged result (§4.5
// "Across workers in group-by, the final result is ordered by the
// effective LimitSpec (which may specify natural, lexicographic, or
// numeric ordering)").
type LimitSpec struct {
	Limit   int // 0 means unlimited
	Columns []OrderByColumn
}

type OrderByColumn struct {
	Name       string
	Ordering   OrderingKind
	Descending bool
}

// Apply sorts rows by spec's columns (stable, so ties preserve merge
// order) and truncates to Limit. A nil/zero-value LimitSpec is a no-op
// (natural merge order, unlimited).
func (spec *LimitSpec) Apply(rows []Row) []Row {
	if spec == nil || len(spec.Columns) == 0 {
		if spec == nil || spec.Limit <= 0 || spec.Limit >= len(rows) {
			return rows
		}
		return rows[:spec.Limit]
	}
	sort.SliceStable(rows, func(i, j int) bool {
		return lessRows(rows[i], rows[j], spec.Columns)
	})
	if spec.Limit > 0 && spec.Limit < len(rows) {
		rows = rows[:spec.Limit]
	}
	return rows
}

func lessRows(a, b Row, cols []OrderByColumn) bool {
	for _, col := range cols {
		c := compareCell(a[col.Name], b[col.Name], col.Ordering)
		if col.Descending {
			c = -c
		}
		if c != 0 {
			return c < 0
		}
	}
	return false
}

func compareCell(a, b interface{}, ordering OrderingKind) int {
	switch ordering {
	case OrderingNumeric:
		af, aok := toFloat(a)
		bf, bok := toFloat(b)
		switch {
		case !aok && !bok:
			return 0
		case !aok:
			return -1
		case !bok:
			return 1
		case af < bf:
			return -1
		case af > bf:
			return 1
		default:
			return 0
		}
	default: // OrderingLexicographic, OrderingNatural (natural == insertion/merge order by default, fallback to lexicographic when explicitly sorted)
		as, bs := toStr(a), toStr(b)
		switch {
		case as < bs:
			return -1
		case as > bs:
			return 1
		default:
			return 0
		}
	}
}

func toFloat(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int64:
		return float64(n), true
	case int:
		return float64(n), true
	default:
		return 0, false
	}
}

func toStr(v interface{}) string {
	s, ok := v.(string)
	if ok {
		return s
	}
	return ""
}
