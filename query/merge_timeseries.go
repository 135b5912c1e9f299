package query

import "sort"

// mergeTimeseries combines every segment's per-bucket partial rows into
// one timestamp-ordered stream, combining partial aggregator values that
// land in the same bucket the same way mergeGroupBy does, since a
// timeseries query is a groupBy with no dimensions (§3 "timeseries ::
// groupBy with the dimension list forced empty").
func mergeTimeseries(q *Query, parts []Sequence) (Sequence, error) {
	tsQuery := *q
	tsQuery.Dimensions = nil
	seq, err := mergeGroupBy(&tsQuery, parts)
	if err != nil {
		return nil, err
	}
	rows, err := Drain(seq)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(rows, func(i, j int) bool {
		ti, _ := rows[i]["__time"].(int64)
		tj, _ := rows[j]["__time"].(int64)
		if q.Descending {
			return ti > tj
		}
		return ti < tj
	})
	return FromSlice(rows), nil
}
