package query

import "sort"

// mergeTopN combines partial rows the same way mergeGroupBy does (topN
// is a groupBy over a single dimension, §3), then within each time
// bucket keeps only the Threshold rows ranked highest by Metric
// (descending unless the query requests ascending via Descending),
// dropping the rest (§3 "topN :: single-dimension groupBy truncated to
// a per-bucket threshold").
func mergeTopN(q *Query, parts []Sequence) (Sequence, error) {
	gbQuery := *q
	gbQuery.Dimensions = []DimensionSpec{q.TopNDimension}
	seq, err := mergeGroupBy(&gbQuery, parts)
	if err != nil {
		return nil, err
	}
	rows, err := Drain(seq)
	if err != nil {
		return nil, err
	}

	byBucket := make(map[int64][]Row)
	var order []int64
	for _, r := range rows {
		t, _ := r["__time"].(int64)
		if _, ok := byBucket[t]; !ok {
			order = append(order, t)
		}
		byBucket[t] = append(byBucket[t], r)
	}
	sort.Slice(order, func(i, j int) bool { return order[i] < order[j] })

	var out []Row
	for _, t := range order {
		bucket := byBucket[t]
		sort.SliceStable(bucket, func(i, j int) bool {
			vi, _ := toFloat(bucket[i][q.Metric])
			vj, _ := toFloat(bucket[j][q.Metric])
			if q.Descending {
				return vi < vj
			}
			return vj < vi
		})
		if q.Threshold > 0 && q.Threshold < len(bucket) {
			bucket = bucket[:q.Threshold]
		}
		out = append(out, bucket...)
	}
	return FromSlice(out), nil
}
