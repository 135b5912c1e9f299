package query

import "sort"

// mergeSelect concat-orders every segment's rows by (timestamp,
// segment-id) (§4.5 "concat-ordered by (timestamp, segment-id)"),
// applying q.PagingSpec.Threshold as a row cap -- the full resumable
// paging-token protocol (per-segment previous offsets) is consumed by
// the caller driving successive queries, not by this single merge pass.
// Select, Stream, Scan, and Search all share this merge shape (§3: each
// differs only in row projection/filtering upstream, not in merge
// order).
func mergeSelect(q *Query, parts []Sequence) (Sequence, error) {
	var rows []Row
	for _, part := range parts {
		for part.Scan() {
			rows = append(rows, part.Value())
		}
		if err := part.Err(); err != nil {
			return nil, err
		}
		part.Close()
	}
	sort.SliceStable(rows, func(i, j int) bool {
		ti, _ := rows[i]["__time"].(int64)
		tj, _ := rows[j]["__time"].(int64)
		if ti != tj {
			if q.Descending {
				return ti > tj
			}
			return ti < tj
		}
		return toStr(rows[i]["__segmentId"]) < toStr(rows[j]["__segmentId"])
	})
	if q.PagingSpec.Threshold > 0 && q.PagingSpec.Threshold < len(rows) {
		rows = rows[:q.PagingSpec.Threshold]
	}
	return FromSlice(rows), nil
}
