package query

import (
	"strings"

	"github.com/segmentdb/qengine/qerrors"
)

// JoinPostProcessor is the rewrite-attached payload rewriteJoin installs
// via qcontext.SetPostProcessing: one JoinElement per right-hand side,
// applied in order against the accumulating left result (§4.5 "Query
// rewriting... Join"). mergeUnionAll type-asserts the query's
// PostProcessing value to *JoinPostProcessor to recognize a rewritten
// join instead of an ordinary union-all.
type JoinPostProcessor struct {
	Elements []JoinElement
}

// ClassifyPostProcessor is rewriteClassify's attached payload: TagColumn
// names the output column the classifier's verdict is written under,
// and MatchOn lists the dimensions shared between the classifier's
// output and the data query's output used to correlate one to the
// other. An empty MatchOn means the classifier produced a single,
// row-independent verdict that is broadcast to every data row.
type ClassifyPostProcessor struct {
	TagColumn string
	MatchOn   []string
}

// runJoin sequentially hash-joins parts[0] (the left side) against
// parts[1:] (one per JoinElement, in declared order), so a multi-way
// join folds left-to-right the same way its JoinElements were declared.
func runJoin(pp *JoinPostProcessor, parts []Sequence) (Sequence, error) {
	if len(parts) != len(pp.Elements)+1 {
		closeAll(parts)
		return nil, qerrors.E(qerrors.Internal, "join postprocessor: expected one sub-query per join element plus the left side")
	}
	left, err := Drain(parts[0])
	if err != nil {
		closeAll(parts[1:])
		return nil, err
	}
	for i, je := range pp.Elements {
		right, err := Drain(parts[i+1])
		if err != nil {
			closeAll(parts[i+2:])
			return nil, err
		}
		left = hashJoin(left, right, je)
	}
	return FromSlice(left), nil
}

func closeAll(parts []Sequence) {
	for _, p := range parts {
		p.Close()
	}
}

// hashJoin matches left against right by je's join columns: it builds
// an index over right keyed by RightJoinColumns, then probes it once
// per left row with LeftJoinColumns, honoring je.JoinType's inner/outer
// semantics (§8 Scenario 5: row count equals the number of matching key
// pairs for an inner join).
func hashJoin(left, right []Row, je JoinElement) []Row {
	rightIdx := make(map[string][]int, len(right))
	for i, r := range right {
		k := joinKey(r, je.RightJoinColumns)
		rightIdx[k] = append(rightIdx[k], i)
	}
	matched := make([]bool, len(right))

	var out []Row
	for _, l := range left {
		k := joinKey(l, je.LeftJoinColumns)
		idxs := rightIdx[k]
		if len(idxs) == 0 {
			if je.JoinType == LeftOuterJoin || je.JoinType == FullOuterJoin {
				out = append(out, mergeJoinRow(l, nil))
			}
			continue
		}
		for _, idx := range idxs {
			matched[idx] = true
			out = append(out, mergeJoinRow(l, right[idx]))
		}
	}
	if je.JoinType == RightOuterJoin || je.JoinType == FullOuterJoin {
		for i, r := range right {
			if !matched[i] {
				out = append(out, mergeJoinRow(nil, r))
			}
		}
	}
	return out
}

func mergeJoinRow(left, right Row) Row {
	out := make(Row, len(left)+len(right))
	for k, v := range left {
		out[k] = v
	}
	for k, v := range right {
		out[k] = v
	}
	return out
}

func joinKey(r Row, cols []string) string {
	if len(cols) == 0 {
		return ""
	}
	var sb strings.Builder
	for _, c := range cols {
		sb.WriteString(toStr(r[c]))
		sb.WriteByte('\x00')
	}
	return sb.String()
}

// runClassify correlates parts[0] (the Classifier sub-query's verdicts)
// with parts[1] (the base data query's rows) via pp.MatchOn, writing
// pp.TagColumn onto every data row (§4.5 "Query rewriting... Classify").
func runClassify(pp *ClassifyPostProcessor, parts []Sequence) (Sequence, error) {
	if len(parts) != 2 {
		closeAll(parts)
		return nil, qerrors.E(qerrors.Internal, "classify postprocessor: expected exactly the classifier and data sub-queries")
	}
	model, err := Drain(parts[0])
	if err != nil {
		parts[1].Close()
		return nil, err
	}
	data, err := Drain(parts[1])
	if err != nil {
		return nil, err
	}

	var broadcast interface{}
	haveBroadcast := false
	index := make(map[string]interface{}, len(model))
	for _, r := range model {
		tag := r[pp.TagColumn]
		if len(pp.MatchOn) == 0 {
			broadcast, haveBroadcast = tag, true
			continue
		}
		index[joinKey(r, pp.MatchOn)] = tag
	}

	out := make([]Row, len(data))
	for i, r := range data {
		tagged := make(Row, len(r)+1)
		for k, v := range r {
			tagged[k] = v
		}
		if len(pp.MatchOn) == 0 {
			if haveBroadcast {
				tagged[pp.TagColumn] = broadcast
			}
		} else if tag, ok := index[joinKey(r, pp.MatchOn)]; ok {
			tagged[pp.TagColumn] = tag
		}
		out[i] = tagged
	}
	return FromSlice(out), nil
}
