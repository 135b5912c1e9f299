package query

import (
	"context"

	"github.com/segmentdb/qengine/qerrors"
	"github.com/segmentdb/qengine/segment"
)

// Resolver looks up the segment descriptors backing one data source
// table; cmd/qbroker's shard-directory scan is the production
// implementation.
type Resolver func(table string) []segment.Descriptor

// Execute runs q end to end (§4.5's full stage order), recursing into
// any SubQueries Rewrite produces before merging. Join, Classify, and
// partitioned group-by all rewrite into a shape whose MergeResults
// expects one already-computed Sequence per sub-query rather than a
// raw per-segment scan (§4.5 "Query rewriting"); a leaf query (no
// SubQueries) still runs the ordinary per-segment-then-merge path.
func Execute(ctx context.Context, q *Query, resolve Resolver) (Sequence, error) {
	rewritten, err := q.Rewrite()
	if err != nil {
		return nil, err
	}
	toolchest, ok := ToolchestFor(rewritten.Kind)
	if !ok {
		return nil, qerrors.E(qerrors.InvalidQuery, "no toolchest registered for query kind")
	}

	var parts []Sequence
	if len(rewritten.SubQueries) > 0 {
		parts = make([]Sequence, len(rewritten.SubQueries))
		for i, sub := range rewritten.SubQueries {
			seq, err := Execute(ctx, sub, resolve)
			if err != nil {
				return nil, err
			}
			parts[i] = seq
		}
	} else {
		descs := resolve(rewritten.DataSource.Table)
		segParts, err := RunPerSegment(ctx, rewritten, descs)
		if err != nil {
			return nil, err
		}
		parts = make([]Sequence, len(segParts))
		for i, p := range segParts {
			parts[i] = toolchest.PreMergeDecoration(rewritten, p)
		}
	}

	merged, err := toolchest.MergeResults(rewritten, parts)
	if err != nil {
		return nil, err
	}
	decorated := toolchest.PostMergeDecoration(rewritten, merged)
	decorated = toolchest.FinalizeResults(rewritten, decorated)
	return toolchest.FinalQueryDecoration(rewritten, decorated), nil
}
