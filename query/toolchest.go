package query

import (
	"fmt"
	"strings"

	"github.com/dgryski/go-farm"
)

// Toolchest is the per-query-kind strategy object of §4.5: "cache-key
// serialization, row-schema inference, mergeResults,
// postMergeDecoration, preMergeDecoration, finalizeResults,
// makePostComputeManipulator, and toTabularFormat." The interface below
// has no makePostComputeManipulator or toTabularFormat method. Not every
// kind needs every hook it does have; each defaults to an identity/no-op
// implementation via embedding baseToolchest.
type Toolchest interface {
	// CacheKey serializes the query-shape-relevant fields of q into a
	// deterministic string (§9 "open question" on cache keying); two
	// queries with the same CacheKey must be answerable from the same
	// cached partial result.
	CacheKey(q *Query) string

	// RowSchema names the output columns this query kind produces, in
	// order, for toTabularFormat-style consumers.
	RowSchema(q *Query) []string

	// MergeResults merges zero or more per-segment Sequences into one
	// ordered Sequence, per kind's algorithm (§4.5 step 4).
	MergeResults(q *Query, parts []Sequence) (Sequence, error)

	// PreMergeDecoration wraps the per-segment stage (§4.5 step 5);
	// identity by default.
	PreMergeDecoration(q *Query, seq Sequence) Sequence

	// PostMergeDecoration applies post-aggregators in declared order
	// (§4.5 step 3); shared across all aggregation-bearing kinds.
	PostMergeDecoration(q *Query, seq Sequence) Sequence

	// FinalizeResults applies each aggregator's Finalize function (§4.5
	// step 2); a no-op for kinds without aggregators.
	FinalizeResults(q *Query, seq Sequence) Sequence

	// FinalQueryDecoration is the outermost stage (§4.5 step 1):
	// classify/explode/tag post-processors read from the context.
	FinalQueryDecoration(q *Query, seq Sequence) Sequence
}

// baseToolchest supplies identity/no-op defaults for every hook;
// concrete toolchests embed it and override only what their kind needs
// (grounded in the teacher's habit of small structs embedding a shared
// base, e.g. gbam.BaseRecord-style composition in encoding/bam).
type baseToolchest struct{}

func (baseToolchest) CacheKey(q *Query) string                      { return defaultCacheKey(q) }
func (baseToolchest) RowSchema(q *Query) []string                    { return nil }
func (baseToolchest) PreMergeDecoration(q *Query, seq Sequence) Sequence  { return seq }
func (baseToolchest) PostMergeDecoration(q *Query, seq Sequence) Sequence { return applyPostAggregators(q, seq) }
func (baseToolchest) FinalizeResults(q *Query, seq Sequence) Sequence     { return applyFinalize(q, seq) }
func (baseToolchest) FinalQueryDecoration(q *Query, seq Sequence) Sequence { return applyFinalQueryDecoration(q, seq) }

// registry maps Kind -> Toolchest, populated by the single init() in
// toolchests.go, so adding a kind never requires editing this file.
var registry = map[Kind]Toolchest{}

func register(k Kind, t Toolchest) { registry[k] = t }

// ToolchestFor returns the registered Toolchest for q.Kind, or ok=false
// if the kind has none. toolchests.go registers one for every Kind;
// search and scan share the select toolchest.
func ToolchestFor(k Kind) (Toolchest, bool) {
	t, ok := registry[k]
	return t, ok
}

// defaultCacheKey hashes dataSource+intervals+dimensions+aggregators
// with farm.Hash64, the same non-cryptographic hash the teacher reaches
// for elsewhere (fusion's kmer index). Cache population/lookup itself
// is out of scope (§1 Non-goals); this only has to produce a
// deterministic key two shape-equal queries agree on.
func defaultCacheKey(q *Query) string {
	var sb strings.Builder
	sb.WriteString(q.DataSource.Table)
	for _, iv := range q.Intervals {
		fmt.Fprintf(&sb, "|%d-%d", iv.Start, iv.End)
	}
	for _, d := range q.Dimensions {
		sb.WriteByte('|')
		sb.WriteString(d.OutputName)
	}
	for _, a := range q.Aggregators {
		sb.WriteByte('|')
		sb.WriteString(a.Name)
	}
	h := farm.Hash64([]byte(sb.String()))
	return fmt.Sprintf("%s:%016x", q.Kind.String(), h)
}
