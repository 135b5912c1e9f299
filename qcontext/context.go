// Package qcontext implements the §6 "Context keys" accessor: a typed
// view over a plain map[string]interface{} carried on every Query,
// shared by package query (which reads it) and package filter (whose
// planner takes no context itself, but whose callers do). Context keys
// modulate behavior but never semantics (§4.5): a query run with any
// combination of these must produce the same rows, only different
// performance/packaging characteristics.
package qcontext

// Context wraps the opaque map §6 describes; it is intentionally thin
// so callers can still pass the same map across a wire boundary (e.g.
// JSON-decoded request bodies) without a bespoke marshaler.
type Context map[string]interface{}

// New returns an empty Context, ready for typed setters.
func New() Context { return make(Context) }

const (
	keyPriority                 = "priority"
	keyTimeout                  = "timeout"
	keyChunkPeriod               = "chunkPeriod"
	keyFinalize                 = "finalize"
	keyBySegment                = "bySegment"
	keyUseCache                 = "useCache"
	keyPopulateCache            = "populateCache"
	keyOptimizeQuery            = "optimizeQuery"
	keyPostProcessing           = "postProcessing"
	keyAllDimensionsForEmpty    = "allDimensionsForEmpty"
	keyForwardURL               = "forwardURL"
	keyGroupByMergeParallelism  = "groupByMergeParallelism"
	keyGroupByConvertTimeseries = "groupByConvertTimeseries"
	keyGroupByLimitPushdown     = "groupByLimitPushdown"
	keyGroupByMaxRowsInMemory   = "groupByMaxRowsInMemory"
	keyGroupByMaxBytesInMemory  = "groupByMaxBytesInMemory"
	keyMajorTypes               = "majorTypes"
)

func (c Context) getInt(key string, def int) int {
	v, ok := c[key]
	if !ok {
		return def
	}
	switch n := v.(type) {
	case int:
		return n
	case int64:
		return int(n)
	case float64:
		return int(n)
	default:
		return def
	}
}

func (c Context) getBool(key string, def bool) bool {
	v, ok := c[key]
	if !ok {
		return def
	}
	b, ok := v.(bool)
	if !ok {
		return def
	}
	return b
}

func (c Context) getInt64(key string, def int64) int64 {
	v, ok := c[key]
	if !ok {
		return def
	}
	switch n := v.(type) {
	case int64:
		return n
	case int:
		return int64(n)
	case float64:
		return int64(n)
	default:
		return def
	}
}

func (c Context) getString(key, def string) string {
	v, ok := c[key]
	if !ok {
		return def
	}
	s, ok := v.(string)
	if !ok {
		return def
	}
	return s
}

// Priority is the scheduling priority hint (default 0).
func (c Context) Priority() int { return c.getInt(keyPriority, 0) }
func (c Context) SetPriority(p int) { c[keyPriority] = p }

// TimeoutMillis bounds query wall-clock time; 0 means no timeout.
func (c Context) TimeoutMillis() int { return c.getInt(keyTimeout, 0) }
func (c Context) SetTimeoutMillis(ms int) { c[keyTimeout] = ms }

// ChunkPeriod is a duration string (e.g. "P1D") the broker may use to
// split a wide interval into smaller per-chunk sub-queries; "" disables
// chunking.
func (c Context) ChunkPeriod() string { return c.getString(keyChunkPeriod, "") }
func (c Context) SetChunkPeriod(p string) { c[keyChunkPeriod] = p }

// Finalize defaults to true (§4.5 "Finalize semantics").
func (c Context) Finalize() bool { return c.getBool(keyFinalize, true) }
func (c Context) SetFinalize(b bool) { c[keyFinalize] = b }

// BySegment defaults to false; true disables finalization and tags
// results with segment provenance (§4.5, §6 response shape).
func (c Context) BySegment() bool { return c.getBool(keyBySegment, false) }
func (c Context) SetBySegment(b bool) { c[keyBySegment] = b }

func (c Context) UseCache() bool      { return c.getBool(keyUseCache, false) }
func (c Context) SetUseCache(b bool)  { c[keyUseCache] = b }
func (c Context) PopulateCache() bool { return c.getBool(keyPopulateCache, false) }
func (c Context) SetPopulateCache(b bool) { c[keyPopulateCache] = b }
func (c Context) OptimizeQuery() bool { return c.getBool(keyOptimizeQuery, true) }
func (c Context) SetOptimizeQuery(b bool) { c[keyOptimizeQuery] = b }

// PostProcessing carries an opaque rewrite-attached payload, e.g. the
// JoinPostProcessor/ClassifyPostProcessor §4.5's query rewriting
// installs; query package type-asserts it to the concrete processor
// type it expects.
func (c Context) PostProcessing() interface{} { return c[keyPostProcessing] }
func (c Context) SetPostProcessing(v interface{}) { c[keyPostProcessing] = v }

func (c Context) AllDimensionsForEmpty() bool     { return c.getBool(keyAllDimensionsForEmpty, false) }
func (c Context) SetAllDimensionsForEmpty(b bool) { c[keyAllDimensionsForEmpty] = b }

func (c Context) ForwardURL() string     { return c.getString(keyForwardURL, "") }
func (c Context) SetForwardURL(u string) { c[keyForwardURL] = u }

// GroupByMergeParallelism > 1 triggers the partitioned group-by rewrite
// (§4.5 "Partitioned group-by").
func (c Context) GroupByMergeParallelism() int      { return c.getInt(keyGroupByMergeParallelism, 1) }
func (c Context) SetGroupByMergeParallelism(n int)  { c[keyGroupByMergeParallelism] = n }
func (c Context) GroupByConvertTimeseries() bool     { return c.getBool(keyGroupByConvertTimeseries, false) }
func (c Context) SetGroupByConvertTimeseries(b bool) { c[keyGroupByConvertTimeseries] = b }
func (c Context) GroupByLimitPushdown() bool         { return c.getBool(keyGroupByLimitPushdown, false) }
func (c Context) SetGroupByLimitPushdown(b bool)     { c[keyGroupByLimitPushdown] = b }

// GroupByMaxRowsInMemory bounds the distinct-group count the groupBy
// merge stage's IncrementalIndex will hold before reporting
// qerrors.CapacityExceeded; 0 disables the check (§4.3 "Capacity
// accounting").
func (c Context) GroupByMaxRowsInMemory() int64     { return c.getInt64(keyGroupByMaxRowsInMemory, 0) }
func (c Context) SetGroupByMaxRowsInMemory(n int64) { c[keyGroupByMaxRowsInMemory] = n }

// GroupByMaxBytesInMemory bounds the merge stage's estimated byte
// occupancy; 0 disables the check.
func (c Context) GroupByMaxBytesInMemory() int64     { return c.getInt64(keyGroupByMaxBytesInMemory, 0) }
func (c Context) SetGroupByMaxBytesInMemory(n int64) { c[keyGroupByMaxBytesInMemory] = n }

// MajorTypes is an opaque per-column type-hint map (e.g. overriding
// inferred output schema types for select/scan queries).
func (c Context) MajorTypes() map[string]string {
	v, ok := c[keyMajorTypes]
	if !ok {
		return nil
	}
	m, ok := v.(map[string]string)
	if !ok {
		return nil
	}
	return m
}
func (c Context) SetMajorTypes(m map[string]string) { c[keyMajorTypes] = m }

// Parallelism and Queue are shared by union-all/join (§6 "parallelism",
// "queue"); kept here rather than duplicated per query kind since both
// read the same context keys regardless of queryType.
func (c Context) Parallelism() int     { return c.getInt("parallelism", 4) }
func (c Context) SetParallelism(n int) { c["parallelism"] = n }
func (c Context) Queue() int           { return c.getInt("queue", 0) }
func (c Context) SetQueue(n int)       { c["queue"] = n }
