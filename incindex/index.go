package incindex

import (
	"sort"
	"sync"
	"sync/atomic"

	"github.com/segmentdb/qengine/granularity"
	"github.com/segmentdb/qengine/qerrors"
)

// InputRow is one arriving record, pre-parsing-layer: a timestamp,
// per-dimension string values (a dimension may be multi-valued, hence
// []string), and per-metric raw values keyed by field name (§3, §4.3
// step 1 "parse row").
type InputRow struct {
	TimestampMillis int64
	Dims            map[string][]string
	Metrics         map[string]interface{}
}

// factRow is the heap-resident aggregate state for one TimeAndDims key:
// one Aggregator per configured Factory, in the same order, guarded by
// its own mutex so concurrent Adds to the same key serialize without
// touching the facts map's own synchronization (§4.3 step 5, §5 "never
// a global map lock").
type factRow struct {
	mu    sync.Mutex
	aggs  []Aggregator
}

func newFactRow(factories []Factory) *factRow {
	aggs := make([]Aggregator, len(factories))
	for i, f := range factories {
		aggs[i] = f.New()
	}
	return &factRow{aggs: aggs}
}

func (r *factRow) aggregate(factories []Factory, row InputRow) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, f := range factories {
		r.aggs[i].Aggregate(row.Metrics[f.FieldName()])
	}
}

// IncrementalIndex is C3: the in-memory, lock-minimal index that
// aggregates arriving rows by (bucketed timestamp, dimension tuple).
// Dictionaries are append-only and sharded one-per-dimension; the facts
// table is a concurrent map keyed by TimeAndDims.mapKey(), so inserts
// touching different keys never contend and inserts to the same key
// serialize only on that key's factRow mutex (§4.3, §5).
type IncrementalIndex struct {
	granularity  granularity.Granularity
	segmentStart int64
	dimNames     []string
	factories    []Factory
	rollup       bool

	dicts map[string]*Dictionary // one per dimension, built lazily under dictsMu
	dictsMu sync.Mutex

	facts sync.Map // TimeAndDims.mapKey() string -> *factRow
	keys  sync.Map // mapKey string -> TimeAndDims, kept alongside facts for iteration

	rowCount  int64 // atomic
	maxRows   int64
	maxBytes  int64
	estimator *CapacityEstimator

	seqCounter uint64 // atomic, non-rollup tiebreaker source

	sealed int32 // atomic bool
}

// NewIncrementalIndex constructs an open-for-writes index. maxRows and
// maxBytes are the two capacity knobs of §4.3's "Capacity accounting";
// either as 0 disables that particular check.
func NewIncrementalIndex(g granularity.Granularity, segmentStart int64, dimNames []string, factories []Factory, rollup bool, maxRows, maxBytes int64) *IncrementalIndex {
	return &IncrementalIndex{
		granularity:  g,
		segmentStart: segmentStart,
		dimNames:     append([]string(nil), dimNames...),
		factories:    factories,
		rollup:       rollup,
		dicts:        make(map[string]*Dictionary, len(dimNames)),
		maxRows:      maxRows,
		maxBytes:     maxBytes,
		estimator:    NewCapacityEstimator(factories, len(dimNames)),
	}
}

func (idx *IncrementalIndex) dictFor(dim string) *Dictionary {
	idx.dictsMu.Lock()
	defer idx.dictsMu.Unlock()
	d, ok := idx.dicts[dim]
	if !ok {
		d = NewDictionary()
		idx.dicts[dim] = d
	}
	return d
}

// Dictionary exposes the per-dimension dictionary for read paths (column
// construction at seal time, §4.3 "Iteration contract").
func (idx *IncrementalIndex) Dictionary(dim string) *Dictionary {
	return idx.dictFor(dim)
}

// RowCount returns the current number of distinct fact-table slots.
func (idx *IncrementalIndex) RowCount() int64 { return atomic.LoadInt64(&idx.rowCount) }

// Add ingests one row, implementing §4.3 step-by-step:
//  1. truncate the timestamp to this index's granularity
//  2. resolve each dimension value to a dictionary id (allocating new
//     ids under each dimension's own narrow lock)
//  3. build the TimeAndDims key (rollup: from (t, dimIDs) alone;
//     non-rollup: additionally tagged with a fresh sequence number so no
//     two rows ever collapse)
//  4. if a slot for this key already exists, aggregate into it directly
//  5. otherwise check capacity, then race to install a fresh slot; the
//     loser of that race aggregates into the winner's slot instead and
//     its own freshly built factRow is simply dropped for GC (§4.3 step
//     5's "free the loser")
func (idx *IncrementalIndex) Add(row InputRow) error {
	if atomic.LoadInt32(&idx.sealed) != 0 {
		return qerrors.E(qerrors.Internal, "incindex: Add called after Seal")
	}

	t := idx.granularity.Truncate(row.TimestampMillis, idx.segmentStart)

	dimIDs := make([][]int32, len(idx.dimNames))
	for i, dim := range idx.dimNames {
		values := row.Dims[dim]
		if len(values) == 0 {
			continue
		}
		d := idx.dictFor(dim)
		ids := make([]int32, len(values))
		for j, v := range values {
			id, added := d.IDOrAdd(v)
			ids[j] = id
			if added {
				idx.estimator.AddDictionaryEntry()
			}
		}
		sort.Slice(ids, func(a, b int) bool { return ids[a] < ids[b] })
		dimIDs[i] = ids
	}

	key := TimeAndDims{BucketedTimestamp: t, DimIDs: dimIDs}
	if !idx.rollup {
		key.seq = atomic.AddUint64(&idx.seqCounter, 1)
	}
	mk := key.mapKey()

	if v, ok := idx.facts.Load(mk); ok {
		v.(*factRow).aggregate(idx.factories, row)
		return nil
	}

	if err := idx.checkCapacity(); err != nil {
		return err
	}

	fresh := newFactRow(idx.factories)
	actual, loaded := idx.facts.LoadOrStore(mk, fresh)
	if loaded {
		// Lost the race: someone else installed a slot for mk between our
		// Load miss and our LoadOrStore. Aggregate into their slot; fresh
		// is simply unreferenced from here on and reclaimed by GC.
		actual.(*factRow).aggregate(idx.factories, row)
		return nil
	}
	idx.keys.Store(mk, key)
	fresh.aggregate(idx.factories, row)
	atomic.AddInt64(&idx.rowCount, 1)
	idx.estimator.AddRow()
	return nil
}

func (idx *IncrementalIndex) checkCapacity() error {
	if idx.maxRows > 0 && atomic.LoadInt64(&idx.rowCount) >= idx.maxRows {
		return qerrors.E(qerrors.CapacityExceeded, "incindex: maxRowsInMemory reached")
	}
	if idx.maxBytes > 0 && idx.estimator.EstimatedBytes() >= idx.maxBytes {
		return qerrors.E(qerrors.CapacityExceeded, "incindex: maxOccupationInMemory reached")
	}
	return nil
}

// Seal freezes the index against further Add calls; sealed state is
// required before Iterate, so a concurrent reader never observes a
// torn fact table (§4.3 "Iteration contract").
func (idx *IncrementalIndex) Seal() { atomic.StoreInt32(&idx.sealed, 1) }

func (idx *IncrementalIndex) isSealed() bool { return atomic.LoadInt32(&idx.sealed) != 0 }
