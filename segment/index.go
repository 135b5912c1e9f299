package segment

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/file"
	"github.com/grailbio/base/recordio"

	"github.com/segmentdb/qengine/granularity"
)

// shardIndexMagic/shardIndexVersion guard against reading a shard index
// written by an incompatible build, mirrored from
// pamutil.ReadShardIndex's Magic/Version check.
const (
	shardIndexMagic   = "QSEG"
	shardIndexVersion = 1
)

// ShardIndex is the on-disk description of one persisted Segment: its
// identity, interval, metadata, and the column layout needed to
// reopen it (dimension names in dictionary order, metric names and
// their value types). The actual column bytes live in sibling files
// named by ColumnDataPath; ShardIndex itself is small enough to always
// be read in full before any column is touched, the same two-phase
// open pamreader.go uses (read *.index, then seek into field files).
type ShardIndex struct {
	Magic   string
	Version int

	ID       Identity
	Interval Interval
	Meta     struct {
		AggregatorNames  []string
		QueryGranularity granularity.Granularity
		Rollup           bool
	}
	Dimensions []string
	Metrics    []string
	NumRows    int
}

// ShardIndexPath returns the path of a segment's index file, mirroring
// pamutil.ShardIndexPath's naming scheme.
func ShardIndexPath(dir string, id Identity) string {
	return fmt.Sprintf("%s/%s.index", dir, id.String())
}

// ColumnDataPath returns the path of one column's data file within a
// segment's directory.
func ColumnDataPath(dir string, id Identity, column string) string {
	return fmt.Sprintf("%s/%s.%s.col", dir, id.String(), column)
}

// WriteShardIndex serializes idx into a single-block recordio file,
// zstd-compressed, clobbering any existing contents -- the same shape
// as pamutil.WriteShardIndex: the index is JSON-encoded into the one
// record, and "zstd" is the sole recordio transformer.
func WriteShardIndex(ctx context.Context, dir string, idx ShardIndex) (err error) {
	idx.Magic = shardIndexMagic
	idx.Version = shardIndexVersion
	data, e := json.Marshal(idx)
	if e != nil {
		return e
	}
	out, e := file.Create(ctx, ShardIndexPath(dir, idx.ID))
	if e != nil {
		return e
	}
	defer file.CloseAndReport(ctx, out, &err)
	rio := recordio.NewWriter(out.Writer(ctx), recordio.WriterOpts{
		Transformers: []string{"zstd"},
	})
	rio.Append(data)
	return rio.Finish()
}

// ReadShardIndex reads back a ShardIndex written by WriteShardIndex,
// mirroring pamutil.ReadShardIndex's scan-one-record-then-unmarshal
// shape.
func ReadShardIndex(ctx context.Context, dir string, id Identity) (idx ShardIndex, err error) {
	return ReadShardIndexFile(ctx, ShardIndexPath(dir, id))
}

// ReadShardIndexFile is ReadShardIndex addressed by a literal path
// rather than (dir, id): a broker enumerating a directory of shards it
// has not yet opened knows the path (from a directory listing) before
// it knows the Identity the path encodes, so it cannot build the
// ShardIndexPath(dir, id) the typed lookup requires.
func ReadShardIndexFile(ctx context.Context, path string) (idx ShardIndex, err error) {
	in, err := file.Open(ctx, path)
	if err != nil {
		return idx, errors.E(err, path)
	}
	defer file.CloseAndReport(ctx, in, &err)

	rio := recordio.NewScanner(in.Reader(ctx), recordio.ScannerOpts{})
	defer rio.Finish() // nolint: errcheck
	if !rio.Scan() {
		return idx, errors.E(rio.Err(), fmt.Sprintf("ReadShardIndex %v: failed to read record", path))
	}
	if err := json.Unmarshal(rio.Get().([]byte), &idx); err != nil {
		return idx, err
	}
	if idx.Magic != shardIndexMagic {
		return idx, fmt.Errorf("segment: bad shard index magic %q in %v", idx.Magic, path)
	}
	if idx.Version != shardIndexVersion {
		return idx, fmt.Errorf("segment: unsupported shard index version %d in %v", idx.Version, path)
	}
	return idx, rio.Err()
}
