package localmr

import (
	"io"
	"strings"

	"go.uber.org/zap"

	"github.com/dermesser/localmr/merge"
	"github.com/dermesser/localmr/sortutil"
	"github.com/dermesser/localmr/writelog"
)

// recordSource adapts a writelog.Reader, whose entries alternate key, value,
// key, value, into a merge.Source[Record]: each call reads one key entry and
// one value entry and emits the Record they form. A reader yielding a
// partial record (a key with no following value) is treated as end of
// stream for that input, per spec.md section 4.3's failure semantics.
func recordSource(r *writelog.Reader) merge.Source[Record] {
	return func() (Record, bool) {
		key, ok := r.Next()
		if !ok {
			return Record{}, false
		}
		value, ok := r.Next()
		if !ok {
			return Record{}, false
		}
		return Record{Key: string(key), Value: string(value)}, true
	}
}

// recordComparator is the merge comparator used for reduce-side merging:
// case-insensitive dictionary order over record keys.
func recordComparator(a, b Record) bool {
	return sortutil.DictCompare(a.Key, b.Key) <= 0
}

// groupByKey adapts a Record source sorted by recordComparator into a
// MultiRecord source, grouping consecutive records with equal
// (optionally-lowered) keys. Implements spec.md section 4.5.
type groupByKey struct {
	next        func() (Record, bool)
	peeked      Record
	hasPeek     bool
	prealloc    int
	insensitive bool
}

func newGroupByKey(src func() (Record, bool), prealloc int, insensitive bool) *groupByKey {
	return &groupByKey{next: src, prealloc: prealloc, insensitive: insensitive}
}

func (g *groupByKey) groupKey(key string) string {
	if g.insensitive {
		return strings.ToLower(key)
	}
	return key
}

// Next returns the next MultiRecord, or (zero, false) once the underlying
// source is exhausted.
func (g *groupByKey) Next() (MultiRecord, bool) {
	var first Record
	if g.hasPeek {
		first = g.peeked
		g.hasPeek = false
	} else {
		r, ok := g.next()
		if !ok {
			return MultiRecord{}, false
		}
		first = r
	}

	gk := g.groupKey(first.Key)
	values := make([]string, 0, g.prealloc)
	values = append(values, first.Value)

	for {
		r, ok := g.next()
		if !ok {
			break
		}
		if g.groupKey(r.Key) != gk {
			g.peeked = r
			g.hasPeek = true
			break
		}
		values = append(values, r.Value)
	}

	return NewMultiRecord(gk, values), true
}

// ReducePartition is the engine that produces one final output shard: merge
// this reducer's intermediate inputs, group by key, invoke the reducer, and
// write its emissions to the output sink.
type ReducePartition struct {
	reducer Reducer
	params  MRParameters
	srcs    []*writelog.Reader
	logger  *zap.Logger
}

// NewReducePartition builds a ReducePartition. params.ShardID must already
// be set to this reducer's shard index.
func NewReducePartition(reducer Reducer, params MRParameters, srcs []*writelog.Reader, logger *zap.Logger) *ReducePartition {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReducePartition{reducer: reducer, params: params, srcs: srcs, logger: logger}
}

// Run merges all inputs, groups by key, drives the reducer, and writes
// every reducer emission to out, one write call each. Write errors are
// logged and processing continues, per spec.md section 7.
func (rp *ReducePartition) Run(out io.Writer) {
	sources := make([]merge.Source[Record], len(rp.srcs))
	for i, r := range rp.srcs {
		sources[i] = recordSource(r)
	}
	merged := merge.Build(sources, recordComparator)
	groups := newGroupByKey(merged.Next, rp.params.ReduceGroupPrealloc, rp.params.ReduceGroupInsensitive)

	var emitter REmitter
	for {
		mr, ok := groups.Next()
		if !ok {
			break
		}
		rp.reducer.Reduce(&emitter, mr)
		for _, v := range emitter.drain() {
			if _, err := out.Write([]byte(v)); err != nil {
				rp.logger.Warn("reduce output write failed",
					zap.Int("shard", rp.params.ShardID),
					zap.Error(err))
			}
		}
	}
}
