package localmr

import (
	"bytes"
	"fmt"
	"io"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dermesser/localmr/sortutil"
	"github.com/dermesser/localmr/writelog"
)

// memSinkGenerator is an in-memory SinkGenerator used by tests that need to
// inspect what was written without touching the filesystem. Clones share the
// backing map so a test can read back everything every worker wrote.
type memSinkGenerator struct {
	mu   *sync.Mutex
	data map[string]*bytes.Buffer
}

func newMemSinkGenerator() *memSinkGenerator {
	return &memSinkGenerator{mu: &sync.Mutex{}, data: map[string]*bytes.Buffer{}}
}

func (g *memSinkGenerator) NewOutput(name string) (io.WriteCloser, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	buf := &bytes.Buffer{}
	g.data[name] = buf
	return nopWriteCloser{buf}, nil
}

func (g *memSinkGenerator) CloneSink() SinkGenerator { return g }

func (g *memSinkGenerator) contents(name string) ([]byte, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	b, ok := g.data[name]
	if !ok {
		return nil, false
	}
	return b.Bytes(), true
}

func (g *memSinkGenerator) names() []string {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := make([]string, 0, len(g.data))
	for name := range g.data {
		out = append(out, name)
	}
	return out
}

type nopWriteCloser struct{ io.Writer }

func (nopWriteCloser) Close() error { return nil }

// readIntermediateRecords reads back an alternating key/value WriteLog
// stream as Records, in file order.
func readIntermediateRecords(t *testing.T, raw []byte) []Record {
	t.Helper()
	r := writelog.NewReader(bytes.NewReader(raw))
	var out []Record
	for {
		key, ok := r.Next()
		if !ok {
			break
		}
		value, ok := r.Next()
		require.True(t, ok, "key entry %q had no matching value entry", key)
		out = append(out, Record{Key: string(key), Value: string(value)})
	}
	return out
}

func wordCountBundle() FuncMapReducer {
	return FuncMapReducer{
		MapFunc: func(e *MEmitter, r Record) {
			for _, w := range strings.Fields(r.Value) {
				e.Emit(w, "1")
			}
		},
		ReduceFunc: func(e *REmitter, mr MultiRecord) {
			e.Emit(fmt.Sprintf("%s: %d", mr.Key(), mr.Len()))
		},
	}
}

func TestMapPartitionSortShardAndCompleteness(t *testing.T) {
	input := InputCache{records: []Record{
		{Key: "1", Value: "abc def"},
		{Key: "2", Value: "xy yz za"},
		{Key: "3", Value: "def abc abc"},
	}}

	const reducers = 3
	bundle := wordCountBundle()
	params := NewParameters(WithReducers(reducers))
	params.ShardID = 0

	sink := newMemSinkGenerator()
	mp := NewMapPartition(params, input, bundle, bundle, sink, "")
	mp.Run()

	gotByShard := make(map[int][]Record)
	var all []Record
	for r := 0; r < reducers; r++ {
		name := mapOutputName(params.MapOutputLocation, "", 0, r)
		raw, ok := sink.contents(name)
		require.True(t, ok, "shard %d output missing", r)
		records := readIntermediateRecords(t, raw)
		gotByShard[r] = records
		all = append(all, records...)

		// Invariant 1: successive keys are non-decreasing under
		// case-insensitive dictionary order.
		for i := 1; i < len(records); i++ {
			assert.LessOrEqual(t, sortutil.DictCompare(records[i-1].Key, records[i].Key), 0)
		}

		// Invariant 2: every key in this shard actually routes here.
		for _, rec := range records {
			assert.Equal(t, r, DefaultSharder(reducers, rec.Key), "key %q found in shard %d", rec.Key, r)
		}
	}

	// Invariant 3: completeness — the multiset of emitted pairs equals the
	// multiset across all intermediate files. "abc" appears 3 times, "def"
	// twice, the rest once each.
	counts := map[string]int{}
	for _, r := range all {
		counts[r.Key]++
	}
	assert.Equal(t, 3, counts["abc"])
	assert.Equal(t, 2, counts["def"])
	assert.Equal(t, 1, counts["xy"])
	assert.Equal(t, 1, counts["yz"])
	assert.Equal(t, 1, counts["za"])
}

func TestMapPartitionEmptyInputWritesEmptyShards(t *testing.T) {
	bundle := wordCountBundle()
	params := NewParameters(WithReducers(2))

	sink := newMemSinkGenerator()
	mp := NewMapPartition(params, InputCache{}, bundle, bundle, sink, "")
	mp.Run()

	assert.Len(t, sink.names(), 2)
	for r := 0; r < 2; r++ {
		raw, ok := sink.contents(mapOutputName(params.MapOutputLocation, "", 0, r))
		require.True(t, ok)
		assert.Empty(t, raw)
	}
}

func TestMapPartitionRunIsolationNamesFiles(t *testing.T) {
	bundle := wordCountBundle()
	params := NewParameters(WithReducers(1))

	sink := newMemSinkGenerator()
	mp := NewMapPartition(params, InputCache{records: []Record{{Key: "1", Value: "a"}}}, bundle, bundle, sink, "tok")
	mp.Run()

	_, ok := sink.contents(mapOutputName(params.MapOutputLocation, "tok", 0, 0))
	assert.True(t, ok)
}
