package localmr

import (
	"bytes"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/dermesser/localmr/writelog"
)

func TestGroupByKeyCaseInsensitive(t *testing.T) {
	records := []Record{
		{Key: "aaa", Value: "def"},
		{Key: "abb", Value: "111"},
		{Key: "Abb", Value: "112"},
		{Key: "abbb", Value: "113"},
		{Key: "abc", Value: "xyz"},
		{Key: "xyz", Value: "___"},
		{Key: "xyz", Value: "__foo"},
		{Key: "xyz", Value: "---"},
	}

	g := newGroupByKey(sliceRecordSource(records), 2, true)
	var counts []int
	for {
		mr, ok := g.Next()
		if !ok {
			break
		}
		counts = append(counts, mr.Len())
	}
	assert.Equal(t, []int{1, 2, 1, 1, 3}, counts)
}

func TestGroupByKeyCaseSensitive(t *testing.T) {
	records := []Record{
		{Key: "aaa", Value: "def"},
		{Key: "abb", Value: "111"},
		{Key: "Abb", Value: "112"},
		{Key: "abbb", Value: "113"},
		{Key: "abc", Value: "xyz"},
		{Key: "xyz", Value: "___"},
		{Key: "xyz", Value: "__foo"},
		{Key: "xyz", Value: "---"},
	}

	g := newGroupByKey(sliceRecordSource(records), 2, false)
	var counts []int
	for {
		mr, ok := g.Next()
		if !ok {
			break
		}
		counts = append(counts, mr.Len())
	}
	assert.Equal(t, []int{1, 1, 1, 1, 1, 3}, counts)
}

func TestGroupByKeyPreservesValueOrder(t *testing.T) {
	records := []Record{
		{Key: "a", Value: "1"},
		{Key: "a", Value: "2"},
		{Key: "a", Value: "3"},
		{Key: "b", Value: "4"},
	}
	g := newGroupByKey(sliceRecordSource(records), 1, false)

	mr, ok := g.Next()
	require.True(t, ok)
	assert.Equal(t, []string{"1", "2", "3"}, mr.Values())

	mr, ok = g.Next()
	require.True(t, ok)
	assert.Equal(t, []string{"4"}, mr.Values())

	_, ok = g.Next()
	assert.False(t, ok)
}

func sliceRecordSource(records []Record) func() (Record, bool) {
	i := 0
	return func() (Record, bool) {
		if i >= len(records) {
			return Record{}, false
		}
		r := records[i]
		i++
		return r, true
	}
}

// writeIntermediate writes an alternating key/value WriteLog stream from
// pairs (k1, v1, k2, v2, ...) and returns a Reader over it.
func writeIntermediate(t *testing.T, pairs ...string) *writelog.Reader {
	t.Helper()
	require.Equal(t, 0, len(pairs)%2, "pairs must alternate key, value")

	var buf bytes.Buffer
	w := writelog.NewWriter(&buf)
	for _, p := range pairs {
		_, err := w.Write([]byte(p))
		require.NoError(t, err)
	}
	return writelog.NewReader(&buf)
}

func TestReducePartitionMergesAndCounts(t *testing.T) {
	// Two intermediate shards as a map phase would have produced them,
	// already sorted by dictionary order within each.
	shardA := writeIntermediate(t, "abc", "1", "abc", "1")
	shardB := writeIntermediate(t, "abc", "1", "def", "1")

	bundle := wordCountBundle()
	params := NewParameters()
	params.ShardID = 0

	rp := NewReducePartition(bundle, params, []*writelog.Reader{shardA, shardB}, nil)

	var out bytes.Buffer
	rp.Run(&out)

	assert.Equal(t, "abc: 3def: 1", out.String())
}

func TestReducePartitionWriteErrorLoggedNotFatal(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	logger := zap.New(core)

	shard := writeIntermediate(t, "a", "1", "b", "1")

	bundle := FuncMapReducer{
		ReduceFunc: func(e *REmitter, mr MultiRecord) { e.Emit(mr.Key()) },
	}
	params := NewParameters()

	rp := NewReducePartition(bundle, params, []*writelog.Reader{shard}, logger)

	failing := &alwaysFailWriter{err: fmt.Errorf("disk full")}
	assert.NotPanics(t, func() { rp.Run(failing) })

	require.Equal(t, 2, logs.Len())
	for _, entry := range logs.All() {
		assert.Equal(t, zap.WarnLevel, entry.Level)
	}
}

type alwaysFailWriter struct{ err error }

func (w *alwaysFailWriter) Write([]byte) (int, error) { return 0, w.err }
