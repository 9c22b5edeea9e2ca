package localmr

import (
	"github.com/pkg/errors"

	"github.com/dermesser/localmr/sortutil"
	"github.com/dermesser/localmr/writelog"
)

// sortedInput is the map phase's "sorted input map": an ordered container
// from key to value, ordered by the case-insensitive dictionary
// comparator. Per spec.md section 9's design notes, a sort-after-insert
// vector is an accepted substitute for a balanced tree provided the same
// contract holds — in particular that two keys which compare *equal* under
// the comparator (not just byte-identical) collapse to one slot, last
// write wins. See DESIGN.md for why this is implemented on a sorted slice
// rather than an imported ordered-map/tree library.
type sortedInput struct {
	keys   []string
	values []string
}

// insert replaces the value for key if an equal (under dict-compare) key is
// already present, else inserts key in sorted position.
func (s *sortedInput) insert(key, value string) {
	i := s.search(key)
	if i < len(s.keys) && sortutil.DictCompare(s.keys[i], key) == 0 {
		s.values[i] = value
		return
	}
	s.keys = append(s.keys, "")
	copy(s.keys[i+1:], s.keys[i:])
	s.keys[i] = key

	s.values = append(s.values, "")
	copy(s.values[i+1:], s.values[i:])
	s.values[i] = value
}

// search returns the index of the first key >= the given key under
// dict-compare.
func (s *sortedInput) search(key string) int {
	lo, hi := 0, len(s.keys)
	for lo < hi {
		mid := (lo + hi) / 2
		if sortutil.DictCompare(s.keys[mid], key) < 0 {
			lo = mid + 1
		} else {
			hi = mid
		}
	}
	return lo
}

func (s *sortedInput) len() int { return len(s.keys) }

// takeFront removes and returns up to n leading (key, value) pairs in
// sorted order.
func (s *sortedInput) takeFront(n int) []Record {
	if n > len(s.keys) {
		n = len(s.keys)
	}
	out := make([]Record, n)
	for i := 0; i < n; i++ {
		out[i] = Record{Key: s.keys[i], Value: s.values[i]}
	}
	s.keys = s.keys[n:]
	s.values = s.values[n:]
	return out
}

// sortedOutput is the map phase's "sorted output map": an ordered
// multi-map from (case-insensitively) distinct key to the sequence of
// values emitted under it, in emission order.
type sortedOutput struct {
	keys   []string
	values [][]string
}

func (s *sortedOutput) insert(key, value string) {
	i := s.search(key)
	if i < len(s.keys) && sortutil.DictCompare(s.keys[i], key) == 0 {
		s.values[i] = append(s.values[i], value)
		return
	}
	s.keys = append(s.keys, "")
	copy(s.keys[i+1:], s.keys[i:])
	s.keys[i] = key

	s.values = append(s.values, nil)
	copy(s.values[i+1:], s.values[i:])
	s.values[i] = []string{value}
}

func (s *sortedOutput) search(key string) int {
	lo, hi := 0, len(s.keys)
	for lo < hi {
		mid := (lo + hi) / 2
		if sortutil.DictCompare(s.keys[mid], key) < 0 {
			lo = mid + 1
		} else {
			hi = mid
		}
	}
	return lo
}

// MapPartition is the one-shot engine that turns one input chunk into R
// sorted, sharded intermediate files. Create one with NewMapPartition and
// call Run exactly once.
//
// Algorithm (spec.md section 4.2): sort the chunk into an ordered map,
// drain it in key order invoking the mapper, collect emissions into an
// ordered output multi-map, then shard and write each (key, value) pair as
// two WriteLog entries to the sink its key hashes to.
type MapPartition struct {
	mapper  Mapper
	sharder Sharder
	params  MRParameters
	sink    SinkGenerator
	input   InputCache
	runTok  string
}

// NewMapPartition builds a MapPartition for one input chunk. params.ShardID
// must already be set to this chunk's index; runToken is the run-isolation
// token (empty string if WithRunIsolation is off).
func NewMapPartition(params MRParameters, input InputCache, mapper Mapper, sharder Sharder, sink SinkGenerator, runToken string) *MapPartition {
	return &MapPartition{
		mapper:  mapper,
		sharder: sharder,
		params:  params,
		sink:    sink,
		input:   input,
		runTok:  runToken,
	}
}

// Run executes the partition: sort, map, write. It panics on any
// intermediate file open or write error, per spec.md section 7 (fatal
// write-side errors abort the job rather than risk silent data loss).
func (mp *MapPartition) Run() {
	sorted := mp.sortInput()
	out := mp.doMap(sorted)
	mp.writeOutput(out)
}

func (mp *MapPartition) sortInput() *sortedInput {
	s := &sortedInput{}
	for _, r := range mp.input.Records() {
		s.insert(r.Key, r.Value)
	}
	return s
}

// doMap drains the sorted input in key_buffer_size batches, invoking the
// mapper for each key and collecting its emissions into the sorted output
// multi-map. It terminates when the sorted input is empty (spec.md section
// 9, open question 3: the reference's under-fill termination check
// misbehaves with duplicate-key input, so this drains to exhaustion
// instead).
func (mp *MapPartition) doMap(sorted *sortedInput) *sortedOutput {
	out := &sortedOutput{}
	batchSize := mp.params.KeyBufferSize
	if batchSize <= 0 {
		batchSize = 1
	}

	var emitter MEmitter
	for sorted.len() > 0 {
		batch := sorted.takeFront(batchSize)
		for _, r := range batch {
			mp.mapper.Map(&emitter, r)
			for _, emitted := range emitter.drain() {
				out.insert(emitted.Key, emitted.Value)
			}
		}
	}
	return out
}

// writeOutput opens R intermediate sinks and writes every (key, values)
// pair of the sorted output to the sink its key hashes to, key then each
// value as consecutive WriteLog entries.
func (mp *MapPartition) writeOutput(out *sortedOutput) {
	outputs := make([]*writelog.Writer, mp.params.Reducers)
	closers := make([]func() error, mp.params.Reducers)

	for r := 0; r < mp.params.Reducers; r++ {
		name := mapOutputName(mp.params.MapOutputLocation, mp.runTok, mp.params.ShardID, r)
		w, err := mp.sink.NewOutput(name)
		if err != nil {
			panic(errors.Wrapf(err, "localmr: opening intermediate sink %q", name))
		}
		outputs[r] = writelog.NewWriter(w)
		closers[r] = w.Close
	}
	defer func() {
		for _, c := range closers {
			if c != nil {
				_ = c()
			}
		}
	}()

	for i, key := range out.keys {
		shard := mp.sharder.Shard(mp.params.Reducers, key)
		w := outputs[shard]
		for _, v := range out.values[i] {
			if _, err := w.Write([]byte(key)); err != nil {
				panic(errors.Wrap(err, "localmr: writing intermediate key"))
			}
			if _, err := w.Write([]byte(v)); err != nil {
				panic(errors.Wrap(err, "localmr: writing intermediate value"))
			}
		}
	}
}
