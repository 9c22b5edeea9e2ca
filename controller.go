package localmr

import (
	"os"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/dermesser/localmr/parallel"
	"github.com/dermesser/localmr/writelog"
)

// InputSource is the external input contract: a finite forward pull source
// of Records, consumed exactly once, sequentially, from the controller's
// single input-reading goroutine (never from a map worker). SliceInput and
// ChanInput adapt the two most common shapes
// into this form.
type InputSource func() (Record, bool)

// SliceInput returns an InputSource that yields the elements of rs in order.
func SliceInput(rs []Record) InputSource {
	i := 0
	return func() (Record, bool) {
		if i >= len(rs) {
			return Record{}, false
		}
		r := rs[i]
		i++
		return r, true
	}
}

// ChanInput returns an InputSource that yields values from ch until it is
// closed.
func ChanInput(ch <-chan Record) InputSource {
	return func() (Record, bool) {
		r, ok := <-ch
		return r, ok
	}
}

// Controller drives a mapreduce run: it reads input in bounded chunks,
// spawns at most params.Mappers parallel map partitions, waits for the map
// phase to complete, spawns params.Reducers parallel reduce partitions, and
// cleans up temporary files. See spec.md section 4.1.
type Controller struct {
	mr     MapReducerBundle
	params MRParameters
	sink   SinkGenerator
	logger *zap.Logger
}

// MapReducerBundle bundles the three user-supplied capabilities a run
// needs. Use BundleOf to build one from a single type implementing all
// three (e.g. FuncMapReducer), or assemble it field by field.
type MapReducerBundle struct {
	Mapper  Mapper
	Reducer Reducer
	Sharder Sharder
}

// bundle is satisfied by any type implementing Mapper, Reducer and Sharder
// at once, such as FuncMapReducer.
type bundle interface {
	Mapper
	Reducer
	Sharder
}

// BundleOf builds a MapReducerBundle from a single value implementing all
// three capabilities.
func BundleOf(mr bundle) MapReducerBundle {
	return MapReducerBundle{Mapper: mr, Reducer: mr, Sharder: mr}
}

// NewController builds a Controller. logger may be nil, in which case
// logging is suppressed.
func NewController(mr MapReducerBundle, params MRParameters, sink SinkGenerator, logger *zap.Logger) *Controller {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Controller{mr: mr, params: params, sink: sink, logger: logger}
}

// Run is the package-level convenience entrypoint: build a Controller and
// run it once. See the package doc for a complete example.
func Run(mr MapReducerBundle, params MRParameters, input InputSource, sink SinkGenerator, logger *zap.Logger) error {
	return NewController(mr, params, sink, logger).Run(input)
}

// Run executes the full map phase, then the full reduce phase, then
// cleanup. It returns ErrEmptyInput if input yielded no records at all.
// Any other failure is a panic propagating from a worker (spec.md section
// 7: write/open errors and user-callable panics are fatal and abort the
// job; Run does not recover them).
func (c *Controller) Run(input InputSource) error {
	var runToken string
	if c.params.RunIsolation {
		runToken = uuid.NewString()
	}

	chunks := c.runMap(input, runToken)
	if chunks == 0 {
		c.logger.Info("localmr: empty input, nothing to run")
		return ErrEmptyInput
	}

	c.logger.Info("localmr: map phase complete", zap.Int("chunks", chunks))

	c.runReduce(chunks, runToken)
	c.logger.Info("localmr: reduce phase complete", zap.Int("reducers", c.params.Reducers))

	if !c.params.KeepTempFiles {
		c.cleanup(chunks, runToken)
	}
	return nil
}

// mapChunk pairs a map chunk's input with its ascending chunk index, so the
// chunk's position in the read order survives being handed to a bounded
// worker pool out of order.
type mapChunk struct {
	idx   int
	cache InputCache
}

// runMap reads input in bounded chunks via the generate callback it hands
// to parallel.MapVoid, which runs on the one generator goroutine MapVoid
// starts and is the only thing that ever touches the external input
// iterator — and runs at most
// params.Mappers concurrent map partitions over them (spec.md section 4.1).
// It returns the number of chunks it read (the authoritative map chunk
// count N).
func (c *Controller) runMap(input InputSource, runToken string) int {
	mappers := c.params.Mappers
	if mappers < 1 {
		mappers = 1
	}

	chunkCount := 0
	generate := func(source chan<- mapChunk) {
		idx := 0
		for {
			cache := fillInputCache(input, c.params.MapPartitionSize)
			if cache.Len() == 0 {
				break
			}
			source <- mapChunk{idx: idx, cache: cache}
			idx++
		}
		chunkCount = idx
	}

	parallel.MapVoid(generate, func(chunk mapChunk) {
		params := c.params
		params.ShardID = chunk.idx
		mapper := c.mr.Mapper.CloneMapper()
		sharder := c.mr.Sharder.CloneSharder()
		sink := c.sink.CloneSink()

		mp := NewMapPartition(params, chunk.cache, mapper, sharder, sink, runToken)
		mp.Run()
	}, parallel.WithWorkers(mappers))

	return chunkCount
}

// runReduce runs exactly params.Reducers reduce partitions in parallel, one
// per shard, via parallel.FinishVoid (one worker per function, no admission
// queueing — the reduce phase always wants every shard running at once).
// Each opens the N intermediate files routed to its shard, merges them,
// groups by key, drives the reducer, and writes the final shard file.
func (c *Controller) runReduce(chunks int, runToken string) {
	fns := make([]func(), c.params.Reducers)
	for shard := 0; shard < c.params.Reducers; shard++ {
		params := c.params
		params.ShardID = shard
		reducer := c.mr.Reducer.CloneReducer()
		sink := c.sink.CloneSink()

		fns[shard] = func() {
			c.reduceOne(reducer, params, sink, chunks, runToken)
		}
	}

	parallel.FinishVoid(fns...)
}

func (c *Controller) reduceOne(reducer Reducer, params MRParameters, sink SinkGenerator, chunks int, runToken string) {
	readers := make([]*writelog.Reader, 0, chunks)
	closers := make([]func() error, 0, chunks)
	defer func() {
		for _, cl := range closers {
			_ = cl()
		}
	}()

	for i := 0; i < chunks; i++ {
		name := mapOutputName(params.MapOutputLocation, runToken, i, params.ShardID)
		f, err := os.Open(name)
		if err != nil {
			panic(errors.Wrapf(err, "localmr: opening intermediate input %q", name))
		}
		readers = append(readers, writelog.NewReader(f))
		closers = append(closers, f.Close)
	}

	out, err := sink.NewOutput(reduceOutputName(params.ReduceOutputPrefix, params.ShardID))
	if err != nil {
		panic(errors.Wrapf(err, "localmr: opening output shard %d", params.ShardID))
	}
	defer out.Close()

	rp := NewReducePartition(reducer, params, readers, c.logger)
	rp.Run(out)
}

// cleanup removes every intermediate file under the configured prefix,
// best effort, fanned out with bounded concurrency via errgroup (spec.md
// section 4.1: "Failures to unlink are ignored").
func (c *Controller) cleanup(chunks int, runToken string) {
	var g errgroup.Group
	g.SetLimit(8)

	for i := 0; i < chunks; i++ {
		for r := 0; r < c.params.Reducers; r++ {
			name := mapOutputName(c.params.MapOutputLocation, runToken, i, r)
			g.Go(func() error {
				if err := os.Remove(name); err != nil && !os.IsNotExist(err) {
					c.logger.Warn("localmr: cleanup unlink failed",
						zap.String("file", name), zap.Error(err))
				}
				return nil
			})
		}
	}
	_ = g.Wait()
}
