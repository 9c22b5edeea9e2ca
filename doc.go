/*
Package localmr is a single-machine MapReduce execution engine: it
orchestrates a user-supplied pair of map and reduce functions over a record
stream, producing per-shard sorted output files.

It partitions input into bounded in-memory chunks, runs parallel map
workers that sort and shard their chunk's output into intermediate
length-prefixed files, then runs parallel reduce workers that merge their
assigned intermediate shards, group by key, and drive the reduce function.

The engine is embedded in a host process rather than run as a cluster
service: there is no distributed execution, no fault tolerance of worker
crashes (a worker failure aborts the job), and no restartable checkpointing.

A minimal word-count job:

	mr := localmr.FuncMapReducer{
		MapFunc: func(e *localmr.MEmitter, r localmr.Record) {
			for _, word := range strings.Fields(r.Value) {
				e.Emit(word, "1")
			}
		},
		ReduceFunc: func(e *localmr.REmitter, mr localmr.MultiRecord) {
			e.Emit(fmt.Sprintf("%s: %d", mr.Key(), mr.Len()))
		},
	}

	err := localmr.Run(
		localmr.BundleOf(mr),
		localmr.NewParameters(),
		input,
		localmr.FileSinkGenerator{},
		logger,
	)

See cmd/wordcount for a runnable version of this example.
*/
package localmr
