package localmr

import "hash/adler32"

// Mapper transforms one input Record into zero or more emitted Records via
// the supplied MEmitter. CloneMapper returns an independent copy handed to
// one map worker goroutine; stateless implementations may return themselves.
type Mapper interface {
	Map(e *MEmitter, r Record)
	CloneMapper() Mapper
}

// Reducer consumes one MultiRecord (a key and its grouped values) and
// writes zero or more result strings via the supplied REmitter. CloneReducer
// returns an independent copy handed to one reduce worker goroutine.
type Reducer interface {
	Reduce(e *REmitter, mr MultiRecord)
	CloneReducer() Reducer
}

// Sharder assigns a key to one of R reduce shards. It must be a pure
// function of (reducers, key): the same arguments always yield the same
// shard, so that a map worker and every reduce worker agree on routing
// without communicating. CloneSharder returns an independent copy handed to
// one map worker goroutine.
type Sharder interface {
	Shard(reducers int, key string) int
	CloneSharder() Sharder
}

// FuncMapReducer adapts three plain functions into the Mapper, Reducer and
// Sharder capability set, mirroring the reference implementation's
// ClosureMapReducer: most jobs don't need a struct method set, just three
// functions closing over shared read-only state. FuncMapReducer holds only
// function values, so it is safe to share across workers without copying;
// its Clone* methods all return the receiver unchanged.
type FuncMapReducer struct {
	MapFunc    func(e *MEmitter, r Record)
	ReduceFunc func(e *REmitter, mr MultiRecord)
	// ShardFunc is optional; DefaultSharder is used when nil.
	ShardFunc func(reducers int, key string) int
}

// Map implements Mapper.
func (f FuncMapReducer) Map(e *MEmitter, r Record) {
	f.MapFunc(e, r)
}

// CloneMapper implements Mapper.
func (f FuncMapReducer) CloneMapper() Mapper { return f }

// Reduce implements Reducer.
func (f FuncMapReducer) Reduce(e *REmitter, mr MultiRecord) {
	f.ReduceFunc(e, mr)
}

// CloneReducer implements Reducer.
func (f FuncMapReducer) CloneReducer() Reducer { return f }

// Shard implements Sharder. If ShardFunc is nil, DefaultSharder is used.
func (f FuncMapReducer) Shard(reducers int, key string) int {
	if f.ShardFunc != nil {
		return f.ShardFunc(reducers, key)
	}
	return DefaultSharder(reducers, key)
}

// CloneSharder implements Sharder.
func (f FuncMapReducer) CloneSharder() Sharder { return f }

// DefaultSharder routes a key to one of reducers shards by taking its
// Adler-32 checksum modulo reducers, the same hash-mod partitioning scheme
// dmrgo's partitionEmitter uses to fan out mapper output across partition
// files. With reducers <= 1 every key routes to shard 0.
func DefaultSharder(reducers int, key string) int {
	if reducers <= 1 {
		return 0
	}
	return int(adler32.Checksum([]byte(key)) % uint32(reducers))
}
