package localmr

// MRParameters configures a mapreduce run. Construct one with NewParameters
// and adjust it with the With* options; MRParameters is a plain value and
// is cloned (via its own assignment) per worker, with ShardID overwritten to
// the worker's own chunk or reducer index.
type MRParameters struct {
	// KeyBufferSize is the batch size used when draining the sorted input
	// map during the map phase.
	KeyBufferSize int
	// Mappers is the maximum number of parallel map partitions.
	Mappers int
	// Reducers is the number of reduce shards, and the fan-out of map
	// output sharding.
	Reducers int
	// MapPartitionSize is the approximate byte budget per map chunk.
	MapPartitionSize int
	// ReduceGroupPrealloc is the initial capacity for value slices built
	// during the reduce phase's group-by-key step.
	ReduceGroupPrealloc int
	// ReduceGroupInsensitive makes group-by-key case-insensitive.
	ReduceGroupInsensitive bool
	// MapOutputLocation is the path prefix for intermediate files.
	MapOutputLocation string
	// ReduceOutputPrefix is the path prefix for final shard files.
	ReduceOutputPrefix string
	// KeepTempFiles retains intermediates after a successful run.
	KeepTempFiles bool
	// RunIsolation namespaces intermediate filenames with a per-Run UUID
	// token, so concurrent Run calls sharing a working directory and
	// MapOutputLocation never collide. Off by default, which reproduces
	// the reference implementation's flat <prefix><chunk>.<reducer> naming
	// exactly.
	RunIsolation bool

	// ShardID is set internally by the controller per worker: the map
	// chunk index for map workers, the reducer index for reduce workers.
	ShardID int
}

// NewParameters returns an MRParameters with the reference defaults from
// spec section 3, then applies opts in order.
func NewParameters(opts ...Option) MRParameters {
	p := MRParameters{
		KeyBufferSize:       256,
		Mappers:             4,
		Reducers:            4,
		MapPartitionSize:    100 * 1024 * 1024,
		ReduceGroupPrealloc: 1,
		MapOutputLocation:   "map_intermediate_",
		ReduceOutputPrefix:  "output_",
	}
	for _, opt := range opts {
		opt(&p)
	}
	return p
}

// Option customizes an MRParameters built by NewParameters.
type Option func(*MRParameters)

// WithKeyBufferSize sets the map-phase key batch size.
func WithKeyBufferSize(n int) Option {
	return func(p *MRParameters) { p.KeyBufferSize = n }
}

// WithMappers sets the maximum number of parallel map partitions.
func WithMappers(n int) Option {
	return func(p *MRParameters) { p.Mappers = n }
}

// WithReducers sets the number of reduce shards.
func WithReducers(n int) Option {
	return func(p *MRParameters) { p.Reducers = n }
}

// WithMapPartitionSize sets the approximate byte budget per map chunk.
func WithMapPartitionSize(n int) Option {
	return func(p *MRParameters) { p.MapPartitionSize = n }
}

// WithReduceGroupPrealloc sets the initial value-slice capacity used by
// group-by-key.
func WithReduceGroupPrealloc(n int) Option {
	return func(p *MRParameters) { p.ReduceGroupPrealloc = n }
}

// WithReduceGroupInsensitive makes group-by-key case-insensitive.
func WithReduceGroupInsensitive(insensitive bool) Option {
	return func(p *MRParameters) { p.ReduceGroupInsensitive = insensitive }
}

// WithMapOutputLocation sets the intermediate file path prefix.
func WithMapOutputLocation(prefix string) Option {
	return func(p *MRParameters) { p.MapOutputLocation = prefix }
}

// WithReduceOutputPrefix sets the final shard file path prefix.
func WithReduceOutputPrefix(prefix string) Option {
	return func(p *MRParameters) { p.ReduceOutputPrefix = prefix }
}

// WithKeepTempFiles retains intermediate files after a successful run.
func WithKeepTempFiles(keep bool) Option {
	return func(p *MRParameters) { p.KeepTempFiles = keep }
}

// WithRunIsolation namespaces intermediate filenames with a per-Run UUID
// token so concurrent runs sharing a working directory don't collide.
func WithRunIsolation(isolate bool) Option {
	return func(p *MRParameters) { p.RunIsolation = isolate }
}

// withShardID is internal: the controller sets it per worker.
func withShardID(n int) Option {
	return func(p *MRParameters) { p.ShardID = n }
}
