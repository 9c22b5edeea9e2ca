package localmr

// InputCache holds one map partition's input in memory. It is built by
// draining an external Record source up to an approximate byte budget, and
// exposes a single forward traversal in insertion order.
//
// The reference implementation builds this as a linked list of fixed-size
// chunks so that the backing storage for already-consumed chunks can be
// freed as the cache is drained; a single growable slice is the Go
// equivalent (see DESIGN.md's InputCache entry) since the whole cache is handed to exactly one map worker and walked
// once, with no chunk-by-chunk release benefit to replicate.
type InputCache struct {
	records []Record
}

// fillInputCache drains src (a func() (Record, bool) pull source) until
// either src is exhausted or approxBytes worth of key+value data has been
// read, whichever comes first. An empty returned cache means src was
// already exhausted; the controller uses that to end the map phase.
func fillInputCache(src func() (Record, bool), approxBytes int) InputCache {
	var cache InputCache
	bytesRead := 0

	for {
		r, ok := src()
		if !ok {
			return cache
		}
		cache.records = append(cache.records, r)
		bytesRead += len(r.Key) + len(r.Value)
		if bytesRead >= approxBytes {
			return cache
		}
	}
}

// Len reports the number of records held.
func (c InputCache) Len() int {
	return len(c.records)
}

// Records returns the cache's records in insertion order. The returned
// slice is shared with the cache; callers must not mutate it.
func (c InputCache) Records() []Record {
	return c.records
}
