package localmr

// Record is a (key, value) pair, the universal unit flowing through every
// stage of the pipeline. Both fields are arbitrary byte sequences, held here
// as strings per Go convention for immutable byte data.
type Record struct {
	Key   string
	Value string
}

// MultiRecord is a (key, values) pair delivered to a reducer invocation.
// Values returns the grouped values as a slice; it does not consume them.
type MultiRecord struct {
	key    string
	values []string
}

// NewMultiRecord builds a MultiRecord from an already-grouped key and its
// values, in the order they should be replayed to a reducer.
func NewMultiRecord(key string, values []string) MultiRecord {
	return MultiRecord{key: key, values: values}
}

// Key returns the group key.
func (mr MultiRecord) Key() string {
	return mr.key
}

// Values returns the grouped values in their original order. The returned
// slice is shared with the MultiRecord; callers must not mutate it.
func (mr MultiRecord) Values() []string {
	return mr.values
}

// Len reports the number of values in the group.
func (mr MultiRecord) Len() int {
	return len(mr.values)
}

// MEmitter collects the Records appended by one mapper invocation, in
// emission order. It is harvested via drain once the mapper returns, which
// leaves it empty for the next call.
type MEmitter struct {
	records []Record
}

// Emit appends a (key, value) pair to the emitter.
func (e *MEmitter) Emit(key, value string) {
	e.records = append(e.records, Record{Key: key, Value: value})
}

// drain returns the collected Records; called by the map partition engine
// after the mapper call returns.
func (e *MEmitter) drain() []Record {
	r := e.records
	e.records = nil
	return r
}

// REmitter collects the byte strings appended by one reducer invocation, in
// emission order.
type REmitter struct {
	values []string
}

// Emit appends a value to the emitter.
func (e *REmitter) Emit(value string) {
	e.values = append(e.values, value)
}

// drain returns the collected values; called by the reduce partition engine
// after the reducer call returns.
func (e *REmitter) drain() []string {
	v := e.values
	e.values = nil
	return v
}
