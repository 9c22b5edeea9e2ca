package localmr

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewParametersDefaults(t *testing.T) {
	p := NewParameters()
	assert.Equal(t, 256, p.KeyBufferSize)
	assert.Equal(t, 4, p.Mappers)
	assert.Equal(t, 4, p.Reducers)
	assert.Equal(t, 100*1024*1024, p.MapPartitionSize)
	assert.Equal(t, 1, p.ReduceGroupPrealloc)
	assert.False(t, p.ReduceGroupInsensitive)
	assert.Equal(t, "map_intermediate_", p.MapOutputLocation)
	assert.Equal(t, "output_", p.ReduceOutputPrefix)
	assert.False(t, p.KeepTempFiles)
	assert.False(t, p.RunIsolation)
}

func TestParametersOptions(t *testing.T) {
	p := NewParameters(
		WithKeyBufferSize(16),
		WithMappers(2),
		WithReducers(8),
		WithMapPartitionSize(1024),
		WithReduceGroupPrealloc(4),
		WithReduceGroupInsensitive(true),
		WithMapOutputLocation("im_"),
		WithReduceOutputPrefix("out_"),
		WithKeepTempFiles(true),
		WithRunIsolation(true),
	)

	assert.Equal(t, 16, p.KeyBufferSize)
	assert.Equal(t, 2, p.Mappers)
	assert.Equal(t, 8, p.Reducers)
	assert.Equal(t, 1024, p.MapPartitionSize)
	assert.Equal(t, 4, p.ReduceGroupPrealloc)
	assert.True(t, p.ReduceGroupInsensitive)
	assert.Equal(t, "im_", p.MapOutputLocation)
	assert.Equal(t, "out_", p.ReduceOutputPrefix)
	assert.True(t, p.KeepTempFiles)
	assert.True(t, p.RunIsolation)
}

func TestWithShardIDInternal(t *testing.T) {
	p := NewParameters(withShardID(7))
	assert.Equal(t, 7, p.ShardID)
}
