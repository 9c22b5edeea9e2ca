package localmr

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFillInputCacheExhaustsShortSource(t *testing.T) {
	records := []Record{{Key: "1", Value: "a"}, {Key: "2", Value: "b"}}
	src := SliceInput(records)

	cache := fillInputCache(src, 1<<20)
	assert.Equal(t, 2, cache.Len())
	assert.Equal(t, records, cache.Records())

	// Source is now exhausted; a further fill yields an empty cache.
	empty := fillInputCache(src, 1<<20)
	assert.Equal(t, 0, empty.Len())
}

func TestFillInputCacheRespectsByteBudget(t *testing.T) {
	records := []Record{
		{Key: "k", Value: "12345"}, // 6 bytes
		{Key: "k", Value: "12345"}, // 6 bytes
		{Key: "k", Value: "12345"}, // 6 bytes
	}
	src := SliceInput(records)

	first := fillInputCache(src, 10)
	// Budget of 10 is exceeded after the second record (12 bytes read).
	assert.Equal(t, 2, first.Len())

	second := fillInputCache(src, 10)
	assert.Equal(t, 1, second.Len())

	third := fillInputCache(src, 10)
	assert.Equal(t, 0, third.Len())
}

func TestFillInputCacheEmptySource(t *testing.T) {
	cache := fillInputCache(SliceInput(nil), 1024)
	assert.Equal(t, 0, cache.Len())
	assert.Empty(t, cache.Records())
}
