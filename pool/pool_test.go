package pool_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/nyquist-labs/paraflip/pool"
)

func TestGetAllocatesThenReuses(t *testing.T) {
	p := pool.New()

	buf1 := pool.Get[int](p, 16)
	assert.Len(t, buf1, 16)
	assert.Equal(t, 1, p.Len())

	pool.Release(p, buf1)
	buf2 := pool.Get[int](p, 8)
	assert.Equal(t, 1, p.Len(), "smaller request should reuse the released buffer, not allocate a new one")
	assert.Len(t, buf2, 8)
}

func TestGetIsBestFit(t *testing.T) {
	p := pool.New()
	small := pool.Get[int](p, 4)
	large := pool.Get[int](p, 64)
	pool.Release(p, small)
	pool.Release(p, large)

	got := pool.Get[int](p, 4)
	assert.Equal(t, 2, p.Len(), "best fit should pick the small buffer, not grow to a new allocation")
	assert.Len(t, got, 4)
}

func TestDifferentTypesDoNotShareSlots(t *testing.T) {
	p := pool.New()
	ints := pool.Get[int](p, 4)
	pool.Release(p, ints)

	floats := pool.Get[float64](p, 4)
	assert.Equal(t, 2, p.Len())
	assert.Len(t, floats, 4)
}

func TestReserveWarmsPool(t *testing.T) {
	p := pool.New()
	pool.Reserve[int](p, 100)
	assert.Equal(t, 1, p.Len())

	buf := pool.Get[int](p, 10)
	assert.Equal(t, 1, p.Len())
	assert.Len(t, buf, 10)
}
