package fixture

import (
	"fmt"
	"sync/atomic"
)

// DynamicIndexBuffer is a live view of a fixture's point indices that
// stays current across structural reindexing. The materialized index
// array is swapped atomically on refresh, so a concurrent encoder always
// reads a complete snapshot, never a half-updated one.
//
// The buffer stops updating once its owner's own point layout is rebuilt
// by a regenerate: the (start, stride) descriptor is meaningless against
// the new layout. Live reports whether the view is still maintained.
type DynamicIndexBuffer struct {
	owner  *Fixture
	start  int
	num    int
	stride int

	live    atomic.Bool
	indices atomic.Pointer[[]int32]
}

func newDynamicIndexBuffer(owner *Fixture, start, num, stride int) (*DynamicIndexBuffer, error) {
	if num < 0 || stride < 1 {
		return nil, fmt.Errorf("index buffer (start %d, num %d, stride %d): %w",
			start, num, stride, ErrAddressing)
	}
	b := &DynamicIndexBuffer{
		owner:  owner,
		start:  start,
		num:    num,
		stride: stride,
	}
	b.live.Store(true)
	if err := b.refresh(); err != nil {
		return nil, err
	}
	return b, nil
}

// refresh re-resolves every covered offset through the owner and
// publishes the new array atomically.
func (b *DynamicIndexBuffer) refresh() error {
	indices := make([]int32, b.num)
	for i := 0; i < b.num; i++ {
		p, err := b.owner.PointAt(b.start + i*b.stride)
		if err != nil {
			return err
		}
		indices[i] = int32(p.Index)
	}
	b.indices.Store(&indices)
	return nil
}

// invalidate permanently stops updates. The last published snapshot
// remains readable.
func (b *DynamicIndexBuffer) invalidate() {
	b.live.Store(false)
}

// Indices returns the current materialized index array. Safe to call
// from the output context.
func (b *DynamicIndexBuffer) Indices() []int32 {
	return *b.indices.Load()
}

// Live reports whether the buffer is still refreshed on reindex.
func (b *DynamicIndexBuffer) Live() bool {
	return b.live.Load()
}
