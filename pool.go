package qf

import "unsafe"

// pool is a fixed-block allocator: a caller-supplied byte arena carved at
// Init into capacity blocks of exactly blockSize bytes, linked into a free
// list. Blocks are handed out and returned as []byte slices
// sharing the arena's backing array — no block is ever copied.
//
// All mutation happens under the owning Framework's critical section; pool
// itself holds no lock.
type pool struct {
	arena     []byte
	blockSize uint32
	capacity  uint32
	// free holds indices (into the arena, in block units) of unused
	// blocks, used as a LIFO stack: functionally the same eviction order
	// as QP/C++'s singly-linked free list (most-recently-freed block
	// reused first).
	free      []uint32
	freeCount uint32
	minFree   uint32
}

// initPool partitions storage into capacity blocks of exactly blockSize
// bytes. storage's length must be an exact multiple of blockSize so
// every byte is accounted for.
func initPool(storage []byte, blockSize uint32) *pool {
	if blockSize == 0 || uint32(len(storage)) < blockSize {
		return &pool{blockSize: blockSize}
	}
	capacity := uint32(len(storage)) / blockSize
	p := &pool{
		arena:     storage,
		blockSize: blockSize,
		capacity:  capacity,
		free:      make([]uint32, capacity),
		freeCount: capacity,
		minFree:   capacity,
	}
	for i := uint32(0); i < capacity; i++ {
		p.free[i] = i
	}
	return p
}

// get pops a block off the free list, or returns nil if exhausted.
func (p *pool) get() []byte {
	if p.freeCount == 0 {
		return nil
	}
	p.freeCount--
	idx := p.free[p.freeCount]
	if p.freeCount < p.minFree {
		p.minFree = p.freeCount
	}
	start := uint64(idx) * uint64(p.blockSize)
	return p.arena[start : start+uint64(p.blockSize)]
}

// put returns a block to the free list and reports whether it did. It
// checks that the block starts within this pool's arena and on a block
// boundary, via unsafe pointer arithmetic the way iobuf's BoundedPool
// validates ownership of a returned buffer, and that the free list is
// not already full; if either check fails it returns false and changes
// nothing. Framework.GC treats a false result as a contract violation.
func (p *pool) put(block []byte) bool {
	if len(p.arena) == 0 || len(block) == 0 {
		return false
	}
	base := uintptr(unsafe.Pointer(&p.arena[0]))
	ptr := uintptr(unsafe.Pointer(&block[0]))
	if ptr < base {
		return false
	}
	offset := ptr - base
	if offset >= uintptr(len(p.arena)) || offset%uintptr(p.blockSize) != 0 {
		return false
	}
	idx := uint32(offset / uintptr(p.blockSize))
	if p.freeCount >= p.capacity {
		return false
	}
	p.free[p.freeCount] = idx
	p.freeCount++
	return true
}
