package qf

import (
	"unsafe"

	"code.hybscloud.com/iobuf"
)

// NewArena allocates a zeroed byte arena of capacity blocks of blockSize
// bytes each, suitable for Framework.PoolInit.
//
// When blockSize matches one of iobuf's fixed buffer size classes
// (Pico=32B, Nano=128B, Micro=512B, Small=2KiB), the arena is backed by a
// slice of that iobuf buffer type, reinterpreted as bytes via
// unsafe.Slice — the same fixed-size-class layout iobuf itself uses for
// its bounded pools, which keeps every block naturally aligned and
// contiguous. Other block sizes fall back to a plain byte slice.
func NewArena(blockSize, capacity uint32) []byte {
	switch blockSize {
	case iobuf.BufferSizePico:
		return sliceBackedArena(make([]iobuf.PicoBuffer, capacity))
	case iobuf.BufferSizeNano:
		return sliceBackedArena(make([]iobuf.NanoBuffer, capacity))
	case iobuf.BufferSizeMicro:
		return sliceBackedArena(make([]iobuf.MicroBuffer, capacity))
	case iobuf.BufferSizeSmall:
		return sliceBackedArena(make([]iobuf.SmallBuffer, capacity))
	default:
		return make([]byte, uint64(blockSize)*uint64(capacity))
	}
}

// sliceBackedArena reinterprets a slice of fixed-size array buffers as one
// contiguous byte slice, without copying.
func sliceBackedArena[T any](bufs []T) []byte {
	if len(bufs) == 0 {
		return nil
	}
	elemSize := int(unsafe.Sizeof(bufs[0]))
	return unsafe.Slice((*byte)(unsafe.Pointer(&bufs[0])), elemSize*len(bufs))
}
