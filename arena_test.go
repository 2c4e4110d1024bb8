package qf

import (
	"testing"

	"code.hybscloud.com/iobuf"
)

func TestNewArena_FixedSizeClassHasExpectedLength(t *testing.T) {
	arena := NewArena(iobuf.BufferSizePico, 4)
	if uint32(len(arena)) != iobuf.BufferSizePico*4 {
		t.Fatalf("len(arena) = %d, want %d", len(arena), iobuf.BufferSizePico*4)
	}
}

func TestNewArena_OddSizeFallsBackToPlainSlice(t *testing.T) {
	arena := NewArena(17, 3)
	if len(arena) != 17*3 {
		t.Fatalf("len(arena) = %d, want %d", len(arena), 17*3)
	}
}

func TestNewArena_UsableByPoolInit(t *testing.T) {
	fw, err := New(WithMaxEPool(1))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	arena := NewArena(iobuf.BufferSizeNano, 2)
	if err := fw.PoolInit(arena, iobuf.BufferSizeNano); err != nil {
		t.Fatalf("PoolInit with an iobuf-backed arena: %v", err)
	}
	e, ok := fw.NewX(iobuf.BufferSizeNano, 0, SigUserFirst)
	if !ok || e == nil {
		t.Fatal("NewX against an iobuf-backed arena should succeed")
	}
}
