package gl

import (
	"errors"
	"fmt"
	"testing"
)

func TestTypeSize(t *testing.T) {
	tests := []struct {
		typ  Type
		want int
	}{
		{Byte, 1}, {UnsignedByte, 1},
		{Short, 2}, {UnsignedShort, 2}, {HalfFloat, 2},
		{Int, 4}, {UnsignedInt, 4}, {Float, 4},
		{Int2101010Rev, 4}, {UnsignedInt2101010Rev, 4},
	}
	for _, tt := range tests {
		if got := tt.typ.Size(); got != tt.want {
			t.Errorf("%v.Size() = %d, want %d", tt.typ, got, tt.want)
		}
	}
}

func TestUnsupportedErrorIs(t *testing.T) {
	err := fmt.Errorf("draw: %w", Unsupported("VertexAttribPointer", "size %d", 3))
	if !errors.Is(err, ErrUnsupported) {
		t.Errorf("errors.Is(%v, ErrUnsupported) = false", err)
	}
	var ue *UnsupportedError
	if !errors.As(err, &ue) || ue.Op != "VertexAttribPointer" {
		t.Errorf("errors.As = %v", ue)
	}
	if errors.Is(ErrOutOfBounds, ErrUnsupported) {
		t.Error("ErrOutOfBounds matches ErrUnsupported")
	}
}

func TestPointer(t *testing.T) {
	p := BufferOffset(12)
	if p.IsClient() || p.Offset() != 12 || p.Data() != nil {
		t.Errorf("BufferOffset(12) = %v", p)
	}
	c := ClientMemory([]byte{1, 2, 3})
	if !c.IsClient() || c.Offset() != 0 || len(c.Data()) != 3 {
		t.Errorf("ClientMemory = %v", c)
	}
}
