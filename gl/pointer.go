package gl

import "fmt"

// Pointer is the source of vertex attribute or index data: either a byte
// offset into the buffer bound at the time of the call, or client memory.
type Pointer struct {
	offset int
	data   []byte
	client bool
}

// BufferOffset returns a Pointer into the currently bound buffer.
func BufferOffset(offset int) Pointer {
	return Pointer{offset: offset}
}

// ClientMemory returns a Pointer to caller-owned memory. The slice must
// stay valid until the draw that reads it returns.
func ClientMemory(data []byte) Pointer {
	return Pointer{data: data, client: true}
}

// IsClient reports whether p refers to client memory.
func (p Pointer) IsClient() bool { return p.client }

// Offset returns the buffer offset. It is zero for client pointers.
func (p Pointer) Offset() int { return p.offset }

// Data returns the client memory, or nil for buffer offsets.
func (p Pointer) Data() []byte { return p.data }

func (p Pointer) String() string {
	if p.client {
		return fmt.Sprintf("client[%d]", len(p.data))
	}
	return fmt.Sprintf("offset(%d)", p.offset)
}
