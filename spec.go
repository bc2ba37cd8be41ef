package drawtest

// DrawTestSpec describes one draw case. It is plain data: validity,
// naming and hashing are pure functions of its fields.
//
// Fields that do not apply to DrawMethod are ignored by Valid, Hash and
// the verification driver. First applies to array draws, the index fields
// to indexed draws, IndexMin and IndexMax to ranged draws and
// InstanceCount to instanced draws.
type DrawTestSpec struct {
	Primitive      Primitive
	PrimitiveCount int
	DrawMethod     DrawMethod

	IndexType          IndexType
	IndexPointerOffset int
	IndexStorage       Storage

	First         int
	IndexMin      uint32
	IndexMax      uint32
	InstanceCount int

	// Attribs lists the vertex attributes. Attribute 0 is the position.
	Attribs []AttributeSpec
}

// AttributeSpec describes one vertex attribute of a DrawTestSpec.
type AttributeSpec struct {
	InputType      InputType
	OutputType     OutputType
	Storage        Storage
	Usage          Usage
	ComponentCount int
	Offset         int
	Stride         int
	Normalize      bool

	// InstanceDivisor advances the attribute once per that many
	// instances. Zero advances it once per vertex.
	InstanceDivisor int

	// UseDefaultAttribute supplies a constant value instead of an array.
	UseDefaultAttribute bool

	// AdditionalPositionAttribute adds the attribute to the position
	// instead of modulating the color.
	AdditionalPositionAttribute bool

	// BGRAComponentOrder reads components in reversed color order.
	BGRAComponentOrder bool
}

// Compatibility classifies encodings that some GPU APIs refuse.
type Compatibility uint8

const (
	CompatibilityNone Compatibility = iota
	CompatibilityUnalignedOffset
	CompatibilityUnalignedStride
)

func (c Compatibility) String() string {
	switch c {
	case CompatibilityUnalignedOffset:
		return "unaligned_offset"
	case CompatibilityUnalignedStride:
		return "unaligned_stride"
	}
	return "none"
}

// Valid reports whether the attribute describes a defined encoding.
func (a AttributeSpec) Valid() bool {
	if !a.InputType.valid() || !a.OutputType.valid() || a.Usage >= usageCount {
		return false
	}
	if a.Storage != StorageUser && a.Storage != StorageBuffer {
		return false
	}
	if a.ComponentCount < 1 || a.ComponentCount > 4 {
		return false
	}
	if a.Offset < 0 || a.Stride < 0 || a.InstanceDivisor < 0 {
		return false
	}

	in, out := a.InputType, a.OutputType
	if a.UseDefaultAttribute {
		switch in {
		case InputFloat:
			if !out.IsFloat() {
				return false
			}
		case InputInt:
			if !out.IsInt() || a.ComponentCount != 4 {
				return false
			}
		case InputUnsignedInt:
			if !out.IsUint() || a.ComponentCount != 4 {
				return false
			}
		default:
			return false
		}
	}

	if in.IsFloat() && !out.IsFloat() {
		return false
	}
	if in.IsSigned() && out.IsUint() {
		return false
	}
	if in.IsUnsigned() && out.IsInt() {
		return false
	}
	if a.Normalize && !out.IsFloat() {
		return false
	}
	if in.IsPacked() && (a.ComponentCount != 4 || !out.IsFloat()) {
		return false
	}
	if a.BGRAComponentOrder {
		if a.ComponentCount != 4 || !a.Normalize {
			return false
		}
		if in != InputUnsignedByte && !in.IsPacked() {
			return false
		}
	}
	return true
}

// ElementSize returns the byte size of one vertex of the attribute.
func (a AttributeSpec) ElementSize() int {
	if a.InputType.IsPacked() {
		return 4
	}
	return a.ComponentCount * a.InputType.Size()
}

// EffectiveStride resolves a zero stride to tightly packed elements.
func (a AttributeSpec) EffectiveStride() int {
	if a.Stride == 0 {
		return a.ElementSize()
	}
	return a.Stride
}

// BufferAligned reports whether a buffer-backed attribute starts at a
// multiple of its component size. Client storage is always aligned.
func (a AttributeSpec) BufferAligned() bool {
	if a.Storage != StorageBuffer || a.UseDefaultAttribute {
		return true
	}
	return a.Offset%a.InputType.Size() == 0
}

// BufferStrideAligned reports whether a buffer-backed attribute's stride
// is a multiple of its component size.
func (a AttributeSpec) BufferStrideAligned() bool {
	if a.Storage != StorageBuffer || a.UseDefaultAttribute {
		return true
	}
	return a.Stride%a.InputType.Size() == 0
}

// isPosition reports whether attribute i feeds the position.
func (s *DrawTestSpec) isPosition(i int) bool {
	return i == 0 || s.Attribs[i].AdditionalPositionAttribute
}

// Valid reports whether the draw can be executed.
func (s *DrawTestSpec) Valid() bool {
	if !s.Primitive.valid() || !s.DrawMethod.valid() {
		return false
	}
	if len(s.Attribs) == 0 || s.PrimitiveCount < 0 {
		return false
	}
	for _, a := range s.Attribs {
		if !a.Valid() {
			return false
		}
	}
	m := s.DrawMethod
	if m.HasFirst() && s.First < 0 {
		return false
	}
	if m.IsInstanced() && s.InstanceCount < 1 {
		return false
	}
	if m.IsIndexed() {
		if !s.IndexType.valid() || s.IndexPointerOffset < 0 {
			return false
		}
		if s.IndexStorage != StorageUser && s.IndexStorage != StorageBuffer {
			return false
		}
	}
	if m.IsRanged() && (s.IndexMin > s.IndexMax || s.IndexMax > s.IndexType.Max()) {
		return false
	}
	return true
}

// VertexCount returns the number of vertices PrimitiveCount primitives
// of the topology consume.
func (s *DrawTestSpec) VertexCount() int {
	n := s.PrimitiveCount
	if n <= 0 {
		return 0
	}
	switch s.Primitive {
	case PrimitivePoints, PrimitiveLineLoop:
		return n
	case PrimitiveTriangles:
		return 3 * n
	case PrimitiveTriangleFan, PrimitiveTriangleStrip:
		return n + 2
	case PrimitiveLines:
		return 2 * n
	case PrimitiveLineStrip:
		return n + 1
	}
	return 0
}

// CompatibilityTest classifies the alignment of the draw. An unaligned offset
// takes priority over an unaligned stride.
func (s *DrawTestSpec) CompatibilityTest() Compatibility {
	for _, a := range s.Attribs {
		if !a.BufferAligned() {
			return CompatibilityUnalignedOffset
		}
	}
	if s.DrawMethod.IsIndexed() && s.IndexStorage == StorageBuffer && s.IndexType.valid() {
		if s.IndexPointerOffset%s.IndexType.Size() != 0 {
			return CompatibilityUnalignedOffset
		}
	}
	for _, a := range s.Attribs {
		if !a.BufferStrideAligned() {
			return CompatibilityUnalignedStride
		}
	}
	return CompatibilityNone
}
