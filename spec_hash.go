package drawtest

import (
	"encoding/binary"

	"github.com/cespare/xxhash/v2"
)

// Hash returns a structural hash of the fields the draw method uses. It
// detects accidentally duplicated cases; it is not collision resistant.
// Fields the method ignores, such as InstanceCount of a non-instanced
// draw, do not contribute.
func (s *DrawTestSpec) Hash() uint64 {
	b := make([]byte, 0, 64+16*len(s.Attribs))
	b = append(b, byte(s.Primitive), byte(s.DrawMethod))
	b = binary.AppendUvarint(b, uint64(s.PrimitiveCount))

	m := s.DrawMethod
	if m.HasFirst() {
		b = binary.AppendUvarint(b, uint64(s.First))
	}
	if m.IsIndexed() {
		b = append(b, byte(s.IndexType), byte(s.IndexStorage))
		b = binary.AppendUvarint(b, uint64(s.IndexPointerOffset))
	}
	if m.IsRanged() {
		b = binary.LittleEndian.AppendUint32(b, s.IndexMin)
		b = binary.LittleEndian.AppendUint32(b, s.IndexMax)
	}
	if m.IsInstanced() {
		b = binary.AppendUvarint(b, uint64(s.InstanceCount))
	}

	b = binary.AppendUvarint(b, uint64(len(s.Attribs)))
	for _, a := range s.Attribs {
		b = a.appendHash(b)
	}
	return xxhash.Sum64(b)
}

func (a AttributeSpec) appendHash(b []byte) []byte {
	var flags byte
	if a.Normalize {
		flags |= 1
	}
	if a.UseDefaultAttribute {
		flags |= 2
	}
	if a.AdditionalPositionAttribute {
		flags |= 4
	}
	if a.BGRAComponentOrder {
		flags |= 8
	}
	b = append(b, byte(a.InputType), byte(a.OutputType), flags, byte(a.ComponentCount))
	if a.UseDefaultAttribute {
		return b
	}
	b = append(b, byte(a.Storage), byte(a.Usage))
	b = binary.AppendUvarint(b, uint64(a.Offset))
	b = binary.AppendUvarint(b, uint64(a.Stride))
	return binary.AppendUvarint(b, uint64(a.InstanceDivisor))
}
