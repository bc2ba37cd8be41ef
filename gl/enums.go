// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package gl defines the graphics context capability set that draw tests
// run against, together with the GL-style enums shared by every backend.
//
// Enum values match their OpenGL ES 3 counterparts so that names and
// numbers read the same in logs as in GL headers.
package gl

import "fmt"

// Type is a vertex attribute or index component type.
type Type uint32

// Component types.
const (
	Byte                  Type = 0x1400
	UnsignedByte          Type = 0x1401
	Short                 Type = 0x1402
	UnsignedShort         Type = 0x1403
	Int                   Type = 0x1404
	UnsignedInt           Type = 0x1405
	Float                 Type = 0x1406
	HalfFloat             Type = 0x140B
	UnsignedInt2101010Rev Type = 0x8368
	Int2101010Rev         Type = 0x8D9F
)

// BGRA may be passed as the size argument of VertexAttribPointer to fetch
// four components in reversed order.
const BGRA = 0x80E1

// MaxVertexAttribs is the number of attribute locations every context
// provides.
const MaxVertexAttribs = 16

// Valid reports whether t is a known component type.
func (t Type) Valid() bool {
	switch t {
	case Byte, UnsignedByte, Short, UnsignedShort, Int, UnsignedInt,
		Float, HalfFloat, UnsignedInt2101010Rev, Int2101010Rev:
		return true
	}
	return false
}

// Size returns the byte size of one component of t. Packed types report
// the size of their 4-component word.
func (t Type) Size() int {
	switch t {
	case Byte, UnsignedByte:
		return 1
	case Short, UnsignedShort, HalfFloat:
		return 2
	case Int, UnsignedInt, Float, UnsignedInt2101010Rev, Int2101010Rev:
		return 4
	}
	panic(fmt.Sprintf("gl: unknown type %#x", uint32(t)))
}

// IsPacked reports whether t is a 2-10-10-10 packed type.
func (t Type) IsPacked() bool {
	return t == UnsignedInt2101010Rev || t == Int2101010Rev
}

func (t Type) String() string {
	switch t {
	case Byte:
		return "BYTE"
	case UnsignedByte:
		return "UNSIGNED_BYTE"
	case Short:
		return "SHORT"
	case UnsignedShort:
		return "UNSIGNED_SHORT"
	case Int:
		return "INT"
	case UnsignedInt:
		return "UNSIGNED_INT"
	case Float:
		return "FLOAT"
	case HalfFloat:
		return "HALF_FLOAT"
	case UnsignedInt2101010Rev:
		return "UNSIGNED_INT_2_10_10_10_REV"
	case Int2101010Rev:
		return "INT_2_10_10_10_REV"
	}
	return fmt.Sprintf("Type(%#x)", uint32(t))
}

// Target is a buffer binding point.
type Target uint32

// Buffer targets.
const (
	ArrayBuffer        Target = 0x8892
	ElementArrayBuffer Target = 0x8893
)

func (t Target) String() string {
	switch t {
	case ArrayBuffer:
		return "ARRAY_BUFFER"
	case ElementArrayBuffer:
		return "ELEMENT_ARRAY_BUFFER"
	}
	return fmt.Sprintf("Target(%#x)", uint32(t))
}

// Usage is a buffer usage hint.
type Usage uint32

// Buffer usage hints.
const (
	StreamDraw  Usage = 0x88E0
	StreamRead  Usage = 0x88E1
	StreamCopy  Usage = 0x88E2
	StaticDraw  Usage = 0x88E4
	StaticRead  Usage = 0x88E5
	StaticCopy  Usage = 0x88E6
	DynamicDraw Usage = 0x88E8
	DynamicRead Usage = 0x88E9
	DynamicCopy Usage = 0x88EA
)

// Primitive is a primitive assembly mode.
type Primitive uint32

// Primitive modes.
const (
	Points        Primitive = 0x0000
	Lines         Primitive = 0x0001
	LineLoop      Primitive = 0x0002
	LineStrip     Primitive = 0x0003
	Triangles     Primitive = 0x0004
	TriangleStrip Primitive = 0x0005
	TriangleFan   Primitive = 0x0006
)

func (p Primitive) String() string {
	switch p {
	case Points:
		return "POINTS"
	case Lines:
		return "LINES"
	case LineLoop:
		return "LINE_LOOP"
	case LineStrip:
		return "LINE_STRIP"
	case Triangles:
		return "TRIANGLES"
	case TriangleStrip:
		return "TRIANGLE_STRIP"
	case TriangleFan:
		return "TRIANGLE_FAN"
	}
	return fmt.Sprintf("Primitive(%#x)", uint32(p))
}

// Buffer is an opaque buffer handle. The zero value means no buffer.
type Buffer uint32

// Program is an opaque program handle. The zero value means no program.
type Program uint32
