package drawtest

import (
	"fmt"
	"strconv"
	"strings"
)

// Name returns an identifier derived from every field that affects the
// rendered output. Specs with equal names render identically.
func (s *DrawTestSpec) Name() string {
	var sb strings.Builder
	for i, a := range s.Attribs {
		if len(s.Attribs) > 1 {
			fmt.Fprintf(&sb, "attrib%d_", i)
		}
		if s.isPosition(i) {
			sb.WriteString("pos_")
		} else {
			sb.WriteString("col_")
		}
		a.writeName(&sb)
		sb.WriteByte('_')
	}

	sb.WriteString(s.DrawMethod.String())
	sb.WriteByte('_')
	m := s.DrawMethod
	if m.HasFirst() {
		fmt.Fprintf(&sb, "first%d_", s.First)
	}
	if m.IsIndexed() {
		fmt.Fprintf(&sb, "%s_%s_%d_", s.IndexType, s.IndexStorage, s.IndexPointerOffset)
	}
	if m.IsRanged() {
		fmt.Fprintf(&sb, "range%d_%d_", s.IndexMin, s.IndexMax)
	}
	if m.IsInstanced() {
		fmt.Fprintf(&sb, "instances%d_", s.InstanceCount)
	}
	fmt.Fprintf(&sb, "%d_%s", s.PrimitiveCount, s.Primitive)
	return sb.String()
}

func (a AttributeSpec) writeName(sb *strings.Builder) {
	if a.UseDefaultAttribute {
		fmt.Fprintf(sb, "non_array_%s_%d_%s", a.InputType, a.ComponentCount, a.OutputType)
		return
	}
	fmt.Fprintf(sb, "%s_%d_%d_%s", a.Storage, a.Offset, a.Stride, a.InputType)
	if !a.InputType.IsPacked() {
		sb.WriteString(strconv.Itoa(a.ComponentCount))
	}
	sb.WriteByte('_')
	if a.Normalize {
		sb.WriteString("normalized_")
	}
	if a.BGRAComponentOrder {
		sb.WriteString("bgra_")
	}
	fmt.Fprintf(sb, "%s_%s_%d", a.OutputType, a.Usage, a.InstanceDivisor)
}

// Desc returns a one-line human readable description.
func (s *DrawTestSpec) Desc() string {
	var parts []string
	for i, a := range s.Attribs {
		role := "color"
		if s.isPosition(i) {
			role = "position"
		}
		parts = append(parts, fmt.Sprintf("a_%d %s %s", i, role, a.desc()))
	}
	return fmt.Sprintf("%s, %s; %s", s.drawDesc(), s.primitiveDesc(), strings.Join(parts, "; "))
}

func (a AttributeSpec) desc() string {
	if a.UseDefaultAttribute {
		return fmt.Sprintf("constant %s x%d as %s", a.InputType, a.ComponentCount, a.OutputType)
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s %s x%d as %s, offset %d, stride %d", a.Storage, a.InputType, a.ComponentCount, a.OutputType, a.Offset, a.Stride)
	if a.Normalize {
		sb.WriteString(", normalized")
	}
	if a.BGRAComponentOrder {
		sb.WriteString(", bgra")
	}
	if a.InstanceDivisor != 0 {
		fmt.Fprintf(&sb, ", divisor %d", a.InstanceDivisor)
	}
	if a.Storage == StorageBuffer {
		fmt.Fprintf(&sb, ", %s", a.Usage)
	}
	return sb.String()
}

func (s *DrawTestSpec) drawDesc() string {
	m := s.DrawMethod
	var sb strings.Builder
	sb.WriteString(m.String())
	if m.HasFirst() {
		fmt.Fprintf(&sb, " first %d", s.First)
	}
	if m.IsIndexed() {
		fmt.Fprintf(&sb, " %s indices in %s at %d", s.IndexType, s.IndexStorage, s.IndexPointerOffset)
	}
	if m.IsRanged() {
		fmt.Fprintf(&sb, " range [%d,%d]", s.IndexMin, s.IndexMax)
	}
	if m.IsInstanced() {
		fmt.Fprintf(&sb, " x%d instances", s.InstanceCount)
	}
	return sb.String()
}

func (s *DrawTestSpec) primitiveDesc() string {
	return fmt.Sprintf("%d %s", s.PrimitiveCount, s.Primitive)
}

// MultilineDesc returns a description with one field per line, suitable
// for test logs.
func (s *DrawTestSpec) MultilineDesc() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Method: %s\n", s.drawDesc())
	fmt.Fprintf(&sb, "Primitive: %s\n", s.primitiveDesc())
	for i, a := range s.Attribs {
		role := "color"
		if s.isPosition(i) {
			role = "position"
		}
		fmt.Fprintf(&sb, "Attribute a_%d (%s): %s\n", i, role, a.desc())
	}
	fmt.Fprintf(&sb, "Compatibility: %s", s.CompatibilityTest())
	return sb.String()
}

func (s *DrawTestSpec) String() string { return s.Name() }
