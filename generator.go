package drawtest

import "fmt"

// Group names of GenerateCases, in generation order.
var Groups = []string{
	"attribute",
	"method",
	"indices",
	"instancing",
	"default_attribute",
	"bgra",
	"usage",
	"multiple_attributes",
}

func positionAttrib() AttributeSpec {
	return AttributeSpec{
		InputType:      InputFloat,
		OutputType:     OutputVec2,
		Storage:        StorageBuffer,
		Usage:          UsageStaticDraw,
		ComponentCount: 2,
	}
}

func colorAttrib() AttributeSpec {
	return AttributeSpec{
		InputType:      InputUnsignedByte,
		OutputType:     OutputVec4,
		Storage:        StorageBuffer,
		Usage:          UsageStaticDraw,
		ComponentCount: 4,
		Normalize:      true,
	}
}

// floatOutput returns the float output type with n components.
func floatOutput(n int) OutputType {
	return OutputFloat + OutputType(n-1)
}

// intOutput returns the four-component integer output matching t.
func intOutput(t InputType) OutputType {
	if t.IsSigned() {
		return OutputIVec4
	}
	return OutputUVec4
}

// generator accumulates cases, skipping invalid specs.
type generator struct {
	reg     *Registry
	err     error
	skipped int
}

func (g *generator) add(name string, spec DrawTestSpec) {
	if g.err != nil {
		return
	}
	if !spec.Valid() {
		g.skipped++
		return
	}
	g.err = g.reg.Add(name, spec)
}

// GenerateCases registers the draw case tree in reg. Cases are named
// <group>/<subgroup>/<variant>; invalid combinations are skipped.
func GenerateCases(reg *Registry) error {
	g := &generator{reg: reg}
	g.attributeCases()
	g.methodCases()
	g.indexCases()
	g.instancingCases()
	g.defaultAttributeCases()
	g.bgraCases()
	g.usageCases()
	g.multipleAttributeCases()
	if g.err != nil {
		return g.err
	}
	Logger().Debug("drawtest: cases generated", "count", reg.Len(), "skipped", g.skipped)
	return nil
}

func arraysSpec(prim Primitive, count int, attribs ...AttributeSpec) DrawTestSpec {
	return DrawTestSpec{
		Primitive:      prim,
		PrimitiveCount: count,
		DrawMethod:     DrawArrays,
		Attribs:        append([]AttributeSpec(nil), attribs...),
	}
}

// attributeCases vary one attribute's encoding: as the color input and
// as the position.
func (g *generator) attributeCases() {
	for _, t := range InputTypes() {
		comps := []int{1, 2, 3, 4}
		if t.IsPacked() {
			comps = []int{4}
		}
		norms := []bool{false, true}
		if t.IsFloat() {
			norms = []bool{false}
		}

		for _, st := range []Storage{StorageUser, StorageBuffer} {
			for _, n := range comps {
				for _, norm := range norms {
					a := AttributeSpec{
						InputType:      t,
						OutputType:     floatOutput(n),
						Storage:        st,
						Usage:          UsageStaticDraw,
						ComponentCount: n,
						Normalize:      norm,
					}
					suffix := ""
					if norm {
						suffix = "_normalized"
					}
					g.add(fmt.Sprintf("attribute/%s/%s/components%d%s", t, st, n, suffix),
						arraysSpec(PrimitiveTriangles, 2, positionAttrib(), a))
				}
			}

			if !t.IsFloat() && !t.IsPacked() {
				a := AttributeSpec{
					InputType:      t,
					OutputType:     intOutput(t),
					Storage:        st,
					Usage:          UsageStaticDraw,
					ComponentCount: 4,
				}
				g.add(fmt.Sprintf("attribute/%s/%s/integer_output", t, st),
					arraysSpec(PrimitiveTriangles, 2, positionAttrib(), a))
			}

			n := 2
			if t.IsPacked() {
				n = 4
			}
			pos := AttributeSpec{
				InputType:      t,
				OutputType:     floatOutput(n),
				Storage:        st,
				Usage:          UsageStaticDraw,
				ComponentCount: n,
			}
			g.add(fmt.Sprintf("attribute/%s/%s/position", t, st),
				arraysSpec(PrimitiveTriangles, 2, pos, colorAttrib()))
		}

		g.offsetStrideCases(t)
	}
}

func (g *generator) offsetStrideCases(t InputType) {
	n := 2
	if t.IsPacked() {
		n = 4
	}
	base := AttributeSpec{
		InputType:      t,
		OutputType:     floatOutput(n),
		Usage:          UsageStaticDraw,
		ComponentCount: n,
		Normalize:      !t.IsFloat(),
	}
	for _, st := range []Storage{StorageUser, StorageBuffer} {
		for _, off := range []int{1, 2, 4, 17, 32} {
			a := base
			a.Storage, a.Offset = st, off
			g.add(fmt.Sprintf("attribute/%s/offset/%s_%d", t, st, off),
				arraysSpec(PrimitiveTriangles, 2, positionAttrib(), a))
		}
		for _, stride := range []int{0, 2, 17, 32} {
			if stride != 0 && stride < base.ElementSize() {
				continue
			}
			a := base
			a.Storage, a.Stride = st, stride
			g.add(fmt.Sprintf("attribute/%s/stride/%s_%d", t, st, stride),
				arraysSpec(PrimitiveTriangles, 2, positionAttrib(), a))
		}
	}
}

// instanceOffset is an extra position attribute stepping once per
// instance so instances do not cover each other.
func instanceOffset() AttributeSpec {
	a := positionAttrib()
	a.AdditionalPositionAttribute = true
	a.InstanceDivisor = 1
	return a
}

// methodSpec returns a spec for method m drawing count primitives.
func methodSpec(m DrawMethod, prim Primitive, count int) DrawTestSpec {
	s := DrawTestSpec{
		Primitive:      prim,
		PrimitiveCount: count,
		DrawMethod:     m,
		Attribs:        []AttributeSpec{positionAttrib(), colorAttrib()},
	}
	if m.IsIndexed() {
		s.IndexType = IndexUnsignedShort
		s.IndexStorage = StorageBuffer
	}
	if m.IsRanged() {
		s.IndexMin = 0
		s.IndexMax = uint32(max(s.VertexCount()-1, 0))
	}
	if m.IsInstanced() {
		s.InstanceCount = 3
		col := colorAttrib()
		col.InstanceDivisor = 1
		s.Attribs = []AttributeSpec{positionAttrib(), col, instanceOffset()}
	}
	return s
}

func (g *generator) methodCases() {
	for _, m := range DrawMethods() {
		for _, p := range Primitives() {
			for _, count := range []int{1, 5} {
				g.add(fmt.Sprintf("method/%s/%s/count%d", m, p, count), methodSpec(m, p, count))
			}
			if m.HasFirst() {
				s := methodSpec(m, p, 5)
				s.First = 6
				g.add(fmt.Sprintf("method/%s/%s/first6", m, p), s)
			}
		}
	}
}

func (g *generator) indexCases() {
	for _, t := range IndexTypes() {
		for _, st := range []Storage{StorageUser, StorageBuffer} {
			for _, off := range []int{0, 1, 4, 17} {
				s := methodSpec(DrawElements, PrimitiveTriangles, 4)
				s.IndexType, s.IndexStorage, s.IndexPointerOffset = t, st, off
				g.add(fmt.Sprintf("indices/%s/%s/offset%d", t, st, off), s)
			}
		}

		ranges := [][2]uint32{{0, 11}, {3, 20}, {t.Max() - 9, t.Max()}}
		for _, r := range ranges {
			if uint64(r[1]) >= maxGeneratedElements {
				continue
			}
			s := methodSpec(DrawElementsRanged, PrimitiveTriangles, 4)
			s.IndexType = t
			s.IndexMin, s.IndexMax = r[0], r[1]
			g.add(fmt.Sprintf("indices/%s/range/%d_%d", t, r[0], r[1]), s)
		}
	}
}

func (g *generator) instancingCases() {
	for _, m := range []DrawMethod{DrawArraysInstanced, DrawElementsInstanced} {
		for _, instances := range []int{1, 2, 4, 7} {
			for _, divisor := range []int{0, 1, 2, 3} {
				s := methodSpec(m, PrimitiveTriangles, 2)
				s.InstanceCount = instances
				s.Attribs[1].InstanceDivisor = divisor
				g.add(fmt.Sprintf("instancing/%s/instances%d_divisor%d", m, instances, divisor), s)
			}
		}
	}
}

func (g *generator) defaultAttributeCases() {
	for n := 1; n <= 4; n++ {
		outs := []OutputType{floatOutput(n)}
		if n != 4 {
			outs = append(outs, OutputVec4)
		}
		for _, out := range outs {
			a := AttributeSpec{
				InputType:           InputFloat,
				OutputType:          out,
				ComponentCount:      n,
				UseDefaultAttribute: true,
			}
			g.add(fmt.Sprintf("default_attribute/float%d_%s", n, out),
				arraysSpec(PrimitiveTriangles, 2, positionAttrib(), a))
		}
	}
	for _, t := range []InputType{InputInt, InputUnsignedInt} {
		a := AttributeSpec{
			InputType:           t,
			OutputType:          intOutput(t),
			ComponentCount:      4,
			UseDefaultAttribute: true,
		}
		g.add(fmt.Sprintf("default_attribute/%s4_%s", t, a.OutputType),
			arraysSpec(PrimitiveTriangles, 2, positionAttrib(), a))
	}
}

func (g *generator) bgraCases() {
	for _, t := range []InputType{InputUnsignedByte, InputUnsignedInt2101010, InputInt2101010} {
		for _, st := range []Storage{StorageUser, StorageBuffer} {
			a := AttributeSpec{
				InputType:          t,
				OutputType:         OutputVec4,
				Storage:            st,
				Usage:              UsageStaticDraw,
				ComponentCount:     4,
				Normalize:          true,
				BGRAComponentOrder: true,
			}
			g.add(fmt.Sprintf("bgra/%s/%s", t, st),
				arraysSpec(PrimitiveTriangles, 2, positionAttrib(), a))
		}
	}
}

func (g *generator) usageCases() {
	for _, u := range Usages() {
		pos, col := positionAttrib(), colorAttrib()
		pos.Usage, col.Usage = u, u
		g.add(fmt.Sprintf("usage/%s", u), arraysSpec(PrimitiveTriangles, 2, pos, col))
	}
}

func (g *generator) multipleAttributeCases() {
	half := AttributeSpec{
		InputType:      InputHalf,
		OutputType:     OutputVec3,
		Storage:        StorageUser,
		ComponentCount: 3,
	}
	short := AttributeSpec{
		InputType:      InputShort,
		OutputType:     OutputVec2,
		Storage:        StorageBuffer,
		ComponentCount: 2,
		Normalize:      true,
		Offset:         4,
		Stride:         12,
	}
	packed := AttributeSpec{
		InputType:      InputUnsignedInt2101010,
		OutputType:     OutputVec4,
		Storage:        StorageBuffer,
		ComponentCount: 4,
		Normalize:      true,
	}
	extraPos := AttributeSpec{
		InputType:                   InputByte,
		OutputType:                  OutputVec2,
		Storage:                     StorageBuffer,
		ComponentCount:              2,
		AdditionalPositionAttribute: true,
	}
	uintCol := AttributeSpec{
		InputType:      InputUnsignedShort,
		OutputType:     OutputUVec4,
		Storage:        StorageUser,
		ComponentCount: 4,
	}

	sets := []struct {
		name    string
		attribs []AttributeSpec
	}{
		{"two_colors", []AttributeSpec{positionAttrib(), colorAttrib(), half}},
		{"three_colors", []AttributeSpec{positionAttrib(), colorAttrib(), short, packed}},
		{"two_positions", []AttributeSpec{positionAttrib(), extraPos, colorAttrib()}},
		{"mixed_outputs", []AttributeSpec{positionAttrib(), uintCol, half}},
		{"all", []AttributeSpec{positionAttrib(), colorAttrib(), extraPos, short, packed, uintCol}},
	}
	for _, set := range sets {
		for _, p := range []Primitive{PrimitivePoints, PrimitiveTriangles, PrimitiveLineStrip} {
			g.add(fmt.Sprintf("multiple_attributes/%s/%s", set.name, p),
				arraysSpec(p, 4, set.attribs...))
		}
	}
}
