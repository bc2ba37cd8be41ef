package program

import (
	"fmt"
	"strings"
)

const wgslHeader = `struct Uniforms {
    coord_scale: f32,
    color_scale: f32,
    _pad0: f32,
    _pad1: f32,
}

@group(0) @binding(0) var<uniform> u: Uniforms;

struct VertexOutput {
    @builtin(position) position: vec4<f32>,
    @location(0) color: vec4<f32>,
}

`

const wgslFragment = `
@fragment
fn fs_main(in: VertexOutput) -> @location(0) vec4<f32> {
    return in.color;
}
`

// generateWGSL emits the vertex and fragment entry points vs_main and
// fs_main for attribs.
func generateWGSL(attribs []Attribute) string {
	var sb strings.Builder
	sb.WriteString(wgslHeader)
	sb.WriteString("@vertex\nfn vs_main(\n")
	for i, a := range attribs {
		fmt.Fprintf(&sb, "    @location(%d) a_%d: %s,\n", i, i, a.Output.wgsl())
	}
	sb.WriteString(") -> VertexOutput {\n")
	sb.WriteString("    var coord = vec2<f32>(0.0, 0.0);\n")
	sb.WriteString("    var color = vec3<f32>(1.0, 1.0, 1.0);\n")
	for i, a := range attribs {
		v := fmt.Sprintf("a_%d", i)
		if a.Output != OutputFloat {
			v = fmt.Sprintf("vec4<f32>(a_%d)", i)
		}
		if a.Position {
			fmt.Fprintf(&sb, "    coord = coord + %s.xy;\n", v)
			continue
		}
		fmt.Fprintf(&sb, "    color = color * (vec3<f32>(0.5, 0.5, 0.5) + 0.5 * u.color_scale * %s.xyz);\n", v)
	}
	sb.WriteString("    var out: VertexOutput;\n")
	sb.WriteString("    out.position = vec4<f32>(coord * u.coord_scale, 0.0, 1.0);\n")
	sb.WriteString("    out.color = vec4<f32>(color, 1.0);\n")
	sb.WriteString("    return out;\n}\n")
	sb.WriteString(wgslFragment)
	return sb.String()
}
