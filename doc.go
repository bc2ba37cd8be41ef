// Package drawtest verifies that a GPU backend executes vertex draw calls
// the same way a software reference does.
//
// # Overview
//
// A DrawTestSpec describes one draw: the primitive and draw method, the
// index configuration and, for each vertex attribute, its input encoding,
// storage, layout and shader output type. Render generates deterministic
// data for a spec, uploads it through an AttributePack and draws it on a
// gl.Context. A Verifier renders the same spec on a reference context and
// on the context under test and compares the two surfaces.
//
//	reg := drawtest.NewRegistry()
//	if err := drawtest.GenerateCases(reg); err != nil {
//		return err
//	}
//	v := drawtest.NewVerifier(drawtest.WithTolerance(1))
//	summary := reg.Run(v, reference.New(256, 256), gpuCtx, nil)
//
// # Contexts
//
// The reference package rasterizes on the CPU following the GL ES 3
// conversion rules. The hardware package translates the same calls to a
// wgpu HAL device. Both implement gl.Context, so either side of a
// comparison may be any context.
//
// # Verdicts
//
// A case passes when every pixel is within tolerance, fails when it is
// not, is not supported when a context reports gl.ErrUnsupported, and is
// an error for any other backend failure. A failing case never stops a
// run.
package drawtest

// Version is the current version of the module.
const Version = "0.1.0"
