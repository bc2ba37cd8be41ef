package hardware

import (
	"fmt"
	"image"
	"unsafe"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

// copyPitchAlignment is the row pitch alignment of texture to buffer
// copies.
const copyPitchAlignment = 256

// ReadPixels copies the target back to host memory, top row first.
func (c *Context) ReadPixels() (*image.RGBA, error) {
	if c.released {
		return nil, ErrReleased
	}
	w, h := uint32(c.width), uint32(c.height)
	bytesPerRow := w * 4
	alignedBytesPerRow := (bytesPerRow + copyPitchAlignment - 1) &^ (copyPitchAlignment - 1)
	size := uint64(alignedBytesPerRow) * uint64(h)

	staging, err := c.device.CreateBuffer(&hal.BufferDescriptor{
		Label: "drawtest_staging",
		Size:  size,
		Usage: gputypes.BufferUsageMapRead | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		return nil, fmt.Errorf("hardware: create staging buffer: %w", err)
	}
	defer c.device.DestroyBuffer(staging)

	err = c.submit("drawtest_readback", func(enc hal.CommandEncoder) error {
		// The render pass leaves the target as an attachment; copies need
		// it as a copy source.
		enc.TransitionTextures([]hal.TextureBarrier{{
			Texture: c.target,
			Usage: hal.TextureUsageTransition{
				OldUsage: gputypes.TextureUsageRenderAttachment,
				NewUsage: gputypes.TextureUsageCopySrc,
			},
		}})
		enc.CopyTextureToBuffer(c.target, staging, []hal.BufferTextureCopy{{
			BufferLayout: hal.ImageDataLayout{Offset: 0, BytesPerRow: alignedBytesPerRow, RowsPerImage: h},
			TextureBase:  hal.ImageCopyTexture{Texture: c.target, MipLevel: 0},
			Size:         hal.Extent3D{Width: w, Height: h, DepthOrArrayLayers: 1},
		}})
		enc.TransitionTextures([]hal.TextureBarrier{{
			Texture: c.target,
			Usage: hal.TextureUsageTransition{
				OldUsage: gputypes.TextureUsageCopySrc,
				NewUsage: gputypes.TextureUsageRenderAttachment,
			},
		}})
		return nil
	})
	if err != nil {
		return nil, err
	}

	mapping, err := c.device.MapBuffer(staging, 0, size)
	if err != nil {
		return nil, fmt.Errorf("hardware: map staging buffer: %w", err)
	}
	defer func() {
		if err := c.device.UnmapBuffer(staging); err != nil {
			slogger().Warn("hardware: unmap staging buffer", "err", err)
		}
	}()
	src := unsafe.Slice((*byte)(mapping.Ptr), size)

	img := image.NewRGBA(image.Rect(0, 0, c.width, c.height))
	for row := 0; row < c.height; row++ {
		s := row * int(alignedBytesPerRow)
		copy(img.Pix[row*img.Stride:row*img.Stride+int(bytesPerRow)], src[s:s+int(bytesPerRow)])
	}
	return img, nil
}
