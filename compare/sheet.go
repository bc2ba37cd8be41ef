package compare

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/go-text/typesetting/di"
	gtfont "github.com/go-text/typesetting/font"
	"github.com/go-text/typesetting/language"
	"github.com/go-text/typesetting/shaping"
	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

const (
	captionSize   = 12
	captionHeight = 18
	panelGap      = 4
)

var fileNamer = strings.NewReplacer("/", "_", "\\", "_", " ", "_", ":", "_")

// SaveDiff writes the reference, result and diff surfaces of a failing
// case to dir, each magnified by scale, plus a captioned sheet placing
// the three side by side. It returns the path of the sheet.
func SaveDiff(dir, name string, ref, res, diff *image.RGBA, scale int) (string, error) {
	if scale < 1 {
		scale = 1
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("compare: create diff dir: %w", err)
	}
	base := fileNamer.Replace(name)

	panels := []struct {
		suffix string
		img    *image.RGBA
	}{
		{"reference", ref},
		{"result", res},
		{"diff", diff},
	}
	scaled := make([]*image.RGBA, len(panels))
	for i, p := range panels {
		scaled[i] = magnify(p.img, scale)
		if err := writePNG(filepath.Join(dir, base+"_"+p.suffix+".png"), scaled[i]); err != nil {
			return "", err
		}
	}

	sheet, err := composeSheet(scaled, []string{"reference", "result", "diff"})
	if err != nil {
		return "", err
	}
	path := filepath.Join(dir, base+"_sheet.png")
	if err := writePNG(path, sheet); err != nil {
		return "", err
	}
	return path, nil
}

// magnify scales img by an integer factor without filtering so single
// pixel differences stay visible.
func magnify(img *image.RGBA, scale int) *image.RGBA {
	b := img.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx()*scale, b.Dy()*scale))
	xdraw.NearestNeighbor.Scale(dst, dst.Bounds(), img, b, xdraw.Src, nil)
	return dst
}

func composeSheet(panels []*image.RGBA, captions []string) (*image.RGBA, error) {
	w, h := 0, 0
	for _, p := range panels {
		w += p.Bounds().Dx() + panelGap
		h = max(h, p.Bounds().Dy())
	}
	w -= panelGap
	sheet := image.NewRGBA(image.Rect(0, 0, w, h+captionHeight))
	draw.Draw(sheet, sheet.Bounds(), image.NewUniform(color.RGBA{R: 32, G: 32, B: 32, A: 255}), image.Point{}, draw.Src)

	face, err := captionFace()
	if err != nil {
		return nil, err
	}
	defer face.Close()

	x := 0
	for i, p := range panels {
		pw := p.Bounds().Dx()
		draw.Draw(sheet, image.Rect(x, captionHeight, x+pw, captionHeight+p.Bounds().Dy()), p, image.Point{}, draw.Src)

		adv, err := captionAdvance(captions[i])
		if err != nil {
			return nil, err
		}
		d := &font.Drawer{
			Dst:  sheet,
			Src:  image.White,
			Face: face,
			Dot:  fixed.P(x, captionHeight-5),
		}
		// Center when the caption fits the panel.
		if off := (fixed.I(pw) - adv) / 2; off > 0 {
			d.Dot.X += off
		}
		d.DrawString(captions[i])
		x += pw + panelGap
	}
	return sheet, nil
}

func captionFace() (font.Face, error) {
	f, err := opentype.Parse(goregular.TTF)
	if err != nil {
		return nil, fmt.Errorf("compare: parse caption font: %w", err)
	}
	face, err := opentype.NewFace(f, &opentype.FaceOptions{
		Size:    captionSize,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, fmt.Errorf("compare: caption face: %w", err)
	}
	return face, nil
}

var shapingFont = sync.OnceValues(func() (*gtfont.Font, error) {
	face, err := gtfont.ParseTTF(bytes.NewReader(goregular.TTF))
	if err != nil {
		return nil, err
	}
	return face.Font, nil
})

// captionAdvance shapes text and returns its horizontal advance.
func captionAdvance(text string) (fixed.Int26_6, error) {
	f, err := shapingFont()
	if err != nil {
		return 0, fmt.Errorf("compare: parse shaping font: %w", err)
	}
	runes := []rune(text)
	var hb shaping.HarfbuzzShaper
	out := hb.Shape(shaping.Input{
		Text:      runes,
		RunEnd:    len(runes),
		Direction: di.DirectionLTR,
		Face:      gtfont.NewFace(f),
		Size:      fixed.I(captionSize),
		Script:    language.Latin,
		Language:  language.NewLanguage("en"),
	})
	var adv fixed.Int26_6
	for _, g := range out.Glyphs {
		adv += g.Advance
	}
	return adv, nil
}

func writePNG(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("compare: %w", err)
	}
	if err := png.Encode(f, img); err != nil {
		_ = f.Close()
		return fmt.Errorf("compare: encode %s: %w", path, err)
	}
	return f.Close()
}
