// Package colorfilter applies the color inversion and adaptive black/white
// classification used before pages are reassembled.
package colorfilter

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
)

// Thresholds holds the adaptive monochrome constants on a 0-255 scale.
type Thresholds struct {
	// Saturation above which a pixel counts as "colored".
	Saturation uint8
	// Luminance above which a colored pixel is treated as light text.
	LightText uint8
	// Luminance below which an uncolored pixel becomes black.
	NearWhite uint8
}

// Options selects the transforms. Invert always runs before Monochrome.
type Options struct {
	Invert     bool
	Monochrome bool
	Thresholds Thresholds
}

// Enabled reports whether any transform is requested.
func (o Options) Enabled() bool { return o.Invert || o.Monochrome }

// DefaultThresholds are the values of the most recent filter revision.
var DefaultThresholds = Thresholds{Saturation: 40, LightText: 150, NearWhite: 220}

// Presets maps preset names to threshold sets.
var Presets = map[string]Thresholds{
	"latest":  DefaultThresholds,
	"classic": {Saturation: 50, LightText: 128, NearWhite: 240},
}

// Preset looks up a named threshold set.
func Preset(name string) (Thresholds, error) {
	if name == "" {
		return DefaultThresholds, nil
	}
	t, ok := Presets[name]
	if !ok {
		return Thresholds{}, fmt.Errorf("unknown monochrome preset %q", name)
	}
	return t, nil
}

var (
	black = color.RGBA{A: 0xff}
	white = color.RGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}
)

// Apply runs the selected transforms and returns an opaque RGBA bitmap. The
// result is always a fresh image; src is never modified.
func Apply(src image.Image, opts Options) *image.RGBA {
	img := Flatten(src)
	if opts.Invert {
		Invert(img)
	}
	if opts.Monochrome {
		Monochrome(img, opts.Thresholds)
	}
	return img
}

// Flatten composites src over opaque white and returns an RGBA copy with
// bounds starting at the origin.
func Flatten(src image.Image) *image.RGBA {
	b := src.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), image.NewUniform(white), image.Point{}, draw.Src)
	draw.Draw(dst, dst.Bounds(), src, b.Min, draw.Over)
	return dst
}

// Invert replaces every color channel value v with 255-v in place. Alpha is
// left untouched.
func Invert(img *image.RGBA) {
	pix := img.Pix
	for y := 0; y < img.Rect.Dy(); y++ {
		row := pix[y*img.Stride : y*img.Stride+img.Rect.Dx()*4]
		for i := 0; i < len(row); i += 4 {
			row[i] = 255 - row[i]
			row[i+1] = 255 - row[i+1]
			row[i+2] = 255 - row[i+2]
		}
	}
}

// Monochrome reduces img in place to pure black and pure white.
func Monochrome(img *image.RGBA, t Thresholds) {
	pix := img.Pix
	for y := 0; y < img.Rect.Dy(); y++ {
		row := pix[y*img.Stride : y*img.Stride+img.Rect.Dx()*4]
		for i := 0; i < len(row); i += 4 {
			c := Classify(row[i], row[i+1], row[i+2], t)
			row[i], row[i+1], row[i+2], row[i+3] = c.R, c.G, c.B, 0xff
		}
	}
}

// Classify maps one RGB pixel to black or white.
func Classify(r, g, b uint8, t Thresholds) color.RGBA {
	lum := Luminance(r, g, b)
	if Saturation(r, g, b) > t.Saturation {
		if lum > t.LightText {
			return white
		}
		return black
	}
	if lum < t.NearWhite {
		return black
	}
	return white
}

// Luminance is the ITU-R 601-2 luma transform with integer rounding.
func Luminance(r, g, b uint8) uint8 {
	return uint8((uint32(r)*299 + uint32(g)*587 + uint32(b)*114 + 500) / 1000)
}

// Saturation is the HSV saturation scaled to 0-255.
func Saturation(r, g, b uint8) uint8 {
	mx := max(r, g, b)
	if mx == 0 {
		return 0
	}
	mn := min(r, g, b)
	return uint8(uint32(mx-mn) * 255 / uint32(mx))
}
