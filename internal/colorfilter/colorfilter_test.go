package colorfilter

import (
	"image"
	"image/color"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func randomRGBA(w, h int, seed int64) *image.RGBA {
	rnd := rand.New(rand.NewSource(seed))
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i] = uint8(rnd.Intn(256))
		img.Pix[i+1] = uint8(rnd.Intn(256))
		img.Pix[i+2] = uint8(rnd.Intn(256))
		img.Pix[i+3] = 0xff
	}
	return img
}

func TestInvert_Involution(t *testing.T) {
	src := randomRGBA(37, 23, 1)
	once := Apply(src, Options{Invert: true})
	twice := Apply(once, Options{Invert: true})
	assert.Equal(t, src.Pix, twice.Pix)
	assert.NotEqual(t, src.Pix, once.Pix)
}

func TestInvert_ValueMapping(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 1, 1))
	src.SetRGBA(0, 0, color.RGBA{R: 10, G: 200, B: 255, A: 255})
	out := Apply(src, Options{Invert: true})
	assert.Equal(t, color.RGBA{R: 245, G: 55, B: 0, A: 255}, out.RGBAAt(0, 0))
}

func TestInvert_AlphaCompositedOverWhite(t *testing.T) {
	src := image.NewNRGBA(image.Rect(0, 0, 2, 1))
	src.SetNRGBA(0, 0, color.NRGBA{R: 0, G: 0, B: 0, A: 0})   // transparent: becomes white, then black
	src.SetNRGBA(1, 0, color.NRGBA{R: 0, G: 0, B: 0, A: 255}) // opaque black: becomes white
	out := Apply(src, Options{Invert: true})
	assert.Equal(t, color.RGBA{A: 255}, out.RGBAAt(0, 0))
	assert.Equal(t, color.RGBA{R: 255, G: 255, B: 255, A: 255}, out.RGBAAt(1, 0))
}

func TestMonochrome_TwoLevels(t *testing.T) {
	src := randomRGBA(64, 64, 7)
	for _, opts := range []Options{
		{Monochrome: true, Thresholds: DefaultThresholds},
		{Invert: true, Monochrome: true, Thresholds: DefaultThresholds},
		{Monochrome: true, Thresholds: Presets["classic"]},
	} {
		out := Apply(src, opts)
		for i := 0; i < len(out.Pix); i += 4 {
			p := out.Pix[i : i+4]
			isBlack := p[0] == 0 && p[1] == 0 && p[2] == 0
			isWhite := p[0] == 255 && p[1] == 255 && p[2] == 255
			require.True(t, isBlack || isWhite, "pixel %v is neither black nor white", p)
			require.Equal(t, uint8(255), p[3])
		}
	}
}

func TestClassify(t *testing.T) {
	th := DefaultThresholds
	tests := []struct {
		name    string
		r, g, b uint8
		want    color.RGBA
	}{
		{"paper white", 250, 250, 250, white},
		{"light gray below cutoff", 200, 200, 200, black},
		{"near white at cutoff", 220, 220, 220, white},
		{"dark text", 30, 30, 30, black},
		{"saturated dark box", 20, 40, 160, black},
		{"light text on colored box", 255, 200, 120, white},
		{"pastel under saturation threshold", 240, 235, 230, white},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Classify(tc.r, tc.g, tc.b, th))
		})
	}
}

func TestLuminanceAndSaturation(t *testing.T) {
	assert.Equal(t, uint8(0), Luminance(0, 0, 0))
	assert.Equal(t, uint8(255), Luminance(255, 255, 255))
	assert.Equal(t, uint8(76), Luminance(255, 0, 0))
	assert.Equal(t, uint8(0), Saturation(0, 0, 0))
	assert.Equal(t, uint8(0), Saturation(128, 128, 128))
	assert.Equal(t, uint8(255), Saturation(255, 0, 0))
	assert.Equal(t, uint8(127), Saturation(200, 100, 150))
}

func TestApply_DoesNotModifySource(t *testing.T) {
	src := randomRGBA(8, 8, 3)
	before := append([]uint8(nil), src.Pix...)
	_ = Apply(src, Options{Invert: true, Monochrome: true, Thresholds: DefaultThresholds})
	assert.Equal(t, before, src.Pix)
}

func TestPreset(t *testing.T) {
	th, err := Preset("")
	require.NoError(t, err)
	assert.Equal(t, DefaultThresholds, th)
	th, err = Preset("classic")
	require.NoError(t, err)
	assert.Equal(t, uint8(240), th.NearWhite)
	_, err = Preset("sepia")
	assert.Error(t, err)
}

func TestFlatten_RebasesBounds(t *testing.T) {
	src := image.NewRGBA(image.Rect(5, 5, 9, 7))
	out := Flatten(src)
	assert.Equal(t, image.Rect(0, 0, 4, 2), out.Bounds())
}
