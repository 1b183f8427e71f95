package vision

import (
	"image"
	"image/color"
	"image/draw"
	"testing"

	"github.com/stretchr/testify/require"
)

func uniformImage(w, h int, c color.Color) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Bounds(), image.NewUniform(c), image.Point{}, draw.Src)
	return img
}

func TestGrayscaleDimensions(t *testing.T) {
	g := Grayscale(uniformImage(64, 48, color.White))
	require.Equal(t, 64, g.W)
	require.Equal(t, 48, g.H)
	require.Len(t, g.Pix, 64*48)
}

func TestBrightnessUniform(t *testing.T) {
	g := Grayscale(uniformImage(32, 32, color.Gray{Y: 128}))
	require.InDelta(t, 128, g.Brightness(), 1)

	g = Grayscale(uniformImage(32, 32, color.Black))
	require.Equal(t, 0.0, g.Brightness())

	g = Grayscale(uniformImage(32, 32, color.White))
	require.InDelta(t, 255, g.Brightness(), 1)
}

func TestEdgeDensityUniformIsZero(t *testing.T) {
	g := Grayscale(uniformImage(64, 64, color.Gray{Y: 200}))
	require.Equal(t, 0.0, g.EdgeDensity())
}

func TestEdgeDensitySingleBoundaryIsLow(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 100, 100))
	for y := 0; y < 100; y++ {
		for x := 0; x < 100; x++ {
			if x >= 50 {
				img.Set(x, y, color.White)
			} else {
				img.Set(x, y, color.Black)
			}
		}
	}
	density := Grayscale(img).EdgeDensity()
	require.Greater(t, density, 0.0)
	require.Less(t, density, 15.0)
}

func TestEdgeDensityStripesIsHigh(t *testing.T) {
	// Two-pixel vertical stripes put nearly every pixel on a gradient.
	img := image.NewRGBA(image.Rect(0, 0, 64, 64))
	for y := 0; y < 64; y++ {
		for x := 0; x < 64; x++ {
			if (x/2)%2 == 1 {
				img.Set(x, y, color.White)
			} else {
				img.Set(x, y, color.Black)
			}
		}
	}
	require.Greater(t, Grayscale(img).EdgeDensity(), 15.0)
}

var skinTone = color.RGBA{R: 200, G: 80, B: 60, A: 255}

func TestCountFaceRegionsEmpty(t *testing.T) {
	require.Equal(t, 0, CountFaceRegions(uniformImage(640, 480, color.Black)))
}

func TestCountFaceRegionsSingle(t *testing.T) {
	img := uniformImage(640, 480, color.Black)
	draw.Draw(img, image.Rect(100, 100, 228, 228), image.NewUniform(skinTone), image.Point{}, draw.Src)
	require.Equal(t, 1, CountFaceRegions(img))
}

func TestCountFaceRegionsSeparateRegions(t *testing.T) {
	img := uniformImage(640, 480, color.Black)
	draw.Draw(img, image.Rect(50, 50, 178, 178), image.NewUniform(skinTone), image.Point{}, draw.Src)
	draw.Draw(img, image.Rect(400, 250, 528, 378), image.NewUniform(skinTone), image.Point{}, draw.Src)
	require.Equal(t, 2, CountFaceRegions(img))
}

func TestCountFaceRegionsIgnoresTinyPatches(t *testing.T) {
	img := uniformImage(640, 480, color.Black)
	// One grid cell of skin is below the minimum region size.
	draw.Draw(img, image.Rect(96, 96, 112, 112), image.NewUniform(skinTone), image.Point{}, draw.Src)
	require.Equal(t, 0, CountFaceRegions(img))
}

func TestIsSkinBounds(t *testing.T) {
	require.True(t, isSkin(200, 80, 60))
	require.False(t, isSkin(80, 80, 60))   // too dark a red channel
	require.False(t, isSkin(200, 200, 60)) // red not dominant over green
	require.False(t, isSkin(100, 98, 95))  // too little spread
}
