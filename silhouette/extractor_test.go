package silhouette

import (
	"image"
	"image/color"
	"image/draw"
	"testing"

	"go.viam.com/test"
)

// squareImage draws a dark square on a light background.
func squareImage(w, h int, sq image.Rectangle) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Bounds(), image.NewUniform(color.NRGBA{240, 240, 240, 255}), image.Point{}, draw.Src)
	draw.Draw(img, sq, image.NewUniform(color.NRGBA{20, 20, 20, 255}), image.Point{}, draw.Src)
	return img
}

func uniformImage(w, h int, v uint8) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Bounds(), image.NewUniform(color.NRGBA{v, v, v, 255}), image.Point{}, draw.Src)
	return img
}

func TestExtractDarkObject(t *testing.T) {
	img := squareImage(40, 40, image.Rect(10, 10, 20, 20))
	mask := Extract(img, ExtractorOptions{Polarity: ObjectDark})

	test.That(t, mask.Width(), test.ShouldEqual, 40)
	test.That(t, mask.Height(), test.ShouldEqual, 40)
	test.That(t, mask.Foreground(15, 15), test.ShouldBeTrue)
	test.That(t, mask.Foreground(2, 2), test.ShouldBeFalse)
	test.That(t, mask.Foreground(35, 35), test.ShouldBeFalse)
	test.That(t, mask.ForegroundCount(), test.ShouldEqual, 100)
}

func TestExtractLightObject(t *testing.T) {
	img := squareImage(40, 40, image.Rect(10, 10, 20, 20))
	mask := Extract(img, ExtractorOptions{Polarity: ObjectLight})

	// with inverted polarity the bright background is the object
	test.That(t, mask.Foreground(15, 15), test.ShouldBeFalse)
	test.That(t, mask.Foreground(2, 2), test.ShouldBeTrue)
	test.That(t, mask.ForegroundCount(), test.ShouldEqual, 40*40-100)
}

func TestExtractWithBlurKeepsObject(t *testing.T) {
	img := squareImage(60, 60, image.Rect(20, 20, 40, 40))
	mask := Extract(img, ExtractorOptions{Polarity: ObjectDark, BlurSigma: DefaultBlurSigma})

	test.That(t, mask.Foreground(30, 30), test.ShouldBeTrue)
	test.That(t, mask.Foreground(5, 5), test.ShouldBeFalse)
	// blur shifts the boundary by at most a couple of pixels
	count := mask.ForegroundCount()
	test.That(t, count, test.ShouldBeGreaterThan, 16*16)
	test.That(t, count, test.ShouldBeLessThan, 24*24)
}

func TestExtractNearUniformImage(t *testing.T) {
	// no contrast at all: extraction must not fail and must classify the
	// whole frame as one class, consistently with the polarity
	img := uniformImage(30, 30, 128)

	dark := Extract(img, ExtractorOptions{Polarity: ObjectDark})
	test.That(t, dark.ForegroundCount(), test.ShouldEqual, 30*30)

	light := Extract(img, ExtractorOptions{Polarity: ObjectLight})
	test.That(t, light.ForegroundCount(), test.ShouldEqual, 0)
}

func TestExtractIsDeterministic(t *testing.T) {
	img := squareImage(40, 40, image.Rect(5, 5, 30, 25))
	a := Extract(img, ExtractorOptions{Polarity: ObjectDark, BlurSigma: 1.5})
	b := Extract(img, ExtractorOptions{Polarity: ObjectDark, BlurSigma: 1.5})
	for y := 0; y < a.Height(); y++ {
		for x := 0; x < a.Width(); x++ {
			test.That(t, a.Foreground(x, y), test.ShouldEqual, b.Foreground(x, y))
		}
	}
}

func TestOtsuThreshold(t *testing.T) {
	hist := make([]float64, 256)
	hist[50] = 400
	hist[200] = 600
	th := otsuThreshold(hist)
	test.That(t, th, test.ShouldBeGreaterThanOrEqualTo, 50)
	test.That(t, th, test.ShouldBeLessThan, 200)

	// single-bin histogram degrades to the dominant intensity
	uniform := make([]float64, 256)
	uniform[128] = 900
	test.That(t, otsuThreshold(uniform), test.ShouldEqual, 128)

	empty := make([]float64, 256)
	test.That(t, otsuThreshold(empty), test.ShouldEqual, 0)
}

func TestMaskBounds(t *testing.T) {
	m := NewUniformMask(10, 5, true)
	test.That(t, m.ForegroundCount(), test.ShouldEqual, 50)
	test.That(t, m.Foreground(9, 4), test.ShouldBeTrue)
	// out of bounds is always background
	test.That(t, m.Foreground(-1, 0), test.ShouldBeFalse)
	test.That(t, m.Foreground(10, 0), test.ShouldBeFalse)
	test.That(t, m.Foreground(0, 5), test.ShouldBeFalse)

	m.SetForeground(3, 3, false)
	test.That(t, m.Foreground(3, 3), test.ShouldBeFalse)
	test.That(t, m.ForegroundCount(), test.ShouldEqual, 49)
}
