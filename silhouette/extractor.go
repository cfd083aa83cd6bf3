package silhouette

import (
	"image"

	"github.com/disintegration/imaging"
)

// Polarity declares which side of the binarization threshold is the object.
// It must be consistent across every image of a capture set.
type Polarity int

const (
	// ObjectDark means the object is darker than the background.
	ObjectDark Polarity = iota
	// ObjectLight means the object is brighter than the background.
	ObjectLight
)

// String implements fmt.Stringer.
func (p Polarity) String() string {
	if p == ObjectLight {
		return "object-light"
	}
	return "object-dark"
}

// DefaultBlurSigma is the Gaussian smoothing applied before thresholding
// when the caller does not pick one.
const DefaultBlurSigma = 1.0

// ExtractorOptions configures silhouette extraction.
type ExtractorOptions struct {
	// Polarity selects object-on-light vs object-on-dark classification.
	Polarity Polarity
	// BlurSigma is the Gaussian blur applied to suppress sensor noise
	// before thresholding. Zero or negative disables smoothing.
	BlurSigma float64
}

// Extract converts one raw photograph into a binary occupancy mask: the
// image is reduced to grayscale, smoothed, thresholded with the Otsu method,
// and classified per pixel by the configured polarity.
//
// Near-uniform images never fail: the degenerate threshold collapses to the
// dominant intensity and the polarity rule classifies the whole frame as a
// single class (all-foreground for ObjectDark, all-background for
// ObjectLight), letting carving proceed.
func Extract(img image.Image, opts ExtractorOptions) *Mask {
	if opts.BlurSigma > 0 {
		img = imaging.Blur(img, opts.BlurSigma)
	}
	gray := imaging.Grayscale(img)

	bounds := gray.Bounds()
	width, height := bounds.Dx(), bounds.Dy()

	hist := make([]float64, 256)
	for y := 0; y < height; y++ {
		row := gray.Pix[y*gray.Stride : y*gray.Stride+width*4]
		for x := 0; x < width; x++ {
			hist[row[x*4]]++
		}
	}
	threshold := uint8(otsuThreshold(hist))

	mask := NewMask(width, height)
	for y := 0; y < height; y++ {
		row := gray.Pix[y*gray.Stride : y*gray.Stride+width*4]
		for x := 0; x < width; x++ {
			v := row[x*4]
			var fg bool
			switch opts.Polarity {
			case ObjectLight:
				fg = v > threshold
			default:
				fg = v <= threshold
			}
			mask.bits[y*width+x] = fg
		}
	}
	return mask
}
