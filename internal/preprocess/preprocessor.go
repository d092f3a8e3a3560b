// Package preprocess turns receipt photos and scans into bitonal PNGs that OCR
// engines read reliably.
package preprocess

import (
	"bytes"
	"fmt"
	"image"
	"image/color"

	"github.com/anthonynsimon/bild/effect"
	"github.com/anthonynsimon/bild/segment"
	"github.com/disintegration/imaging"
)

// Options controls the preprocessing pipeline
type Options struct {
	// TargetWidth is the minimum output width. Narrower images are upscaled to
	// it, wider images keep their size.
	TargetWidth int
	// MedianRadius is the radius of the speckle filter
	MedianRadius float64
	// SharpenSigma is the strength of the edge sharpening
	SharpenSigma float64
	// Threshold is the gray level separating black from white
	Threshold uint8
}

// DefaultOptions returns the settings tuned for phone photos of paper receipts
func DefaultOptions() Options {
	return Options{
		TargetWidth:  1800,
		MedianRadius: 1,
		SharpenSigma: 1.0,
		Threshold:    180,
	}
}

// Preprocessor prepares receipt images for text recognition
type Preprocessor struct {
	opts Options
}

// New creates a Preprocessor. Zero-valued options fall back to the defaults.
func New(opts Options) *Preprocessor {
	defaults := DefaultOptions()
	if opts.TargetWidth <= 0 {
		opts.TargetWidth = defaults.TargetWidth
	}
	if opts.MedianRadius <= 0 {
		opts.MedianRadius = defaults.MedianRadius
	}
	if opts.SharpenSigma <= 0 {
		opts.SharpenSigma = defaults.SharpenSigma
	}
	if opts.Threshold == 0 {
		opts.Threshold = defaults.Threshold
	}
	return &Preprocessor{opts: opts}
}

// Preprocess decodes the input and returns a grayscale black/white PNG.
// Inputs that cannot be decoded return a *DecodeError.
func (p *Preprocessor) Preprocess(data []byte, contentType string) ([]byte, error) {
	img, err := decode(data, contentType)
	if err != nil {
		return nil, err
	}

	bw := p.binarize(img)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, bw, imaging.PNG); err != nil {
		return nil, fmt.Errorf("encoding PNG: %w", err)
	}
	return buf.Bytes(), nil
}

// binarize runs the pipeline on an already oriented image
func (p *Preprocessor) binarize(img image.Image) *image.Gray {
	if img.Bounds().Dx() < p.opts.TargetWidth {
		img = imaging.Resize(img, p.opts.TargetWidth, 0, imaging.Lanczos)
	}

	gray := imaging.Grayscale(img)
	denoised := effect.Median(gray, p.opts.MedianRadius)
	normalized := normalizeContrast(denoised)
	sharpened := imaging.Sharpen(normalized, p.opts.SharpenSigma)

	return segment.Threshold(sharpened, p.opts.Threshold)
}

// normalizeContrast stretches the gray levels so the darkest pixel becomes
// black and the brightest white
func normalizeContrast(img image.Image) *image.NRGBA {
	lo, hi := grayRange(img)
	if hi <= lo {
		return imaging.Clone(img)
	}

	scale := 255.0 / float64(hi-lo)
	stretch := func(v uint8) uint8 {
		if v <= lo {
			return 0
		}
		if v >= hi {
			return 255
		}
		return uint8(float64(v-lo)*scale + 0.5)
	}

	return imaging.AdjustFunc(img, func(c color.NRGBA) color.NRGBA {
		return color.NRGBA{R: stretch(c.R), G: stretch(c.G), B: stretch(c.B), A: c.A}
	})
}

func grayRange(img image.Image) (lo, hi uint8) {
	lo, hi = 255, 0
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			v := color.GrayModel.Convert(img.At(x, y)).(color.Gray).Y
			if v < lo {
				lo = v
			}
			if v > hi {
				hi = v
			}
		}
	}
	return lo, hi
}
