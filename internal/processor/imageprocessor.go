// imageprocessor.go - Image preprocessing for better OCR accuracy

package processor

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"math"
	"strings"

	"github.com/disintegration/imaging"
)

// ErrNotImage is returned for content types the preprocessor leaves untouched (PDF, TIFF, ...)
var ErrNotImage = errors.New("content type is not a decodable image")

// ImagePreparer resizes and enhances uploaded images before they are sent to OCR.
// A disabled preparer passes documents through unchanged.
type ImagePreparer struct {
	Enabled      bool
	MaxDimension int
}

// Prepare returns the bytes and content type to submit to OCR. Anything that is
// not a JPEG or PNG, and any image that fails to decode, is returned unchanged.
func (p ImagePreparer) Prepare(data []byte, contentType string) ([]byte, string, error) {
	if !p.Enabled {
		return data, contentType, nil
	}
	out, mimeType, err := PreprocessImage(data, contentType, p.MaxDimension)
	if err != nil {
		return data, contentType, err
	}
	return out, mimeType, nil
}

// PreprocessImage applies adaptive processing for maximum accuracy
func PreprocessImage(data []byte, contentType string, maxDimension int) ([]byte, string, error) {
	ct := strings.ToLower(contentType)
	if ct != "image/jpeg" && ct != "image/jpg" && ct != "image/png" {
		return nil, "", ErrNotImage
	}

	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, "", fmt.Errorf("failed to decode image: %w", err)
	}

	// Step 1: Analyze image quality
	qualityScore := analyzeImageQuality(img)

	// Step 2: Resize to optimal size
	img = fitWithin(img, maxDimension)

	// Step 3: Apply adaptive processing based on quality score
	img = enhancementFor(qualityScore).apply(img)

	// Step 4: Final sharpening pass
	img = imaging.Sharpen(img, 1.0)

	// Step 5: Encode, keeping PNG as PNG
	var buf bytes.Buffer
	mimeType := "image/jpeg"
	if ct == "image/png" {
		err = png.Encode(&buf, img)
		mimeType = "image/png"
	} else {
		err = jpeg.Encode(&buf, img, &jpeg.Options{Quality: 98})
	}
	if err != nil {
		return nil, "", fmt.Errorf("failed to encode processed image: %w", err)
	}

	return buf.Bytes(), mimeType, nil
}

// fitWithin scales img down so its longest side is at most maxDimension
func fitWithin(img image.Image, maxDimension int) image.Image {
	if maxDimension <= 0 {
		return img
	}
	bounds := img.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()

	if width <= maxDimension && height <= maxDimension {
		return img
	}
	if width > height {
		return imaging.Resize(img, maxDimension, 0, imaging.Lanczos)
	}
	return imaging.Resize(img, 0, maxDimension, imaging.Lanczos)
}

// analyzeImageQuality analyzes image and returns quality score (0-100)
func analyzeImageQuality(img image.Image) float64 {
	bounds := img.Bounds()

	var totalBrightness float64
	var minBrightness float64 = 255
	var maxBrightness float64 = 0
	pixelCount := 0

	// Sample pixels (every 10th pixel for performance)
	for y := bounds.Min.Y; y < bounds.Max.Y; y += 10 {
		for x := bounds.Min.X; x < bounds.Max.X; x += 10 {
			r, g, b, _ := img.At(x, y).RGBA()
			brightness := (float64(r>>8) + float64(g>>8) + float64(b>>8)) / 3.0

			totalBrightness += brightness
			if brightness < minBrightness {
				minBrightness = brightness
			}
			if brightness > maxBrightness {
				maxBrightness = brightness
			}
			pixelCount++
		}
	}

	if pixelCount == 0 {
		return 0
	}

	avgBrightness := totalBrightness / float64(pixelCount)
	contrast := maxBrightness - minBrightness

	// Ideal: avgBrightness = 128, contrast = 200+
	brightnessScore := 100.0 - math.Abs(avgBrightness-128.0)/1.28
	contrastScore := math.Min(contrast/2.0, 100.0)

	// Weight: 40% brightness, 60% contrast
	return (brightnessScore * 0.4) + (contrastScore * 0.6)
}

// enhancementStep is one pass of an enhancement tier
type enhancementStep func(image.Image) image.Image

func sharpen(sigma float64) enhancementStep {
	return func(img image.Image) image.Image { return imaging.Sharpen(img, sigma) }
}

func contrast(pct float64) enhancementStep {
	return func(img image.Image) image.Image { return imaging.AdjustContrast(img, pct) }
}

func brightness(pct float64) enhancementStep {
	return func(img image.Image) image.Image { return imaging.AdjustBrightness(img, pct) }
}

func gamma(g float64) enhancementStep {
	return func(img image.Image) image.Image { return imaging.AdjustGamma(img, g) }
}

func blur(sigma float64) enhancementStep {
	return func(img image.Image) image.Image { return imaging.Blur(img, sigma) }
}

func grayscale(img image.Image) image.Image { return imaging.Grayscale(img) }

// enhancementTier is a named sequence of passes chosen by quality score
type enhancementTier struct {
	name  string
	steps []enhancementStep
}

// Values are tuned for scanned print; change them together with a
// before/after OCR comparison.
var (
	lightEnhancement = enhancementTier{"light", []enhancementStep{
		sharpen(2.0), contrast(30), grayscale, contrast(20), gamma(1.05),
	}}
	standardEnhancement = enhancementTier{"standard", []enhancementStep{
		sharpen(3.0), contrast(45), brightness(15), grayscale, contrast(35), gamma(1.15),
	}}
	aggressiveEnhancement = enhancementTier{"aggressive", []enhancementStep{
		sharpen(4.0), contrast(60), brightness(25), grayscale,
		contrast(55), gamma(1.3),
		blur(0.5), sharpen(2.5), // drop speckle, then restore glyph edges
		contrast(20),
	}}
)

func (t enhancementTier) apply(img image.Image) image.Image {
	for _, step := range t.steps {
		img = step(img)
	}
	return img
}

// enhancementFor picks the tier for a quality score (0-100)
func enhancementFor(qualityScore float64) enhancementTier {
	switch {
	case qualityScore < 50:
		return aggressiveEnhancement
	case qualityScore < 75:
		return standardEnhancement
	default:
		return lightEnhancement
	}
}
