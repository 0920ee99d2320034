package quality

import (
	"image"
	"sync"

	"golang.org/x/image/draw"

	"github.com/mkralik/photo-insight/internal/signal"
	"github.com/mkralik/photo-insight/internal/vocab"
)

// bt709 luminance weights for perceptual sharpness measurement.
const (
	lumaR = 0.2126
	lumaG = 0.7152
	lumaB = 0.0722
)

// computeMetrics measures sharpness, exposure and luminance over a
// subsampled pixel grid. Sharpness and exposure are independent and run
// concurrently; the caller gets the joined result.
func computeMetrics(img image.Image, policy vocab.QualityPolicy) signal.QualityMetrics {
	rgba := toRGBA(img)
	bounds := rgba.Bounds()
	width, height := bounds.Dx(), bounds.Dy()

	step := policy.SampleStep
	if step < 1 {
		step = 1
	}

	var sharpness, exposure float64
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		sharpness = measureSharpness(rgba, step, policy.SharpnessNorm)
	}()
	go func() {
		defer wg.Done()
		exposure = measureExposure(rgba, step, policy.NeutralExposure)
	}()
	wg.Wait()

	return signal.QualityMetrics{
		Megapixels: float64(width) * float64(height) / 1e6,
		Sharpness:  sharpness,
		Exposure:   exposure,
		// Luminance tracks exposure in this design; no separate pass.
		Luminance: exposure,
	}
}

// measureSharpness applies a discrete Laplacian (4*center minus the four
// axial neighbors) to the perceptual luminance of every step-th pixel,
// skipping a one-pixel border, and normalizes the mean absolute response.
func measureSharpness(rgba *image.RGBA, step int, norm float64) float64 {
	bounds := rgba.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	if width < 3 || height < 3 {
		return 0
	}

	var sum float64
	var count int
	for y := 1; y < height-1; y += step {
		for x := 1; x < width-1; x += step {
			center := lumaAt(rgba, x, y)
			lap := 4*center -
				lumaAt(rgba, x, y-1) -
				lumaAt(rgba, x, y+1) -
				lumaAt(rgba, x-1, y) -
				lumaAt(rgba, x+1, y)
			if lap < 0 {
				lap = -lap
			}
			sum += lap
			count++
		}
	}
	if count == 0 {
		return 0
	}
	return clamp01(sum / float64(count) / norm)
}

// measureExposure averages channel-0 brightness over the sampled grid.
func measureExposure(rgba *image.RGBA, step int, neutral float64) float64 {
	bounds := rgba.Bounds()
	width, height := bounds.Dx(), bounds.Dy()

	var sum float64
	var count int
	for y := 1; y < height-1; y += step {
		for x := 1; x < width-1; x += step {
			sum += float64(rgba.RGBAAt(x, y).R)
			count++
		}
	}
	if count == 0 {
		// Degenerate image, too small for the bordered grid: sample
		// every pixel instead.
		for y := 0; y < height; y++ {
			for x := 0; x < width; x++ {
				sum += float64(rgba.RGBAAt(x, y).R)
				count++
			}
		}
	}
	if count == 0 {
		return neutral
	}
	return clamp01(sum / float64(count) / 255.0)
}

func lumaAt(rgba *image.RGBA, x, y int) float64 {
	c := rgba.RGBAAt(x, y)
	return lumaR*float64(c.R) + lumaG*float64(c.G) + lumaB*float64(c.B)
}

// toRGBA converts any image to RGBA with a zero-origin bounds so pixel
// access is uniform.
func toRGBA(img image.Image) *image.RGBA {
	if rgba, ok := img.(*image.RGBA); ok && rgba.Bounds().Min == (image.Point{}) {
		return rgba
	}
	bounds := img.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	draw.Copy(dst, image.Point{}, img, bounds, draw.Src, nil)
	return dst
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
