package ocr

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"math"

	_ "image/gif"
	_ "image/jpeg"

	"golang.org/x/image/draw"
	"golang.org/x/image/math/f64"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// BinarizationMode selects the thresholding algorithm.
type BinarizationMode string

// Binarization modes.
const (
	BinarizeNone  BinarizationMode = "none"
	BinarizeOtsu  BinarizationMode = "otsu"
	BinarizeFixed BinarizationMode = "fixed"
)

// PreprocessConfig controls image conditioning before recognition.
// Recognition accuracy is DPI-sensitive, so images outside the configured
// DPI bounds are rescaled before anything else runs.
type PreprocessConfig struct {
	// Enabled turns preprocessing on. When false images pass through as-is.
	Enabled bool `json:"enabled"`

	// TargetDPI is the DPI images are normalized toward.
	TargetDPI int `json:"target_dpi"`

	// AutoAdjustDPI clamps the effective target into [MinDPI, MaxDPI] based
	// on the estimated input DPI.
	AutoAdjustDPI bool `json:"auto_adjust_dpi"`

	// MinDPI is the lower rescale bound. Images estimated below it upscale.
	MinDPI int `json:"min_dpi"`

	// MaxDPI is the upper rescale bound. Images estimated above it downscale.
	MaxDPI int `json:"max_dpi"`

	// AutoRotate picks the orientation whose text-line profile is strongest.
	AutoRotate bool `json:"auto_rotate"`

	// Deskew straightens small rotations, up to a few degrees.
	Deskew bool `json:"deskew"`

	// Denoise applies a 3x3 median filter.
	Denoise bool `json:"denoise"`

	// EnhanceContrast stretches the intensity histogram to the full range.
	EnhanceContrast bool `json:"contrast_enhance"`

	// InvertColors flips intensities for light-on-dark scans.
	InvertColors bool `json:"invert_colors"`

	// Binarization thresholds the image to black and white.
	Binarization BinarizationMode `json:"binarization_mode"`
}

// DefaultPreprocessConfig returns the preprocessing defaults.
func DefaultPreprocessConfig() PreprocessConfig {
	return PreprocessConfig{
		Enabled:       true,
		TargetDPI:     300,
		AutoAdjustDPI: true,
		MinDPI:        72,
		MaxDPI:        600,
		Deskew:        true,
		Denoise:       true,
		Binarization:  BinarizeOtsu,
	}
}

// assumedPageHeightInches estimates DPI from pixel dimensions when the image
// carries no density metadata, assuming a letter/A4 page scan.
const assumedPageHeightInches = 11.0

// Preprocess conditions image bytes for recognition and returns the result
// PNG-encoded. The stages run in a fixed order: DPI normalization, rotation,
// deskew, denoise, contrast, inversion, binarization.
func Preprocess(data []byte, cfg PreprocessConfig) ([]byte, error) {
	if !cfg.Enabled {
		return data, nil
	}

	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}

	gray := toGray(src)

	gray = normalizeDPI(gray, cfg)
	if cfg.AutoRotate {
		gray = autoRotate(gray)
	}
	if cfg.Deskew {
		gray = deskew(gray)
	}
	if cfg.Denoise {
		gray = medianFilter(gray)
	}
	if cfg.EnhanceContrast {
		gray = stretchContrast(gray)
	}
	if cfg.InvertColors {
		invert(gray)
	}
	switch cfg.Binarization {
	case BinarizeOtsu:
		threshold(gray, OtsuThreshold(gray))
	case BinarizeFixed:
		threshold(gray, 128)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, gray); err != nil {
		return nil, fmt.Errorf("encode image: %w", err)
	}
	return buf.Bytes(), nil
}

func toGray(src image.Image) *image.Gray {
	if g, ok := src.(*image.Gray); ok {
		return g
	}
	b := src.Bounds()
	gray := image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(gray, gray.Bounds(), src, b.Min, draw.Src)
	return gray
}

// normalizeDPI rescales the image so its estimated DPI lands on the target.
// Rescaling within 5% of unity is skipped.
func normalizeDPI(gray *image.Gray, cfg PreprocessConfig) *image.Gray {
	if cfg.TargetDPI <= 0 {
		return gray
	}
	b := gray.Bounds()
	longest := b.Dx()
	if b.Dy() > longest {
		longest = b.Dy()
	}
	if longest == 0 {
		return gray
	}

	estimated := float64(longest) / assumedPageHeightInches
	target := float64(cfg.TargetDPI)
	if cfg.AutoAdjustDPI {
		if cfg.MinDPI > 0 && estimated >= float64(cfg.MinDPI) &&
			cfg.MaxDPI > 0 && estimated <= float64(cfg.MaxDPI) {
			// Already inside bounds: leave the image alone.
			return gray
		}
		if cfg.MinDPI > 0 && target < float64(cfg.MinDPI) {
			target = float64(cfg.MinDPI)
		}
		if cfg.MaxDPI > 0 && target > float64(cfg.MaxDPI) {
			target = float64(cfg.MaxDPI)
		}
	}

	factor := target / estimated
	if factor > 0.95 && factor < 1.05 {
		return gray
	}

	w := int(float64(b.Dx())*factor + 0.5)
	h := int(float64(b.Dy())*factor + 0.5)
	if w < 1 || h < 1 {
		return gray
	}
	dst := image.NewGray(image.Rect(0, 0, w, h))
	draw.CatmullRom.Scale(dst, dst.Bounds(), gray, b, draw.Src, nil)
	return dst
}

// autoRotate tries the four cardinal orientations and keeps the one whose
// horizontal projection profile has the highest variance. Text lines produce
// strong alternating ink/gap rows, so the upright orientation wins; 180
// degree flips are indistinguishable by projection and stay as-is.
func autoRotate(gray *image.Gray) *image.Gray {
	base := projectionVariance(gray)
	rotated := rotate90(gray)
	if projectionVariance(rotated) > base*1.2 {
		return rotated
	}
	return gray
}

func rotate90(gray *image.Gray) *image.Gray {
	b := gray.Bounds()
	dst := image.NewGray(image.Rect(0, 0, b.Dy(), b.Dx()))
	for y := 0; y < b.Dy(); y++ {
		for x := 0; x < b.Dx(); x++ {
			dst.SetGray(b.Dy()-1-y, x, gray.GrayAt(b.Min.X+x, b.Min.Y+y))
		}
	}
	return dst
}

// deskew searches small angles for the rotation maximizing the projection
// profile variance, then rotates by the best angle. The search is bounded to
// +/- 5 degrees in half-degree steps.
func deskew(gray *image.Gray) *image.Gray {
	best := 0.0
	bestScore := projectionVariance(gray)

	for angle := -5.0; angle <= 5.0; angle += 0.5 {
		if angle == 0 {
			continue
		}
		candidate := rotate(gray, angle)
		if score := projectionVariance(candidate); score > bestScore {
			bestScore = score
			best = angle
		}
	}
	if best == 0 {
		return gray
	}
	return rotate(gray, best)
}

// rotate rotates around the image center by the given angle in degrees,
// filling uncovered corners with white.
func rotate(gray *image.Gray, degrees float64) *image.Gray {
	b := gray.Bounds()
	dst := image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))
	for i := range dst.Pix {
		dst.Pix[i] = 0xff
	}

	rad := degrees * math.Pi / 180
	sin, cos := math.Sin(rad), math.Cos(rad)
	cx := float64(b.Dx()) / 2
	cy := float64(b.Dy()) / 2

	m := f64.Aff3{
		cos, -sin, cx - cos*cx + sin*cy,
		sin, cos, cy - sin*cx - cos*cy,
	}
	draw.BiLinear.Transform(dst, m, gray, b, draw.Src, nil)
	return dst
}

// projectionVariance measures the variance of per-row ink counts on a
// downsampled binarized view. Higher variance means crisper text lines.
func projectionVariance(gray *image.Gray) float64 {
	b := gray.Bounds()
	if b.Dy() == 0 || b.Dx() == 0 {
		return 0
	}
	step := 1
	if b.Dy() > 400 {
		step = b.Dy() / 400
	}
	t := OtsuThreshold(gray)

	var rows []float64
	for y := b.Min.Y; y < b.Max.Y; y += step {
		ink := 0
		for x := b.Min.X; x < b.Max.X; x += step {
			if gray.GrayAt(x, y).Y < t {
				ink++
			}
		}
		rows = append(rows, float64(ink))
	}

	var sum float64
	for _, r := range rows {
		sum += r
	}
	mean := sum / float64(len(rows))
	var v float64
	for _, r := range rows {
		d := r - mean
		v += d * d
	}
	return v / float64(len(rows))
}

// medianFilter applies a 3x3 median, removing salt-and-pepper noise.
func medianFilter(gray *image.Gray) *image.Gray {
	b := gray.Bounds()
	dst := image.NewGray(b)
	var window [9]byte
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			n := 0
			for dy := -1; dy <= 1; dy++ {
				for dx := -1; dx <= 1; dx++ {
					px, py := x+dx, y+dy
					if px < b.Min.X || px >= b.Max.X || py < b.Min.Y || py >= b.Max.Y {
						continue
					}
					window[n] = gray.GrayAt(px, py).Y
					n++
				}
			}
			dst.SetGray(x, y, color.Gray{Y: median(window[:n])})
		}
	}
	return dst
}

func median(vals []byte) byte {
	// Insertion sort: the window is at most 9 bytes.
	for i := 1; i < len(vals); i++ {
		for j := i; j > 0 && vals[j-1] > vals[j]; j-- {
			vals[j-1], vals[j] = vals[j], vals[j-1]
		}
	}
	return vals[len(vals)/2]
}

// stretchContrast maps the observed intensity range onto [0,255].
func stretchContrast(gray *image.Gray) *image.Gray {
	lo, hi := byte(255), byte(0)
	for _, p := range gray.Pix {
		if p < lo {
			lo = p
		}
		if p > hi {
			hi = p
		}
	}
	if hi <= lo {
		return gray
	}
	scale := 255.0 / float64(hi-lo)
	for i, p := range gray.Pix {
		gray.Pix[i] = byte(float64(p-lo)*scale + 0.5)
	}
	return gray
}

func invert(gray *image.Gray) {
	for i, p := range gray.Pix {
		gray.Pix[i] = 255 - p
	}
}

// OtsuThreshold computes the threshold separating foreground from background
// by maximizing between-class variance over the intensity histogram.
func OtsuThreshold(gray *image.Gray) byte {
	var hist [256]int
	for _, p := range gray.Pix {
		hist[p]++
	}
	total := len(gray.Pix)
	if total == 0 {
		return 128
	}

	var sum float64
	for i, c := range hist {
		sum += float64(i) * float64(c)
	}

	var sumB, wB float64
	var maxVar float64
	best := 0
	for t := 0; t < 256; t++ {
		wB += float64(hist[t])
		if wB == 0 {
			continue
		}
		wF := float64(total) - wB
		if wF == 0 {
			break
		}
		sumB += float64(t) * float64(hist[t])
		mB := sumB / wB
		mF := (sum - sumB) / wF
		between := wB * wF * (mB - mF) * (mB - mF)
		if between > maxVar {
			maxVar = between
			best = t
		}
	}
	return byte(best)
}

func threshold(gray *image.Gray, t byte) {
	for i, p := range gray.Pix {
		if p < t {
			gray.Pix[i] = 0
		} else {
			gray.Pix[i] = 255
		}
	}
}
