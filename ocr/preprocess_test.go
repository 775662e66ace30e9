package ocr

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"
)

// grayImage builds a gray image filled with the given intensity.
func grayImage(w, h int, fill byte) *image.Gray {
	img := image.NewGray(image.Rect(0, 0, w, h))
	for i := range img.Pix {
		img.Pix[i] = fill
	}
	return img
}

func encodePNG(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode fixture: %v", err)
	}
	return buf.Bytes()
}

func TestOtsuThresholdBimodal(t *testing.T) {
	// Half dark ink, half light paper. The threshold must land between.
	img := grayImage(100, 100, 220)
	for y := 0; y < 50; y++ {
		for x := 0; x < 100; x++ {
			img.SetGray(x, y, color.Gray{Y: 30})
		}
	}

	threshold := OtsuThreshold(img)
	if threshold <= 30 || threshold > 220 {
		t.Errorf("expected threshold between modes, got %d", threshold)
	}
}

func TestOtsuThresholdEmpty(t *testing.T) {
	if got := OtsuThreshold(&image.Gray{}); got != 128 {
		t.Errorf("empty image should give midpoint, got %d", got)
	}
}

func TestThresholdBinarizes(t *testing.T) {
	img := grayImage(4, 1, 0)
	img.Pix = []byte{10, 100, 200, 250}
	threshold(img, 128)

	want := []byte{0, 0, 255, 255}
	for i, p := range img.Pix {
		if p != want[i] {
			t.Errorf("pixel %d: expected %d, got %d", i, want[i], p)
		}
	}
}

func TestInvert(t *testing.T) {
	img := grayImage(2, 1, 0)
	img.Pix = []byte{0, 200}
	invert(img)
	if img.Pix[0] != 255 || img.Pix[1] != 55 {
		t.Errorf("unexpected inverted pixels %v", img.Pix)
	}
}

func TestStretchContrast(t *testing.T) {
	img := grayImage(3, 1, 0)
	img.Pix = []byte{100, 150, 200}
	stretchContrast(img)

	if img.Pix[0] != 0 {
		t.Errorf("low end should map to 0, got %d", img.Pix[0])
	}
	if img.Pix[2] != 255 {
		t.Errorf("high end should map to 255, got %d", img.Pix[2])
	}
}

func TestStretchContrastFlatImage(t *testing.T) {
	img := grayImage(3, 1, 128)
	stretchContrast(img)
	for i, p := range img.Pix {
		if p != 128 {
			t.Errorf("flat image must not change, pixel %d became %d", i, p)
		}
	}
}

func TestMedianFilterRemovesSaltNoise(t *testing.T) {
	img := grayImage(5, 5, 255)
	img.SetGray(2, 2, color.Gray{Y: 0}) // lone dark pixel

	out := medianFilter(img)
	if got := out.GrayAt(2, 2).Y; got != 255 {
		t.Errorf("lone noise pixel should be removed, got %d", got)
	}
}

func TestNormalizeDPIUpscalesSmallImages(t *testing.T) {
	// 220px tall at an assumed 11in page is 20 DPI, below MinDPI.
	img := grayImage(170, 220, 255)
	cfg := DefaultPreprocessConfig()

	out := normalizeDPI(img, cfg)
	if out.Bounds().Dy() <= img.Bounds().Dy() {
		t.Errorf("low-DPI image should upscale, got %dx%d", out.Bounds().Dx(), out.Bounds().Dy())
	}
}

func TestNormalizeDPIDownscalesHugeImages(t *testing.T) {
	// 11000px tall is 1000 DPI, above MaxDPI.
	img := grayImage(200, 11000, 255)
	cfg := DefaultPreprocessConfig()
	cfg.Deskew = false

	out := normalizeDPI(img, cfg)
	if out.Bounds().Dy() >= img.Bounds().Dy() {
		t.Error("high-DPI image should downscale")
	}
	// Downscale lands on MaxDPI, not TargetDPI: auto-adjust clamps.
	wantH := int(float64(cfg.MaxDPI) * assumedPageHeightInches)
	if got := out.Bounds().Dy(); got < wantH-10 || got > wantH+10 {
		t.Errorf("expected height near %d, got %d", wantH, got)
	}
}

func TestNormalizeDPILeavesInBoundsImagesAlone(t *testing.T) {
	// 1650px at 11in is 150 DPI, inside [72, 600].
	img := grayImage(1275, 1650, 255)
	out := normalizeDPI(img, DefaultPreprocessConfig())
	if out != img {
		t.Error("in-bounds image should pass through untouched")
	}
}

func TestPreprocessDisabledPassthrough(t *testing.T) {
	data := []byte{1, 2, 3}
	out, err := Preprocess(data, PreprocessConfig{Enabled: false})
	if err != nil {
		t.Fatalf("disabled preprocessing must not fail: %v", err)
	}
	if !bytes.Equal(out, data) {
		t.Error("disabled preprocessing should return input unchanged")
	}
}

func TestPreprocessRejectsGarbage(t *testing.T) {
	cfg := DefaultPreprocessConfig()
	if _, err := Preprocess([]byte("not an image"), cfg); err == nil {
		t.Error("expected decode error for garbage input")
	}
}

func TestPreprocessProducesPNG(t *testing.T) {
	img := grayImage(400, 550, 220)
	for y := 100; y < 110; y++ {
		for x := 50; x < 350; x++ {
			img.SetGray(x, y, color.Gray{Y: 20}) // one text-like stripe
		}
	}
	cfg := DefaultPreprocessConfig()
	cfg.Deskew = false // keep the test fast

	out, err := Preprocess(encodePNG(t, img), cfg)
	if err != nil {
		t.Fatalf("preprocess: %v", err)
	}
	decoded, err := png.Decode(bytes.NewReader(out))
	if err != nil {
		t.Fatalf("output should be a valid PNG: %v", err)
	}
	// Otsu binarization leaves only pure black and white.
	gray, ok := decoded.(*image.Gray)
	if !ok {
		t.Fatalf("expected gray PNG, got %T", decoded)
	}
	for _, p := range gray.Pix {
		if p != 0 && p != 255 {
			t.Fatalf("binarized output contains gray value %d", p)
		}
	}
}

func TestRotate90Dimensions(t *testing.T) {
	img := grayImage(10, 20, 255)
	out := rotate90(img)
	if out.Bounds().Dx() != 20 || out.Bounds().Dy() != 10 {
		t.Errorf("expected 20x10 after rotation, got %dx%d", out.Bounds().Dx(), out.Bounds().Dy())
	}
}
