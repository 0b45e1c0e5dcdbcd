package processing

import (
	"errors"
	"image"
	"image/color"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/menta2k/dataset-resizer/pkg/geometry"
	"github.com/menta2k/dataset-resizer/pkg/types"
)

var red = color.NRGBA{255, 0, 0, 255}

// createTestImage creates a solid red image
func createTestImage(width, height int) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, red)
		}
	}
	return img
}

func nrgbaAt(img image.Image, x, y int) color.NRGBA {
	return color.NRGBAModel.Convert(img.At(x, y)).(color.NRGBA)
}

func TestNewProcessor(t *testing.T) {
	p := NewProcessor()
	if p == nil {
		t.Fatal("NewProcessor() returned nil")
	}
	if p.ResamplerName() != "imaging/lanczos" {
		t.Errorf("Expected imaging/lanczos, got %s", p.ResamplerName())
	}
}

func TestNewProcessorWithConfigInvalid(t *testing.T) {
	tests := []Config{
		{Resampler: "opencv"},
		{Resampler: BackendImaging, Filter: "sinc"},
		{Resampler: BackendXDraw, Filter: "lanczos"},
	}

	for _, cfg := range tests {
		if _, err := NewProcessorWithConfig(cfg); !errors.Is(err, types.ErrInvalidConfig) {
			t.Errorf("Expected ErrInvalidConfig for %+v, got %v", cfg, err)
		}
	}
}

func TestNewResamplerDefaults(t *testing.T) {
	tests := []struct {
		backend  string
		expected string
	}{
		{"", "imaging/lanczos"},
		{"imaging", "imaging/lanczos"},
		{"NFNT", "nfnt/lanczos"},
		{"xdraw", "xdraw/catmullrom"},
	}

	for _, test := range tests {
		r, err := NewResampler(test.backend, "")
		if err != nil {
			t.Fatalf("NewResampler(%q) failed: %v", test.backend, err)
		}
		if r.Name() != test.expected {
			t.Errorf("NewResampler(%q) = %s, expected %s", test.backend, r.Name(), test.expected)
		}
	}
}

func TestApplyEveryBackend(t *testing.T) {
	for _, backend := range []string{BackendImaging, BackendNfnt, BackendXDraw} {
		t.Run(backend, func(t *testing.T) {
			cfg := DefaultConfig()
			cfg.Resampler = backend
			cfg.Filter = "nearest"
			p, err := NewProcessorWithConfig(cfg)
			if err != nil {
				t.Fatalf("NewProcessorWithConfig failed: %v", err)
			}

			plan, err := geometry.PlanResize(100, 50, 60, 60)
			if err != nil {
				t.Fatalf("PlanResize failed: %v", err)
			}

			boxes := []geometry.Box{{X1: 10, Y1: 10, X2: 50, Y2: 40}}
			out, outBoxes, err := p.Apply(createTestImage(100, 50), boxes, plan)
			if err != nil {
				t.Fatalf("Apply failed: %v", err)
			}

			bounds := out.Bounds()
			if bounds.Dx() != 60 || bounds.Dy() != 60 {
				t.Fatalf("Expected 60x60, got %dx%d", bounds.Dx(), bounds.Dy())
			}

			// Content fills the top 60x30, padding the bottom 60x30
			if c := nrgbaAt(out, 30, 15); c != red {
				t.Errorf("Expected content pixel to be red, got %v", c)
			}
			if c := nrgbaAt(out, 30, 45); c != cfg.PadColor {
				t.Errorf("Expected padding pixel to be %v, got %v", cfg.PadColor, c)
			}

			expected := geometry.Box{X1: 6, Y1: 6, X2: 30, Y2: 24}
			if len(outBoxes) != 1 {
				t.Fatalf("Expected 1 box, got %d", len(outBoxes))
			}
			got := outBoxes[0]
			if math.Abs(got.X1-expected.X1) > 1e-9 || math.Abs(got.Y1-expected.Y1) > 1e-9 ||
				math.Abs(got.X2-expected.X2) > 1e-9 || math.Abs(got.Y2-expected.Y2) > 1e-9 {
				t.Errorf("Expected %v, got %v", expected, got)
			}
		})
	}
}

func TestApplyPortraitPadsRight(t *testing.T) {
	p := NewProcessor()
	plan, err := geometry.PlanResize(500, 1000, 300, 300)
	if err != nil {
		t.Fatalf("PlanResize failed: %v", err)
	}

	out, _, err := p.Apply(createTestImage(500, 1000), nil, plan)
	if err != nil {
		t.Fatalf("Apply failed: %v", err)
	}
	if out.Bounds().Dx() != 300 || out.Bounds().Dy() != 300 {
		t.Fatalf("Expected 300x300, got %v", out.Bounds())
	}
	if c := nrgbaAt(out, 299, 150); c != (color.NRGBA{0, 0, 0, 255}) {
		t.Errorf("Expected black padding on the right, got %v", c)
	}
	if c := nrgbaAt(out, 75, 150); c.R < 250 || c.G > 5 {
		t.Errorf("Expected red content on the left, got %v", c)
	}
}

func TestApplyInvalidPlan(t *testing.T) {
	p := NewProcessor()
	if _, _, err := p.Apply(createTestImage(10, 10), nil, geometry.Plan{}); !errors.Is(err, types.ErrInvalidConfig) {
		t.Errorf("Expected ErrInvalidConfig, got %v", err)
	}
}

func TestSaveAndLoadImage(t *testing.T) {
	p := NewProcessor()
	dir := t.TempDir()
	img := createTestImage(32, 24)

	tests := []types.EncodeConfig{
		{Format: "png"},
		{Format: "jpg", Quality: 90},
		{Format: "webp", Lossless: true},
	}

	for _, enc := range tests {
		path := filepath.Join(dir, "out."+enc.Format)
		if err := p.SaveImage(img, path, enc); err != nil {
			t.Fatalf("SaveImage(%s) failed: %v", enc.Format, err)
		}

		loaded, err := p.LoadImage(path)
		if err != nil {
			t.Fatalf("LoadImage(%s) failed: %v", enc.Format, err)
		}
		if loaded.Bounds().Dx() != 32 || loaded.Bounds().Dy() != 24 {
			t.Errorf("%s: expected 32x24, got %v", enc.Format, loaded.Bounds())
		}

		f, err := os.Open(path)
		if err != nil {
			t.Fatalf("Open failed: %v", err)
		}
		fromReader, err := p.LoadImageFromReader(f)
		f.Close()
		if err != nil {
			t.Fatalf("LoadImageFromReader(%s) failed: %v", enc.Format, err)
		}
		if fromReader.Bounds() != loaded.Bounds() {
			t.Errorf("%s: reader bounds %v differ from file bounds %v", enc.Format, fromReader.Bounds(), loaded.Bounds())
		}
	}
}

func TestSaveImageUnsupportedFormat(t *testing.T) {
	p := NewProcessor()
	err := p.SaveImage(createTestImage(4, 4), filepath.Join(t.TempDir(), "out.tiff"), types.EncodeConfig{Format: "tiff"})
	if err == nil {
		t.Error("Expected error for unsupported format")
	}
}

func TestLoadImageMissing(t *testing.T) {
	p := NewProcessor()
	if _, err := p.LoadImage(filepath.Join(t.TempDir(), "missing.png")); err == nil {
		t.Error("Expected error for missing file")
	}
}

func TestLoadImageGarbage(t *testing.T) {
	p := NewProcessor()
	path := filepath.Join(t.TempDir(), "garbage.png")
	if err := os.WriteFile(path, []byte("not an image"), 0o644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
	if _, err := p.LoadImage(path); err == nil {
		t.Error("Expected error for undecodable file")
	}
}

func TestCreateDebugOverlay(t *testing.T) {
	p := NewProcessor()
	plan, _ := geometry.PlanResize(100, 50, 60, 60)
	out, boxes, err := p.Apply(createTestImage(100, 50), []geometry.Box{{X1: 10, Y1: 10, X2: 50, Y2: 40}}, plan)
	if err != nil {
		t.Fatalf("Apply failed: %v", err)
	}

	overlay := p.CreateDebugOverlay(out, boxes, plan)
	if overlay.Bounds() != out.Bounds() {
		t.Fatalf("Overlay bounds %v differ from image bounds %v", overlay.Bounds(), out.Bounds())
	}

	// Top-left corner of the transformed box (6,6) is outlined in green
	if c := nrgbaAt(overlay, 6, 6); c != (color.NRGBA{0, 255, 0, 255}) {
		t.Errorf("Expected green box outline, got %v", c)
	}
	// The padding boundary sits at the first padded row
	if c := nrgbaAt(overlay, 45, plan.ScaledH); c != (color.NRGBA{0, 170, 255, 255}) {
		t.Errorf("Expected blue padding boundary, got %v", c)
	}
	// Source image is not modified
	if c := nrgbaAt(out, 6, 6); c != red {
		t.Errorf("Overlay modified the source image: %v", c)
	}
}

func BenchmarkApply(b *testing.B) {
	p := NewProcessor()
	img := createTestImage(640, 480)
	plan, _ := geometry.PlanResize(640, 480, 320, 320)
	boxes := []geometry.Box{{X1: 10, Y1: 10, X2: 200, Y2: 100}}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		p.Apply(img, boxes, plan)
	}
}
