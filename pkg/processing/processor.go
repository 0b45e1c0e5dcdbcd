package processing

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"io"
	"math"
	"os"
	"strings"

	"github.com/chai2010/webp"
	"github.com/disintegration/imaging"
	_ "golang.org/x/image/webp"

	"github.com/menta2k/dataset-resizer/pkg/geometry"
	"github.com/menta2k/dataset-resizer/pkg/transform"
	"github.com/menta2k/dataset-resizer/pkg/types"
)

// Config holds settings for the pixel transform
type Config struct {
	Resampler string
	Filter    string
	PadColor  color.NRGBA
}

// DefaultConfig pads with opaque black and resamples with imaging/lanczos
func DefaultConfig() Config {
	return Config{
		Resampler: BackendImaging,
		Filter:    "lanczos",
		PadColor:  color.NRGBA{0, 0, 0, 255},
	}
}

// Processor handles image processing operations
type Processor struct {
	config    Config
	resampler Resampler
}

var _ transform.Transformer = (*Processor)(nil)

// NewProcessor creates a new image processor with the default configuration
func NewProcessor() *Processor {
	p, err := NewProcessorWithConfig(DefaultConfig())
	if err != nil {
		panic(err)
	}
	return p
}

// NewProcessorWithConfig creates a processor, failing on an unknown resampler or filter
func NewProcessorWithConfig(config Config) (*Processor, error) {
	r, err := NewResampler(config.Resampler, config.Filter)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", types.ErrInvalidConfig, err)
	}
	return &Processor{config: config, resampler: r}, nil
}

// ResamplerName reports the active backend and filter, e.g. "imaging/lanczos"
func (p *Processor) ResamplerName() string {
	return p.resampler.Name()
}

// Apply resizes img to plan.ScaledW x plan.ScaledH, pastes it at the top-left
// of a plan.TargetW x plan.TargetH canvas filled with the pad colour, and maps
// boxes with the same plan. Scaled content larger than the canvas is cut off
// at the canvas edge.
func (p *Processor) Apply(img image.Image, boxes []geometry.Box, plan geometry.Plan) (image.Image, []geometry.Box, error) {
	if plan.TargetW <= 0 || plan.TargetH <= 0 || plan.ScaledW <= 0 || plan.ScaledH <= 0 {
		return nil, nil, fmt.Errorf("%w: unusable plan %+v", types.ErrInvalidConfig, plan)
	}

	scaled := p.resampler.Resize(img, plan.ScaledW, plan.ScaledH)
	canvas := imaging.New(plan.TargetW, plan.TargetH, p.config.PadColor)
	origin := image.Pt(int(plan.OffsetX()), int(plan.OffsetY()))
	out := imaging.Paste(canvas, scaled, origin)

	return out, geometry.TransformBoxes(boxes, plan), nil
}

// LoadImage loads an image from a file path with WebP support
func (p *Processor) LoadImage(path string) (image.Image, error) {
	// Try imaging.Open (registered decoders)
	if img, err := imaging.Open(path); err == nil {
		return img, nil
	}

	// Fallback: explicit WebP decode
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	low := strings.ToLower(path)
	if strings.HasSuffix(low, ".webp") {
		if img, err := webp.Decode(f); err == nil {
			return img, nil
		}
	}
	if _, err := f.Seek(0, io.SeekStart); err == nil {
		if img, _, err := image.Decode(f); err == nil {
			return img, nil
		}
	}
	return nil, fmt.Errorf("image: unknown format for %s", path)
}

// LoadImageFromReader decodes an image from r with WebP support
func (p *Processor) LoadImageFromReader(r io.Reader) (image.Image, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read image data: %w", err)
	}
	return p.decodeImageFromBytes(data)
}

// decodeImageFromBytes decodes an image from byte data with WebP support
func (p *Processor) decodeImageFromBytes(data []byte) (image.Image, error) {
	if img, _, err := image.Decode(bytes.NewReader(data)); err == nil {
		return img, nil
	}
	if img, err := webp.Decode(bytes.NewReader(data)); err == nil {
		return img, nil
	}
	return nil, fmt.Errorf("image: unknown or unsupported format")
}

// SaveImage saves an image to a file with the specified format and quality
func (p *Processor) SaveImage(img image.Image, path string, enc types.EncodeConfig) error {
	switch strings.ToLower(enc.Format) {
	case "webp":
		f, err := os.Create(path)
		if err != nil {
			return err
		}
		opts := &webp.Options{Lossless: enc.Lossless, Quality: float32(enc.Quality)}
		if err := webp.Encode(f, img, opts); err != nil {
			f.Close()
			return err
		}
		return f.Close()
	case "png":
		return imaging.Save(img, path)
	case "jpg", "jpeg":
		return imaging.Save(img, path, imaging.JPEGQuality(enc.Quality))
	default:
		return fmt.Errorf("unsupported output format: %s", enc.Format)
	}
}

// CreateDebugOverlay draws the boxes and the content/padding boundary on a copy of img
func (p *Processor) CreateDebugOverlay(img image.Image, boxes []geometry.Box, plan geometry.Plan) image.Image {
	nrgba := imaging.Clone(img)
	w := nrgba.Bounds().Dx()
	h := nrgba.Bounds().Dy()

	green := color.NRGBA{0, 255, 0, 255}  // boxes
	blue := color.NRGBA{0, 170, 255, 255} // padding boundary
	stroke := int(math.Max(1, 0.004*float64(minInt(w, h))))

	for _, b := range boxes {
		drawBox(nrgba, b.Clamp(w, h), green, stroke)
	}

	if plan.PadRight > 0 {
		drawVLine(nrgba, plan.ScaledW, 0, h, blue)
	}
	if plan.PadBottom > 0 {
		drawHLine(nrgba, plan.ScaledH, 0, w, blue)
	}

	return nrgba
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func boxToPixels(b geometry.Box) (int, int, int, int) {
	x0 := int(b.X1 + 0.5)
	y0 := int(b.Y1 + 0.5)
	x1 := int(b.X2 + 0.5)
	y1 := int(b.Y2 + 0.5)
	if x1 <= x0 {
		x1 = x0 + 1
	}
	if y1 <= y0 {
		y1 = y0 + 1
	}
	return x0, y0, x1, y1
}

func drawBox(img *image.NRGBA, b geometry.Box, c color.NRGBA, stroke int) {
	x0, y0, x1, y1 := boxToPixels(b)
	for s := 0; s < stroke; s++ {
		drawHLine(img, y0+s, x0, x1, c)
		drawHLine(img, y1-1-s, x0, x1, c)
		drawVLine(img, x0+s, y0, y1, c)
		drawVLine(img, x1-1-s, y0, y1, c)
	}
}

func drawHLine(img *image.NRGBA, y, x0, x1 int, c color.NRGBA) {
	if y < 0 || y >= img.Bounds().Dy() {
		return
	}
	if x0 > x1 {
		x0, x1 = x1, x0
	}
	if x1 <= 0 || x0 >= img.Bounds().Dx() {
		return
	}
	if x0 < 0 {
		x0 = 0
	}
	if x1 > img.Bounds().Dx() {
		x1 = img.Bounds().Dx()
	}
	i := y*img.Stride + x0*4
	for x := x0; x < x1; x++ {
		img.Pix[i+0] = c.R
		img.Pix[i+1] = c.G
		img.Pix[i+2] = c.B
		img.Pix[i+3] = c.A
		i += 4
	}
}

func drawVLine(img *image.NRGBA, x, y0, y1 int, c color.NRGBA) {
	if x < 0 || x >= img.Bounds().Dx() {
		return
	}
	if y0 > y1 {
		y0, y1 = y1, y0
	}
	if y1 <= 0 || y0 >= img.Bounds().Dy() {
		return
	}
	if y0 < 0 {
		y0 = 0
	}
	if y1 > img.Bounds().Dy() {
		y1 = img.Bounds().Dy()
	}
	i := y0*img.Stride + x*4
	for y := y0; y < y1; y++ {
		img.Pix[i+0] = c.R
		img.Pix[i+1] = c.G
		img.Pix[i+2] = c.B
		img.Pix[i+3] = c.A
		i += img.Stride
	}
}
