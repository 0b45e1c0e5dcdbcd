package processing

import (
	"fmt"
	"image"
	"sort"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/nfnt/resize"
	"golang.org/x/image/draw"
)

// Resampler scales an image to exactly width x height pixels
type Resampler interface {
	Resize(img image.Image, width, height int) image.Image
	Name() string
}

// Resampler backends
const (
	BackendImaging = "imaging"
	BackendNfnt    = "nfnt"
	BackendXDraw   = "xdraw"
)

var imagingFilters = map[string]imaging.ResampleFilter{
	"nearest":    imaging.NearestNeighbor,
	"box":        imaging.Box,
	"linear":     imaging.Linear,
	"catmullrom": imaging.CatmullRom,
	"mitchell":   imaging.MitchellNetravali,
	"lanczos":    imaging.Lanczos,
}

var nfntFilters = map[string]resize.InterpolationFunction{
	"nearest":    resize.NearestNeighbor,
	"linear":     resize.Bilinear,
	"catmullrom": resize.Bicubic,
	"mitchell":   resize.MitchellNetravali,
	"lanczos":    resize.Lanczos3,
}

var xdrawFilters = map[string]draw.Interpolator{
	"nearest":    draw.NearestNeighbor,
	"approx":     draw.ApproxBiLinear,
	"linear":     draw.BiLinear,
	"catmullrom": draw.CatmullRom,
}

type imagingResampler struct {
	name   string
	filter imaging.ResampleFilter
}

func (r imagingResampler) Resize(img image.Image, width, height int) image.Image {
	return imaging.Resize(img, width, height, r.filter)
}

func (r imagingResampler) Name() string { return BackendImaging + "/" + r.name }

type nfntResampler struct {
	name   string
	interp resize.InterpolationFunction
}

func (r nfntResampler) Resize(img image.Image, width, height int) image.Image {
	return resize.Resize(uint(width), uint(height), img, r.interp)
}

func (r nfntResampler) Name() string { return BackendNfnt + "/" + r.name }

type xdrawResampler struct {
	name   string
	interp draw.Interpolator
}

func (r xdrawResampler) Resize(img image.Image, width, height int) image.Image {
	dst := image.NewNRGBA(image.Rect(0, 0, width, height))
	r.interp.Scale(dst, dst.Bounds(), img, img.Bounds(), draw.Src, nil)
	return dst
}

func (r xdrawResampler) Name() string { return BackendXDraw + "/" + r.name }

// NewResampler returns the resampler for a backend and filter name.
// An empty filter selects the backend default.
func NewResampler(backend, filter string) (Resampler, error) {
	backend = strings.ToLower(strings.TrimSpace(backend))
	filter = strings.ToLower(strings.TrimSpace(filter))

	switch backend {
	case "", BackendImaging:
		if filter == "" {
			filter = "lanczos"
		}
		f, ok := imagingFilters[filter]
		if !ok {
			return nil, fmt.Errorf("unknown %s filter %q (available: %s)", BackendImaging, filter, keys(imagingFilters))
		}
		return imagingResampler{name: filter, filter: f}, nil
	case BackendNfnt:
		if filter == "" {
			filter = "lanczos"
		}
		f, ok := nfntFilters[filter]
		if !ok {
			return nil, fmt.Errorf("unknown %s filter %q (available: %s)", BackendNfnt, filter, keys(nfntFilters))
		}
		return nfntResampler{name: filter, interp: f}, nil
	case BackendXDraw:
		if filter == "" {
			filter = "catmullrom"
		}
		f, ok := xdrawFilters[filter]
		if !ok {
			return nil, fmt.Errorf("unknown %s filter %q (available: %s)", BackendXDraw, filter, keys(xdrawFilters))
		}
		return xdrawResampler{name: filter, interp: f}, nil
	default:
		return nil, fmt.Errorf("unknown resampler %q (use imaging, nfnt or xdraw)", backend)
	}
}

func keys[V any](m map[string]V) string {
	names := make([]string, 0, len(m))
	for k := range m {
		names = append(names, k)
	}
	sort.Strings(names)
	return strings.Join(names, ", ")
}
