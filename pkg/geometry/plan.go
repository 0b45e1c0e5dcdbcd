// Package geometry holds the resize planning and box math shared by the pixel
// transform and the annotation rewrite. Both sides consume the same Plan, so an
// image and its boxes can never be scaled differently.
package geometry

import (
	"fmt"
	"math"

	"github.com/menta2k/dataset-resizer/pkg/types"
)

// Mode tells which image axis is pinned to the target size
type Mode int

const (
	// HeightDriven scales the height to the target and pads the width
	HeightDriven Mode = iota
	// WidthDriven scales the width to the target and pads the height
	WidthDriven
)

func (m Mode) String() string {
	switch m {
	case WidthDriven:
		return "width-driven"
	case HeightDriven:
		return "height-driven"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// MarshalText implements encoding.TextMarshaler
func (m Mode) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// Plan is the complete aspect-preserving resize plus padding for one image.
//
// Padding is anchored top-left: the scaled content occupies
// [0,ScaledW)x[0,ScaledH) of the canvas and the remainder on the right and
// bottom is fill. Any pixel transform fed this plan must follow the same
// convention.
//
// ScaledW and ScaledH are whole pixels (round(src*Scale), at least 1) while
// boxes are mapped with the exact Scale, so a box edge touching the source
// border can land up to half a pixel away from the scaled content edge
// (333x1000 into 300x300 gives ScaledW 100 but X2 99.9). Transforms resample
// to the rounded size and leave the boxes unadjusted.
type Plan struct {
	Mode  Mode
	Scale float64

	SrcW, SrcH       int
	TargetW, TargetH int
	ScaledW, ScaledH int

	PadRight, PadBottom int
}

// OffsetX is the horizontal position of the scaled content on the canvas
func (p Plan) OffsetX() float64 { return 0 }

// OffsetY is the vertical position of the scaled content on the canvas
func (p Plan) OffsetY() float64 { return 0 }

// PlanResize decides the resize mode for a source of srcW x srcH pixels and
// computes the scale and padding needed to reach targetW x targetH.
//
// Landscape sources (srcW > srcH) are width-driven; everything else, squares
// included, is height-driven.
func PlanResize(srcW, srcH, targetW, targetH int) (Plan, error) {
	if targetW <= 0 || targetH <= 0 {
		return Plan{}, fmt.Errorf("%w: target size %dx%d", types.ErrInvalidConfig, targetW, targetH)
	}
	if srcW <= 0 || srcH <= 0 {
		return Plan{}, fmt.Errorf("%w: source size %dx%d", types.ErrMalformedDataset, srcW, srcH)
	}

	p := Plan{SrcW: srcW, SrcH: srcH, TargetW: targetW, TargetH: targetH}
	if srcW > srcH {
		p.Mode = WidthDriven
		p.Scale = float64(targetW) / float64(srcW)
		p.ScaledW = targetW
		p.ScaledH = scaledSide(srcH, p.Scale)
	} else {
		p.Mode = HeightDriven
		p.Scale = float64(targetH) / float64(srcH)
		p.ScaledW = scaledSide(srcW, p.Scale)
		p.ScaledH = targetH
	}

	p.PadRight = maxInt(0, targetW-p.ScaledW)
	p.PadBottom = maxInt(0, targetH-p.ScaledH)
	return p, nil
}

func scaledSide(side int, scale float64) int {
	n := int(math.Round(float64(side) * scale))
	if n < 1 {
		return 1
	}
	return n
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
