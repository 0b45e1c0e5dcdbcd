package geometry

import "fmt"

// Box is an axis-aligned bounding box in corner form
type Box struct {
	X1, Y1, X2, Y2 float64
}

// BoxFromXYWH builds a corner-form box from the COCO [x, y, w, h] layout
func BoxFromXYWH(x, y, w, h float64) Box {
	return Box{X1: x, Y1: y, X2: x + w, Y2: y + h}
}

// XYWH decomposes the box back into the COCO [x, y, w, h] layout
func (b Box) XYWH() [4]float64 {
	return [4]float64{b.X1, b.Y1, b.X2 - b.X1, b.Y2 - b.Y1}
}

// Width returns the horizontal extent of the box
func (b Box) Width() float64 { return b.X2 - b.X1 }

// Height returns the vertical extent of the box
func (b Box) Height() float64 { return b.Y2 - b.Y1 }

// Clamp restricts the box to the canvas [0,w]x[0,h]
func (b Box) Clamp(w, h int) Box {
	return Box{
		X1: clamp(b.X1, 0, float64(w)),
		Y1: clamp(b.Y1, 0, float64(h)),
		X2: clamp(b.X2, 0, float64(w)),
		Y2: clamp(b.Y2, 0, float64(h)),
	}
}

// Inverse maps a box from the planned canvas back into source coordinates
func (b Box) Inverse(p Plan) Box {
	return Box{
		X1: (b.X1 - p.OffsetX()) / p.Scale,
		Y1: (b.Y1 - p.OffsetY()) / p.Scale,
		X2: (b.X2 - p.OffsetX()) / p.Scale,
		Y2: (b.Y2 - p.OffsetY()) / p.Scale,
	}
}

func (b Box) String() string {
	return fmt.Sprintf("(%.2f, %.2f), (%.2f, %.2f)", b.X1, b.Y1, b.X2, b.Y2)
}

// TransformBoxes applies the plan's scale and padding offset to every box.
// The result has one entry per input box, in the same order. Boxes that land
// outside the canvas are kept as-is; clamping is left to the caller.
func TransformBoxes(boxes []Box, p Plan) []Box {
	out := make([]Box, len(boxes))
	ox, oy := p.OffsetX(), p.OffsetY()
	for i, b := range boxes {
		out[i] = Box{
			X1: b.X1*p.Scale + ox,
			Y1: b.Y1*p.Scale + oy,
			X2: b.X2*p.Scale + ox,
			Y2: b.Y2*p.Scale + oy,
		}
	}
	return out
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
