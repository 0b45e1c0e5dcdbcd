package transform

import (
	"image"

	"github.com/menta2k/dataset-resizer/pkg/geometry"
)

// Transformer resizes and pads an image according to plan and maps boxes the same way.
//
// Implementations must return an image of exactly plan.TargetW x plan.TargetH
// with the scaled content anchored at the top-left corner, and one output box
// per input box in the same order.
type Transformer interface {
	Apply(img image.Image, boxes []geometry.Box, plan geometry.Plan) (image.Image, []geometry.Box, error)
}
