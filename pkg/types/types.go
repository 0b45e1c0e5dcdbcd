package types

import "errors"

// Error classes shared by every stage of a resize run. Callers match them with errors.Is.
var (
	// ErrMalformedDataset marks annotation data the index cannot resolve
	ErrMalformedDataset = errors.New("malformed dataset")
	// ErrIO marks an unreadable source image or an unwritable destination
	ErrIO = errors.New("i/o failure")
	// ErrInvalidConfig marks settings that make the whole run impossible
	ErrInvalidConfig = errors.New("invalid configuration")
)

// EncodeConfig defines how resized images are written to disk
type EncodeConfig struct {
	Format   string
	Quality  int
	Lossless bool
}

// Size is a target canvas size in pixels
type Size struct {
	Width  int
	Height int
}

// Valid reports whether both dimensions are positive
func (s Size) Valid() bool {
	return s.Width > 0 && s.Height > 0
}
