package resizer

import (
	"fmt"

	"github.com/menta2k/dataset-resizer/pkg/geometry"
)

// State is the position of one image in the resize pipeline
type State int

const (
	Pending State = iota
	Selected
	Skipped
	Transformed
	Written
	Failed
)

var stateNames = [...]string{"pending", "selected", "skipped", "transformed", "written", "failed"}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return fmt.Sprintf("State(%d)", int(s))
	}
	return stateNames[s]
}

// MarshalText implements encoding.TextMarshaler
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// ImageResult is the outcome for a single image
type ImageResult struct {
	ImageID       int64          `json:"image_id"`
	FileName      string         `json:"file_name"`
	State         State          `json:"state"`
	Reason        string         `json:"reason,omitempty"`
	Error         string         `json:"error,omitempty"`
	OutputPath    string         `json:"output_path,omitempty"`
	Boxes         int            `json:"boxes"`
	IgnoredGroups int            `json:"ignored_groups,omitempty"`
	Plan          *geometry.Plan `json:"plan,omitempty"`

	Err error `json:"-"`
}

// Report summarises a run
type Report struct {
	Processed     int           `json:"processed"`
	Skipped       int           `json:"skipped"`
	Failed        int           `json:"failed"`
	IgnoredGroups int           `json:"ignored_groups"`
	Images        []ImageResult `json:"images"`
}

func (r *Report) add(res ImageResult) {
	switch res.State {
	case Written:
		r.Processed++
	case Skipped:
		r.Skipped++
	case Failed:
		r.Failed++
	}
	r.IgnoredGroups += res.IgnoredGroups
	r.Images = append(r.Images, res)
}

// Summary returns a one-line description of the run
func (r *Report) Summary() string {
	return fmt.Sprintf("%d images: %d resized, %d skipped, %d failed",
		len(r.Images), r.Processed, r.Skipped, r.Failed)
}
