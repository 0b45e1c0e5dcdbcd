// Package index builds the lookup tables used to find annotation records by
// image id and by segment id without rescanning the annotation list.
package index

import (
	"fmt"

	"github.com/menta2k/dataset-resizer/pkg/coco"
	"github.com/menta2k/dataset-resizer/pkg/types"
)

// ImageIndex maps an image id to the positions of its annotation records, in input order
type ImageIndex map[int64][]int

// SegmentIndex maps a segment id to the position of the annotation record that owns it
type SegmentIndex map[int64]int

// BuildImageIndex groups annotation record positions by image id
func BuildImageIndex(annotations []coco.AnnotationRecord) ImageIndex {
	idx := make(ImageIndex)
	for i := range annotations {
		id := annotations[i].ImageID
		idx[id] = append(idx[id], i)
	}
	return idx
}

// BuildSegmentIndex records, for every segment, the position of its owning
// annotation record. Duplicate segment ids resolve to the last record seen.
func BuildSegmentIndex(annotations []coco.AnnotationRecord) SegmentIndex {
	idx := make(SegmentIndex)
	for i := range annotations {
		for _, s := range annotations[i].SegmentsInfo {
			idx[s.ID] = i
		}
	}
	return idx
}

// Index bundles both lookup tables. It is built once and only read afterwards.
type Index struct {
	Images   ImageIndex
	Segments SegmentIndex
}

// Build creates both tables for the given annotations
func Build(annotations []coco.AnnotationRecord) *Index {
	return &Index{
		Images:   BuildImageIndex(annotations),
		Segments: BuildSegmentIndex(annotations),
	}
}

// LookupRecordForSegment returns the position of the record owning segmentID
func (x *Index) LookupRecordForSegment(segmentID int64) (int, error) {
	pos, ok := x.Segments[segmentID]
	if !ok {
		return 0, fmt.Errorf("%w: segment %d is not indexed", types.ErrMalformedDataset, segmentID)
	}
	return pos, nil
}

// FirstRecordForImage returns the position of the first annotation record for
// imageID and how many further records for the same image are ignored.
// ok is false when the image has no annotation record at all.
func (x *Index) FirstRecordForImage(imageID int64) (pos int, ignored int, ok bool) {
	group := x.Images[imageID]
	if len(group) == 0 {
		return 0, 0, false
	}
	return group[0], len(group) - 1, true
}
