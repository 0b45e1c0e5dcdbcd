// Package coco reads and writes COCO panoptic style annotation files.
//
// Only the fields the resizer touches are modelled. Everything else (info,
// licenses, categories, per-segment category_id/area/iscrowd, ...) is kept as
// raw JSON and written back unchanged.
package coco

import (
	"encoding/json"
	"fmt"

	"github.com/menta2k/dataset-resizer/pkg/geometry"
)

// Dataset is a complete annotation file
type Dataset struct {
	Images      []ImageRecord
	Annotations []AnnotationRecord
	Extra       Extra
}

// ImageRecord describes one image of the dataset
type ImageRecord struct {
	ID       int64
	FileName string
	Width    int
	Height   int
	Extra    Extra
}

// AnnotationRecord groups the segments of one image
type AnnotationRecord struct {
	ImageID      int64
	SegmentsInfo []SegmentInfo
	Extra        Extra
}

// SegmentInfo is one segment with its [x, y, w, h] bounding box
type SegmentInfo struct {
	ID    int64
	BBox  [4]float64
	Extra Extra
}

// Corners returns the segment box in corner form
func (s *SegmentInfo) Corners() geometry.Box {
	return geometry.BoxFromXYWH(s.BBox[0], s.BBox[1], s.BBox[2], s.BBox[3])
}

// SetCorners stores a corner-form box as [x, y, w, h]
func (s *SegmentInfo) SetCorners(b geometry.Box) {
	s.BBox = b.XYWH()
}

// Segment returns a pointer to the segment with the given id, or nil
func (a *AnnotationRecord) Segment(id int64) *SegmentInfo {
	for i := range a.SegmentsInfo {
		if a.SegmentsInfo[i].ID == id {
			return &a.SegmentsInfo[i]
		}
	}
	return nil
}

type datasetFields struct {
	Images      []ImageRecord      `json:"images"`
	Annotations []AnnotationRecord `json:"annotations"`
}

type imageFields struct {
	ID       int64  `json:"id"`
	FileName string `json:"file_name"`
	Width    int    `json:"width"`
	Height   int    `json:"height"`
}

type annotationFields struct {
	ImageID      int64         `json:"image_id"`
	SegmentsInfo []SegmentInfo `json:"segments_info"`
}

type segmentFields struct {
	ID   int64      `json:"id"`
	BBox [4]float64 `json:"bbox"`
}

// UnmarshalJSON implements json.Unmarshaler
func (d *Dataset) UnmarshalJSON(data []byte) error {
	var f datasetFields
	if err := json.Unmarshal(data, &f); err != nil {
		return err
	}
	extra, err := splitExtra(data, "images", "annotations")
	if err != nil {
		return err
	}
	*d = Dataset{Images: f.Images, Annotations: f.Annotations, Extra: extra}
	return nil
}

// MarshalJSON implements json.Marshaler
func (d Dataset) MarshalJSON() ([]byte, error) {
	images := d.Images
	if images == nil {
		images = []ImageRecord{}
	}
	annotations := d.Annotations
	if annotations == nil {
		annotations = []AnnotationRecord{}
	}
	return mergeExtra(datasetFields{Images: images, Annotations: annotations}, d.Extra)
}

// UnmarshalJSON implements json.Unmarshaler
func (r *ImageRecord) UnmarshalJSON(data []byte) error {
	var f imageFields
	if err := json.Unmarshal(data, &f); err != nil {
		return fmt.Errorf("image record: %w", err)
	}
	extra, err := splitExtra(data, "id", "file_name", "width", "height")
	if err != nil {
		return err
	}
	*r = ImageRecord{ID: f.ID, FileName: f.FileName, Width: f.Width, Height: f.Height, Extra: extra}
	return nil
}

// MarshalJSON implements json.Marshaler
func (r ImageRecord) MarshalJSON() ([]byte, error) {
	return mergeExtra(imageFields{ID: r.ID, FileName: r.FileName, Width: r.Width, Height: r.Height}, r.Extra)
}

// UnmarshalJSON implements json.Unmarshaler
func (a *AnnotationRecord) UnmarshalJSON(data []byte) error {
	var f annotationFields
	if err := json.Unmarshal(data, &f); err != nil {
		return fmt.Errorf("annotation record: %w", err)
	}
	extra, err := splitExtra(data, "image_id", "segments_info")
	if err != nil {
		return err
	}
	*a = AnnotationRecord{ImageID: f.ImageID, SegmentsInfo: f.SegmentsInfo, Extra: extra}
	return nil
}

// MarshalJSON implements json.Marshaler
func (a AnnotationRecord) MarshalJSON() ([]byte, error) {
	segments := a.SegmentsInfo
	if segments == nil {
		segments = []SegmentInfo{}
	}
	return mergeExtra(annotationFields{ImageID: a.ImageID, SegmentsInfo: segments}, a.Extra)
}

// UnmarshalJSON implements json.Unmarshaler
func (s *SegmentInfo) UnmarshalJSON(data []byte) error {
	var f segmentFields
	if err := json.Unmarshal(data, &f); err != nil {
		return fmt.Errorf("segment info: %w", err)
	}
	extra, err := splitExtra(data, "id", "bbox")
	if err != nil {
		return err
	}
	*s = SegmentInfo{ID: f.ID, BBox: f.BBox, Extra: extra}
	return nil
}

// MarshalJSON implements json.Marshaler
func (s SegmentInfo) MarshalJSON() ([]byte, error) {
	return mergeExtra(segmentFields{ID: s.ID, BBox: s.BBox}, s.Extra)
}
