// Package resizer drives a dataset-wide resize: for every image it gathers the
// boxes, plans the resize, runs the pixel transform and writes the new boxes
// back into the annotation records.
package resizer

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log"
	"path/filepath"
	"strings"

	"github.com/menta2k/dataset-resizer/internal/utils"
	"github.com/menta2k/dataset-resizer/pkg/coco"
	"github.com/menta2k/dataset-resizer/pkg/geometry"
	"github.com/menta2k/dataset-resizer/pkg/index"
	"github.com/menta2k/dataset-resizer/pkg/selection"
	"github.com/menta2k/dataset-resizer/pkg/transform"
	"github.com/menta2k/dataset-resizer/pkg/types"
)

// Pipeline reads, transforms and writes image pixels
type Pipeline interface {
	transform.Transformer
	LoadImage(path string) (image.Image, error)
	SaveImage(img image.Image, path string, enc types.EncodeConfig) error
}

type overlayer interface {
	CreateDebugOverlay(img image.Image, boxes []geometry.Box, plan geometry.Plan) image.Image
}

// Options configures a Resizer
type Options struct {
	ImagesDir       string
	OutputImagesDir string
	Target          types.Size
	Encode          types.EncodeConfig

	// InputExtension, when set, is the extension source images carry on disk
	// regardless of the one recorded in the annotation file.
	InputExtension string

	// ForceTargetDimensions also stamps the target size on skipped and failed
	// images, as the original tool did. Each such overwrite is logged.
	ForceTargetDimensions bool

	DebugOverlay bool
	DebugDir     string
}

// Resizer processes the images of a dataset one at a time
type Resizer struct {
	opts     Options
	pipeline Pipeline
	selector selection.Predicate
	logger   *log.Logger
}

// New creates a Resizer. A nil selector selects every image and a nil logger uses log.Default().
func New(opts Options, pipeline Pipeline, selector selection.Predicate, logger *log.Logger) (*Resizer, error) {
	if !opts.Target.Valid() {
		return nil, fmt.Errorf("%w: target size must be positive, got %dx%d",
			types.ErrInvalidConfig, opts.Target.Width, opts.Target.Height)
	}
	if pipeline == nil {
		return nil, fmt.Errorf("%w: no image pipeline", types.ErrInvalidConfig)
	}
	if selector == nil {
		selector = selection.All()
	}
	if logger == nil {
		logger = log.Default()
	}
	opts.InputExtension = strings.ToLower(opts.InputExtension)
	if opts.DebugOverlay && opts.DebugDir == "" {
		opts.DebugDir = filepath.Join(opts.OutputImagesDir, "debug")
	}
	return &Resizer{opts: opts, pipeline: pipeline, selector: selector, logger: logger}, nil
}

// Run resizes every image of ds and rewrites ds in place. Per-image failures
// are recorded in the report and do not stop the run; only cancellation of
// ctx aborts it.
func (r *Resizer) Run(ctx context.Context, ds *coco.Dataset) (*Report, error) {
	if ds == nil {
		return nil, fmt.Errorf("%w: nil dataset", types.ErrMalformedDataset)
	}

	r.logger.Printf("Building indexes for %d annotations...", len(ds.Annotations))
	idx := index.Build(ds.Annotations)
	r.logger.Printf("Indexes built: %d images, %d segments", len(idx.Images), len(idx.Segments))

	report := &Report{Images: make([]ImageResult, 0, len(ds.Images))}
	for i := range ds.Images {
		if err := ctx.Err(); err != nil {
			return report, err
		}

		img := &ds.Images[i]
		res := r.processImage(ds, idx, img)
		r.stampDimensions(img, res)
		report.add(res)
	}

	return report, nil
}

func (r *Resizer) stampDimensions(img *coco.ImageRecord, res ImageResult) {
	w, h := r.opts.Target.Width, r.opts.Target.Height
	if res.State != Written {
		if !r.opts.ForceTargetDimensions {
			return
		}
		if img.Width != w || img.Height != h {
			r.logger.Printf("WARNING: image %d (%s) was %s but its recorded size %dx%d is overwritten with %dx%d",
				img.ID, img.FileName, res.State, img.Width, img.Height, w, h)
		}
	}
	img.Width = w
	img.Height = h
}

func (r *Resizer) processImage(ds *coco.Dataset, idx *index.Index, img *coco.ImageRecord) ImageResult {
	res := ImageResult{ImageID: img.ID, FileName: img.FileName, State: Pending}
	src := r.sourcePath(img.FileName)

	d := r.selector.Select(src)
	if !d.Selected {
		res.State = Skipped
		res.Reason = d.Reason
		r.logger.Printf("Skipping image file %s: %s", img.FileName, d.Reason)
		return res
	}
	res.State = Selected
	r.logger.Printf("Processing image file %s and its bounding boxes...", img.FileName)

	var segments []coco.SegmentInfo
	if pos, ignored, ok := idx.FirstRecordForImage(img.ID); ok {
		segments = ds.Annotations[pos].SegmentsInfo
		res.IgnoredGroups = ignored
		if ignored > 0 {
			r.logger.Printf("Image %d has %d more annotation records; only the first is used", img.ID, ignored)
		}
	}

	// Resolve every owner before touching pixels so a malformed dataset leaves
	// this image's annotations as they were.
	boxes := make([]geometry.Box, len(segments))
	owners := make([]*coco.SegmentInfo, len(segments))
	for j := range segments {
		owner, err := resolveOwner(ds, idx, segments[j].ID)
		if err != nil {
			return r.fail(res, img, err)
		}
		boxes[j] = segments[j].Corners()
		owners[j] = owner
	}
	res.Boxes = len(boxes)

	plan, err := geometry.PlanResize(img.Width, img.Height, r.opts.Target.Width, r.opts.Target.Height)
	if err != nil {
		return r.fail(res, img, err)
	}
	res.Plan = &plan
	if plan.ScaledW > plan.TargetW || plan.ScaledH > plan.TargetH {
		r.logger.Printf("WARNING: image %d scales to %dx%d, larger than the %dx%d canvas; the overflow is cut off",
			img.ID, plan.ScaledW, plan.ScaledH, plan.TargetW, plan.TargetH)
	}

	pixels, err := r.pipeline.LoadImage(src)
	if err != nil {
		return r.fail(res, img, fmt.Errorf("%w: reading %s: %v", types.ErrIO, src, err))
	}
	if b := pixels.Bounds(); b.Dx() != img.Width || b.Dy() != img.Height {
		r.logger.Printf("WARNING: image %d decoded as %dx%d but is recorded as %dx%d; boxes follow the recorded size",
			img.ID, b.Dx(), b.Dy(), img.Width, img.Height)
	}

	out, outBoxes, err := r.pipeline.Apply(pixels, boxes, plan)
	if err != nil {
		return r.fail(res, img, fmt.Errorf("transform failed: %w", err))
	}
	if len(outBoxes) != len(boxes) {
		return r.fail(res, img, fmt.Errorf("transform returned %d boxes for %d inputs", len(outBoxes), len(boxes)))
	}
	res.State = Transformed

	dst := utils.OutputImagePath(r.opts.OutputImagesDir, img.FileName, r.opts.Encode.Format)
	if err := utils.EnsureDir(filepath.Dir(dst)); err != nil {
		return r.fail(res, img, fmt.Errorf("%w: creating %s: %v", types.ErrIO, filepath.Dir(dst), err))
	}
	r.logger.Printf("Writing resized image %s ...", dst)
	if err := r.pipeline.SaveImage(out, dst, r.opts.Encode); err != nil {
		return r.fail(res, img, fmt.Errorf("%w: writing %s: %v", types.ErrIO, dst, err))
	}

	for j, owner := range owners {
		owner.SetCorners(outBoxes[j].Clamp(r.opts.Target.Width, r.opts.Target.Height))
	}
	res.State = Written
	res.OutputPath = dst

	if r.opts.DebugOverlay {
		r.writeOverlay(out, outBoxes, plan, img)
	}
	return res
}

// sourcePath locates the pixels of a dataset file reference under ImagesDir
func (r *Resizer) sourcePath(fileRef string) string {
	if ext := r.opts.InputExtension; ext != "" && utils.GetFileExtension(fileRef) != ext {
		fileRef = utils.ReplaceExtension(fileRef, ext)
	}
	return filepath.Join(r.opts.ImagesDir, filepath.FromSlash(fileRef))
}

func resolveOwner(ds *coco.Dataset, idx *index.Index, segmentID int64) (*coco.SegmentInfo, error) {
	pos, err := idx.LookupRecordForSegment(segmentID)
	if err != nil {
		return nil, err
	}
	if pos < 0 || pos >= len(ds.Annotations) {
		return nil, fmt.Errorf("%w: segment %d points at record %d of %d",
			types.ErrMalformedDataset, segmentID, pos, len(ds.Annotations))
	}
	owner := ds.Annotations[pos].Segment(segmentID)
	if owner == nil {
		return nil, fmt.Errorf("%w: record %d does not contain segment %d",
			types.ErrMalformedDataset, pos, segmentID)
	}
	return owner, nil
}

func (r *Resizer) fail(res ImageResult, img *coco.ImageRecord, err error) ImageResult {
	res.State = Failed
	res.Err = err
	res.Error = err.Error()
	kind := "error"
	switch {
	case errors.Is(err, types.ErrMalformedDataset):
		kind = "malformed dataset"
	case errors.Is(err, types.ErrIO):
		kind = "i/o failure"
	}
	r.logger.Printf("Failed to process image %d (%s), %s: %v", img.ID, img.FileName, kind, err)
	return res
}

func (r *Resizer) writeOverlay(out image.Image, boxes []geometry.Box, plan geometry.Plan, img *coco.ImageRecord) {
	ov, ok := r.pipeline.(overlayer)
	if !ok {
		return
	}
	path := utils.OutputImagePath(r.opts.DebugDir, img.FileName, "png")
	if err := utils.EnsureDir(filepath.Dir(path)); err != nil {
		r.logger.Printf("debug overlay for %s failed: %v", img.FileName, err)
		return
	}
	dbg := ov.CreateDebugOverlay(out, boxes, plan)
	if err := r.pipeline.SaveImage(dbg, path, types.EncodeConfig{Format: "png"}); err != nil {
		r.logger.Printf("debug overlay for %s failed: %v", img.FileName, err)
		return
	}
	r.logger.Printf("wrote %s", path)
}
