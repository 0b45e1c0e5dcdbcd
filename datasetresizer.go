// Package datasetresizer resizes the images of a COCO panoptic style dataset
// to a fixed canvas and rewrites the annotation file so every bounding box
// still matches its image.
//
// Basic usage:
//
//	package main
//
//	import (
//		"context"
//		"log"
//
//		datasetresizer "github.com/menta2k/dataset-resizer"
//	)
//
//	func main() {
//		cfg := datasetresizer.DefaultConfig()
//		cfg.Target.Width, cfg.Target.Height = 640, 640
//		cfg.Paths.ImagesDir = "coco"
//		cfg.Paths.AnnotationsFile = "coco/annotations/panoptic_val2017.json"
//		cfg.Paths.OutputAnnotationsFile = "out/annotations/panoptic_val2017.json"
//		cfg.Paths.OutputImagesDir = "out"
//
//		r, err := datasetresizer.NewWithConfig(cfg, nil)
//		if err != nil {
//			log.Fatal(err)
//		}
//
//		report, err := r.ResizeDataset(context.Background())
//		if err != nil {
//			log.Fatal(err)
//		}
//		log.Println(report.Summary())
//	}
//
// Each image is resized so that its longer side (height for squares) matches
// the target, then padded on the right or bottom up to the exact target size.
// Boxes go through the same scale, so they stay aligned with the pixels.
//
// The package consists of these components:
//
// 1. Coco (pkg/coco): annotation file model that preserves unknown fields
// 2. Index (pkg/index): image and segment lookup tables
// 3. Geometry (pkg/geometry): resize planning and box transform
// 4. Processing (pkg/processing): image decode, resample, pad and encode
// 5. Selection (pkg/selection): which images a run transforms
// 6. Resizer (pkg/resizer): per-image orchestration and reporting
package datasetresizer

import (
	"context"
	"fmt"
	"image/color"
	"log"
	"strings"

	"github.com/menta2k/dataset-resizer/internal/config"
	"github.com/menta2k/dataset-resizer/internal/utils"
	"github.com/menta2k/dataset-resizer/pkg/coco"
	"github.com/menta2k/dataset-resizer/pkg/geometry"
	"github.com/menta2k/dataset-resizer/pkg/processing"
	"github.com/menta2k/dataset-resizer/pkg/resizer"
	"github.com/menta2k/dataset-resizer/pkg/selection"
	"github.com/menta2k/dataset-resizer/pkg/types"
)

// Version of the dataset resizer library
const Version = "1.0.0"

// Config is the complete run configuration
type Config = config.Config

// DefaultConfig returns a configuration with default values and no paths set
func DefaultConfig() *Config {
	return config.Default()
}

// DatasetResizer provides a high-level interface for resizing a whole dataset
type DatasetResizer struct {
	config    *Config
	processor *processing.Processor
	logger    *log.Logger
}

// New creates a new DatasetResizer with default configuration
func New() *DatasetResizer {
	return &DatasetResizer{
		config:    config.Default(),
		processor: processing.NewProcessor(),
		logger:    log.Default(),
	}
}

// NewWithConfig creates a new DatasetResizer with custom configuration.
// A nil logger uses log.Default().
func NewWithConfig(cfg *Config, logger *log.Logger) (*DatasetResizer, error) {
	if cfg == nil {
		return nil, fmt.Errorf("%w: nil config", types.ErrInvalidConfig)
	}
	if logger == nil {
		logger = log.Default()
	}
	if err := cfg.ValidateProcessing(); err != nil {
		return nil, err
	}

	pc := cfg.Processing.PadColor
	proc, err := processing.NewProcessorWithConfig(processing.Config{
		Resampler: cfg.Processing.Resampler,
		Filter:    cfg.Processing.Filter,
		PadColor:  color.NRGBA{uint8(pc[0]), uint8(pc[1]), uint8(pc[2]), 255},
	})
	if err != nil {
		return nil, err
	}

	return &DatasetResizer{config: cfg, processor: proc, logger: logger}, nil
}

// Config returns the active configuration
func (d *DatasetResizer) Config() *Config {
	return d.config
}

// ResizeDataset loads the configured annotation file, resizes every selected
// image and writes the rewritten annotation file. Configuration errors and
// missing inputs fail before any image is touched, and the output annotation
// file is only written once the whole run has finished.
func (d *DatasetResizer) ResizeDataset(ctx context.Context) (*resizer.Report, error) {
	if err := d.config.Validate(); err != nil {
		return nil, err
	}
	if !utils.FileExists(d.config.Paths.AnnotationsFile) {
		return nil, fmt.Errorf("%w: annotations file %s not found", types.ErrIO, d.config.Paths.AnnotationsFile)
	}
	if !utils.DirExists(d.config.Paths.ImagesDir) {
		return nil, fmt.Errorf("%w: images directory %s not found", types.ErrIO, d.config.Paths.ImagesDir)
	}

	d.logger.Printf("Loading annotations file %s...", d.config.Paths.AnnotationsFile)
	ds, err := coco.Load(d.config.Paths.AnnotationsFile)
	if err != nil {
		return nil, err
	}
	d.logger.Printf("Annotations file loaded: %d images, %d annotations", len(ds.Images), len(ds.Annotations))

	report, err := d.Resize(ctx, ds)
	if err != nil {
		return report, err
	}

	d.logger.Printf("Writing modified annotations to %s...", d.config.Paths.OutputAnnotationsFile)
	if err := ds.Save(d.config.Paths.OutputAnnotationsFile); err != nil {
		return report, err
	}
	d.logger.Printf("Finished. %s", report.Summary())
	return report, nil
}

// Resize runs the resize over an in-memory dataset, rewriting ds in place
func (d *DatasetResizer) Resize(ctx context.Context, ds *coco.Dataset) (*resizer.Report, error) {
	r, err := resizer.New(d.options(), d.processor, selection.FromThresholds(d.config.Selection.Thresholds), d.logger)
	if err != nil {
		return nil, err
	}
	return r.Run(ctx, ds)
}

// PlanResize computes the resize plan for a source size against the configured target
func (d *DatasetResizer) PlanResize(srcW, srcH int) (geometry.Plan, error) {
	return geometry.PlanResize(srcW, srcH, d.config.Target.Width, d.config.Target.Height)
}

// ResamplerName reports the active resampling backend and filter
func (d *DatasetResizer) ResamplerName() string {
	return d.processor.ResamplerName()
}

func (d *DatasetResizer) options() resizer.Options {
	c := d.config
	return resizer.Options{
		ImagesDir:       c.Paths.ImagesDir,
		OutputImagesDir: c.Paths.OutputImagesDir,
		InputExtension:  c.Paths.InputExtension,
		Target:          types.Size{Width: c.Target.Width, Height: c.Target.Height},
		Encode: types.EncodeConfig{
			Format:   strings.ToLower(c.Output.Format),
			Quality:  c.Output.Quality,
			Lossless: c.Output.Lossless,
		},
		ForceTargetDimensions: c.Resizer.ForceTargetDimensions,
		DebugOverlay:          c.Output.DebugOverlay,
		DebugDir:              c.Output.DebugDir,
	}
}

// GetVersion returns the library version
func GetVersion() string {
	return Version
}
