package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strings"
	"syscall"

	datasetresizer "github.com/menta2k/dataset-resizer"
	"github.com/menta2k/dataset-resizer/internal/config"
	"github.com/menta2k/dataset-resizer/internal/utils"
	"github.com/menta2k/dataset-resizer/pkg/selection"
)

// thresholdFlags collects repeated -subset name=limit flags
type thresholdFlags map[string]int64

func (t thresholdFlags) String() string {
	parts := make([]string, 0, len(t))
	for name, limit := range t {
		parts = append(parts, fmt.Sprintf("%s=%d", name, limit))
	}
	sort.Strings(parts)
	return strings.Join(parts, ",")
}

func (t thresholdFlags) Set(s string) error {
	name, limit, err := selection.ParseThreshold(s)
	if err != nil {
		return err
	}
	t[name] = limit
	return nil
}

func main() {
	var imagesDir, annFile, outAnn, outImg, inputExt string
	var width, height int
	var configPath, saveConfig, reportPath string
	var format, resampler, filter string
	var quality int
	var lossless, debug, referenceThresholds, keepSkippedDims bool
	subsets := thresholdFlags{}

	flag.StringVar(&imagesDir, "images", "", "directory holding the images referenced in the annotations file")
	flag.StringVar(&imagesDir, "i", "", "shorthand for -images")
	flag.StringVar(&annFile, "annotations", "", "COCO JSON annotations file")
	flag.StringVar(&annFile, "a", "", "shorthand for -annotations")
	flag.IntVar(&width, "width", 0, "target image width")
	flag.IntVar(&width, "w", 0, "shorthand for -width")
	flag.IntVar(&height, "height", 0, "target image height")
	flag.IntVar(&height, "t", 0, "shorthand for -height")
	flag.StringVar(&outAnn, "output-ann", "", "output annotations file")
	flag.StringVar(&outAnn, "o", "", "shorthand for -output-ann")
	flag.StringVar(&outImg, "output-img", "", "output images directory")
	flag.StringVar(&outImg, "f", "", "shorthand for -output-img")
	flag.StringVar(&inputExt, "input-ext", "", "read source images with this extension instead of the recorded one (png for panoptic masks)")

	flag.StringVar(&configPath, "config", "", "JSON config file (flags override its values)")
	flag.StringVar(&saveConfig, "save-config", "", "write the effective config to this file and exit")
	flag.StringVar(&reportPath, "report", "", "write a JSON run report to this file")

	flag.StringVar(&format, "format", "", "output image format: png|jpg|webp (default png)")
	flag.IntVar(&quality, "quality", 0, "JPEG/WebP output quality (1-100)")
	flag.BoolVar(&lossless, "lossless", false, "WebP output lossless mode")
	flag.StringVar(&resampler, "resampler", "", "resampling backend: imaging|nfnt|xdraw")
	flag.StringVar(&filter, "filter", "", "resampling filter, e.g. lanczos, catmullrom, linear, nearest")

	flag.Var(subsets, "subset", "only process images of subset with id <= limit, as name=limit (repeatable)")
	flag.BoolVar(&referenceThresholds, "reference-thresholds", false, "use the COCO 2017 panoptic subset limits")
	flag.BoolVar(&keepSkippedDims, "keep-skipped-dims", false, "keep the recorded size of skipped and failed images")
	flag.BoolVar(&debug, "debug", false, "write debug overlays with the transformed boxes")

	flag.Parse()

	cfg := datasetresizer.DefaultConfig()
	if configPath != "" {
		loaded, err := config.LoadFromFile(configPath)
		if err != nil {
			log.Fatal(err)
		}
		cfg = loaded
	}

	set := map[string]bool{}
	flag.Visit(func(f *flag.Flag) { set[f.Name] = true })
	given := func(names ...string) bool {
		for _, n := range names {
			if set[n] {
				return true
			}
		}
		return false
	}

	if given("images", "i") {
		cfg.Paths.ImagesDir = imagesDir
	}
	if given("annotations", "a") {
		cfg.Paths.AnnotationsFile = annFile
	}
	if given("output-ann", "o") {
		cfg.Paths.OutputAnnotationsFile = outAnn
	}
	if given("output-img", "f") {
		cfg.Paths.OutputImagesDir = outImg
	}
	if given("input-ext") {
		cfg.Paths.InputExtension = inputExt
	}
	if given("width", "w") {
		cfg.Target.Width = width
	}
	if given("height", "t") {
		cfg.Target.Height = height
	}
	if given("format") {
		cfg.Output.Format = format
	}
	if given("quality") {
		cfg.Output.Quality = quality
	}
	if given("lossless") {
		cfg.Output.Lossless = lossless
	}
	if given("resampler") {
		cfg.Processing.Resampler = resampler
		if !given("filter") {
			cfg.Processing.Filter = ""
		}
	}
	if given("filter") {
		cfg.Processing.Filter = filter
	}
	if given("debug") {
		cfg.Output.DebugOverlay = debug
	}
	if keepSkippedDims {
		cfg.Resizer.ForceTargetDimensions = false
	}

	if cfg.Selection.Thresholds == nil {
		cfg.Selection.Thresholds = map[string]int64{}
	}
	if referenceThresholds {
		for name, limit := range selection.ReferenceThresholds() {
			cfg.Selection.Thresholds[name] = limit
		}
	}
	for name, limit := range subsets {
		cfg.Selection.Thresholds[name] = limit
	}

	if saveConfig != "" {
		if err := cfg.SaveToFile(saveConfig); err != nil {
			log.Fatal(err)
		}
		log.Printf("wrote %s", saveConfig)
		return
	}

	if err := cfg.Validate(); err != nil {
		log.Fatalf("usage: %s -i images_dir -a annotations.json -w width -t height -o output.json -f output_dir [-config cfg.json]: %v",
			filepath.Base(os.Args[0]), err)
	}

	r, err := datasetresizer.NewWithConfig(cfg, log.Default())
	if err != nil {
		log.Fatal(err)
	}
	log.Printf("target=%dx%d resampler=%s format=%s", cfg.Target.Width, cfg.Target.Height, r.ResamplerName(), cfg.Output.Format)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	report, err := r.ResizeDataset(ctx)
	if err != nil {
		log.Fatal(err)
	}

	if info, err := os.Stat(cfg.Paths.OutputAnnotationsFile); err == nil {
		log.Printf("wrote %s (%s)", cfg.Paths.OutputAnnotationsFile, utils.FormatFileSize(info.Size()))
	}
	if report.IgnoredGroups > 0 {
		log.Printf("%d extra annotation records were ignored (only the first record per image is used)", report.IgnoredGroups)
	}

	if reportPath != "" {
		js, err := json.MarshalIndent(report, "", "  ")
		if err != nil {
			log.Fatal(err)
		}
		if err := os.WriteFile(reportPath, js, 0o644); err != nil {
			log.Fatal(err)
		}
		log.Printf("wrote %s", reportPath)
	}
}
