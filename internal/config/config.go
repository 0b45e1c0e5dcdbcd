package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/menta2k/dataset-resizer/pkg/types"
)

// Config holds the application configuration
type Config struct {
	Target     TargetConfig     `json:"target"`
	Paths      PathsConfig      `json:"paths"`
	Processing ProcessingConfig `json:"processing"`
	Output     OutputConfig     `json:"output"`
	Selection  SelectionConfig  `json:"selection"`
	Resizer    ResizerConfig    `json:"resizer"`
}

// TargetConfig holds the canvas every image is resized to
type TargetConfig struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// PathsConfig holds input and output locations
type PathsConfig struct {
	ImagesDir             string `json:"images_dir"`
	AnnotationsFile       string `json:"annotations_file"`
	OutputAnnotationsFile string `json:"output_annotations_file"`
	OutputImagesDir       string `json:"output_images_dir"`

	// InputExtension, when set, replaces the extension recorded in
	// images[].file_name before the source image is read. COCO panoptic
	// records name .jpg files while the masks on disk are .png.
	InputExtension string `json:"input_extension"`
}

// ProcessingConfig holds configuration for the pixel transform
type ProcessingConfig struct {
	Resampler string `json:"resampler"`
	Filter    string `json:"filter"`
	PadColor  [3]int `json:"pad_color"`
}

// OutputConfig holds configuration for output generation
type OutputConfig struct {
	Format       string `json:"format"`
	Quality      int    `json:"quality"`
	Lossless     bool   `json:"lossless"`
	DebugOverlay bool   `json:"debug_overlay"`
	DebugDir     string `json:"debug_dir"`
}

// SelectionConfig maps a subset directory name to the highest numeric image id processed in it.
// An empty map processes every image.
type SelectionConfig struct {
	Thresholds map[string]int64 `json:"thresholds"`
}

// ResizerConfig holds orchestration switches
type ResizerConfig struct {
	// ForceTargetDimensions writes the target size into every image record,
	// including images that were skipped or failed.
	ForceTargetDimensions bool `json:"force_target_dimensions"`
}

// Default returns a configuration with default values
func Default() *Config {
	return &Config{
		Target: TargetConfig{
			Width:  640,
			Height: 640,
		},
		Processing: ProcessingConfig{
			Resampler: "imaging",
			Filter:    "lanczos",
			PadColor:  [3]int{0, 0, 0},
		},
		Output: OutputConfig{
			Format:   "png",
			Quality:  95,
			Lossless: false,
		},
		Selection: SelectionConfig{
			Thresholds: map[string]int64{},
		},
		Resizer: ResizerConfig{
			ForceTargetDimensions: true,
		},
	}
}

// LoadFromFile loads configuration from a JSON file on top of the defaults
func LoadFromFile(filename string) (*Config, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := Default()
	if err := json.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return config, nil
}

// SaveToFile saves configuration to a JSON file
func (c *Config) SaveToFile(filename string) error {
	// Create directory if it doesn't exist
	dir := filepath.Dir(filename)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(filename, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Validate checks if the configuration is valid. Every error wraps types.ErrInvalidConfig.
func (c *Config) Validate() error {
	if c.Target.Width <= 0 || c.Target.Height <= 0 {
		return invalid("target size must be positive, got %dx%d", c.Target.Width, c.Target.Height)
	}

	if c.Paths.ImagesDir == "" {
		return invalid("paths.images_dir is required")
	}
	if c.Paths.AnnotationsFile == "" {
		return invalid("paths.annotations_file is required")
	}
	if c.Paths.OutputAnnotationsFile == "" {
		return invalid("paths.output_annotations_file is required")
	}
	if c.Paths.OutputImagesDir == "" {
		return invalid("paths.output_images_dir is required")
	}

	switch strings.ToLower(c.Output.Format) {
	case "png", "jpg", "jpeg", "webp":
	default:
		return invalid("output.format must be png, jpg or webp, got %q", c.Output.Format)
	}

	if c.Output.Quality < 1 || c.Output.Quality > 100 {
		return invalid("output.quality must be between 1 and 100")
	}

	if ext := c.Paths.InputExtension; ext != "" && strings.ContainsAny(ext, `./\`) {
		return invalid("paths.input_extension must be a bare extension such as png, got %q", ext)
	}

	if err := c.ValidateProcessing(); err != nil {
		return err
	}

	for name, limit := range c.Selection.Thresholds {
		if name == "" {
			return invalid("selection.thresholds has an empty subset name")
		}
		if limit < 0 {
			return invalid("selection.thresholds[%s] must not be negative", name)
		}
	}

	return nil
}

// ValidateProcessing checks only the pixel transform settings. Errors wrap types.ErrInvalidConfig.
func (c *Config) ValidateProcessing() error {
	for i, v := range c.Processing.PadColor {
		if v < 0 || v > 255 {
			return invalid("processing.pad_color[%d] must be between 0 and 255, got %d", i, v)
		}
	}
	return nil
}

// GetConfigPath returns the default configuration file path
func GetConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "./config.json"
	}
	return filepath.Join(home, ".config", "dataset-resizer", "config.json")
}

func invalid(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", types.ErrInvalidConfig, fmt.Sprintf(format, args...))
}
