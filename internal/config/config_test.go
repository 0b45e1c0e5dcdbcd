package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/menta2k/dataset-resizer/pkg/types"
)

func validConfig() *Config {
	c := Default()
	c.Paths = PathsConfig{
		ImagesDir:             "images",
		AnnotationsFile:       "ann.json",
		OutputAnnotationsFile: "out.json",
		OutputImagesDir:       "out",
	}
	return c
}

func TestDefault(t *testing.T) {
	c := Default()
	if c.Target.Width != 640 || c.Target.Height != 640 {
		t.Errorf("Expected 640x640 default target, got %dx%d", c.Target.Width, c.Target.Height)
	}
	if c.Output.Format != "png" {
		t.Errorf("Expected png default format, got %s", c.Output.Format)
	}
	if !c.Resizer.ForceTargetDimensions {
		t.Error("Expected ForceTargetDimensions to be true by default")
	}
}

func TestValidate(t *testing.T) {
	if err := validConfig().Validate(); err != nil {
		t.Fatalf("Valid config failed validation: %v", err)
	}

	tests := []struct {
		name   string
		mutate func(c *Config)
	}{
		{"zero width", func(c *Config) { c.Target.Width = 0 }},
		{"negative height", func(c *Config) { c.Target.Height = -5 }},
		{"missing images dir", func(c *Config) { c.Paths.ImagesDir = "" }},
		{"missing annotations", func(c *Config) { c.Paths.AnnotationsFile = "" }},
		{"missing output annotations", func(c *Config) { c.Paths.OutputAnnotationsFile = "" }},
		{"missing output images", func(c *Config) { c.Paths.OutputImagesDir = "" }},
		{"bad format", func(c *Config) { c.Output.Format = "bmp" }},
		{"bad quality", func(c *Config) { c.Output.Quality = 0 }},
		{"bad pad color", func(c *Config) { c.Processing.PadColor = [3]int{0, 300, 0} }},
		{"dotted input extension", func(c *Config) { c.Paths.InputExtension = ".png" }},
		{"input extension with path", func(c *Config) { c.Paths.InputExtension = "x/png" }},
		{"negative threshold", func(c *Config) { c.Selection.Thresholds = map[string]int64{"val": -1} }},
	}

	for _, test := range tests {
		c := validConfig()
		test.mutate(c)
		err := c.Validate()
		if !errors.Is(err, types.ErrInvalidConfig) {
			t.Errorf("%s: expected ErrInvalidConfig, got %v", test.name, err)
		}
	}
}

func TestValidateProcessing(t *testing.T) {
	c := Default()
	if err := c.ValidateProcessing(); err != nil {
		t.Fatalf("Default processing settings failed validation: %v", err)
	}

	for _, pc := range [][3]int{{-1, 0, 0}, {0, 0, 256}} {
		c.Processing.PadColor = pc
		if err := c.ValidateProcessing(); !errors.Is(err, types.ErrInvalidConfig) {
			t.Errorf("PadColor %v: expected ErrInvalidConfig, got %v", pc, err)
		}
	}
}

func TestValidateInputExtension(t *testing.T) {
	c := validConfig()
	c.Paths.InputExtension = "png"
	if err := c.Validate(); err != nil {
		t.Errorf("Expected png input extension to be valid, got %v", err)
	}
}

func TestSaveAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cfg", "config.json")

	c := validConfig()
	c.Target = TargetConfig{Width: 300, Height: 200}
	c.Selection.Thresholds = map[string]int64{"panoptic_val2017": 20247}
	if err := c.SaveToFile(path); err != nil {
		t.Fatalf("SaveToFile failed: %v", err)
	}

	loaded, err := LoadFromFile(path)
	if err != nil {
		t.Fatalf("LoadFromFile failed: %v", err)
	}
	if loaded.Target.Width != 300 || loaded.Target.Height != 200 {
		t.Errorf("Expected 300x200, got %dx%d", loaded.Target.Width, loaded.Target.Height)
	}
	if loaded.Selection.Thresholds["panoptic_val2017"] != 20247 {
		t.Errorf("Expected threshold to survive, got %v", loaded.Selection.Thresholds)
	}
}

func TestLoadFromFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "partial.json")
	if err := os.WriteFile(path, []byte(`{"target": {"width": 512, "height": 384}}`), 0o644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	c, err := LoadFromFile(path)
	if err != nil {
		t.Fatalf("LoadFromFile failed: %v", err)
	}
	if c.Target.Width != 512 || c.Target.Height != 384 {
		t.Errorf("Expected 512x384, got %dx%d", c.Target.Width, c.Target.Height)
	}
	if c.Output.Format != "png" || c.Processing.Filter != "lanczos" {
		t.Errorf("Expected defaults for unset fields, got format=%s filter=%s", c.Output.Format, c.Processing.Filter)
	}
}

func TestLoadFromFileErrors(t *testing.T) {
	dir := t.TempDir()
	if _, err := LoadFromFile(filepath.Join(dir, "missing.json")); err == nil {
		t.Error("Expected error for missing file")
	}

	path := filepath.Join(dir, "bad.json")
	if err := os.WriteFile(path, []byte("{"), 0o644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
	if _, err := LoadFromFile(path); err == nil {
		t.Error("Expected error for malformed file")
	}
}

func TestGetConfigPath(t *testing.T) {
	if GetConfigPath() == "" {
		t.Error("Expected a config path")
	}
}
