package coco

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// Load reads an annotation file from disk
func Load(path string) (*Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open annotations file: %w", err)
	}
	defer f.Close()

	ds, err := Decode(bufio.NewReader(f))
	if err != nil {
		return nil, fmt.Errorf("failed to parse annotations file %s: %w", path, err)
	}
	return ds, nil
}

// Decode reads an annotation file from a reader
func Decode(r io.Reader) (*Dataset, error) {
	var ds Dataset
	if err := json.NewDecoder(r).Decode(&ds); err != nil {
		return nil, err
	}
	return &ds, nil
}

// Encode writes the dataset as a single JSON document
func (d *Dataset) Encode(w io.Writer) error {
	data, err := json.Marshal(d)
	if err != nil {
		return fmt.Errorf("failed to marshal annotations: %w", err)
	}
	_, err = w.Write(data)
	return err
}

// Save writes the dataset to path. The file is written to a temporary name in
// the same directory and renamed into place, so path is either the complete
// new document or untouched.
func (d *Dataset) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create annotations directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temporary annotations file: %w", err)
	}
	defer os.Remove(tmp.Name())

	w := bufio.NewWriter(tmp)
	if err := d.Encode(w); err != nil {
		tmp.Close()
		return err
	}
	if err := w.Flush(); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write annotations file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write annotations file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to write annotations file: %w", err)
	}
	return nil
}
