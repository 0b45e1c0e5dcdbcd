// Package selection decides which dataset images a run transforms.
package selection

import (
	"fmt"
	"path"
	"path/filepath"
	"strconv"
	"strings"
)

// Decision is the outcome of a predicate for one image
type Decision struct {
	Selected bool
	Reason   string
}

// Predicate decides whether the image at fileRef should be transformed
type Predicate interface {
	Select(fileRef string) Decision
}

// PredicateFunc adapts a plain function to Predicate
type PredicateFunc func(fileRef string) Decision

// Select calls f(fileRef)
func (f PredicateFunc) Select(fileRef string) Decision {
	return f(fileRef)
}

// All selects every image
func All() Predicate {
	return PredicateFunc(func(string) Decision {
		return Decision{Selected: true}
	})
}

// SubsetThreshold selects images by subset and numeric id.
//
// The subset tag is the name of the directory that directly contains the
// file, and the numeric id is the file name without its extension. An image
// is selected when its subset has a threshold and its id does not exceed it.
type SubsetThreshold struct {
	Thresholds map[string]int64
}

// ReferenceThresholds returns the per-subset limits used to prepare the COCO
// 2017 panoptic subsets
func ReferenceThresholds() map[string]int64 {
	return map[string]int64{
		"panoptic_val2017":   20247,
		"panoptic_train2017": 24609,
	}
}

// Select implements Predicate
func (s SubsetThreshold) Select(fileRef string) Decision {
	subset, id, err := SplitFileRef(fileRef)
	if err != nil {
		return Decision{Reason: err.Error()}
	}

	limit, ok := s.Thresholds[subset]
	if !ok {
		return Decision{Reason: fmt.Sprintf("subset %q has no threshold", subset)}
	}
	if id > limit {
		return Decision{Reason: fmt.Sprintf("id %d above %s threshold %d", id, subset, limit)}
	}
	return Decision{Selected: true}
}

// SplitFileRef extracts the subset tag and numeric id from a path such as
// "panoptic_val2017/000000000139.png"
func SplitFileRef(fileRef string) (subset string, id int64, err error) {
	dir, name := path.Split(path.Clean(filepath.ToSlash(fileRef)))
	if dir = strings.TrimSuffix(dir, "/"); dir != "" {
		subset = path.Base(dir)
	}

	stem := strings.TrimSuffix(name, path.Ext(name))
	id, err = strconv.ParseInt(stem, 10, 64)
	if err != nil {
		return subset, 0, fmt.Errorf("file name %q has no numeric id", name)
	}
	return subset, id, nil
}

// ParseThreshold parses a "subset=limit" pair
func ParseThreshold(s string) (string, int64, error) {
	name, value, ok := strings.Cut(s, "=")
	name = strings.TrimSpace(name)
	if !ok || name == "" {
		return "", 0, fmt.Errorf("threshold %q must look like subset=limit", s)
	}
	limit, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64)
	if err != nil {
		return "", 0, fmt.Errorf("threshold %q: %w", s, err)
	}
	return name, limit, nil
}

// FromThresholds returns All when thresholds is empty and a SubsetThreshold otherwise
func FromThresholds(thresholds map[string]int64) Predicate {
	if len(thresholds) == 0 {
		return All()
	}
	return SubsetThreshold{Thresholds: thresholds}
}
