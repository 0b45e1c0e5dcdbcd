package coco

import (
	"encoding/json"
)

// Extra holds JSON members the model does not interpret, keyed by name
type Extra map[string]json.RawMessage

// splitExtra returns every top-level member of the object in data except the known keys
func splitExtra(data []byte, known ...string) (Extra, error) {
	var all map[string]json.RawMessage
	if err := json.Unmarshal(data, &all); err != nil {
		return nil, err
	}
	for _, k := range known {
		delete(all, k)
	}
	if len(all) == 0 {
		return nil, nil
	}
	return Extra(all), nil
}

// mergeExtra marshals the known fields and adds the extra members that do not collide with them
func mergeExtra(known interface{}, extra Extra) ([]byte, error) {
	data, err := json.Marshal(known)
	if err != nil {
		return nil, err
	}
	if len(extra) == 0 {
		return data, nil
	}

	var all map[string]json.RawMessage
	if err := json.Unmarshal(data, &all); err != nil {
		return nil, err
	}
	for k, v := range extra {
		if _, ok := all[k]; !ok {
			all[k] = v
		}
	}
	return json.Marshal(all)
}
