package callbacks

import (
	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Info describes one registered callback
type Info struct {
	ID     string `json:"id"`
	Source string `json:"source"`
}

// Snapshot is a point-in-time copy of a registry's contents, keyed by method
type Snapshot struct {
	Before map[string][]Info `json:"before"`
	After  map[string][]Info `json:"after"`
}

// Phase returns the entries of one phase
func (s Snapshot) Phase(phase Phase) map[string][]Info {
	if phase == Before {
		return s.Before
	}
	return s.After
}

// Count returns the number of callbacks across both phases
func (s Snapshot) Count() int {
	n := 0
	for _, infos := range s.Before {
		n += len(infos)
	}
	for _, infos := range s.After {
		n += len(infos)
	}
	return n
}

// JSON renders the snapshot for debugging output
func (s Snapshot) JSON() ([]byte, error) {
	return json.MarshalIndent(s, "", "  ")
}
