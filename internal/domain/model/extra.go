package model

import (
	"encoding/json"
	"strings"
)

// extraMembers returns the members of the JSON object in data whose keys
// match none of known. It returns nil when there are none.
func extraMembers(data []byte, known ...string) (map[string]json.RawMessage, error) {
	var all map[string]json.RawMessage
	if err := json.Unmarshal(data, &all); err != nil {
		return nil, err
	}
	for key := range all {
		for _, k := range known {
			if strings.EqualFold(key, k) {
				delete(all, key)
				break
			}
		}
	}
	if len(all) == 0 {
		return nil, nil
	}
	return all, nil
}

// withExtra adds extra members to the encoded object in data. Members
// already present in data are kept.
func withExtra(data []byte, extra map[string]json.RawMessage) ([]byte, error) {
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
