package model

import "encoding/json"

// BatchItem pairs a record id with the fields to change on it.
type BatchItem struct {
	ID   int64       `json:"id"`
	Data PersonPatch `json:"data"`
}

// Statistics summarises the roster. City and country counts need not sum to
// Total when records are missing those fields. Extra holds any other
// aggregates the backend reports.
type Statistics struct {
	Total        int                        `json:"total"`
	CityStats    map[string]int             `json:"city_stats"`
	CountryStats map[string]int             `json:"country_stats"`
	Extra        map[string]json.RawMessage `json:"-"`
}

var statisticsKeys = []string{"total", "city_stats", "country_stats"} //nolint:gochecknoglobals // read-only

// UnmarshalJSON decodes the known fields and collects the rest into Extra.
func (s *Statistics) UnmarshalJSON(data []byte) error {
	type plain Statistics
	var v plain
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	extra, err := extraMembers(data, statisticsKeys...)
	if err != nil {
		return err
	}
	*s = Statistics(v)
	s.Extra = extra
	return nil
}

// MarshalJSON encodes the known fields followed by Extra.
func (s Statistics) MarshalJSON() ([]byte, error) {
	type plain Statistics
	data, err := json.Marshal(plain(s))
	if err != nil {
		return nil, err
	}
	return withExtra(data, s.Extra)
}

// DeleteResult is the backend's reply to a delete. Raw keeps the payload as
// received for callers that treat it as opaque.
type DeleteResult struct {
	Message string          `json:"message,omitempty"`
	Raw     json.RawMessage `json:"-"`
}

// UnmarshalJSON decodes the known fields and retains the raw payload.
func (r *DeleteResult) UnmarshalJSON(data []byte) error {
	type plain DeleteResult
	var v plain
	if err := json.Unmarshal(data, &v); err != nil {
		if !json.Valid(data) {
			return err
		}
		// Not the documented shape; keep it opaque.
		v = plain{}
	}
	*r = DeleteResult(v)
	r.Raw = append(json.RawMessage(nil), data...)
	return nil
}

// BatchResult is the backend's reply to a batch update. Raw keeps the
// payload as received.
type BatchResult struct {
	Updated      int             `json:"updated"`
	Created      int             `json:"created"`
	Errors       int             `json:"errors"`
	ErrorDetails []string        `json:"error_details,omitempty"`
	Raw          json.RawMessage `json:"-"`
}

// UnmarshalJSON decodes the known fields and retains the raw payload.
func (r *BatchResult) UnmarshalJSON(data []byte) error {
	type plain BatchResult
	var v plain
	if err := json.Unmarshal(data, &v); err != nil {
		if !json.Valid(data) {
			return err
		}
		// Not the documented shape; keep it opaque.
		v = plain{}
	}
	*r = BatchResult(v)
	r.Raw = append(json.RawMessage(nil), data...)
	return nil
}
