// Package model contains the roster records exchanged with the backend.
package model

import "encoding/json"

// Location is a point on the map in decimal degrees.
type Location struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Person is one classmate on the roster. ID is assigned by the backend and
// is left zero when creating a record. Extra holds members the backend sent
// beyond the fields below; they are written back out on encode.
type Person struct {
	ID       int64                      `json:"id,omitempty"`
	Name     string                     `json:"name"`
	City     string                     `json:"city"`
	Country  string                     `json:"country"`
	Location *Location                  `json:"location,omitempty"`
	Extra    map[string]json.RawMessage `json:"-"`
}

var personKeys = []string{"id", "name", "city", "country", "location"} //nolint:gochecknoglobals // read-only

// UnmarshalJSON decodes the known fields and collects the rest into Extra.
func (p *Person) UnmarshalJSON(data []byte) error {
	type plain Person
	var v plain
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	extra, err := extraMembers(data, personKeys...)
	if err != nil {
		return err
	}
	*p = Person(v)
	p.Extra = extra
	return nil
}

// MarshalJSON encodes the known fields followed by Extra.
func (p Person) MarshalJSON() ([]byte, error) {
	type plain Person
	data, err := json.Marshal(plain(p))
	if err != nil {
		return nil, err
	}
	return withExtra(data, p.Extra)
}

// HasLocation reports whether the record carries coordinates.
func (p Person) HasLocation() bool {
	return p.Location != nil
}

// PersonPatch holds the subset of mutable fields sent with an update.
// Nil fields are left out of the request body.
type PersonPatch struct {
	Name     *string   `json:"name,omitempty"`
	City     *string   `json:"city,omitempty"`
	Country  *string   `json:"country,omitempty"`
	Location *Location `json:"location,omitempty"`
}

// IsEmpty reports whether the patch changes nothing.
func (p PersonPatch) IsEmpty() bool {
	return p.Name == nil && p.City == nil && p.Country == nil && p.Location == nil
}

// Apply returns a copy of person with the patch fields overwritten.
func (p PersonPatch) Apply(person Person) Person {
	if p.Name != nil {
		person.Name = *p.Name
	}
	if p.City != nil {
		person.City = *p.City
	}
	if p.Country != nil {
		person.Country = *p.Country
	}
	if p.Location != nil {
		loc := *p.Location
		person.Location = &loc
	}
	return person
}

// Ptr returns a pointer to v. Handy for building patches inline.
func Ptr[T any](v T) *T {
	return &v
}
