package fields

import (
	"encoding/json"
	"reflect"

	"github.com/extrahand/taskpages/domain"
)

// Value is a single derivable field: the payload plus the provenance flag
// that records whether an editor customized it.
type Value struct {
	Data       any               `json:"value"`
	Provenance domain.Provenance `json:"provenance"`
}

// Derived wraps data with DERIVED provenance.
func Derived(data any) Value {
	return Value{Data: data, Provenance: domain.ProvenanceDerived}
}

// Overridden wraps data with OVERRIDDEN provenance.
func Overridden(data any) Value {
	return Value{Data: data, Provenance: domain.ProvenanceOverridden}
}

// IsOverridden reports whether an editor customized the field.
func (v Value) IsOverridden() bool {
	return v.Provenance == domain.ProvenanceOverridden
}

// String returns the payload as a string when it holds one.
func (v Value) String() (string, bool) {
	s, ok := v.Data.(string)
	return s, ok
}

// Normalize round-trips data through JSON so typed blocks and decoded
// generic values compare and substitute uniformly. Maps and slices come
// back as fresh copies, so normalized payloads never share memory with
// their source.
func Normalize(data any) any {
	if data == nil {
		return nil
	}
	switch data.(type) {
	case string, bool, float64:
		return data
	}
	encoded, err := json.Marshal(data)
	if err != nil {
		return data
	}
	var out any
	if err := json.Unmarshal(encoded, &out); err != nil {
		return data
	}
	return out
}

// Equal compares two payloads structurally, ignoring the difference between
// typed blocks and their decoded generic form.
func Equal(a, b any) bool {
	return reflect.DeepEqual(Normalize(a), Normalize(b))
}
