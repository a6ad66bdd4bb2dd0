package fields

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Map is an insertion-ordered mapping of field path to Value. It marshals
// as a JSON object whose keys keep their insertion order, which is how the
// rendered page decides section ordering.
type Map struct {
	keys   []string
	values map[string]Value
}

// NewMap returns an empty Map.
func NewMap() *Map {
	return &Map{values: map[string]Value{}}
}

// Set stores a value under path, appending the path on first insert.
func (m *Map) Set(path string, value Value) {
	if m.values == nil {
		m.values = map[string]Value{}
	}
	if _, ok := m.values[path]; !ok {
		m.keys = append(m.keys, path)
	}
	m.values[path] = value
}

// Get returns the value stored under path.
func (m *Map) Get(path string) (Value, bool) {
	if m == nil || m.values == nil {
		return Value{}, false
	}
	value, ok := m.values[path]
	return value, ok
}

// Delete removes path from the map.
func (m *Map) Delete(path string) {
	if m == nil || m.values == nil {
		return
	}
	if _, ok := m.values[path]; !ok {
		return
	}
	delete(m.values, path)
	for i, key := range m.keys {
		if key == path {
			m.keys = append(m.keys[:i], m.keys[i+1:]...)
			break
		}
	}
}

// Keys returns the field paths in insertion order.
func (m *Map) Keys() []string {
	if m == nil {
		return nil
	}
	out := make([]string, len(m.keys))
	copy(out, m.keys)
	return out
}

// Len returns the number of stored fields.
func (m *Map) Len() int {
	if m == nil {
		return 0
	}
	return len(m.keys)
}

// Clone returns a deep copy. Payloads are copied through JSON so the clone
// never shares nested slices or maps with the original.
func (m *Map) Clone() *Map {
	clone := NewMap()
	if m == nil {
		return clone
	}
	for _, key := range m.keys {
		value := m.values[key]
		value.Data = Normalize(value.Data)
		clone.Set(key, value)
	}
	return clone
}

// MarshalJSON encodes the map as an ordered JSON object.
func (m *Map) MarshalJSON() ([]byte, error) {
	if m == nil || len(m.keys) == 0 {
		return []byte("{}"), nil
	}
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, key := range m.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		name, err := json.Marshal(key)
		if err != nil {
			return nil, fmt.Errorf("fields: marshal key %q: %w", key, err)
		}
		buf.Write(name)
		buf.WriteByte(':')
		value, err := json.Marshal(m.values[key])
		if err != nil {
			return nil, fmt.Errorf("fields: marshal value %q: %w", key, err)
		}
		buf.Write(value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes a JSON object preserving its key order.
func (m *Map) UnmarshalJSON(data []byte) error {
	decoder := json.NewDecoder(bytes.NewReader(data))
	token, err := decoder.Token()
	if err != nil {
		return fmt.Errorf("fields: decode map: %w", err)
	}
	if delim, ok := token.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("fields: expected JSON object, got %v", token)
	}

	m.keys = nil
	m.values = map[string]Value{}
	for decoder.More() {
		keyToken, err := decoder.Token()
		if err != nil {
			return fmt.Errorf("fields: decode key: %w", err)
		}
		key, ok := keyToken.(string)
		if !ok {
			return fmt.Errorf("fields: expected string key, got %v", keyToken)
		}
		var value Value
		if err := decoder.Decode(&value); err != nil {
			return fmt.Errorf("fields: decode value %q: %w", key, err)
		}
		m.Set(key, value)
	}
	if _, err := decoder.Token(); err != nil {
		return fmt.Errorf("fields: decode map close: %w", err)
	}
	return nil
}
