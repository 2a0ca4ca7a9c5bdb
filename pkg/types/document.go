package types

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Document is an ordered mapping from column name to Value.
//
// Keys keep the position of their first insertion. Setting an existing key
// replaces its value, so duplicate column names resolve last-write-wins.
type Document struct {
	keys   []string
	values map[string]Value
}

// NewDocument creates an empty Document with room for n columns.
func NewDocument(n int) *Document {
	return &Document{
		keys:   make([]string, 0, n),
		values: make(map[string]Value, n),
	}
}

// DocumentFromRow zips column names with cell values.
// Extra cells without a column name are ignored.
func DocumentFromRow(columns []string, cells []Value) *Document {
	doc := NewDocument(len(columns))
	for i, col := range columns {
		if i >= len(cells) {
			doc.Set(col, Null{})
			continue
		}
		doc.Set(col, cells[i])
	}
	return doc
}

// Set assigns v to key.
func (d *Document) Set(key string, v Value) {
	if d.values == nil {
		d.values = make(map[string]Value)
	}
	if v == nil {
		v = Null{}
	}
	if _, exists := d.values[key]; !exists {
		d.keys = append(d.keys, key)
	}
	d.values[key] = v
}

// Get returns the value stored under key.
func (d *Document) Get(key string) (Value, bool) {
	v, ok := d.values[key]
	return v, ok
}

// Keys returns the column names in order.
func (d *Document) Keys() []string {
	keys := make([]string, len(d.keys))
	copy(keys, d.keys)
	return keys
}

// Len returns the number of distinct keys.
func (d *Document) Len() int {
	return len(d.keys)
}

// MarshalJSON implements json.Marshaler, preserving column order.
func (d *Document) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')

	for i, k := range d.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		keyBytes, err := json.Marshal(k)
		if err != nil {
			return nil, fmt.Errorf("marshal key %q: %w", k, err)
		}
		buf.Write(keyBytes)
		buf.WriteByte(':')

		valBytes, err := MarshalValue(d.values[k])
		if err != nil {
			return nil, fmt.Errorf("marshal value for key %q: %w", k, err)
		}
		buf.Write(valBytes)
	}

	buf.WriteByte('}')
	return buf.Bytes(), nil
}
