package types

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Value is a sealed interface over the dynamically typed values exchanged with
// the presentation layer. Only Null, Bool, Integer, Float, Text and Other
// implement it.
type Value interface {
	value() // Sealed

	// Bind returns the driver argument for this value.
	Bind() any
}

// Null represents SQL NULL and JSON null.
type Null struct{}

func (Null) value() {}

// Bind implements Value.
func (Null) Bind() any { return nil }

// MarshalJSON implements json.Marshaler for Null.
func (Null) MarshalJSON() ([]byte, error) {
	return []byte("null"), nil
}

// Bool is a boolean parameter. SQLite stores it as integer 0/1.
type Bool bool

func (Bool) value() {}

// Bind implements Value.
func (b Bool) Bind() any { return bool(b) }

// Integer is a 64-bit signed integer.
type Integer int64

func (Integer) value() {}

// Bind implements Value.
func (i Integer) Bind() any { return int64(i) }

// Float is a 64-bit floating point number.
type Float float64

func (Float) value() {}

// Bind implements Value.
func (f Float) Bind() any { return float64(f) }

// MarshalJSON implements json.Marshaler for Float.
// NaN and infinities have no JSON form and are emitted as null.
func (f Float) MarshalJSON() ([]byte, error) {
	v := float64(f)
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return []byte("null"), nil
	}
	return json.Marshal(v)
}

// Text is a UTF-8 string.
type Text string

func (Text) value() {}

// Bind implements Value.
func (t Text) Bind() any { return string(t) }

// Other holds structured data (arrays, objects, anything unrecognised) in its
// textual form. It is bound as text.
type Other string

func (Other) value() {}

// Bind implements Value.
func (o Other) Bind() any { return string(o) }

// FromAny classifies an arbitrary caller value into exactly one Value variant.
// It never fails: values that are not null, bool, number or string fall back
// to Other holding their textual form.
func FromAny(v any) Value {
	switch val := v.(type) {
	case nil:
		return Null{}
	case Value:
		return val
	case bool:
		return Bool(val)
	case int:
		return Integer(val)
	case int8:
		return Integer(val)
	case int16:
		return Integer(val)
	case int32:
		return Integer(val)
	case int64:
		return Integer(val)
	case uint:
		return fromUint(uint64(val))
	case uint8:
		return Integer(val)
	case uint16:
		return Integer(val)
	case uint32:
		return Integer(val)
	case uint64:
		return fromUint(val)
	case float32:
		return Float(val)
	case float64:
		return Float(val)
	case json.Number:
		return fromNumber(val)
	case string:
		return Text(val)
	default:
		return Other(textual(v))
	}
}

// FromAnySlice classifies every element of params, in order.
func FromAnySlice(params []any) []Value {
	values := make([]Value, len(params))
	for i, p := range params {
		values[i] = FromAny(p)
	}
	return values
}

// BindAll returns the driver arguments for values, in order.
func BindAll(values []Value) []any {
	args := make([]any, len(values))
	for i, v := range values {
		args[i] = v.Bind()
	}
	return args
}

// fromUint keeps unsigned integers as Integer while they fit in int64.
func fromUint(u uint64) Value {
	if u <= math.MaxInt64 {
		return Integer(int64(u))
	}
	return Float(float64(u))
}

// fromNumber mirrors the integer-first cascade used for JSON numbers:
// int64 if representable, float64 otherwise, text as the last resort.
func fromNumber(n json.Number) Value {
	if i, err := n.Int64(); err == nil {
		return Integer(i)
	}
	if f, err := strconv.ParseFloat(string(n), 64); err == nil && !math.IsInf(f, 0) {
		return Float(f)
	}
	return Text(n.String())
}

// textual renders v as compact JSON, falling back to fmt for values that
// encoding/json cannot represent (channels, functions, cyclic data).
func textual(v any) string {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return fmt.Sprintf("%v", v)
	}
	return strings.TrimSuffix(buf.String(), "\n")
}

// MarshalValue marshals a Value to JSON bytes.
// Other is emitted as a JSON string holding its textual form.
func MarshalValue(v Value) ([]byte, error) {
	switch val := v.(type) {
	case nil, Null:
		return []byte("null"), nil
	case Bool:
		return json.Marshal(bool(val))
	case Integer:
		return json.Marshal(int64(val))
	case Float:
		return val.MarshalJSON()
	case Text:
		return json.Marshal(string(val))
	case Other:
		return json.Marshal(string(val))
	default:
		return nil, fmt.Errorf("unknown Value type: %T", v)
	}
}
