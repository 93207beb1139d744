// Package records provides the schema-less, insertion-ordered record type that
// flows through the reconciliation pipeline.
//
// Every source produces records whose fields carry a source prefix
// (for example "sansad_name"). Values are a small closed variant: a string,
// a number, or absent. Nested structures supplied by collaborators are kept as
// their JSON text inside a string value.
package records

import (
	"encoding/json"
	"strconv"
)

// Kind identifies the variant held by a Value.
type Kind uint8

const (
	// KindAbsent marks a field with no value.
	KindAbsent Kind = iota
	// KindString marks a text value.
	KindString
	// KindNumber marks a numeric value.
	KindNumber
)

// String returns the name of the kind.
func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindNumber:
		return "number"
	default:
		return "absent"
	}
}

// Value is a single field value.
type Value struct {
	kind Kind
	str  string
	num  float64
}

// Absent returns the absent value.
func Absent() Value {
	return Value{}
}

// String returns a text value.
func String(s string) Value {
	return Value{kind: KindString, str: s}
}

// Number returns a numeric value.
func Number(n float64) Value {
	return Value{kind: KindNumber, num: n}
}

// Kind returns the variant held by v.
func (v Value) Kind() Kind {
	return v.kind
}

// IsAbsent reports whether v holds no value.
func (v Value) IsAbsent() bool {
	return v.kind == KindAbsent
}

// IsEmpty reports whether v is absent or an empty string.
func (v Value) IsEmpty() bool {
	return v.kind == KindAbsent || (v.kind == KindString && v.str == "")
}

// Text renders the value as text. Absent renders as "" and numbers use the
// shortest representation that round-trips.
func (v Value) Text() string {
	switch v.kind {
	case KindString:
		return v.str
	case KindNumber:
		return strconv.FormatFloat(v.num, 'f', -1, 64)
	default:
		return ""
	}
}

// Float returns the numeric value. Strings are parsed when possible.
func (v Value) Float() (float64, bool) {
	switch v.kind {
	case KindNumber:
		return v.num, true
	case KindString:
		f, err := strconv.ParseFloat(v.str, 64)
		if err != nil {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}

// Equal reports whether two values hold the same variant and content.
func (v Value) Equal(other Value) bool {
	return v == other
}

// MarshalJSON encodes absent as null, strings as JSON strings and numbers as JSON numbers.
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case KindString:
		return json.Marshal(v.str)
	case KindNumber:
		return json.Marshal(v.num)
	default:
		return []byte("null"), nil
	}
}

// MarshalYAML encodes the value as its natural scalar.
func (v Value) MarshalYAML() (any, error) {
	switch v.kind {
	case KindString:
		return v.str, nil
	case KindNumber:
		return v.num, nil
	default:
		return nil, nil
	}
}

// FromAny converts a decoded JSON/YAML scalar or structure into a Value.
// Maps and slices are kept as their JSON text.
func FromAny(x any) Value {
	switch t := x.(type) {
	case nil:
		return Absent()
	case string:
		return String(t)
	case bool:
		return String(strconv.FormatBool(t))
	case float64:
		return Number(t)
	case float32:
		return Number(float64(t))
	case int:
		return Number(float64(t))
	case int64:
		return Number(float64(t))
	case uint64:
		return Number(float64(t))
	case json.Number:
		if f, err := t.Float64(); err == nil {
			return Number(f)
		}
		return String(t.String())
	default:
		data, err := json.Marshal(t)
		if err != nil {
			return Absent()
		}
		return String(string(data))
	}
}
