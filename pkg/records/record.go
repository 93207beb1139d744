package records

import (
	"bytes"
	"encoding/json"
	"slices"
	"sort"
	"strings"
)

// Record is an insertion-ordered mapping from field name to Value.
// The zero value is an empty record ready to use.
type Record struct {
	keys   []string
	values map[string]Value
}

// New returns an empty record with room for n fields.
func New(n int) *Record {
	return &Record{
		keys:   make([]string, 0, n),
		values: make(map[string]Value, n),
	}
}

// FromPairs builds a record from alternating field names and values.
// It is mostly useful in tests.
func FromPairs(pairs ...any) *Record {
	r := New(len(pairs) / 2)
	for i := 0; i+1 < len(pairs); i += 2 {
		name, ok := pairs[i].(string)
		if !ok {
			continue
		}
		switch v := pairs[i+1].(type) {
		case Value:
			r.Set(name, v)
		default:
			r.Set(name, FromAny(v))
		}
	}
	return r
}

// Len returns the number of fields.
func (r *Record) Len() int {
	if r == nil {
		return 0
	}
	return len(r.keys)
}

// Keys returns the field names in insertion order.
func (r *Record) Keys() []string {
	if r == nil {
		return nil
	}
	return slices.Clone(r.keys)
}

// Has reports whether the field is present (an absent Value still counts as present).
func (r *Record) Has(name string) bool {
	if r == nil || r.values == nil {
		return false
	}
	_, ok := r.values[name]
	return ok
}

// Get returns the value of a field and whether it is present.
func (r *Record) Get(name string) (Value, bool) {
	if r == nil || r.values == nil {
		return Absent(), false
	}
	v, ok := r.values[name]
	return v, ok
}

// Text returns the text of a field, or "" when missing.
func (r *Record) Text(name string) string {
	v, _ := r.Get(name)
	return v.Text()
}

// FirstText returns the trimmed text of the first named field that is non-empty.
func (r *Record) FirstText(names ...string) string {
	for _, name := range names {
		if s := strings.TrimSpace(r.Text(name)); s != "" {
			return s
		}
	}
	return ""
}

// Set stores a value. Existing fields keep their position.
func (r *Record) Set(name string, v Value) {
	if r.values == nil {
		r.values = make(map[string]Value)
	}
	if _, ok := r.values[name]; !ok {
		r.keys = append(r.keys, name)
	}
	r.values[name] = v
}

// SetDefault stores a value only when the field is not present.
// It returns true if the value was stored.
func (r *Record) SetDefault(name string, v Value) bool {
	if r.Has(name) {
		return false
	}
	r.Set(name, v)
	return true
}

// Clone returns a copy that shares no state with r.
func (r *Record) Clone() *Record {
	if r == nil {
		return New(0)
	}
	c := New(len(r.keys))
	for _, k := range r.keys {
		c.Set(k, r.values[k])
	}
	return c
}

// Each calls fn for every field in insertion order.
func (r *Record) Each(fn func(name string, v Value)) {
	if r == nil {
		return
	}
	for _, k := range r.keys {
		fn(k, r.values[k])
	}
}

// Map returns the record as a plain map of texts.
func (r *Record) Map() map[string]string {
	m := make(map[string]string, r.Len())
	r.Each(func(name string, v Value) {
		m[name] = v.Text()
	})
	return m
}

// MarshalJSON encodes the record as a JSON object in insertion order.
func (r *Record) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range r.Keys() {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		val, err := r.values[k].MarshalJSON()
		if err != nil {
			return nil, err
		}
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Schema returns the sorted union of field names across records.
func Schema(recs []*Record) []string {
	seen := make(map[string]struct{})
	for _, r := range recs {
		r.Each(func(name string, _ Value) {
			seen[name] = struct{}{}
		})
	}
	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
