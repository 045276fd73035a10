package model

import "strings"

// HeaderField is one name/value pair in a Headers multi-map. Order of
// insertion is preserved so that repeated headers (e.g. Set-Cookie) round
// trip exactly as they were received.
type HeaderField struct {
	Name  string
	Value string
}

// Headers is an ordered multi-map of header fields. The zero value is an
// empty header set ready for use.
type Headers struct {
	fields []HeaderField
}

// Add appends a field, preserving any existing fields with the same name.
func (h *Headers) Add(name, value string) {
	h.fields = append(h.fields, HeaderField{Name: name, Value: value})
}

// Values returns every value stored under name, case-insensitively, in
// insertion order. Returns nil if name is absent.
func (h *Headers) Values(name string) []string {
	var out []string
	for _, f := range h.fields {
		if strings.EqualFold(f.Name, name) {
			out = append(out, f.Value)
		}
	}
	return out
}

// Get returns the first value stored under name, case-insensitively.
func (h *Headers) Get(name string) (string, bool) {
	for _, f := range h.fields {
		if strings.EqualFold(f.Name, name) {
			return f.Value, true
		}
	}
	return "", false
}

// Len returns the number of fields, counting repeats.
func (h *Headers) Len() int { return len(h.fields) }

// All returns the fields in insertion order. The caller must not mutate the
// returned slice.
func (h *Headers) All() []HeaderField { return h.fields }

// Clone returns a deep copy safe for independent mutation.
func (h Headers) Clone() Headers {
	if len(h.fields) == 0 {
		return Headers{}
	}
	cp := make([]HeaderField, len(h.fields))
	copy(cp, h.fields)
	return Headers{fields: cp}
}
