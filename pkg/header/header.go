// Package header parses raw HTTP response header blobs.
//
// A blob is the newline-joined header section returned by a transport engine,
// optionally starting with the status line. Parse never fails: malformed input
// degrades to a partial or empty Header.
package header

import "strings"

// StatusKey is the synthetic name under which a leading line without a colon
// (normally the status line) is stored.
const StatusKey = "Status"

// continuation is inserted between a folded header value and its continuation.
const continuation = "\r\n\t"

// Value holds the values seen for one header name, in first-seen order.
type Value struct {
	values []string
	list   bool
}

// Single returns a Value holding one string.
func Single(v string) Value {
	return Value{values: []string{v}}
}

// List returns a Value holding an ordered list of strings.
func List(vs ...string) Value {
	return Value{values: append([]string(nil), vs...), list: true}
}

// IsList reports whether the header name appeared more than once.
func (v Value) IsList() bool { return v.list }

// Values returns a copy of the stored values.
func (v Value) Values() []string {
	return append([]string(nil), v.values...)
}

// String returns the single value, or the list joined by ", ".
func (v Value) String() string {
	return strings.Join(v.values, ", ")
}

func (v *Value) add(s string) {
	v.values = append(v.values, s)
	v.list = true
}

func (v *Value) fold(s string) {
	if len(v.values) == 0 {
		v.values = []string{""}
	}
	last := len(v.values) - 1
	v.values[last] += continuation + s
}

// Header maps a header name, exactly as received, to its value(s).
type Header map[string]Value

// Get returns the value(s) stored under name. Names are matched exactly.
func (h Header) Get(name string) (Value, bool) {
	v, ok := h[name]
	return v, ok
}

// Map flattens h into name -> string for single values and name -> []string
// for repeated names.
func (h Header) Map() map[string]any {
	out := make(map[string]any, len(h))
	for name, v := range h {
		if v.list {
			out[name] = v.Values()
		} else {
			out[name] = v.String()
		}
	}
	return out
}

// Parse parses a raw header blob.
//
// Each line is split on its first colon into name and trimmed value. Repeated
// names turn into lists. A line without a colon is a continuation of the
// previous header when it starts with a tab, the Status when no header has
// been seen yet, and is ignored otherwise. A continuation before any header
// is kept under the empty name.
func Parse(raw string) Header {
	h := make(Header)
	key := ""
	for _, line := range strings.Split(raw, "\n") {
		name, value, found := strings.Cut(line, ":")
		if found {
			value = strings.TrimSpace(value)
			if v, ok := h[name]; ok {
				v.add(value)
				h[name] = v
			} else {
				h[name] = Single(value)
			}
			key = name
			continue
		}
		switch {
		case strings.HasPrefix(line, "\t"):
			v := h[key]
			v.fold(strings.TrimSpace(line))
			h[key] = v
		case key == "":
			h[StatusKey] = Single(strings.TrimSpace(line))
		}
	}
	return h
}
