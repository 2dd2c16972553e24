package calls

import (
	"bytes"
	"fmt"
	"reflect"

	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// DecodeJSON decodes a JSON body.
//
// In associative mode, or when target is nil, the result is built from
// map[string]any, []any and scalars. Otherwise a new value of target's type
// is allocated and a pointer to it is returned. An empty body decodes to nil.
func DecodeJSON(body []byte, asMap bool, target any) (any, error) {
	if len(bytes.TrimSpace(body)) == 0 {
		return nil, nil
	}
	if asMap || target == nil {
		var v any
		if err := json.Unmarshal(body, &v); err != nil {
			return nil, fmt.Errorf("decode json: %w", err)
		}
		return v, nil
	}
	t := reflect.TypeOf(target)
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	ptr := reflect.New(t)
	if err := json.Unmarshal(body, ptr.Interface()); err != nil {
		return nil, fmt.Errorf("decode json into %s: %w", t, err)
	}
	return ptr.Interface(), nil
}

// encodeJSON marshals a request object as a JSON body.
func encodeJSON(request any) ([]byte, error) {
	if request == nil {
		return nil, nil
	}
	if pairs, ok := request.(Pairs); ok {
		m := make(map[string]string, len(pairs))
		for _, p := range pairs {
			m[p.Key] = p.Value
		}
		request = m
	}
	b, err := json.Marshal(request)
	if err != nil {
		return nil, fmt.Errorf("encode json: %w", err)
	}
	return b, nil
}
