package calls

import (
	"fmt"
	"net/url"
	"reflect"
	"sort"
	"strconv"
	"strings"

	"github.com/mitchellh/mapstructure"
)

// Pair is one key/value of an ordered request.
type Pair struct {
	Key   string
	Value string
}

// Pairs is an ordered request whose keys may repeat.
type Pairs []Pair

// EncodeQuery encodes request as a URL query string.
//
// Accepted requests are nil, Pairs, url.Values, maps with string keys, and
// structs (or pointers to structs), whose fields are named by their `query`
// tag. Nil values are skipped.
func EncodeQuery(request any, rawQuery bool) (string, error) {
	if request == nil {
		return "", nil
	}
	if pairs, ok := request.(Pairs); ok {
		return encodePairs(pairs, rawQuery), nil
	}
	norm, err := normalize(request)
	if err != nil {
		return "", err
	}
	m, ok := norm.(map[string]any)
	if !ok {
		return "", fmt.Errorf("encode query: unsupported request type %T", request)
	}
	var parts []string
	for _, k := range sortedKeys(m) {
		parts = appendParts(parts, k, m[k], rawQuery)
	}
	return strings.Join(parts, "&"), nil
}

func encodePairs(pairs Pairs, rawQuery bool) string {
	if rawQuery {
		parts := make([]string, 0, len(pairs))
		for _, p := range pairs {
			parts = append(parts, escapePair(p.Key, p.Value))
		}
		return strings.Join(parts, "&")
	}
	grouped := make(map[string][]any)
	for _, p := range pairs {
		grouped[p.Key] = append(grouped[p.Key], p.Value)
	}
	var parts []string
	for _, k := range sortedKeys(grouped) {
		vs := grouped[k]
		if len(vs) == 1 {
			parts = appendParts(parts, k, vs[0], false)
			continue
		}
		parts = appendParts(parts, k, vs, false)
	}
	return strings.Join(parts, "&")
}

func appendParts(parts []string, key string, v any, rawQuery bool) []string {
	switch val := v.(type) {
	case nil:
		return parts
	case map[string]any:
		for _, k := range sortedKeys(val) {
			parts = appendParts(parts, key+"["+k+"]", val[k], rawQuery)
		}
		return parts
	case []any:
		for i, item := range val {
			if rawQuery {
				parts = appendParts(parts, key, item, rawQuery)
			} else {
				parts = appendParts(parts, key+"["+strconv.Itoa(i)+"]", item, rawQuery)
			}
		}
		return parts
	default:
		return append(parts, escapePair(key, scalar(val)))
	}
}

func escapePair(k, v string) string {
	return url.QueryEscape(k) + "=" + url.QueryEscape(v)
}

func scalar(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case bool:
		return strconv.FormatBool(val)
	case fmt.Stringer:
		return val.String()
	default:
		return fmt.Sprint(val)
	}
}

// normalize converts v into map[string]any, []any and scalars.
func normalize(v any) (any, error) {
	if v == nil {
		return nil, nil
	}
	if _, ok := v.(fmt.Stringer); ok {
		return v, nil
	}
	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Pointer || rv.Kind() == reflect.Interface {
		if rv.IsNil() {
			return nil, nil
		}
		rv = rv.Elem()
	}
	switch rv.Kind() {
	case reflect.Struct:
		var m map[string]any
		dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
			TagName: "query",
			Result:  &m,
		})
		if err != nil {
			return nil, err
		}
		if err := dec.Decode(rv.Interface()); err != nil {
			return nil, fmt.Errorf("encode query: %w", err)
		}
		return normalizeMap(reflect.ValueOf(m))
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			return nil, fmt.Errorf("encode query: map key type %s is not a string", rv.Type().Key())
		}
		return normalizeMap(rv)
	case reflect.Slice, reflect.Array:
		if rv.Kind() == reflect.Slice && rv.Type().Elem().Kind() == reflect.Uint8 {
			return string(rv.Bytes()), nil
		}
		out := make([]any, 0, rv.Len())
		for i := 0; i < rv.Len(); i++ {
			item, err := normalize(rv.Index(i).Interface())
			if err != nil {
				return nil, err
			}
			out = append(out, item)
		}
		return out, nil
	default:
		return rv.Interface(), nil
	}
}

func normalizeMap(rv reflect.Value) (any, error) {
	out := make(map[string]any, rv.Len())
	iter := rv.MapRange()
	for iter.Next() {
		item, err := normalize(iter.Value().Interface())
		if err != nil {
			return nil, err
		}
		out[iter.Key().String()] = item
	}
	return out, nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
