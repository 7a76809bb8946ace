package grafo

import (
	"fmt"
	"reflect"
	"sort"
	"strings"
)

// FormatValue renders a Go value as a Cypher literal. The formatting is
// bit-exact across every producer in this module: nil is null, booleans
// are lowercase and unquoted, strings are double-quoted with backslash
// and quote escaped, slices recurse as [v1,v2,...], maps recurse as
// {k1:v1,...} with unquoted identifier keys. Map keys are emitted in
// sorted order so output is deterministic.
func FormatValue(v any) string {
	if v == nil {
		return "null"
	}

	switch val := v.(type) {
	case bool:
		if val {
			return "true"
		}
		return "false"
	case string:
		return QuoteString(val)
	case []byte:
		return QuoteString(string(val))
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		parts := make([]string, rv.Len())
		for i := range rv.Len() {
			parts[i] = FormatValue(rv.Index(i).Interface())
		}
		return "[" + strings.Join(parts, ",") + "]"
	case reflect.Map:
		keys := make([]string, 0, rv.Len())
		byKey := make(map[string]any, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			k := fmt.Sprintf("%v", iter.Key().Interface())
			keys = append(keys, k)
			byKey[k] = iter.Value().Interface()
		}
		sort.Strings(keys)

		parts := make([]string, len(keys))
		for i, k := range keys {
			parts[i] = k + ":" + FormatValue(byKey[k])
		}
		return "{" + strings.Join(parts, ",") + "}"
	case reflect.Ptr, reflect.Interface:
		if rv.IsNil() {
			return "null"
		}
		return FormatValue(rv.Elem().Interface())
	default:
		return fmt.Sprintf("%v", v)
	}
}

// QuoteString double-quotes a string for Cypher, escaping backslashes and
// double quotes. The empty string renders as "".
func QuoteString(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `"`, `\"`)

	return `"` + s + `"`
}

// formatPropertyMap renders property key/value pairs as an inline Cypher
// map fragment, keys sorted. Returns "" for an empty map.
func formatPropertyMap(props map[string]any) string {
	if len(props) == 0 {
		return ""
	}

	keys := make([]string, 0, len(props))
	for k := range props {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+":"+FormatValue(props[k]))
	}

	return "{" + strings.Join(parts, ",") + "}"
}
