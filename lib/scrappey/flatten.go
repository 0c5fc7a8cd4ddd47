package scrappey

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strings"
	"sync"
)

// flatten encodes the struct `typed` as a JSON object laid over the
// passthrough values in `extra`, so recognized fields always win.
func flatten(typed any, extra map[string]any) (map[string]json.RawMessage, error) {
	out := make(map[string]json.RawMessage, len(extra))
	for k, v := range extra {
		encoded, err := json.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("encode passthrough option %q: %w", k, err)
		}
		out[k] = encoded
	}

	encoded, err := json.Marshal(typed)
	if err != nil {
		return nil, err
	}
	var fields map[string]json.RawMessage
	err = json.Unmarshal(encoded, &fields)
	if err != nil {
		return nil, err
	}
	for k, v := range fields {
		out[k] = v
	}
	return out, nil
}

// unflatten decodes `data` into the struct `typed` and returns every key
// that is not one of its JSON fields, nil if there are none.
func unflatten(data []byte, typed any) (map[string]any, error) {
	err := json.Unmarshal(data, typed)
	if err != nil {
		return nil, err
	}

	var fields map[string]json.RawMessage
	err = json.Unmarshal(data, &fields)
	if err != nil {
		return nil, err
	}

	known := jsonKeys(reflect.TypeOf(typed).Elem())

	var extra map[string]any
	for k, raw := range fields {
		if known[k] {
			continue
		}
		var value any
		err = json.Unmarshal(raw, &value)
		if err != nil {
			return nil, fmt.Errorf("decode passthrough option %q: %w", k, err)
		}
		if extra == nil {
			extra = map[string]any{}
		}
		extra[k] = value
	}
	return extra, nil
}

var jsonKeyCache sync.Map

// jsonKeys returns the set of JSON object keys a struct type encodes to.
func jsonKeys(t reflect.Type) map[string]bool {
	cached, ok := jsonKeyCache.Load(t)
	if ok {
		return cached.(map[string]bool)
	}

	keys := map[string]bool{}
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		if !field.IsExported() {
			continue
		}
		tag := field.Tag.Get("json")
		if tag == "-" {
			continue
		}
		name, _, _ := strings.Cut(tag, ",")
		if name == "" {
			name = field.Name
		}
		keys[name] = true
	}

	jsonKeyCache.Store(t, keys)
	return keys
}
