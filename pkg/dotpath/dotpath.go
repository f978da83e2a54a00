// Package dotpath reads and writes nested map values addressed by dotted
// paths such as "customer.name" or "orderDetails.cameraCount". It backs the
// field-level editing of nested resources (orders) on both the admin API and
// the resource manager.
package dotpath

import (
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/cast"
)

var ErrNotFound = errors.New("dotpath: path not found")

// Get returns the value at path within m, or ErrNotFound.
func Get(m map[string]interface{}, path string) (interface{}, error) {
	parts := strings.Split(path, ".")
	cur := interface{}(m)
	for _, p := range parts {
		node, ok := cur.(map[string]interface{})
		if !ok {
			return nil, errors.Wrap(ErrNotFound, path)
		}
		cur, ok = node[p]
		if !ok {
			return nil, errors.Wrap(ErrNotFound, path)
		}
	}
	return cur, nil
}

// Set writes value at path within m, creating intermediate maps as needed.
// An intermediate segment holding a non-map value is an error rather than a
// silent overwrite.
func Set(m map[string]interface{}, path string, value interface{}) error {
	parts := strings.Split(path, ".")
	node := m
	for _, p := range parts[:len(parts)-1] {
		next, ok := node[p]
		if !ok || next == nil {
			child := map[string]interface{}{}
			node[p] = child
			node = child
			continue
		}
		child, ok := next.(map[string]interface{})
		if !ok {
			return errors.Errorf("dotpath: %s: segment %q is not an object", path, p)
		}
		node = child
	}
	node[parts[len(parts)-1]] = value
	return nil
}

// GetString reads path as a string, returning "" when absent.
func GetString(m map[string]interface{}, path string) string {
	v, err := Get(m, path)
	if err != nil {
		return ""
	}
	return cast.ToString(v)
}

// GetFloat64 reads path as a float64, returning 0 when absent.
func GetFloat64(m map[string]interface{}, path string) float64 {
	v, err := Get(m, path)
	if err != nil {
		return 0
	}
	return cast.ToFloat64(v)
}

// GetInt reads path as an int, returning 0 when absent.
func GetInt(m map[string]interface{}, path string) int {
	v, err := Get(m, path)
	if err != nil {
		return 0
	}
	return cast.ToInt(v)
}

// Flatten expands a nested map into dotted-path keys with scalar values.
// Useful for diffing a draft against its pristine copy.
func Flatten(m map[string]interface{}) map[string]interface{} {
	out := map[string]interface{}{}
	flattenInto(out, "", m)
	return out
}

func flattenInto(out map[string]interface{}, prefix string, m map[string]interface{}) {
	for k, v := range m {
		key := k
		if prefix != "" {
			key = prefix + "." + k
		}
		if child, ok := v.(map[string]interface{}); ok {
			flattenInto(out, key, child)
			continue
		}
		out[key] = v
	}
}
