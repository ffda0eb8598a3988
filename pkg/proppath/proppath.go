// Package proppath reads and writes values inside JSON-shaped property bags using
// dot-separated paths such as "content.buttons.0.text" or "content.buttons[0].text".
package proppath

import (
	"fmt"
	"strconv"
	"strings"
)

// Segment is one step of a parsed path. Key always holds the raw text; Index is set when
// the text is a non-negative integer so the segment can address a list element.
type Segment struct {
	Key     string
	Index   int
	IsIndex bool
}

// Parse splits a path into segments. Empty paths and empty segments are rejected.
func Parse(path string) ([]Segment, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return nil, fmt.Errorf("path is empty")
	}

	normalised := strings.NewReplacer("[", ".", "]", "").Replace(trimmed)
	parts := strings.Split(normalised, ".")
	segments := make([]Segment, 0, len(parts))
	for i, part := range parts {
		if part == "" {
			return nil, fmt.Errorf("path %q: segment %d is empty", path, i)
		}
		seg := Segment{Key: part}
		if idx, err := strconv.Atoi(part); err == nil && idx >= 0 {
			seg.Index = idx
			seg.IsIndex = true
		}
		segments = append(segments, seg)
	}
	return segments, nil
}

// Get returns the value stored at path and whether every intermediate step existed.
func Get(root interface{}, path string) (interface{}, bool) {
	segments, err := Parse(path)
	if err != nil {
		return nil, false
	}

	current := root
	for _, seg := range segments {
		switch node := current.(type) {
		case map[string]interface{}:
			value, ok := node[seg.Key]
			if !ok {
				return nil, false
			}
			current = value
		case []interface{}:
			if !seg.IsIndex || seg.Index >= len(node) {
				return nil, false
			}
			current = node[seg.Index]
		default:
			return nil, false
		}
	}
	return current, true
}

// GetString returns the string at path, or "" when it is missing or not a string.
func GetString(root interface{}, path string) string {
	value, ok := Get(root, path)
	if !ok {
		return ""
	}
	str, _ := value.(string)
	return str
}

// Has reports whether path resolves to a non-empty value. Whitespace-only strings, nil,
// empty lists and empty objects count as empty.
func Has(root interface{}, path string) bool {
	value, ok := Get(root, path)
	if !ok {
		return false
	}
	return !IsEmpty(value)
}

// IsEmpty reports whether a decoded JSON value carries no content.
func IsEmpty(value interface{}) bool {
	switch v := value.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(v) == ""
	case []interface{}:
		return len(v) == 0
	case map[string]interface{}:
		return len(v) == 0
	default:
		return false
	}
}

// Set stores value at path, creating missing intermediate objects and lists. A numeric
// segment creates a list when the parent does not exist yet and pads it with nil up to the
// requested index.
func Set(root map[string]interface{}, path string, value interface{}) error {
	if root == nil {
		return fmt.Errorf("root is nil")
	}
	segments, err := Parse(path)
	if err != nil {
		return err
	}
	_, err = setIn(root, segments, value, path)
	return err
}

func setIn(node interface{}, segments []Segment, value interface{}, path string) (interface{}, error) {
	if len(segments) == 0 {
		return value, nil
	}
	seg := segments[0]

	switch current := node.(type) {
	case map[string]interface{}:
		child, err := setIn(current[seg.Key], segments[1:], value, path)
		if err != nil {
			return nil, err
		}
		current[seg.Key] = child
		return current, nil
	case []interface{}:
		if !seg.IsIndex {
			return nil, fmt.Errorf("path %q: segment %q addresses a list", path, seg.Key)
		}
		for len(current) <= seg.Index {
			current = append(current, nil)
		}
		child, err := setIn(current[seg.Index], segments[1:], value, path)
		if err != nil {
			return nil, err
		}
		current[seg.Index] = child
		return current, nil
	case nil:
		if seg.IsIndex {
			return setIn([]interface{}{}, segments, value, path)
		}
		return setIn(map[string]interface{}{}, segments, value, path)
	default:
		return nil, fmt.Errorf("path %q: segment %q crosses a %T value", path, seg.Key, node)
	}
}

// Clone deep-copies a decoded JSON value so the copy can be mutated freely.
func Clone(value interface{}) interface{} {
	switch v := value.(type) {
	case map[string]interface{}:
		out := make(map[string]interface{}, len(v))
		for key, item := range v {
			out[key] = Clone(item)
		}
		return out
	case []interface{}:
		out := make([]interface{}, len(v))
		for i, item := range v {
			out[i] = Clone(item)
		}
		return out
	case []string:
		out := make([]string, len(v))
		copy(out, v)
		return out
	default:
		return v
	}
}

// CloneMap deep-copies a property bag. A nil input yields an empty map.
func CloneMap(value map[string]interface{}) map[string]interface{} {
	if value == nil {
		return map[string]interface{}{}
	}
	return Clone(value).(map[string]interface{})
}
