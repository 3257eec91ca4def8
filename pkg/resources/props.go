// © 2025 Platform Engineering Labs Inc.
//
// SPDX-License-Identifier: FSL-1.1-ALv2

// Package resources holds helpers shared by the resource translators.
package resources

// String returns the string property key, or "".
func String(props map[string]interface{}, key string) string {
	s, _ := props[key].(string)
	return s
}

// Int returns the numeric property key. JSON numbers decode as float64.
func Int(props map[string]interface{}, key string) (int, bool) {
	switch v := props[key].(type) {
	case float64:
		return int(v), true
	case int:
		return v, true
	default:
		return 0, false
	}
}

// Bool returns the boolean property key and whether it was set.
func Bool(props map[string]interface{}, key string) (bool, bool) {
	b, ok := props[key].(bool)
	return b, ok
}

// StringMap converts an object property to map[string]string, dropping
// non-string values. Returns nil when key is absent or not an object.
func StringMap(props map[string]interface{}, key string) map[string]string {
	switch v := props[key].(type) {
	case map[string]string:
		return v
	case map[string]interface{}:
		out := make(map[string]string, len(v))
		for k, val := range v {
			if s, ok := val.(string); ok {
				out[k] = s
			}
		}
		return out
	default:
		return nil
	}
}

// Strings converts an array property to []string, dropping non-string
// items. Returns nil when key is absent or empty.
func Strings(props map[string]interface{}, key string) []string {
	switch v := props[key].(type) {
	case []string:
		if len(v) == 0 {
			return nil
		}
		return v
	case []interface{}:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		if len(out) == 0 {
			return nil
		}
		return out
	default:
		return nil
	}
}
