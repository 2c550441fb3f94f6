package config

import (
	"errors"
	"fmt"
	"math"
)

// ErrWrongType indicates a key is present but holds a value of another type.
var ErrWrongType = errors.New("wrong type")

// Config wraps a map[string]any for type-safe value extraction.
type Config struct {
	data map[string]any
}

// New creates a Config from the given map.
// If data is nil, an empty Config is returned.
func New(data map[string]any) Config {
	if data == nil {
		data = make(map[string]any)
	}
	return Config{data: data}
}

// String returns the string value for key, or defaultVal if missing or not a string.
func (c Config) String(key, defaultVal string) string {
	if s, ok := c.data[key].(string); ok {
		return s
	}
	return defaultVal
}

// Bool returns the boolean value for key, or defaultVal if missing or not a bool.
func (c Config) Bool(key string, defaultVal bool) bool {
	if b, ok := c.data[key].(bool); ok {
		return b
	}
	return defaultVal
}

// Int returns the integer value for key, or defaultVal if missing or not convertible.
//
// Accepts:
//   - int: used directly
//   - int64: converted to int
//   - float64: converted to int only if there is no fractional part
func (c Config) Int(key string, defaultVal int) int {
	switch val := c.data[key].(type) {
	case int:
		return val
	case int64:
		return int(val)
	case float64:
		if val == float64(int(val)) {
			return int(val)
		}
	}
	return defaultVal
}

// LookupString returns the string under key and whether the key is set.
// A value of another type is an error wrapping ErrWrongType.
func (c Config) LookupString(key string) (string, bool, error) {
	raw, ok := c.data[key]
	if !ok {
		return "", false, nil
	}
	s, ok := raw.(string)
	if !ok {
		return "", true, wrongType("string", raw)
	}
	return s, true, nil
}

// LookupBool is LookupString for booleans. Strings such as "yes" or "true"
// are rejected, not parsed.
func (c Config) LookupBool(key string) (bool, bool, error) {
	raw, ok := c.data[key]
	if !ok {
		return false, false, nil
	}
	b, ok := raw.(bool)
	if !ok {
		return false, true, wrongType("bool", raw)
	}
	return b, true, nil
}

// LookupInt is LookupString for integers, accepting the same encodings as
// Int. Fractional or out of range numbers are an error wrapping ErrWrongType.
func (c Config) LookupInt(key string) (int, bool, error) {
	raw, ok := c.data[key]
	if !ok {
		return 0, false, nil
	}
	switch val := raw.(type) {
	case int:
		return val, true, nil
	case int64:
		if val >= math.MinInt && val <= math.MaxInt {
			return int(val), true, nil
		}
	case float64:
		if val == math.Trunc(val) && val >= math.MinInt && val < math.MaxInt {
			return int(val), true, nil
		}
	}
	return 0, true, wrongType("integer", raw)
}

// Keys returns the keys set in the config, in no particular order.
func (c Config) Keys() []string {
	keys := make([]string, 0, len(c.data))
	for k := range c.data {
		keys = append(keys, k)
	}
	return keys
}

func wrongType(want string, got any) error {
	return fmt.Errorf("%w: want %s, got %T", ErrWrongType, want, got)
}

// Section returns the nested map under key as a Config.
// A missing or non-map value yields an empty Config.
func (c Config) Section(key string) Config {
	switch val := c.data[key].(type) {
	case map[string]any:
		return New(val)
	case map[any]any:
		m := make(map[string]any, len(val))
		for k, v := range val {
			if s, ok := k.(string); ok {
				m[s] = v
			}
		}
		return New(m)
	}
	return New(nil)
}

// Has returns true if the key exists in the config.
func (c Config) Has(key string) bool {
	_, ok := c.data[key]
	return ok
}

// Raw returns the underlying map.
// The returned map should not be modified.
func (c Config) Raw() map[string]any {
	return c.data
}
