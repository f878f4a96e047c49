package file

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Values is a flattened view of a configuration file. Nested tables become
// dot-notation keys: {"s3": {"bucket": "b"}} is "s3.bucket".
type Values struct {
	path string
	data map[string]any
}

// ReadValues parses path as TOML or YAML, chosen by extension.
func ReadValues(path string) (*Values, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var loaded map[string]any
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		err = toml.Unmarshal(raw, &loaded)
	case ".yaml", ".yml":
		err = yaml.Unmarshal(raw, &loaded)
	default:
		return nil, fmt.Errorf("unsupported config format %q", filepath.Ext(path))
	}
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}

	if loaded == nil {
		loaded = make(map[string]any)
	}
	return &Values{path: path, data: flattenMap(loaded, "")}, nil
}

// NewValues wraps an already flattened map.
func NewValues(data map[string]any) *Values {
	if data == nil {
		data = make(map[string]any)
	}
	return &Values{data: data}
}

// Path returns the file the values were read from.
func (v *Values) Path() string {
	return v.path
}

// Set overrides a key.
func (v *Values) Set(key string, value any) {
	v.data[key] = value
}

// Get retrieves a value by key.
func (v *Values) Get(key string) (any, bool) {
	val, ok := v.data[key]
	return val, ok
}

// Keys returns the number of keys held.
func (v *Values) Keys() int {
	return len(v.data)
}

// String retrieves a string value. Scalars of other types are formatted.
func (v *Values) String(key string) (string, bool) {
	val, ok := v.Get(key)
	if !ok || val == nil {
		return "", false
	}
	switch s := val.(type) {
	case string:
		return s, true
	default:
		return fmt.Sprint(s), true
	}
}

// Int retrieves an integer value.
func (v *Values) Int(key string) (int, bool, error) {
	val, ok := v.Get(key)
	if !ok {
		return 0, false, nil
	}
	// TOML integers are parsed as int64, YAML ones as int.
	switch n := val.(type) {
	case int64:
		return int(n), true, nil
	case int:
		return n, true, nil
	case uint64:
		return int(n), true, nil
	case float64:
		if n == float64(int(n)) {
			return int(n), true, nil
		}
	case string:
		i, err := strconv.Atoi(strings.TrimSpace(n))
		if err == nil {
			return i, true, nil
		}
	}
	return 0, true, fmt.Errorf("%s: %v is not an integer", key, val)
}

// Float retrieves a floating point value.
func (v *Values) Float(key string) (float64, bool, error) {
	val, ok := v.Get(key)
	if !ok {
		return 0, false, nil
	}
	switch n := val.(type) {
	case float64:
		return n, true, nil
	case int64:
		return float64(n), true, nil
	case int:
		return float64(n), true, nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err == nil {
			return f, true, nil
		}
	}
	return 0, true, fmt.Errorf("%s: %v is not a number", key, val)
}

// Bool retrieves a boolean value.
func (v *Values) Bool(key string) (bool, bool, error) {
	val, ok := v.Get(key)
	if !ok {
		return false, false, nil
	}
	switch b := val.(type) {
	case bool:
		return b, true, nil
	case string:
		parsed, err := strconv.ParseBool(strings.TrimSpace(b))
		if err == nil {
			return parsed, true, nil
		}
	}
	return false, true, fmt.Errorf("%s: %v is not a boolean", key, val)
}

// Seconds retrieves a duration given as whole or fractional seconds.
func (v *Values) Seconds(key string) (time.Duration, bool, error) {
	f, ok, err := v.Float(key)
	if !ok || err != nil {
		return 0, ok, err
	}
	return time.Duration(f * float64(time.Second)), true, nil
}

// flattenMap converts nested maps to dot-notation keys.
// E.g., {"a": {"b": 1}} becomes {"a.b": 1}.
func flattenMap(m map[string]any, prefix string) map[string]any {
	result := make(map[string]any)

	for key, value := range m {
		fullKey := key
		if prefix != "" {
			fullKey = prefix + "." + key
		}

		if nested, ok := value.(map[string]any); ok {
			// Recursively flatten nested maps
			for k, v := range flattenMap(nested, fullKey) {
				result[k] = v
			}
		} else {
			result[fullKey] = value
		}
	}

	return result
}
