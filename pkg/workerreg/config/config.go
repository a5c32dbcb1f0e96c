package config

import (
	"time"
)

// Config is a parsed settings document. Accessors take a fallback that is
// returned when the key is absent or holds a value of the wrong type, so a
// partial file only overrides what it mentions.
type Config struct {
	values map[string]any
}

// New wraps a decoded document. A nil map is treated as empty.
func New(values map[string]any) Config {
	if values == nil {
		values = map[string]any{}
	}
	return Config{values: values}
}

// typed returns the value under key if it has type T.
func typed[T any](c Config, key string) (T, bool) {
	v, ok := c.values[key].(T)
	return v, ok
}

// Section returns the nested document under key, or an empty Config.
func (c Config) Section(key string) Config {
	m, _ := typed[map[string]any](c, key)
	return New(m)
}

// Has reports whether key is present, whatever its type.
func (c Config) Has(key string) bool {
	_, ok := c.values[key]
	return ok
}

// String returns the string under key, or fallback.
func (c Config) String(key, fallback string) string {
	if s, ok := typed[string](c, key); ok {
		return s
	}
	return fallback
}

// Bool returns the bool under key, or fallback.
func (c Config) Bool(key string, fallback bool) bool {
	if b, ok := typed[bool](c, key); ok {
		return b
	}
	return fallback
}

// Int returns the integer under key, or fallback. JSON numbers decode as
// float64 and are accepted when they hold a whole number.
func (c Config) Int(key string, fallback int) int {
	switch n := c.values[key].(type) {
	case int:
		return n
	case int64:
		return int(n)
	case float64:
		if n == float64(int(n)) {
			return int(n)
		}
	}
	return fallback
}

// Duration returns the duration under key, or fallback. Strings use
// time.ParseDuration ("250ms", "5s"); bare numbers are seconds.
func (c Config) Duration(key string, fallback time.Duration) time.Duration {
	switch d := c.values[key].(type) {
	case time.Duration:
		return d
	case string:
		if parsed, err := time.ParseDuration(d); err == nil {
			return parsed
		}
	case int:
		return time.Duration(d) * time.Second
	case int64:
		return time.Duration(d) * time.Second
	case float64:
		return time.Duration(d * float64(time.Second))
	}
	return fallback
}
