package config

import (
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// Params holds "key=value" overrides given on the command line.
type Params map[string]string

// ParseParams parses "k1=v1,k2=v2,flag". A key without a value maps to "".
func ParseParams(s string) Params {
	params := make(Params)
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		key, value, _ := strings.Cut(part, "=")
		params[strings.TrimSpace(key)] = strings.TrimSpace(value)
	}
	return params
}

// PopParamOr is like GetParamOr, but also deletes the key from params.
func PopParamOr[T bool | int | uint64 | float64 | string](params Params, key string, defaultValue T) (T, error) {
	value, err := GetParamOr(params, key, defaultValue)
	if err != nil {
		return value, err
	}
	delete(params, key)
	return value, nil
}

// GetParamOr parses params[key] as T, or returns defaultValue if the key is
// absent. For bool a key without a value means true.
func GetParamOr[T bool | int | uint64 | float64 | string](params Params, key string, defaultValue T) (T, error) {
	raw, exists := params[key]
	if !exists {
		return defaultValue, nil
	}
	var parsed any
	var err error
	switch any(defaultValue).(type) {
	case string:
		parsed = raw
	case int:
		parsed, err = strconv.Atoi(raw)
	case uint64:
		parsed, err = strconv.ParseUint(raw, 10, 64)
	case float64:
		parsed, err = strconv.ParseFloat(raw, 64)
	case bool:
		switch strings.ToLower(raw) {
		case "", "true", "1":
			parsed = true
		case "false", "0":
			parsed = false
		default:
			err = errors.New("not a bool")
		}
	}
	if err != nil {
		return defaultValue, errors.Wrapf(err, "failed to parse configuration %s=%q as %T", key, raw, defaultValue)
	}
	return parsed.(T), nil
}
