package validator

import (
	"encoding/json"
	"fmt"
	"math"
	"reflect"
	"regexp"
)

// Field validators work on dynamically typed values, as they arrive from decoded JSON or from
// typed constructors. When optional is true an "empty" value (nil, "", 0, empty map or slice)
// yields the zero value of the result type. StringList and InstanceList return an empty,
// non-nil slice instead. Bool and URL only treat nil as empty.

var regxURL = regexp.MustCompile(`^https?://[^\s/$?#.][^\s]*$`)

// String validates a string value.
func String(value interface{}, field string, optional bool) (string, error) {
	if isNil(value) {
		if optional {
			return "", nil
		}

		return "", missing(field)
	}

	if optional && isEmpty(value) {
		return "", nil
	}

	s, ok := asString(value)
	if !ok {
		return "", mismatch(field, "a string", value)
	}

	return s, nil
}

// Int validates an integer value. Integral floats and json.Number are accepted because that is
// how JSON numbers are decoded; booleans are not integers.
func Int(value interface{}, field string, optional bool) (int64, error) {
	if isNil(value) {
		if optional {
			return 0, nil
		}

		return 0, missing(field)
	}

	if optional && isEmpty(value) {
		return 0, nil
	}

	i, ok := AsInt64(value)
	if !ok {
		return 0, mismatch(field, "an integer", value)
	}

	return i, nil
}

// Bool validates a boolean value. The result is nil only when an optional value is absent.
func Bool(value interface{}, field string, optional bool) (*bool, error) {
	if isNil(value) {
		if optional {
			return nil, nil
		}

		return nil, missing(field)
	}

	b, ok := value.(bool)
	if !ok {
		return nil, mismatch(field, "a boolean", value)
	}

	return &b, nil
}

// List validates a slice. When stringsOnly is true every item must be a string.
func List(value interface{}, field string, stringsOnly, optional bool) ([]interface{}, error) {
	if isNil(value) {
		if optional {
			return nil, nil
		}

		return nil, missing(field)
	}

	if optional && isEmpty(value) {
		return nil, nil
	}

	items, ok := asSlice(value)
	if !ok {
		return nil, mismatch(field, "a list", value)
	}

	if stringsOnly {
		for _, item := range items {
			if _, isStr := asString(item); !isStr {
				return nil, &FieldError{
					Field:    field,
					Kind:     ErrTypeMismatch,
					Expected: "a list of strings",
					Actual:   fmt.Sprintf("item of type %T", item),
				}
			}
		}
	}

	return items, nil
}

// Dict validates a map. When stringsOnly is true every key must be a string.
func Dict(value interface{}, field string, stringsOnly, optional bool) (map[string]interface{}, error) {
	if isNil(value) {
		if optional {
			return nil, nil
		}

		return nil, missing(field)
	}

	if optional && isEmpty(value) {
		return nil, nil
	}

	if m, ok := value.(map[string]interface{}); ok {
		return m, nil
	}

	rv := reflect.ValueOf(value)
	if rv.Kind() != reflect.Map {
		return nil, mismatch(field, "a map", value)
	}

	out := make(map[string]interface{}, rv.Len())
	iter := rv.MapRange()
	for iter.Next() {
		key := iter.Key()
		if key.Kind() == reflect.Interface {
			key = key.Elem()
		}

		if key.Kind() == reflect.String {
			out[key.String()] = iter.Value().Interface()
			continue
		}

		if stringsOnly {
			return nil, &FieldError{
				Field:    field,
				Kind:     ErrTypeMismatch,
				Expected: "a map with string keys",
				Actual:   fmt.Sprintf("key of type %s", key.Type()),
			}
		}

		out[fmt.Sprint(key.Interface())] = iter.Value().Interface()
	}

	return out, nil
}

// URL validates an http or https URL.
func URL(value interface{}, field string, optional bool) (string, error) {
	if isNil(value) {
		if optional {
			return "", nil
		}

		return "", missing(field)
	}

	s, ok := asString(value)
	if !ok {
		return "", mismatch(field, "a string", value)
	}

	if !regxURL.MatchString(s) {
		return "", invalid(field, "a valid URL")
	}

	return s, nil
}

// StringOption validates that a string is one of options.
func StringOption(value interface{}, field string, options []string, optional bool) (string, error) {
	s, err := String(value, field, optional)
	if err != nil || s == "" {
		return s, err
	}

	for _, option := range options {
		if s == option {
			return s, nil
		}
	}

	return "", &FieldError{Field: field, Kind: ErrInvalidFormat, Allowed: options}
}

// Callable validates that value is a function.
func Callable(value interface{}, field string, optional bool) (interface{}, error) {
	if isNil(value) {
		if optional {
			return nil, nil
		}

		return nil, missing(field)
	}

	if reflect.TypeOf(value).Kind() != reflect.Func {
		return nil, mismatch(field, "a function", value)
	}

	return value, nil
}

// StringList validates a list of strings. A single string is turned into a one item list.
func StringList(value interface{}, field string, optional bool) ([]string, error) {
	if isNil(value) {
		if optional {
			return []string{}, nil
		}

		return nil, missing(field)
	}

	if optional && isEmpty(value) {
		return []string{}, nil
	}

	if s, ok := asString(value); ok {
		return []string{s}, nil
	}

	if list, ok := value.([]string); ok {
		return list, nil
	}

	items, ok := asSlice(value)
	if !ok {
		return nil, mismatch(field, "a list", value)
	}

	out := make([]string, 0, len(items))
	for _, item := range items {
		s, isStr := asString(item)
		if !isStr {
			return nil, &FieldError{
				Field:    field,
				Kind:     ErrTypeMismatch,
				Expected: "a list of strings",
				Actual:   fmt.Sprintf("item of type %T", item),
			}
		}

		out = append(out, s)
	}

	return out, nil
}

// Instance validates that value holds a T.
func Instance[T any](value interface{}, field string, optional bool) (T, error) {
	var zero T
	if isNil(value) {
		if optional {
			return zero, nil
		}

		return zero, missing(field)
	}

	t, ok := value.(T)
	if !ok {
		return zero, mismatch(field, fmt.Sprintf("an instance of %T", zero), value)
	}

	return t, nil
}

// InstanceList validates that value is a list where every item holds a T.
func InstanceList[T any](value interface{}, field string, optional bool) ([]T, error) {
	if isNil(value) {
		if optional {
			return []T{}, nil
		}

		return nil, missing(field)
	}

	if optional && isEmpty(value) {
		return []T{}, nil
	}

	if list, ok := value.([]T); ok {
		return list, nil
	}

	items, ok := asSlice(value)
	if !ok {
		return nil, mismatch(field, "a list", value)
	}

	out := make([]T, 0, len(items))
	for _, item := range items {
		t, isT := item.(T)
		if !isT {
			var zero T
			return nil, &FieldError{
				Field:    field,
				Kind:     ErrTypeMismatch,
				Expected: fmt.Sprintf("a list of %T", zero),
				Actual:   fmt.Sprintf("item of type %T", item),
			}
		}

		out = append(out, t)
	}

	return out, nil
}

// AsInt64 converts any Go integer kind, an integral float or a json.Number into int64.
func AsInt64(value interface{}) (int64, bool) {
	switch t := value.(type) {
	case int:
		return int64(t), true
	case int8:
		return int64(t), true
	case int16:
		return int64(t), true
	case int32:
		return int64(t), true
	case int64:
		return t, true
	case uint:
		return uintToInt64(uint64(t))
	case uint8:
		return int64(t), true
	case uint16:
		return int64(t), true
	case uint32:
		return int64(t), true
	case uint64:
		return uintToInt64(t)
	case float32:
		return floatToInt64(float64(t))
	case float64:
		return floatToInt64(t)
	case json.Number:
		if i, err := t.Int64(); err == nil {
			return i, true
		}

		f, err := t.Float64()
		if err != nil {
			return 0, false
		}

		return floatToInt64(f)
	}

	return 0, false
}

func uintToInt64(u uint64) (int64, bool) {
	if u > math.MaxInt64 {
		return 0, false
	}

	return int64(u), true
}

func floatToInt64(f float64) (int64, bool) {
	if f != math.Trunc(f) || f > math.MaxInt64 || f < math.MinInt64 {
		return 0, false
	}

	return int64(f), true
}

func asString(value interface{}) (string, bool) {
	if s, ok := value.(string); ok {
		return s, true
	}

	if _, isNumber := value.(json.Number); isNumber {
		return "", false
	}

	rv := reflect.ValueOf(value)
	if rv.Kind() == reflect.String {
		return rv.String(), true
	}

	return "", false
}

func asSlice(value interface{}) ([]interface{}, bool) {
	if items, ok := value.([]interface{}); ok {
		return items, true
	}

	rv := reflect.ValueOf(value)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, false
	}

	out := make([]interface{}, rv.Len())
	for i := 0; i < rv.Len(); i++ {
		out[i] = rv.Index(i).Interface()
	}

	return out, true
}

func isNil(value interface{}) bool {
	if value == nil {
		return true
	}

	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.Ptr, reflect.Map, reflect.Slice, reflect.Func, reflect.Interface, reflect.Chan:
		return rv.IsNil()
	}

	return false
}

func isEmpty(value interface{}) bool {
	if isNil(value) {
		return true
	}

	if n, ok := value.(json.Number); ok {
		f, err := n.Float64()
		return err == nil && f == 0
	}

	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.Map, reflect.Slice, reflect.Array, reflect.String:
		return rv.Len() == 0
	case reflect.Bool:
		return !rv.Bool()
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int() == 0
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return rv.Uint() == 0
	case reflect.Float32, reflect.Float64:
		return rv.Float() == 0
	}

	return false
}
