package serializer

import (
	"reflect"

	"github.com/segmentio/encoding/json"
)

// Field is one named value of an entity projection.
type Field struct {
	Name  string
	Value interface{}
}

// Projector is implemented by every entity that can be turned into a plain map.
// The returned fields keep declaration order and are the only ones serialized.
type Projector interface {
	Fields() []Field
}

// F is a shorthand to build a Field.
func F(name string, value interface{}) Field {
	return Field{Name: name, Value: value}
}

// ToMap projects p into a fresh map. Nested projectors and slices of projectors are projected
// recursively. When ignoreNulls is true absent values (nil, empty string, numeric zero) are omitted.
// Booleans are never absent. p is never mutated.
func ToMap(p Projector, ignoreNulls bool) map[string]interface{} {
	if IsNil(p) {
		return nil
	}

	fields := p.Fields()
	out := make(map[string]interface{}, len(fields))
	for _, field := range fields {
		if ignoreNulls && isAbsent(field.Value) {
			continue
		}

		out[field.Name] = project(field.Value, ignoreNulls)
	}

	return out
}

// Marshal encodes the projection of p as JSON, omitting absent fields.
func Marshal(p Projector) ([]byte, error) {
	return json.Marshal(ToMap(p, true))
}

func project(value interface{}, ignoreNulls bool) interface{} {
	if IsNil(value) {
		return nil
	}

	if p, ok := value.(Projector); ok {
		return ToMap(p, ignoreNulls)
	}

	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		if !rv.Type().Elem().Implements(projectorType) && rv.Type().Elem().Kind() != reflect.Interface {
			return value
		}

		out := make([]interface{}, rv.Len())
		for i := 0; i < rv.Len(); i++ {
			out[i] = project(rv.Index(i).Interface(), ignoreNulls)
		}

		return out
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String || rv.Type().Elem().Kind() != reflect.Interface {
			return value
		}

		out := make(map[string]interface{}, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			out[iter.Key().String()] = project(iter.Value().Interface(), ignoreNulls)
		}

		return out
	}

	return value
}

var projectorType = reflect.TypeOf((*Projector)(nil)).Elem()

// IsNil reports whether v is nil or a typed nil pointer, map, slice or func.
func IsNil(v interface{}) bool {
	if v == nil {
		return true
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Ptr, reflect.Map, reflect.Slice, reflect.Func, reflect.Interface, reflect.Chan:
		return rv.IsNil()
	}

	return false
}

func isAbsent(v interface{}) bool {
	if IsNil(v) {
		return true
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.String:
		return rv.Len() == 0
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int() == 0
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return rv.Uint() == 0
	case reflect.Float32, reflect.Float64:
		return rv.Float() == 0
	}

	return false
}
