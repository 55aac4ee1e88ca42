package validator_test

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yusufsyaifudin/fcmpush/pkg/validator"
)

type sample struct{ Name string }

func TestString(t *testing.T) {
	t.Run("required nil", func(t *testing.T) {
		_, err := validator.String(nil, "title", false)
		assert.ErrorIs(t, err, validator.ErrMissingField)
		assert.EqualError(t, err, "title is required")
	})

	t.Run("optional nil", func(t *testing.T) {
		s, err := validator.String(nil, "title", true)
		assert.NoError(t, err)
		assert.Equal(t, "", s)
	})

	t.Run("optional empty", func(t *testing.T) {
		s, err := validator.String("", "title", true)
		assert.NoError(t, err)
		assert.Equal(t, "", s)
	})

	t.Run("wrong type", func(t *testing.T) {
		_, err := validator.String(12, "title", false)
		assert.ErrorIs(t, err, validator.ErrTypeMismatch)
		assert.EqualError(t, err, "title must be a string, got int")
	})

	t.Run("ok", func(t *testing.T) {
		s, err := validator.String("hello", "title", false)
		assert.NoError(t, err)
		assert.Equal(t, "hello", s)
	})
}

func TestInt(t *testing.T) {
	testCases := []struct {
		Name  string
		Value interface{}
		Want  int64
		Err   error
	}{
		{Name: "int", Value: 3, Want: 3},
		{Name: "uint8", Value: uint8(7), Want: 7},
		{Name: "integral float", Value: float64(10), Want: 10},
		{Name: "json number", Value: json.Number("42"), Want: 42},
		{Name: "fraction", Value: 1.5, Err: validator.ErrTypeMismatch},
		{Name: "bool", Value: true, Err: validator.ErrTypeMismatch},
		{Name: "string", Value: "1", Err: validator.ErrTypeMismatch},
		{Name: "nil", Value: nil, Err: validator.ErrMissingField},
	}

	for _, testCase := range testCases {
		t.Run(testCase.Name, func(t *testing.T) {
			got, err := validator.Int(testCase.Value, "ttl", false)
			if testCase.Err != nil {
				assert.ErrorIs(t, err, testCase.Err)
				return
			}

			assert.NoError(t, err)
			assert.Equal(t, testCase.Want, got)
		})
	}

	t.Run("optional zero", func(t *testing.T) {
		got, err := validator.Int(0, "ttl", true)
		assert.NoError(t, err)
		assert.Zero(t, got)
	})
}

func TestBool(t *testing.T) {
	b, err := validator.Bool(nil, "silent", true)
	assert.NoError(t, err)
	assert.Nil(t, b)

	b, err = validator.Bool(false, "silent", true)
	require.NoError(t, err)
	require.NotNil(t, b)
	assert.False(t, *b)

	_, err = validator.Bool("true", "silent", false)
	assert.ErrorIs(t, err, validator.ErrTypeMismatch)

	_, err = validator.Bool(nil, "silent", false)
	assert.ErrorIs(t, err, validator.ErrMissingField)
}

func TestList(t *testing.T) {
	items, err := validator.List([]int{200, 100}, "vibrate", false, false)
	assert.NoError(t, err)
	assert.Equal(t, []interface{}{200, 100}, items)

	_, err = validator.List([]interface{}{"a", 1}, "tags", true, false)
	assert.ErrorIs(t, err, validator.ErrTypeMismatch)

	items, err = validator.List([]string{}, "tags", true, true)
	assert.NoError(t, err)
	assert.Nil(t, items)

	_, err = validator.List("abc", "tags", false, false)
	assert.ErrorIs(t, err, validator.ErrTypeMismatch)
}

func TestDict(t *testing.T) {
	m, err := validator.Dict(map[string]string{"a": "b"}, "headers", true, false)
	assert.NoError(t, err)
	assert.Equal(t, map[string]interface{}{"a": "b"}, m)

	_, err = validator.Dict(map[int]string{1: "b"}, "headers", true, false)
	assert.ErrorIs(t, err, validator.ErrTypeMismatch)

	m, err = validator.Dict(map[int]string{1: "b"}, "data", false, false)
	assert.NoError(t, err)
	assert.Equal(t, map[string]interface{}{"1": "b"}, m)

	m, err = validator.Dict(map[string]interface{}{}, "data", false, true)
	assert.NoError(t, err)
	assert.Nil(t, m)

	_, err = validator.Dict([]string{"a"}, "data", false, false)
	assert.ErrorIs(t, err, validator.ErrTypeMismatch)
}

func TestURL(t *testing.T) {
	testCases := []struct {
		Value string
		Valid bool
	}{
		{Value: "https://example.com/icon.png", Valid: true},
		{Value: "http://localhost:8080", Valid: true},
		{Value: "ftp://example.com", Valid: false},
		{Value: "https://.example.com", Valid: false},
		{Value: "https://exa mple.com", Valid: false},
		{Value: "", Valid: false},
	}

	for _, testCase := range testCases {
		t.Run(testCase.Value, func(t *testing.T) {
			_, err := validator.URL(testCase.Value, "icon", true)
			if testCase.Valid {
				assert.NoError(t, err)
				return
			}

			assert.ErrorIs(t, err, validator.ErrInvalidFormat)
		})
	}

	s, err := validator.URL(nil, "icon", true)
	assert.NoError(t, err)
	assert.Empty(t, s)
}

func TestStringOption(t *testing.T) {
	options := []string{"auto", "ltr", "rtl"}

	s, err := validator.StringOption("ltr", "direction", options, false)
	assert.NoError(t, err)
	assert.Equal(t, "ltr", s)

	_, err = validator.StringOption("diagonal", "direction", options, false)
	assert.ErrorIs(t, err, validator.ErrInvalidFormat)
	assert.EqualError(t, err, "direction must be one of [auto, ltr, rtl]")

	s, err = validator.StringOption(nil, "direction", options, true)
	assert.NoError(t, err)
	assert.Empty(t, s)
}

func TestCallable(t *testing.T) {
	fn, err := validator.Callable(func() {}, "handler", false)
	assert.NoError(t, err)
	assert.NotNil(t, fn)

	_, err = validator.Callable("fn", "handler", false)
	assert.ErrorIs(t, err, validator.ErrTypeMismatch)

	var nilFn func()
	_, err = validator.Callable(nilFn, "handler", false)
	assert.ErrorIs(t, err, validator.ErrMissingField)
}

func TestStringList(t *testing.T) {
	list, err := validator.StringList(nil, "tokens", true)
	assert.NoError(t, err)
	assert.NotNil(t, list)
	assert.Empty(t, list)

	list, err = validator.StringList("tok", "tokens", false)
	assert.NoError(t, err)
	assert.Equal(t, []string{"tok"}, list)

	list, err = validator.StringList([]interface{}{"a", "b"}, "tokens", false)
	assert.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, list)

	_, err = validator.StringList([]interface{}{"a", 2}, "tokens", false)
	assert.ErrorIs(t, err, validator.ErrTypeMismatch)
}

func TestInstance(t *testing.T) {
	got, err := validator.Instance[*sample](&sample{Name: "x"}, "sample", false)
	assert.NoError(t, err)
	assert.Equal(t, "x", got.Name)

	var nilSample *sample
	got, err = validator.Instance[*sample](nilSample, "sample", true)
	assert.NoError(t, err)
	assert.Nil(t, got)

	_, err = validator.Instance[*sample](sample{}, "sample", false)
	var fieldErr *validator.FieldError
	require.True(t, errors.As(err, &fieldErr))
	assert.Equal(t, "sample", fieldErr.Field)
	assert.ErrorIs(t, err, validator.ErrTypeMismatch)
}

func TestInstanceList(t *testing.T) {
	list, err := validator.InstanceList[*sample](nil, "samples", true)
	assert.NoError(t, err)
	assert.NotNil(t, list)
	assert.Empty(t, list)

	list, err = validator.InstanceList[*sample]([]interface{}{&sample{Name: "a"}}, "samples", false)
	assert.NoError(t, err)
	assert.Len(t, list, 1)

	_, err = validator.InstanceList[*sample]([]interface{}{"a"}, "samples", false)
	assert.ErrorIs(t, err, validator.ErrTypeMismatch)
}
