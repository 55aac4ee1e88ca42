package fcm

import (
	"bytes"
	"fmt"

	"github.com/segmentio/encoding/json"
	"github.com/yusufsyaifudin/fcmpush/pkg/validator"
)

// opt turns an empty string into nil so optional validators see it as absent.
func opt(s string) interface{} {
	if s == "" {
		return nil
	}

	return s
}

func boolField(value interface{}, field string) (bool, error) {
	b, err := validator.Bool(value, field, true)
	if err != nil || b == nil {
		return false, err
	}

	return *b, nil
}

func intList(value interface{}, field string) ([]int, error) {
	items, err := validator.List(value, field, false, true)
	if err != nil || items == nil {
		return nil, err
	}

	out := make([]int, 0, len(items))
	for _, item := range items {
		i, ok := validator.AsInt64(item)
		if !ok {
			return nil, &validator.FieldError{
				Field:    field,
				Kind:     validator.ErrTypeMismatch,
				Expected: "a list of integers",
				Actual:   fmt.Sprintf("item of type %T", item),
			}
		}

		out = append(out, int(i))
	}

	return out, nil
}

func stringMap(value interface{}, field string) (map[string]string, error) {
	if m, ok := value.(map[string]string); ok {
		if len(m) == 0 {
			return nil, nil
		}

		return m, nil
	}

	m, err := validator.Dict(value, field, true, true)
	if err != nil || m == nil {
		return nil, err
	}

	out := make(map[string]string, len(m))
	for k, v := range m {
		s, ok := v.(string)
		if !ok {
			return nil, &validator.FieldError{
				Field:    field,
				Kind:     validator.ErrTypeMismatch,
				Expected: "a map of strings",
				Actual:   fmt.Sprintf("value of type %T", v),
			}
		}

		out[k] = s
	}

	return out, nil
}

// messageFCMOptions decodes a message level fcm_options. Its "link" is the webpush click
// through link and moves into webpush.fcm_options, unless that one is already set.
func messageFCMOptions(value interface{}, webpush *WebpushConfig) (*FCMOptions, *WebpushConfig, error) {
	raw, ok := value.(map[string]interface{})
	if !ok {
		opts, err := decodeNested(value, "fcm_options", FCMOptionsFromMap)
		return opts, webpush, err
	}

	link, hasLink := raw["link"]
	rest := make(map[string]interface{}, len(raw))
	for k, v := range raw {
		if k != "link" {
			rest[k] = v
		}
	}

	if hasLink {
		wpOpts, err := WebpushFCMOptionsFromMap(map[string]interface{}{"link": link})
		if err != nil {
			return nil, nil, err
		}

		wp := WebpushConfig{}
		if webpush != nil {
			wp = *webpush
		}

		if wp.FCMOptions == nil {
			wp.FCMOptions = wpOpts
		}

		webpush = &wp
		if len(rest) == 0 {
			return nil, webpush, nil
		}
	}

	opts, err := FCMOptionsFromMap(rest)
	if err != nil {
		return nil, nil, err
	}

	return opts, webpush, nil
}

// decodeNested accepts either an already built entity or its map form.
func decodeNested[T any](value interface{}, field string, decode func(map[string]interface{}) (T, error)) (T, error) {
	if m, ok := value.(map[string]interface{}); ok {
		return decode(m)
	}

	return validator.Instance[T](value, field, true)
}

func decodeList[T any](value interface{}, field string, decode func(map[string]interface{}) (T, error)) ([]T, error) {
	items, err := validator.List(value, field, false, true)
	if err != nil || items == nil {
		return nil, err
	}

	out := make([]T, 0, len(items))
	for _, item := range items {
		t, err := decodeNested(item, field, decode)
		if err != nil {
			return nil, err
		}

		out = append(out, t)
	}

	return out, nil
}

// decodeJSON decodes b into a generic map keeping numbers as json.Number.
func decodeJSON(b []byte) (map[string]interface{}, error) {
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()

	m := map[string]interface{}{}
	if err := dec.Decode(&m); err != nil {
		return nil, fmt.Errorf("decode json: %w", err)
	}

	return m, nil
}
