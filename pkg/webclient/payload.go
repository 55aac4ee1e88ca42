package webclient

import (
	"fmt"

	"github.com/mitchellh/mapstructure"
	"go.uber.org/multierr"
)

// Proxy is an opaque platform value (a JS object) that may be readable as a list or a map.
type Proxy interface {
	AsList() ([]interface{}, error)
	AsMap() (map[string]interface{}, error)
}

// ConvertPayload turns proxies into plain slices and maps, recursively.
// A proxy that is neither a list nor a map is returned unchanged.
func ConvertPayload(payload interface{}) interface{} {
	switch v := payload.(type) {
	case Proxy:
		if items, err := v.AsList(); err == nil {
			return convertList(items)
		}

		m, err := v.AsMap()
		if err != nil {
			return payload
		}

		return convertMap(m)

	case []interface{}:
		return convertList(v)

	case map[string]interface{}:
		return convertMap(v)
	}

	return payload
}

func convertList(items []interface{}) []interface{} {
	out := make([]interface{}, len(items))
	for i, item := range items {
		out[i] = ConvertPayload(item)
	}

	return out
}

func convertMap(m map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(m))
	for k, v := range m {
		out[k] = ConvertPayload(v)
	}

	return out
}

type ForegroundNotification struct {
	Title string `mapstructure:"title" json:"title,omitempty"`
	Body  string `mapstructure:"body" json:"body,omitempty"`
	Image string `mapstructure:"image" json:"image,omitempty"`
	Icon  string `mapstructure:"icon" json:"icon,omitempty"`
}

type ForegroundFCMOptions struct {
	Link           string `mapstructure:"link" json:"link,omitempty"`
	AnalyticsLabel string `mapstructure:"analyticsLabel" json:"analyticsLabel,omitempty"`
}

// ForegroundMessage is the payload delivered to onMessage while the page has focus.
type ForegroundMessage struct {
	From         string                  `mapstructure:"from" json:"from,omitempty"`
	CollapseKey  string                  `mapstructure:"collapseKey" json:"collapseKey,omitempty"`
	MessageID    string                  `mapstructure:"messageId" json:"messageId,omitempty"`
	Notification *ForegroundNotification `mapstructure:"notification" json:"notification,omitempty"`
	Data         map[string]string       `mapstructure:"data" json:"data,omitempty"`
	FCMOptions   *ForegroundFCMOptions   `mapstructure:"fcmOptions" json:"fcmOptions,omitempty"`

	// Raw is the converted payload, unknown keys included.
	Raw map[string]interface{} `mapstructure:"-" json:"-"`
}

// DecodeForegroundMessage converts payload and decodes it into a ForegroundMessage.
// Each top level key is decoded on its own: a key that does not fit the typed fields is
// skipped and reported in the returned error, the message itself is never nil.
// Raw always holds the converted payload, a non object payload is kept under "payload".
func DecodeForegroundMessage(payload interface{}) (*ForegroundMessage, error) {
	converted := ConvertPayload(payload)
	raw, ok := converted.(map[string]interface{})
	if !ok {
		msg := &ForegroundMessage{Raw: map[string]interface{}{"payload": converted}}
		return msg, fmt.Errorf("foreground message must be an object, got %T", converted)
	}

	msg := &ForegroundMessage{Raw: raw}
	if err := decodeForeground(raw, msg); err == nil {
		return msg, nil
	}

	// slow path, keep every key that fits
	msg = &ForegroundMessage{Raw: raw}
	var errs error
	for key, value := range raw {
		field := &ForegroundMessage{}
		if err := decodeForeground(map[string]interface{}{key: value}, field); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("decode foreground message key '%s': %w", key, err))
			continue
		}

		msg.merge(field)
	}

	return msg, errs
}

func decodeForeground(input map[string]interface{}, out *ForegroundMessage) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           out,
	})
	if err != nil {
		return err
	}

	return dec.Decode(input)
}

// merge copies the fields set on other.
func (m *ForegroundMessage) merge(other *ForegroundMessage) {
	if other.From != "" {
		m.From = other.From
	}

	if other.CollapseKey != "" {
		m.CollapseKey = other.CollapseKey
	}

	if other.MessageID != "" {
		m.MessageID = other.MessageID
	}

	if other.Notification != nil {
		m.Notification = other.Notification
	}

	if other.Data != nil {
		m.Data = other.Data
	}

	if other.FCMOptions != nil {
		m.FCMOptions = other.FCMOptions
	}
}
