package fcm

import (
	"fmt"

	"github.com/yusufsyaifudin/fcmpush/pkg/serializer"
	"github.com/yusufsyaifudin/fcmpush/pkg/validator"
)

const (
	KindMessage          = "message"
	KindSimpleMessage    = "simple_message"
	KindMulticastMessage = "multicast_message"
)

// Message targets a single token, a topic or a condition.
// When both Token and Topic are set the token wins at send time.
type Message struct {
	Data       map[string]interface{}
	Webpush    *WebpushConfig
	FCMOptions *FCMOptions
	Token      string
	Topic      string
	Condition  string

	kind string
}

var _ serializer.Projector = (*Message)(nil)

func NewMessage(m Message) (*Message, error) {
	if err := m.validate(); err != nil {
		return nil, err
	}

	m.kind = KindMessage
	return &m, nil
}

func MessageFromMap(in map[string]interface{}) (out *Message, err error) {
	m := Message{}
	if m.Data, err = validator.Dict(in["data"], "data", true, true); err != nil {
		return
	}

	if m.Webpush, err = decodeNested(in["webpush"], "webpush", WebpushConfigFromMap); err != nil {
		return
	}

	if m.FCMOptions, m.Webpush, err = messageFCMOptions(in["fcm_options"], m.Webpush); err != nil {
		return
	}

	if m.Token, err = validator.String(in["token"], "token", true); err != nil {
		return
	}

	if m.Topic, err = validator.String(in["topic"], "topic", true); err != nil {
		return
	}

	if m.Condition, err = validator.String(in["condition"], "condition", true); err != nil {
		return
	}

	return NewMessage(m)
}

func (m *Message) validate() error {
	if m.Webpush != nil {
		return m.Webpush.validate()
	}

	return nil
}

// Kind is one of KindMessage or KindSimpleMessage.
func (m *Message) Kind() string {
	if m.kind == "" {
		return KindMessage
	}

	return m.kind
}

func (m *Message) Fields() []serializer.Field {
	return []serializer.Field{
		serializer.F("data", m.Data),
		serializer.F("webpush", m.Webpush),
		serializer.F("fcm_options", m.FCMOptions),
		serializer.F("token", m.Token),
		serializer.F("topic", m.Topic),
		serializer.F("condition", m.Condition),
	}
}

func (m *Message) ToMap() map[string]interface{} { return serializer.ToMap(m, true) }

func (m *Message) MarshalJSON() ([]byte, error) { return serializer.Marshal(m) }

func (m *Message) UnmarshalJSON(b []byte) error {
	raw, err := decodeJSON(b)
	if err != nil {
		return err
	}

	decoded, err := MessageFromMap(raw)
	if err != nil {
		return err
	}

	*m = *decoded
	return nil
}

func (m *Message) String() string {
	return fmt.Sprintf("Message(title=%s, kind=%s)", webpushTitle(m.Webpush), m.Kind())
}

// MulticastMessage targets a list of registration tokens.
type MulticastMessage struct {
	Data       map[string]interface{}
	Webpush    *WebpushConfig
	FCMOptions *FCMOptions
	Tokens     []string
	Condition  string
}

var _ serializer.Projector = (*MulticastMessage)(nil)

func NewMulticastMessage(m MulticastMessage) (*MulticastMessage, error) {
	if m.Webpush != nil {
		if err := m.Webpush.validate(); err != nil {
			return nil, err
		}
	}

	return &m, nil
}

func MulticastMessageFromMap(in map[string]interface{}) (out *MulticastMessage, err error) {
	m := MulticastMessage{}
	if m.Data, err = validator.Dict(in["data"], "data", true, true); err != nil {
		return
	}

	if m.Webpush, err = decodeNested(in["webpush"], "webpush", WebpushConfigFromMap); err != nil {
		return
	}

	if m.FCMOptions, m.Webpush, err = messageFCMOptions(in["fcm_options"], m.Webpush); err != nil {
		return
	}

	if in["tokens"] != nil {
		if m.Tokens, err = validator.StringList(in["tokens"], "tokens", true); err != nil {
			return
		}
	}

	if m.Condition, err = validator.String(in["condition"], "condition", true); err != nil {
		return
	}

	return NewMulticastMessage(m)
}

func (m *MulticastMessage) Kind() string { return KindMulticastMessage }

func (m *MulticastMessage) Fields() []serializer.Field {
	return []serializer.Field{
		serializer.F("data", m.Data),
		serializer.F("webpush", m.Webpush),
		serializer.F("fcm_options", m.FCMOptions),
		serializer.F("tokens", m.Tokens),
		serializer.F("condition", m.Condition),
	}
}

func (m *MulticastMessage) ToMap() map[string]interface{} { return serializer.ToMap(m, true) }

func (m *MulticastMessage) MarshalJSON() ([]byte, error) { return serializer.Marshal(m) }

func (m *MulticastMessage) UnmarshalJSON(b []byte) error {
	raw, err := decodeJSON(b)
	if err != nil {
		return err
	}

	decoded, err := MulticastMessageFromMap(raw)
	if err != nil {
		return err
	}

	*m = *decoded
	return nil
}

func (m *MulticastMessage) String() string {
	return fmt.Sprintf("MulticastMessage(title=%s, tokens=%d)", webpushTitle(m.Webpush), len(m.Tokens))
}

// SimpleMessageParams are the flat fields a SimpleMessage is built from.
// Title and Body are required.
type SimpleMessageParams struct {
	Title              string                       `json:"title"`
	Body               string                       `json:"body"`
	Token              string                       `json:"token,omitempty"`
	Topic              string                       `json:"topic,omitempty"`
	Condition          string                       `json:"condition,omitempty"`
	Data               map[string]interface{}       `json:"data,omitempty"`
	CustomData         map[string]interface{}       `json:"custom_data,omitempty"`
	Headers            map[string]string            `json:"headers,omitempty"`
	Icon               string                       `json:"icon,omitempty"`
	Image              string                       `json:"image,omitempty"`
	Badge              string                       `json:"badge,omitempty"`
	Link               string                       `json:"link,omitempty"`
	Actions            []*WebpushNotificationAction `json:"actions,omitempty"`
	Direction          string                       `json:"direction,omitempty"`
	Language           string                       `json:"language,omitempty"`
	Renotify           bool                         `json:"renotify,omitempty"`
	RequireInteraction bool                         `json:"require_interaction,omitempty"`
	Silent             bool                         `json:"silent,omitempty"`
	Tag                string                       `json:"tag,omitempty"`
	TimestampMillis    int64                        `json:"timestamp_millis,omitempty"`
	Vibrate            []int                        `json:"vibrate,omitempty"`
}

// NewSimpleMessage builds a Message whose webpush notification carries the given fields.
// The link always produces a WebpushFCMOptions, even when empty.
func NewSimpleMessage(p SimpleMessageParams) (*Message, error) {
	if _, err := validator.String(opt(p.Title), "title", false); err != nil {
		return nil, err
	}

	if _, err := validator.String(opt(p.Body), "body", false); err != nil {
		return nil, err
	}

	notification, err := NewWebpushNotification(WebpushNotification{
		Title:              p.Title,
		Body:               p.Body,
		Icon:               p.Icon,
		Actions:            p.Actions,
		Badge:              p.Badge,
		Direction:          p.Direction,
		Image:              p.Image,
		Language:           p.Language,
		Renotify:           p.Renotify,
		RequireInteraction: p.RequireInteraction,
		Silent:             p.Silent,
		Tag:                p.Tag,
		TimestampMillis:    p.TimestampMillis,
		Vibrate:            p.Vibrate,
		CustomData:         p.CustomData,
	})
	if err != nil {
		return nil, err
	}

	fcmOptions, err := NewWebpushFCMOptions(p.Link)
	if err != nil {
		return nil, err
	}

	webpush, err := NewWebpushConfig(WebpushConfig{
		Headers:      p.Headers,
		Notification: notification,
		FCMOptions:   fcmOptions,
	})
	if err != nil {
		return nil, err
	}

	msg, err := NewMessage(Message{
		Data:      p.Data,
		Webpush:   webpush,
		Token:     p.Token,
		Topic:     p.Topic,
		Condition: p.Condition,
	})
	if err != nil {
		return nil, err
	}

	msg.kind = KindSimpleMessage
	return msg, nil
}

func SimpleMessageFromMap(in map[string]interface{}) (out *Message, err error) {
	p := SimpleMessageParams{}
	if p.Title, err = validator.String(in["title"], "title", false); err != nil {
		return
	}

	if p.Body, err = validator.String(in["body"], "body", false); err != nil {
		return
	}

	strs := []struct {
		name string
		dst  *string
		url  bool
	}{
		{name: "token", dst: &p.Token},
		{name: "topic", dst: &p.Topic},
		{name: "condition", dst: &p.Condition},
		{name: "icon", dst: &p.Icon, url: true},
		{name: "image", dst: &p.Image, url: true},
		{name: "badge", dst: &p.Badge, url: true},
		{name: "link", dst: &p.Link, url: true},
		{name: "language", dst: &p.Language},
		{name: "tag", dst: &p.Tag},
	}

	for _, s := range strs {
		if s.url {
			*s.dst, err = validator.URL(in[s.name], s.name, true)
		} else {
			*s.dst, err = validator.String(in[s.name], s.name, true)
		}

		if err != nil {
			return
		}
	}

	if p.Data, err = validator.Dict(in["data"], "data", true, true); err != nil {
		return
	}

	if p.CustomData, err = validator.Dict(in["custom_data"], "custom_data", false, true); err != nil {
		return
	}

	if p.Headers, err = stringMap(in["headers"], "headers"); err != nil {
		return
	}

	if p.Actions, err = decodeList(in["actions"], "actions", WebpushNotificationActionFromMap); err != nil {
		return
	}

	if p.Direction, err = validator.StringOption(in["direction"], "direction", directions, true); err != nil {
		return
	}

	if p.Renotify, err = boolField(in["renotify"], "renotify"); err != nil {
		return
	}

	if p.RequireInteraction, err = boolField(in["require_interaction"], "require_interaction"); err != nil {
		return
	}

	if p.Silent, err = boolField(in["silent"], "silent"); err != nil {
		return
	}

	if p.TimestampMillis, err = validator.Int(in["timestamp_millis"], "timestamp_millis", true); err != nil {
		return
	}

	if p.Vibrate, err = intList(in["vibrate"], "vibrate"); err != nil {
		return
	}

	return NewSimpleMessage(p)
}

func webpushTitle(c *WebpushConfig) string {
	if c == nil || c.Notification == nil {
		return ""
	}

	return c.Notification.Title
}
