package fcm

import (
	"fmt"

	"github.com/yusufsyaifudin/fcmpush/pkg/serializer"
	"github.com/yusufsyaifudin/fcmpush/pkg/validator"
)

const (
	DirectionAuto = "auto"
	DirectionLTR  = "ltr"
	DirectionRTL  = "rtl"
)

var directions = []string{DirectionAuto, DirectionLTR, DirectionRTL}

// FCMOptions holds the analytics metadata of a message.
type FCMOptions struct {
	AnalyticsLabel string
}

var _ serializer.Projector = (*FCMOptions)(nil)

func NewFCMOptions(analyticsLabel string) *FCMOptions {
	return &FCMOptions{AnalyticsLabel: analyticsLabel}
}

// FCMOptionsFromMap accepts analytics_label only, other keys are rejected.
func FCMOptionsFromMap(m map[string]interface{}) (*FCMOptions, error) {
	for key := range m {
		if key != "analytics_label" {
			return nil, &validator.FieldError{
				Field:    "fcm_options." + key,
				Kind:     validator.ErrInvalidFormat,
				Expected: "a known key (analytics_label)",
			}
		}
	}

	label, err := validator.String(m["analytics_label"], "analytics_label", true)
	if err != nil {
		return nil, err
	}

	return NewFCMOptions(label), nil
}

func (o *FCMOptions) Fields() []serializer.Field {
	return []serializer.Field{
		serializer.F("analytics_label", o.AnalyticsLabel),
	}
}

func (o *FCMOptions) ToMap() map[string]interface{} { return serializer.ToMap(o, true) }

func (o *FCMOptions) MarshalJSON() ([]byte, error) { return serializer.Marshal(o) }

func (o *FCMOptions) String() string {
	return fmt.Sprintf("FCMOptions(analytics_label=%s)", o.AnalyticsLabel)
}

// WebpushNotificationAction is a single action button shown on a webpush notification.
type WebpushNotificationAction struct {
	Action string
	Title  string
	Icon   string
}

var _ serializer.Projector = (*WebpushNotificationAction)(nil)

func NewWebpushNotificationAction(action, title, icon string) (*WebpushNotificationAction, error) {
	a := &WebpushNotificationAction{Action: action, Title: title, Icon: icon}
	if err := a.validate(); err != nil {
		return nil, err
	}

	return a, nil
}

func WebpushNotificationActionFromMap(m map[string]interface{}) (*WebpushNotificationAction, error) {
	action, err := validator.String(m["action"], "action", false)
	if err != nil {
		return nil, err
	}

	title, err := validator.String(m["title"], "title", false)
	if err != nil {
		return nil, err
	}

	icon, err := validator.URL(m["icon"], "icon", true)
	if err != nil {
		return nil, err
	}

	return NewWebpushNotificationAction(action, title, icon)
}

func (a *WebpushNotificationAction) validate() error {
	if _, err := validator.String(opt(a.Action), "action", false); err != nil {
		return err
	}

	if _, err := validator.String(opt(a.Title), "title", false); err != nil {
		return err
	}

	_, err := validator.URL(opt(a.Icon), "icon", true)
	return err
}

func (a *WebpushNotificationAction) Fields() []serializer.Field {
	return []serializer.Field{
		serializer.F("action", a.Action),
		serializer.F("title", a.Title),
		serializer.F("icon", a.Icon),
	}
}

func (a *WebpushNotificationAction) ToMap() map[string]interface{} { return serializer.ToMap(a, true) }

func (a *WebpushNotificationAction) MarshalJSON() ([]byte, error) { return serializer.Marshal(a) }

func (a *WebpushNotificationAction) String() string {
	return fmt.Sprintf("WebpushNotificationAction(action=%s, title=%s, icon=%s)", a.Action, a.Title, a.Icon)
}

// WebpushNotification is the notification content and display behavior of a webpush message.
// Empty strings, zero TimestampMillis and nil collections mean the field is absent.
type WebpushNotification struct {
	Title              string
	Body               string
	Icon               string
	Actions            []*WebpushNotificationAction
	Badge              string
	Data               map[string]interface{}
	Direction          string
	Image              string
	Language           string
	Renotify           bool
	RequireInteraction bool
	Silent             bool
	Tag                string
	TimestampMillis    int64
	Vibrate            []int
	CustomData         map[string]interface{}
}

var _ serializer.Projector = (*WebpushNotification)(nil)

// NewWebpushNotification validates n and returns a copy of it. Direction defaults to auto.
func NewWebpushNotification(n WebpushNotification) (*WebpushNotification, error) {
	if n.Direction == "" {
		n.Direction = DirectionAuto
	}

	if err := n.validate(); err != nil {
		return nil, err
	}

	return &n, nil
}

func WebpushNotificationFromMap(m map[string]interface{}) (out *WebpushNotification, err error) {
	n := WebpushNotification{}
	if n.Title, err = validator.String(m["title"], "title", true); err != nil {
		return
	}

	if n.Body, err = validator.String(m["body"], "body", true); err != nil {
		return
	}

	if n.Icon, err = validator.URL(m["icon"], "icon", true); err != nil {
		return
	}

	if n.Actions, err = decodeList(m["actions"], "actions", WebpushNotificationActionFromMap); err != nil {
		return
	}

	if n.Badge, err = validator.URL(m["badge"], "badge", true); err != nil {
		return
	}

	if n.Data, err = validator.Dict(m["data"], "data", false, true); err != nil {
		return
	}

	if n.Direction, err = validator.StringOption(m["direction"], "direction", directions, true); err != nil {
		return
	}

	if n.Image, err = validator.URL(m["image"], "image", true); err != nil {
		return
	}

	if n.Language, err = validator.String(m["language"], "language", true); err != nil {
		return
	}

	if n.Renotify, err = boolField(m["renotify"], "renotify"); err != nil {
		return
	}

	if n.RequireInteraction, err = boolField(m["require_interaction"], "require_interaction"); err != nil {
		return
	}

	if n.Silent, err = boolField(m["silent"], "silent"); err != nil {
		return
	}

	if n.Tag, err = validator.String(m["tag"], "tag", true); err != nil {
		return
	}

	if n.TimestampMillis, err = validator.Int(m["timestamp_millis"], "timestamp_millis", true); err != nil {
		return
	}

	if n.Vibrate, err = intList(m["vibrate"], "vibrate"); err != nil {
		return
	}

	if n.CustomData, err = validator.Dict(m["custom_data"], "custom_data", false, true); err != nil {
		return
	}

	return NewWebpushNotification(n)
}

func (n *WebpushNotification) validate() error {
	checks := []func() error{
		func() error { _, err := validator.URL(opt(n.Icon), "icon", true); return err },
		func() error { _, err := validator.URL(opt(n.Badge), "badge", true); return err },
		func() error { _, err := validator.URL(opt(n.Image), "image", true); return err },
		func() error {
			_, err := validator.StringOption(opt(n.Direction), "direction", directions, true)
			return err
		},
	}

	for _, check := range checks {
		if err := check(); err != nil {
			return err
		}
	}

	for _, action := range n.Actions {
		if action == nil {
			return &validator.FieldError{Field: "actions", Kind: validator.ErrTypeMismatch, Expected: "a list of actions", Actual: "nil item"}
		}

		if err := action.validate(); err != nil {
			return err
		}
	}

	return nil
}

func (n *WebpushNotification) Fields() []serializer.Field {
	return []serializer.Field{
		serializer.F("title", n.Title),
		serializer.F("body", n.Body),
		serializer.F("icon", n.Icon),
		serializer.F("actions", n.Actions),
		serializer.F("badge", n.Badge),
		serializer.F("data", n.Data),
		serializer.F("direction", n.Direction),
		serializer.F("image", n.Image),
		serializer.F("language", n.Language),
		serializer.F("renotify", n.Renotify),
		serializer.F("require_interaction", n.RequireInteraction),
		serializer.F("silent", n.Silent),
		serializer.F("tag", n.Tag),
		serializer.F("timestamp_millis", n.TimestampMillis),
		serializer.F("vibrate", n.Vibrate),
		serializer.F("custom_data", n.CustomData),
	}
}

func (n *WebpushNotification) ToMap() map[string]interface{} { return serializer.ToMap(n, true) }

func (n *WebpushNotification) MarshalJSON() ([]byte, error) { return serializer.Marshal(n) }

func (n *WebpushNotification) String() string {
	return fmt.Sprintf("WebpushNotification(title=%s)", n.Title)
}

// WebpushFCMOptions holds the webpush specific FCM options.
type WebpushFCMOptions struct {
	Link string
}

var _ serializer.Projector = (*WebpushFCMOptions)(nil)

func NewWebpushFCMOptions(link string) (*WebpushFCMOptions, error) {
	if _, err := validator.URL(opt(link), "link", true); err != nil {
		return nil, err
	}

	return &WebpushFCMOptions{Link: link}, nil
}

func WebpushFCMOptionsFromMap(m map[string]interface{}) (*WebpushFCMOptions, error) {
	link, err := validator.URL(m["link"], "link", true)
	if err != nil {
		return nil, err
	}

	return NewWebpushFCMOptions(link)
}

func (o *WebpushFCMOptions) Fields() []serializer.Field {
	return []serializer.Field{serializer.F("link", o.Link)}
}

func (o *WebpushFCMOptions) ToMap() map[string]interface{} { return serializer.ToMap(o, true) }

func (o *WebpushFCMOptions) MarshalJSON() ([]byte, error) { return serializer.Marshal(o) }

func (o *WebpushFCMOptions) String() string {
	return fmt.Sprintf("WebpushFCMOptions(link=%s)", o.Link)
}

// WebpushConfig is the webpush transport configuration of a message.
type WebpushConfig struct {
	Headers      map[string]string
	Data         map[string]interface{}
	Notification *WebpushNotification
	FCMOptions   *WebpushFCMOptions
}

var _ serializer.Projector = (*WebpushConfig)(nil)

func NewWebpushConfig(c WebpushConfig) (*WebpushConfig, error) {
	if err := c.validate(); err != nil {
		return nil, err
	}

	return &c, nil
}

func WebpushConfigFromMap(m map[string]interface{}) (out *WebpushConfig, err error) {
	c := WebpushConfig{}
	if c.Headers, err = stringMap(m["headers"], "headers"); err != nil {
		return
	}

	if c.Data, err = validator.Dict(m["data"], "data", true, true); err != nil {
		return
	}

	if c.Notification, err = decodeNested(m["notification"], "notification", WebpushNotificationFromMap); err != nil {
		return
	}

	if c.FCMOptions, err = decodeNested(m["fcm_options"], "fcm_options", WebpushFCMOptionsFromMap); err != nil {
		return
	}

	return NewWebpushConfig(c)
}

func (c *WebpushConfig) validate() error {
	if c.Notification != nil {
		if err := c.Notification.validate(); err != nil {
			return err
		}
	}

	if c.FCMOptions != nil {
		if _, err := validator.URL(opt(c.FCMOptions.Link), "link", true); err != nil {
			return err
		}
	}

	return nil
}

func (c *WebpushConfig) Fields() []serializer.Field {
	return []serializer.Field{
		serializer.F("headers", c.Headers),
		serializer.F("data", c.Data),
		serializer.F("notification", c.Notification),
		serializer.F("fcm_options", c.FCMOptions),
	}
}

func (c *WebpushConfig) ToMap() map[string]interface{} { return serializer.ToMap(c, true) }

func (c *WebpushConfig) MarshalJSON() ([]byte, error) { return serializer.Marshal(c) }
