package msgsvc

import (
	"encoding/json"
	"math"
	"reflect"
	"strconv"
	"strings"

	"firebase.google.com/go/v4/messaging"
	"github.com/yusufsyaifudin/fcmpush/pkg/fcm"
)

// compileMessage converts the model message into the Admin SDK one.
// Token wins over topic; condition is only used when neither is set.
func compileMessage(m *fcm.Message) *messaging.Message {
	out := &messaging.Message{
		Data:       processData(m.Data),
		Webpush:    compileWebpushConfig(m.Webpush),
		FCMOptions: compileFCMOptions(m.FCMOptions),
		Token:      m.Token,
	}

	switch {
	case m.Token != "":
	case m.Topic != "":
		out.Topic = m.Topic
	default:
		out.Condition = m.Condition
	}

	return out
}

func compileMulticastMessage(m *fcm.MulticastMessage) *messaging.MulticastMessage {
	return &messaging.MulticastMessage{
		Tokens:     m.Tokens,
		Data:       processData(m.Data),
		Webpush:    compileWebpushConfig(m.Webpush),
		FCMOptions: compileFCMOptions(m.FCMOptions),
	}
}

func compileWebpushConfig(c *fcm.WebpushConfig) *messaging.WebpushConfig {
	if c == nil {
		return nil
	}

	out := &messaging.WebpushConfig{
		Headers:      c.Headers,
		Data:         processData(c.Data),
		Notification: compileWebpushNotification(c.Notification),
		FCMOptions:   compileWebpushFCMOptions(c.FCMOptions),
	}

	if len(out.Headers) == 0 && len(out.Data) == 0 && out.Notification == nil && out.FCMOptions == nil {
		return nil
	}

	return out
}

func compileWebpushNotification(n *fcm.WebpushNotification) *messaging.WebpushNotification {
	if n == nil {
		return nil
	}

	out := &messaging.WebpushNotification{
		Actions:            compileWebpushNotificationActions(n.Actions),
		Title:              n.Title,
		Body:               n.Body,
		Icon:               n.Icon,
		Badge:              n.Badge,
		Direction:          n.Direction,
		Image:              n.Image,
		Language:           n.Language,
		Renotify:           n.Renotify,
		RequireInteraction: n.RequireInteraction,
		Silent:             n.Silent,
		Tag:                n.Tag,
		Vibrate:            n.Vibrate,
	}

	if len(n.Data) > 0 {
		out.Data = n.Data
	}

	if len(n.CustomData) > 0 {
		out.CustomData = n.CustomData
	}

	if n.TimestampMillis != 0 {
		ts := n.TimestampMillis
		out.TimestampMillis = &ts
	}

	return out
}

func compileWebpushNotificationActions(actions []*fcm.WebpushNotificationAction) []*messaging.WebpushNotificationAction {
	out := make([]*messaging.WebpushNotificationAction, 0, len(actions))
	for _, action := range actions {
		if action == nil {
			continue
		}

		out = append(out, &messaging.WebpushNotificationAction{
			Action: action.Action,
			Title:  action.Title,
			Icon:   action.Icon,
		})
	}

	if len(out) == 0 {
		return nil
	}

	return out
}

func compileWebpushFCMOptions(o *fcm.WebpushFCMOptions) *messaging.WebpushFCMOptions {
	if o == nil || o.Link == "" {
		return nil
	}

	return &messaging.WebpushFCMOptions{Link: o.Link}
}

func compileFCMOptions(o *fcm.FCMOptions) *messaging.FCMOptions {
	if o == nil || o.AnalyticsLabel == "" {
		return nil
	}

	return &messaging.FCMOptions{AnalyticsLabel: o.AnalyticsLabel}
}

// processData keeps only string, integer and float values and turns them into strings.
// Everything else (lists, maps, booleans, nil) is dropped. json.Number keeps its text,
// floats always carry a fraction or an exponent: 3.0 becomes "3.0", 1e16 becomes "1e+16".
func processData(data map[string]interface{}) map[string]string {
	out := make(map[string]string, len(data))
	for k, v := range data {
		s, ok := scalarString(v)
		if !ok {
			continue
		}

		out[k] = s
	}

	return out
}

func scalarString(v interface{}) (string, bool) {
	if n, ok := v.(json.Number); ok {
		return n.String(), true
	}

	if v == nil {
		return "", false
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.String:
		return rv.String(), true
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.FormatInt(rv.Int(), 10), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return strconv.FormatUint(rv.Uint(), 10), true
	case reflect.Float32:
		return formatFloat(rv.Float(), 32), true
	case reflect.Float64:
		return formatFloat(rv.Float(), 64), true
	}

	return "", false
}

// formatFloat writes the shortest representation, switching to an exponent below 1e-4 and from 1e16.
func formatFloat(f float64, bitSize int) string {
	switch {
	case math.IsNaN(f):
		return "nan"
	case math.IsInf(f, 1):
		return "inf"
	case math.IsInf(f, -1):
		return "-inf"
	}

	sci := strconv.FormatFloat(f, 'e', -1, bitSize)
	exp, err := strconv.Atoi(sci[strings.IndexByte(sci, 'e')+1:])
	if err != nil || exp < -4 || exp >= 16 {
		return sci
	}

	s := strconv.FormatFloat(f, 'f', -1, bitSize)
	if !strings.ContainsRune(s, '.') {
		s += ".0"
	}

	return s
}
