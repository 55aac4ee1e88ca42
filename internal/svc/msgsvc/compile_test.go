package msgsvc

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yusufsyaifudin/fcmpush/pkg/fcm"
)

func TestProcessData(t *testing.T) {
	out := processData(map[string]interface{}{
		"count":  3,
		"ratio":  1.5,
		"big":    uint64(10),
		"num":    json.Number("42"),
		"name":   "x",
		"nested": []interface{}{"a"},
		"obj":    map[string]interface{}{"a": 1},
		"flag":   true,
		"none":   nil,
	})

	assert.Equal(t, map[string]string{
		"count": "3",
		"ratio": "1.5",
		"big":   "10",
		"num":   "42",
		"name":  "x",
	}, out)

	assert.Empty(t, processData(nil))
}

func TestProcessData_Floats(t *testing.T) {
	out := processData(map[string]interface{}{
		"whole":    3.0,
		"negative": -2.0,
		"small":    0.00001,
		"big":      1e16,
		"million":  1e6,
		"single":   float32(0.5),
		"nan":      math.NaN(),
	})

	assert.Equal(t, map[string]string{
		"whole":    "3.0",
		"negative": "-2.0",
		"small":    "1e-05",
		"big":      "1e+16",
		"million":  "1000000.0",
		"single":   "0.5",
		"nan":      "nan",
	}, out)
}

func TestCompileMessage_Target(t *testing.T) {
	testCases := []struct {
		Name      string
		In        fcm.Message
		Token     string
		Topic     string
		Condition string
	}{
		{Name: "token wins", In: fcm.Message{Token: "tok", Topic: "news", Condition: "c"}, Token: "tok"},
		{Name: "topic", In: fcm.Message{Topic: "news", Condition: "c"}, Topic: "news"},
		{Name: "condition", In: fcm.Message{Condition: "'a' in topics"}, Condition: "'a' in topics"},
	}

	for _, testCase := range testCases {
		t.Run(testCase.Name, func(t *testing.T) {
			msg, err := fcm.NewMessage(testCase.In)
			require.NoError(t, err)

			out := compileMessage(msg)
			assert.Equal(t, testCase.Token, out.Token)
			assert.Equal(t, testCase.Topic, out.Topic)
			assert.Equal(t, testCase.Condition, out.Condition)
		})
	}
}

func TestCompileMessage_Webpush(t *testing.T) {
	action, err := fcm.NewWebpushNotificationAction("open", "Open", "")
	require.NoError(t, err)

	msg, err := fcm.NewSimpleMessage(fcm.SimpleMessageParams{
		Title:           "T",
		Body:            "B",
		Token:           "tok",
		Link:            "https://example.com",
		Actions:         []*fcm.WebpushNotificationAction{action},
		TimestampMillis: 1000,
		Data:            map[string]interface{}{"count": 3, "list": []int{1}},
		CustomData:      map[string]interface{}{"extra": "v"},
	})
	require.NoError(t, err)

	out := compileMessage(msg)
	assert.Equal(t, map[string]string{"count": "3"}, out.Data)
	require.NotNil(t, out.Webpush)
	require.NotNil(t, out.Webpush.Notification)
	assert.Equal(t, "T", out.Webpush.Notification.Title)
	assert.Equal(t, "auto", out.Webpush.Notification.Direction)
	require.Len(t, out.Webpush.Notification.Actions, 1)
	assert.Equal(t, "open", out.Webpush.Notification.Actions[0].Action)
	require.NotNil(t, out.Webpush.Notification.TimestampMillis)
	assert.Equal(t, int64(1000), *out.Webpush.Notification.TimestampMillis)
	assert.Equal(t, map[string]interface{}{"extra": "v"}, out.Webpush.Notification.CustomData)
	assert.Equal(t, "https://example.com", out.Webpush.FCMOptions.Link)
	assert.Nil(t, out.FCMOptions)
}

func TestCompileWebpushConfig_Absent(t *testing.T) {
	assert.Nil(t, compileWebpushConfig(nil))
	assert.Nil(t, compileWebpushConfig(&fcm.WebpushConfig{}))
	assert.Nil(t, compileWebpushConfig(&fcm.WebpushConfig{FCMOptions: &fcm.WebpushFCMOptions{}}))

	n, err := fcm.NewWebpushNotification(fcm.WebpushNotification{})
	require.NoError(t, err)

	out := compileWebpushConfig(&fcm.WebpushConfig{Notification: n})
	require.NotNil(t, out)
	assert.Nil(t, out.Notification.Actions)
	assert.Nil(t, out.Notification.TimestampMillis)
	assert.Nil(t, out.FCMOptions)
}

func TestCompileMulticastMessage(t *testing.T) {
	msg, err := fcm.NewMulticastMessage(fcm.MulticastMessage{
		Tokens:     []string{"a", "b"},
		FCMOptions: fcm.NewFCMOptions("campaign"),
		Data:       map[string]interface{}{"k": "v"},
	})
	require.NoError(t, err)

	out := compileMulticastMessage(msg)
	assert.Equal(t, []string{"a", "b"}, out.Tokens)
	assert.Equal(t, "campaign", out.FCMOptions.AnalyticsLabel)
	assert.Equal(t, map[string]string{"k": "v"}, out.Data)
	assert.Nil(t, out.Webpush)
}
