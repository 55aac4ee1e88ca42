package fcm

import (
	"fmt"
	"strings"

	"firebase.google.com/go/v4/messaging"
	"github.com/segmentio/encoding/json"
	"github.com/yusufsyaifudin/fcmpush/pkg/serializer"
	"github.com/yusufsyaifudin/fcmpush/pkg/validator"
)

// Response is the result of sending one message.
type Response struct {
	Success   bool
	MessageID string
	Exception string
}

var _ serializer.Projector = (*Response)(nil)

func NewResponse(success bool, messageID, exception string) *Response {
	return &Response{Success: success, MessageID: messageID, Exception: exception}
}

func ResponseFromMap(m map[string]interface{}) (out *Response, err error) {
	success, err := validator.Bool(m["success"], "success", false)
	if err != nil {
		return
	}

	messageID, err := validator.String(m["message_id"], "message_id", true)
	if err != nil {
		return
	}

	exception, err := validator.String(m["exception"], "exception", true)
	if err != nil {
		return
	}

	return NewResponse(*success, messageID, exception), nil
}

// ResponseFromFCM reads whatever the SDK produced for a single send: the message name string,
// an error, a *messaging.SendResponse or a decoded map. Unknown shapes become a failed Response.
func ResponseFromFCM(v interface{}) *Response {
	switch t := v.(type) {
	case string:
		idx := strings.LastIndex(t, "/messages/")
		if idx < 0 {
			return NewResponse(false, "", "")
		}

		return NewResponse(true, t[idx+len("/messages/"):], "")

	case *messaging.SendResponse:
		if t == nil {
			return NewResponse(false, "", "")
		}

		return NewResponse(t.Success, t.MessageID, stringify(t.Error))

	case error:
		return NewResponse(false, "", t.Error())

	case map[string]interface{}:
		exception := stringify(t["exception"])
		if exception == "" {
			exception = stringify(t["error"])
		}

		return NewResponse(successValue(t["success"]), stringify(t["message_id"]), exception)
	}

	return NewResponse(false, "", "")
}

func (r *Response) Fields() []serializer.Field {
	return []serializer.Field{
		serializer.F("success", r.Success),
		serializer.F("message_id", r.MessageID),
		serializer.F("exception", r.Exception),
	}
}

func (r *Response) ToMap() map[string]interface{} { return serializer.ToMap(r, true) }

func (r *Response) MarshalJSON() ([]byte, error) { return serializer.Marshal(r) }

func (r *Response) String() string {
	if r.Success {
		return fmt.Sprintf("Response(message_id=%s, success=%t)", r.MessageID, r.Success)
	}

	return fmt.Sprintf("Response(exception=%s, success=%t)", r.Exception, r.Success)
}

// BatchResponse aggregates the results of a batch or multicast send.
// The counts come from the SDK and are not derived from Responses.
type BatchResponse struct {
	Responses    []*Response
	SuccessCount int
	FailureCount int
}

var _ serializer.Projector = (*BatchResponse)(nil)

func NewBatchResponse(responses []*Response, successCount, failureCount int) *BatchResponse {
	if responses == nil {
		responses = []*Response{}
	}

	return &BatchResponse{Responses: responses, SuccessCount: successCount, FailureCount: failureCount}
}

func BatchResponseFromMap(m map[string]interface{}) (out *BatchResponse, err error) {
	responses, err := decodeList(m["responses"], "responses", ResponseFromMap)
	if err != nil {
		return
	}

	successCount, err := validator.Int(m["success_count"], "success_count", false)
	if err != nil {
		return
	}

	failureCount, err := validator.Int(m["failure_count"], "failure_count", false)
	if err != nil {
		return
	}

	return NewBatchResponse(responses, int(successCount), int(failureCount)), nil
}

// BatchResponseFromFCM reads a *messaging.BatchResponse or a decoded map. Missing parts default to empty.
func BatchResponseFromFCM(v interface{}) *BatchResponse {
	switch t := v.(type) {
	case *messaging.BatchResponse:
		if t == nil {
			break
		}

		responses := make([]*Response, 0, len(t.Responses))
		for _, r := range t.Responses {
			responses = append(responses, ResponseFromFCM(r))
		}

		return NewBatchResponse(responses, t.SuccessCount, t.FailureCount)

	case map[string]interface{}:
		items, _ := validator.List(t["responses"], "responses", false, true)
		responses := make([]*Response, 0, len(items))
		for _, item := range items {
			responses = append(responses, ResponseFromFCM(item))
		}

		return NewBatchResponse(responses, intValue(t["success_count"]), intValue(t["failure_count"]))
	}

	return NewBatchResponse(nil, 0, 0)
}

func (b *BatchResponse) Fields() []serializer.Field {
	return []serializer.Field{
		serializer.F("responses", b.Responses),
		serializer.F("success_count", b.SuccessCount),
		serializer.F("failure_count", b.FailureCount),
	}
}

// ToMap keeps zero counts.
func (b *BatchResponse) ToMap() map[string]interface{} { return serializer.ToMap(b, false) }

func (b *BatchResponse) MarshalJSON() ([]byte, error) {
	return json.Marshal(b.ToMap())
}

func (b *BatchResponse) String() string {
	return fmt.Sprintf("BatchResponse(success_count=%d, failure_count=%d)", b.SuccessCount, b.FailureCount)
}

// TopicManagementError is the failure of one token in a topic (un)subscription.
type TopicManagementError struct {
	Index  int
	Reason string
}

var _ serializer.Projector = (*TopicManagementError)(nil)

func (e *TopicManagementError) Fields() []serializer.Field {
	return []serializer.Field{
		serializer.F("index", e.Index),
		serializer.F("reason", e.Reason),
	}
}

func (e *TopicManagementError) MarshalJSON() ([]byte, error) {
	return json.Marshal(serializer.ToMap(e, false))
}

func topicManagementErrorFromMap(m map[string]interface{}) (*TopicManagementError, error) {
	index, err := validator.Int(m["index"], "index", true)
	if err != nil {
		return nil, err
	}

	return &TopicManagementError{Index: int(index), Reason: stringify(m["reason"])}, nil
}

// TopicManagementResponse is the result of a topic (un)subscription.
type TopicManagementResponse struct {
	SuccessCount int
	FailureCount int
	Errors       []*TopicManagementError
}

var _ serializer.Projector = (*TopicManagementResponse)(nil)

func NewTopicManagementResponse(successCount, failureCount int, errs []*TopicManagementError) *TopicManagementResponse {
	if errs == nil {
		errs = []*TopicManagementError{}
	}

	return &TopicManagementResponse{SuccessCount: successCount, FailureCount: failureCount, Errors: errs}
}

func TopicManagementResponseFromMap(m map[string]interface{}) (out *TopicManagementResponse, err error) {
	successCount, err := validator.Int(m["success_count"], "success_count", false)
	if err != nil {
		return
	}

	failureCount, err := validator.Int(m["failure_count"], "failure_count", false)
	if err != nil {
		return
	}

	errs, err := decodeList(m["errors"], "errors", topicManagementErrorFromMap)
	if err != nil {
		return
	}

	return NewTopicManagementResponse(int(successCount), int(failureCount), errs), nil
}

// TopicManagementResponseFromFCM reads a *messaging.TopicManagementResponse or a decoded map.
func TopicManagementResponseFromFCM(v interface{}) *TopicManagementResponse {
	switch t := v.(type) {
	case *messaging.TopicManagementResponse:
		if t == nil {
			break
		}

		errs := make([]*TopicManagementError, 0, len(t.Errors))
		for _, e := range t.Errors {
			if e == nil {
				continue
			}

			errs = append(errs, &TopicManagementError{Index: e.Index, Reason: e.Reason})
		}

		return NewTopicManagementResponse(t.SuccessCount, t.FailureCount, errs)

	case map[string]interface{}:
		items, _ := validator.List(t["errors"], "errors", false, true)
		errs := make([]*TopicManagementError, 0, len(items))
		for _, item := range items {
			m, ok := item.(map[string]interface{})
			if !ok {
				continue
			}

			errs = append(errs, &TopicManagementError{Index: intValue(m["index"]), Reason: stringify(m["reason"])})
		}

		return NewTopicManagementResponse(intValue(t["success_count"]), intValue(t["failure_count"]), errs)
	}

	return NewTopicManagementResponse(0, 0, nil)
}

func (r *TopicManagementResponse) Fields() []serializer.Field {
	return []serializer.Field{
		serializer.F("success_count", r.SuccessCount),
		serializer.F("failure_count", r.FailureCount),
		serializer.F("errors", r.Errors),
	}
}

// ToMap keeps zero counts.
func (r *TopicManagementResponse) ToMap() map[string]interface{} { return serializer.ToMap(r, false) }

func (r *TopicManagementResponse) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.ToMap())
}

func (r *TopicManagementResponse) String() string {
	return fmt.Sprintf("TopicManagementResponse(success_count=%d, failure_count=%d)", r.SuccessCount, r.FailureCount)
}

// successValue is true for bool true, "1" or "true" in any case, and the integer 1.
func successValue(v interface{}) bool {
	switch t := v.(type) {
	case bool:
		return t
	case string:
		s := strings.ToLower(t)
		return s == "1" || s == "true"
	}

	i, ok := validator.AsInt64(v)
	return ok && i == 1
}

func intValue(v interface{}) int {
	i, _ := validator.AsInt64(v)
	return int(i)
}

func stringify(v interface{}) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case error:
		if serializer.IsNil(t) {
			return ""
		}

		return t.Error()
	}

	if serializer.IsNil(v) {
		return ""
	}

	return fmt.Sprint(v)
}
