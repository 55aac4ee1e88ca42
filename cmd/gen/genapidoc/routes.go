package genapidoc

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/http"
	"sort"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/segmentio/encoding/json"
	"github.com/yusufsyaifudin/fcmpush/pkg/fcm"
	"github.com/yusufsyaifudin/fcmpush/pkg/respbuilder"
	"github.com/yusufsyaifudin/fcmpush/pkg/webclient"
	"github.com/yusufsyaifudin/fcmpush/storage/tokenrepo"
	"github.com/yusufsyaifudin/fcmpush/transport/restapi/handlertoken"
	"github.com/yusufsyaifudin/fcmpush/transport/restapi/httptyped"
)

// route documents one endpoint. Request and Response are example values, the schemas are derived
// from their JSON form so the document always matches what the handlers encode.
type route struct {
	Method      string
	Path        string
	OperationID string
	Tag         string
	Summary     string
	Params      openapi3.Parameters
	Request     interface{}
	Status      int
	Response    interface{}
}

func routes(ctx context.Context) []route {
	simple, _ := fcm.NewSimpleMessage(fcm.SimpleMessageParams{
		Title: "Hello",
		Body:  "You have a new message",
		Token: "device-token",
		Link:  "https://app.example.com/inbox",
		Data:  map[string]interface{}{"inbox_id": 12},
	})

	multicast, _ := fcm.NewMulticastMessage(fcm.MulticastMessage{
		Tokens: []string{"device-token-1", "device-token-2"},
		Data:   map[string]interface{}{"kind": "digest"},
	})

	sent := fcm.NewResponse(true, "0:1697700000000000%abc", "")
	failed := fcm.NewResponse(false, "", "registration token is not valid")
	batch := fcm.NewBatchResponse([]*fcm.Response{sent, failed}, 1, 1)
	topicResp := fcm.NewTopicManagementResponse(1, 0, []*fcm.TopicManagementError{})

	device := httptyped.DeviceTokenEntityFromRepo(tokenrepo.DeviceToken{
		ID:        480271294976,
		Token:     "device-token",
		UserID:    "user-1",
		Topics:    []string{"news"},
		CreatedAt: 1697700000000000,
		UpdatedAt: 1697700000000000,
	})

	bootstrap := &webclient.BootstrapConfig{
		Firebase: &webclient.FirebaseConfig{
			APIKey:            "api-key",
			AuthDomain:        "demo.firebaseapp.com",
			ProjectID:         "demo",
			StorageBucket:     "demo.appspot.com",
			MessagingSenderID: "1234567890",
			AppID:             "1:1234567890:web:abc",
			MeasurementID:     "G-ABC",
		},
		VapidKey:         "public-vapid-key",
		ServiceWorkerURL: "https://app.example.com/_/theme/fb-service-worker.js",
		Origins:          webclient.Origins{Published: "https://app.example.com", API: "https://api.example.com"},
		ActionMaps: []*webclient.ActionMap{
			{ActionName: "open", Endpoint: "/inbox", Params: map[string]interface{}{"ref": "push"}, Data: map[string]interface{}{}},
		},
		Topics: []string{"news"},
	}

	topicParam := openapi3.Parameters{
		{Value: openapi3.NewPathParameter("topic").WithSchema(openapi3.NewStringSchema())},
	}

	return []route{
		{
			Method: http.MethodGet, Path: "/ping", OperationID: "Ping", Tag: "System",
			Summary: "Service name and version",
			Status:  http.StatusOK, Response: map[string]string{"service": "fcmpush", "version": "1.0.0"},
		},
		{
			Method: http.MethodPost, Path: "/api/v1/messages", OperationID: "SendMessage", Tag: "Message",
			Summary: "Send one message to a token, topic or condition",
			Request: map[string]interface{}{"message": simple, "dry_run": false},
			Status:  http.StatusOK, Response: sent,
		},
		{
			Method: http.MethodPost, Path: "/api/v1/messages/batch", OperationID: "SendAll", Tag: "Message",
			Summary: "Send a list of messages in one batch",
			Request: map[string]interface{}{"messages": []*fcm.Message{simple}, "dry_run": true},
			Status:  http.StatusOK, Response: batch,
		},
		{
			Method: http.MethodPost, Path: "/api/v1/messages/multicast", OperationID: "SendMulticast", Tag: "Message",
			Summary: "Send one message to many tokens",
			Request: map[string]interface{}{"message": multicast, "dry_run": false},
			Status:  http.StatusOK, Response: batch,
		},
		{
			Method: http.MethodPost, Path: "/api/v1/topics/{topic}/subscribe", OperationID: "SubscribeToTopic", Tag: "Topic",
			Summary: "Subscribe a device token to a topic",
			Params:  topicParam,
			Request: handlertoken.TopicReq{Token: "device-token"},
			Status:  http.StatusOK, Response: handlertoken.TopicResp{Response: topicResp, DeviceToken: device},
		},
		{
			Method: http.MethodPost, Path: "/api/v1/topics/{topic}/unsubscribe", OperationID: "UnsubscribeFromTopic", Tag: "Topic",
			Summary: "Unsubscribe a device token from a topic",
			Params:  topicParam,
			Request: handlertoken.TopicReq{Token: "device-token"},
			Status:  http.StatusOK, Response: handlertoken.TopicResp{Response: topicResp, DeviceToken: device},
		},
		{
			Method: http.MethodPost, Path: "/api/v1/tokens", OperationID: "SaveToken", Tag: "Device Token",
			Summary: "Save or refresh a browser registration token",
			Request: handlertoken.SaveTokenReq{Token: "device-token", UserID: "user-1"},
			Status:  http.StatusCreated, Response: handlertoken.TokenResp{DeviceToken: device},
		},
		{
			Method: http.MethodGet, Path: "/api/v1/tokens", OperationID: "ListTokens", Tag: "Device Token",
			Summary: "List saved tokens ordered by id, filtered by user or topic",
			Params: openapi3.Parameters{
				{Value: openapi3.NewQueryParameter("user_id").WithSchema(openapi3.NewStringSchema())},
				{Value: openapi3.NewQueryParameter("topic").WithSchema(openapi3.NewStringSchema())},
				{Value: openapi3.NewQueryParameter("after_id").WithSchema(openapi3.NewInt64Schema().WithMin(0))},
				{Value: openapi3.NewQueryParameter("limit").WithSchema(openapi3.NewInt64Schema().WithMin(0).WithMax(1000))},
			},
			Status:   http.StatusOK,
			Response: handlertoken.ListTokensResp{DeviceTokens: []httptyped.DeviceTokenEntity{device}, NextID: device.ID},
		},
		{
			Method: http.MethodDelete, Path: "/api/v1/tokens/{token}", OperationID: "RemoveToken", Tag: "Device Token",
			Summary: "Remove a device token",
			Params: openapi3.Parameters{
				{Value: openapi3.NewPathParameter("token").WithSchema(openapi3.NewStringSchema())},
			},
			Status: http.StatusOK, Response: handlertoken.TokenResp{DeviceToken: device},
		},
		{
			Method: http.MethodPost, Path: "/api/v1/users/{user_id}/messages", OperationID: "SendToUser", Tag: "Message",
			Summary: "Multicast a message to every token saved for a user",
			Params: openapi3.Parameters{
				{Value: openapi3.NewPathParameter("user_id").WithSchema(openapi3.NewStringSchema())},
			},
			Request:  map[string]interface{}{"message": map[string]interface{}{"data": map[string]interface{}{"kind": "digest"}}},
			Status:   http.StatusOK,
			Response: handlertoken.SendToUserResp{Response: batch, Tokens: []string{"device-token-1", "device-token-2"}},
		},
		{
			Method: http.MethodGet, Path: "/api/v1/client-config", OperationID: "ClientConfig", Tag: "Browser Client",
			Summary: "Configuration the browser client boots from",
			Status:  http.StatusOK, Response: bootstrap,
		},
	}
}

func (r route) register(components openapi3.Components, paths openapi3.Paths) error {
	op := openapi3.NewOperation()
	op.Tags = []string{r.Tag}
	op.Summary = r.Summary
	op.OperationID = r.OperationID
	op.Parameters = r.Params

	if r.Request != nil {
		reqSchema, err := schemaFromExample(r.Request)
		if err != nil {
			return fmt.Errorf("request schema: %w", err)
		}

		components.Schemas[r.OperationID+"Req"] = openapi3.NewSchemaRef("", reqSchema)
		components.RequestBodies[r.OperationID] = &openapi3.RequestBodyRef{
			Value: openapi3.NewRequestBody().WithRequired(true).WithJSONSchemaRef(&openapi3.SchemaRef{
				Ref: fmt.Sprintf("#/components/schemas/%sReq", r.OperationID),
			}),
		}

		op.RequestBody = &openapi3.RequestBodyRef{
			Ref: fmt.Sprintf("#/components/requestBodies/%s", r.OperationID),
		}
	}

	respSchema, err := schemaFromExample(respbuilder.Success(context.Background(), r.Response))
	if err != nil {
		return fmt.Errorf("response schema: %w", err)
	}

	components.Schemas[r.OperationID+"Resp"] = openapi3.NewSchemaRef("", respSchema)
	op.AddResponse(r.Status, openapi3.NewResponse().WithDescription(http.StatusText(r.Status)).WithJSONSchemaRef(
		&openapi3.SchemaRef{Ref: fmt.Sprintf("#/components/schemas/%sResp", r.OperationID)},
	))

	errRef := &openapi3.SchemaRef{Ref: "#/components/schemas/HTTPError"}
	op.AddResponse(0, openapi3.NewResponse().WithDescription("Error").WithJSONSchemaRef(errRef))

	item, exist := paths[r.Path]
	if !exist {
		item = &openapi3.PathItem{}
		paths[r.Path] = item
	}

	item.SetOperation(r.Method, op)
	return nil
}

func exampleError(ctx context.Context) respbuilder.HTTPError {
	return respbuilder.Error(ctx, respbuilder.ErrValidation, errors.New("token is required"))
}

// schemaFromExample encodes v as JSON and describes the decoded value, keeping it as the example.
func schemaFromExample(v interface{}) (*openapi3.Schema, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}

	var generic interface{}
	if err = json.Unmarshal(b, &generic); err != nil {
		return nil, err
	}

	s := describe(generic)
	s.Example = generic
	return s, nil
}

func describe(v interface{}) *openapi3.Schema {
	switch x := v.(type) {
	case map[string]interface{}:
		s := openapi3.NewObjectSchema()
		keys := make([]string, 0, len(x))
		for k := range x {
			keys = append(keys, k)
		}

		sort.Strings(keys)
		for _, k := range keys {
			s.WithProperty(k, describe(x[k]))
		}

		return s

	case []interface{}:
		items := openapi3.NewSchema()
		if len(x) > 0 {
			items = describe(x[0])
		}

		return openapi3.NewArraySchema().WithItems(items)

	case string:
		return openapi3.NewStringSchema()

	case bool:
		return openapi3.NewBoolSchema()

	case float64:
		if x == math.Trunc(x) {
			return openapi3.NewInt64Schema()
		}

		return openapi3.NewFloat64Schema()
	}

	return openapi3.NewSchema().WithNullable()
}
