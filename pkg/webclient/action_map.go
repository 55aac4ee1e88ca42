package webclient

import (
	"errors"
	"fmt"
	"strings"

	"github.com/yusufsyaifudin/fcmpush/pkg/serializer"
	"github.com/yusufsyaifudin/fcmpush/pkg/validator"
)

var ErrActionMapTarget = errors.New("endpoint or full_url must be set")

// ActionMap routes a notification action to a URL opened or called by the service worker.
// Params go to the query string of a page URL; Data and AuthKey are sent as the body and
// bearer token of an API call.
type ActionMap struct {
	ActionName    string                 `json:"action_name" yaml:"action_name"`
	Endpoint      string                 `json:"endpoint,omitempty" yaml:"endpoint"`
	FullURL       string                 `json:"full_url,omitempty" yaml:"full_url"`
	Params        map[string]interface{} `json:"params" yaml:"params"`
	Data          map[string]interface{} `json:"data" yaml:"data"`
	AuthKey       string                 `json:"auth_key,omitempty" yaml:"auth_key"`
	IsAPIEndpoint bool                   `json:"is_api_endpoint" yaml:"is_api_endpoint"`
}

var _ serializer.Projector = (*ActionMap)(nil)

func NewActionMap(in ActionMap) (*ActionMap, error) {
	a := in
	if a.Endpoint == "" && a.FullURL == "" {
		return nil, ErrActionMapTarget
	}

	if _, err := validator.String(opt(a.ActionName), "action_name", false); err != nil {
		return nil, err
	}

	if _, err := validator.URL(opt(a.FullURL), "full_url", true); err != nil {
		return nil, err
	}

	if a.Params == nil {
		a.Params = map[string]interface{}{}
	}

	if a.Data == nil {
		a.Data = map[string]interface{}{}
	}

	return &a, nil
}

func ActionMapFromMap(m map[string]interface{}) (*ActionMap, error) {
	endpoint, err := validator.String(m["endpoint"], "endpoint", true)
	if err != nil {
		return nil, err
	}

	fullURL, err := validator.String(m["full_url"], "full_url", true)
	if err != nil {
		return nil, err
	}

	if endpoint == "" && fullURL == "" {
		return nil, ErrActionMapTarget
	}

	name, err := validator.String(m["action_name"], "action_name", false)
	if err != nil {
		return nil, err
	}

	params, err := validator.Dict(m["params"], "params", false, true)
	if err != nil {
		return nil, err
	}

	data, err := validator.Dict(m["data"], "data", false, true)
	if err != nil {
		return nil, err
	}

	authKey, err := validator.String(m["auth_key"], "auth_key", true)
	if err != nil {
		return nil, err
	}

	isAPI, err := validator.Bool(m["is_api_endpoint"], "is_api_endpoint", true)
	if err != nil {
		return nil, err
	}

	return NewActionMap(ActionMap{
		ActionName:    name,
		Endpoint:      endpoint,
		FullURL:       fullURL,
		Params:        params,
		Data:          data,
		AuthKey:       authKey,
		IsAPIEndpoint: isAPI != nil && *isAPI,
	})
}

// ResolveURL returns FullURL when set, otherwise builds it from Endpoint and origins.
func (a *ActionMap) ResolveURL(origins Origins) string {
	if a.FullURL != "" {
		return a.FullURL
	}

	if strings.HasPrefix(a.Endpoint, "http://") || strings.HasPrefix(a.Endpoint, "https://") {
		return a.Endpoint
	}

	endpoint := strings.TrimPrefix(a.Endpoint, "/")

	var base string
	switch {
	case a.IsAPIEndpoint:
		base = origins.API
	case origins.Debug:
		base = origins.App
	default:
		base = origins.Published
	}

	return fmt.Sprintf("%s/%s", strings.TrimRight(base, "/"), endpoint)
}

func (a *ActionMap) Fields() []serializer.Field {
	return []serializer.Field{
		serializer.F("action_name", a.ActionName),
		serializer.F("endpoint", a.Endpoint),
		serializer.F("full_url", a.FullURL),
		serializer.F("params", a.Params),
		serializer.F("data", a.Data),
		serializer.F("auth_key", a.AuthKey),
		serializer.F("is_api_endpoint", a.IsAPIEndpoint),
	}
}

func (a *ActionMap) String() string {
	return fmt.Sprintf("ActionMap(action_name=%s)", a.ActionName)
}

// workerMessage is the ADD_ACTION_MAP message understood by the service worker.
func (a *ActionMap) workerMessage(origins Origins) map[string]interface{} {
	return map[string]interface{}{
		"type":       MessageAddActionMap,
		"actionName": a.ActionName,
		"fullUrl":    a.ResolveURL(origins),
		"params":     a.Params,
		"data":       a.Data,
		"authKey":    a.AuthKey,
	}
}

func opt(s string) interface{} {
	if s == "" {
		return nil
	}

	return s
}
