package webclient

import (
	"context"
	"fmt"
	"net/url"

	"github.com/go-resty/resty/v2"
	"github.com/segmentio/encoding/json"
	"github.com/yusufsyaifudin/fcmpush/pkg/respbuilder"
	"github.com/yusufsyaifudin/fcmpush/pkg/validator"
)

// BootstrapConfig is what the browser needs to build a Client. It is served by GET /api/v1/client-config.
type BootstrapConfig struct {
	Firebase         *FirebaseConfig `json:"firebase_config"`
	VapidKey         string          `json:"vapid_key,omitempty"`
	ServiceWorkerURL string          `json:"service_worker_url"`
	Origins          Origins         `json:"origins"`
	ActionMaps       []*ActionMap    `json:"action_maps"`
	Topics           []string        `json:"topics"`
}

type RESTConfig struct {
	BaseURL string `validate:"required,url"`

	// UserID is sent along with every saved token, may be empty.
	UserID string

	// Client defaults to resty.New().
	Client *resty.Client `validate:"-"`
}

// RESTHandlers implement the save-token and topic handlers on top of the fcmpush REST API.
type RESTHandlers struct {
	userID string
	client *resty.Client
}

func NewRESTHandlers(cfg RESTConfig) (*RESTHandlers, error) {
	if err := validator.Validate(cfg); err != nil {
		return nil, err
	}

	client := cfg.Client
	if client == nil {
		client = resty.New()
	}

	client.SetBaseURL(cfg.BaseURL).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json")

	return &RESTHandlers{userID: cfg.UserID, client: client}, nil
}

func (r *RESTHandlers) SaveToken(ctx context.Context, token string) error {
	body := map[string]string{"token": token, "user_id": r.userID}
	return r.post(ctx, "/api/v1/tokens", body, nil)
}

func (r *RESTHandlers) Subscribe(ctx context.Context, topic, token string) error {
	path := fmt.Sprintf("/api/v1/topics/%s/subscribe", url.PathEscape(topic))
	return r.post(ctx, path, map[string]string{"token": token}, nil)
}

func (r *RESTHandlers) Unsubscribe(ctx context.Context, topic, token string) error {
	path := fmt.Sprintf("/api/v1/topics/%s/unsubscribe", url.PathEscape(topic))
	return r.post(ctx, path, map[string]string{"token": token}, nil)
}

// ClientConfig fetches the bootstrap configuration.
func (r *RESTHandlers) ClientConfig(ctx context.Context) (*BootstrapConfig, error) {
	resp, err := r.client.R().SetContext(ctx).Get("/api/v1/client-config")
	if err != nil {
		return nil, fmt.Errorf("get client config: %w", err)
	}

	out := &BootstrapConfig{}
	if err = decodeEnvelope(resp, out); err != nil {
		return nil, fmt.Errorf("get client config: %w", err)
	}

	return out, nil
}

func (r *RESTHandlers) post(ctx context.Context, path string, body, out interface{}) error {
	resp, err := r.client.R().SetContext(ctx).SetBody(body).Post(path)
	if err != nil {
		return fmt.Errorf("post %s: %w", path, err)
	}

	if err = decodeEnvelope(resp, out); err != nil {
		return fmt.Errorf("post %s: %w", path, err)
	}

	return nil
}

// decodeEnvelope unwraps the data of a success envelope into out, or returns the error envelope.
func decodeEnvelope(resp *resty.Response, out interface{}) error {
	if resp.IsError() {
		httpErr := respbuilder.HTTPError{}
		if err := json.Unmarshal(resp.Body(), &httpErr); err != nil || httpErr.Err.Code == "" {
			return fmt.Errorf("unexpected status %d", resp.StatusCode())
		}

		return httpErr
	}

	if out == nil {
		return nil
	}

	envelope := struct {
		Data json.RawMessage `json:"data"`
	}{}

	if err := json.Unmarshal(resp.Body(), &envelope); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}

	if err := json.Unmarshal(envelope.Data, out); err != nil {
		return fmt.Errorf("decode response data: %w", err)
	}

	return nil
}

// Handlers returns the handler funcs to set on Config.
func (r *RESTHandlers) Handlers() (SaveTokenHandler, TopicHandler, TopicHandler) {
	return r.SaveToken, r.Subscribe, r.Unsubscribe
}
