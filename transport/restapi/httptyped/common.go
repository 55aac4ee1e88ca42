package httptyped

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/segmentio/encoding/json"
	"github.com/yusufsyaifudin/fcmpush/internal/svc/msgsvc"
	"github.com/yusufsyaifudin/fcmpush/internal/svc/tokensvc"
	"github.com/yusufsyaifudin/fcmpush/pkg/respbuilder"
	"github.com/yusufsyaifudin/fcmpush/pkg/validator"
	"github.com/yusufsyaifudin/fcmpush/storage/tokenrepo"
	"github.com/yusufsyaifudin/ylog"
)

// DeviceTokenEntity is the device token as returned by the API.
type DeviceTokenEntity struct {
	ID        int64    `json:"id"`
	Token     string   `json:"token"`
	UserID    string   `json:"user_id,omitempty"`
	Topics    []string `json:"topics"`
	CreatedAt int64    `json:"created_at"`
	UpdatedAt int64    `json:"updated_at"`
}

func DeviceTokenEntityFromRepo(d tokenrepo.DeviceToken) DeviceTokenEntity {
	topics := []string(d.Topics)
	if topics == nil {
		topics = []string{}
	}

	return DeviceTokenEntity{
		ID:        d.ID,
		Token:     d.Token,
		UserID:    d.UserID,
		Topics:    topics,
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
	}
}

func DeviceTokenEntitiesFromRepo(items []tokenrepo.DeviceToken) []DeviceTokenEntity {
	out := make([]DeviceTokenEntity, 0, len(items))
	for _, item := range items {
		out = append(out, DeviceTokenEntityFromRepo(item))
	}

	return out
}

// DecodeBody reads a JSON object from the request body, keeping numbers as json.Number.
func DecodeBody(r *http.Request) (map[string]interface{}, error) {
	if r.Body == nil {
		return nil, fmt.Errorf("request body is nil")
	}

	ctx := r.Context()
	defer func() {
		if _err := r.Body.Close(); _err != nil {
			ylog.Error(ctx, "cannot close request body", ylog.KV("error", _err))
		}
	}()

	body, err := io.ReadAll(r.Body)
	if err != nil {
		return nil, fmt.Errorf("cannot read request body: %w", err)
	}

	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()

	out := map[string]interface{}{}
	if err = dec.Decode(&out); err != nil {
		return nil, fmt.Errorf("invalid json body: %w", err)
	}

	return out, nil
}

// DecodeInto decodes the request body into a typed struct.
func DecodeInto(r *http.Request, v interface{}) error {
	if r.Body == nil {
		return fmt.Errorf("request body is nil")
	}

	ctx := r.Context()
	defer func() {
		if _err := r.Body.Close(); _err != nil {
			ylog.Error(ctx, "cannot close request body", ylog.KV("error", _err))
		}
	}()

	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return fmt.Errorf("invalid json body: %w", err)
	}

	return nil
}

// DryRun reads the optional "dry_run" flag of a decoded body.
func DryRun(body map[string]interface{}) (bool, error) {
	b, err := validator.Bool(body["dry_run"], "dry_run", true)
	if err != nil || b == nil {
		return false, err
	}

	return *b, nil
}

// WriteError maps err to an error kind and writes its envelope.
func WriteError(ctx context.Context, w http.ResponseWriter, r *http.Request, err error) {
	kind := ErrKindOf(err)
	ylog.Error(ctx, "request failed", ylog.KV("error", err), ylog.KV("status", kind.Status()))
	respbuilder.WriteError(w, r, kind, err)
}

func ErrKindOf(err error) respbuilder.ErrKind {
	switch {
	case validator.IsValidation(err),
		errors.Is(err, msgsvc.ErrNilMessage),
		errors.Is(err, msgsvc.ErrNilMulticast),
		errors.Is(err, tokenrepo.ErrValidation):
		return respbuilder.ErrValidation

	case errors.Is(err, tokenrepo.ErrNotFound), errors.Is(err, tokensvc.ErrNoTokens):
		return respbuilder.ErrResourceNotFound

	case errors.Is(err, tokensvc.ErrTopicRejected):
		return respbuilder.ErrUpstreamRejected

	case errors.Is(err, msgsvc.ErrNotInitialized):
		return respbuilder.ErrUnavailable
	}

	return respbuilder.ErrUnhandled
}

// WriteBadRequest writes a validation error envelope.
func WriteBadRequest(ctx context.Context, w http.ResponseWriter, r *http.Request, err error) {
	respbuilder.WriteError(w, r, respbuilder.ErrValidation, err)
}
