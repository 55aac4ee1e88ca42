package handlertoken

import (
	"context"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/schema"
	"github.com/yusufsyaifudin/fcmpush/internal/svc/tokensvc"
	"github.com/yusufsyaifudin/fcmpush/pkg/fcm"
	"github.com/yusufsyaifudin/fcmpush/pkg/respbuilder"
	"github.com/yusufsyaifudin/fcmpush/pkg/tracer"
	"github.com/yusufsyaifudin/fcmpush/pkg/validator"
	"github.com/yusufsyaifudin/fcmpush/transport/restapi/httptyped"
	"go.opentelemetry.io/otel/trace"
)

type HandlerConfig struct {
	TokenService tokensvc.Service `validate:"required"`
}

type Handler struct {
	Config HandlerConfig
}

func NewHandler(cfg HandlerConfig) (*Handler, error) {
	err := validator.Validate(cfg)
	if err != nil {
		return nil, err
	}

	return &Handler{Config: cfg}, nil
}

type SaveTokenReq struct {
	Token  string `json:"token"`
	UserID string `json:"user_id"`
}

type TokenResp struct {
	DeviceToken httptyped.DeviceTokenEntity `json:"device_token"`
}

func (h *Handler) SaveToken() func(http.ResponseWriter, *http.Request) {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		var span trace.Span
		ctx, span = tracer.StartSpan(ctx, "handlertoken.SaveToken")
		defer span.End()

		var reqBody SaveTokenReq
		if err := httptyped.DecodeInto(r, &reqBody); err != nil {
			httptyped.WriteBadRequest(ctx, w, r, err)
			return
		}

		out, err := h.Config.TokenService.SaveToken(ctx, tokensvc.InputSaveToken{
			Token:  reqBody.Token,
			UserID: reqBody.UserID,
		})
		if err != nil {
			httptyped.WriteError(ctx, w, r, err)
			return
		}

		resp := respbuilder.Success(ctx, TokenResp{DeviceToken: httptyped.DeviceTokenEntityFromRepo(out.DeviceToken)})
		respbuilder.WriteJSON(http.StatusCreated, w, r, resp)
	}
}

func (h *Handler) RemoveToken() func(http.ResponseWriter, *http.Request) {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		var span trace.Span
		ctx, span = tracer.StartSpan(ctx, "handlertoken.RemoveToken")
		defer span.End()

		out, err := h.Config.TokenService.RemoveToken(ctx, tokensvc.InputRemoveToken{
			Token: chi.URLParam(r, "token"),
		})
		if err != nil {
			httptyped.WriteError(ctx, w, r, err)
			return
		}

		resp := respbuilder.Success(ctx, TokenResp{DeviceToken: httptyped.DeviceTokenEntityFromRepo(out.DeviceToken)})
		respbuilder.WriteJSON(http.StatusOK, w, r, resp)
	}
}

type ListTokensReq struct {
	UserID  string `schema:"user_id"`
	Topic   string `schema:"topic"`
	AfterID int64  `schema:"after_id"`
	Limit   int64  `schema:"limit"`
}

type ListTokensResp struct {
	DeviceTokens []httptyped.DeviceTokenEntity `json:"device_tokens"`
	NextID       int64                         `json:"next_id,omitempty"`
}

func (h *Handler) ListTokens() func(http.ResponseWriter, *http.Request) {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		var span trace.Span
		ctx, span = tracer.StartSpan(ctx, "handlertoken.ListTokens")
		defer span.End()

		err := r.ParseForm()
		if err != nil {
			httptyped.WriteBadRequest(ctx, w, r, fmt.Errorf("failed parse form: %w", err))
			return
		}

		query := ListTokensReq{}
		queryDec := schema.NewDecoder()
		queryDec.IgnoreUnknownKeys(true)
		err = queryDec.Decode(&query, r.Form)
		if err != nil {
			httptyped.WriteBadRequest(ctx, w, r, fmt.Errorf("failed decode query params: %w", err))
			return
		}

		out, err := h.Config.TokenService.ListTokens(ctx, tokensvc.InputListTokens{
			UserID:  query.UserID,
			Topic:   query.Topic,
			AfterID: query.AfterID,
			Limit:   query.Limit,
		})
		if err != nil {
			httptyped.WriteError(ctx, w, r, err)
			return
		}

		resp := respbuilder.Success(ctx, ListTokensResp{
			DeviceTokens: httptyped.DeviceTokenEntitiesFromRepo(out.DeviceTokens),
			NextID:       out.NextID,
		})
		respbuilder.WriteJSON(http.StatusOK, w, r, resp)
	}
}

type TopicReq struct {
	Token string `json:"token"`
}

type TopicResp struct {
	Response    *fcm.TopicManagementResponse `json:"response"`
	DeviceToken httptyped.DeviceTokenEntity  `json:"device_token"`
}

func (h *Handler) Subscribe() func(http.ResponseWriter, *http.Request) {
	return h.topic("handlertoken.Subscribe", h.Config.TokenService.Subscribe)
}

func (h *Handler) Unsubscribe() func(http.ResponseWriter, *http.Request) {
	return h.topic("handlertoken.Unsubscribe", h.Config.TokenService.Unsubscribe)
}

type topicFunc func(ctx context.Context, in tokensvc.InputTopic) (tokensvc.OutTopic, error)

func (h *Handler) topic(spanName string, fn topicFunc) func(http.ResponseWriter, *http.Request) {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		var span trace.Span
		ctx, span = tracer.StartSpan(ctx, spanName)
		defer span.End()

		var reqBody TopicReq
		if err := httptyped.DecodeInto(r, &reqBody); err != nil {
			httptyped.WriteBadRequest(ctx, w, r, err)
			return
		}

		out, err := fn(ctx, tokensvc.InputTopic{
			Topic: chi.URLParam(r, "topic"),
			Token: reqBody.Token,
		})
		if err != nil {
			httptyped.WriteError(ctx, w, r, err)
			return
		}

		resp := respbuilder.Success(ctx, TopicResp{
			Response:    out.Response,
			DeviceToken: httptyped.DeviceTokenEntityFromRepo(out.DeviceToken),
		})
		respbuilder.WriteJSON(http.StatusOK, w, r, resp)
	}
}

type SendToUserResp struct {
	Response *fcm.BatchResponse `json:"response"`
	Tokens   []string           `json:"tokens"`
}

// SendToUser handles {"message": {...multicast without tokens}, "dry_run": bool}.
func (h *Handler) SendToUser() func(http.ResponseWriter, *http.Request) {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		var span trace.Span
		ctx, span = tracer.StartSpan(ctx, "handlertoken.SendToUser")
		defer span.End()

		body, err := httptyped.DecodeBody(r)
		if err != nil {
			httptyped.WriteBadRequest(ctx, w, r, err)
			return
		}

		dryRun, err := httptyped.DryRun(body)
		if err != nil {
			httptyped.WriteBadRequest(ctx, w, r, err)
			return
		}

		raw, err := validator.Dict(body["message"], "message", true, false)
		if err != nil {
			httptyped.WriteBadRequest(ctx, w, r, err)
			return
		}

		msg, err := fcm.MulticastMessageFromMap(raw)
		if err != nil {
			httptyped.WriteBadRequest(ctx, w, r, err)
			return
		}

		out, err := h.Config.TokenService.SendToUser(ctx, tokensvc.InputSendToUser{
			UserID:  chi.URLParam(r, "user_id"),
			Message: msg,
			DryRun:  dryRun,
		})
		if err != nil {
			httptyped.WriteError(ctx, w, r, err)
			return
		}

		resp := respbuilder.Success(ctx, SendToUserResp{Response: out.Response, Tokens: out.Tokens})
		respbuilder.WriteJSON(http.StatusOK, w, r, resp)
	}
}
