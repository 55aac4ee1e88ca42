package handlermsg

import (
	"fmt"
	"net/http"

	"github.com/yusufsyaifudin/fcmpush/internal/svc/msgsvc"
	"github.com/yusufsyaifudin/fcmpush/pkg/fcm"
	"github.com/yusufsyaifudin/fcmpush/pkg/respbuilder"
	"github.com/yusufsyaifudin/fcmpush/pkg/tracer"
	"github.com/yusufsyaifudin/fcmpush/pkg/validator"
	"github.com/yusufsyaifudin/fcmpush/transport/restapi/httptyped"
	"go.opentelemetry.io/otel/trace"
)

type HandlerConfig struct {
	MsgService msgsvc.Service `validate:"required"`
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

// SendMessage handles {"message": {...}, "simple": bool, "dry_run": bool}.
// With simple the message object holds the flat SimpleMessage fields.
func (h *Handler) SendMessage() func(http.ResponseWriter, *http.Request) {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		var span trace.Span
		ctx, span = tracer.StartSpan(ctx, "handlermsg.SendMessage")
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

		simple, err := validator.Bool(body["simple"], "simple", true)
		if err != nil {
			httptyped.WriteBadRequest(ctx, w, r, err)
			return
		}

		raw, err := validator.Dict(body["message"], "message", true, false)
		if err != nil {
			httptyped.WriteBadRequest(ctx, w, r, err)
			return
		}

		var msg *fcm.Message
		if simple != nil && *simple {
			msg, err = fcm.SimpleMessageFromMap(raw)
		} else {
			msg, err = fcm.MessageFromMap(raw)
		}

		if err != nil {
			httptyped.WriteBadRequest(ctx, w, r, err)
			return
		}

		out, err := h.Config.MsgService.Send(ctx, msg, dryRun)
		if err != nil {
			httptyped.WriteError(ctx, w, r, err)
			return
		}

		respbuilder.WriteJSON(http.StatusOK, w, r, respbuilder.Success(ctx, out))
	}
}

// SendAll handles {"messages": [{...}], "dry_run": bool}.
func (h *Handler) SendAll() func(http.ResponseWriter, *http.Request) {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		var span trace.Span
		ctx, span = tracer.StartSpan(ctx, "handlermsg.SendAll")
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

		items, err := validator.List(body["messages"], "messages", false, false)
		if err != nil {
			httptyped.WriteBadRequest(ctx, w, r, err)
			return
		}

		messages := make([]*fcm.Message, 0, len(items))
		for i, item := range items {
			raw, _err := validator.Dict(item, fmt.Sprintf("messages[%d]", i), true, false)
			if _err != nil {
				httptyped.WriteBadRequest(ctx, w, r, _err)
				return
			}

			msg, _err := fcm.MessageFromMap(raw)
			if _err != nil {
				httptyped.WriteBadRequest(ctx, w, r, fmt.Errorf("messages[%d]: %w", i, _err))
				return
			}

			messages = append(messages, msg)
		}

		out, err := h.Config.MsgService.SendAll(ctx, messages, dryRun)
		if err != nil {
			httptyped.WriteError(ctx, w, r, err)
			return
		}

		respbuilder.WriteJSON(http.StatusOK, w, r, respbuilder.Success(ctx, out))
	}
}

// SendMulticast handles {"message": {"tokens": [...], ...}, "dry_run": bool}.
func (h *Handler) SendMulticast() func(http.ResponseWriter, *http.Request) {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		var span trace.Span
		ctx, span = tracer.StartSpan(ctx, "handlermsg.SendMulticast")
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

		out, err := h.Config.MsgService.SendMulticast(ctx, msg, dryRun)
		if err != nil {
			httptyped.WriteError(ctx, w, r, err)
			return
		}

		respbuilder.WriteJSON(http.StatusOK, w, r, respbuilder.Success(ctx, out))
	}
}
