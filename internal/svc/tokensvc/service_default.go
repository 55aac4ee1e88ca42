package tokensvc

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/yusufsyaifudin/fcmpush/internal/svc/msgsvc"
	"github.com/yusufsyaifudin/fcmpush/pkg/fcm"
	"github.com/yusufsyaifudin/fcmpush/pkg/tracer"
	"github.com/yusufsyaifudin/fcmpush/pkg/uid"
	"github.com/yusufsyaifudin/fcmpush/pkg/validator"
	"github.com/yusufsyaifudin/fcmpush/pkg/worker"
	"github.com/yusufsyaifudin/fcmpush/storage/tokenrepo"
	"github.com/yusufsyaifudin/ylog"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/multierr"
)

const defaultListLimit = 100

type Config struct {
	UIDGen     uid.UID        `validate:"required"`
	TokenRepo  tokenrepo.Repo `validate:"required"`
	MsgService msgsvc.Service `validate:"required"`

	// Worker sends the multicast chunks of SendToUser. Nil sends them one by one.
	Worker worker.Service
}

type DefaultService struct {
	Config Config
}

var _ Service = (*DefaultService)(nil)

func New(cfg Config) (*DefaultService, error) {
	if err := validator.Validate(cfg); err != nil {
		return nil, err
	}

	if cfg.Worker == nil {
		cfg.Worker = worker.Inline{}
	}

	return &DefaultService{
		Config: cfg,
	}, nil
}

func (d *DefaultService) SaveToken(ctx context.Context, in InputSaveToken) (out OutSaveToken, err error) {
	var span trace.Span
	ctx, span = tracer.StartSpan(ctx, "tokensvc.SaveToken")
	defer span.End()

	in.Token = strings.TrimSpace(in.Token)
	err = validator.Validate(in)
	if err != nil {
		err = fmt.Errorf("validation error, missing required field: %w", err)
		return
	}

	nextID, err := d.Config.UIDGen.NextID()
	if err != nil {
		err = fmt.Errorf("cannot get next id: %w", err)
		return
	}

	now := time.Now().UTC().UnixMicro()
	saved, err := d.Config.TokenRepo.Upsert(ctx, tokenrepo.InputUpsert{
		DeviceToken: tokenrepo.DeviceToken{
			ID:        int64(nextID),
			Token:     in.Token,
			UserID:    strings.TrimSpace(in.UserID),
			CreatedAt: now,
			UpdatedAt: now,
		},
	})
	if err != nil {
		span.RecordError(err)
		return
	}

	out = OutSaveToken{
		DeviceToken: saved.DeviceToken,
	}
	return
}

func (d *DefaultService) RemoveToken(ctx context.Context, in InputRemoveToken) (out OutRemoveToken, err error) {
	var span trace.Span
	ctx, span = tracer.StartSpan(ctx, "tokensvc.RemoveToken")
	defer span.End()

	err = validator.Validate(in)
	if err != nil {
		err = fmt.Errorf("validation error, missing required field: %w", err)
		return
	}

	existing, err := d.Config.TokenRepo.GetByToken(ctx, tokenrepo.InputGetByToken{Token: in.Token})
	if err != nil {
		return
	}

	// topics are left on firebase side otherwise, the token would keep receiving topic messages
	for _, topic := range existing.DeviceToken.Topics {
		if _, _err := d.Config.MsgService.UnsubscribeFromTopic(ctx, topic, in.Token); _err != nil {
			ylog.Error(ctx, fmt.Sprintf("unsubscribe removed token from topic %s error", topic), ylog.KV("error", _err))
		}
	}

	deleted, err := d.Config.TokenRepo.Delete(ctx, tokenrepo.InputDelete{Token: in.Token})
	if err != nil {
		return
	}

	out = OutRemoveToken{
		DeviceToken: deleted.DeviceToken,
	}
	return
}

func (d *DefaultService) ListTokens(ctx context.Context, in InputListTokens) (out OutListTokens, err error) {
	var span trace.Span
	ctx, span = tracer.StartSpan(ctx, "tokensvc.ListTokens")
	defer span.End()

	err = validator.Validate(in)
	if err != nil {
		err = fmt.Errorf("validation error: %w", err)
		return
	}

	if in.Limit <= 0 {
		in.Limit = defaultListLimit
	}

	list, err := d.Config.TokenRepo.List(ctx, tokenrepo.InputList{
		UserID:  in.UserID,
		Topic:   in.Topic,
		AfterID: in.AfterID,
		Limit:   in.Limit,
	})
	if err != nil {
		return
	}

	out = OutListTokens{
		DeviceTokens: list.DeviceTokens,
	}

	if int64(len(list.DeviceTokens)) == in.Limit {
		out.NextID = list.DeviceTokens[len(list.DeviceTokens)-1].ID
	}

	return
}

func (d *DefaultService) Subscribe(ctx context.Context, in InputTopic) (out OutTopic, err error) {
	var span trace.Span
	ctx, span = tracer.StartSpan(ctx, "tokensvc.Subscribe")
	defer span.End()

	err = validator.Validate(in)
	if err != nil {
		err = fmt.Errorf("validation error, missing required field: %w", err)
		return
	}

	span.SetAttributes(attribute.String("topic", in.Topic))

	// unknown tokens are registered anonymously so the membership has a row to live in
	_, err = d.Config.TokenRepo.GetByToken(ctx, tokenrepo.InputGetByToken{Token: in.Token})
	if errors.Is(err, tokenrepo.ErrNotFound) {
		_, err = d.SaveToken(ctx, InputSaveToken{Token: in.Token})
	}

	if err != nil {
		return
	}

	resp, err := d.Config.MsgService.SubscribeToTopic(ctx, in.Topic, in.Token)
	if err != nil {
		span.RecordError(err)
		return
	}

	out.Response = resp
	if err = topicError(resp); err != nil {
		return
	}

	saved, err := d.Config.TokenRepo.AddTopic(ctx, tokenrepo.InputTopic{
		Token:     in.Token,
		Topic:     in.Topic,
		UpdatedAt: time.Now().UTC().UnixMicro(),
	})
	if err != nil {
		return
	}

	out.DeviceToken = saved.DeviceToken
	return
}

func (d *DefaultService) Unsubscribe(ctx context.Context, in InputTopic) (out OutTopic, err error) {
	var span trace.Span
	ctx, span = tracer.StartSpan(ctx, "tokensvc.Unsubscribe")
	defer span.End()

	err = validator.Validate(in)
	if err != nil {
		err = fmt.Errorf("validation error, missing required field: %w", err)
		return
	}

	span.SetAttributes(attribute.String("topic", in.Topic))

	resp, err := d.Config.MsgService.UnsubscribeFromTopic(ctx, in.Topic, in.Token)
	if err != nil {
		span.RecordError(err)
		return
	}

	out.Response = resp
	if err = topicError(resp); err != nil {
		return
	}

	saved, err := d.Config.TokenRepo.RemoveTopic(ctx, tokenrepo.InputTopic{
		Token:     in.Token,
		Topic:     in.Topic,
		UpdatedAt: time.Now().UTC().UnixMicro(),
	})
	if errors.Is(err, tokenrepo.ErrNotFound) {
		// nothing recorded locally, firebase is already in sync
		err = nil
		return
	}

	if err != nil {
		return
	}

	out.DeviceToken = saved.DeviceToken
	return
}

func (d *DefaultService) SendToUser(ctx context.Context, in InputSendToUser) (out OutSendToUser, err error) {
	var span trace.Span
	ctx, span = tracer.StartSpan(ctx, "tokensvc.SendToUser")
	defer span.End()

	err = validator.Validate(in)
	if err != nil {
		err = fmt.Errorf("validation error, missing required field: %w", err)
		return
	}

	tokens, err := d.userTokens(ctx, in.UserID)
	if err != nil {
		return
	}

	if len(tokens) == 0 {
		err = fmt.Errorf("%w: %s", ErrNoTokens, in.UserID)
		return
	}

	span.SetAttributes(attribute.Int("tokens.count", len(tokens)))

	wg := &sync.WaitGroup{}
	jobs := make([]*multicastJob, 0, len(tokens)/MaxMulticastTokens+1)
	for start := 0; start < len(tokens); start += MaxMulticastTokens {
		end := start + MaxMulticastTokens
		if end > len(tokens) {
			end = len(tokens)
		}

		var chunk *fcm.MulticastMessage
		chunk, err = fcm.NewMulticastMessage(fcm.MulticastMessage{
			Data:       in.Message.Data,
			Webpush:    in.Message.Webpush,
			FCMOptions: in.Message.FCMOptions,
			Tokens:     tokens[start:end],
			Condition:  in.Message.Condition,
		})
		if err != nil {
			break
		}

		job := &multicastJob{
			id:      uint64(len(jobs)),
			ctx:     ctx,
			msgSvc:  d.Config.MsgService,
			message: chunk,
			dryRun:  in.DryRun,
			wg:      wg,
		}

		wg.Add(1)
		if err = d.Config.Worker.AddJob(ctx, job); err != nil {
			wg.Done()
			break
		}

		jobs = append(jobs, job)
	}

	// chunks already queued must finish before their results are read
	wg.Wait()
	if err != nil {
		return
	}

	aggregate := fcm.NewBatchResponse(nil, 0, 0)
	for _, job := range jobs {
		if job.err != nil {
			err = job.err
			span.RecordError(err)
			return
		}

		aggregate.Responses = append(aggregate.Responses, job.resp.Responses...)
		aggregate.SuccessCount += job.resp.SuccessCount
		aggregate.FailureCount += job.resp.FailureCount
	}

	out = OutSendToUser{
		Response: aggregate,
		Tokens:   tokens,
	}
	return
}

func (d *DefaultService) userTokens(ctx context.Context, userID string) (tokens []string, err error) {
	tokens = make([]string, 0)
	afterID := int64(0)
	for {
		var list tokenrepo.OutList
		list, err = d.Config.TokenRepo.List(ctx, tokenrepo.InputList{
			UserID:  userID,
			AfterID: afterID,
			Limit:   MaxMulticastTokens,
		})
		if err != nil {
			return
		}

		for _, dt := range list.DeviceTokens {
			tokens = append(tokens, dt.Token)
		}

		if len(list.DeviceTokens) < MaxMulticastTokens {
			return
		}

		afterID = list.DeviceTokens[len(list.DeviceTokens)-1].ID
	}
}

// topicError joins the per token reasons of a rejected (un)subscription.
func topicError(resp *fcm.TopicManagementResponse) error {
	if resp == nil || resp.FailureCount == 0 {
		return nil
	}

	var err error
	for _, e := range resp.Errors {
		err = multierr.Append(err, fmt.Errorf("token index %d: %s", e.Index, e.Reason))
	}

	return fmt.Errorf("%w: %v", ErrTopicRejected, err)
}
