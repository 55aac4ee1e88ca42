package tokenrepo

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/go-redis/redis/v8"
	"github.com/lib/pq"
	"github.com/segmentio/encoding/json"
	"github.com/yusufsyaifudin/fcmpush/pkg/tracer"
	"github.com/yusufsyaifudin/fcmpush/pkg/validator"
	"go.opentelemetry.io/otel/trace"
)

// RepoRedisConfig stores each token as JSON under {prefix}:token:{token}, with sets
// {prefix}:user:{user_id} and {prefix}:topic:{topic} as indexes and a sorted set
// {prefix}:ids ordering all tokens by id.
type RepoRedisConfig struct {
	Client    redis.UniversalClient `validate:"required"`
	KeyPrefix string                `validate:"required,alphanum"`
}

type RepoRedis struct {
	Config RepoRedisConfig
}

var _ Repo = (*RepoRedis)(nil)

func Redis(conf RepoRedisConfig) (repo *RepoRedis, err error) {
	err = validator.Validate(conf)
	if err != nil {
		return nil, err
	}

	repo = &RepoRedis{
		Config: conf,
	}
	return
}

func (r *RepoRedis) Upsert(ctx context.Context, in InputUpsert) (out OutUpsert, err error) {
	var span trace.Span
	ctx, span = tracer.StartSpan(ctx, "tokenrepo.redis.Upsert")
	defer span.End()

	err = validator.Validate(in)
	if err != nil {
		err = fmt.Errorf("%w: %s", ErrValidation, err)
		return
	}

	token := in.DeviceToken
	token.Token = strings.TrimSpace(token.Token)
	if token.Topics == nil {
		token.Topics = pq.StringArray{}
	}

	existing, err := r.get(ctx, token.Token)
	switch {
	case errors.Is(err, ErrNotFound):
		err = nil
	case err != nil:
		return
	default:
		token.ID = existing.ID
		token.Topics = existing.Topics
		token.CreatedAt = existing.CreatedAt
	}

	_, err = r.Config.Client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		if existing.UserID != "" && existing.UserID != token.UserID {
			pipe.SRem(ctx, r.userKey(existing.UserID), token.Token)
		}

		if token.UserID != "" {
			pipe.SAdd(ctx, r.userKey(token.UserID), token.Token)
		}

		pipe.ZAdd(ctx, r.idsKey(), &redis.Z{Score: float64(token.ID), Member: token.Token})
		return r.set(ctx, pipe, token)
	})

	if err != nil {
		span.RecordError(err)
		err = fmt.Errorf("upsert device token on redis error: %w", err)
		return
	}

	out = OutUpsert{
		DeviceToken: token,
	}
	return
}

func (r *RepoRedis) GetByToken(ctx context.Context, in InputGetByToken) (out OutGetByToken, err error) {
	var span trace.Span
	ctx, span = tracer.StartSpan(ctx, "tokenrepo.redis.GetByToken")
	defer span.End()

	err = validator.Validate(in)
	if err != nil {
		err = fmt.Errorf("%w: %s", ErrValidation, err)
		return
	}

	token, err := r.get(ctx, in.Token)
	if err != nil {
		return
	}

	out = OutGetByToken{
		DeviceToken: token,
	}
	return
}

func (r *RepoRedis) List(ctx context.Context, in InputList) (out OutList, err error) {
	var span trace.Span
	ctx, span = tracer.StartSpan(ctx, "tokenrepo.redis.List")
	defer span.End()

	err = validator.Validate(in)
	if err != nil {
		err = fmt.Errorf("%w: %s", ErrValidation, err)
		return
	}

	var candidates []string
	switch {
	case in.UserID != "" && in.Topic != "":
		candidates, err = r.Config.Client.SInter(ctx, r.userKey(in.UserID), r.topicKey(in.Topic)).Result()
	case in.UserID != "":
		candidates, err = r.Config.Client.SMembers(ctx, r.userKey(in.UserID)).Result()
	case in.Topic != "":
		candidates, err = r.Config.Client.SMembers(ctx, r.topicKey(in.Topic)).Result()
	default:
		candidates, err = r.Config.Client.ZRangeByScore(ctx, r.idsKey(), &redis.ZRangeBy{
			Min:   "(" + strconv.FormatInt(in.AfterID, 10),
			Max:   "+inf",
			Count: in.Limit,
		}).Result()
	}

	if err != nil {
		span.RecordError(err)
		err = fmt.Errorf("list device tokens on redis error: %w", err)
		return
	}

	tokens := make([]DeviceToken, 0, len(candidates))
	if len(candidates) == 0 {
		out = OutList{DeviceTokens: tokens}
		return
	}

	keys := make([]string, 0, len(candidates))
	for _, c := range candidates {
		keys = append(keys, r.tokenKey(c))
	}

	values, err := r.Config.Client.MGet(ctx, keys...).Result()
	if err != nil {
		span.RecordError(err)
		err = fmt.Errorf("get device tokens on redis error: %w", err)
		return
	}

	for _, v := range values {
		s, ok := v.(string)
		if !ok {
			continue
		}

		var token DeviceToken
		if _err := json.Unmarshal([]byte(s), &token); _err != nil {
			err = fmt.Errorf("decode device token error: %w", _err)
			return
		}

		if token.ID <= in.AfterID {
			continue
		}

		tokens = append(tokens, token)
	}

	sort.Slice(tokens, func(i, j int) bool {
		return tokens[i].ID < tokens[j].ID
	})

	if int64(len(tokens)) > in.Limit {
		tokens = tokens[:in.Limit]
	}

	out = OutList{
		DeviceTokens: tokens,
	}
	return
}

func (r *RepoRedis) Delete(ctx context.Context, in InputDelete) (out OutDelete, err error) {
	var span trace.Span
	ctx, span = tracer.StartSpan(ctx, "tokenrepo.redis.Delete")
	defer span.End()

	err = validator.Validate(in)
	if err != nil {
		err = fmt.Errorf("%w: %s", ErrValidation, err)
		return
	}

	token, err := r.get(ctx, in.Token)
	if err != nil {
		return
	}

	_, err = r.Config.Client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, r.tokenKey(token.Token))
		pipe.ZRem(ctx, r.idsKey(), token.Token)
		if token.UserID != "" {
			pipe.SRem(ctx, r.userKey(token.UserID), token.Token)
		}

		for _, topic := range token.Topics {
			pipe.SRem(ctx, r.topicKey(topic), token.Token)
		}

		return nil
	})

	if err != nil {
		span.RecordError(err)
		err = fmt.Errorf("delete device token on redis error: %w", err)
		return
	}

	out = OutDelete{
		DeviceToken: token,
	}
	return
}

func (r *RepoRedis) AddTopic(ctx context.Context, in InputTopic) (out OutTopic, err error) {
	var span trace.Span
	ctx, span = tracer.StartSpan(ctx, "tokenrepo.redis.AddTopic")
	defer span.End()

	err = validator.Validate(in)
	if err != nil {
		err = fmt.Errorf("%w: %s", ErrValidation, err)
		return
	}

	token, err := r.get(ctx, in.Token)
	if err != nil {
		return
	}

	if !token.HasTopic(in.Topic) {
		token.Topics = append(token.Topics, in.Topic)
	}

	token.UpdatedAt = in.UpdatedAt
	_, err = r.Config.Client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.SAdd(ctx, r.topicKey(in.Topic), token.Token)
		return r.set(ctx, pipe, token)
	})

	if err != nil {
		span.RecordError(err)
		err = fmt.Errorf("add topic on redis error: %w", err)
		return
	}

	out = OutTopic{
		DeviceToken: token,
	}
	return
}

func (r *RepoRedis) RemoveTopic(ctx context.Context, in InputTopic) (out OutTopic, err error) {
	var span trace.Span
	ctx, span = tracer.StartSpan(ctx, "tokenrepo.redis.RemoveTopic")
	defer span.End()

	err = validator.Validate(in)
	if err != nil {
		err = fmt.Errorf("%w: %s", ErrValidation, err)
		return
	}

	token, err := r.get(ctx, in.Token)
	if err != nil {
		return
	}

	topics := pq.StringArray{}
	for _, t := range token.Topics {
		if t != in.Topic {
			topics = append(topics, t)
		}
	}

	token.Topics = topics
	token.UpdatedAt = in.UpdatedAt
	_, err = r.Config.Client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.SRem(ctx, r.topicKey(in.Topic), token.Token)
		return r.set(ctx, pipe, token)
	})

	if err != nil {
		span.RecordError(err)
		err = fmt.Errorf("remove topic on redis error: %w", err)
		return
	}

	out = OutTopic{
		DeviceToken: token,
	}
	return
}

func (r *RepoRedis) get(ctx context.Context, token string) (DeviceToken, error) {
	val, err := r.Config.Client.Get(ctx, r.tokenKey(token)).Bytes()
	if errors.Is(err, redis.Nil) {
		return DeviceToken{}, fmt.Errorf("%w: %s", ErrNotFound, token)
	}

	if err != nil {
		return DeviceToken{}, fmt.Errorf("error occurred on redis: %w", err)
	}

	var out DeviceToken
	err = json.Unmarshal(val, &out)
	return out, err
}

func (r *RepoRedis) set(ctx context.Context, pipe redis.Pipeliner, token DeviceToken) error {
	val, err := json.Marshal(token)
	if err != nil {
		return fmt.Errorf("cannot marshal device token: %w", err)
	}

	pipe.Set(ctx, r.tokenKey(token.Token), val, 0)
	return nil
}

func (r *RepoRedis) tokenKey(token string) string {
	return fmt.Sprintf("%s:token:%s", r.Config.KeyPrefix, token)
}

func (r *RepoRedis) userKey(userID string) string {
	return fmt.Sprintf("%s:user:%s", r.Config.KeyPrefix, userID)
}

func (r *RepoRedis) topicKey(topic string) string {
	return fmt.Sprintf("%s:topic:%s", r.Config.KeyPrefix, topic)
}

func (r *RepoRedis) idsKey() string {
	return fmt.Sprintf("%s:ids", r.Config.KeyPrefix)
}
