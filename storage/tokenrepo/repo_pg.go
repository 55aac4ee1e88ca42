package tokenrepo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/yusufsyaifudin/fcmpush/pkg/tracer"
	"github.com/yusufsyaifudin/fcmpush/pkg/validator"
	"go.opentelemetry.io/otel/trace"
)

type RepoPostgresConfig struct {
	Connection sqlx.QueryerContext `validate:"required"`
}

type RepoPostgres struct {
	Config RepoPostgresConfig
}

var _ Repo = (*RepoPostgres)(nil)

// Postgres return repo interface which implements using PgSQL
func Postgres(conf RepoPostgresConfig) (repo *RepoPostgres, err error) {
	err = validator.Validate(conf)
	if err != nil {
		return nil, err
	}

	repo = &RepoPostgres{
		Config: conf,
	}
	return
}

func (p *RepoPostgres) Upsert(ctx context.Context, in InputUpsert) (out OutUpsert, err error) {
	var span trace.Span
	ctx, span = tracer.StartSpan(ctx, "tokenrepo.pg.Upsert")
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

	saved := DeviceToken{}
	err = sqlx.GetContext(ctx, p.Config.Connection, &saved, sqlUpsertToken,
		token.ID, token.Token, token.UserID, token.Topics, token.CreatedAt, token.UpdatedAt,
	)

	if err != nil {
		span.RecordError(err)
		err = fmt.Errorf("upsert device token error: %w", err)
		return
	}

	out = OutUpsert{
		DeviceToken: saved,
	}
	return
}

func (p *RepoPostgres) GetByToken(ctx context.Context, in InputGetByToken) (out OutGetByToken, err error) {
	var span trace.Span
	ctx, span = tracer.StartSpan(ctx, "tokenrepo.pg.GetByToken")
	defer span.End()

	err = validator.Validate(in)
	if err != nil {
		err = fmt.Errorf("%w: %s", ErrValidation, err)
		return
	}

	token := DeviceToken{}
	err = sqlx.GetContext(ctx, p.Config.Connection, &token, sqlGetByToken, in.Token)
	if err != nil {
		err = notFound(err)
		return
	}

	out = OutGetByToken{
		DeviceToken: token,
	}
	return
}

func (p *RepoPostgres) List(ctx context.Context, in InputList) (out OutList, err error) {
	var span trace.Span
	ctx, span = tracer.StartSpan(ctx, "tokenrepo.pg.List")
	defer span.End()

	err = validator.Validate(in)
	if err != nil {
		err = fmt.Errorf("%w: %s", ErrValidation, err)
		return
	}

	tokens := make([]DeviceToken, 0)
	err = sqlx.SelectContext(ctx, p.Config.Connection, &tokens, sqlListTokens, in.UserID, in.Topic, in.AfterID, in.Limit)
	if err != nil {
		span.RecordError(err)
		err = fmt.Errorf("list device tokens error: %w", err)
		return
	}

	out = OutList{
		DeviceTokens: tokens,
	}
	return
}

func (p *RepoPostgres) Delete(ctx context.Context, in InputDelete) (out OutDelete, err error) {
	var span trace.Span
	ctx, span = tracer.StartSpan(ctx, "tokenrepo.pg.Delete")
	defer span.End()

	err = validator.Validate(in)
	if err != nil {
		err = fmt.Errorf("%w: %s", ErrValidation, err)
		return
	}

	deleted := DeviceToken{}
	err = sqlx.GetContext(ctx, p.Config.Connection, &deleted, sqlDeleteToken, in.Token)
	if err != nil {
		err = notFound(err)
		return
	}

	out = OutDelete{
		DeviceToken: deleted,
	}
	return
}

func (p *RepoPostgres) AddTopic(ctx context.Context, in InputTopic) (out OutTopic, err error) {
	var span trace.Span
	ctx, span = tracer.StartSpan(ctx, "tokenrepo.pg.AddTopic")
	defer span.End()

	return p.updateTopic(ctx, sqlAddTopic, in)
}

func (p *RepoPostgres) RemoveTopic(ctx context.Context, in InputTopic) (out OutTopic, err error) {
	var span trace.Span
	ctx, span = tracer.StartSpan(ctx, "tokenrepo.pg.RemoveTopic")
	defer span.End()

	return p.updateTopic(ctx, sqlRemoveTopic, in)
}

func (p *RepoPostgres) updateTopic(ctx context.Context, query string, in InputTopic) (out OutTopic, err error) {
	err = validator.Validate(in)
	if err != nil {
		err = fmt.Errorf("%w: %s", ErrValidation, err)
		return
	}

	updated := DeviceToken{}
	err = sqlx.GetContext(ctx, p.Config.Connection, &updated, query, in.Token, in.Topic, in.UpdatedAt)
	if err != nil {
		err = notFound(err)
		return
	}

	out = OutTopic{
		DeviceToken: updated,
	}
	return
}

func notFound(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%w: %s", ErrNotFound, err)
	}

	return err
}
