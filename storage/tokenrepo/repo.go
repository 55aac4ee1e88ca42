package tokenrepo

import (
	"context"
	"errors"
)

var (
	ErrValidation = errors.New("validation error")
	ErrNotFound   = errors.New("device token not found")
)

// Repo is the device token repository.
type Repo interface {
	// Upsert inserts the token or, when it already exists, replaces its user id and updated_at.
	// ID, topics and created_at of an existing token are kept.
	Upsert(ctx context.Context, in InputUpsert) (out OutUpsert, err error)
	GetByToken(ctx context.Context, in InputGetByToken) (out OutGetByToken, err error)
	List(ctx context.Context, in InputList) (out OutList, err error)
	Delete(ctx context.Context, in InputDelete) (out OutDelete, err error)
	AddTopic(ctx context.Context, in InputTopic) (out OutTopic, err error)
	RemoveTopic(ctx context.Context, in InputTopic) (out OutTopic, err error)
}

type InputUpsert struct {
	DeviceToken DeviceToken `validate:"required"`
}

type OutUpsert struct {
	DeviceToken DeviceToken
}

type InputGetByToken struct {
	Token string `validate:"required"`
}

type OutGetByToken struct {
	DeviceToken DeviceToken
}

// InputList filters are combined with AND, empty filter matches everything.
type InputList struct {
	UserID  string `validate:"-"`
	Topic   string `validate:"-"`
	AfterID int64  `validate:"min=0"`
	Limit   int64  `validate:"required,min=1"`
}

type OutList struct {
	DeviceTokens []DeviceToken
}

type InputDelete struct {
	Token string `validate:"required"`
}

type OutDelete struct {
	DeviceToken DeviceToken
}

type InputTopic struct {
	Token     string `validate:"required"`
	Topic     string `validate:"required"`
	UpdatedAt int64  `validate:"required"`
}

type OutTopic struct {
	DeviceToken DeviceToken
}
