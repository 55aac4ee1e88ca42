package tokensvc

import (
	"context"
	"errors"

	"github.com/yusufsyaifudin/fcmpush/pkg/fcm"
	"github.com/yusufsyaifudin/fcmpush/storage/tokenrepo"
)

// MaxMulticastTokens is the number of tokens FCM accepts in one multicast call.
const MaxMulticastTokens = 500

var (
	ErrNoTokens      = errors.New("user has no registered device token")
	ErrTopicRejected = errors.New("topic management rejected by firebase")
)

// Service keeps the registry of browser device tokens and their topic membership.
type Service interface {
	SaveToken(ctx context.Context, in InputSaveToken) (out OutSaveToken, err error)
	RemoveToken(ctx context.Context, in InputRemoveToken) (out OutRemoveToken, err error)
	ListTokens(ctx context.Context, in InputListTokens) (out OutListTokens, err error)

	// Subscribe calls firebase first and records the membership only when it succeeded.
	Subscribe(ctx context.Context, in InputTopic) (out OutTopic, err error)
	Unsubscribe(ctx context.Context, in InputTopic) (out OutTopic, err error)

	// SendToUser multicasts to every token of the user, in chunks of MaxMulticastTokens.
	SendToUser(ctx context.Context, in InputSendToUser) (out OutSendToUser, err error)
}

type InputSaveToken struct {
	Token  string `validate:"required"`
	UserID string `validate:"-"`
}

type OutSaveToken struct {
	DeviceToken tokenrepo.DeviceToken
}

type InputRemoveToken struct {
	Token string `validate:"required"`
}

type OutRemoveToken struct {
	DeviceToken tokenrepo.DeviceToken
}

type InputListTokens struct {
	UserID  string `validate:"-"`
	Topic   string `validate:"-"`
	AfterID int64  `validate:"min=0"`
	Limit   int64  `validate:"min=0,max=1000"`
}

type OutListTokens struct {
	DeviceTokens []tokenrepo.DeviceToken
	NextID       int64
}

type InputTopic struct {
	Topic string `validate:"required"`
	Token string `validate:"required"`
}

type OutTopic struct {
	Response    *fcm.TopicManagementResponse
	DeviceToken tokenrepo.DeviceToken
}

type InputSendToUser struct {
	UserID  string                `validate:"required"`
	Message *fcm.MulticastMessage `validate:"required"`
	DryRun  bool                  `validate:"-"`
}

type OutSendToUser struct {
	Response *fcm.BatchResponse
	Tokens   []string
}
