package container

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/yusufsyaifudin/fcmpush/config"
	"github.com/yusufsyaifudin/fcmpush/internal/svc/msgsvc"
	"github.com/yusufsyaifudin/fcmpush/internal/svc/tokensvc"
	"github.com/yusufsyaifudin/fcmpush/pkg/fcm"
	"github.com/yusufsyaifudin/fcmpush/pkg/uid"
	"github.com/yusufsyaifudin/fcmpush/pkg/webclient"
	"github.com/yusufsyaifudin/fcmpush/pkg/worker"
	"github.com/yusufsyaifudin/ylog"
)

const (
	defaultSendWorkerNum    = 4
	defaultSendWorkerMaxJob = 16
)

type Services interface {
	io.Closer

	UIDGen() uid.UID
	Message() msgsvc.Service
	Token() tokensvc.Service
	Bootstrap() *webclient.BootstrapConfig
}

type ServicesImpl struct {
	uidGen    uid.UID
	msg       msgsvc.Service
	token     tokensvc.Service
	bootstrap *webclient.BootstrapConfig
	pool      *worker.Worker
}

var _ Services = (*ServicesImpl)(nil)

func SetupServices(ctx context.Context, cfg config.Config, repos Repositories) (svc *ServicesImpl, err error) {
	if repos == nil {
		err = fmt.Errorf("nil repositories on services preparation")
		return
	}

	uidGen, err := uid.NewSonyflake(cfg.MachineID)
	if err != nil {
		err = fmt.Errorf("services cannot prepare uid generator: %w", err)
		return
	}

	// ** prepare message service
	msgSvc, err := setupMessageService(ctx, cfg.Firebase)
	if err != nil {
		err = fmt.Errorf("services cannot prepare messaging service: %w", err)
		return
	}

	// ** prepare device token service
	tokenRepo, err := repos.TokenRepo()
	if err != nil {
		err = fmt.Errorf("services cannot get token repo: %w", err)
		return
	}

	bootstrap, err := NewBootstrapConfig(cfg.Firebase)
	if err != nil {
		err = fmt.Errorf("services cannot prepare client config: %w", err)
		return
	}

	pool := newSendWorker(cfg.SendWorker)
	tokenSvc, err := tokensvc.New(tokensvc.Config{
		UIDGen:     uidGen,
		TokenRepo:  tokenRepo,
		MsgService: msgSvc,
		Worker:     pool,
	})
	if err != nil {
		pool.Done()
		err = fmt.Errorf("services cannot prepare token service: %w", err)
		return
	}

	svc = &ServicesImpl{
		uidGen:    uidGen,
		msg:       msgSvc,
		token:     tokenSvc,
		bootstrap: bootstrap,
		pool:      pool,
	}

	return svc, nil
}

func newSendWorker(cfg config.SendWorker) *worker.Worker {
	num, maxJob := cfg.Num, cfg.MaxJob
	if num <= 0 {
		num = defaultSendWorkerNum
	}

	if maxJob <= 0 {
		maxJob = defaultSendWorkerMaxJob
	}

	return worker.NewWorker(num, maxJob)
}

func setupMessageService(ctx context.Context, cfg config.Firebase) (*msgsvc.DefaultService, error) {
	svcCfg := msgsvc.Config{WithLogging: cfg.WithLogging}
	if cfg.Disabled {
		ylog.Info(ctx, "firebase is disabled, messages are not delivered")
		return msgsvc.NewWithClient(svcCfg, fcm.NewNoop())
	}

	key, err := LoadServiceAccountKey(cfg)
	if err != nil {
		return nil, err
	}

	msgSvc, err := msgsvc.New(svcCfg)
	if err != nil {
		return nil, err
	}

	if !msgSvc.InitializeAdmin(ctx, key) {
		return nil, fmt.Errorf("firebase admin cannot be initialized for project %s", key.ProjectID)
	}

	return msgSvc, nil
}

// LoadServiceAccountKey prefers the inline JSON over the credentials file.
func LoadServiceAccountKey(cfg config.Firebase) (*fcm.ServiceAccountKey, error) {
	raw := cfg.CredentialsJSON
	if raw == "" {
		if cfg.CredentialsFile == "" {
			return nil, fmt.Errorf("no firebase credentials configured")
		}

		content, err := os.ReadFile(cfg.CredentialsFile)
		if err != nil {
			return nil, fmt.Errorf("read firebase credentials file: %w", err)
		}

		raw = string(content)
	}

	return fcm.ServiceAccountKeyFromJSON(raw)
}

// NewBootstrapConfig validates the web side of the firebase config and fills the defaults.
func NewBootstrapConfig(cfg config.Firebase) (*webclient.BootstrapConfig, error) {
	out := &webclient.BootstrapConfig{
		VapidKey:         cfg.VapidKey,
		ServiceWorkerURL: cfg.ServiceWorkerURL,
		Origins:          cfg.Origins,
		ActionMaps:       make([]*webclient.ActionMap, 0, len(cfg.ActionMaps)),
		Topics:           cfg.Topics,
	}

	if cfg.Web != (webclient.FirebaseConfig{}) {
		web, err := webclient.NewFirebaseConfig(cfg.Web)
		if err != nil {
			return nil, fmt.Errorf("firebase.web: %w", err)
		}

		out.Firebase = web
	}

	if out.ServiceWorkerURL == "" {
		out.ServiceWorkerURL = cfg.Origins.DefaultServiceWorkerURL()
	}

	for i, actionMap := range cfg.ActionMaps {
		if actionMap == nil {
			return nil, fmt.Errorf("firebase.actionMaps[%d] is empty", i)
		}

		normalized, err := webclient.NewActionMap(*actionMap)
		if err != nil {
			return nil, fmt.Errorf("firebase.actionMaps[%d]: %w", i, err)
		}

		out.ActionMaps = append(out.ActionMaps, normalized)
	}

	if out.Topics == nil {
		out.Topics = []string{}
	}

	return out, nil
}

func (s *ServicesImpl) UIDGen() uid.UID {
	return s.uidGen
}

func (s *ServicesImpl) Message() msgsvc.Service {
	return s.msg
}

func (s *ServicesImpl) Token() tokensvc.Service {
	return s.token
}

func (s *ServicesImpl) Bootstrap() *webclient.BootstrapConfig {
	return s.bootstrap
}

// Close waits for the in-flight multicast chunks.
func (s *ServicesImpl) Close() error {
	if s.pool == nil {
		return nil
	}

	return s.pool.Close()
}
