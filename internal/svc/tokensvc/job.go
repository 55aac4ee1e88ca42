package tokensvc

import (
	"context"
	"sync"

	"github.com/yusufsyaifudin/fcmpush/internal/svc/msgsvc"
	"github.com/yusufsyaifudin/fcmpush/pkg/fcm"
	"github.com/yusufsyaifudin/fcmpush/pkg/worker"
)

// multicastJob sends one chunk of a user's tokens.
type multicastJob struct {
	id      uint64
	ctx     context.Context
	msgSvc  msgsvc.Service
	message *fcm.MulticastMessage
	dryRun  bool
	wg      *sync.WaitGroup

	resp *fcm.BatchResponse
	err  error
}

var _ worker.Job = (*multicastJob)(nil)

func (j *multicastJob) ID() uint64 {
	return j.id
}

func (j *multicastJob) Context() context.Context {
	return j.ctx
}

func (j *multicastJob) PreExecute() error {
	return j.ctx.Err()
}

func (j *multicastJob) Execute() (err error) {
	j.resp, err = j.msgSvc.SendMulticast(j.ctx, j.message, j.dryRun)
	return
}

func (j *multicastJob) PostExecute(err error) {
	j.err = err
	j.wg.Done()
}
