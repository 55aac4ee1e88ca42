package worker

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/yusufsyaifudin/ylog"
	"go.uber.org/multierr"
)

var (
	ErrPreExecute = errors.New("pre-execute job error")
	ErrExecute    = errors.New("execute job error")
	ErrStopped    = errors.New("worker is stopped")
)

// Job holds all information regarding the Job
type Job interface {
	// ID return uint64 unique identifier of the job
	ID() uint64

	// Context to tracks down all Job information that important.
	Context() context.Context

	// PreExecute called before Execute, when error Execute never be called.
	// PostExecute always called after PreExecute or Execute is done.
	PreExecute() error

	// Execute is the real logic of the Job.
	Execute() error

	// PostExecute called after Execute is done.
	// When Execute return error, it will pass to PostExecute, otherwise it returns nil.
	PostExecute(err error)
}

type Service interface {
	// AddJob queues the job, blocking while the queue is full.
	AddJob(ctx context.Context, job Job) error

	// WaitJob runs the whole job lifecycle on the caller goroutine.
	WaitJob(job Job)
}

// Inline runs every job on the caller goroutine.
type Inline struct{}

var _ Service = Inline{}

func (Inline) AddJob(ctx context.Context, job Job) error {
	if job == nil {
		return nil
	}

	if err := ctx.Err(); err != nil {
		return err
	}

	run(job)
	return nil
}

func (Inline) WaitJob(job Job) {
	if job != nil {
		run(job)
	}
}

type Worker struct {
	mu       sync.RWMutex
	stopped  bool
	jobs     chan Job
	queued   int64
	running  sync.WaitGroup
	stopOnce sync.Once
}

var _ Service = (*Worker)(nil)

// NewWorker starts num goroutines reading from a queue of maxJob capacity.
func NewWorker(num, maxJob int) *Worker {
	if num < 1 {
		num = 1
	}

	if maxJob < 1 {
		maxJob = 1
	}

	w := &Worker{
		jobs: make(chan Job, maxJob),
	}

	w.running.Add(num)
	for i := 0; i < num; i++ {
		go w.worker(i + 1)
	}

	return w
}

func (w *Worker) worker(id int) {
	defer w.running.Done()

	for job := range w.jobs {
		t0 := time.Now()
		run(job)
		queued := atomic.AddInt64(&w.queued, -1)

		ylog.Debug(job.Context(),
			fmt.Sprintf("worker %d, job id %d done", id, job.ID()),
			ylog.KV("queue", queued),
			ylog.KV("duration", time.Since(t0).String()),
		)
	}
}

func (w *Worker) AddJob(ctx context.Context, job Job) error {
	if job == nil {
		return nil
	}

	w.mu.RLock()
	defer w.mu.RUnlock()

	if w.stopped {
		return ErrStopped
	}

	select {
	case w.jobs <- job:
		atomic.AddInt64(&w.queued, 1)
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (w *Worker) WaitJob(job Job) {
	if job != nil {
		run(job)
	}
}

// Queued returns the number of jobs accepted and not finished yet.
func (w *Worker) Queued() int64 {
	return atomic.LoadInt64(&w.queued)
}

// Done stops accepting jobs and waits until every queued Job is done.
func (w *Worker) Done() {
	w.stopOnce.Do(func() {
		w.mu.Lock()
		w.stopped = true
		close(w.jobs)
		w.mu.Unlock()
	})

	w.running.Wait()
}

// Close is Done, to satisfy io.Closer.
func (w *Worker) Close() error {
	w.Done()
	return nil
}

func run(job Job) {
	err := job.PreExecute()
	if err != nil {
		job.PostExecute(multierr.Append(err, ErrPreExecute))
		return
	}

	err = job.Execute()
	if err != nil {
		err = multierr.Append(err, ErrExecute)
	}

	job.PostExecute(err)
}
