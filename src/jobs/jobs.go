package jobs

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/sciclub/clubsite/src/logging"
	"github.com/sciclub/clubsite/src/utils"
)

/*
A Job tracks a background task that can be canceled from outside and that
reports when it has actually stopped. The server starts its cleanup tasks as
Jobs and, on shutdown, cancels them all and waits a bounded time for them.
*/
type Job struct {
	Name   string
	Ctx    context.Context
	Logger zerolog.Logger

	cancel     func()
	done       chan struct{}
	finishOnce sync.Once
}

func New(name string) *Job {
	logger := logging.With().Str("job", name).Logger()
	ctx, cancel := context.WithCancel(context.Background())
	ctx = logging.AttachLoggerToContext(&logger, ctx)
	return &Job{
		Name:   name,
		Ctx:    ctx,
		Logger: logger,
		cancel: cancel,
		done:   make(chan struct{}),
	}
}

// Cancels the job's context. Called from outside the job, e.g. on shutdown.
func (j *Job) Cancel() {
	j.cancel()
}

func (j *Job) Canceled() <-chan struct{} {
	return j.Ctx.Done()
}

// Marks the job as done. Called by the job itself; extra calls are ignored.
func (j *Job) Finish() *Job {
	j.finishOnce.Do(func() {
		close(j.done)
	})
	return j
}

func (j *Job) Finished() <-chan struct{} {
	return j.done
}

/*
Runs work every interval until the job is canceled, starting immediately.
A panic or error in one run is logged and does not stop later runs.
*/
func Periodic(name string, interval time.Duration, work func(ctx context.Context) error) *Job {
	job := New(name)
	go func() {
		defer job.Finish()

		t := utils.NewInstaTicker(interval)
		defer t.Stop()

		for {
			select {
			case <-t.C:
				err := runOnce(job.Ctx, work)
				if err != nil {
					job.Logger.Error().Err(err).Msg("periodic job failed")
				}
			case <-job.Canceled():
				return
			}
		}
	}()
	return job
}

func runOnce(ctx context.Context, work func(ctx context.Context) error) (err error) {
	defer utils.RecoverPanicAsError(&err)
	return work(ctx)
}

// Because this type is a plain slice, you can build it with slice syntax.
type Jobs []*Job

// Cancels every job and waits until they all finish or the timeout expires.
// Returns the names of the jobs that did not finish in time.
func (jobs Jobs) CancelAndWait(timeout time.Duration) []string {
	allDoneChan := make(chan struct{})
	for _, job := range jobs {
		job.Cancel()
	}
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	go func() {
		for _, job := range jobs {
			<-job.Finished()
		}
		close(allDoneChan)
	}()

	select {
	case <-timer.C:
		return jobs.ListUnfinished()
	case <-allDoneChan:
		return nil
	}
}

func (jobs Jobs) ListUnfinished() []string {
	unfinished := []string{}
	for _, job := range jobs {
		select {
		case <-job.Finished():
			continue
		default:
			unfinished = append(unfinished, job.Name)
		}
	}
	return unfinished
}
