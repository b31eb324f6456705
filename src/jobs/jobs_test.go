package jobs

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTrackerCancelAndWait(t *testing.T) {
	t.Run("finishes fast enough", func(t *testing.T) {
		testJobs := Jobs{
			FakeJob("Job A", time.Millisecond*100),
			FakeJob("Job B", time.Millisecond*200),
		}

		before := time.Now()
		unfinished := testJobs.CancelAndWait(time.Second * 1)
		after := time.Now()
		assert.WithinDuration(t, after, before, time.Millisecond*500, "tracker.Finish did not finish fast enough")
		assert.Len(t, unfinished, 0)
	})
	t.Run("reports unfinished jobs", func(t *testing.T) {
		testJobs := Jobs{
			FakeJob("Job A", time.Millisecond*100),
			FakeJob("Job B", time.Second*10),
		}

		unfinished := testJobs.CancelAndWait(time.Second * 1)
		assert.Equal(t, []string{"Job B"}, unfinished)
	})
}

func FakeJob(name string, timeout time.Duration) *Job {
	job := New(name)
	go func() {
		<-job.Ctx.Done()
		timer := time.NewTimer(timeout)
		<-timer.C
		job.Finish()
	}()
	return job
}

func TestPeriodic(t *testing.T) {
	t.Run("runs immediately and keeps running after failures", func(t *testing.T) {
		runs := make(chan struct{}, 10)
		var count int32
		job := Periodic("flaky", time.Millisecond*20, func(ctx context.Context) error {
			runs <- struct{}{}
			if atomic.AddInt32(&count, 1) == 1 {
				panic("first run explodes")
			}
			return errors.New("later runs fail politely")
		})

		for i := 0; i < 3; i++ {
			select {
			case <-runs:
			case <-time.After(time.Second):
				t.Fatalf("only saw %d runs", i)
			}
		}

		unfinished := Jobs{job}.CancelAndWait(time.Second)
		assert.Empty(t, unfinished)
	})
	t.Run("finish is idempotent", func(t *testing.T) {
		job := New("twice")
		job.Finish()
		assert.NotPanics(t, func() { job.Finish() })
	})
}
