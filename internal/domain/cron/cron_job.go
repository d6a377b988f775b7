// Package cron runs periodic jobs of the cron process.
package cron

import (
	"context"
	"sync"
	"time"

	"github.com/questx-lab/ledger/pkg/xcontext"
	"github.com/robfig/cron/v3"
)

type CronJob interface {
	Do(context.Context)
	RunNow() bool
	Next() time.Time
}

type CronJobManager struct {
	mutex sync.Mutex
	wait  sync.WaitGroup
	jobs  map[CronJob]*time.Timer
}

func NewCronJobManager() *CronJobManager {
	return &CronJobManager{jobs: make(map[CronJob]*time.Timer)}
}

// Start schedules every job and blocks until ctx is done and running jobs have returned.
func (m *CronJobManager) Start(ctx context.Context, jobs ...CronJob) {
	xcontext.Logger(ctx).Infof("Cron job manager started")

	m.mutex.Lock()
	for _, job := range jobs {
		m.jobs[job] = nil
	}
	m.mutex.Unlock()

	for _, job := range jobs {
		if job.RunNow() {
			m.wait.Add(1)
			go m.run(ctx, job)
		} else {
			m.schedule(ctx, job)
		}
	}

	<-ctx.Done()
	m.cancel()
	m.wait.Wait()
	xcontext.Logger(ctx).Infof("Cron job manager stopped")
}

func (m *CronJobManager) cancel() {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	for job, timer := range m.jobs {
		if timer != nil && timer.Stop() {
			// The job will never run, release its slot.
			m.wait.Done()
		}
		delete(m.jobs, job)
	}
}

func (m *CronJobManager) run(ctx context.Context, job CronJob) {
	defer m.wait.Done()

	xcontext.Logger(ctx).Infof("%T is running...", job)
	job.Do(ctx)
	xcontext.Logger(ctx).Infof("%T ok", job)

	m.schedule(ctx, job)
}

func (m *CronJobManager) schedule(ctx context.Context, job CronJob) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	// Only schedule jobs which still exist in the job list.
	if _, ok := m.jobs[job]; !ok || ctx.Err() != nil {
		return
	}

	m.wait.Add(1)
	m.jobs[job] = time.AfterFunc(time.Until(job.Next()), func() { m.run(ctx, job) })
}

// Schedule is a cron expression evaluated in a fixed location.
type Schedule struct {
	spec     cron.Schedule
	location *time.Location
}

func ParseSchedule(expr string, location *time.Location) (*Schedule, error) {
	spec, err := cron.ParseStandard(expr)
	if err != nil {
		return nil, err
	}

	return &Schedule{spec: spec, location: location}, nil
}

// Next returns the first activation after t.
func (s *Schedule) Next(t time.Time) time.Time {
	return s.spec.Next(t.In(s.location))
}
