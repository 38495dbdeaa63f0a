// Package cron runs the API's periodic maintenance jobs.
package cron

import (
	"context"
	"time"

	"github.com/dimitrije/tandem-api/internal/logger"
	"github.com/robfig/cron/v3"
)

// Scheduler is a cron-like job scheduler.
type Scheduler struct {
	*cron.Cron
}

// cronLogger adapts the zap logger to cron.Logger.
type cronLogger struct {
	logger *logger.Logger
}

// Info logs routine messages about cron's operation.
func (l cronLogger) Info(msg string, keysAndValues ...any) {
	l.logger.Debug(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.logger.Error(msg, append(keysAndValues, "error", err)...)
}

func NewScheduler(log *logger.Logger) *Scheduler {
	clog := cronLogger{log.Named("cron")}
	return &Scheduler{
		Cron: cron.New(cron.WithLogger(clog), cron.WithChain(cron.Recover(clog), cron.SkipIfStillRunning(clog))),
	}
}

// Shutdown stops the scheduler and waits up to 30 seconds for running jobs.
func (s *Scheduler) Shutdown() {
	ctx, cancel := context.WithTimeout(s.Cron.Stop(), 30*time.Second)
	defer cancel()
	<-ctx.Done()
}

// AddFunc adds a job to the Scheduler.
func (s *Scheduler) AddFunc(spec string, fn func()) (int, error) {
	id, err := s.Cron.AddFunc(spec, fn)
	return int(id), err
}

func (s *Scheduler) Remove(id int) {
	s.Cron.Remove(cron.EntryID(id))
}
