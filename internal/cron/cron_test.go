package cron

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/dimitrije/tandem-api/internal/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func observedLogger(level zapcore.Level) (*logger.Logger, *observer.ObservedLogs) {
	core, logs := observer.New(level)
	return &logger.Logger{SugaredLogger: zap.New(core).Sugar()}, logs
}

func TestCronLogger(t *testing.T) {
	log, logs := observedLogger(zapcore.DebugLevel)
	clog := cronLogger{log}

	clog.Info("foo")
	clog.Error(errors.New("bar"), "test")

	entries := logs.All()
	require.Len(t, entries, 2)
	assert.Equal(t, zapcore.DebugLevel, entries[0].Level)
	assert.Equal(t, "foo", entries[0].Message)
	assert.Equal(t, zapcore.ErrorLevel, entries[1].Level)
	assert.Equal(t, "test", entries[1].Message)
	assert.Equal(t, "bar", entries[1].ContextMap()["error"])
}

func TestSchedulerLoggerName(t *testing.T) {
	log, logs := observedLogger(zapcore.DebugLevel)
	s := NewScheduler(log)
	s.Start()
	require.Eventually(t, func() bool { return logs.Len() > 0 }, time.Second, 10*time.Millisecond)
	s.Shutdown()

	for _, entry := range logs.All() {
		assert.Equal(t, "cron", entry.LoggerName)
	}
}

func TestSchedulerAddRemove(t *testing.T) {
	s := NewScheduler(logger.NewNop())
	id, err := s.AddFunc("* * * * *", func() {})
	require.NoError(t, err)
	assert.Len(t, s.Entries(), 1)

	s.Remove(id)
	assert.Empty(t, s.Entries())
}

func TestSchedulerInvalidSpec(t *testing.T) {
	s := NewScheduler(logger.NewNop())
	_, err := s.AddFunc("not a schedule", func() {})
	assert.Error(t, err)
}

func TestSchedulerStartShutdown(t *testing.T) {
	s := NewScheduler(logger.NewNop())
	s.Start()
	s.Shutdown()
}

type fakeCleaner struct {
	removed int64
	err     error
	calls   int
}

func (f *fakeCleaner) CleanupExpired(context.Context) (int64, error) {
	f.calls++
	return f.removed, f.err
}

type fakePurger struct {
	purged int
	at     time.Time
}

func (f *fakePurger) Purge(now time.Time) int {
	f.at = now
	return f.purged
}

func TestCleanupJob(t *testing.T) {
	log, logs := observedLogger(zapcore.DebugLevel)
	cleaner := &fakeCleaner{removed: 4}
	purger := &fakePurger{purged: 2}

	CleanupJob(cleaner, purger, log)()

	assert.Equal(t, 1, cleaner.calls)
	assert.False(t, purger.at.IsZero())
	assert.Equal(t, 1, logs.FilterMessage("purged sessions").Len())
	assert.Equal(t, 1, logs.FilterMessage("purged oauth states").Len())
}

func TestCleanupJob_Error(t *testing.T) {
	log, logs := observedLogger(zapcore.DebugLevel)
	cleaner := &fakeCleaner{err: errors.New("db down")}

	CleanupJob(cleaner, nil, log)()

	assert.Equal(t, 1, logs.FilterMessage("session cleanup failed").Len())
}
