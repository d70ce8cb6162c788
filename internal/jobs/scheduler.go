// Package jobs runs periodic maintenance work inside the API process.
package jobs

import (
	"context"
	"sync"
	"time"

	"github.com/pawmatch/pawmatch-backend/pkg/logger"
)

const defaultResolution = 30 * time.Second

// Task is a registered periodic job
type Task struct {
	Name      string
	Interval  time.Duration
	Handler   func(ctx context.Context) error
	LastRun   time.Time
	NextRun   time.Time
	RunCount  int64
	LastError error
}

// TaskInfo is the JSON view of a task
type TaskInfo struct {
	Name      string    `json:"name"`
	Interval  string    `json:"interval"`
	LastRun   time.Time `json:"lastRun"`
	NextRun   time.Time `json:"nextRun"`
	RunCount  int64     `json:"runCount"`
	LastError *string   `json:"lastError,omitempty"`
}

// Scheduler checks its tasks every resolution and runs the ones that are due.
// Tasks run one after another on the scheduler goroutine.
type Scheduler struct {
	tasks      []*Task
	mu         sync.RWMutex
	resolution time.Duration
	stop       chan struct{}
	stopOnce   sync.Once
	wg         sync.WaitGroup
}

// NewScheduler creates a scheduler. resolution <= 0 uses 30s.
func NewScheduler(resolution time.Duration) *Scheduler {
	if resolution <= 0 {
		resolution = defaultResolution
	}
	return &Scheduler{
		tasks:      make([]*Task, 0),
		resolution: resolution,
		stop:       make(chan struct{}),
	}
}

// Register adds a task whose first run is one interval from now
func (s *Scheduler) Register(name string, interval time.Duration, handler func(ctx context.Context) error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.tasks = append(s.tasks, &Task{
		Name:     name,
		Interval: interval,
		Handler:  handler,
		NextRun:  time.Now().Add(interval),
	})
	logger.GetLogger().Info().Str("task", name).Dur("interval", interval).Msg("scheduled task registered")
}

// Start runs the scheduler loop until Stop is called or ctx is done
func (s *Scheduler) Start(ctx context.Context) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ticker := time.NewTicker(s.resolution)
		defer ticker.Stop()

		for {
			select {
			case <-s.stop:
				return
			case <-ctx.Done():
				return
			case now := <-ticker.C:
				s.tick(ctx, now)
			}
		}
	}()
	logger.GetLogger().Info().Dur("resolution", s.resolution).Msg("job scheduler started")
}

// Stop ends the loop and waits for a running task to finish
func (s *Scheduler) Stop() {
	s.stopOnce.Do(func() { close(s.stop) })
	s.wg.Wait()
	logger.GetLogger().Info().Msg("job scheduler stopped")
}

// tick runs every task due at now
func (s *Scheduler) tick(ctx context.Context, now time.Time) {
	s.mu.RLock()
	due := make([]*Task, 0, len(s.tasks))
	for _, t := range s.tasks {
		if !now.Before(t.NextRun) {
			due = append(due, t)
		}
	}
	s.mu.RUnlock()

	for _, task := range due {
		start := time.Now()
		err := task.Handler(ctx)

		log := logger.GetLogger().With().Str("task", task.Name).Dur("took", time.Since(start)).Logger()
		if err != nil {
			log.Error().Err(err).Msg("scheduled task failed")
		} else {
			log.Debug().Msg("scheduled task finished")
		}

		s.mu.Lock()
		task.LastError = err
		task.LastRun = now
		task.NextRun = now.Add(task.Interval)
		task.RunCount++
		s.mu.Unlock()
	}
}

// GetTasks returns a snapshot of the registered tasks
func (s *Scheduler) GetTasks() []TaskInfo {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]TaskInfo, 0, len(s.tasks))
	for _, t := range s.tasks {
		info := TaskInfo{
			Name:     t.Name,
			Interval: t.Interval.String(),
			LastRun:  t.LastRun,
			NextRun:  t.NextRun,
			RunCount: t.RunCount,
		}
		if t.LastError != nil {
			msg := t.LastError.Error()
			info.LastError = &msg
		}
		result = append(result, info)
	}
	return result
}
