package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/go-co-op/gocron"
	"go.uber.org/zap"
)

// Prefetcher warms the snapshot cache for a named city.
type Prefetcher interface {
	Prefetch(ctx context.Context, name string) error
}

// Scheduler periodically refreshes the snapshots of configured cities.
type Scheduler struct {
	scheduler *gocron.Scheduler
	service   Prefetcher
	cities    []string
	interval  time.Duration
	log       *zap.SugaredLogger
}

// New creates a new Scheduler.
func New(cities []string, interval time.Duration, service Prefetcher, log *zap.SugaredLogger) *Scheduler {
	s := gocron.NewScheduler(time.UTC)
	return &Scheduler{
		scheduler: s,
		service:   service,
		cities:    cities,
		interval:  interval,
		log:       log,
	}
}

// Start schedules the periodic job and starts the underlying scheduler.
// The first run happens immediately.
func (s *Scheduler) Start() error {
	if len(s.cities) == 0 {
		s.log.Info("scheduler: no prefetch cities configured; nothing to schedule")
		return nil
	}

	minutes := int(s.interval.Minutes())
	if minutes <= 0 {
		minutes = 15
	}

	_, err := s.scheduler.Every(minutes).Minutes().Do(s.RunOnce)
	if err != nil {
		return err
	}

	s.scheduler.StartAsync()
	return nil
}

// RunOnce prefetches every configured city concurrently.
func (s *Scheduler) RunOnce() {
	s.log.Debugw("scheduler: running prefetch job", "cities", len(s.cities))

	var wg sync.WaitGroup
	for _, city := range s.cities {
		city := city
		wg.Add(1)
		go func() {
			defer wg.Done()

			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()

			if err := s.service.Prefetch(ctx, city); err != nil {
				s.log.Warnw("scheduler: prefetch failed", "city", city, "error", err)
			}
		}()
	}
	wg.Wait()
	s.log.Debug("scheduler: completed prefetch job")
}

// Stop stops the scheduler and cancels any future jobs.
func (s *Scheduler) Stop() {
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
}
