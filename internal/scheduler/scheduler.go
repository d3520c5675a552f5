package scheduler

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Poller is anything refreshed on every scheduler tick (e.g., an entity platform)
type Poller interface {
	Name() string
	Poll(ctx context.Context) error
}

// Scheduler polls every registered poller on a fixed interval
type Scheduler struct {
	pollers  []Poller
	interval time.Duration
	timeout  time.Duration
	stopChan chan struct{}
	stopOnce sync.Once
	logger   *slog.Logger
}

// NewScheduler creates a new scheduler. Each tick is bounded by the interval.
func NewScheduler(pollers []Poller, interval time.Duration, logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Scheduler{
		pollers:  pollers,
		interval: interval,
		timeout:  interval,
		stopChan: make(chan struct{}),
		logger:   logger.With("component", "scheduler"),
	}
}

// Start begins the scheduler loop and blocks until Stop is called
func (s *Scheduler) Start() {
	s.logger.Info("Scheduler started",
		"interval", s.interval,
		"pollers", len(s.pollers))
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.tick()
		case <-s.stopChan:
			s.logger.Info("Scheduler stopped")
			return
		}
	}
}

// Stop stops the scheduler. Calling it more than once is safe.
func (s *Scheduler) Stop() {
	s.stopOnce.Do(func() {
		close(s.stopChan)
	})
}

// tick performs one polling cycle
func (s *Scheduler) tick() {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	s.logger.Debug("Scheduler tick", "pollers", len(s.pollers))

	for _, p := range s.pollers {
		start := time.Now()
		if err := p.Poll(ctx); err != nil {
			s.logger.Error("Poll failed",
				"poller", p.Name(),
				"error", err)
			continue
		}
		s.logger.Debug("Poll completed",
			"poller", p.Name(),
			"duration", time.Since(start))
	}
}
