package scheduler

import (
	"context"
	"sync"
	"time"

	"translation-agent/backend/internal/logger"
)

// Pruner deletes cached runs older than a retention period.
type Pruner interface {
	Prune(ctx context.Context, olderThan time.Duration) (int64, error)
}

// Scheduler prunes the translation cache on a fixed interval.
type Scheduler struct {
	pruner     Pruner
	retention  time.Duration
	interval   time.Duration
	stopCh     chan struct{}
	stopOnce   sync.Once
	wg         sync.WaitGroup
	cancelFunc context.CancelFunc // cancels the current prune
	mu         sync.Mutex         // protects cancelFunc
}

func New(pruner Pruner, retention, interval time.Duration) *Scheduler {
	return &Scheduler{
		pruner:    pruner,
		retention: retention,
		interval:  interval,
		stopCh:    make(chan struct{}),
	}
}

func (s *Scheduler) Start() {
	s.wg.Add(1)
	go s.run()
	logger.Info("scheduler started", "module", "scheduler", "action", "prune", "resource", "translation", "result", "ok", "interval_ms", s.interval.Milliseconds(), "retention_ms", s.retention.Milliseconds())
}

// Stop cancels an in-flight prune and waits for the loop to exit. It is safe
// to call more than once.
func (s *Scheduler) Stop() {
	s.stopOnce.Do(func() {
		s.mu.Lock()
		if s.cancelFunc != nil {
			s.cancelFunc()
		}
		s.mu.Unlock()

		close(s.stopCh)
		s.wg.Wait()
		logger.Info("scheduler stopped", "module", "scheduler", "action", "prune", "resource", "translation", "result", "ok")
	})
}

func (s *Scheduler) run() {
	defer s.wg.Done()

	// Run immediately on start
	s.prune()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.prune()
		case <-s.stopCh:
			return
		}
	}
}

func (s *Scheduler) prune() {
	ctx, cancel := context.WithTimeout(context.Background(), s.interval)

	s.mu.Lock()
	s.cancelFunc = cancel
	s.mu.Unlock()

	defer func() {
		cancel()
		s.mu.Lock()
		s.cancelFunc = nil
		s.mu.Unlock()
	}()

	n, err := s.pruner.Prune(ctx, s.retention)
	if err != nil {
		if ctx.Err() != nil {
			logger.Warn("scheduled prune cancelled", "module", "scheduler", "action", "prune", "resource", "translation", "result", "cancelled")
			return
		}
		logger.Error("scheduled prune failed", "module", "scheduler", "action", "prune", "resource", "translation", "result", "failed", "error", err)
		return
	}
	logger.Info("scheduled prune completed", "module", "scheduler", "action", "prune", "resource", "translation", "result", "ok", "deleted", n)
}
