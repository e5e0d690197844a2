package sched

import (
	"context"
	"sync"
	"time"

	logx "remindbot/pkg/logx"
)

// DispatchFunc delivers one claimed job. Errors are logged and swallowed:
// a job is fired at most once and never re-enters the store.
type DispatchFunc func(ctx context.Context, job Job) error

// Service is the single background timing authority. It owns no job state
// of its own; the store is the source of truth, which is also what makes
// cancellation work without tokens (a removed job is simply never claimed).
type Service struct {
	mu  sync.Mutex
	cfg Config

	store    *Store
	dispatch DispatchFunc
	log      logx.Logger

	cancel context.CancelFunc
	done   chan struct{}

	inflight sync.WaitGroup
}

func New(cfg Config, store *Store, dispatch DispatchFunc, log logx.Logger) *Service {
	if log.IsZero() {
		log = logx.Nop()
	}
	return &Service{
		cfg:      cfg.withDefaults(),
		store:    store,
		dispatch: dispatch,
		log:      log,
	}
}

func (s *Service) Store() *Store { return s.store }

// Apply updates timing knobs live. The loop reads them on every cycle.
func (s *Service) Apply(cfg Config) {
	s.mu.Lock()
	s.cfg = cfg.withDefaults()
	s.mu.Unlock()
}

func (s *Service) config() Config {
	s.mu.Lock()
	cfg := s.cfg
	s.mu.Unlock()
	return cfg
}

// Start launches the timing loop. Idempotent.
func (s *Service) Start(ctx context.Context) {
	s.mu.Lock()
	if s.done != nil {
		s.mu.Unlock()
		return
	}
	rctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	done := make(chan struct{})
	s.done = done
	s.mu.Unlock()

	s.log.Info("scheduler started", logx.Duration("poll", s.config().PollInterval))

	go func() {
		defer close(done)
		s.run(rctx)
	}()
}

// Stop halts the loop and waits for in-flight dispatches up to ctx.
func (s *Service) Stop(ctx context.Context) {
	s.mu.Lock()
	cancel := s.cancel
	done := s.done
	s.cancel = nil
	s.done = nil
	s.mu.Unlock()

	if cancel == nil {
		return
	}
	start := time.Now()
	cancel()

	flushed := make(chan struct{})
	go func() {
		if done != nil {
			<-done
		}
		s.inflight.Wait()
		close(flushed)
	}()

	select {
	case <-flushed:
		s.log.Info("scheduler stopped", logx.Duration("took", time.Since(start)))
	case <-ctx.Done():
		s.log.Warn("scheduler stop timed out", logx.Err(ctx.Err()))
	}
}

func (s *Service) run(ctx context.Context) {
	// A plain timer (not Ticker) so poll interval changes apply next cycle.
	timer := time.NewTimer(s.config().PollInterval)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-timer.C:
		}

		s.fireDue(ctx, time.Now())
		timer.Reset(s.config().PollInterval)
	}
}

// fireDue claims everything due at now and dispatches each job
// independently. Order across jobs is unspecified on purpose.
func (s *Service) fireDue(ctx context.Context, now time.Time) {
	jobs := s.store.Due(now)
	if len(jobs) == 0 {
		return
	}
	cfg := s.config()

	for _, job := range jobs {
		job := job
		delay := now.Sub(job.FireAt)
		if delay > cfg.GraceWindow {
			// Best-effort policy: still fire, but flag the late delivery.
			s.log.Warn("firing past grace window",
				logx.String("job", job.ID),
				logx.Duration("late", delay),
				logx.Duration("grace", cfg.GraceWindow))
		}

		s.inflight.Add(1)
		go func() {
			defer s.inflight.Done()
			cctx, cancel := context.WithTimeout(ctx, cfg.DispatchTimeout)
			defer cancel()
			if err := s.dispatch(cctx, job); err != nil {
				// At-most-once: the claim already removed the job, a failed
				// delivery is logged and never retried.
				s.log.Warn("reminder delivery failed",
					logx.String("job", job.ID),
					logx.String("owner", job.OwnerID),
					logx.Err(err))
				return
			}
			s.log.Info("reminder fired",
				logx.String("job", job.ID),
				logx.String("owner", job.OwnerID),
				logx.Duration("late", delay))
		}()
	}
}

func (s *Service) Snapshot() Snapshot {
	cfg := s.config()
	return Snapshot{
		Pending:         s.store.Len(),
		PollInterval:    cfg.PollInterval,
		GraceWindow:     cfg.GraceWindow,
		DispatchTimeout: cfg.DispatchTimeout,
	}
}
