// Package notifier is the delivery gateway: every outbound message, both
// immediate replies and delayed reminder notifications, leaves through it.
package notifier

import (
	"context"
	"strconv"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"remindbot/internal/eventbus"
	"remindbot/internal/transport"
	logx "remindbot/pkg/logx"
)

// Service wraps the platform adapter with a rate limiter, a small worker
// pool for fire-and-forget replies, and delivery events on the bus.
// It is safe for concurrent use.
type Service struct {
	mu sync.Mutex

	log     logx.Logger
	adapter transport.Adapter
	bus     eventbus.Bus

	cfg     Config
	limiter *rate.Limiter

	accepting bool
	queue     chan transport.Notification
	cancel    context.CancelFunc
	wg        sync.WaitGroup
}

func New(cfg Config, adapter transport.Adapter, log logx.Logger, bus eventbus.Bus) *Service {
	if log.IsZero() {
		log = logx.Nop()
	}
	s := &Service{adapter: adapter, log: log, bus: bus}
	s.applyLocked(cfg)
	return s
}

func (s *Service) Apply(cfg Config) {
	s.mu.Lock()
	s.applyLocked(cfg)
	s.mu.Unlock()
}

func (s *Service) applyLocked(cfg Config) {
	cfg = cfg.withDefaults()
	s.cfg = cfg
	// Burst equals the per-second rate so short spikes don't block hard.
	s.limiter = rate.NewLimiter(rate.Limit(cfg.RatePerSec), cfg.RatePerSec)
}

// Start launches the worker pool. Idempotent.
func (s *Service) Start(ctx context.Context) {
	s.mu.Lock()
	if s.queue != nil {
		s.mu.Unlock()
		return
	}
	rctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.queue = make(chan transport.Notification, s.cfg.QueueSize)
	s.accepting = true
	workers := s.cfg.Workers
	q := s.queue
	s.mu.Unlock()

	for i := 0; i < workers; i++ {
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			s.workerLoop(rctx, q)
		}()
	}
	s.log.Info("notifier started", logx.Int("workers", workers))
}

// Stop blocks intake and drains queued messages best-effort until ctx.
func (s *Service) Stop(ctx context.Context) {
	s.mu.Lock()
	q := s.queue
	cancel := s.cancel
	s.queue = nil
	s.cancel = nil
	s.accepting = false
	s.mu.Unlock()

	if q == nil {
		return
	}
	close(q)

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.log.Info("notifier stopped")
	case <-ctx.Done():
		if cancel != nil {
			cancel()
		}
		s.log.Warn("notifier stop timed out; dropping queued messages")
	}
	if cancel != nil {
		cancel()
	}
}

// Notify enqueues a fire-and-forget message (confirmation replies).
func (s *Service) Notify(ctx context.Context, n transport.Notification) error {
	if ctx != nil && ctx.Err() != nil {
		return ctx.Err()
	}

	s.mu.Lock()
	q := s.queue
	ok := s.accepting
	s.mu.Unlock()

	if !ok || q == nil {
		return ErrStopped
	}
	select {
	case q <- n:
		return nil
	default:
		return ErrQueueFull
	}
}

// Send delivers synchronously so the caller observes success or failure.
// The scheduler dispatch path uses this; its per-job timeout bounds the
// whole call including the rate-limiter wait.
func (s *Service) Send(ctx context.Context, n transport.Notification) error {
	s.mu.Lock()
	lim := s.limiter
	ad := s.adapter
	s.mu.Unlock()

	if lim != nil {
		if err := lim.Wait(ctx); err != nil {
			return err
		}
	}
	_, err := ad.SendText(ctx, n.Target, n.Text, n.Options)
	s.publish(n, err)
	return err
}

func (s *Service) workerLoop(ctx context.Context, q <-chan transport.Notification) {
	for {
		select {
		case <-ctx.Done():
			return
		case n, ok := <-q:
			if !ok {
				return
			}
			cctx, cancel := context.WithTimeout(ctx, 10*time.Second)
			if err := s.Send(cctx, n); err != nil {
				// Best-effort policy: a failed reply is logged, not retried.
				s.log.Warn("send failed",
					logx.Int64("chat", n.Target.ChatID),
					logx.String("kind", n.Kind),
					logx.Err(err))
			}
			cancel()
		}
	}
}

func (s *Service) publish(n transport.Notification, err error) {
	if s.bus == nil {
		return
	}
	now := time.Now()
	ev := DeliveryEvent{
		OwnerID: strconv.FormatInt(n.Target.ChatID, 10),
		Kind:    n.Kind,
		Text:    n.Text,
		At:      now,
	}
	typ := "notifier.sent"
	if err != nil {
		typ = "notifier.failed"
		ev.Error = err.Error()
	}
	s.bus.Publish(eventbus.Event{Type: typ, Time: now, Data: ev})
}
