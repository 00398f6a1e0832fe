package services

import (
	"context"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/xvierd/countdown-cli/internal/domain"
	"github.com/xvierd/countdown-cli/internal/ports"
	"go.uber.org/zap"
)

// TickInterval is the period of the countdown tick.
const TickInterval = time.Second

// CountdownService owns a single Timer and its tick handle. All mutation
// happens on the goroutine running Run.
type CountdownService struct {
	clock    clock.Clock
	logger   *zap.Logger
	history  ports.HistoryRepository
	notifier ports.Notifier

	requests chan dispatchRequest
	done     chan struct{}

	mu    sync.RWMutex
	timer domain.Timer

	// Owned by the event loop.
	ticker   *clock.Ticker
	run      *domain.Run
	onChange []func(domain.Timer)
}

type dispatchRequest struct {
	event domain.Event
	reply chan domain.Timer
}

// Option configures a CountdownService.
type Option func(*CountdownService)

// WithClock replaces the wall clock, typically with clock.NewMock() in tests.
func WithClock(c clock.Clock) Option {
	return func(s *CountdownService) {
		s.clock = c
	}
}

// WithLogger sets the service logger.
func WithLogger(logger *zap.Logger) Option {
	return func(s *CountdownService) {
		s.logger = logger
	}
}

// WithHistory records finished runs in repo.
func WithHistory(repo ports.HistoryRepository) Option {
	return func(s *CountdownService) {
		s.history = repo
	}
}

// WithNotifier alerts through n when a countdown expires.
func WithNotifier(n ports.Notifier) Option {
	return func(s *CountdownService) {
		s.notifier = n
	}
}

// NewCountdownService creates an idle countdown controller. Call Run to
// start its event loop.
func NewCountdownService(opts ...Option) *CountdownService {
	s := &CountdownService{
		clock:    clock.New(),
		logger:   zap.NewNop(),
		requests: make(chan dispatchRequest),
		done:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// OnChange registers fn to be called from the event loop after every
// accepted transition. It must be called before Run.
func (s *CountdownService) OnChange(fn func(domain.Timer)) {
	s.onChange = append(s.onChange, fn)
}

// Snapshot returns a copy of the current timer.
func (s *CountdownService) Snapshot() domain.Timer {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.timer
}

// Done is closed when the event loop has exited.
func (s *CountdownService) Done() <-chan struct{} {
	return s.done
}

// Dispatch sends a command to the event loop and waits for the resulting timer.
func (s *CountdownService) Dispatch(ctx context.Context, ev domain.Event) (domain.Timer, error) {
	req := dispatchRequest{event: ev, reply: make(chan domain.Timer, 1)}

	select {
	case s.requests <- req:
	case <-s.done:
		return s.Snapshot(), domain.ErrControllerStopped
	case <-ctx.Done():
		return s.Snapshot(), ctx.Err()
	}

	select {
	case t := <-req.reply:
		return t, nil
	case <-ctx.Done():
		return s.Snapshot(), ctx.Err()
	}
}

// Run is the event loop. It returns when ctx is cancelled, after cancelling
// any pending tick and closing an unfinished run.
func (s *CountdownService) Run(ctx context.Context) error {
	defer close(s.done)
	defer s.teardown()

	s.logger.Debug("countdown loop started")

	for {
		var tick <-chan time.Time
		if s.ticker != nil {
			tick = s.ticker.C
		}

		select {
		case <-ctx.Done():
			return nil
		case req := <-s.requests:
			req.reply <- s.apply(req.event)
		case <-tick:
			s.apply(domain.Tick())
		}
	}
}

// apply reduces ev into the timer and performs the resulting side effects.
func (s *CountdownService) apply(ev domain.Event) domain.Timer {
	prev := s.Snapshot()
	next, effect := domain.Reduce(prev, ev)
	if next == prev && effect == domain.EffectNone {
		if ev.Kind != domain.EventTick {
			s.logger.Debug("command ignored", zap.Stringer("event", ev.Kind), zap.String("state", string(prev.State())))
		}
		return prev
	}

	s.trackRun(ev, prev, next)

	switch effect {
	case domain.EffectStartTicking:
		s.stopTicking()
		s.ticker = s.clock.Ticker(TickInterval)
	case domain.EffectStopTicking:
		s.stopTicking()
	}

	if ev.Kind != domain.EventTick {
		s.logger.Info("countdown transition",
			zap.Stringer("event", ev.Kind),
			zap.String("from", string(prev.State())),
			zap.String("to", string(next.State())),
			zap.Int("time_left", next.TimeLeft),
		)
	}

	// Expiry side effects complete before the new state becomes visible.
	if next.State() == domain.StateExpired && prev.State() != domain.StateExpired {
		s.expired(next)
	}

	s.mu.Lock()
	s.timer = next
	s.mu.Unlock()

	for _, fn := range s.onChange {
		fn(next)
	}
	return next
}

// trackRun opens a run on the first start and abandons it when a started
// countdown is discarded before expiring.
func (s *CountdownService) trackRun(ev domain.Event, prev, next domain.Timer) {
	switch ev.Kind {
	case domain.EventStart:
		if s.run == nil {
			s.run = domain.NewRun(next.Duration, s.clock.Now())
		}
	case domain.EventSetDuration, domain.EventReset:
		s.finishRun(domain.RunOutcomeAbandoned, prev.TimeLeft)
	}
}

func (s *CountdownService) expired(t domain.Timer) {
	duration := time.Duration(t.Duration) * time.Second
	s.logger.Info("countdown expired", zap.Duration("duration", duration))

	s.finishRun(domain.RunOutcomeCompleted, 0)

	if s.notifier != nil {
		if err := s.notifier.NotifyExpired(duration); err != nil {
			s.logger.Warn("notification failed", zap.Error(err))
		}
	}
}

// finishRun records the open run, if any. History failures are logged only.
func (s *CountdownService) finishRun(outcome domain.RunOutcome, timeLeft int) {
	if s.run == nil {
		return
	}
	run := s.run
	s.run = nil
	run.Finish(outcome, timeLeft, s.clock.Now())

	if s.history == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.history.Save(ctx, run); err != nil {
		s.logger.Warn("failed to record run", zap.String("run_id", run.ID), zap.Error(err))
		return
	}
	s.logger.Debug("run recorded", zap.String("run_id", run.ID), zap.String("outcome", string(outcome)))
}

func (s *CountdownService) stopTicking() {
	if s.ticker != nil {
		s.ticker.Stop()
		s.ticker = nil
	}
}

func (s *CountdownService) teardown() {
	s.stopTicking()
	s.finishRun(domain.RunOutcomeAbandoned, s.Snapshot().TimeLeft)

	// A countdown torn down mid-run is left suspended rather than reset.
	s.mu.Lock()
	s.timer, _ = domain.Reduce(s.timer, domain.Pause())
	s.mu.Unlock()

	s.logger.Debug("countdown loop stopped")
}
