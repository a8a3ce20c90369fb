package application

import (
	"context"
	"sync"
	"time"

	"github.com/bnema/community-inbox/internal/logging"
	"github.com/rs/zerolog"
)

// Task is one poll iteration. It receives a context cancelled when the schedule stops.
type Task func(ctx context.Context) error

// Schedule runs a Task immediately and then on every tick of its cadence.
// Iterations run on their own goroutine so a hung request never delays the
// next tick; the task's Guard aborts whatever the previous tick left in flight.
type Schedule struct {
	name    string
	logger  zerolog.Logger
	onError func(error)

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
	reset  chan struct{}
}

func NewSchedule(name string, logger zerolog.Logger, onError func(error)) *Schedule {
	return &Schedule{
		name:    name,
		logger:  logger.With().Str("schedule", name).Logger(),
		onError: onError,
	}
}

func (s *Schedule) Name() string {
	return s.name
}

// Start runs task now and then every cadence until Stop. A running schedule is restarted.
func (s *Schedule) Start(ctx context.Context, cadence time.Duration, task Task) {
	s.start(ctx, cadence, task, true)
}

// StartDeferred is Start without the immediate iteration, for callers that just fetched out of band.
func (s *Schedule) StartDeferred(ctx context.Context, cadence time.Duration, task Task) {
	s.start(ctx, cadence, task, false)
}

func (s *Schedule) start(ctx context.Context, cadence time.Duration, task Task, immediate bool) {
	s.Stop()

	runCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	reset := make(chan struct{}, 1)

	s.mu.Lock()
	s.cancel = cancel
	s.done = done
	s.reset = reset
	s.mu.Unlock()

	s.logger.Debug().Dur("cadence", cadence).Msg("schedule started")
	go s.run(runCtx, cadence, task, immediate, done, reset)
}

func (s *Schedule) run(ctx context.Context, cadence time.Duration, task Task, immediate bool, done chan struct{}, reset chan struct{}) {
	var iterations sync.WaitGroup
	defer close(done)
	defer iterations.Wait()

	ticker := time.NewTicker(cadence)
	defer ticker.Stop()

	tick := func() {
		iterations.Add(1)
		go func() {
			defer iterations.Done()
			s.iterate(ctx, task)
		}()
	}

	if immediate {
		tick()
	}

	for {
		select {
		case <-ctx.Done():
			return
		case <-reset:
			ticker.Reset(cadence)
		case <-ticker.C:
			tick()
		}
	}
}

func (s *Schedule) iterate(ctx context.Context, task Task) {
	err := task(logging.WithContext(ctx, s.logger))
	if err == nil {
		return
	}

	if IsCancellation(err) || ctx.Err() != nil {
		s.logger.Debug().Err(err).Msg("poll superseded")
		return
	}

	s.logger.Warn().Err(err).Msg("poll failed, retrying next tick")
	if s.onError != nil {
		s.onError(err)
	}
}

// Postpone pushes the next tick one full cadence away.
func (s *Schedule) Postpone() {
	s.mu.Lock()
	reset := s.reset
	s.mu.Unlock()

	if reset == nil {
		return
	}
	select {
	case reset <- struct{}{}:
	default:
	}
}

func (s *Schedule) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cancel != nil
}

// Halt cancels the schedule without waiting. It is safe to call from inside a task.
func (s *Schedule) Halt() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cancel == nil {
		return
	}
	s.cancel()
	s.cancel = nil
	s.reset = nil
}

// Stop cancels the schedule and waits for in-flight iterations to return,
// including those of a schedule that was only halted.
func (s *Schedule) Stop() {
	s.Halt()

	s.mu.Lock()
	done := s.done
	s.done = nil
	s.mu.Unlock()

	if done != nil {
		<-done
		s.logger.Debug().Msg("schedule stopped")
	}
}

// PollScheduler groups the three refresh loops of the sync engine.
type PollScheduler struct {
	Peers    *Schedule
	Messages *Schedule
	Counts   *Schedule
}

func NewPollScheduler(logger zerolog.Logger, onError func(error)) *PollScheduler {
	return &PollScheduler{
		Peers:    NewSchedule("peers", logger, onError),
		Messages: NewSchedule("messages", logger, onError),
		Counts:   NewSchedule("counts", logger, onError),
	}
}

func (p *PollScheduler) all() []*Schedule {
	return []*Schedule{p.Peers, p.Messages, p.Counts}
}

func (p *PollScheduler) HaltAll() {
	for _, schedule := range p.all() {
		schedule.Halt()
	}
}

func (p *PollScheduler) StopAll() {
	for _, schedule := range p.all() {
		schedule.Stop()
	}
}
