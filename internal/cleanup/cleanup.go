package cleanup

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"gnap-as/internal/platform/logger"

	"github.com/robfig/cron/v3"
)

// Sweeper es una limpieza de expirados que devuelve cuántos afectó.
type Sweeper func(ctx context.Context) (int64, error)

// Result es el conteo de una pasada.
type Result struct {
	Grants       int64
	Tokens       int64
	Interactions int64
}

type Runner struct {
	grants       Sweeper
	tokens       Sweeper
	interactions Sweeper
	log          logger.Logger
}

func NewRunner(grants, tokens, interactions Sweeper, log logger.Logger) *Runner {
	if log == nil {
		log = logger.Nop()
	}
	return &Runner{
		grants:       grants,
		tokens:       tokens,
		interactions: interactions,
		log:          log,
	}
}

// RunOnce corre las tres limpiezas. Una falla no corta a las demás; los
// errores vuelven juntos.
func (r *Runner) RunOnce(ctx context.Context) (Result, error) {
	var (
		res  Result
		errs []error
	)

	run := func(name string, fn Sweeper, dst *int64) {
		if fn == nil {
			return
		}
		n, err := fn(ctx)
		if err != nil {
			r.log.Error("cleanup sweep failed", map[string]any{"sweep": name, "err": err})
			errs = append(errs, fmt.Errorf("%s: %w", name, err))
			return
		}
		*dst = n
	}

	run("grants", r.grants, &res.Grants)
	run("tokens", r.tokens, &res.Tokens)
	run("interactions", r.interactions, &res.Interactions)

	r.log.Info("cleanup pass finished", map[string]any{
		"grants":       res.Grants,
		"tokens":       res.Tokens,
		"interactions": res.Interactions,
	})
	return res, errors.Join(errs...)
}

// Scheduler corre el Runner según una expresión cron ("@every 1h", "0 * * * *").
type Scheduler struct {
	runner  *Runner
	cron    *cron.Cron
	timeout time.Duration
	log     logger.Logger

	mu      sync.Mutex
	started bool
}

func NewScheduler(runner *Runner, spec string, log logger.Logger) (*Scheduler, error) {
	if log == nil {
		log = logger.Nop()
	}
	s := &Scheduler{
		runner:  runner,
		cron:    cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
		timeout: time.Minute,
		log:     log,
	}

	if _, err := s.cron.AddFunc(spec, s.tick); err != nil {
		return nil, fmt.Errorf("cleanup: invalid schedule %q: %w", spec, err)
	}
	return s, nil
}

func (s *Scheduler) tick() {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()
	_, _ = s.runner.RunOnce(ctx)
}

func (s *Scheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started {
		return
	}
	s.started = true
	s.cron.Start()
	s.log.Info("cleanup scheduler started", nil)
}

// Stop espera a que termine la pasada en curso o a que venza ctx.
func (s *Scheduler) Stop(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.started {
		return
	}
	s.started = false

	done := s.cron.Stop()
	select {
	case <-done.Done():
	case <-ctx.Done():
		s.log.Warn("cleanup scheduler stop timed out", nil)
	}
}
