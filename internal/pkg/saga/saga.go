// Package saga runs an ordered list of phases that each commit on their own.
//
// Phases after a failure are skipped. Phases that already committed are not
// rolled back; instead the returned error names the failed phase and the
// committed ones, and optional compensations are run in reverse order.
package saga

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
)

// Phase is one committed step of a saga.
type Phase struct {
	Name string
	Run  func(ctx context.Context) error
	// Compensate, when set, undoes the phase after a later phase failed.
	Compensate func(ctx context.Context) error
}

// Error reports where a saga stopped.
type Error struct {
	Phase     string
	Completed []string
	Cause     error
}

func (e *Error) Error() string {
	completed := "none"
	if len(e.Completed) > 0 {
		completed = strings.Join(e.Completed, ", ")
	}
	return fmt.Sprintf("phase %q failed (committed: %s): %v", e.Phase, completed, e.Cause)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Saga is built with New and run once with Execute.
type Saga struct {
	name   string
	logger *slog.Logger
	phases []Phase
}

func New(name string, logger *slog.Logger) *Saga {
	if logger == nil {
		logger = slog.Default()
	}
	return &Saga{name: name, logger: logger.With("saga", name)}
}

// Add appends a phase. A nil run function is skipped, which lets callers add
// phases conditionally without branching.
func (s *Saga) Add(name string, run func(ctx context.Context) error) *Saga {
	if run != nil {
		s.phases = append(s.phases, Phase{Name: name, Run: run})
	}
	return s
}

// AddPhase appends a fully specified phase.
func (s *Saga) AddPhase(p Phase) *Saga {
	if p.Run != nil {
		s.phases = append(s.phases, p)
	}
	return s
}

// Phases lists the names of the phases in execution order.
func (s *Saga) Phases() []string {
	names := make([]string, 0, len(s.phases))
	for _, p := range s.phases {
		names = append(names, p.Name)
	}
	return names
}

// Execute runs every phase in order and stops at the first failure.
func (s *Saga) Execute(ctx context.Context) error {
	completed := make([]Phase, 0, len(s.phases))
	for _, p := range s.phases {
		if err := ctx.Err(); err != nil {
			return s.fail(ctx, p.Name, completed, err)
		}
		if err := p.Run(ctx); err != nil {
			return s.fail(ctx, p.Name, completed, err)
		}
		completed = append(completed, p)
	}
	return nil
}

func (s *Saga) fail(ctx context.Context, phase string, completed []Phase, cause error) error {
	names := make([]string, 0, len(completed))
	for _, p := range completed {
		names = append(names, p.Name)
	}
	s.logger.ErrorContext(ctx, "saga phase failed",
		"phase", phase,
		"committed", names,
		"error", cause,
	)

	var compErrs []error
	for i := len(completed) - 1; i >= 0; i-- {
		if completed[i].Compensate == nil {
			continue
		}
		if err := completed[i].Compensate(context.WithoutCancel(ctx)); err != nil {
			s.logger.ErrorContext(ctx, "saga compensation failed", "phase", completed[i].Name, "error", err)
			compErrs = append(compErrs, fmt.Errorf("compensate %s: %w", completed[i].Name, err))
		}
	}

	sagaErr := &Error{Phase: phase, Completed: names, Cause: cause}
	if len(compErrs) > 0 {
		return errors.Join(append([]error{sagaErr}, compErrs...)...)
	}
	return sagaErr
}
