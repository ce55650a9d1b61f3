// Package metrics exposes Prometheus counters fed by machine hooks.
package metrics

import (
	"context"
	"errors"

	"github.com/aretw0/turing/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
)

// Error kinds reported on turing_errors_total.
const (
	KindParse          = "parse"
	KindNoMatchingRule = "no_matching_rule"
	KindAlreadyHalted  = "already_halted"
	KindStepLimit      = "step_limit"
	KindCanceled       = "canceled"
	KindNotFound       = "not_found"
	KindOther          = "other"
)

// Collector groups the engine counters.
type Collector struct {
	Steps       prometheus.Counter
	Transitions *prometheus.CounterVec
	Halts       prometheus.Counter
	Errors      *prometheus.CounterVec
}

// New creates the counters and registers them with reg (skipped when reg is nil).
func New(reg prometheus.Registerer) (*Collector, error) {
	c := &Collector{
		Steps: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "turing_steps_total",
			Help: "Total number of executed steps",
		}),
		Transitions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "turing_state_transitions_total",
				Help: "Total number of transitions into each state",
			},
			[]string{"state"},
		),
		Halts: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "turing_halts_total",
			Help: "Total number of machines that reached a halting state",
		}),
		Errors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "turing_errors_total",
				Help: "Total number of failed operations by kind",
			},
			[]string{"kind"},
		),
	}

	if reg != nil {
		for _, col := range []prometheus.Collector{c.Steps, c.Transitions, c.Halts, c.Errors} {
			if err := reg.Register(col); err != nil {
				return nil, err
			}
		}
	}
	return c, nil
}

// Hooks returns machine hooks that record every step.
func (c *Collector) Hooks() domain.MachineHooks {
	return domain.MachineHooks{
		OnStateChanged: func(e domain.StateChangedEvent) {
			c.Transitions.WithLabelValues(e.NewState).Inc()
			if domain.IsHaltState(e.NewState) {
				c.Halts.Inc()
			}
		},
		OnTapeChanged: func(domain.TapeChangedEvent) {
			c.Steps.Inc()
		},
	}
}

// RecordError counts err under its kind. Nil errors are ignored.
func (c *Collector) RecordError(err error) {
	if err == nil {
		return
	}
	c.Errors.WithLabelValues(Kind(err)).Inc()
}

// Kind classifies an error for the errors counter.
func Kind(err error) string {
	var perr *domain.ParseError
	switch {
	case errors.As(err, &perr):
		return KindParse
	case errors.Is(err, domain.ErrNoMatchingRule):
		return KindNoMatchingRule
	case errors.Is(err, domain.ErrAlreadyHalted):
		return KindAlreadyHalted
	case errors.Is(err, domain.ErrStepLimitExceeded):
		return KindStepLimit
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return KindCanceled
	case errors.Is(err, domain.ErrSessionNotFound), errors.Is(err, domain.ErrProgramNotFound):
		return KindNotFound
	default:
		return KindOther
	}
}
