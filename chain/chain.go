// SPDX-License-Identifier: MIT

// Package chain drives a Markov chain over partitions: it asks a Proposal for
// a candidate, checks it against a Constraint, and keeps or replaces the
// current state. Acceptance is "accept if feasible", an unweighted random
// walk restricted to the feasible region.
//
// A Chain is single-threaded and owns its random stream. Run many chains in
// parallel by giving each its own *rand.Rand from NewRand.
package chain

import (
	"errors"
	"fmt"
	"math/rand"

	"github.com/rs/zerolog"

	"github.com/katalvlaran/redistrict/partition"
)

// ErrTerminated is returned by Step once the chain has taken all its steps.
var ErrTerminated = errors.New("chain: terminated")

// ErrInvalidInitial indicates an initial Partition rejected by the constraint.
var ErrInvalidInitial = errors.New("chain: initial partition violates constraints")

// ErrInvalidLength indicates a negative step budget.
var ErrInvalidLength = errors.New("chain: total steps must be non-negative")

// Proposal produces a candidate successor of p. ok=false with a nil error is
// an expected proposal failure; a non-nil error is fatal to the chain.
type Proposal interface {
	Propose(p *partition.Partition, rng *rand.Rand) (next *partition.Partition, ok bool, err error)
}

// ProposalFunc adapts a function to Proposal.
type ProposalFunc func(p *partition.Partition, rng *rand.Rand) (*partition.Partition, bool, error)

// Propose calls f.
func (f ProposalFunc) Propose(p *partition.Partition, rng *rand.Rand) (*partition.Partition, bool, error) {
	return f(p, rng)
}

// Phase is the lifecycle state of a Chain.
type Phase int

const (
	// PhaseInitial: built, no step taken yet.
	PhaseInitial Phase = iota
	// PhaseRunning: at least one step taken, more remain.
	PhaseRunning
	// PhaseTerminated: TotalSteps taken or a fatal proposal error; Step
	// returns ErrTerminated.
	PhaseTerminated
)

// String returns the lower-case phase name.
func (ph Phase) String() string {
	switch ph {
	case PhaseInitial:
		return "initial"
	case PhaseRunning:
		return "running"
	case PhaseTerminated:
		return "terminated"
	default:
		return fmt.Sprintf("Phase(%d)", int(ph))
	}
}

// StepKind classifies one transition.
type StepKind int

const (
	// Accepted: the candidate passed the constraint and became current.
	Accepted StepKind = iota
	// RejectedConstraint: a candidate was found but failed the constraint.
	RejectedConstraint
	// RejectedNoProposal: the proposal exhausted its attempts.
	RejectedNoProposal
)

// String returns the snake_case kind name used as a metrics label.
func (k StepKind) String() string {
	switch k {
	case Accepted:
		return "accepted"
	case RejectedConstraint:
		return "rejected_constraint"
	case RejectedNoProposal:
		return "rejected_no_proposal"
	default:
		return fmt.Sprintf("StepKind(%d)", int(k))
	}
}

// Step is one emitted transition. Index is 1-based. Partition is the state
// after the transition: the candidate when Accepted, the prior state otherwise.
type Step struct {
	Index     int
	Kind      StepKind
	Partition *partition.Partition
}

// Observer is called with every emitted Step.
type Observer func(Step)

// Option configures a Chain.
type Option func(*Chain)

// WithLogger attaches a logger; rejections are logged at debug level.
func WithLogger(l zerolog.Logger) Option {
	return func(c *Chain) { c.log = l }
}

// WithVerify recomputes every updater and part connectivity after each
// accepted step, failing the step with partition.ErrCorrupted or
// partition.ErrNotContiguous on mismatch. Intended for tests and debugging.
func WithVerify() Option {
	return func(c *Chain) { c.verify = true }
}

// WithObserver registers fn to receive every Step. Panics if fn is nil.
func WithObserver(fn Observer) Option {
	if fn == nil {
		panic("chain: WithObserver(nil)")
	}

	return func(c *Chain) { c.observers = append(c.observers, fn) }
}

// Chain is a finite, non-restartable sequence of partitions.
type Chain struct {
	state      *partition.Partition
	proposal   Proposal
	constraint Constraint
	rng        *rand.Rand
	total      int
	taken      int
	phase      Phase

	log       zerolog.Logger
	verify    bool
	observers []Observer
}

// New builds a Chain of totalSteps transitions starting at initial.
//
// Errors:
//   - ErrInvalidLength if totalSteps < 0.
//   - ErrInvalidInitial if constraint rejects initial.
func New(initial *partition.Partition, proposal Proposal, constraint Constraint, totalSteps int, rng *rand.Rand, opts ...Option) (*Chain, error) {
	if totalSteps < 0 {
		return nil, fmt.Errorf("chain: total=%d: %w", totalSteps, ErrInvalidLength)
	}
	if constraint == nil {
		constraint = Validator()
	}
	if !constraint(initial) {
		return nil, ErrInvalidInitial
	}

	c := &Chain{
		state:      initial,
		proposal:   proposal,
		constraint: constraint,
		rng:        rng,
		total:      totalSteps,
		log:        zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}

// Current returns the current Partition.
func (c *Chain) Current() *partition.Partition { return c.state }

// Phase returns the lifecycle state.
func (c *Chain) Phase() Phase { return c.phase }

// Taken returns the number of transitions performed so far.
func (c *Chain) Taken() int { return c.taken }

// Total returns the step budget.
func (c *Chain) Total() int { return c.total }

// Step performs one transition and returns it. Rejections are ordinary
// steps, never errors. After the last step the chain is terminated and Step
// returns ErrTerminated; a fatal proposal or verification error also
// terminates it.
func (c *Chain) Step() (Step, error) {
	if c.phase == PhaseTerminated || c.taken >= c.total {
		c.phase = PhaseTerminated
		return Step{}, ErrTerminated
	}
	c.phase = PhaseRunning
	c.taken++

	st := Step{Index: c.taken, Partition: c.state}
	next, ok, err := c.proposal.Propose(c.state, c.rng)
	switch {
	case err != nil:
		c.phase = PhaseTerminated
		return Step{}, fmt.Errorf("chain: step %d: %w", c.taken, err)
	case !ok:
		st.Kind = RejectedNoProposal
		c.log.Debug().Int("step", c.taken).Msg("no balanced cut found")
	case !c.constraint(next):
		st.Kind = RejectedConstraint
		c.log.Debug().Int("step", c.taken).Msg("candidate rejected by constraints")
	default:
		if c.verify {
			if err := verify(next); err != nil {
				c.phase = PhaseTerminated
				return Step{}, fmt.Errorf("chain: step %d: %w", c.taken, err)
			}
		}
		st.Kind = Accepted
		st.Partition = next
		c.state = next
	}

	if c.taken == c.total {
		c.phase = PhaseTerminated
	}
	for _, fn := range c.observers {
		fn(st)
	}

	return st, nil
}

// Run calls Step until the chain terminates, passing each Step to fn. It
// stops early with fn's error if fn returns one.
func (c *Chain) Run(fn func(Step) error) error {
	for {
		st, err := c.Step()
		if errors.Is(err, ErrTerminated) {
			return nil
		}
		if err != nil {
			return err
		}
		if fn == nil {
			continue
		}
		if err := fn(st); err != nil {
			return err
		}
	}
}

func verify(p *partition.Partition) error {
	if err := p.Verify(); err != nil {
		return err
	}

	return p.VerifyContiguity()
}
