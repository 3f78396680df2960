package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"iter"
	"math/rand/v2"

	"github.com/charmbracelet/log"
)

// Snapshot is the state right after a column was applied.
type Snapshot struct {
	Column int
	Gates  []ExportedGate
	Mixed  bool
	State  *Matrix
}

// Observer receives a snapshot after every column.
type Observer func(Snapshot)

// Options configure a Simulator.
type Options struct {
	// Strict validates every column's layout and rejects violations with ErrLayout.
	Strict bool
	// Workers > 1 builds column operators concurrently. They are still applied in order.
	Workers int
	// Observe samples one branch per Kraus column instead of keeping the full mixture.
	Observe   bool
	Seed      uint64
	Tolerance float64
	Logger    *log.Logger
	Observer  Observer
}

// Option mutates Options.
type Option func(*Options)

// DefaultOptions returns strict, single-worker, non-observing options.
func DefaultOptions() Options {
	return Options{
		Strict:    true,
		Workers:   1,
		Seed:      1,
		Tolerance: defaultTolerance,
	}
}

func WithStrict(strict bool) Option    { return func(o *Options) { o.Strict = strict } }
func WithWorkers(n int) Option         { return func(o *Options) { o.Workers = n } }
func WithTolerance(tol float64) Option { return func(o *Options) { o.Tolerance = tol } }
func WithLogger(l *log.Logger) Option  { return func(o *Options) { o.Logger = l } }
func WithObserver(fn Observer) Option  { return func(o *Options) { o.Observer = fn } }

// WithObserve enables sampled measurement with a fixed seed.
func WithObserve(seed uint64) Option {
	return func(o *Options) {
		o.Observe = true
		o.Seed = seed
	}
}

// Simulator runs projects through the column engines.
type Simulator struct {
	opts Options
	log  *log.Logger
	rng  *rand.Rand
}

// NewSimulator returns a Simulator configured by opts.
func NewSimulator(opts ...Option) *Simulator {
	o := DefaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if o.Tolerance <= 0 {
		o.Tolerance = defaultTolerance
	}
	logger := o.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Simulator{
		opts: o,
		log:  logger,
		rng:  rand.New(rand.NewPCG(o.Seed, o.Seed^0x9e3779b97f4a7c15)),
	}
}

func (s *Simulator) layout(n int) columnLayout {
	return columnLayout{Registers: n, Strict: s.opts.Strict, Tolerance: s.opts.Tolerance}
}

func (s *Simulator) notify(col Column, mixed bool, state *Matrix) {
	if s.opts.Observer == nil {
		return
	}
	s.opts.Observer(Snapshot{Column: col.Index, Gates: col.Gates, Mixed: mixed, State: state})
}

// Run simulates p from |0…0⟩. A stream containing any Kraus gate is simulated
// entirely on density matrices. Errors leave no partial result.
func (s *Simulator) Run(ctx context.Context, p Project) (*Result, error) {
	n := p.NumRegisters()
	if n < 0 {
		return nil, fmt.Errorf("negative register count %d: %w", n, ErrLayout)
	}
	seq, err := exportGates(p)
	if err != nil {
		return nil, err
	}
	s.log.Debug("simulation started", "registers", n, "strict", s.opts.Strict, "workers", s.opts.Workers)

	res, err := s.runPure(ctx, n, seq)
	if errors.Is(err, errNeedsMixed) {
		s.log.Warn("kraus gate found, restarting on density matrices", "registers", n)
		if seq, err = exportGates(p); err != nil {
			return nil, err
		}
		res, err = s.runMixed(ctx, n, seq)
	}
	if err != nil {
		return nil, err
	}
	s.log.Debug("simulation finished", "columns", res.Columns, "mixed", res.Mixed)
	return res, nil
}

func exportGates(p Project) (iter.Seq[ExportedGate], error) {
	seq, err := p.ExportGates()
	if err != nil {
		var exportErr *ExportError
		if errors.As(err, &exportErr) {
			return nil, err
		}
		return nil, &ExportError{Step: -1, Reason: "project could not be exported", Err: err}
	}
	if seq == nil {
		seq = func(func(ExportedGate) bool) {}
	}
	return seq, nil
}

// Execute runs p with default options and returns the final state listing,
// or "" if the project could not be exported or simulated.
func Execute(p Project) string {
	res, err := NewSimulator().Run(context.Background(), p)
	if err != nil {
		return ""
	}
	return res.String()
}
