package main

import (
	"context"
	"errors"
	"fmt"
	"iter"

	"golang.org/x/sync/errgroup"
)

// errNeedsMixed aborts the pure engine when the stream contains a Kraus gate.
var errNeedsMixed = errors.New("engine: kraus gate requires mixed-state simulation")

// collectColumns reads the whole stream so the pure engine can decide its mode before
// touching the state.
func collectColumns(seq iter.Seq[ExportedGate], n int, strict bool) ([]Column, bool, error) {
	var (
		cols  []Column
		kraus bool
	)
	for col, err := range readColumns(seq, n, strict) {
		if err != nil {
			return nil, false, err
		}
		if col.HasKraus() {
			kraus = true
		}
		cols = append(cols, col)
	}
	return cols, kraus, nil
}

// runPure evolves |0…0⟩ through the column operators. It returns errNeedsMixed
// as soon as the stream turns out to contain a Kraus gate.
func (s *Simulator) runPure(ctx context.Context, n int, seq iter.Seq[ExportedGate]) (*Result, error) {
	cols, kraus, err := collectColumns(seq, n, s.opts.Strict)
	if err != nil {
		return nil, err
	}
	if kraus {
		return nil, errNeedsMixed
	}

	layout := s.layout(n)
	ops, err := prebuild(ctx, cols, s.opts.Workers, func(col Column) (*Matrix, error) {
		return layout.operator(col.Gates)
	})
	if err != nil {
		return nil, err
	}

	state := ZeroState(n)
	for i, col := range cols {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		op := ops[i]
		if op == nil {
			if op, err = layout.operator(col.Gates); err != nil {
				return nil, fmt.Errorf("column %d: %w", col.Index, err)
			}
		}
		if state, err = op.Mult(state); err != nil {
			return nil, fmt.Errorf("column %d: %w", col.Index, err)
		}
		s.log.Debug("column applied", "index", col.Index, "gates", len(col.Gates), "mode", "pure")
		s.notify(col, false, state)
	}

	return &Result{Registers: n, State: state, Columns: len(cols)}, nil
}

// prebuild builds per-column values concurrently when more than one worker is configured.
// With a single worker it returns a slice of zero values and callers build lazily.
func prebuild[T any](ctx context.Context, cols []Column, workers int, build func(Column) (T, error)) ([]T, error) {
	out := make([]T, len(cols))
	if workers <= 1 || len(cols) < 2 {
		return out, nil
	}
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, col := range cols {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			v, err := build(col)
			if err != nil {
				return fmt.Errorf("column %d: %w", col.Index, err)
			}
			out[i] = v
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
