package main

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"math/rand/v2"
	"slices"
)

// ErrZeroProbability is returned when every branch of an observed channel has zero weight.
var ErrZeroProbability = errors.New("channel: all branches have zero probability")

// Outcome records the branch chosen when a column's channel was observed.
type Outcome struct {
	Column      int     `yaml:"column"`
	Branch      int     `yaml:"branch"`
	Probability float64 `yaml:"probability"`
}

// BuildColumnKraus returns the Kraus set of one column. Unitary blocks and padding
// multiply every element; a Kraus gate with k matrices multiplies the set size by k.
func BuildColumnKraus(gates []ExportedGate, n int) ([]*Matrix, error) {
	return columnLayout{Registers: n, Strict: true, Tolerance: defaultTolerance}.kraus(gates)
}

func (l columnLayout) kraus(gates []ExportedGate) ([]*Matrix, error) {
	blocks, err := l.blocks(dropShadowedIdentities(gates))
	if err != nil {
		return nil, err
	}
	set := []*Matrix{Identity(1)}
	for _, b := range blocks {
		next := make([]*Matrix, 0, len(set)*len(b.Ops))
		for _, k := range set {
			for _, op := range b.Ops {
				next = append(next, k.Kronecker(op))
			}
		}
		set = next
	}
	return set, nil
}

// ApplyChannel returns Σ K ρ K†.
func ApplyChannel(kraus []*Matrix, rho *Matrix) (*Matrix, error) {
	var out *Matrix
	for i, k := range kraus {
		branch, err := conjugate(k, rho)
		if err != nil {
			return nil, fmt.Errorf("kraus operator %d: %w", i, err)
		}
		if out == nil {
			out = branch
			continue
		}
		if out, err = out.Add(branch); err != nil {
			return nil, fmt.Errorf("kraus operator %d: %w", i, err)
		}
	}
	if out == nil {
		return nil, fmt.Errorf("empty kraus set: %w", ErrLayout)
	}
	return out, nil
}

// ApplyChannelObserved picks branch i with probability tr(K_i ρ K_i†) and returns
// that branch renormalized, the branch index and its probability.
func ApplyChannelObserved(kraus []*Matrix, rho *Matrix, rng *rand.Rand) (*Matrix, int, float64, error) {
	branches := make([]*Matrix, len(kraus))
	weights := make([]float64, len(kraus))
	var total float64
	for i, k := range kraus {
		branch, err := conjugate(k, rho)
		if err != nil {
			return nil, 0, 0, fmt.Errorf("kraus operator %d: %w", i, err)
		}
		tr, err := branch.Trace()
		if err != nil {
			return nil, 0, 0, fmt.Errorf("kraus operator %d: %w", i, err)
		}
		branches[i] = branch
		weights[i] = max(real(tr), 0)
		total += weights[i]
	}
	if total <= 0 {
		return nil, 0, 0, ErrZeroProbability
	}

	u := rng.Float64() * total
	pick := slices.IndexFunc(weights, func(w float64) bool {
		if u < w {
			return true
		}
		u -= w
		return false
	})
	if pick < 0 {
		// rounding left u just past the last weight
		pick = len(weights) - 1
		for weights[pick] == 0 {
			pick--
		}
	}
	p := weights[pick] / total
	return branches[pick].Scale(complex(1/weights[pick], 0)), pick, p, nil
}

func conjugate(k, rho *Matrix) (*Matrix, error) {
	kr, err := k.Mult(rho)
	if err != nil {
		return nil, err
	}
	return kr.Mult(k.ConjugateTranspose())
}

// runMixed evolves |0…0⟩⟨0…0| through every column's channel.
func (s *Simulator) runMixed(ctx context.Context, n int, seq iter.Seq[ExportedGate]) (*Result, error) {
	layout := s.layout(n)
	res := &Result{Registers: n, Mixed: true}
	rho := OuterProduct(ZeroState(n), ZeroState(n))

	apply := func(col Column, kraus []*Matrix) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		var err error
		if kraus == nil {
			if kraus, err = layout.kraus(col.Gates); err != nil {
				return fmt.Errorf("column %d: %w", col.Index, err)
			}
		}
		if s.opts.Observe && col.HasKraus() {
			var (
				branch int
				p      float64
			)
			rho, branch, p, err = ApplyChannelObserved(kraus, rho, s.rng)
			if err != nil {
				return fmt.Errorf("column %d: %w", col.Index, err)
			}
			res.Outcomes = append(res.Outcomes, Outcome{Column: col.Index, Branch: branch, Probability: p})
			s.log.Debug("branch observed", "index", col.Index, "branch", branch, "probability", p)
		} else if rho, err = ApplyChannel(kraus, rho); err != nil {
			return fmt.Errorf("column %d: %w", col.Index, err)
		}
		s.log.Debug("column applied", "index", col.Index, "gates", len(col.Gates), "kraus", len(kraus), "mode", "mixed")
		s.notify(col, true, rho)
		res.Columns++
		return nil
	}

	if s.opts.Workers > 1 {
		cols, _, err := collectColumns(seq, n, s.opts.Strict)
		if err != nil {
			return nil, err
		}
		sets, err := prebuild(ctx, cols, s.opts.Workers, func(col Column) ([]*Matrix, error) {
			return layout.kraus(col.Gates)
		})
		if err != nil {
			return nil, err
		}
		for i, col := range cols {
			if err := apply(col, sets[i]); err != nil {
				return nil, err
			}
		}
	} else {
		for col, err := range readColumns(seq, n, s.opts.Strict) {
			if err != nil {
				return nil, err
			}
			if err := apply(col, nil); err != nil {
				return nil, err
			}
		}
	}

	res.State = rho
	return res, nil
}
