package main

import (
	"errors"
	"fmt"
	"slices"
)

// ErrLayout is returned when a column breaks the register layout rules.
var ErrLayout = errors.New("column: invalid gate layout")

// defaultTolerance is used for trace-preservation checks when none is configured.
const defaultTolerance = 1e-9

// columnLayout turns one column of gates into tensor factors laid out from register 0 down.
type columnLayout struct {
	Registers int
	Strict    bool
	Tolerance float64
}

// columnBlock is one tensor factor of a column: padding, a (controlled) unitary block or a Kraus set.
type columnBlock struct {
	Gate  *ExportedGate // nil for padding
	Start int
	Span  int
	Ops   []*Matrix
}

func (b columnBlock) isKraus() bool {
	return b.Gate != nil && b.Gate.Kind == KindKraus
}

// BuildColumnOperator returns the 2^n×2^n operator of a column of unitary and identity gates.
// Layout rules are enforced.
func BuildColumnOperator(gates []ExportedGate, n int) (*Matrix, error) {
	return columnLayout{Registers: n, Strict: true, Tolerance: defaultTolerance}.operator(gates)
}

// operator tensors the column's blocks into a single matrix.
func (l columnLayout) operator(gates []ExportedGate) (*Matrix, error) {
	blocks, err := l.blocks(dropShadowedIdentities(gates))
	if err != nil {
		return nil, err
	}
	var m *Matrix
	for _, b := range blocks {
		if b.isKraus() {
			return nil, fmt.Errorf("%s on %v is not unitary: %w", b.Gate.Name, b.Gate.Registers, ErrLayout)
		}
		if m == nil {
			m = b.Ops[0]
			continue
		}
		m = m.Kronecker(b.Ops[0])
	}
	if m == nil {
		return Identity(1 << l.Registers), nil
	}
	return m, nil
}

// blocks walks the registers with a cursor, emitting identity padding for untouched
// registers and one block per gate.
func (l columnLayout) blocks(gates []ExportedGate) ([]columnBlock, error) {
	var out []columnBlock
	i := 0
	for idx := range gates {
		g := &gates[idx]
		if len(g.Registers) == 0 {
			return nil, fmt.Errorf("%s has no registers: %w", g.Name, ErrLayout)
		}
		if l.Strict {
			if err := l.validateGateLayout(*g, i); err != nil {
				return nil, err
			}
		}

		minReg, maxReg := g.MinRegister(), g.MaxRegister()
		var b columnBlock
		switch {
		case g.IsControlled():
			if g.Kind == KindKraus {
				return nil, fmt.Errorf("%s: controlled kraus gates are not supported: %w", g.Name, ErrLayout)
			}
			block, err := controlledBlock(*g)
			if err != nil {
				return nil, err
			}
			start := g.Start()
			b = columnBlock{Gate: g, Start: start, Span: 1 + maxReg - start, Ops: []*Matrix{block}}
		case g.Kind == KindKraus:
			if len(g.Matrices) == 0 {
				return nil, fmt.Errorf("%s has an empty kraus set: %w", g.Name, ErrLayout)
			}
			b = columnBlock{Gate: g, Start: minReg, Span: 1 + maxReg - minReg, Ops: g.Matrices}
		default:
			op := g.Operator()
			if op == nil {
				return nil, fmt.Errorf("%s has no matrix: %w", g.Name, ErrLayout)
			}
			b = columnBlock{Gate: g, Start: minReg, Span: 1 + maxReg - minReg, Ops: []*Matrix{op}}
		}

		// a negative shift is only reachable with validation off
		if i < b.Start {
			out = append(out, padBlock(i, b.Start))
		}
		out = append(out, b)
		i = b.Start + b.Span
	}
	if l.Strict && i != l.Registers {
		return nil, fmt.Errorf("column covers %d of %d registers: %w", i, l.Registers, ErrLayout)
	}
	if i < l.Registers {
		out = append(out, padBlock(i, l.Registers))
	}
	return out, nil
}

func padBlock(from, to int) columnBlock {
	return columnBlock{Start: from, Span: to - from, Ops: []*Matrix{Identity(1 << (to - from))}}
}

// controlledBlock embeds the body matrix as the leading block of an identity over controls
// and body, then conjugates it with the truth adjuster so each control fires on its status.
func controlledBlock(g ExportedGate) (*Matrix, error) {
	body := g.Operator()
	if body == nil {
		return nil, fmt.Errorf("%s has no matrix: %w", g.Name, ErrLayout)
	}
	controls := slices.SortedFunc(slices.Values(g.Controls), func(a, b Control) int {
		return a.Register - b.Register
	})

	bodySpan := 1 + g.MaxRegister() - g.MinRegister()
	adj := Identity(1)
	for _, c := range controls {
		if c.Status {
			adj = adj.Kronecker(GateX())
		} else {
			adj = adj.Kronecker(GateI())
		}
	}
	adj = adj.Kronecker(Identity(1 << bodySpan))

	raw, err := Identity(1<<(len(controls)+bodySpan)).SetSlice(0, body.Rows()-1, 0, body.Cols()-1, body)
	if err != nil {
		return nil, fmt.Errorf("%s: %w: %w", g.Name, ErrDimensionMismatch, err)
	}
	m, err := adj.Mult(raw)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", g.Name, err)
	}
	if m, err = m.Mult(adj); err != nil {
		return nil, fmt.Errorf("%s: %w", g.Name, err)
	}
	return m, nil
}

// validateGateLayout checks one gate against the cursor position i.
func (l columnLayout) validateGateLayout(g ExportedGate, i int) error {
	fail := func(format string, args ...any) error {
		return fmt.Errorf("%s: %s: %w", g, fmt.Sprintf(format, args...), ErrLayout)
	}

	for k, r := range g.Registers {
		if r < 0 || r >= l.Registers {
			return fail("register %d outside 0..%d", r, l.Registers-1)
		}
		if k > 0 && r != g.Registers[k-1]+1 {
			return fail("body registers must be ascending and contiguous")
		}
	}
	for k, c := range g.Controls {
		if c.Register < 0 || c.Register >= l.Registers {
			return fail("control %d outside 0..%d", c.Register, l.Registers-1)
		}
		if k > 0 && c.Register != g.Controls[k-1].Register+1 {
			return fail("controls must be ascending and contiguous")
		}
	}
	if g.IsControlled() && g.Controls[len(g.Controls)-1].Register != g.Registers[0]-1 {
		return fail("last control must sit directly above the body")
	}
	if g.Start() < i {
		return fail("overlaps register %d", i-1)
	}

	dim := 1 << len(g.Registers)
	switch g.Kind {
	case KindUnitary:
		if len(g.Matrices) != 1 {
			return fail("unitary gate needs exactly one matrix, has %d", len(g.Matrices))
		}
	case KindKraus:
		if len(g.Matrices) == 0 {
			return fail("empty kraus set")
		}
	case KindIdentity:
		if len(g.Matrices) > 1 {
			return fail("identity gate has %d matrices", len(g.Matrices))
		}
	default:
		return fail("unknown kind %v", g.Kind)
	}
	for _, m := range g.Matrices {
		if m.Rows() != dim || m.Cols() != dim {
			return fail("matrix is %dx%d, body needs %dx%d", m.Rows(), m.Cols(), dim, dim)
		}
	}
	if g.Kind == KindKraus && !IsTracePreserving(g.Matrices, l.Tolerance) {
		return fmt.Errorf("%s: %w", g, ErrNotTracePreserving)
	}
	if g.Kind == KindIdentity && len(g.Matrices) == 1 && !g.Matrices[0].ApproxEqual(Identity(dim), l.Tolerance) {
		return fail("identity gate carries a non-identity matrix")
	}
	return nil
}
