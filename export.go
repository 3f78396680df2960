package main

import (
	"errors"
	"fmt"
	"iter"
	"slices"
)

// ErrExport marks a failure of the circuit model to produce its gate stream.
var ErrExport = errors.New("export failed")

// GateKind tags how the engine interprets an exported gate's matrices.
type GateKind int

const (
	KindUnitary GateKind = iota
	KindKraus
	KindIdentity
)

func (k GateKind) String() string {
	switch k {
	case KindUnitary:
		return "unitary"
	case KindKraus:
		return "kraus"
	case KindIdentity:
		return "identity"
	}
	return fmt.Sprintf("GateKind(%d)", int(k))
}

// Control is a register that gates the body's action. The body fires when the
// register is |1⟩ for Status true and |0⟩ for Status false.
type Control struct {
	Register int
	Status   bool
}

// ExportedGate is one placed gate as the engine sees it.
type ExportedGate struct {
	Name      string
	Registers []int
	Controls  []Control
	Kind      GateKind
	Matrices  []*Matrix
}

// Project is anything that can describe a circuit as a gate stream.
// ExportGates may be called more than once and must yield the same stream each time.
type Project interface {
	NumRegisters() int
	ExportGates() (iter.Seq[ExportedGate], error)
}

// ExportError reports why a project could not be exported.
type ExportError struct {
	Step   int
	Reason string
	Err    error
}

func (e *ExportError) Error() string {
	msg := fmt.Sprintf("export: step %d: %s", e.Step, e.Reason)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ExportError) Unwrap() []error {
	if e.Err != nil {
		return []error{ErrExport, e.Err}
	}
	return []error{ErrExport}
}

// NewUnitaryGate places m on the given body registers.
func NewUnitaryGate(name string, m *Matrix, registers []int, controls ...Control) ExportedGate {
	return ExportedGate{
		Name:      name,
		Registers: registers,
		Controls:  controls,
		Kind:      KindUnitary,
		Matrices:  []*Matrix{m},
	}
}

// NewKrausGate places a Kraus operator set on the given registers.
func NewKrausGate(name string, kraus []*Matrix, registers ...int) ExportedGate {
	return ExportedGate{
		Name:      name,
		Registers: registers,
		Kind:      KindKraus,
		Matrices:  kraus,
	}
}

// NewIdentityGate marks registers untouched for one column.
func NewIdentityGate(registers ...int) ExportedGate {
	return ExportedGate{
		Name:      "I",
		Registers: registers,
		Kind:      KindIdentity,
	}
}

// Span is the number of registers the gate consumes in its column.
func (g ExportedGate) Span() int {
	return len(g.Registers) + len(g.Controls)
}

// MinRegister returns the lowest body register.
func (g ExportedGate) MinRegister() int {
	return slices.Min(g.Registers)
}

// MaxRegister returns the highest body register.
func (g ExportedGate) MaxRegister() int {
	return slices.Max(g.Registers)
}

// IsControlled reports whether the gate has at least one control.
func (g ExportedGate) IsControlled() bool {
	return len(g.Controls) > 0
}

// Start returns the first register covered by the gate including its controls.
func (g ExportedGate) Start() int {
	start := g.MinRegister()
	for _, c := range g.Controls {
		start = min(start, c.Register)
	}
	return start
}

// Covers reports whether reg lies between the gate's first control and last body register.
func (g ExportedGate) Covers(reg int) bool {
	return reg >= g.Start() && reg <= g.MaxRegister()
}

// Operator returns the body matrix for unitary and identity gates, nil for Kraus gates.
func (g ExportedGate) Operator() *Matrix {
	switch g.Kind {
	case KindIdentity:
		if len(g.Matrices) > 0 {
			return g.Matrices[0]
		}
		return Identity(1 << len(g.Registers))
	case KindUnitary:
		if len(g.Matrices) > 0 {
			return g.Matrices[0]
		}
	}
	return nil
}

// IsSingleIdentity reports whether the gate is an uncontrolled identity on one register.
func (g ExportedGate) IsSingleIdentity() bool {
	return g.Kind == KindIdentity && len(g.Registers) == 1 && len(g.Controls) == 0
}

func (g ExportedGate) String() string {
	s := fmt.Sprintf("%s%v", g.Name, g.Registers)
	for _, c := range g.Controls {
		if c.Status {
			s += fmt.Sprintf(" ●%d", c.Register)
		} else {
			s += fmt.Sprintf(" ○%d", c.Register)
		}
	}
	return s
}

// SliceProject is a Project backed by a fixed gate list.
type SliceProject struct {
	Registers int
	Gates     []ExportedGate
	Err       error
}

func (p *SliceProject) NumRegisters() int { return p.Registers }

func (p *SliceProject) ExportGates() (iter.Seq[ExportedGate], error) {
	if p.Err != nil {
		return nil, p.Err
	}
	return slices.Values(p.Gates), nil
}
