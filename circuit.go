package main

import (
	"errors"
	"fmt"
	"regexp"
	"slices"
	"strconv"
	"strings"
)

// ErrParse is returned for QASM input the parser does not understand.
var ErrParse = errors.New("qasm: parse error")

// Pre-compiled regexps for QASM parsing.
var (
	singleGateRegex      = regexp.MustCompile(`^(\w+)\s+q\[(\d+)\];?$`)
	singleGateParamRegex = regexp.MustCompile(`^(\w+)\s*\(\s*(` + paramPattern + `(?:\s*,\s*` + paramPattern + `)*)\s*\)\s+q\[(\d+)\];?$`)
	twoQubitRegex        = regexp.MustCompile(`^(\w+)\s+q\[(\d+)\],\s*q\[(\d+)\];?$`)
	twoQubitParamRegex   = regexp.MustCompile(`^(\w+)\s*\(\s*(` + paramPattern + `)\s*\)\s+q\[(\d+)\],\s*q\[(\d+)\];?$`)
	threeQubitRegex      = regexp.MustCompile(`^(\w+)\s+q\[(\d+)\],\s*q\[(\d+)\],\s*q\[(\d+)\];?$`)
	measureRegex         = regexp.MustCompile(`^measure\s+q\[(\d+)\]\s*->\s*(\w+)\[(\d+)\];?$`)
	resetRegex           = regexp.MustCompile(`^reset\s+q\[(\d+)\];?$`)
	ifRegex              = regexp.MustCompile(`^if\s*\(\s*(\w+)(?:\[(\d+)\])?\s*==\s*(\d+)\s*\)\s+(\w+)\s+q\[(\d+)\];?$`)
	ifParamRegex         = regexp.MustCompile(`^if\s*\(\s*(\w+)(?:\[(\d+)\])?\s*==\s*(\d+)\s*\)\s+(\w+)\s*\(\s*(` + paramPattern + `)\s*\)\s+q\[(\d+)\];?$`)
	qregRegex            = regexp.MustCompile(`^qreg\s+(\w+)\[(\d+)\];?$`)
	cregRegex            = regexp.MustCompile(`^creg\s+(\w+)\[(\d+)\];?$`)
	noiseRegex           = regexp.MustCompile(`^//\s*noise\s+(\w+)\s+q\[(\d+)\](?:\s+param=(` + paramPattern + `))?$`)
	barrierRegex         = regexp.MustCompile(`^barrier\b`)
)

// Gate represents a quantum gate placed on the circuit.
type Gate struct {
	Type             string
	Target           int
	Control          int       // -1 if not a controlled gate
	Controls         []int     // Multiple control qubits (for CCX/Toffoli)
	OpenControls     []int     // controls that fire on |0⟩
	MeasureSource    int       // -1 if not a measurement-controlled gate
	Step             int       // position in circuit timeline
	Params           []float64 // Parameters for parameterized gates
	IsDagger         bool      // True if gate is dagger (adjoint)
	IsReset          bool      // True if this is a reset operation
	ClassicalControl int       // -1 if not classically controlled, else classical bit index
	IsNoise          bool      // True if this is a noise operation
	NoiseType        string    // Type of noise
}

// Circuit holds the quantum circuit state.
type Circuit struct {
	NumQubits int
	Gates     []Gate
	MaxSteps  int
}

func newGate(gateType string, target, step int) Gate {
	return Gate{
		Type:             gateType,
		Target:           target,
		Control:          -1,
		MeasureSource:    -1,
		Step:             step,
		ClassicalControl: -1,
	}
}

func (c *Circuit) place(g Gate) {
	c.Gates = append(c.Gates, g)
	if g.Step >= c.MaxSteps {
		c.MaxSteps = g.Step + 1
	}
}

// AddGate appends a gate to the circuit.
func (c *Circuit) AddGate(gateType string, target, step int, control ...int) {
	g := newGate(gateType, target, step)
	if len(control) > 0 {
		g.Control = control[0]
	}
	c.place(g)
}

// AddParameterizedGate appends a parameterized gate to the circuit.
func (c *Circuit) AddParameterizedGate(gateType string, target, step int, params []float64, control ...int) {
	g := newGate(gateType, target, step)
	g.Params = params
	if len(control) > 0 {
		g.Control = control[0]
	}
	c.place(g)
}

// AddMultiControlGate appends a multi-controlled gate to the circuit.
func (c *Circuit) AddMultiControlGate(gateType string, target, step int, controls []int) {
	g := newGate(gateType, target, step)
	g.Controls = controls
	c.place(g)
}

// AddOpenControlGate appends a controlled gate whose open controls fire on |0⟩.
func (c *Circuit) AddOpenControlGate(gateType string, target, step int, controls, open []int) {
	g := newGate(gateType, target, step)
	g.Controls = controls
	g.OpenControls = open
	c.place(g)
}

// AddClassicalControlGate appends a classically-controlled gate to the circuit.
func (c *Circuit) AddClassicalControlGate(gateType string, target, step, cbit int) {
	g := newGate(gateType, target, step)
	g.ClassicalControl = cbit
	c.place(g)
}

// AddDaggerGate appends a dagger (adjoint) gate to the circuit.
func (c *Circuit) AddDaggerGate(gateType string, target, step int) {
	g := newGate(gateType, target, step)
	g.IsDagger = true
	c.place(g)
}

// AddReset appends a reset gate to the circuit.
func (c *Circuit) AddReset(target, step int) {
	g := newGate("RESET", target, step)
	g.IsReset = true
	c.place(g)
}

// AddNoise appends a noise operation to the circuit.
func (c *Circuit) AddNoise(target, step int, noiseType string, params ...float64) {
	g := newGate("NOISE", target, step)
	g.Params = params
	g.IsNoise = true
	g.NoiseType = noiseType
	c.place(g)
}

// AddMeasureControlGate appends a measurement-controlled gate to the circuit.
func (c *Circuit) AddMeasureControlGate(source, target, step int) {
	g := newGate("MCX", target, step)
	g.MeasureSource = source
	c.place(g)
}

// AddBarrier appends a barrier spanning all qubits at the given step.
func (c *Circuit) AddBarrier(step int) {
	// at most one barrier per step
	c.Gates = slices.DeleteFunc(c.Gates, func(g Gate) bool {
		return g.Step == step && g.Type == "BARRIER"
	})
	c.place(newGate("BARRIER", -1, step))
}

// qubits returns every qubit the gate names, target first.
func (g Gate) qubits() []int {
	qs := []int{g.Target}
	if g.Control >= 0 {
		qs = append(qs, g.Control)
	}
	qs = append(qs, g.Controls...)
	if g.MeasureSource >= 0 {
		qs = append(qs, g.MeasureSource)
	}
	return qs
}

// footprint returns every qubit between the gate's lowest and highest qubit.
func (g Gate) footprint() []int {
	qs := g.qubits()
	lo, hi := slices.Min(qs), slices.Max(qs)
	out := make([]int, 0, hi-lo+1)
	for q := lo; q <= hi; q++ {
		out = append(out, q)
	}
	return out
}

func (g Gate) isMultiQubit() bool {
	return g.Control >= 0 || len(g.Controls) > 0 || g.MeasureSource >= 0
}

// NumRegisters returns the declared qubit count, grown to cover every referenced qubit.
func (c *Circuit) NumRegisters() int {
	n := c.NumQubits
	for _, g := range c.Gates {
		if g.Type == "BARRIER" {
			continue
		}
		n = max(n, slices.Max(g.qubits())+1)
	}
	return n
}

// GatesAtStep returns the gates placed at step in insertion order.
func (c *Circuit) GatesAtStep(step int) []Gate {
	var out []Gate
	for _, g := range c.Gates {
		if g.Step == step {
			out = append(out, g)
		}
	}
	return out
}

// stepPacker assigns steps while parsing: a gate joins the open step unless it
// touches a qubit already used there. Multi-qubit gates open a fresh step and barriers close it.
type stepPacker struct {
	step int
	used map[int]bool
}

func (p *stepPacker) next() {
	p.step++
	p.used = make(map[int]bool)
}

func (p *stepPacker) assign(g *Gate) {
	if g.Type == "BARRIER" {
		if len(p.used) > 0 {
			p.next()
		}
		g.Step = p.step
		p.next()
		return
	}
	qs := g.footprint()
	conflict := slices.ContainsFunc(qs, func(q int) bool { return p.used[q] })
	if conflict || (g.isMultiQubit() && len(p.used) > 0) {
		p.next()
	}
	g.Step = p.step
	for _, q := range qs {
		p.used[q] = true
	}
}

// ParseQASM parses QASM text and rebuilds the circuit from it.
func (c *Circuit) ParseQASM(qasm string) error {
	c.Gates = nil
	c.MaxSteps = 0
	c.NumQubits = 0

	cregs := make(map[string]int)
	cregOffset := 0
	resolveCBit := func(name, bit string) int {
		start, ok := cregs[name]
		if !ok {
			return 0
		}
		if bit != "" {
			offset, _ := strconv.Atoi(bit)
			return start + offset
		}
		return start
	}

	packer := &stepPacker{used: make(map[int]bool)}
	for n, raw := range strings.Split(qasm, "\n") {
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}
		lineErr := func(reason string) error {
			return fmt.Errorf("line %d: %s: %q: %w", n+1, reason, line, ErrParse)
		}

		if strings.HasPrefix(line, "//") {
			matches := noiseRegex.FindStringSubmatch(line)
			if matches == nil {
				continue
			}
			target, _ := strconv.Atoi(matches[2])
			g := newGate("NOISE", target, 0)
			g.IsNoise = true
			g.NoiseType = strings.ToLower(matches[1])
			if matches[3] != "" {
				p, ok := parseParamExpr(matches[3])
				if !ok {
					return lineErr("bad noise parameter")
				}
				g.Params = []float64{p}
			}
			packer.assign(&g)
			c.place(g)
			continue
		}
		if strings.HasPrefix(line, "OPENQASM") || strings.HasPrefix(line, "include") {
			continue
		}
		if matches := qregRegex.FindStringSubmatch(line); matches != nil {
			size, _ := strconv.Atoi(matches[2])
			c.NumQubits += size
			continue
		}
		if matches := cregRegex.FindStringSubmatch(line); matches != nil {
			size, _ := strconv.Atoi(matches[2])
			cregs[matches[1]] = cregOffset
			cregOffset += size
			continue
		}

		g, err := parseGateLine(line, resolveCBit)
		if err != nil {
			return lineErr(err.Error())
		}
		packer.assign(&g)
		c.place(g)
	}
	return nil
}

// parseGateLine parses a single QASM gate statement.
func parseGateLine(line string, resolveCBit func(name, bit string) int) (Gate, error) {
	if matches := resetRegex.FindStringSubmatch(line); matches != nil {
		target, _ := strconv.Atoi(matches[1])
		g := newGate("RESET", target, 0)
		g.IsReset = true
		return g, nil
	}

	if barrierRegex.MatchString(line) {
		return newGate("BARRIER", -1, 0), nil
	}

	if matches := measureRegex.FindStringSubmatch(line); matches != nil {
		source, _ := strconv.Atoi(matches[1])
		return newGate("MEASURE", source, 0), nil
	}

	if matches := ifParamRegex.FindStringSubmatch(line); matches != nil {
		param, ok := parseParamExpr(matches[5])
		if !ok {
			return Gate{}, errors.New("bad parameter")
		}
		target, _ := strconv.Atoi(matches[6])
		g := newGate(strings.ToUpper(matches[4]), target, 0)
		g.Params = []float64{param}
		g.ClassicalControl = resolveCBit(matches[1], matches[2])
		return g, nil
	}

	if matches := ifRegex.FindStringSubmatch(line); matches != nil {
		target, _ := strconv.Atoi(matches[5])
		g := newGate(strings.ToUpper(matches[4]), target, 0)
		g.ClassicalControl = resolveCBit(matches[1], matches[2])
		return g, nil
	}

	if matches := threeQubitRegex.FindStringSubmatch(line); matches != nil {
		gateType := strings.ToUpper(matches[1])
		if gateType == "TOFFOLI" {
			gateType = "CCX"
		}
		q1, _ := strconv.Atoi(matches[2])
		q2, _ := strconv.Atoi(matches[3])
		q3, _ := strconv.Atoi(matches[4])
		g := newGate(gateType, q3, 0)
		g.Controls = []int{q1, q2}
		return g, nil
	}

	if matches := twoQubitParamRegex.FindStringSubmatch(line); matches != nil {
		param, ok := parseParamExpr(matches[2])
		if !ok {
			return Gate{}, errors.New("bad parameter")
		}
		q1, _ := strconv.Atoi(matches[3])
		q2, _ := strconv.Atoi(matches[4])
		g := newGate(strings.ToUpper(matches[1]), q2, 0)
		g.Control = q1
		g.Params = []float64{param}
		return g, nil
	}

	if matches := twoQubitRegex.FindStringSubmatch(line); matches != nil {
		q1, _ := strconv.Atoi(matches[2])
		q2, _ := strconv.Atoi(matches[3])
		g := newGate(strings.ToUpper(matches[1]), q2, 0)
		g.Control = q1
		return g, nil
	}

	if matches := singleGateParamRegex.FindStringSubmatch(line); matches != nil {
		params, ok := parseParams(matches[2])
		if !ok {
			return Gate{}, errors.New("bad parameter")
		}
		target, _ := strconv.Atoi(matches[3])
		g := newGate(strings.ToUpper(matches[1]), target, 0)
		g.Params = params
		return g, nil
	}

	if matches := singleGateRegex.FindStringSubmatch(line); matches != nil {
		gateType := strings.ToUpper(matches[1])
		target, _ := strconv.Atoi(matches[2])
		if isParameterizedGate(gateType) {
			return Gate{}, errors.New("missing parameters")
		}
		g := newGate(gateType, target, 0)
		// sdg, tdg, sxdg, sydg
		if base, ok := strings.CutSuffix(gateType, "DG"); ok && base != "" {
			g.Type = base
			g.IsDagger = true
		}
		if gateType == "ID" {
			g.Type = "I"
		}
		return g, nil
	}

	return Gate{}, errors.New("unrecognized statement")
}
