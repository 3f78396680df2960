package main

import (
	"fmt"
	"iter"
	"slices"
	"strings"
)

// ExportGates resolves every step of the circuit to exported gates, filling registers
// no gate touches with identities. The whole circuit is resolved before the stream is
// returned, so a bad gate fails the export rather than the simulation.
func (c *Circuit) ExportGates() (iter.Seq[ExportedGate], error) {
	n := c.NumRegisters()
	var out []ExportedGate
	for step := range c.MaxSteps {
		gates := c.GatesAtStep(step)
		if !slices.ContainsFunc(gates, func(g Gate) bool { return g.Type != "BARRIER" }) {
			continue
		}
		column, err := exportStep(step, gates, n)
		if err != nil {
			return nil, err
		}
		out = append(out, column...)
	}
	return slices.Values(out), nil
}

// exportStep resolves one step into records ordered by register, covering 0..n-1 exactly once.
func exportStep(step int, gates []Gate, n int) ([]ExportedGate, error) {
	covered := make([]bool, n)
	var records []ExportedGate
	for _, g := range gates {
		if g.Type == "BARRIER" {
			continue
		}
		eg, err := exportGate(g)
		if err != nil {
			return nil, &ExportError{Step: step, Reason: fmt.Sprintf("%s on q[%d]", strings.ToLower(g.Type), g.Target), Err: err}
		}
		for r := eg.Start(); r <= eg.MaxRegister(); r++ {
			if r < 0 || r >= n {
				return nil, &ExportError{Step: step, Reason: fmt.Sprintf("%s: register %d outside 0..%d", eg, r, n-1)}
			}
			if covered[r] {
				return nil, &ExportError{Step: step, Reason: fmt.Sprintf("%s overlaps another gate on register %d", eg, r)}
			}
			covered[r] = true
		}
		records = append(records, eg)
	}
	for r, ok := range covered {
		if !ok {
			records = append(records, NewIdentityGate(r))
		}
	}
	slices.SortStableFunc(records, func(a, b ExportedGate) int {
		return a.Start() - b.Start()
	})
	return records, nil
}

// exportGate turns one placed gate into its export record.
func exportGate(g Gate) (ExportedGate, error) {
	if g.ClassicalControl >= 0 {
		return ExportedGate{}, fmt.Errorf("classically controlled gates are not supported")
	}
	gateType := g.Type
	if g.IsNoise {
		t, ok := noiseGateTypes[g.NoiseType]
		if !ok {
			return ExportedGate{}, fmt.Errorf("unknown noise kind %q", g.NoiseType)
		}
		gateType = t
	}
	item, ok := lookupGate(gateType)
	if !ok {
		return ExportedGate{}, fmt.Errorf("unknown gate %q", g.Type)
	}
	if item.unsupported != "" {
		return ExportedGate{}, fmt.Errorf("%s", item.unsupported)
	}

	params := g.Params
	if g.IsNoise && len(params) == 0 {
		params = []float64{defaultNoiseParam}
	}
	if len(params) < item.params {
		return ExportedGate{}, fmt.Errorf("needs %d parameters, has %d", item.params, len(params))
	}

	name := strings.ToLower(item.gateType)
	if g.IsDagger {
		name += "dg"
	}
	if item.params > 0 {
		parts := make([]string, item.params)
		for i, p := range params[:item.params] {
			parts[i] = formatParam(p)
		}
		name += "(" + strings.Join(parts, ",") + ")"
	}

	if item.kind == KindIdentity {
		return NewIdentityGate(g.Target), nil
	}
	mats, err := item.build(params)
	if err != nil {
		return ExportedGate{}, err
	}
	if item.kind == KindKraus {
		return NewKrausGate(name, mats, g.Target), nil
	}
	body := mats[0]
	if g.IsDagger {
		body = Dagger(body)
	}

	controls := g.Controls
	if g.Control >= 0 {
		controls = append([]int{g.Control}, controls...)
	}

	// two-register bodies
	if item.targets == 2 {
		if len(controls) != 1 {
			return ExportedGate{}, fmt.Errorf("needs two registers")
		}
		lo, hi := min(controls[0], g.Target), max(controls[0], g.Target)
		if hi != lo+1 {
			return ExportedGate{}, fmt.Errorf("registers %d and %d are not adjacent", lo, hi)
		}
		return NewUnitaryGate(name, body, []int{lo, hi}), nil
	}

	if len(controls) != item.controls {
		return ExportedGate{}, fmt.Errorf("needs %d controls, has %d", item.controls, len(controls))
	}
	if len(controls) == 0 {
		return NewUnitaryGate(name, body, []int{g.Target}), nil
	}
	return controlledGate(name, body, g.Target, controls, g.OpenControls, item.symmetric)
}

// controlledGate lays out a controlled single-target gate. Controls must be contiguous and
// above the target; symmetric gates with a single control are flipped when needed.
// Registers between the last control and the target join the body as identities.
func controlledGate(name string, body *Matrix, target int, controls, open []int, symmetric bool) (ExportedGate, error) {
	controls = slices.Sorted(slices.Values(controls))
	if symmetric && len(controls) == 1 && controls[0] > target && !slices.Contains(open, controls[0]) {
		controls, target = []int{target}, controls[0]
	}
	for i, c := range controls {
		if c == target {
			return ExportedGate{}, fmt.Errorf("register %d is both control and target", c)
		}
		if c > target {
			return ExportedGate{}, fmt.Errorf("control %d below target %d is not supported", c, target)
		}
		if i > 0 && c != controls[i-1]+1 {
			return ExportedGate{}, fmt.Errorf("controls %v are not contiguous", controls)
		}
	}

	last := controls[len(controls)-1]
	registers := make([]int, 0, target-last)
	for r := last + 1; r <= target; r++ {
		registers = append(registers, r)
	}
	if gap := len(registers) - 1; gap > 0 {
		body = Identity(1 << gap).Kronecker(body)
	}

	ctrls := make([]Control, len(controls))
	for i, c := range controls {
		ctrls[i] = Control{Register: c, Status: !slices.Contains(open, c)}
	}
	return NewUnitaryGate(name, body, registers, ctrls...), nil
}
