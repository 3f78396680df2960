package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

// defaultNoiseParam is used when a noise comment carries no param=.
const defaultNoiseParam = 0.01

// parameterHint provides a hint for parameter input
type parameterHint struct {
	required bool
	example  string
}

// catalogItem describes a gate type the circuit model knows how to export.
type catalogItem struct {
	name      string
	gateType  string
	symbol    string
	controls  int // controls implied by the QASM form, e.g. 1 for cx
	targets   int // body registers
	params    int
	kind      GateKind
	paramHint parameterHint
	// symmetric gates act the same whichever register is the control
	symmetric   bool
	unsupported string
	build       func(params []float64) ([]*Matrix, error)
}

// catalogCategory groups related gates.
type catalogCategory struct {
	name  string
	items []catalogItem
}

func fixed(m func() *Matrix) func([]float64) ([]*Matrix, error) {
	return func([]float64) ([]*Matrix, error) { return []*Matrix{m()}, nil }
}

func rotation(m func(float64) *Matrix) func([]float64) ([]*Matrix, error) {
	return func(p []float64) ([]*Matrix, error) { return []*Matrix{m(p[0])}, nil }
}

func channel(k func(float64) ([]*Matrix, error)) func([]float64) ([]*Matrix, error) {
	return func(p []float64) ([]*Matrix, error) { return k(p[0]) }
}

var angleHint = parameterHint{required: true, example: "pi/2"}

// gateCatalog lists every gate the exporter understands, grouped as in the gate picker.
var gateCatalog = []catalogCategory{
	{
		name: "Single Qubit",
		items: []catalogItem{
			{name: "Hadamard", gateType: "H", symbol: "H", targets: 1, build: fixed(GateH)},
			{name: "Pauli-X (NOT)", gateType: "X", symbol: "X", targets: 1, build: fixed(GateX)},
			{name: "Pauli-Y", gateType: "Y", symbol: "Y", targets: 1, build: fixed(GateY)},
			{name: "Pauli-Z", gateType: "Z", symbol: "Z", targets: 1, build: fixed(GateZ)},
			{name: "Identity", gateType: "I", symbol: "I", targets: 1, kind: KindIdentity},
			{name: "Phase (S)", gateType: "S", symbol: "S", targets: 1, build: fixed(GateS)},
			{name: "Phase Dagger (S†)", gateType: "SDG", symbol: "S†", targets: 1, build: fixed(func() *Matrix { return Dagger(GateS()) })},
			{name: "T Gate", gateType: "T", symbol: "T", targets: 1, build: fixed(GateT)},
			{name: "T Dagger (T†)", gateType: "TDG", symbol: "T†", targets: 1, build: fixed(func() *Matrix { return Dagger(GateT()) })},
			{name: "√X (SX)", gateType: "SX", symbol: "√X", targets: 1, build: fixed(GateSX)},
			{name: "√Y (SY)", gateType: "SY", symbol: "√Y", targets: 1, build: fixed(GateSY)},
		},
	},
	{
		name: "Rotation",
		items: []catalogItem{
			{name: "Rotate X", gateType: "RX", symbol: "RX", targets: 1, params: 1, paramHint: angleHint, build: rotation(GateRX)},
			{name: "Rotate Y", gateType: "RY", symbol: "RY", targets: 1, params: 1, paramHint: angleHint, build: rotation(GateRY)},
			{name: "Rotate Z", gateType: "RZ", symbol: "RZ", targets: 1, params: 1, paramHint: angleHint, build: rotation(GateRZ)},
			{name: "Phase Shift", gateType: "P", symbol: "P", targets: 1, params: 1, paramHint: parameterHint{required: true, example: "pi/4"}, build: rotation(GatePhase)},
			{name: "Universal U1", gateType: "U1", symbol: "U1", targets: 1, params: 1, paramHint: parameterHint{required: true, example: "lambda"}, build: rotation(GatePhase)},
			{name: "Universal U2", gateType: "U2", symbol: "U2", targets: 1, params: 2, paramHint: parameterHint{required: true, example: "phi,lambda"},
				build: func(p []float64) ([]*Matrix, error) { return []*Matrix{GateU2(p[0], p[1])}, nil }},
			{name: "Universal U3", gateType: "U3", symbol: "U3", targets: 1, params: 3, paramHint: parameterHint{required: true, example: "theta,phi,lambda"},
				build: func(p []float64) ([]*Matrix, error) { return []*Matrix{GateU3(p[0], p[1], p[2])}, nil }},
		},
	},
	{
		name: "Multi Qubit",
		items: []catalogItem{
			{name: "CNOT", gateType: "CX", symbol: "●─⊕", controls: 1, targets: 1, build: fixed(GateX)},
			{name: "Controlled-Y", gateType: "CY", symbol: "●─Y", controls: 1, targets: 1, build: fixed(GateY)},
			{name: "Controlled-Z", gateType: "CZ", symbol: "●─●", controls: 1, targets: 1, symmetric: true, build: fixed(GateZ)},
			{name: "Controlled-H", gateType: "CH", symbol: "●─H", controls: 1, targets: 1, build: fixed(GateH)},
			{name: "SWAP", gateType: "SWAP", symbol: "×─×", targets: 2, symmetric: true, build: fixed(GateSWAP)},
			{name: "Toffoli (CCX)", gateType: "CCX", symbol: "●─●─⊕", controls: 2, targets: 1, build: fixed(GateX)},
			{name: "C-Rotate X", gateType: "CRX", symbol: "●─RX", controls: 1, targets: 1, params: 1, paramHint: angleHint, build: rotation(GateRX)},
			{name: "C-Rotate Y", gateType: "CRY", symbol: "●─RY", controls: 1, targets: 1, params: 1, paramHint: angleHint, build: rotation(GateRY)},
			{name: "C-Rotate Z", gateType: "CRZ", symbol: "●─RZ", controls: 1, targets: 1, params: 1, paramHint: angleHint, build: rotation(GateRZ)},
			{name: "C-Phase (CU1)", gateType: "CU1", symbol: "●─U1", controls: 1, targets: 1, params: 1, symmetric: true, paramHint: parameterHint{required: true, example: "lambda"}, build: rotation(GatePhase)},
			{name: "C-Phase (CP)", gateType: "CP", symbol: "●─P", controls: 1, targets: 1, params: 1, symmetric: true, paramHint: parameterHint{required: true, example: "lambda"}, build: rotation(GatePhase)},
		},
	},
	{
		name: "Measurement",
		items: []catalogItem{
			{name: "Measure", gateType: "MEASURE", symbol: "M", targets: 1, kind: KindKraus,
				build: func([]float64) ([]*Matrix, error) { return MeasureZ(), nil }},
			{name: "Measure-Ctrl X", gateType: "MCX", symbol: "M─⊕", targets: 1, unsupported: "measurement-controlled gates need classical feedback"},
		},
	},
	{
		name: "Special",
		items: []catalogItem{
			{name: "Reset", gateType: "RESET", symbol: "|0⟩", targets: 1, kind: KindKraus,
				build: func([]float64) ([]*Matrix, error) { return ResetChannel(), nil }},
			{name: "Barrier", gateType: "BARRIER", symbol: "┃"},
		},
	},
	{
		name: "Noise",
		items: []catalogItem{
			{name: "Depolarizing", gateType: "NOISE_DEPOL", symbol: "N", targets: 1, params: 1, kind: KindKraus, paramHint: parameterHint{required: false, example: "0.01"}, build: channel(Depolarizing)},
			{name: "Amplitude Damping", gateType: "NOISE_AMP", symbol: "N", targets: 1, params: 1, kind: KindKraus, paramHint: parameterHint{required: false, example: "0.01"}, build: channel(AmplitudeDamping)},
			{name: "Phase Damping", gateType: "NOISE_PHASE", symbol: "N", targets: 1, params: 1, kind: KindKraus, paramHint: parameterHint{required: false, example: "0.01"}, build: channel(PhaseDamping)},
			{name: "Bit Flip", gateType: "NOISE_BITFLIP", symbol: "N", targets: 1, params: 1, kind: KindKraus, paramHint: parameterHint{required: false, example: "0.01"}, build: channel(BitFlip)},
			{name: "Phase Flip", gateType: "NOISE_PHASEFLIP", symbol: "N", targets: 1, params: 1, kind: KindKraus, paramHint: parameterHint{required: false, example: "0.01"}, build: channel(PhaseFlip)},
		},
	},
}

// noiseGateTypes maps the kind named in a noise comment to its catalog entry.
var noiseGateTypes = map[string]string{
	"depolarizing":      "NOISE_DEPOL",
	"amplitude_damping": "NOISE_AMP",
	"phase_damping":     "NOISE_PHASE",
	"bit_flip":          "NOISE_BITFLIP",
	"phase_flip":        "NOISE_PHASEFLIP",
}

// lookupGate finds a catalog entry by gate type.
func lookupGate(gateType string) (catalogItem, bool) {
	for _, cat := range gateCatalog {
		for _, item := range cat.items {
			if item.gateType == gateType {
				return item, true
			}
		}
	}
	return catalogItem{}, false
}

// isParameterizedGate returns true if the gate type requires parameters
func isParameterizedGate(gateType string) bool {
	item, ok := lookupGate(gateType)
	return ok && item.params > 0
}

// renderCatalog renders one table per category.
func renderCatalog() string {
	var sections []string
	for _, cat := range gateCatalog {
		rows := make([][]string, 0, len(cat.items))
		for _, item := range cat.items {
			kind := item.kind.String()
			switch {
			case item.unsupported != "":
				kind = "unsupported"
			case item.build == nil && item.kind != KindIdentity:
				kind = "layout"
			}
			params := ""
			if item.params > 0 {
				params = item.paramHint.example
			}
			rows = append(rows, []string{
				strings.ToLower(item.gateType),
				item.symbol,
				item.name,
				fmt.Sprintf("%d", item.controls+item.targets),
				params,
				kind,
			})
		}
		t := table.New().
			Border(lipgloss.RoundedBorder()).
			BorderStyle(dimStyle).
			Headers("GATE", "SYMBOL", "NAME", "REGS", "PARAMS", "KIND").
			Rows(rows...).
			StyleFunc(func(row, col int) lipgloss.Style {
				switch {
				case row == table.HeaderRow:
					return headerCellStyle
				case col == 1:
					return gateStyle.Padding(0, 1)
				default:
					return cellStyle
				}
			})
		sections = append(sections, titleStyle.Render(cat.name), t.Render())
	}
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}
