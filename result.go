package main

import (
	"fmt"
	"math"
	"math/bits"
	"math/cmplx"
	"strings"

	"gopkg.in/yaml.v3"
)

// Result is the final state of a simulation.
type Result struct {
	Registers int
	Mixed     bool
	// State is a 2^n×1 vector, or a 2^n×2^n density matrix when Mixed.
	State    *Matrix
	Columns  int
	Outcomes []Outcome
}

type QubitProbability struct {
	Prob0 float64 `yaml:"p0"`
	Prob1 float64 `yaml:"p1"`
}

// BasisEntry describes one computational basis state of the result.
type BasisEntry struct {
	BasisState int
	Amplitude  Complex // ρ_ii for mixed states
	Prob       float64
	Phase      float64
	Hamming    int
}

// Probabilities returns the probability of every basis state, |a_i|² or ρ_ii.
func (r *Result) Probabilities() []float64 {
	dim := r.State.Rows()
	probs := make([]float64, dim)
	for i := range dim {
		if r.Mixed {
			probs[i] = real(r.State.At(i, i))
		} else {
			a := r.State.At(i, 0)
			probs[i] = real(a * cmplx.Conj(a))
		}
	}
	return probs
}

// QubitProbabilities returns P(0) and P(1) of each register. Register 0 is the most
// significant bit of the basis index.
func (r *Result) QubitProbabilities() []QubitProbability {
	probs := make([]QubitProbability, r.Registers)
	for i, p := range r.Probabilities() {
		for q := 0; q < r.Registers; q++ {
			if i&(1<<(r.Registers-1-q)) != 0 {
				probs[q].Prob1 += p
			} else {
				probs[q].Prob0 += p
			}
		}
	}
	return probs
}

// Purity returns tr(ρ²) of the final state without renormalizing it. For a state
// vector ρ is |ψ⟩⟨ψ|, so the value is ⟨ψ|ψ⟩² and drifts from 1 exactly as far as
// the norm does.
func (r *Result) Purity() float64 {
	var sum float64
	if !r.Mixed {
		// ⟨ψ|ψ⟩ = Σ|ψ_i|²
		for _, p := range r.Probabilities() {
			sum += p
		}
		return sum * sum
	}
	// ρ is Hermitian, so tr(ρ²) = Σ|ρ_ij|²
	for i := 0; i < r.State.Rows(); i++ {
		for j := 0; j < r.State.Cols(); j++ {
			a := cmplx.Abs(r.State.At(i, j))
			sum += a * a
		}
	}
	return sum
}

// BasisEntries lists basis states with probability above threshold.
func (r *Result) BasisEntries(threshold float64) []BasisEntry {
	probs := r.Probabilities()
	entries := make([]BasisEntry, 0, len(probs))
	for i, p := range probs {
		if p <= threshold {
			continue
		}
		var amp Complex
		if r.Mixed {
			amp = r.State.At(i, i)
		} else {
			amp = r.State.At(i, 0)
		}
		entries = append(entries, BasisEntry{
			BasisState: i,
			Amplitude:  amp,
			Prob:       p,
			Phase:      cmplx.Phase(amp),
			Hamming:    bits.OnesCount(uint(i)),
		})
	}
	return entries
}

// basisLabel renders index i as a ket over n registers, register 0 first.
func basisLabel(i, n int) string {
	if n == 0 {
		return "|⟩"
	}
	return fmt.Sprintf("|%0*b⟩", n, i)
}

func (r *Result) String() string {
	return r.Text(6)
}

// Text lists the state: one "|bits⟩ amplitude" line per basis state for pure results,
// every row of ρ for mixed ones.
func (r *Result) Text(precision int) string {
	var sb strings.Builder
	kind := "pure"
	if r.Mixed {
		kind = "mixed"
	}
	fmt.Fprintf(&sb, "%s state, %d registers, %d columns\n", kind, r.Registers, r.Columns)
	if r.Mixed {
		for i := 0; i < r.State.Rows(); i++ {
			row := make([]string, r.State.Cols())
			for j := range row {
				row[j] = formatComplex(r.State.At(i, j), precision)
			}
			fmt.Fprintf(&sb, "%s [%s]\n", basisLabel(i, r.Registers), strings.Join(row, ", "))
		}
	} else {
		for i := 0; i < r.State.Rows(); i++ {
			fmt.Fprintf(&sb, "%s %s\n", basisLabel(i, r.Registers), formatComplex(r.State.At(i, 0), precision))
		}
	}
	for _, o := range r.Outcomes {
		fmt.Fprintf(&sb, "column %d: branch %d (p=%.*f)\n", o.Column, o.Branch, precision, o.Probability)
	}
	return sb.String()
}

type yamlResult struct {
	Registers  int                `yaml:"registers"`
	Mixed      bool               `yaml:"mixed"`
	Columns    int                `yaml:"columns"`
	Purity     float64            `yaml:"purity"`
	Amplitudes map[string]string  `yaml:"amplitudes,omitempty"`
	Density    [][]string         `yaml:"density,omitempty"`
	Qubits     []QubitProbability `yaml:"qubits"`
	Outcomes   []Outcome          `yaml:"outcomes,omitempty"`
}

// YAML encodes the result with entries rounded to precision decimals.
func (r *Result) YAML(precision int) ([]byte, error) {
	doc := yamlResult{
		Registers: r.Registers,
		Mixed:     r.Mixed,
		Columns:   r.Columns,
		Purity:    round(r.Purity(), precision),
		Outcomes:  r.Outcomes,
	}
	for _, q := range r.QubitProbabilities() {
		doc.Qubits = append(doc.Qubits, QubitProbability{Prob0: round(q.Prob0, precision), Prob1: round(q.Prob1, precision)})
	}
	if r.Mixed {
		for i := 0; i < r.State.Rows(); i++ {
			row := make([]string, r.State.Cols())
			for j := range row {
				row[j] = formatComplex(r.State.At(i, j), precision)
			}
			doc.Density = append(doc.Density, row)
		}
	} else {
		doc.Amplitudes = make(map[string]string, r.State.Rows())
		for i := 0; i < r.State.Rows(); i++ {
			doc.Amplitudes[basisLabel(i, r.Registers)] = formatComplex(r.State.At(i, 0), precision)
		}
	}
	out, err := yaml.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("encode result: %w", err)
	}
	return out, nil
}

func round(v float64, precision int) float64 {
	p := math.Pow(10, float64(precision))
	return math.Round(v*p) / p
}
