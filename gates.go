package main

import (
	"errors"
	"fmt"
	"math"
	"math/cmplx"
)

var (
	// ErrBadParameter is returned for channel parameters outside [0, 1].
	ErrBadParameter = errors.New("gate: parameter out of range")

	// ErrNotTracePreserving is returned when Σ K†K differs from the identity.
	ErrNotTracePreserving = errors.New("gate: kraus set is not trace preserving")
)

// Single-qubit and two-qubit gate matrices. Each call returns a fresh copy.

func GateI() *Matrix { return Identity(2) }

func GateX() *Matrix {
	return NewMatrixFromRows([][]Complex{{0, 1}, {1, 0}})
}

func GateY() *Matrix {
	return NewMatrixFromRows([][]Complex{{0, -1i}, {1i, 0}})
}

func GateZ() *Matrix {
	return NewMatrixFromRows([][]Complex{{1, 0}, {0, -1}})
}

func GateH() *Matrix {
	h := complex(1/math.Sqrt2, 0)
	return NewMatrixFromRows([][]Complex{{h, h}, {h, -h}})
}

func GateS() *Matrix {
	return NewMatrixFromRows([][]Complex{{1, 0}, {0, 1i}})
}

func GateT() *Matrix {
	return NewMatrixFromRows([][]Complex{{1, 0}, {0, cmplx.Exp(complex(0, math.Pi/4))}})
}

// GateSX is √X.
func GateSX() *Matrix {
	a, b := complex(0.5, 0.5), complex(0.5, -0.5)
	return NewMatrixFromRows([][]Complex{{a, b}, {b, a}})
}

// GateSY is √Y.
func GateSY() *Matrix {
	a := complex(0.5, 0.5)
	return NewMatrixFromRows([][]Complex{{a, -a}, {a, a}})
}

func GateSWAP() *Matrix {
	return NewMatrixFromRows([][]Complex{
		{1, 0, 0, 0},
		{0, 0, 1, 0},
		{0, 1, 0, 0},
		{0, 0, 0, 1},
	})
}

func GateRX(theta float64) *Matrix {
	c := complex(math.Cos(theta/2), 0)
	s := complex(0, -math.Sin(theta/2))
	return NewMatrixFromRows([][]Complex{{c, s}, {s, c}})
}

func GateRY(theta float64) *Matrix {
	c := complex(math.Cos(theta/2), 0)
	s := complex(math.Sin(theta/2), 0)
	return NewMatrixFromRows([][]Complex{{c, -s}, {s, c}})
}

func GateRZ(theta float64) *Matrix {
	return NewMatrixFromRows([][]Complex{
		{cmplx.Exp(complex(0, -theta/2)), 0},
		{0, cmplx.Exp(complex(0, theta/2))},
	})
}

// GatePhase is P(λ) = U1(λ).
func GatePhase(lambda float64) *Matrix {
	return NewMatrixFromRows([][]Complex{{1, 0}, {0, cmplx.Exp(complex(0, lambda))}})
}

func GateU2(phi, lambda float64) *Matrix {
	return GateU3(math.Pi/2, phi, lambda)
}

func GateU3(theta, phi, lambda float64) *Matrix {
	c := math.Cos(theta / 2)
	s := math.Sin(theta / 2)
	return NewMatrixFromRows([][]Complex{
		{complex(c, 0), -cmplx.Exp(complex(0, lambda)) * complex(s, 0)},
		{cmplx.Exp(complex(0, phi)) * complex(s, 0), cmplx.Exp(complex(0, phi+lambda)) * complex(c, 0)},
	})
}

// Dagger returns the adjoint of a gate.
func Dagger(m *Matrix) *Matrix { return m.ConjugateTranspose() }

// ──────────────────────────── Kraus channels ────────────────────────────

// MeasureZ is the computational-basis measurement {|0⟩⟨0|, |1⟩⟨1|}.
func MeasureZ() []*Matrix {
	return []*Matrix{
		NewMatrixFromRows([][]Complex{{1, 0}, {0, 0}}),
		NewMatrixFromRows([][]Complex{{0, 0}, {0, 1}}),
	}
}

// ResetChannel maps any single-register state to |0⟩.
func ResetChannel() []*Matrix {
	return []*Matrix{
		NewMatrixFromRows([][]Complex{{1, 0}, {0, 0}}),
		NewMatrixFromRows([][]Complex{{0, 1}, {0, 0}}),
	}
}

// Depolarizing replaces the state with the maximally mixed one with probability p.
func Depolarizing(p float64) ([]*Matrix, error) {
	if err := checkProbability("depolarizing", p); err != nil {
		return nil, err
	}
	k0 := complex(math.Sqrt(1-3*p/4), 0)
	k := complex(math.Sqrt(p/4), 0)
	return []*Matrix{
		GateI().Scale(k0),
		GateX().Scale(k),
		GateY().Scale(k),
		GateZ().Scale(k),
	}, nil
}

func AmplitudeDamping(gamma float64) ([]*Matrix, error) {
	if err := checkProbability("amplitude_damping", gamma); err != nil {
		return nil, err
	}
	return []*Matrix{
		NewMatrixFromRows([][]Complex{{1, 0}, {0, complex(math.Sqrt(1-gamma), 0)}}),
		NewMatrixFromRows([][]Complex{{0, complex(math.Sqrt(gamma), 0)}, {0, 0}}),
	}, nil
}

func PhaseDamping(lambda float64) ([]*Matrix, error) {
	if err := checkProbability("phase_damping", lambda); err != nil {
		return nil, err
	}
	return []*Matrix{
		NewMatrixFromRows([][]Complex{{1, 0}, {0, complex(math.Sqrt(1-lambda), 0)}}),
		NewMatrixFromRows([][]Complex{{0, 0}, {0, complex(math.Sqrt(lambda), 0)}}),
	}, nil
}

func BitFlip(p float64) ([]*Matrix, error) {
	if err := checkProbability("bit_flip", p); err != nil {
		return nil, err
	}
	return []*Matrix{
		GateI().Scale(complex(math.Sqrt(1-p), 0)),
		GateX().Scale(complex(math.Sqrt(p), 0)),
	}, nil
}

func PhaseFlip(p float64) ([]*Matrix, error) {
	if err := checkProbability("phase_flip", p); err != nil {
		return nil, err
	}
	return []*Matrix{
		GateI().Scale(complex(math.Sqrt(1-p), 0)),
		GateZ().Scale(complex(math.Sqrt(p), 0)),
	}, nil
}

func checkProbability(kind string, p float64) error {
	if math.IsNaN(p) || p < 0 || p > 1 {
		return fmt.Errorf("%s(%g): %w", kind, p, ErrBadParameter)
	}
	return nil
}

// IsTracePreserving reports whether Σ K†K equals the identity within tol.
func IsTracePreserving(kraus []*Matrix, tol float64) bool {
	if len(kraus) == 0 {
		return false
	}
	var sum *Matrix
	for _, k := range kraus {
		kk, err := k.ConjugateTranspose().Mult(k)
		if err != nil {
			return false
		}
		if sum == nil {
			sum = kk
			continue
		}
		if sum, err = sum.Add(kk); err != nil {
			return false
		}
	}
	return sum.ApproxEqual(Identity(sum.Rows()), tol)
}
