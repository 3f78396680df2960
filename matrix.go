package main

import (
	"errors"
	"fmt"
	"math/cmplx"
	"strings"
)

// Complex is the scalar type of every operator and state.
type Complex = complex128

var (
	// ErrDimensionMismatch is returned when operand shapes are incompatible.
	ErrDimensionMismatch = errors.New("matrix: dimension mismatch")

	// ErrOutOfRange is returned when a slice region falls outside the matrix.
	ErrOutOfRange = errors.New("matrix: index out of range")

	// ErrNotSquare is returned when a square matrix was required.
	ErrNotSquare = errors.New("matrix: matrix is not square")
)

// Matrix is a dense row-major matrix of complex entries.
// Square matrices of side 2^k are k-register operators, 2^k×1 matrices are state vectors.
type Matrix struct {
	rows, cols int
	data       []Complex
}

// NewMatrix returns a rows×cols zero matrix.
func NewMatrix(rows, cols int) *Matrix {
	if rows <= 0 || cols <= 0 {
		panic(fmt.Sprintf("matrix: invalid shape %dx%d", rows, cols))
	}
	return &Matrix{rows: rows, cols: cols, data: make([]Complex, rows*cols)}
}

// NewMatrixFromRows builds a matrix from a rectangular slice of rows.
func NewMatrixFromRows(rows [][]Complex) *Matrix {
	if len(rows) == 0 {
		panic("matrix: no rows")
	}
	m := NewMatrix(len(rows), len(rows[0]))
	for r, row := range rows {
		if len(row) != m.cols {
			panic(fmt.Sprintf("matrix: ragged row %d", r))
		}
		copy(m.data[r*m.cols:(r+1)*m.cols], row)
	}
	return m
}

// NewVector builds a column vector from the given amplitudes.
func NewVector(amps ...Complex) *Matrix {
	m := NewMatrix(len(amps), 1)
	copy(m.data, amps)
	return m
}

// Identity returns the size×size identity. Operator blocks need a power-of-two size;
// that is the caller's responsibility.
func Identity(size int) *Matrix {
	m := NewMatrix(size, size)
	for i := 0; i < size; i++ {
		m.data[i*size+i] = 1
	}
	return m
}

// BasisVector returns the dim×1 vector with a single 1 at index.
func BasisVector(dim, index int) *Matrix {
	v := NewMatrix(dim, 1)
	v.data[index] = 1
	return v
}

// ZeroState returns |0…0⟩ for n registers.
func ZeroState(n int) *Matrix {
	return BasisVector(1<<n, 0)
}

// OuterProduct returns u·v†.
func OuterProduct(u, v *Matrix) *Matrix {
	out := NewMatrix(len(u.data), len(v.data))
	for i, a := range u.data {
		for j, b := range v.data {
			out.data[i*out.cols+j] = a * cmplx.Conj(b)
		}
	}
	return out
}

// Rows returns the row count.
func (m *Matrix) Rows() int { return m.rows }

// Cols returns the column count.
func (m *Matrix) Cols() int { return m.cols }

// IsSquare reports whether rows == cols.
func (m *Matrix) IsSquare() bool { return m.rows == m.cols }

// At returns the entry at (r, c).
func (m *Matrix) At(r, c int) Complex {
	m.check(r, c)
	return m.data[r*m.cols+c]
}

// Set writes v at (r, c).
func (m *Matrix) Set(r, c int, v Complex) {
	m.check(r, c)
	m.data[r*m.cols+c] = v
}

func (m *Matrix) check(r, c int) {
	if r < 0 || r >= m.rows || c < 0 || c >= m.cols {
		panic(fmt.Sprintf("matrix: (%d,%d) outside %dx%d", r, c, m.rows, m.cols))
	}
}

// Clone returns a deep copy.
func (m *Matrix) Clone() *Matrix {
	data := make([]Complex, len(m.data))
	copy(data, m.data)
	return &Matrix{rows: m.rows, cols: m.cols, data: data}
}

// Kronecker returns m⊗b. Entry (ra*rows(b)+rb, ca*cols(b)+cb) is m[ra,ca]*b[rb,cb],
// so the left operand is the most significant factor.
func (m *Matrix) Kronecker(b *Matrix) *Matrix {
	out := NewMatrix(m.rows*b.rows, m.cols*b.cols)
	for ra := 0; ra < m.rows; ra++ {
		for ca := 0; ca < m.cols; ca++ {
			a := m.data[ra*m.cols+ca]
			if a == 0 {
				continue
			}
			for rb := 0; rb < b.rows; rb++ {
				row := (ra*b.rows + rb) * out.cols
				for cb := 0; cb < b.cols; cb++ {
					out.data[row+ca*b.cols+cb] = a * b.data[rb*b.cols+cb]
				}
			}
		}
	}
	return out
}

// Mult returns m·b.
func (m *Matrix) Mult(b *Matrix) (*Matrix, error) {
	if m.cols != b.rows {
		return nil, fmt.Errorf("mult %dx%d by %dx%d: %w", m.rows, m.cols, b.rows, b.cols, ErrDimensionMismatch)
	}
	out := NewMatrix(m.rows, b.cols)
	for i := 0; i < m.rows; i++ {
		for k := 0; k < m.cols; k++ {
			a := m.data[i*m.cols+k]
			if a == 0 {
				continue
			}
			row := b.data[k*b.cols : (k+1)*b.cols]
			for j, v := range row {
				out.data[i*out.cols+j] += a * v
			}
		}
	}
	return out, nil
}

// Add returns m+b.
func (m *Matrix) Add(b *Matrix) (*Matrix, error) {
	if m.rows != b.rows || m.cols != b.cols {
		return nil, fmt.Errorf("add %dx%d to %dx%d: %w", m.rows, m.cols, b.rows, b.cols, ErrDimensionMismatch)
	}
	out := m.Clone()
	for i, v := range b.data {
		out.data[i] += v
	}
	return out, nil
}

// Scale returns s·m.
func (m *Matrix) Scale(s Complex) *Matrix {
	out := m.Clone()
	for i := range out.data {
		out.data[i] *= s
	}
	return out
}

// Transpose returns mᵀ.
func (m *Matrix) Transpose() *Matrix {
	out := NewMatrix(m.cols, m.rows)
	for r := 0; r < m.rows; r++ {
		for c := 0; c < m.cols; c++ {
			out.data[c*out.cols+r] = m.data[r*m.cols+c]
		}
	}
	return out
}

// ConjugateTranspose returns m†.
func (m *Matrix) ConjugateTranspose() *Matrix {
	out := NewMatrix(m.cols, m.rows)
	for r := 0; r < m.rows; r++ {
		for c := 0; c < m.cols; c++ {
			out.data[c*out.cols+r] = cmplx.Conj(m.data[r*m.cols+c])
		}
	}
	return out
}

// SetSlice returns a copy of m with the inclusive region [r0,r1]×[c0,c1] replaced by block.
func (m *Matrix) SetSlice(r0, r1, c0, c1 int, block *Matrix) (*Matrix, error) {
	if r0 < 0 || c0 < 0 || r1 >= m.rows || c1 >= m.cols || r0 > r1 || c0 > c1 {
		return nil, fmt.Errorf("slice [%d:%d,%d:%d] of %dx%d: %w", r0, r1, c0, c1, m.rows, m.cols, ErrOutOfRange)
	}
	if r1-r0+1 != block.rows || c1-c0+1 != block.cols {
		return nil, fmt.Errorf("slice [%d:%d,%d:%d] from %dx%d block: %w", r0, r1, c0, c1, block.rows, block.cols, ErrDimensionMismatch)
	}
	out := m.Clone()
	for r := 0; r < block.rows; r++ {
		copy(out.data[(r0+r)*out.cols+c0:(r0+r)*out.cols+c0+block.cols], block.data[r*block.cols:(r+1)*block.cols])
	}
	return out, nil
}

// Trace returns the sum of the diagonal.
func (m *Matrix) Trace() (Complex, error) {
	if !m.IsSquare() {
		return 0, fmt.Errorf("trace of %dx%d: %w", m.rows, m.cols, ErrNotSquare)
	}
	var t Complex
	for i := 0; i < m.rows; i++ {
		t += m.data[i*m.cols+i]
	}
	return t, nil
}

// ApproxEqual reports whether b has the same shape and every entry is within tol.
func (m *Matrix) ApproxEqual(b *Matrix, tol float64) bool {
	if m.rows != b.rows || m.cols != b.cols {
		return false
	}
	for i, v := range m.data {
		if cmplx.Abs(v-b.data[i]) > tol {
			return false
		}
	}
	return true
}

// String lists the matrix one row per line.
func (m *Matrix) String() string {
	var sb strings.Builder
	for r := 0; r < m.rows; r++ {
		sb.WriteString("[")
		for c := 0; c < m.cols; c++ {
			if c > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString(formatComplex(m.data[r*m.cols+c], 6))
		}
		sb.WriteString("]\n")
	}
	return sb.String()
}

// formatComplex renders v as "a+bi" with the given number of decimals.
func formatComplex(v Complex, precision int) string {
	re, im := real(v), imag(v)
	// avoid "-0.000000"
	if re == 0 {
		re = 0
	}
	if im == 0 {
		im = 0
	}
	sign := "+"
	if im < 0 {
		sign = "-"
		im = -im
	}
	return fmt.Sprintf("%.*f%s%.*fi", precision, re, sign, precision, im)
}
