package main

import (
	"errors"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestKronecker(t *testing.T) {
	Convey("Given three small matrices", t, func() {
		a := NewMatrixFromRows([][]Complex{{1, 2}, {3, 4}})
		b := NewMatrixFromRows([][]Complex{{0, 1i}, {-1i, 2}})
		c := NewMatrixFromRows([][]Complex{{1, 0, 2}})

		Convey("The product is associative", func() {
			left := a.Kronecker(b).Kronecker(c)
			right := a.Kronecker(b.Kronecker(c))
			So(left.Rows(), ShouldEqual, 4)
			So(left.Cols(), ShouldEqual, 12)
			So(left.ApproxEqual(right, 1e-12), ShouldBeTrue)
		})

		Convey("The product distributes over addition", func() {
			sum, err := a.Add(b)
			So(err, ShouldBeNil)
			ac, bc := a.Kronecker(c), b.Kronecker(c)
			want, err := ac.Add(bc)
			So(err, ShouldBeNil)
			So(sum.Kronecker(c).ApproxEqual(want, 1e-12), ShouldBeTrue)
		})

		Convey("The left operand is the most significant factor", func() {
			k := a.Kronecker(b)
			So(k.At(0, 1), ShouldEqual, 1i)
			So(k.At(2, 1), ShouldEqual, Complex(3i))
			So(k.At(3, 3), ShouldEqual, Complex(8))
		})
	})
}

func TestMult(t *testing.T) {
	Convey("Given a 2x3 and a 3x1 matrix", t, func() {
		m := NewMatrixFromRows([][]Complex{{1, 2, 3}, {4, 5, 6}})
		v := NewVector(1, 0, -1)

		Convey("Their product is 2x1", func() {
			out, err := m.Mult(v)
			So(err, ShouldBeNil)
			So(out.ApproxEqual(NewVector(-2, -2), 1e-12), ShouldBeTrue)
		})

		Convey("Multiplying in the wrong order fails", func() {
			_, err := v.Mult(m)
			So(errors.Is(err, ErrDimensionMismatch), ShouldBeTrue)
		})

		Convey("Adding different shapes fails", func() {
			_, err := m.Add(v)
			So(errors.Is(err, ErrDimensionMismatch), ShouldBeTrue)
		})
	})
}

func TestSetSlice(t *testing.T) {
	Convey("Given a 4x4 identity", t, func() {
		id := Identity(4)

		Convey("Writing X into the leading block leaves the rest intact", func() {
			out, err := id.SetSlice(0, 1, 0, 1, GateX())
			So(err, ShouldBeNil)
			So(out.At(0, 1), ShouldEqual, Complex(1))
			So(out.At(0, 0), ShouldEqual, Complex(0))
			So(out.At(3, 3), ShouldEqual, Complex(1))
			So(id.At(0, 0), ShouldEqual, Complex(1))
		})

		Convey("A region past the edge is out of range", func() {
			_, err := id.SetSlice(3, 4, 0, 1, GateX())
			So(errors.Is(err, ErrOutOfRange), ShouldBeTrue)
		})

		Convey("A block of the wrong size is a dimension mismatch", func() {
			_, err := id.SetSlice(0, 2, 0, 2, GateX())
			So(errors.Is(err, ErrDimensionMismatch), ShouldBeTrue)
		})
	})
}

func TestTraceAndAdjoint(t *testing.T) {
	Convey("Given Y", t, func() {
		y := GateY()

		Convey("Its trace is zero", func() {
			tr, err := y.Trace()
			So(err, ShouldBeNil)
			So(tr, ShouldEqual, Complex(0))
		})

		Convey("It is Hermitian", func() {
			So(y.ConjugateTranspose().ApproxEqual(y, 1e-12), ShouldBeTrue)
			So(y.Transpose().ApproxEqual(y, 1e-12), ShouldBeFalse)
		})

		Convey("A vector has no trace", func() {
			_, err := NewVector(1, 0).Trace()
			So(errors.Is(err, ErrNotSquare), ShouldBeTrue)
		})
	})

	Convey("Given |+⟩", t, func() {
		plus, err := GateH().Mult(ZeroState(1))
		So(err, ShouldBeNil)

		Convey("Its projector has unit trace", func() {
			tr, err := OuterProduct(plus, plus).Trace()
			So(err, ShouldBeNil)
			So(real(tr), ShouldAlmostEqual, 1.0, 1e-12)
		})
	})
}

func TestFormatComplex(t *testing.T) {
	Convey("Complex values render as a+bi", t, func() {
		So(formatComplex(complex(0.5, -0.25), 3), ShouldEqual, "0.500-0.250i")
		So(formatComplex(complex(1, 0), 2), ShouldEqual, "1.00+0.00i")
	})
}
