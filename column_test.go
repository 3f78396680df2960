package main

import (
	"errors"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func basis(n int, bits string) *Matrix {
	idx := 0
	for _, b := range bits {
		idx <<= 1
		if b == '1' {
			idx |= 1
		}
	}
	return BasisVector(1<<n, idx)
}

func mustOperator(gates []ExportedGate, n int) *Matrix {
	op, err := BuildColumnOperator(gates, n)
	So(err, ShouldBeNil)
	return op
}

func TestColumnOperator(t *testing.T) {
	Convey("Given a single register", t, func() {
		Convey("X maps |0⟩ to |1⟩", func() {
			op := mustOperator([]ExportedGate{NewUnitaryGate("x", GateX(), []int{0})}, 1)
			out, err := op.Mult(ZeroState(1))
			So(err, ShouldBeNil)
			So(out.ApproxEqual(basis(1, "1"), 1e-12), ShouldBeTrue)
		})

		Convey("An identity column is the identity", func() {
			op := mustOperator([]ExportedGate{NewIdentityGate(0)}, 1)
			So(op.ApproxEqual(Identity(2), 0), ShouldBeTrue)
		})
	})

	Convey("Given two registers", t, func() {
		Convey("Untouched registers are padded with identities", func() {
			op := mustOperator([]ExportedGate{
				NewIdentityGate(0),
				NewUnitaryGate("x", GateX(), []int{1}),
			}, 2)
			So(op.ApproxEqual(GateI().Kronecker(GateX()), 1e-12), ShouldBeTrue)
		})

		Convey("CX with control 0 is the CNOT matrix", func() {
			op := mustOperator([]ExportedGate{
				NewUnitaryGate("cx", GateX(), []int{1}, Control{Register: 0, Status: true}),
			}, 2)
			cnot := NewMatrixFromRows([][]Complex{
				{1, 0, 0, 0},
				{0, 1, 0, 0},
				{0, 0, 0, 1},
				{0, 0, 1, 0},
			})
			So(op.ApproxEqual(cnot, 1e-12), ShouldBeTrue)
		})

		Convey("An open control fires on |0⟩", func() {
			op := mustOperator([]ExportedGate{
				NewUnitaryGate("cx", GateX(), []int{1}, Control{Register: 0, Status: false}),
			}, 2)
			out, err := op.Mult(basis(2, "00"))
			So(err, ShouldBeNil)
			So(out.ApproxEqual(basis(2, "01"), 1e-12), ShouldBeTrue)

			out, err = op.Mult(basis(2, "10"))
			So(err, ShouldBeNil)
			So(out.ApproxEqual(basis(2, "10"), 1e-12), ShouldBeTrue)
		})
	})

	Convey("Given a Toffoli on three registers", t, func() {
		op := mustOperator([]ExportedGate{
			NewUnitaryGate("ccx", GateX(), []int{2},
				Control{Register: 0, Status: true}, Control{Register: 1, Status: true}),
		}, 3)

		Convey("It flips the target only when both controls are set", func() {
			for _, tc := range []struct{ in, want string }{
				{"000", "000"},
				{"100", "100"},
				{"010", "010"},
				{"110", "111"},
				{"111", "110"},
			} {
				out, err := op.Mult(basis(3, tc.in))
				So(err, ShouldBeNil)
				if !out.ApproxEqual(basis(3, tc.want), 1e-12) {
					t.Errorf("ccx|%s⟩ should be |%s⟩", tc.in, tc.want)
				}
			}
		})
	})

	Convey("Given a controlled gate below an untouched register", t, func() {
		op := mustOperator([]ExportedGate{
			NewIdentityGate(0),
			NewUnitaryGate("cz", GateZ(), []int{2}, Control{Register: 1, Status: true}),
		}, 3)

		Convey("The block is placed after the padding", func() {
			out, err := op.Mult(basis(3, "011"))
			So(err, ShouldBeNil)
			So(out.ApproxEqual(basis(3, "011").Scale(-1), 1e-12), ShouldBeTrue)
		})
	})
}

func TestColumnLayoutErrors(t *testing.T) {
	Convey("Given strict layout", t, func() {
		cases := map[string][]ExportedGate{
			"partial cover": {
				NewUnitaryGate("x", GateX(), []int{0}),
			},
			"overlap": {
				NewUnitaryGate("x", GateX(), []int{0}),
				NewUnitaryGate("y", GateY(), []int{0}),
			},
			"out of range": {
				NewIdentityGate(0),
				NewUnitaryGate("x", GateX(), []int{2}),
			},
			"control below body": {
				NewUnitaryGate("cx", GateX(), []int{0}, Control{Register: 1, Status: true}),
			},
			"matrix size": {
				NewUnitaryGate("x", GateSWAP(), []int{0}),
				NewIdentityGate(1),
			},
			"no registers": {
				{Name: "empty", Kind: KindUnitary, Matrices: []*Matrix{GateX()}},
			},
		}
		for name, gates := range cases {
			_, err := BuildColumnOperator(gates, 2)
			if !errors.Is(err, ErrLayout) {
				t.Errorf("%s: want ErrLayout, got %v", name, err)
			}
		}

		Convey("A Kraus gate has no unitary operator", func() {
			_, err := BuildColumnOperator([]ExportedGate{NewKrausGate("measure", MeasureZ(), 0)}, 1)
			So(errors.Is(err, ErrLayout), ShouldBeTrue)
		})

		Convey("A Kraus set that loses trace is rejected", func() {
			_, err := BuildColumnKraus([]ExportedGate{NewKrausGate("half", MeasureZ()[:1], 0)}, 1)
			So(errors.Is(err, ErrNotTracePreserving), ShouldBeTrue)
		})
	})

	Convey("Given relaxed layout", t, func() {
		l := columnLayout{Registers: 2, Tolerance: defaultTolerance}

		Convey("A partial column is padded to full size", func() {
			op, err := l.operator([]ExportedGate{NewUnitaryGate("x", GateX(), []int{0})})
			So(err, ShouldBeNil)
			So(op.ApproxEqual(GateX().Kronecker(GateI()), 1e-12), ShouldBeTrue)
		})

		Convey("Overlapping gates do not panic", func() {
			So(func() {
				_, _ = l.operator([]ExportedGate{
					NewUnitaryGate("x", GateX(), []int{1}),
					NewUnitaryGate("y", GateY(), []int{0}),
				})
			}, ShouldNotPanic)
		})
	})
}
