package main

import (
	"context"
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/davecgh/go-spew/spew"
	. "github.com/smartystreets/goconvey/convey"
)

func bellProject() *SliceProject {
	return &SliceProject{
		Registers: 2,
		Gates: []ExportedGate{
			NewUnitaryGate("h", GateH(), []int{0}),
			NewIdentityGate(1),
			NewUnitaryGate("cx", GateX(), []int{1}, Control{Register: 0, Status: true}),
		},
	}
}

func noisyProject() *SliceProject {
	depol, _ := Depolarizing(0.2)
	damp, _ := AmplitudeDamping(0.3)
	return &SliceProject{
		Registers: 3,
		Gates: []ExportedGate{
			NewUnitaryGate("h", GateH(), []int{0}),
			NewUnitaryGate("rx(0.7)", GateRX(0.7), []int{1}),
			NewIdentityGate(2),
			NewUnitaryGate("cx", GateX(), []int{1}, Control{Register: 0, Status: true}),
			NewKrausGate("noise_depol(0.2)", depol, 2),
			NewKrausGate("noise_amp(0.3)", damp, 0),
			NewUnitaryGate("swap", GateSWAP(), []int{1, 2}),
			NewIdentityGate(0),
			NewKrausGate("measure", MeasureZ(), 1),
			NewUnitaryGate("t", GateT(), []int{2}),
		},
	}
}

func TestSimulatorPure(t *testing.T) {
	Convey("Given a Bell circuit", t, func() {
		res, err := NewSimulator().Run(context.Background(), bellProject())
		So(err, ShouldBeNil)

		Convey("It stays on a state vector", func() {
			So(res.Mixed, ShouldBeFalse)
			So(res.Columns, ShouldEqual, 2)
			So(res.State.Cols(), ShouldEqual, 1)
		})

		Convey("Only |00⟩ and |11⟩ are populated", func() {
			h := 1 / math.Sqrt2
			want := NewVector(complex(h, 0), 0, 0, complex(h, 0))
			if !res.State.ApproxEqual(want, 1e-12) {
				t.Errorf("unexpected state:\n%s", spew.Sdump(res.State))
			}
			probs := res.QubitProbabilities()
			So(probs[0].Prob1, ShouldAlmostEqual, 0.5, 1e-12)
			So(probs[1].Prob1, ShouldAlmostEqual, 0.5, 1e-12)
			So(res.Purity(), ShouldAlmostEqual, 1.0, 1e-12)
		})

		Convey("The listing names both basis states", func() {
			out := res.String()
			So(out, ShouldStartWith, "pure state, 2 registers, 2 columns\n")
			So(out, ShouldContainSubstring, "|00⟩ 0.707107+0.000000i")
			So(out, ShouldContainSubstring, "|11⟩ 0.707107+0.000000i")
		})
	})

	Convey("Given a circuit of identities", t, func() {
		p := &SliceProject{Registers: 3, Gates: []ExportedGate{
			NewIdentityGate(0), NewIdentityGate(1), NewIdentityGate(2),
			NewIdentityGate(0), NewIdentityGate(1), NewIdentityGate(2),
		}}

		Convey("The state is still |000⟩", func() {
			res, err := NewSimulator().Run(context.Background(), p)
			So(err, ShouldBeNil)
			So(res.Columns, ShouldEqual, 2)
			So(res.State.ApproxEqual(ZeroState(3), 0), ShouldBeTrue)
		})
	})

	Convey("Given an empty circuit", t, func() {
		res, err := NewSimulator().Run(context.Background(), &SliceProject{Registers: 2})
		So(err, ShouldBeNil)
		So(res.Columns, ShouldEqual, 0)
		So(res.State.ApproxEqual(ZeroState(2), 0), ShouldBeTrue)
	})
}

func TestSimulatorMixed(t *testing.T) {
	Convey("Given a measurement after a Hadamard", t, func() {
		p := &SliceProject{Registers: 1, Gates: []ExportedGate{
			NewUnitaryGate("h", GateH(), []int{0}),
			NewKrausGate("measure", MeasureZ(), 0),
		}}
		var snapshots []Snapshot
		res, err := NewSimulator(WithObserver(func(s Snapshot) {
			snapshots = append(snapshots, s)
		})).Run(context.Background(), p)
		So(err, ShouldBeNil)

		Convey("The whole run switches to density matrices", func() {
			So(res.Mixed, ShouldBeTrue)
			So(res.State.ApproxEqual(Identity(2).Scale(0.5), 1e-12), ShouldBeTrue)
			So(res.Purity(), ShouldAlmostEqual, 0.5, 1e-12)
		})

		Convey("Every column is reported once, from the mixed engine", func() {
			So(len(snapshots), ShouldEqual, 2)
			for i, s := range snapshots {
				So(s.Column, ShouldEqual, i)
				So(s.Mixed, ShouldBeTrue)
			}
		})
	})

	Convey("Given a noisy three-register circuit", t, func() {
		Convey("Concurrent column building gives the same state", func() {
			serial, err := NewSimulator().Run(context.Background(), noisyProject())
			So(err, ShouldBeNil)
			parallel, err := NewSimulator(WithWorkers(4)).Run(context.Background(), noisyProject())
			So(err, ShouldBeNil)
			So(serial.Columns, ShouldEqual, 4)
			So(parallel.State.ApproxEqual(serial.State, 1e-12), ShouldBeTrue)

			tr, err := serial.State.Trace()
			So(err, ShouldBeNil)
			So(real(tr), ShouldAlmostEqual, 1.0, 1e-9)
		})

		Convey("Observing records one outcome per channel column", func() {
			res, err := NewSimulator(WithObserve(11)).Run(context.Background(), noisyProject())
			So(err, ShouldBeNil)
			So(len(res.Outcomes), ShouldEqual, 3)
			for i, o := range res.Outcomes {
				So(o.Column, ShouldEqual, i+1)
				So(o.Probability, ShouldBeGreaterThan, 0)
			}
			So(res.Purity(), ShouldBeLessThanOrEqualTo, 1+1e-9)

			again, err := NewSimulator(WithObserve(11)).Run(context.Background(), noisyProject())
			So(err, ShouldBeNil)
			So(again.Outcomes, ShouldResemble, res.Outcomes)
			So(again.State.ApproxEqual(res.State, 1e-12), ShouldBeTrue)
		})
	})
}

func TestSimulatorParallelPure(t *testing.T) {
	Convey("Given a deeper unitary circuit", t, func() {
		var gates []ExportedGate
		for i := range 6 {
			theta := 0.3 * float64(i+1)
			gates = append(gates,
				NewUnitaryGate("ry", GateRY(theta), []int{0}),
				NewUnitaryGate("cx", GateX(), []int{2}, Control{Register: 1, Status: i%2 == 0}),
			)
		}
		p := &SliceProject{Registers: 3, Gates: gates}

		Convey("Any worker count produces the same vector", func() {
			serial, err := NewSimulator().Run(context.Background(), p)
			So(err, ShouldBeNil)
			for _, w := range []int{2, 3, 8} {
				res, err := NewSimulator(WithWorkers(w)).Run(context.Background(), p)
				So(err, ShouldBeNil)
				So(res.State.ApproxEqual(serial.State, 1e-12), ShouldBeTrue)
			}
		})
	})
}

func TestSimulatorErrors(t *testing.T) {
	Convey("Given a cancelled context", t, func() {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		Convey("Both engines stop", func() {
			_, err := NewSimulator().Run(ctx, bellProject())
			So(errors.Is(err, context.Canceled), ShouldBeTrue)
			_, err = NewSimulator().Run(ctx, noisyProject())
			So(errors.Is(err, context.Canceled), ShouldBeTrue)
			_, err = NewSimulator(WithWorkers(4)).Run(ctx, noisyProject())
			So(errors.Is(err, context.Canceled), ShouldBeTrue)
		})
	})

	Convey("Given a project that cannot export", t, func() {
		p := &SliceProject{Registers: 1, Err: errors.New("unsaved changes")}

		Convey("Run wraps the cause in an export error", func() {
			_, err := NewSimulator().Run(context.Background(), p)
			var exportErr *ExportError
			So(errors.As(err, &exportErr), ShouldBeTrue)
			So(errors.Is(err, ErrExport), ShouldBeTrue)
			So(err.Error(), ShouldContainSubstring, "unsaved changes")
		})

		Convey("Execute returns nothing", func() {
			So(Execute(p), ShouldEqual, "")
		})
	})

	Convey("Given a badly laid out column", t, func() {
		p := &SliceProject{Registers: 2, Gates: []ExportedGate{
			NewUnitaryGate("cx", GateX(), []int{0}, Control{Register: 1, Status: true}),
		}}

		Convey("Strict mode rejects it", func() {
			_, err := NewSimulator().Run(context.Background(), p)
			So(errors.Is(err, ErrLayout), ShouldBeTrue)
			So(Execute(p), ShouldEqual, "")
		})

		Convey("Relaxed mode runs without panicking", func() {
			So(func() {
				_, _ = NewSimulator(WithStrict(false)).Run(context.Background(), p)
			}, ShouldNotPanic)
		})
	})

	Convey("A negative register count is rejected", t, func() {
		_, err := NewSimulator().Run(context.Background(), &SliceProject{Registers: -1})
		So(errors.Is(err, ErrLayout), ShouldBeTrue)
	})

	Convey("Execute lists a good project", t, func() {
		out := Execute(bellProject())
		So(strings.Count(out, "\n"), ShouldEqual, 5)
	})
}
