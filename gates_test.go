package main

import (
	"errors"
	"math"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestUnitaries(t *testing.T) {
	Convey("Every fixed and rotation gate is unitary", t, func() {
		gates := map[string]*Matrix{
			"h":    GateH(),
			"x":    GateX(),
			"y":    GateY(),
			"z":    GateZ(),
			"s":    GateS(),
			"t":    GateT(),
			"sx":   GateSX(),
			"sy":   GateSY(),
			"swap": GateSWAP(),
			"rx":   GateRX(0.3),
			"ry":   GateRY(-1.1),
			"rz":   GateRZ(math.Pi / 3),
			"p":    GatePhase(0.7),
			"u2":   GateU2(0.1, 0.2),
			"u3":   GateU3(0.4, 0.5, 0.6),
		}
		for name, g := range gates {
			prod, err := Dagger(g).Mult(g)
			So(err, ShouldBeNil)
			if !prod.ApproxEqual(Identity(g.Rows()), 1e-12) {
				t.Errorf("%s is not unitary:\n%s", name, prod)
			}
		}
	})

	Convey("Square roots square to their gate", t, func() {
		sx, err := GateSX().Mult(GateSX())
		So(err, ShouldBeNil)
		So(sx.ApproxEqual(GateX(), 1e-12), ShouldBeTrue)

		sy, err := GateSY().Mult(GateSY())
		So(err, ShouldBeNil)
		So(sy.ApproxEqual(GateY(), 1e-12), ShouldBeTrue)
	})
}

func TestChannels(t *testing.T) {
	Convey("Given a noise strength of 0.3", t, func() {
		builders := map[string]func(float64) ([]*Matrix, error){
			"depolarizing":      Depolarizing,
			"amplitude_damping": AmplitudeDamping,
			"phase_damping":     PhaseDamping,
			"bit_flip":          BitFlip,
			"phase_flip":        PhaseFlip,
		}

		Convey("Every channel is trace preserving", func() {
			for name, build := range builders {
				kraus, err := build(0.3)
				So(err, ShouldBeNil)
				if !IsTracePreserving(kraus, 1e-12) {
					t.Errorf("%s is not trace preserving", name)
				}
			}
		})

		Convey("Strengths outside [0, 1] are rejected", func() {
			for _, build := range builders {
				_, err := build(1.5)
				So(errors.Is(err, ErrBadParameter), ShouldBeTrue)
				_, err = build(math.NaN())
				So(errors.Is(err, ErrBadParameter), ShouldBeTrue)
			}
		})
	})

	Convey("Measurement and reset are trace preserving", t, func() {
		So(IsTracePreserving(MeasureZ(), 1e-12), ShouldBeTrue)
		So(IsTracePreserving(ResetChannel(), 1e-12), ShouldBeTrue)
	})

	Convey("A lone projector is not trace preserving", t, func() {
		So(IsTracePreserving(MeasureZ()[:1], 1e-12), ShouldBeFalse)
		So(IsTracePreserving(nil, 1e-12), ShouldBeFalse)
	})
}
