package main

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// paramNumber and paramFactor are the building blocks of paramPattern.
const (
	paramNumber = `(?:\d+\.?\d*|\.\d+)(?:[eE][+\-]?\d+)?`
	paramFactor = `(?:` + paramNumber + `\s*\*?\s*pi|pi|` + paramNumber + `)`
)

// paramPattern matches a single parameter value: a signed product/quotient of numbers and pi.
// Examples: "1.5707", "pi", "pi/2", "3*pi/4", "pi*3/4", "-2pi/3", "3.14e-2"
const paramPattern = `-?` + paramFactor + `(?:\s*[*/]\s*` + paramFactor + `)*`

// parseParamExpr evaluates a parameter expression.
// Returns the value and true on success, or 0 and false on failure.
//
// Supported formats:
//   - Plain numbers: "1.5707", "3.14", "-0.5", "1e-3"
//   - Pi constant: "pi"
//   - Products and quotients: "pi/2", "3*pi/4", "pi*3/4", "2pi", "pi/4/2"
//   - A leading minus: "-pi", "-pi/2"
func parseParamExpr(s string) (float64, bool) {
	s = strings.ToLower(strings.Join(strings.Fields(s), ""))
	if s == "" {
		return 0, false
	}
	if val, err := strconv.ParseFloat(s, 64); err == nil {
		return val, !math.IsInf(val, 0) && !math.IsNaN(val)
	}

	sign := 1.0
	if rest, ok := strings.CutPrefix(s, "-"); ok {
		sign, s = -1, rest
	}

	val, op := 1.0, byte('*')
	for {
		i := strings.IndexAny(s, "*/")
		tok := s
		if i >= 0 {
			tok = s[:i]
		}
		f, ok := paramFactorValue(tok)
		if !ok {
			return 0, false
		}
		if op == '/' {
			if f == 0 {
				return 0, false
			}
			val /= f
		} else {
			val *= f
		}
		if i < 0 {
			break
		}
		op, s = s[i], s[i+1:]
	}
	if math.IsInf(val, 0) || math.IsNaN(val) {
		return 0, false
	}
	return sign * val, true
}

func paramFactorValue(tok string) (float64, bool) {
	if tok == "pi" {
		return math.Pi, true
	}
	// "2pi" is 2*pi
	if coeff, ok := strings.CutSuffix(tok, "pi"); ok {
		v, err := strconv.ParseFloat(coeff, 64)
		return v * math.Pi, err == nil
	}
	v, err := strconv.ParseFloat(tok, 64)
	if err != nil || math.IsInf(v, 0) || math.IsNaN(v) {
		return 0, false
	}
	return v, true
}

// formatParam formats a parameter, using pi notation for multiples of pi/1..pi/8.
func formatParam(val float64) string {
	for _, den := range []int{1, 2, 3, 4, 6, 8} {
		k := val * float64(den) / math.Pi
		num := math.Round(k)
		if num == 0 || math.Abs(k-num) > 1e-9 {
			continue
		}
		sign := ""
		if num < 0 {
			sign, num = "-", -num
		}
		s := sign + "pi"
		if num != 1 {
			s = fmt.Sprintf("%s%d*pi", sign, int(num))
		}
		if den != 1 {
			s += fmt.Sprintf("/%d", den)
		}
		return s
	}
	return fmt.Sprintf("%g", val)
}

// parseParams parses a comma-separated parameter list.
// Returns false if any part fails to parse.
func parseParams(input string) ([]float64, bool) {
	var params []float64
	for part := range strings.SplitSeq(input, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		val, ok := parseParamExpr(part)
		if !ok {
			return nil, false
		}
		params = append(params, val)
	}
	return params, true
}
