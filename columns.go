package main

import (
	"fmt"
	"iter"
)

// Column is one time step of the circuit.
type Column struct {
	Index int
	Gates []ExportedGate
}

// HasKraus reports whether any gate in the column is a Kraus set.
func (c Column) HasKraus() bool {
	for _, g := range c.Gates {
		if g.Kind == KindKraus {
			return true
		}
	}
	return false
}

// shadowed reports whether reg lies under a multi-register gate already in the column.
func shadowed(gates []ExportedGate, reg int) bool {
	for _, g := range gates {
		if g.Span() > 1 && len(g.Registers) > 0 && g.Covers(reg) {
			return true
		}
	}
	return false
}

// dropShadowedIdentities removes single-register identities lying under an earlier
// multi-register gate of the same column.
func dropShadowedIdentities(gates []ExportedGate) []ExportedGate {
	out := make([]ExportedGate, 0, len(gates))
	for _, g := range gates {
		if g.IsSingleIdentity() && shadowed(out, g.Registers[0]) {
			continue
		}
		out = append(out, g)
	}
	return out
}

// readColumns groups a gate stream into columns whose spans sum to n. A column ends
// as soon as its spans reach n; the next record always opens the following column.
// While a column is still filling, identities on registers already covered by one of
// its multi-register gates stay in it without counting towards its span.
func readColumns(gates iter.Seq[ExportedGate], n int, strict bool) iter.Seq2[Column, error] {
	return func(yield func(Column, error) bool) {
		next, stop := iter.Pull(gates)
		defer stop()

		var (
			pending     ExportedGate
			havePending bool
		)
		pull := func() (ExportedGate, bool) {
			if havePending {
				havePending = false
				return pending, true
			}
			return next()
		}
		push := func(g ExportedGate) {
			pending, havePending = g, true
		}

		for index := 0; ; index++ {
			col := Column{Index: index}
			total := 0
			for total < n {
				g, ok := pull()
				if !ok {
					break
				}
				if g.IsSingleIdentity() && shadowed(col.Gates, g.Registers[0]) {
					col.Gates = append(col.Gates, g)
					continue
				}
				if total+g.Span() > n {
					if strict {
						yield(Column{}, fmt.Errorf("column %d: %s spans %d registers with %d left: %w",
							index, g, g.Span(), n-total, ErrLayout))
						return
					}
					if total == 0 {
						col.Gates = append(col.Gates, g)
						total = n
						break
					}
					push(g)
					break
				}
				col.Gates = append(col.Gates, g)
				total += g.Span()
			}
			if len(col.Gates) == 0 {
				return
			}
			if strict && total < n {
				yield(Column{}, fmt.Errorf("column %d: stream ended after %d of %d registers: %w",
					index, total, n, ErrLayout))
				return
			}

			if !yield(col, nil) {
				return
			}
		}
	}
}
