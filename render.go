package main

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

// ──────────────────────────── Rendering helpers ────────────────────────────

// padCenter centres a string within the given width.
func padCenter(s string, width int) string {
	w := lipgloss.Width(s)
	if w >= width {
		return s
	}
	left := (width - w) / 2
	return strings.Repeat(" ", left) + s + strings.Repeat(" ", width-w-left)
}

// gateDisplayName returns a short display name for an exported gate.
func gateDisplayName(g ExportedGate) string {
	switch {
	case g.Name == "measure":
		return "M"
	case g.Name == "reset":
		return "|0⟩"
	case strings.HasPrefix(g.Name, "noise_"):
		return "N"
	default:
		return strings.ToUpper(g.Name)
	}
}

// controlSymbol returns the wire symbol for a control register.
func controlSymbol(c Control) string {
	if c.Status {
		return "●"
	}
	return "○"
}

// renderProbBar draws p as a bar of the given width.
func renderProbBar(p float64, width int) string {
	filled := int(math.Round(max(0, min(p, 1)) * float64(width)))
	return probBarStyle.Render(strings.Repeat("█", filled)) + dimStyle.Render(strings.Repeat("░", width-filled))
}

// ──────────────────────────── Column rendering ────────────────────────────

// renderColumn draws one column as a wire per register, register 0 on top.
func renderColumn(gates []ExportedGate, n int) string {
	cells := make([]string, n)
	for i := range cells {
		cells[i] = dimStyle.Render("─")
	}
	for _, g := range gates {
		for _, c := range g.Controls {
			if c.Register >= 0 && c.Register < n {
				cells[c.Register] = gateStyle.Render(controlSymbol(c))
			}
		}
		style := gateStyle
		if g.Kind == KindKraus {
			style = krausStyle
		}
		for k, r := range g.Registers {
			if r < 0 || r >= n {
				continue
			}
			switch {
			case g.Kind == KindIdentity:
				cells[r] = dimStyle.Render("I")
			case g.Name == "swap":
				cells[r] = style.Render("×")
			case k == len(g.Registers)-1 && (g.Name == "cx" || g.Name == "ccx"):
				cells[r] = style.Render("⊕")
			case k == len(g.Registers)-1:
				cells[r] = style.Render(gateDisplayName(g))
			default:
				cells[r] = dimStyle.Render("│")
			}
		}
	}

	var sb strings.Builder
	for r, cell := range cells {
		fmt.Fprintf(&sb, "%s %s\n", qubitLabelStyle.Render(fmt.Sprintf("q%-*d", labelWidth, r)), cell)
	}
	return strings.TrimRight(sb.String(), "\n")
}

// ──────────────────────────── Result tables ────────────────────────────

// RenderTable renders the basis states whose probability exceeds threshold, followed by
// per-register probabilities.
func RenderTable(r *Result, precision int, threshold float64) string {
	ampHeader := "AMPLITUDE"
	if r.Mixed {
		ampHeader = "ρ(i,i)"
	}
	rows := [][]string{}
	for _, e := range r.BasisEntries(threshold) {
		rows = append(rows, []string{
			basisLabel(e.BasisState, r.Registers),
			formatComplex(e.Amplitude, precision),
			fmt.Sprintf("%.*f", precision, e.Prob),
			renderProbBar(e.Prob, probBarW),
			fmt.Sprintf("%.*f", min(precision, 4), e.Phase),
		})
	}
	states := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(dimStyle).
		Headers("BASIS", ampHeader, "PROB", "", "PHASE").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return headerCellStyle
			case col == 0:
				return qubitLabelStyle.Padding(0, 1)
			default:
				return cellStyle
			}
		})

	qrows := [][]string{}
	for q, p := range r.QubitProbabilities() {
		qrows = append(qrows, []string{
			fmt.Sprintf("q%d", q),
			fmt.Sprintf("%.*f", precision, p.Prob0),
			fmt.Sprintf("%.*f", precision, p.Prob1),
			renderProbBar(p.Prob1, probBarW/2),
		})
	}
	qubits := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(dimStyle).
		Headers("REG", "P(0)", "P(1)", "").
		Rows(qrows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerCellStyle
			}
			return cellStyle
		})

	kind := "pure"
	if r.Mixed {
		kind = "mixed"
	}
	summary := fmt.Sprintf("%s state · %d registers · %d columns · purity %.*f",
		kind, r.Registers, r.Columns, precision, r.Purity())
	parts := []string{titleStyle.Render(summary), states.Render(), qubits.Render()}
	for _, o := range r.Outcomes {
		parts = append(parts, dimStyle.Render(fmt.Sprintf("column %d observed branch %d (p=%.*f)", o.Column, o.Branch, precision, o.Probability)))
	}
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}
