package cli

import (
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
)

func TestRenderTitle(t *testing.T) {
	out := RenderTitle("CATÁLOGO DE TRATAMIENTOS")
	if !strings.Contains(out, "CATÁLOGO DE TRATAMIENTOS") {
		t.Errorf("title text missing from output:\n%s", out)
	}
	if !strings.Contains(out, "╭") || !strings.Contains(out, "╰") {
		t.Errorf("title box border missing from output:\n%s", out)
	}
}

func TestRenderTable(t *testing.T) {
	out := RenderTable(Table{
		Title:   "Historial",
		Headers: []string{"Nº", "Paciente", "Total"},
		Rows: [][]string{
			{"P-2026-001", "Ana Pérez", "90,00 €"},
			{"---"},
			{"P-2026-002", "José García", "45,00 €"},
		},
	})

	for _, want := range []string{"Historial", "Paciente", "Ana Pérez", "José García", "90,00 €", "├"} {
		if !strings.Contains(out, want) {
			t.Errorf("table output missing %q:\n%s", want, out)
		}
	}
}

func TestRenderTable_Empty(t *testing.T) {
	if out := RenderTable(Table{}); out != "" {
		t.Errorf("empty table rendered %q, want empty string", out)
	}
}

func TestPadding_CountsDisplayWidth(t *testing.T) {
	// "Cirugía" is 7 cells but 8 bytes.
	got := padRight("Cirugía", 10)
	if w := lipgloss.Width(got); w != 10 {
		t.Errorf("padRight width = %d, want 10", w)
	}
	got = padLeft("Cirugía", 10)
	if w := lipgloss.Width(got); w != 10 {
		t.Errorf("padLeft width = %d, want 10", w)
	}
}

func TestLineRenderers(t *testing.T) {
	cases := []struct {
		name string
		fn   func(string) string
	}{
		{"warning", RenderWarning},
		{"error", RenderError},
		{"muted", RenderMuted},
		{"amount", RenderAmount},
	}
	for _, c := range cases {
		if out := c.fn("mensaje"); !strings.Contains(out, "mensaje") {
			t.Errorf("%s renderer dropped its text: %q", c.name, out)
		}
	}
}

func TestRenderKeyValues_AlignsLabels(t *testing.T) {
	out := RenderKeyValues([][2]string{
		{"Paciente", "Ana Pérez"},
		{"DNI", "12345678Z"},
	})
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	if len(lines) != 2 {
		t.Fatalf("got %d lines, want 2", len(lines))
	}
	for _, line := range lines {
		if !strings.HasPrefix(line, "  ") {
			t.Errorf("line %q not indented", line)
		}
	}
}
