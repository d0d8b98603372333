package tui

import (
	"fmt"
	"sort"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/james-bowman/sparse"
	"gonum.org/v1/gonum/mat"

	"github.com/suguke/gait-control-direct-id-paper/internal/viz"
)

var (
	cyan    = lipgloss.NewStyle().Foreground(lipgloss.Color("86"))
	white   = lipgloss.NewStyle().Foreground(lipgloss.Color("255"))
	dim     = lipgloss.NewStyle().Foreground(lipgloss.Color("242"))
	dimmer  = lipgloss.NewStyle().Foreground(lipgloss.Color("238"))
	magenta = lipgloss.NewStyle().Foreground(lipgloss.Color("213"))
)

// ExplorerData is everything the inspector needs, computed once by the
// caller: the trajectory, its residual vector in kinematic/dynamic block
// order, and the full-shape constraint Jacobian.
type ExplorerData struct {
	StateNames    []string
	InputNames    []string
	FreeConstants []string

	States   *mat.Dense
	Inputs   *mat.Dense
	Interval float64

	Residuals []float64
	Jacobian  *sparse.CSR
	Tolerance float64
}

type jacEntry struct {
	col int
	val float64
}

type model struct {
	data  ExplorerData
	steps int

	rowEntries [][]jacEntry

	step     int // grid node, 1..steps-1
	equation int // cursor into the node's residual rows
	width    int
}

func NewExplorer(data ExplorerData) model {
	_, steps := data.States.Dims()

	m := model{
		data:  data,
		steps: steps,
		step:  1,
		width: 80,
	}

	if data.Jacobian != nil {
		rows, _ := data.Jacobian.Dims()
		m.rowEntries = make([][]jacEntry, rows)
		data.Jacobian.DoNonZero(func(i, j int, v float64) {
			m.rowEntries[i] = append(m.rowEntries[i], jacEntry{col: j, val: v})
		})
		for _, entries := range m.rowEntries {
			sort.Slice(entries, func(a, b int) bool { return entries[a].col < entries[b].col })
		}
	}

	return m
}

// Run starts the inspector and blocks until the user quits.
func Run(data ExplorerData) error {
	_, err := tea.NewProgram(NewExplorer(data)).Run()
	return err
}

func (m model) Init() tea.Cmd { return nil }

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil
	}
	return m, nil
}

func (m model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	n := len(m.data.StateNames)

	switch msg.String() {
	case "q", "ctrl+c", "escape":
		return m, tea.Quit
	case "left", "h":
		if m.step > 1 {
			m.step--
		}
	case "right", "l":
		if m.step < m.steps-1 {
			m.step++
		}
	case "g", "home":
		m.step = 1
	case "G", "end":
		m.step = m.steps - 1
	case "up", "k":
		if m.equation > 0 {
			m.equation--
		}
	case "down", "j":
		if m.equation < n-1 {
			m.equation++
		}
	}
	return m, nil
}

func (m model) View() string {
	var b strings.Builder

	t := float64(m.step) * m.data.Interval
	b.WriteString("\n")
	b.WriteString("  " + cyan.Render("cart-pendulum collocation") +
		dim.Render(fmt.Sprintf("   node %d/%d   t=%.3f", m.step, m.steps-1, t)) + "\n")
	b.WriteString(dimmer.Render("  "+strings.Repeat("─", 56)) + "\n\n")

	m.viewSamples(&b)
	m.viewResiduals(&b)
	m.viewJacobianRow(&b)

	b.WriteString("\n")
	b.WriteString(dim.Render("  ←→ node   ↑↓ equation   g/G first/last   q quit") + "\n")

	return b.String()
}

func (m model) viewSamples(b *strings.Builder) {
	b.WriteString(dim.Render(fmt.Sprintf("  %-8s %12s %12s", "signal", "previous", "current")) + "\n")
	for j, name := range m.data.StateNames {
		b.WriteString("  " + white.Render(fmt.Sprintf("%-8s", name)) +
			fmt.Sprintf(" %12.5f %12.5f", m.data.States.At(j, m.step-1), m.data.States.At(j, m.step)) + "\n")
	}
	if m.data.Inputs != nil {
		for r, name := range m.data.InputNames {
			b.WriteString("  " + white.Render(fmt.Sprintf("%-8s", name)) +
				dim.Render(fmt.Sprintf(" %12s", "-")) +
				fmt.Sprintf(" %12.5f", m.data.Inputs.At(r, m.step)) + "\n")
		}
	}
	b.WriteString("\n")
}

func (m model) viewResiduals(b *strings.Builder) {
	n := len(m.data.StateNames)
	kin := n / 2

	b.WriteString(dim.Render("  residuals") + "\n")
	for r := 0; r < n; r++ {
		kind := "kin"
		if r >= kin {
			kind = "dyn"
		}
		cursor := "  "
		if r == m.equation {
			cursor = cyan.Render("▸ ")
		}
		res := m.residualAt(r)
		b.WriteString("  " + cursor + dim.Render(kind) + " " +
			white.Render(fmt.Sprintf("%-8s", m.data.StateNames[r])) +
			viz.FormatResidual(res, m.data.Tolerance) + "\n")
	}
	b.WriteString("\n")
}

func (m model) viewJacobianRow(b *strings.Builder) {
	if m.rowEntries == nil {
		return
	}

	row := m.equation*(m.steps-1) + (m.step - 1)
	entries := m.rowEntries[row]

	b.WriteString(dim.Render(fmt.Sprintf("  jacobian row %d, %d nonzero", row, len(entries))) + "\n")

	line := "  "
	for _, e := range entries {
		cell := magenta.Render(m.colLabel(e.col)) + dim.Render("=") + fmt.Sprintf("%.4g", e.val)
		if lipgloss.Width(line)+lipgloss.Width(cell)+3 > m.width {
			b.WriteString(line + "\n")
			line = "  "
		}
		line += cell + "   "
	}
	if strings.TrimSpace(line) != "" {
		b.WriteString(line + "\n")
	}
}

func (m model) residualAt(r int) float64 {
	return m.data.Residuals[r*(m.steps-1)+(m.step-1)]
}

// colLabel decodes a Jacobian column into its free-variable name: state and
// specified columns are step-major per signal, free constants trail.
func (m model) colLabel(col int) string {
	n := len(m.data.StateNames)
	q := len(m.data.InputNames)

	if col < n*m.steps {
		return fmt.Sprintf("%s[%d]", m.data.StateNames[col/m.steps], col%m.steps)
	}
	col -= n * m.steps
	if col < q*m.steps {
		return fmt.Sprintf("%s[%d]", m.data.InputNames[col/m.steps], col%m.steps)
	}
	col -= q * m.steps
	if col < len(m.data.FreeConstants) {
		return m.data.FreeConstants[col]
	}
	return fmt.Sprintf("?%d", col)
}
