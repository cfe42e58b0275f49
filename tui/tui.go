package tui

import (
	"errors"
	"strconv"
	"strings"

	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/midbel/sheetspread/layout"
	"github.com/midbel/sheetspread/sheet"
)

const (
	cellWidth   = 10
	gutterWidth = 5
)

var (
	headerStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#666666"))
	selectedStyle = lipgloss.NewStyle().Reverse(true)
	errorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#cc0000"))
	barStyle      = lipgloss.NewStyle().Bold(true)
)

// Model is an interactive view of a sheet: a formula bar showing the text of
// the selected cell, the visible part of the grid and an error bar with the
// first line of the error of the selected cell.
type Model struct {
	sheet *sheet.Sheet
	input textinput.Model

	width  int
	height int
	top    int
	left   int

	status string
}

func New(sh *sheet.Sheet) Model {
	input := textinput.New()
	input.Prompt = "> "
	m := Model{
		sheet:  sh,
		input:  input,
		width:  80,
		height: 24,
	}
	m.reload()
	return m
}

func Run(sh *sheet.Sheet) error {
	_, err := tea.NewProgram(New(sh)).Run()
	return err
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.scroll()
		return m, nil
	case tea.KeyPressMsg:
		if m.input.Focused() {
			return m.updateInput(msg)
		}
		return m.updateGrid(msg)
	}
	return m, nil
}

func (m Model) updateInput(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit
	case "esc":
		m.input.Blur()
		m.reload()
		return m, nil
	case "enter":
		m.input.Blur()
		m.setStatus(m.sheet.Edit(m.sheet.Selected(), m.input.Value()))
		m.reload()
		return m, nil
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) updateGrid(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	var err error
	switch msg.String() {
	case "ctrl+c", "q":
		return m, tea.Quit
	case "enter", "e":
		cmd := m.input.Focus()
		return m, cmd
	case "up", "k":
		err = m.move(-1, 0)
	case "down", "j":
		err = m.move(1, 0)
	case "left", "h":
		err = m.move(0, -1)
	case "right", "l", "tab":
		err = m.move(0, 1)
	case "delete", "backspace":
		err = m.sheet.Edit(m.sheet.Selected(), "")
	case "o":
		err = m.sheet.InsertRow(sheet.After)
	case "O":
		err = m.sheet.InsertRow(sheet.Before)
	case "a":
		err = m.sheet.InsertColumn(sheet.After)
	case "A":
		err = m.sheet.InsertColumn(sheet.Before)
	case "d":
		err = m.sheet.DeleteRow(sheet.Current)
	case "D":
		err = m.sheet.DeleteColumn(sheet.Current)
	case "r":
		err = m.sheet.Recompute(m.sheet.Selected())
	default:
		return m, nil
	}
	m.setStatus(err)
	m.reload()
	m.scroll()
	return m, nil
}

func (m *Model) move(lines, columns int) error {
	pos := m.sheet.Selected().Shift(lines, columns)
	if !m.sheet.Size.Contains(pos) {
		return nil
	}
	return m.sheet.SelectAndFlush(pos)
}

// setStatus only keeps errors that are not already visible on the selected
// cell, reload takes care of those.
func (m *Model) setStatus(err error) {
	m.status = ""
	if err != nil && !errors.Is(err, sheet.ErrOutOfBounds) {
		m.status = sheet.ErrorLine(err)
	}
}

func (m *Model) reload() {
	m.input.SetValue(m.sheet.FormulaText(m.sheet.Selected()))
	if data := m.sheet.ReadCell(m.sheet.Selected()); data.Err != nil {
		m.status = sheet.ErrorLine(data.Err)
	}
}

func (m *Model) scroll() {
	pos := m.sheet.Selected()
	lines, columns := m.visible()
	if pos.Line < m.top {
		m.top = pos.Line
	} else if pos.Line >= m.top+lines {
		m.top = pos.Line - lines + 1
	}
	if pos.Column < m.left {
		m.left = pos.Column
	} else if pos.Column >= m.left+columns {
		m.left = pos.Column - columns + 1
	}
}

func (m Model) visible() (int, int) {
	lines := max(m.height-4, 1)
	columns := max((m.width-gutterWidth)/cellWidth, 1)
	return lines, columns
}

func (m Model) View() tea.View {
	var (
		sel  = m.sheet.Selected()
		body strings.Builder
	)
	body.WriteString(barStyle.Render(sel.Addr()))
	body.WriteString(" ")
	body.WriteString(m.input.View())
	body.WriteString("\n")
	body.WriteString(m.grid())
	body.WriteString("\n")
	body.WriteString(errorStyle.Render(m.status))

	v := tea.NewView(body.String())
	v.AltScreen = true
	return v
}

func (m Model) grid() string {
	var (
		lines, columns = m.visible()
		rows           []string
		dim            = m.sheet.Size
	)
	header := []string{pad("", gutterWidth)}
	for c := m.left; c < min(m.left+columns, dim.Columns); c++ {
		header = append(header, headerStyle.Render(pad(layout.ColumnName(c), cellWidth)))
	}
	rows = append(rows, strings.Join(header, ""))

	for i := m.top; i < min(m.top+lines, dim.Lines); i++ {
		row := []string{headerStyle.Render(pad(strconv.Itoa(i+1), gutterWidth))}
		for j := m.left; j < min(m.left+columns, dim.Columns); j++ {
			pos := layout.Position{Line: i, Column: j}
			data := m.sheet.ReadCell(pos)
			text := pad(data.Display(), cellWidth)
			switch {
			case pos.Equal(m.sheet.Selected()):
				text = selectedStyle.Render(text)
			case data.Err != nil:
				text = errorStyle.Render(text)
			}
			row = append(row, text)
		}
		rows = append(rows, strings.Join(row, ""))
	}
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

func pad(str string, width int) string {
	rs := []rune(str)
	if len(rs) >= width {
		return string(rs[:width-1]) + " "
	}
	return str + strings.Repeat(" ", width-len(rs))
}
