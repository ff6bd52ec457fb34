package main

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/davecgh/go-spew/spew"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true)
	cursorStyle = lipgloss.NewStyle().Reverse(true)
)

type model struct {
	path     string
	pageSize int
	pages    []l1Summary
	cursor   int
	dump     string
	err      error
}

func (m model) Init() tea.Cmd { return nil }

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch keyMsg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "j", "down":
		if m.cursor < len(m.pages)-1 {
			m.cursor++
		}
	case "k", "up":
		if m.cursor > 0 {
			m.cursor--
		}
	case "d":
		if m.cursor < len(m.pages) {
			m.dump = spew.Sdump(m.pages[m.cursor])
		}
	}
	return m, nil
}

func (m model) renderRow(i int, s l1Summary) string {
	row := fmt.Sprintf("L1 @ %#08x  complete=%-5v  t=%d  n=%d  pages=%d",
		s.offset, s.complete, s.timeDelta, s.nSamples, s.nPages)
	if i == m.cursor {
		return cursorStyle.Render(row)
	}
	return row
}

func (m model) View() string {
	var b strings.Builder
	fmt.Fprintln(&b, headerStyle.Render(fmt.Sprintf("%s (page size %d)", m.path, m.pageSize)))
	for i, s := range m.pages {
		fmt.Fprintln(&b, m.renderRow(i, s))
	}
	if m.dump != "" {
		fmt.Fprintln(&b)
		fmt.Fprint(&b, m.dump)
	}
	fmt.Fprintln(&b)
	fmt.Fprintln(&b, "j/k move  d dump  q quit")
	return b.String()
}
