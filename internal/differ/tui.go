// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package differ

import (
	"fmt"

	awsv2 "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudformation/types"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
)

// SelectChangeSet runs an interactive picker over the stack's changesets and
// returns the chosen one, or nil if the user bailed.
func SelectChangeSet(items []types.ChangeSetSummary) *types.ChangeSetSummary {
	p := tea.NewProgram(pickerModel{items: items})
	m, _ := p.Run()
	return m.(pickerModel).selected
}

type pickerModel struct {
	items    []types.ChangeSetSummary
	cursor   int
	selected *types.ChangeSetSummary
}

func (m pickerModel) Init() tea.Cmd { return nil }

func (m pickerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.String() {
		case "q", "esc":
			m.selected = nil
			return m, tea.Quit
		case "up":
			if m.cursor > 0 {
				m.cursor--
			}
		case "down":
			if m.cursor < len(m.items)-1 {
				m.cursor++
			}
		case "enter":
			m.selected = &m.items[m.cursor]
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m pickerModel) View() string {
	s := "Select a changeset:\n\n"
	for i, cs := range m.items {
		cursor := " "
		if m.cursor == i {
			cursor = ">"
		}

		created := ""
		if cs.CreationTime != nil {
			created = cs.CreationTime.Format("2006-01-02T15:04:05Z")
		}

		s += fmt.Sprintf("%s %s %-16s %s\n",
			cursor, awsv2.ToString(cs.ChangeSetName), cs.Status, created)
	}
	return s + "\nENTER: go, Q/ESCAPE: quit\n"
}

// Page shows long diff output in a scrollable pager.
func Page(title, content string) error {
	vp := viewport.New(80, 24)
	vp.SetContent(content)
	_, err := tea.NewProgram(pagerModel{title: title, viewport: vp}).Run()
	return err
}

type pagerModel struct {
	title    string
	viewport viewport.Model
	ready    bool
}

func (m pagerModel) Init() tea.Cmd { return nil }

func (m pagerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "esc", "ctrl+c":
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		m.viewport.Width = msg.Width
		m.viewport.Height = msg.Height - 2
		m.ready = true
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m pagerModel) View() string {
	if !m.ready {
		return "loading..."
	}
	return m.title + "\n" + m.viewport.View() + "\nQ/ESCAPE: quit\n"
}
