package ui

import (
	"io"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/rileyhilliard/ec2ssm/internal/errors"
	"github.com/rileyhilliard/ec2ssm/internal/inventory"
)

// instanceItem implements list.Item for the Bubbles list component.
type instanceItem struct {
	inst inventory.Instance
}

func (i instanceItem) Title() string {
	if i.inst.Name == "" {
		return i.inst.ID
	}
	return i.inst.Name
}

func (i instanceItem) Description() string {
	if i.inst.Name == "" {
		return "no Name tag"
	}
	return i.inst.ID
}

// FilterValue lets the operator type either the name or the id.
func (i instanceItem) FilterValue() string {
	return i.inst.Name + " " + i.inst.ID
}

// InstancePickerModel is a Bubble Tea model for choosing one instance.
type InstancePickerModel struct {
	list      list.Model
	instances []inventory.Instance
	selected  *inventory.Instance
	quitting  bool
}

type pickerKeyMap struct {
	Enter key.Binding
	Quit  key.Binding
}

var pickerKeys = pickerKeyMap{
	Enter: key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("enter", "connect"),
	),
	Quit: key.NewBinding(
		key.WithKeys("esc", "ctrl+c"),
		key.WithHelp("esc", "cancel"),
	),
}

// NewInstancePickerModel builds the picker. title is shown above the list,
// e.g. "tag Name=web in us-east-1".
func NewInstancePickerModel(instances []inventory.Instance, title string) InstancePickerModel {
	items := make([]list.Item, len(instances))
	for i, inst := range instances {
		items[i] = instanceItem{inst: inst}
	}

	delegate := list.NewDefaultDelegate()
	delegate.Styles.SelectedTitle = delegate.Styles.SelectedTitle.
		Foreground(ColorPrimary).
		BorderForeground(ColorSecondary)
	delegate.Styles.SelectedDesc = delegate.Styles.SelectedDesc.
		Foreground(ColorMuted)

	l := list.New(items, delegate, 80, 15)
	l.Title = title
	l.SetShowStatusBar(len(instances) > 1)
	l.SetFilteringEnabled(true)
	l.Styles.Title = lipgloss.NewStyle().
		Foreground(ColorPrimary).
		Bold(true).
		Padding(0, 0, 1, 0)
	l.Styles.HelpStyle = lipgloss.NewStyle().Foreground(ColorMuted)

	return InstancePickerModel{
		list:      l,
		instances: instances,
	}
}

// Init implements tea.Model.
func (m InstancePickerModel) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m InstancePickerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		// While the filter input is focused, keys belong to it.
		if m.list.FilterState() == list.Filtering {
			break
		}
		switch {
		case key.Matches(msg, pickerKeys.Enter):
			if item, ok := m.list.SelectedItem().(instanceItem); ok {
				m.selected = &item.inst
			}
			m.quitting = true
			return m, tea.Quit

		case key.Matches(msg, pickerKeys.Quit):
			m.quitting = true
			return m, tea.Quit
		}

	case tea.WindowSizeMsg:
		m.list.SetSize(msg.Width, msg.Height-2)
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

// View implements tea.Model.
func (m InstancePickerModel) View() string {
	if m.quitting {
		return ""
	}
	return m.list.View()
}

// Selected returns the chosen instance, or nil if the picker was cancelled.
func (m InstancePickerModel) Selected() *inventory.Instance {
	return m.selected
}

// PickInstance runs the full-screen picker on the given terminal streams.
// Cancelling is an InputError, same as a bad menu answer.
func PickInstance(instances []inventory.Instance, title string, in io.Reader, out io.Writer) (inventory.Instance, error) {
	if len(instances) == 0 {
		return inventory.Instance{}, errors.NewInput("Nothing to select from", "")
	}

	p := tea.NewProgram(
		NewInstancePickerModel(instances, title),
		tea.WithInput(in),
		tea.WithOutput(out),
	)

	finalModel, err := p.Run()
	if err != nil {
		return inventory.Instance{}, errors.WrapWithCode(err, errors.ErrInput,
			"Instance picker failed",
			"Use -s for the numbered menu or -x <instance-id> to skip selection.")
	}

	if m, ok := finalModel.(InstancePickerModel); ok && m.Selected() != nil {
		return *m.Selected(), nil
	}

	return inventory.Instance{}, errors.NewInput("Selection cancelled", "")
}
