package ui

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rileyhilliard/ec2ssm/internal/inventory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInstanceItem(t *testing.T) {
	named := instanceItem{inst: inventory.Instance{ID: "i-0001", Name: "web-1"}}
	assert.Equal(t, "web-1", named.Title())
	assert.Equal(t, "i-0001", named.Description())
	assert.Contains(t, named.FilterValue(), "web-1")
	assert.Contains(t, named.FilterValue(), "i-0001")

	unnamed := instanceItem{inst: inventory.Instance{ID: "i-0003"}}
	assert.Equal(t, "i-0003", unnamed.Title())
	assert.Equal(t, "no Name tag", unnamed.Description())
}

func TestNewInstancePickerModel(t *testing.T) {
	m := NewInstancePickerModel(threeInstances(), "tag Name=web")

	assert.Len(t, m.instances, 3)
	assert.Nil(t, m.Selected())
	assert.False(t, m.quitting)
	assert.Contains(t, m.View(), "tag Name=web")
}

func update(t *testing.T, m InstancePickerModel, msg tea.Msg) (InstancePickerModel, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	pm, ok := next.(InstancePickerModel)
	require.True(t, ok)
	return pm, cmd
}

func TestInstancePicker_EnterSelectsHighlighted(t *testing.T) {
	m := NewInstancePickerModel(threeInstances(), "pick")

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyDown})
	m, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyEnter})

	require.NotNil(t, m.Selected())
	assert.Equal(t, "i-0002", m.Selected().ID)
	assert.NotNil(t, cmd)
	assert.Empty(t, m.View())
}

func TestInstancePicker_EscCancels(t *testing.T) {
	m := NewInstancePickerModel(threeInstances(), "pick")

	m, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyEsc})

	assert.Nil(t, m.Selected())
	assert.True(t, m.quitting)
	assert.NotNil(t, cmd)
}

func TestInstancePicker_WindowResize(t *testing.T) {
	m := NewInstancePickerModel(threeInstances(), "pick")

	m, _ = update(t, m, tea.WindowSizeMsg{Width: 120, Height: 40})
	assert.Equal(t, 120, m.list.Width())
	assert.Equal(t, 38, m.list.Height())
}
