package ui

import (
	"bytes"
	"strings"
	"testing"

	"github.com/rileyhilliard/ec2ssm/internal/errors"
	"github.com/rileyhilliard/ec2ssm/internal/inventory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func threeInstances() []inventory.Instance {
	return []inventory.Instance{
		{ID: "i-0001", Name: "web-1"},
		{ID: "i-0002", Name: "web-2"},
		{ID: "i-0003"},
	}
}

func TestPromptSelection(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantID  string
		wantErr bool
	}{
		{name: "second entry", input: "2\n", wantID: "i-0002"},
		{name: "empty picks first", input: "\n", wantID: "i-0001"},
		{name: "eof picks first", input: "", wantID: "i-0001"},
		{name: "no trailing newline", input: "3", wantID: "i-0003"},
		{name: "surrounding spaces", input: "  3 \n", wantID: "i-0003"},
		{name: "past the end", input: "4\n", wantErr: true},
		{name: "zero", input: "0\n", wantErr: true},
		{name: "negative", input: "-1\n", wantErr: true},
		{name: "not a number", input: "web-1\n", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			got, err := PromptSelection(threeInstances(), strings.NewReader(tt.input), &out)

			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.IsCode(err, errors.ErrInput))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantID, got.ID)
		})
	}
}

func TestPromptSelection_MenuFormat(t *testing.T) {
	var out bytes.Buffer
	_, err := PromptSelection(threeInstances(), strings.NewReader("1\n"), &out)
	require.NoError(t, err)

	assert.Equal(t, "1) i-0001 (web-1)\n2) i-0002 (web-2)\n3) i-0003 ()\n"+MenuPrompt, out.String())
}

func TestPromptSelection_SingleEntryStillPrompts(t *testing.T) {
	var out bytes.Buffer
	got, err := PromptSelection(threeInstances()[:1], strings.NewReader("\n"), &out)
	require.NoError(t, err)

	assert.Equal(t, "i-0001", got.ID)
	assert.Contains(t, out.String(), MenuPrompt)
}

func TestPromptSelection_ReadsOneLine(t *testing.T) {
	// Only the first line counts; a second answer is never consulted.
	got, err := PromptSelection(threeInstances(), strings.NewReader("9\n2\n"), &bytes.Buffer{})
	assert.Error(t, err)
	assert.Empty(t, got.ID)
}

func TestPromptSelection_Empty(t *testing.T) {
	_, err := PromptSelection(nil, strings.NewReader("1\n"), &bytes.Buffer{})
	assert.True(t, errors.IsCode(err, errors.ErrInput))
}

func TestParseChoice(t *testing.T) {
	idx, err := ParseChoice("", 5)
	require.NoError(t, err)
	assert.Equal(t, 0, idx)

	idx, err = ParseChoice("5", 5)
	require.NoError(t, err)
	assert.Equal(t, 4, idx)

	_, err = ParseChoice("6", 5)
	assert.ErrorContains(t, err, "Invalid selection \"6\"")

	_, err = ParseChoice("1.5", 5)
	assert.Error(t, err)
}
