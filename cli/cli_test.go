package cli

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTypedArguments(t *testing.T) {
	cmd := NewCommand("test", "test command")
	input := AddArgument(cmd, "input", "input path", true, "")
	skip := AddArgument(cmd, "skip", "frame skip", false, 1)
	thresh := AddArgument(cmd, "threshold", "detector threshold", false, 0.5)
	verbose := AddArgument(cmd, "verbose", "chatty output", false, false)

	err := cmd.Parse([]string{
		"--input", "video.mp4",
		"--skip=10",
		"--threshold", "0.75",
		"--verbose",
	})
	require.NoError(t, err)

	assert.Equal(t, "video.mp4", input.Value())
	assert.Equal(t, 10, skip.Value())
	assert.Equal(t, 0.75, thresh.Value())
	assert.True(t, verbose.Value())
}

func TestParseDefaults(t *testing.T) {
	cmd := NewCommand("test", "test command")
	skip := AddArgument(cmd, "skip", "frame skip", false, 5)

	require.NoError(t, cmd.Parse(nil))
	assert.Equal(t, 5, skip.Value())
}

func TestParseMissingRequired(t *testing.T) {
	cmd := NewCommand("test", "test command")
	AddArgument(cmd, "input", "input path", true, "")

	err := cmd.Parse(nil)
	assert.True(t, errors.Is(err, ErrParse))
	assert.Contains(t, err.Error(), "--input")
}

func TestParseErrors(t *testing.T) {
	cases := []struct {
		name string
		argv []string
	}{
		{"unknown flag", []string{"--nope", "1"}},
		{"bad int", []string{"--skip", "abc"}},
		{"missing value", []string{"--skip"}},
		{"positional", []string{"stray"}},
	}
	for _, c := range cases {
		cmd := NewCommand("test", "test command")
		AddArgument(cmd, "skip", "frame skip", false, 1)
		err := cmd.Parse(c.argv)
		assert.True(t, errors.Is(err, ErrParse), "%s: err = %v", c.name, err)
	}
}

func TestBoolForms(t *testing.T) {
	cmd := NewCommand("test", "test command")
	a := AddArgument(cmd, "flag", "a flag", false, false)
	require.NoError(t, cmd.Parse([]string{"--flag=false"}))
	assert.False(t, a.Value())

	cmd2 := NewCommand("test", "test command")
	b := AddArgument(cmd2, "flag", "a flag", false, false)
	require.NoError(t, cmd2.Parse([]string{"--flag"}))
	assert.True(t, b.Value())
}

func TestUsageListsArguments(t *testing.T) {
	cmd := NewCommand("towerdetect", "detect towers")
	AddArgument(cmd, "input", "input path", true, "")
	AddArgument(cmd, "out", "output dir", false, ".")

	usage := cmd.Usage()
	assert.True(t, strings.Contains(usage, "--input"))
	assert.True(t, strings.Contains(usage, "(required)"))
	assert.True(t, strings.Contains(usage, "--out"))
}
