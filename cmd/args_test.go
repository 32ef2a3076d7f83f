package cmd

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseArguments_DefaultsToRunToCompletion(t *testing.T) {
	a, err := ParseArguments([]string{"config.txt"})
	require.NoError(t, err)
	assert.Equal(t, "config.txt", a.InputFile)
	assert.Equal(t, ModeRunToCompletion, a.Mode)
	assert.False(t, a.NeedOutput)
	assert.Equal(t, int64(1_000_000), a.MaxRequests)
}

func TestParseArguments_LastModeFlagWins(t *testing.T) {
	a, err := ParseArguments([]string{"-r", "-i", "-a", "config.txt"})
	require.NoError(t, err)
	assert.Equal(t, ModeAutomatic, a.Mode)

	a, err = ParseArguments([]string{"-a", "-i", "config.txt"})
	require.NoError(t, err)
	assert.Equal(t, ModeInteractive, a.Mode)
}

func TestParseArguments_OutputWithOptionalPath(t *testing.T) {
	// -o directly followed by another flag takes no path: the report
	// goes to stdout.
	a, err := ParseArguments([]string{"-o", "-r", "config.txt"})
	require.NoError(t, err)
	assert.True(t, a.NeedOutput)
	assert.Empty(t, a.ReportPath)

	a, err = ParseArguments([]string{"config.txt", "-o", "report.txt"})
	require.NoError(t, err)
	assert.True(t, a.NeedOutput)
	assert.Equal(t, "report.txt", a.ReportPath)
}

func TestParseArguments_MaxRequestsRequiresInteger(t *testing.T) {
	_, err := ParseArguments([]string{"config.txt", "-m"})
	require.Error(t, err)

	_, err = ParseArguments([]string{"config.txt", "-m", "lots"})
	require.Error(t, err)

	a, err := ParseArguments([]string{"config.txt", "-m", "500"})
	require.NoError(t, err)
	assert.Equal(t, int64(500), a.MaxRequests)
}

func TestParseArguments_MissingInputFileIsError(t *testing.T) {
	_, err := ParseArguments([]string{"-r"})
	require.Error(t, err)
	assert.IsType(t, &ArgError{}, err)
}

func TestParseArguments_ExtraPositionalIsError(t *testing.T) {
	_, err := ParseArguments([]string{"config.txt", "stray"})
	require.Error(t, err)
	assert.IsType(t, &ArgError{}, err)
}

func TestParseArguments_FlagsMayFollowPositional(t *testing.T) {
	a, err := ParseArguments([]string{"config.txt", "-i"})
	require.NoError(t, err)
	assert.Equal(t, "config.txt", a.InputFile)
	assert.Equal(t, ModeInteractive, a.Mode)
}
