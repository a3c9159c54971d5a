package cli

import (
	"bytes"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/modelforest/internal/cli/config"
	"github.com/leapstack-labs/modelforest/internal/cli/testutil"
)

func runRoot(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	config.ResetConfig()
	t.Cleanup(config.ResetConfig)

	cmd := NewRootCmd()
	out := &bytes.Buffer{}
	errOut := &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetErr(errOut)
	cmd.SetArgs(args)

	err := cmd.Execute()
	return out.String(), errOut.String(), err
}

func TestNewRootCmd(t *testing.T) {
	cmd := NewRootCmd()

	assert.Equal(t, "modelforest", cmd.Use)
	for _, flag := range []string{"config", "input", "output", "strict", "log-level", "verbose"} {
		assert.NotNil(t, cmd.PersistentFlags().Lookup(flag), "flag %q should exist", flag)
	}

	names := make([]string, 0, len(cmd.Commands()))
	for _, sub := range cmd.Commands() {
		names = append(names, sub.Name())
	}
	assert.Subset(t, names, []string{"version", "compose", "roots", "dag", "check", "completion"})
}

func TestRoot_ConfigFileInput(t *testing.T) {
	dir := testutil.SetupTestProject(t, "output: json")
	t.Chdir(dir)

	out, _, err := runRoot(t, "compose")
	require.NoError(t, err)

	var got struct {
		TopLevel []string `json:"top_level"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, []string{"Address", "Customer", "Invoice"}, got.TopLevel)
	assert.Equal(t, "modelforest.yaml", config.GetConfigFileUsed())
}

func TestRoot_FlagOverridesConfig(t *testing.T) {
	dir := testutil.SetupTestProject(t, "output: json")
	t.Chdir(dir)

	out, _, err := runRoot(t, "compose", "-o", "markdown")
	require.NoError(t, err)
	assert.Contains(t, out, "# Model Forest")
	testutil.AssertNoANSI(t, out)
}

func TestRoot_EnvOverridesConfig(t *testing.T) {
	dir := testutil.SetupTestProject(t, "output: json")
	t.Chdir(dir)
	t.Setenv("MODELFOREST_OUTPUT", "markdown")

	out, _, err := runRoot(t, "roots")
	require.NoError(t, err)
	assert.Contains(t, out, "| Address | promoted | Customer, Invoice | Customer, Invoice |")
}

func TestRoot_VerboseLogs(t *testing.T) {
	dir := testutil.SetupTestProject(t)
	t.Chdir(dir)

	_, errOut, err := runRoot(t, "compose", "-o", "json", "-v")
	require.NoError(t, err)
	assert.Contains(t, errOut, "composed forest")
	assert.Contains(t, errOut, "using config file")
}

func TestRoot_InvalidOutput(t *testing.T) {
	t.Chdir(t.TempDir())

	_, _, err := runRoot(t, "compose", "-o", "yaml")
	require.Error(t, err)
}

func TestCompletionCommand(t *testing.T) {
	out, _, err := runRoot(t, "completion", "bash")
	require.NoError(t, err)
	assert.Contains(t, out, "modelforest")
}
