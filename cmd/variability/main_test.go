package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const stagingGenerations = `[
  {"_id":{"$oid":"65f1a2b3c4d5e6f708192a01"},"deprecated":false,
   "questionSets":[{"id":"s1","questions":[
     {"id":"q1","answers":[{"$oid":"65f1a2b3c4d5e6f708192b01"}]},
     {"id":"q2","answers":[{"$oid":"65f1a2b3c4d5e6f708192b02"}]},
     {"id":"q3","answers":[{"$oid":"65f1a2b3c4d5e6f708192b03"}]}]}]},
  {"_id":{"$oid":"65f1a2b3c4d5e6f708192a02"},"deprecated":true,
   "questionSets":[{"id":"s1","questions":[
     {"id":"q1","answers":[{"$oid":"65f1a2b3c4d5e6f708192b01"}]},
     {"id":"q2","answers":[{"$oid":"65f1a2b3c4d5e6f708192b02"}]},
     {"id":"q4","answers":[{"$oid":"65f1a2b3c4d5e6f708192b04"}]}]}]}
]`

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	cmd := rootCmd()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestAnalyzeJSON(t *testing.T) {
	staging := writeFile(t, "staging.json", stagingGenerations)

	out, err := execute(t, "", "analyze", "--staging", staging, "--output", "json")
	require.NoError(t, err)

	var got map[string]map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, float64(2), got["Staging"]["totalGenerations"])
	assert.Equal(t, float64(1), got["Staging"]["deprecatedGenerations"])
	assert.Equal(t, "0.333", got["Staging"]["questionVariability"])
	assert.Equal(t, "0.333", got["Staging"]["answerVariability"])
	assert.Equal(t, "-", got["Production"]["questionVariability"])
}

func TestAnalyzeTable(t *testing.T) {
	staging := writeFile(t, "staging.json", stagingGenerations)
	production := writeFile(t, "production.json", `[]`)

	out, err := execute(t, "", "analyze", "--staging", staging, "--production", production)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 9)
	assert.Equal(t, []string{"METRIC", "Staging", "Production"}, strings.Fields(lines[0]))
	assert.Equal(t, []string{"Total", "Generations", "2", "0"}, strings.Fields(lines[1]))
	assert.Equal(t, []string{"Question", "Variability", "0.333", "-"}, strings.Fields(lines[3]))
}

func TestAnalyzeErrors(t *testing.T) {
	_, err := execute(t, "", "analyze", "--output", "xml")
	assert.ErrorContains(t, err, "unknown output format")

	_, err = execute(t, "", "analyze", "--staging", filepath.Join(t.TempDir(), "missing.json"))
	assert.ErrorContains(t, err, "Staging")

	notArray := writeFile(t, "obj.json", `{"generations":[]}`)
	_, err = execute(t, "", "analyze", "--production", notArray)
	assert.ErrorContains(t, err, "expected a JSON array")
}

func TestAnalyzeOutputFromEnvironment(t *testing.T) {
	t.Setenv("VARIABILITY_OUTPUT", "json")

	out, err := execute(t, "", "analyze")
	require.NoError(t, err)
	assert.True(t, json.Valid([]byte(out)))
}

func TestNormalizeApplication(t *testing.T) {
	out, err := execute(t,
		`{"_id":{"$oid":"65f1a2b3c4d5e6f708192a3b"},"createdAt":{"$date":{"$numberLong":"1000"}}}`,
		"normalize")
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":"65f1a2b3c4d5e6f708192a3b","createdAt":"1970-01-01T00:00:01Z"}`, out)
}

func TestNormalizeWireFromFile(t *testing.T) {
	path := writeFile(t, "app.json", `[{"id":"65f1a2b3c4d5e6f708192a3b","tags":["65f1a2b3c4d5e6f708192a3c"]}]`)

	out, err := execute(t, "", "normalize", "--direction", "wire", "--root-depth=-1", path)
	require.NoError(t, err)
	assert.JSONEq(t, `[{"_id":{"$oid":"65f1a2b3c4d5e6f708192a3b"},"tags":[{"$oid":"65f1a2b3c4d5e6f708192a3c"}]}]`, out)
}

func TestNormalizeErrors(t *testing.T) {
	_, err := execute(t, `{}`, "normalize", "--direction", "sideways")
	assert.ErrorContains(t, err, "unknown direction")

	_, err = execute(t, `{`, "normalize")
	assert.ErrorContains(t, err, "parse input")
}
