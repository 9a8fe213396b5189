package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tabprep/internal/shared/testutil"
	"tabprep/pkg/contracts"
	"tabprep/pkg/contracts/domain"
)

type result struct {
	code   int
	stdout string
	stderr string
}

func run(t *testing.T, stdin string, args ...string) result {
	t.Helper()
	t.Setenv("TABPREP_IMPUTER_ESTIMATORS", "10")
	t.Setenv("TABPREP_LOGGING_LEVEL", "error")

	var stdout, stderr bytes.Buffer
	code := execute(context.Background(), args, strings.NewReader(stdin), &stdout, &stderr)
	return result{code: code, stdout: stdout.String(), stderr: stderr.String()}
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

func TestImputeCommand(t *testing.T) {
	dir := t.TempDir()
	input := testutil.WriteFile(t, dir, "data.csv", "a,b\n1,10\n,20\n3,30\n4,\n")

	res := run(t, "", "impute", input)
	require.Equal(t, 0, res.code, res.stderr)

	output := filepath.Join(dir, "data_filled.csv")
	assert.FileExists(t, output)
	assert.Contains(t, res.stdout, "Missing values per column:")
	assert.Contains(t, res.stdout, "Filled 2 cells")
	assert.Contains(t, res.stdout, "Filled data saved to: "+output)
	assert.NotContains(t, readFile(t, output), ",\n")
}

func TestImputeCommandErrors(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name    string
		args    []string
		wantErr string
	}{
		{
			name:    "missing file",
			args:    []string{"impute", filepath.Join(dir, "nope.csv")},
			wantErr: "does not exist",
		},
		{
			name:    "unsupported format",
			args:    []string{"impute", testutil.WriteFile(t, dir, "notes.txt", "a\n1\n")},
			wantErr: "unsupported file format",
		},
		{
			name:    "no argument",
			args:    []string{"impute"},
			wantErr: "accepts 1 arg",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := run(t, "", tt.args...)
			assert.Equal(t, 1, res.code)
			assert.Contains(t, res.stderr, "error: ")
			assert.Contains(t, res.stderr, tt.wantErr)
		})
	}
}

func TestCleanCommand(t *testing.T) {
	dir := t.TempDir()
	input := testutil.WriteFile(t, dir, "Survey.csv", "id,score\n1,5\n2,\n1,5\n3,7\n")

	t.Run("default output", func(t *testing.T) {
		res := run(t, "", "clean", input)
		require.Equal(t, 0, res.code, res.stderr)

		output := filepath.Join(dir, "cleaned_survey.csv")
		assert.Equal(t, "id,score\n1,5\n3,7\n", readFile(t, output))
		assert.Contains(t, res.stdout, "Original size: 4 rows, 2 columns")
		assert.Contains(t, res.stdout, "Dropped 1 rows with missing values")
		assert.Contains(t, res.stdout, "Dropped 1 duplicate rows")
		assert.Contains(t, res.stdout, "Cleaned size: 2 rows, 2 columns")
	})

	t.Run("output takes the input extension", func(t *testing.T) {
		res := run(t, "", "clean", input, "-o", filepath.Join(dir, "out.xlsx"))
		require.Equal(t, 0, res.code, res.stderr)
		assert.FileExists(t, filepath.Join(dir, "out.csv"))
		assert.NoFileExists(t, filepath.Join(dir, "out.xlsx"))
	})
}

func TestTransformCommand(t *testing.T) {
	dir := t.TempDir()
	input := testutil.WriteFile(t, dir, "data.csv", "a,b,label\n1,10,x\n2,20,y\n3,30,z\n")

	t.Run("flags", func(t *testing.T) {
		res := run(t, "", "transform", input, "--kind", "minmax", "--columns", "a, 1")
		require.Equal(t, 0, res.code, res.stderr)

		output := filepath.Join(dir, "data_transformed.csv")
		assert.Equal(t, "a,b,label\n0,0,x\n0.5,0.5,y\n1,1,z\n", readFile(t, output))
		assert.Contains(t, res.stdout, "Applied minmax to 2 columns")
		assert.NotContains(t, res.stdout, "Choose a transform")
	})

	t.Run("interactive", func(t *testing.T) {
		output := filepath.Join(dir, "prompted.csv")
		res := run(t, input+"\n2\n0\n"+output+"\n", "transform")
		require.Equal(t, 0, res.code, res.stderr)

		assert.Contains(t, res.stdout, "Choose a transform:")
		assert.Contains(t, res.stdout, "0. a")
		assert.Equal(t, "a,b,label\n0,10,x\n0.5,20,y\n1,30,z\n", readFile(t, output))
	})

	t.Run("interactive input ends early", func(t *testing.T) {
		res := run(t, input+"\n", "transform")
		assert.Equal(t, 1, res.code)
		assert.Contains(t, res.stderr, "no answer given")
	})

	t.Run("bad kind", func(t *testing.T) {
		res := run(t, "", "transform", input, "--kind", "9", "--columns", "a")
		assert.Equal(t, 1, res.code)
		assert.Contains(t, res.stderr, "please enter a number between 1 and 4")
	})

	t.Run("text column", func(t *testing.T) {
		res := run(t, "", "transform", input, "--kind", "1", "--columns", "label")
		assert.Equal(t, 1, res.code)
		assert.Contains(t, res.stderr, "error: ")
	})

	t.Run("unknown column", func(t *testing.T) {
		res := run(t, "", "transform", input, "--kind", "1", "--columns", "nope")
		assert.Equal(t, 1, res.code)
		assert.Contains(t, res.stderr, `column "nope" does not exist`)
	})

	t.Run("legacy xls output refused", func(t *testing.T) {
		res := run(t, "", "transform", input, "--kind", "1", "--columns", "a", "-o", filepath.Join(dir, "out.xls"))
		assert.Equal(t, 1, res.code)
		assert.NoFileExists(t, filepath.Join(dir, "out.xls"))
	})
}

func TestJSONSummary(t *testing.T) {
	dir := t.TempDir()
	input := testutil.WriteFile(t, dir, "d.csv", "a\n1\n1\n2\n")

	res := run(t, "", "--json", "clean", input)
	require.Equal(t, 0, res.code, res.stderr)

	var summary domain.RunSummary
	require.NoError(t, json.Unmarshal([]byte(res.stdout), &summary))
	assert.Equal(t, "clean", summary.Command)
	assert.Equal(t, domain.RunStatusSucceeded, summary.Status)
	assert.Len(t, summary.Steps, 4)

	res = run(t, "", "--json", "clean", filepath.Join(dir, "missing.csv"))
	assert.Equal(t, 1, res.code)
	require.NoError(t, json.Unmarshal([]byte(res.stdout), &summary))
	assert.Equal(t, domain.RunStatusFailed, summary.Status)
}

func TestMetricsFile(t *testing.T) {
	dir := t.TempDir()
	input := testutil.WriteFile(t, dir, "d.csv", "a,b\n1,\n2,3\n")
	metrics := filepath.Join(dir, "metrics", "tabprep.prom")

	res := run(t, "", "--metrics-file", metrics, "clean", input)
	require.Equal(t, 0, res.code, res.stderr)

	content := readFile(t, metrics)
	assert.Contains(t, content, "tabprep_runs_total")
	assert.Contains(t, content, "tabprep_rows_dropped_total")
}

func TestViewCommandMissingFile(t *testing.T) {
	res := run(t, "", "view", filepath.Join(t.TempDir(), "nope.csv"), "--addr", "127.0.0.1:0")
	assert.Equal(t, 1, res.code)
	assert.Contains(t, res.stderr, "does not exist")
}

func TestVersionCommand(t *testing.T) {
	res := run(t, "", "version")
	require.Equal(t, 0, res.code)
	assert.Contains(t, res.stdout, contracts.GetVersionString())

	res = run(t, "", "--json", "version")
	require.Equal(t, 0, res.code)
	var info contracts.VersionInfo
	require.NoError(t, json.Unmarshal([]byte(res.stdout), &info))
	assert.Equal(t, contracts.Version, info.Version)
}
