package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JonMunkholm/autoprep/internal/persist"
)

const exampleCSV = "a,b\n1,\n,2\n3,3\n"

func writeCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "data.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func run(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	cmd := newRootCmd(strings.NewReader(stdin), &out, &errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), errOut.String(), err
}

func TestProfileCmd(t *testing.T) {
	out, _, err := run(t, "", "profile", writeCSV(t, exampleCSV))
	require.NoError(t, err)

	assert.Contains(t, out, "data.csv")
	assert.Contains(t, out, "Quality score")
	assert.Contains(t, out, "67%")
	assert.Contains(t, out, "COLUMN")
}

func TestProfileCmd_JSONFromStdin(t *testing.T) {
	out, _, err := run(t, exampleCSV, "profile", "--json", "-")
	require.NoError(t, err)

	var got struct {
		FileName string `json:"file_name"`
		Summary  struct {
			RowCount int `json:"row_count"`
			Missing  int `json:"missing_cells"`
		} `json:"summary"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, "stdin.csv", got.FileName)
	assert.Equal(t, 3, got.Summary.RowCount)
	assert.Equal(t, 2, got.Summary.Missing)
}

func TestCleanCmd(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"defaults", nil, "a,b\n1,2.5\n2,2\n3,3\n"},
		{"numeric imputation off", []string{"--impute-numeric=false"}, "a,b\n1,\n,2\n3,3\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := append([]string{"clean", writeCSV(t, exampleCSV)}, tt.args...)
			out, _, err := run(t, "", args...)
			require.NoError(t, err)
			assert.Equal(t, tt.want, out)
		})
	}
}

func TestCleanCmd_OutputFile(t *testing.T) {
	dir := t.TempDir()
	csvOut := filepath.Join(dir, "clean.csv")
	xlsxOut := filepath.Join(dir, "clean.xlsx")
	in := writeCSV(t, exampleCSV)

	_, errOut, err := run(t, "", "clean", in, "-o", csvOut)
	require.NoError(t, err)
	assert.Contains(t, errOut, "impute_numeric_mean: 2")

	data, err := os.ReadFile(csvOut)
	require.NoError(t, err)
	assert.Equal(t, "a,b\n1,2.5\n2,2\n3,3\n", string(data))

	_, _, err = run(t, "", "clean", in, "-o", xlsxOut)
	require.NoError(t, err)
	data, err = os.ReadFile(xlsxOut)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("PK")))
}

func TestCleanCmd_UnknownFormat(t *testing.T) {
	_, _, err := run(t, "", "clean", writeCSV(t, exampleCSV), "--format", "pdf")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown export format")
}

func TestExplainCmd(t *testing.T) {
	out, _, err := run(t, "", "explain", writeCSV(t, exampleCSV))
	require.NoError(t, err)
	assert.Contains(t, out, "Rows: 3, Columns: 2, Missing cells: 0")
	assert.Contains(t, out, "Column profile:")
}

func TestPipelineCmd(t *testing.T) {
	out, _, err := run(t, "", "pipeline", writeCSV(t, exampleCSV), "--impute-categorical")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "# Auto-generated by AutoPrep\nimport pandas as pd\n"))
}

func TestSamplesCmd(t *testing.T) {
	out, _, err := run(t, "", "samples")
	require.NoError(t, err)
	assert.Contains(t, out, "pima")
	assert.Contains(t, out, "titanic")

	out, _, err = run(t, "", "samples", "iris")
	require.NoError(t, err)
	assert.NotEmpty(t, out)

	_, _, err = run(t, "", "samples", "nope")
	assert.Error(t, err)
}

func TestInputErrors(t *testing.T) {
	_, _, err := run(t, "", "profile", filepath.Join(t.TempDir(), "missing.csv"))
	assert.Error(t, err)

	_, _, err = run(t, "", "profile", writeCSV(t, "  \n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no csv provided")

	_, _, err = run(t, "", "profile", "--max-size", "4", writeCSV(t, exampleCSV))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "data.csv: file too large")

	_, _, err = run(t, exampleCSV, "profile", "--max-size", "4", "-")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "stdin.csv: file too large")

	_, errOut, err := run(t, exampleCSV, "profile", "--max-size", fmt.Sprint(len(exampleCSV)), "-")
	require.NoError(t, err)
	assert.Empty(t, errOut)
}

func TestErrorText(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{
			name: "mapped error",
			err:  errors.New("data.csv: file too large: exceeds 4 bytes"),
			want: "Error: File exceeds maximum size limit (Code: FILE001). Split the file into smaller chunks\n  cause: data.csv: file too large: exceeds 4 bytes",
		},
		{
			name: "unmapped error",
			err:  errors.New(`unknown command "frob" for "autoprep"`),
			want: `Error: unknown command "frob" for "autoprep"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, errorText(tt.err))
		})
	}
}

func TestSaveCmd_LocalStore(t *testing.T) {
	t.Setenv("BACKEND_URL", "")
	t.Setenv("FLASK_API_URL", "")
	t.Setenv("STORE_DRIVER", "file")
	t.Setenv("STORE_PATH", filepath.Join(t.TempDir(), "store.json"))
	t.Setenv("LOG_LEVEL", "error")

	out, _, err := run(t, "", "save", writeCSV(t, exampleCSV))
	require.NoError(t, err)

	var res persist.SaveResult
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.NotEmpty(t, res.ProjectID)
	assert.NotEmpty(t, res.DatasetID)
	assert.NotEmpty(t, res.AnalysisID)

	out, _, err = run(t, "", "save", "--project", res.ProjectID, writeCSV(t, exampleCSV))
	require.NoError(t, err)
	assert.Contains(t, out, res.ProjectID)

	_, _, err = run(t, "", "save", "--project", "missing", writeCSV(t, exampleCSV))
	require.Error(t, err)
	assert.ErrorIs(t, err, persist.ErrProjectNotFound)
}
