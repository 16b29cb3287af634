package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const rawExport = "\n" +
	"Country,Survey,Characteristic,Children overweight," +
	"Women who are overweight or obese according to BMI (>=25.0)," +
	"Men who are overweight or obese according to BMI (>=25.0)\n" +
	"India,2019-21 DHS,Total,3.4,24.0,22.9\n" +
	"India,2019-21 DHS,Residence : Urban,4.2,33.2,29.8\n" +
	"\"ICF, 2015. The DHS Program STATcompiler. http://www.statcompiler.com\",,,,,\n" +
	"India,2015-16 DHS,Residence : Rural,2.1,15.0,15.9\n" +
	"India,2005-06 DHS,Wealth quintile : Lowest,1.9,n.a.,3.5\n"

func writeRaw(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "obesity_data_raw.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func execute(args ...string) (int, string, string) {
	var stdout, stderr bytes.Buffer
	code := run(context.Background(), args, &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func TestRun_Clean(t *testing.T) {
	raw := writeRaw(t, rawExport)
	out := filepath.Join(t.TempDir(), "clean", "obesity_data_cleaned.csv")
	metrics := filepath.Join(t.TempDir(), "run.prom")

	code, stdout, stderr := execute("clean", "--input", raw, "--output", out, "--metrics", metrics, "--color", "never")
	require.Equal(t, exitOK, code, stderr)

	assert.Contains(t, stdout, "DATA QUALITY REPORT")
	assert.Contains(t, stdout, "Rows removed: 1")
	assert.Contains(t, stderr, "Removed contaminated row")
	assert.Contains(t, stderr, `"run_id"`)

	content, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Len(t, strings.Split(strings.TrimSpace(string(content)), "\n"), 5)

	_, err = os.Stat(metrics)
	assert.NoError(t, err)
}

func TestRun_CleanFailures(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		missing bool
		code    int
		stderr  string
	}{
		{
			name:    "missing input",
			missing: true,
			code:    exitPipeline,
			stderr:  "stage load_raw failed",
		},
		{
			name:   "renamed metric header",
			raw:    strings.Replace(rawExport, "Men who are overweight", "Men overweight", 1),
			code:   exitPipeline,
			stderr: "stage bind_output failed",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw := filepath.Join(t.TempDir(), "absent.csv")
			if !tt.missing {
				raw = writeRaw(t, tt.raw)
			}
			out := filepath.Join(t.TempDir(), "obesity_data_cleaned.csv")

			code, stdout, stderr := execute("clean", "--input", raw, "--output", out)
			assert.Equal(t, tt.code, code)
			assert.Contains(t, stderr, tt.stderr)
			assert.Empty(t, stdout)

			_, err := os.Stat(out)
			assert.True(t, os.IsNotExist(err), "output must not be written")
		})
	}
}

func TestRun_ConfigErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"invalid log level", []string{"clean", "--log-level", "loud"}},
		{"invalid color", []string{"clean", "--color", "sometimes"}},
		{"unknown flag", []string{"clean", "--nope"}},
		{"unknown command", []string{"scrub"}},
		{"missing config file", []string{"clean", "--config", "/nonexistent/dhsclean.yaml"}},
		{"report without file", []string{"report"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, _, stderr := execute(tt.args...)
			assert.Equal(t, exitConfig, code)
			assert.Contains(t, stderr, "Error:")
		})
	}
}

func TestRun_Report(t *testing.T) {
	raw := writeRaw(t, rawExport)
	out := filepath.Join(t.TempDir(), "obesity_data_cleaned.csv")
	code, _, stderr := execute("clean", "--input", raw, "--output", out, "--color", "never")
	require.Equal(t, exitOK, code, stderr)

	code, stdout, stderr := execute("report", out, "--color", "never")
	require.Equal(t, exitOK, code, stderr)
	assert.Contains(t, stdout, "DATA QUALITY REPORT")
	assert.Contains(t, stdout, "Rows: 4")
	assert.NotContains(t, stdout, "Rows before filtering")
}

func TestRun_ReportForeignFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "other.csv")
	require.NoError(t, os.WriteFile(path, []byte("a,b\n1,2\n"), 0644))

	code, _, stderr := execute("report", path)
	assert.Equal(t, exitPipeline, code)
	assert.Contains(t, stderr, "Error:")
}

func TestRun_Version(t *testing.T) {
	code, stdout, _ := execute("version")
	assert.Equal(t, exitOK, code)
	assert.Contains(t, stdout, "dhsclean v0.1.0")
}

func TestRun_Help(t *testing.T) {
	code, stdout, _ := execute("--help")
	assert.Equal(t, exitOK, code)
	assert.Contains(t, stdout, "clean")
	assert.Contains(t, stdout, "report")
}
