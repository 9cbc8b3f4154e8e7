package validation_test

import (
	"os"
	"path/filepath"
	"testing"

	"fedelife/expense-extractor/internal/validation"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInputFile(t *testing.T) {
	tmpDir := t.TempDir()
	statement := filepath.Join(tmpDir, "statement.txt")
	require.NoError(t, os.WriteFile(statement, []byte("COMPRA 10,00"), 0600))
	empty := filepath.Join(tmpDir, "empty.txt")
	require.NoError(t, os.WriteFile(empty, nil, 0600))

	tests := []struct {
		name        string
		path        string
		errContains string
	}{
		{"existing file", statement, ""},
		{"blank", "  ", "input file is required"},
		{"missing", filepath.Join(tmpDir, "missing.pdf"), "does not exist"},
		{"directory", tmpDir, "not a regular file"},
		{"empty file", empty, "input file is empty"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validation.InputFile(tt.path)
			if tt.errContains == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errContains)
		})
	}
}

func TestOutputPath(t *testing.T) {
	tmpDir := t.TempDir()
	assert.NoError(t, validation.OutputPath(""))
	assert.NoError(t, validation.OutputPath("-"))
	assert.NoError(t, validation.OutputPath(filepath.Join(tmpDir, "new", "out.csv")))
	assert.Error(t, validation.OutputPath(tmpDir))
}

func TestOutputFormat(t *testing.T) {
	assert.NoError(t, validation.OutputFormat("csv"))
	assert.NoError(t, validation.OutputFormat("JSON"))
	err := validation.OutputFormat("xml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "csv, json")
}
