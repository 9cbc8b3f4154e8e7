package recovercmd

import (
	"path/filepath"
	"strings"
	"testing"

	"fedelife/expense-extractor/internal/config"
	"fedelife/expense-extractor/internal/container"
	"fedelife/expense-extractor/internal/jsonrecovery"
	"fedelife/expense-extractor/internal/logging"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRun(t *testing.T) {
	c, err := container.NewContainer(config.Default(), container.WithLogger(logging.NewMockLogger()), container.WithModelClient(nil))
	require.NoError(t, err)

	result, err := Run(c, "", strings.NewReader(`{"expenses": [{"description": "Farmacia", "amount": 320}]}`))
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, jsonrecovery.StageDirect, result.Stage)
	assert.Len(t, result.Expenses, 1)

	result, err = Run(c, "-", strings.NewReader("nothing useful"))
	require.NoError(t, err)
	assert.False(t, result.Success)

	_, err = Run(c, filepath.Join(t.TempDir(), "missing.json"), nil)
	assert.Error(t, err)
}
