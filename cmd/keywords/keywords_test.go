package keywords

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"fedelife/expense-extractor/internal/config"
	"fedelife/expense-extractor/internal/container"
	"fedelife/expense-extractor/internal/logging"
	"fedelife/expense-extractor/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newContainer(t *testing.T) *container.Container {
	t.Helper()
	c, err := container.NewContainer(config.Default(), container.WithLogger(logging.NewMockLogger()), container.WithModelClient(nil))
	require.NoError(t, err)
	return c
}

func TestShow(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Show(newContainer(t), &buf))
	assert.Contains(t, buf.String(), "expense:")
	assert.Contains(t, buf.String(), "categories:")
}

func TestInit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "conf", "keywords.yaml")

	require.NoError(t, Init(path, false))
	tables, err := store.NewKeywordStore(path, logging.NewMockLogger()).LoadKeywordTables()
	require.NoError(t, err)
	defaults := store.DefaultKeywordTables()
	assert.Equal(t, defaults.Expense, tables.Expense)
	assert.Equal(t, defaults.Income, tables.Income)
	assert.Len(t, tables.Categories, len(defaults.Categories))

	err = Init(path, false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")

	require.NoError(t, os.Truncate(path, 0))
	require.NoError(t, Init(path, true))

	assert.Error(t, Init("", true))
}

func TestCheck(t *testing.T) {
	c := newContainer(t)

	var buf bytes.Buffer
	require.NoError(t, Check(c, "REFUND CREDIT 45.00", "45.00", &buf))
	assert.Contains(t, buf.String(), "accepted: false")
	assert.Contains(t, buf.String(), "income: true")
	assert.Contains(t, buf.String(), "amount: $U 45.00")

	buf.Reset()
	require.NoError(t, Check(c, "COMPRA TIENDA INGLESA", "1.250,00", &buf))
	assert.Contains(t, buf.String(), "accepted: true")
	assert.Contains(t, buf.String(), "category: food")
	assert.Contains(t, buf.String(), "category matched: true")
	assert.Contains(t, buf.String(), "income: false")
	assert.Contains(t, buf.String(), "amount: $U 1250.00")

	assert.Error(t, Check(c, "COMPRA", "abc", &buf))
}

func TestCheck_ReadsKeywordsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "keywords.yaml")
	require.NoError(t, os.WriteFile(path, []byte("expense:\n  - GASTO\nincome:\n  - COBRO\ncategories:\n  - name: food\n    keywords:\n      - KIOSCO\n"), 0o600))

	cfg := config.Default()
	cfg.Extraction.KeywordsFile = path
	c, err := container.NewContainer(cfg, container.WithLogger(logging.NewMockLogger()), container.WithModelClient(nil))
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, Check(c, "GASTO KIOSCO", "12,5", &buf))
	assert.Contains(t, buf.String(), "accepted: true")
	assert.Contains(t, buf.String(), "category: food")
	assert.Contains(t, buf.String(), "amount: $U 12.50")

	require.NoError(t, os.Remove(path))
	buf.Reset()
	require.NoError(t, Check(c, "GASTO KIOSCO", "12,5", &buf))
	assert.Contains(t, buf.String(), "accepted: false")
}
