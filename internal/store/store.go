// Package store loads the keyword tables that drive expense validation and categorization.
package store

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"

	"fedelife/expense-extractor/internal/logging"
	"fedelife/expense-extractor/internal/models"

	"gopkg.in/yaml.v3"
)

//go:embed defaults/keywords.yaml
var defaultKeywordsYAML []byte

// KeywordSource provides keyword tables to the categorizer.
type KeywordSource interface {
	LoadKeywordTables() (models.KeywordTables, error)
}

// KeywordStore reads keyword tables from a YAML file, falling back to the built-in tables.
type KeywordStore struct {
	KeywordsFile string
	logger       logging.Logger
}

// NewKeywordStore creates a store for the given file name or path.
func NewKeywordStore(keywordsFile string, logger logging.Logger) *KeywordStore {
	return &KeywordStore{
		KeywordsFile: keywordsFile,
		logger:       logging.OrDefault(logger),
	}
}

// FindConfigFile looks for a configuration file in standard locations
func (s *KeywordStore) FindConfigFile(filename string) (string, error) {
	if filepath.IsAbs(filename) {
		if _, err := os.Stat(filename); err == nil {
			return filename, nil
		}
		return "", os.ErrNotExist
	}

	locations := []string{
		filename,
		filepath.Join("config", filename),
		filepath.Join("database", filename),
	}
	if homeDir, err := os.UserHomeDir(); err == nil {
		locations = append(locations, filepath.Join(homeDir, ".config", "expense-extractor", filename))
	}

	for _, location := range locations {
		if _, err := os.Stat(location); err == nil {
			return location, nil
		}
	}
	return "", os.ErrNotExist
}

// LoadKeywordTables reads the configured file. A missing file is not an error: the
// built-in tables are returned instead. A file that exists but does not parse is.
func (s *KeywordStore) LoadKeywordTables() (models.KeywordTables, error) {
	if s.KeywordsFile == "" {
		return DefaultKeywordTables(), nil
	}

	path, err := s.FindConfigFile(s.KeywordsFile)
	if err != nil {
		s.logger.Debug("Keywords file not found, using built-in tables",
			logging.F(logging.FieldFile, s.KeywordsFile))
		return DefaultKeywordTables(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return models.KeywordTables{}, fmt.Errorf("error reading keywords file: %w", err)
	}

	var tables models.KeywordTables
	if err := yaml.Unmarshal(data, &tables); err != nil {
		return models.KeywordTables{}, fmt.Errorf("error parsing keywords file %s: %w", path, err)
	}
	if tables.IsEmpty() {
		s.logger.Warn("Keywords file is empty, using built-in tables", logging.F(logging.FieldFile, path))
		return DefaultKeywordTables(), nil
	}
	for _, rule := range tables.Categories {
		if !models.IsCategory(rule.Name) {
			return models.KeywordTables{}, fmt.Errorf("keywords file %s: unknown category %q", path, rule.Name)
		}
	}

	s.logger.Debug("Loaded keyword tables",
		logging.F(logging.FieldFile, path),
		logging.F(logging.FieldCount, len(tables.Expense)+len(tables.Income)))
	return tables, nil
}

// SaveKeywordTables writes tables as YAML, creating parent directories as needed.
func (s *KeywordStore) SaveKeywordTables(tables models.KeywordTables) error {
	if s.KeywordsFile == "" {
		return fmt.Errorf("no keywords file configured")
	}
	if dir := filepath.Dir(s.KeywordsFile); dir != "." {
		if err := os.MkdirAll(dir, models.PermissionDirectory); err != nil {
			return fmt.Errorf("error creating directory for keywords file: %w", err)
		}
	}

	data, err := yaml.Marshal(tables)
	if err != nil {
		return fmt.Errorf("error marshaling keyword tables: %w", err)
	}
	if err := os.WriteFile(s.KeywordsFile, data, models.PermissionOutputFile); err != nil {
		return fmt.Errorf("error writing keywords file: %w", err)
	}
	return nil
}

// DefaultKeywordTables returns a fresh copy of the built-in tables.
func DefaultKeywordTables() models.KeywordTables {
	var tables models.KeywordTables
	if err := yaml.Unmarshal(defaultKeywordsYAML, &tables); err != nil {
		panic(fmt.Sprintf("built-in keyword tables do not parse: %v", err))
	}
	return tables
}
