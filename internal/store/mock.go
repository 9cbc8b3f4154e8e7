package store

import "fedelife/expense-extractor/internal/models"

// MockKeywordStore returns fixed tables, or Err when set.
type MockKeywordStore struct {
	Tables models.KeywordTables
	Err    error
}

// LoadKeywordTables returns the configured tables or error.
func (m *MockKeywordStore) LoadKeywordTables() (models.KeywordTables, error) {
	if m.Err != nil {
		return models.KeywordTables{}, m.Err
	}
	return m.Tables, nil
}
