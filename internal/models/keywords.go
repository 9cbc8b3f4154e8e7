package models

// CategoryRule assigns Name to any line containing one of Keywords.
type CategoryRule struct {
	Name     string   `yaml:"name" json:"name"`
	Keywords []string `yaml:"keywords" json:"keywords"`
}

// KeywordTables holds the polarity keyword sets and the ordered category table used
// by the expense validator. Rules are evaluated in order; the first hit wins.
type KeywordTables struct {
	Expense    []string       `yaml:"expense" json:"expense"`
	Income     []string       `yaml:"income" json:"income"`
	Categories []CategoryRule `yaml:"categories" json:"categories"`
}

// IsEmpty reports whether the tables carry no keywords at all.
func (k KeywordTables) IsEmpty() bool {
	return len(k.Expense) == 0 && len(k.Income) == 0 && len(k.Categories) == 0
}
