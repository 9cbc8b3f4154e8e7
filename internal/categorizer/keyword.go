package categorizer

import (
	"regexp"
	"strings"

	"fedelife/expense-extractor/internal/textutils"
)

// keywordPattern is one compiled keyword. Words inside a keyword may be separated by
// any run of non-alphanumeric characters, so "DEB AUT" also matches "DEB. AUT.".
type keywordPattern struct {
	keyword string
	re      *regexp.Regexp
}

// KeywordSet matches whole-word keywords against accent-folded upper-case text.
type KeywordSet struct {
	patterns []keywordPattern
}

// NewKeywordSet compiles keywords in order. Blank entries are skipped.
func NewKeywordSet(keywords []string) *KeywordSet {
	set := &KeywordSet{}
	for _, kw := range keywords {
		words := strings.FieldsFunc(textutils.FoldKeyword(kw), func(r rune) bool {
			return !isAlnum(r) && r != '&'
		})
		if len(words) == 0 {
			continue
		}
		quoted := make([]string, len(words))
		for i, w := range words {
			quoted[i] = regexp.QuoteMeta(w)
		}
		expr := `(?:^|[^A-Z0-9])` + strings.Join(quoted, `[^A-Z0-9]+`) + `(?:$|[^A-Z0-9])`
		set.patterns = append(set.patterns, keywordPattern{keyword: kw, re: regexp.MustCompile(expr)})
	}
	return set
}

// FirstMatch returns the first keyword, in table order, found in folded text.
func (s *KeywordSet) FirstMatch(folded string) (string, bool) {
	if s == nil {
		return "", false
	}
	for _, p := range s.patterns {
		if p.re.MatchString(folded) {
			return p.keyword, true
		}
	}
	return "", false
}

// Len returns the number of compiled keywords.
func (s *KeywordSet) Len() int {
	if s == nil {
		return 0
	}
	return len(s.patterns)
}

func isAlnum(r rune) bool {
	return (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || (r >= 'a' && r <= 'z')
}
