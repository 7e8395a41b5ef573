package usecase

import (
	"strings"

	"golang.org/x/text/cases"

	"txn-classifier/internal/domain"
)

// fold case-folds text for comparisons. cases.Caser is not safe for
// concurrent use, so each call gets its own.
func fold(s string) string {
	return cases.Fold().String(strings.TrimSpace(s))
}

// patternList is a pre-folded list of keywords taken from the rule table.
type patternList []string

func newPatternList(words ...[]string) patternList {
	var p patternList
	for _, list := range words {
		for _, w := range list {
			if f := fold(w); f != "" {
				p = append(p, f)
			}
		}
	}
	return p
}

// containsAny reports whether any keyword occurs in the already folded s.
func (p patternList) containsAny(s string) bool {
	if s == "" {
		return false
	}
	for _, w := range p {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}

// equalsAny reports whether s exactly matches one of the keywords.
func (p patternList) equalsAny(s string) bool {
	if s == "" {
		return false
	}
	for _, w := range p {
		if s == w {
			return true
		}
	}
	return false
}

// foldedText holds the folded text fields of a transaction so that each
// field is folded once per classification.
type foldedText struct {
	bank     string
	merchant string
	method   string
	message  string
	category string
}

func foldTransaction(t domain.Transaction) foldedText {
	return foldedText{
		bank:     fold(t.Bank),
		merchant: fold(t.Merchant),
		method:   fold(t.Method),
		message:  fold(t.RawMessage),
		category: fold(t.Category),
	}
}
