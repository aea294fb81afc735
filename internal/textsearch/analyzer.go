// Package textsearch is a small in-process approximation of Postgres full-text
// search: documents become a set of lexemes, plain queries become the AND of
// their lexemes, and a query with no lexemes left after stop-word removal
// matches nothing, as plainto_tsquery does.
//
// It backs the memory search engine. Lexemes come from the same Snowball
// english and spanish stemmers the Postgres configurations use, so a query
// that matches a document in Postgres matches it here too.
package textsearch

import (
	"strings"
	"unicode"

	"github.com/kljensen/snowball/english"
	"github.com/kljensen/snowball/spanish"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/rodruizronald/tw-search/internal/jobs"
)

// Vector is the set of lexemes of a document.
type Vector map[string]struct{}

// Query is a parsed plain query: every lexeme must be present.
type Query []string

// Analyze splits text into lexemes for lang: lower-cased, stop words
// dropped, Snowball-stemmed, accents folded.
func Analyze(lang jobs.Language, text string) []string {
	stops := stopWords[lang]
	var out []string
	for _, tok := range tokenize(text) {
		if _, stop := stops[foldAccents(tok)]; stop {
			continue
		}
		out = append(out, stem(lang, tok))
	}
	return out
}

// NewVector analyzes every text under lang and merges the lexemes.
func NewVector(lang jobs.Language, texts ...string) Vector {
	v := make(Vector)
	for _, t := range texts {
		for _, lex := range Analyze(lang, t) {
			v[lex] = struct{}{}
		}
	}
	return v
}

// ParsePlain parses a free-text query the way plainto_tsquery does:
// punctuation is ignored and the remaining lexemes are AND-ed.
func ParsePlain(lang jobs.Language, q string) Query {
	lexemes := Analyze(lang, q)
	seen := make(map[string]struct{}, len(lexemes))
	out := make(Query, 0, len(lexemes))
	for _, l := range lexemes {
		if _, dup := seen[l]; dup {
			continue
		}
		seen[l] = struct{}{}
		out = append(out, l)
	}
	return out
}

// Empty reports whether the query has no lexemes (blank or stop words only).
func (q Query) Empty() bool { return len(q) == 0 }

// Matches reports whether every lexeme of q is in v. An empty query never
// matches.
func (v Vector) Matches(q Query) bool {
	if q.Empty() {
		return false
	}
	for _, l := range q {
		if _, ok := v[l]; !ok {
			return false
		}
	}
	return true
}

func tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

func foldAccents(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	result, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return result
}

// stem runs the Snowball stemmer of lang on an unfolded token. Stemming sees
// the accents (the Spanish suffix rules depend on them); the lexeme does not.
func stem(lang jobs.Language, w string) string {
	switch lang {
	case jobs.LanguageSpanish:
		w = spanish.Stem(w, false)
	default:
		w = english.Stem(w, false)
	}
	return foldAccents(w)
}
