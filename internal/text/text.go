// Package text provides the lexical primitives shared by validation and
// synthesis: tokenization, stop-word filtering, token-set similarity, and
// sentence/paragraph segmentation. All judgments in the engine are lexical;
// nothing here attempts semantic understanding.
package text

import (
	"strings"
	"unicode"
)

// stopWords are filtered out before any token-set comparison. The list is
// intentionally small; it only needs to keep glue words from dominating
// overlap ratios.
var stopWords = map[string]struct{}{
	"a": {}, "an": {}, "and": {}, "are": {}, "as": {}, "at": {}, "be": {},
	"but": {}, "by": {}, "for": {}, "from": {}, "has": {}, "have": {},
	"in": {}, "is": {}, "it": {}, "its": {}, "of": {}, "on": {}, "or": {},
	"that": {}, "the": {}, "this": {}, "to": {}, "was": {}, "we": {},
	"were": {}, "will": {}, "with": {}, "you": {}, "your": {},
}

// IsStopWord reports whether tok is a filtered glue word.
func IsStopWord(tok string) bool {
	_, ok := stopWords[tok]
	return ok
}

// Tokenize splits s into lowercase word tokens, stripping punctuation.
// Stop words are kept; callers that want them removed use SignificantTokens.
func Tokenize(s string) []string {
	return strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r) && r != '\''
	})
}

// SignificantTokens tokenizes s and drops stop words and single-character
// tokens.
func SignificantTokens(s string) []string {
	toks := Tokenize(s)
	out := toks[:0]
	for _, t := range toks {
		if len(t) <= 1 {
			continue
		}
		if _, ok := stopWords[t]; ok {
			continue
		}
		out = append(out, t)
	}
	return out
}

// Set is a token set.
type Set map[string]struct{}

// NewSet builds a Set from tokens.
func NewSet(tokens []string) Set {
	s := make(Set, len(tokens))
	for _, t := range tokens {
		s[t] = struct{}{}
	}
	return s
}

// SignificantSet is shorthand for NewSet(SignificantTokens(s)).
func SignificantSet(s string) Set {
	return NewSet(SignificantTokens(s))
}

// Contains reports whether tok is in the set.
func (s Set) Contains(tok string) bool {
	_, ok := s[tok]
	return ok
}

// Intersection returns the number of tokens present in both sets.
func (s Set) Intersection(other Set) int {
	small, large := s, other
	if len(large) < len(small) {
		small, large = large, small
	}
	n := 0
	for t := range small {
		if _, ok := large[t]; ok {
			n++
		}
	}
	return n
}

// Jaccard returns |a∩b| / |a∪b|. Two empty sets are considered identical.
func Jaccard(a, b Set) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 1.0
	}
	inter := a.Intersection(b)
	union := len(a) + len(b) - inter
	if union == 0 {
		return 0
	}
	return float64(inter) / float64(union)
}

// Overlap returns the overlap coefficient |a∩b| / min(|a|, |b|).
// Returns 0 when either set is empty.
func Overlap(a, b Set) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	min := len(a)
	if len(b) < min {
		min = len(b)
	}
	return float64(a.Intersection(b)) / float64(min)
}

// DuplicationRatio returns the fraction of tokens that are repeats of an
// earlier token: 0 for all-distinct input, approaching 1 for heavy
// repetition. Empty input scores 0.
func DuplicationRatio(tokens []string) float64 {
	if len(tokens) == 0 {
		return 0
	}
	seen := make(map[string]struct{}, len(tokens))
	for _, t := range tokens {
		seen[t] = struct{}{}
	}
	return 1 - float64(len(seen))/float64(len(tokens))
}

// SplitSentences splits s on sentence-terminating punctuation. Trailing
// fragments without a terminator are kept as a final sentence.
func SplitSentences(s string) []string {
	var out []string
	var b strings.Builder
	for _, r := range s {
		b.WriteRune(r)
		if r == '.' || r == '!' || r == '?' {
			if sent := strings.TrimSpace(b.String()); sent != "" {
				out = append(out, sent)
			}
			b.Reset()
		}
	}
	if sent := strings.TrimSpace(b.String()); sent != "" {
		out = append(out, sent)
	}
	return out
}

// SplitParagraphs splits s on blank lines, trimming each paragraph and
// dropping empty ones.
func SplitParagraphs(s string) []string {
	var out []string
	for _, p := range strings.Split(strings.ReplaceAll(s, "\r\n", "\n"), "\n\n") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// negationMarkers precede a token to flip its polarity for the purposes of
// the lexical contradiction check.
var negationMarkers = map[string]struct{}{
	"not": {}, "no": {}, "never": {}, "without": {}, "don't": {},
	"doesn't": {}, "won't": {}, "cannot": {}, "can't": {}, "shouldn't": {},
	"avoid": {},
}

// NegatedTokens returns the set of significant tokens in s that appear
// immediately after a negation marker.
func NegatedTokens(s string) Set {
	toks := Tokenize(s)
	out := make(Set)
	for i := 1; i < len(toks); i++ {
		if _, neg := negationMarkers[toks[i-1]]; !neg {
			continue
		}
		t := toks[i]
		if len(t) <= 3 {
			continue
		}
		if _, stop := stopWords[t]; stop {
			continue
		}
		out[t] = struct{}{}
	}
	return out
}
