package match

import (
	"sort"
	"strings"
	"unicode"

	fuzzy "github.com/paul-mannino/go-fuzzywuzzy"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"ordintake/internal/catalog"
)

// Candidate is one ranked catalog match with a 0-100 similarity score.
type Candidate struct {
	Entry catalog.Entry
	Score int
}

// Matcher fuzzy-matches free-text product descriptions against the catalog.
// Scoring tolerates token reordering, partial words, diacritics and case:
// both sides are accent-folded and lowercased before the weighted-ratio
// comparison. Safe for concurrent use; the catalog never changes.
type Matcher struct {
	cat       *catalog.Catalog
	normNames []string
}

func NewMatcher(cat *catalog.Catalog) *Matcher {
	m := &Matcher{cat: cat}
	m.normNames = make([]string, cat.Len())
	for i, e := range cat.Entries() {
		m.normNames[i] = Normalize(e.ProductName)
	}
	return m
}

// Top returns up to limit candidates ordered by descending score, ties
// broken by catalog order.
func (m *Matcher) Top(query string, limit int) []Candidate {
	if limit <= 0 || m.cat.Len() == 0 {
		return nil
	}
	q := Normalize(query)
	cands := make([]Candidate, 0, m.cat.Len())
	for i, e := range m.cat.Entries() {
		cands = append(cands, Candidate{Entry: e, Score: fuzzy.WRatio(q, m.normNames[i])})
	}
	sort.SliceStable(cands, func(a, b int) bool { return cands[a].Score > cands[b].Score })
	if len(cands) > limit {
		cands = cands[:limit]
	}
	return cands
}

func isMn(r rune) bool {
	return unicode.Is(unicode.Mn, r)
}

// Normalize lowercases and strips diacritics so that e.g. "STRÅDAL" and
// "stradal" compare equal.
func Normalize(s string) string {
	t := transform.Chain(norm.NFD, transform.RemoveFunc(isMn), norm.NFC)
	folded, _, err := transform.String(t, s)
	if err != nil {
		folded = s
	}
	return strings.ToLower(strings.TrimSpace(folded))
}
