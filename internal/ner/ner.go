package ner

import "regexp"

// Label classifies a recognized entity.
type Label string

const (
	LabelPerson Label = "PERSON"
)

// Entity is one recognized span of text with a type label.
type Entity struct {
	Text  string
	Label Label
}

// Recognizer finds named entities in free text. Implementations must be
// best-effort: no entities is a valid answer, never an error.
type Recognizer interface {
	Entities(text string) []Entity
}

// Noop is the default recognizer used when no NER capability is available.
type Noop struct{}

func (Noop) Entities(string) []Entity { return nil }

// Rule is a regex-based person recognizer. It only knows one shape —
// two adjacent capitalized words — so it over- and under-matches, which is
// acceptable: callers fall back to signature patterns anyway.
type Rule struct{}

var personRe = regexp.MustCompile(`\b([A-Z][a-z]+ [A-Z][a-z]+)\b`)

func (Rule) Entities(text string) []Entity {
	var ents []Entity
	for _, m := range personRe.FindAllString(text, -1) {
		ents = append(ents, Entity{Text: m, Label: LabelPerson})
	}
	return ents
}

// FirstPerson returns the first PERSON entity found by r, or "" when the
// recognizer is nil or finds none.
func FirstPerson(r Recognizer, text string) string {
	if r == nil {
		return ""
	}
	for _, e := range r.Entities(text) {
		if e.Label == LabelPerson {
			return e.Text
		}
	}
	return ""
}
