package validate

import (
	"strings"
	"testing"

	"ordintake/internal/catalog"
	"ordintake/internal/match"
	"ordintake/internal/model"
)

// fakeMatcher returns scripted candidates per query.
type fakeMatcher struct {
	byQuery map[string][]match.Candidate
}

func (f *fakeMatcher) Top(query string, limit int) []match.Candidate {
	cands := f.byQuery[query]
	if len(cands) > limit {
		cands = cands[:limit]
	}
	return cands
}

func chair(score int) match.Candidate {
	return match.Candidate{
		Entry: catalog.Entry{SKU: "SKU-1", ProductName: "Office Chair", Stock: 10, MOQ: 2, Price: 50.0, Description: "a chair"},
		Score: score,
	}
}

func TestValidate_Empty(t *testing.T) {
	v := New(&fakeMatcher{}, 0)
	s := v.Validate(nil)
	if s.TotalPrice != 0 || s.TotalItems != 0 || s.HasIssues {
		t.Fatalf("unexpected summary: %+v", s)
	}
	if len(s.Items) != 0 {
		t.Fatalf("items should be empty: %+v", s.Items)
	}
}

func TestValidate_ExactValid(t *testing.T) {
	fm := &fakeMatcher{byQuery: map[string][]match.Candidate{"Office Chair": {chair(100)}}}
	s := New(fm, 0).Validate([]model.RawLineItem{{Quantity: 4, RawName: "Office Chair"}})

	if len(s.Items) != 1 {
		t.Fatalf("want 1 item, got %+v", s.Items)
	}
	it := s.Items[0]
	if it.Status != model.StatusValid || it.Issue != "" {
		t.Fatalf("unexpected item: %+v", it)
	}
	if it.SKU != "SKU-1" || it.MatchScore != 100 || it.LineTotal != 200.0 {
		t.Fatalf("unexpected item: %+v", it)
	}
	if s.TotalPrice != 200.0 || s.TotalItems != 4 || s.HasIssues {
		t.Fatalf("unexpected summary: %+v", s)
	}
}

func TestValidate_NotFoundBelowThreshold(t *testing.T) {
	fm := &fakeMatcher{byQuery: map[string][]match.Candidate{"mystery item": {chair(42)}}}
	s := New(fm, 70).Validate([]model.RawLineItem{{Quantity: 3, RawName: "mystery item"}})

	it := s.Items[0]
	if it.Status != model.StatusNotFound {
		t.Fatalf("want Not Found, got %+v", it)
	}
	if it.SKU != "" || it.MatchedName != "" || it.Price != 0 || it.LineTotal != 0 || it.MatchScore != 0 {
		t.Fatalf("not-found item must be zeroed: %+v", it)
	}
	if it.Issue != "Product not found in catalog" {
		t.Fatalf("issue: %q", it.Issue)
	}
	if !s.HasIssues || s.TotalPrice != 0 || s.TotalItems != 0 {
		t.Fatalf("unexpected summary: %+v", s)
	}
}

func TestValidate_StockIssueExcludedFromTotals(t *testing.T) {
	fm := &fakeMatcher{byQuery: map[string][]match.Candidate{"Office Chair": {chair(100)}}}
	s := New(fm, 0).Validate([]model.RawLineItem{{Quantity: 11, RawName: "Office Chair"}})

	it := s.Items[0]
	if it.Status != model.StatusStockIssue {
		t.Fatalf("want Stock Issue, got %+v", it)
	}
	if !strings.Contains(it.Issue, "requested: 11") || !strings.Contains(it.Issue, "available: 10") {
		t.Fatalf("issue should name quantities: %q", it.Issue)
	}
	if s.TotalPrice != 0 || s.TotalItems != 0 {
		t.Fatalf("stock-issue item must not count toward totals: %+v", s)
	}
	if !s.HasIssues {
		t.Fatalf("has_issues must be set")
	}
}

func TestValidate_MOQIssueCountsTowardTotals(t *testing.T) {
	fm := &fakeMatcher{byQuery: map[string][]match.Candidate{"Office Chair": {chair(100)}}}
	s := New(fm, 0).Validate([]model.RawLineItem{{Quantity: 1, RawName: "Office Chair"}})

	it := s.Items[0]
	if it.Status != model.StatusMOQIssue {
		t.Fatalf("want MOQ Issue, got %+v", it)
	}
	if !strings.Contains(it.Issue, "minimum order quantity of 2") {
		t.Fatalf("issue: %q", it.Issue)
	}
	if s.TotalPrice != 50.0 || s.TotalItems != 1 {
		t.Fatalf("moq items still count toward totals: %+v", s)
	}
}

func TestValidate_StockCheckedBeforeMOQ(t *testing.T) {
	// qty above stock and below MOQ at once: stock wins.
	c := match.Candidate{Entry: catalog.Entry{SKU: "SKU-9", ProductName: "Rare", Stock: 0, MOQ: 5, Price: 10}, Score: 100}
	fm := &fakeMatcher{byQuery: map[string][]match.Candidate{"Rare": {c}}}
	s := New(fm, 0).Validate([]model.RawLineItem{{Quantity: 2, RawName: "Rare"}})
	if s.Items[0].Status != model.StatusStockIssue {
		t.Fatalf("stock check must run first: %+v", s.Items[0])
	}
}

func TestValidate_AmbiguousMatch(t *testing.T) {
	alt := match.Candidate{Entry: catalog.Entry{SKU: "SKU-2", ProductName: "Office Desk", Stock: 10, MOQ: 1, Price: 80}, Score: 75}
	low := match.Candidate{Entry: catalog.Entry{SKU: "SKU-3", ProductName: "Stool", Stock: 10, MOQ: 1, Price: 20}, Score: 50}
	fm := &fakeMatcher{byQuery: map[string][]match.Candidate{"office furniture": {chair(80), alt, low}}}
	s := New(fm, 70).Validate([]model.RawLineItem{{Quantity: 4, RawName: "office furniture"}})

	it := s.Items[0]
	if it.Status != model.StatusAmbiguous || it.Issue != "Ambiguous match, please verify" {
		t.Fatalf("unexpected item: %+v", it)
	}
	alts := s.AlternativeSuggestions["office furniture"]
	if len(alts) != 1 || alts[0].SKU != "SKU-2" || alts[0].Score != 75 {
		t.Fatalf("alternatives must only include candidates above threshold: %+v", alts)
	}
	if !s.HasIssues {
		t.Fatalf("has_issues must be set")
	}
	// totals still include ambiguous items
	if s.TotalPrice != 200.0 || s.TotalItems != 4 {
		t.Fatalf("unexpected totals: %+v", s)
	}
}

func TestValidate_AmbiguityNeverOverridesStockIssue(t *testing.T) {
	alt := match.Candidate{Entry: catalog.Entry{SKU: "SKU-2", ProductName: "Office Desk", Stock: 10, MOQ: 1, Price: 80}, Score: 75}
	fm := &fakeMatcher{byQuery: map[string][]match.Candidate{"office furniture": {chair(80), alt}}}
	s := New(fm, 70).Validate([]model.RawLineItem{{Quantity: 99, RawName: "office furniture"}})

	it := s.Items[0]
	if it.Status != model.StatusStockIssue {
		t.Fatalf("stock issue must be kept: %+v", it)
	}
	if !strings.Contains(it.Issue, "Insufficient stock") {
		t.Fatalf("issue must stay the stock issue: %q", it.Issue)
	}
	// alternatives are still recorded for the caller
	if len(s.AlternativeSuggestions["office furniture"]) != 1 {
		t.Fatalf("alternatives missing: %+v", s.AlternativeSuggestions)
	}
}

func TestValidate_HighScoreSkipsAmbiguity(t *testing.T) {
	alt := match.Candidate{Entry: catalog.Entry{SKU: "SKU-2", ProductName: "Office Desk"}, Score: 85}
	fm := &fakeMatcher{byQuery: map[string][]match.Candidate{"Office Chair": {chair(95), alt}}}
	s := New(fm, 70).Validate([]model.RawLineItem{{Quantity: 4, RawName: "Office Chair"}})
	if s.Items[0].Status != model.StatusValid {
		t.Fatalf("score >= 90 must not be ambiguous: %+v", s.Items[0])
	}
	if len(s.AlternativeSuggestions) != 0 {
		t.Fatalf("no suggestions expected: %+v", s.AlternativeSuggestions)
	}
}

func TestValidate_InjectedThreshold(t *testing.T) {
	fm := &fakeMatcher{byQuery: map[string][]match.Candidate{"Office Chair": {chair(60)}}}
	if s := New(fm, 50).Validate([]model.RawLineItem{{Quantity: 4, RawName: "Office Chair"}}); s.Items[0].Status == model.StatusNotFound {
		t.Fatalf("score 60 should pass threshold 50: %+v", s.Items[0])
	}
	if s := New(fm, 70).Validate([]model.RawLineItem{{Quantity: 4, RawName: "Office Chair"}}); s.Items[0].Status != model.StatusNotFound {
		t.Fatalf("score 60 should fail threshold 70: %+v", s.Items[0])
	}
}
