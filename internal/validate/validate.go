package validate

import (
	"fmt"
	"math"

	"ordintake/internal/match"
	"ordintake/internal/model"
)

const (
	// DefaultMatchThreshold is the minimum score for a usable match.
	DefaultMatchThreshold = 70
	// DefaultAmbiguityCutoff is the score below which secondary candidates
	// are surfaced as alternatives.
	DefaultAmbiguityCutoff = 90

	maxCandidates = 3
)

// Matcher supplies ranked catalog candidates. Satisfied by *match.Matcher;
// tests inject fakes.
type Matcher interface {
	Top(query string, limit int) []match.Candidate
}

// Validator checks extracted line items against the catalog and prices them.
type Validator struct {
	matcher         Matcher
	matchThreshold  int
	ambiguityCutoff int
}

// New creates a Validator with the given match threshold. Pass 0 to use
// DefaultMatchThreshold.
func New(m Matcher, matchThreshold int) *Validator {
	if matchThreshold <= 0 {
		matchThreshold = DefaultMatchThreshold
	}
	return &Validator{matcher: m, matchThreshold: matchThreshold, ambiguityCutoff: DefaultAmbiguityCutoff}
}

// Validate resolves each item independently and aggregates a priced summary.
// Totals exclude Stock Issue items; Not Found items contribute zero. The
// output item order equals the input order.
func (v *Validator) Validate(items []model.RawLineItem) model.ValidationSummary {
	summary := model.ValidationSummary{
		Items:                  []model.ValidatedLineItem{},
		AlternativeSuggestions: map[string][]model.Alternative{},
	}

	for _, item := range items {
		cands := v.matcher.Top(item.RawName, maxCandidates)
		if len(cands) == 0 || cands[0].Score < v.matchThreshold {
			summary.Items = append(summary.Items, model.ValidatedLineItem{
				RequestedName: item.RawName,
				RequestedQty:  item.Quantity,
				Issue:         "Product not found in catalog",
				Status:        model.StatusNotFound,
			})
			summary.HasIssues = true
			continue
		}

		best := cands[0]
		vi := model.ValidatedLineItem{
			SKU:           best.Entry.SKU,
			MatchedName:   best.Entry.ProductName,
			RequestedName: item.RawName,
			RequestedQty:  item.Quantity,
			Stock:         best.Entry.Stock,
			MOQ:           best.Entry.MOQ,
			Price:         best.Entry.Price,
			LineTotal:     best.Entry.Price * float64(item.Quantity),
			MatchScore:    best.Score,
			Description:   best.Entry.Description,
			Status:        model.StatusValid,
		}

		// Stock first, then MOQ; the two never apply together.
		if vi.Stock < vi.RequestedQty {
			vi.Issue = fmt.Sprintf("Insufficient stock (requested: %d, available: %d)", vi.RequestedQty, vi.Stock)
			vi.Status = model.StatusStockIssue
			summary.HasIssues = true
		} else if vi.RequestedQty < vi.MOQ {
			vi.Issue = fmt.Sprintf("Below minimum order quantity of %d", vi.MOQ)
			vi.Status = model.StatusMOQIssue
			summary.HasIssues = true
		}

		// Ambiguity is independent of the stock/MOQ branch, but never
		// overwrites an issue already set there.
		if best.Score < v.ambiguityCutoff {
			var alts []model.Alternative
			for _, c := range cands[1:] {
				if c.Score >= v.matchThreshold {
					alts = append(alts, model.Alternative{Name: c.Entry.ProductName, SKU: c.Entry.SKU, Score: c.Score})
				}
			}
			if len(alts) > 0 {
				summary.AlternativeSuggestions[item.RawName] = alts
				if vi.Issue == "" {
					vi.Issue = "Ambiguous match, please verify"
					vi.Status = model.StatusAmbiguous
					summary.HasIssues = true
				}
			}
		}

		summary.Items = append(summary.Items, vi)
		if vi.Status != model.StatusStockIssue {
			summary.TotalItems += vi.RequestedQty
			summary.TotalPrice += vi.LineTotal
		}
	}

	summary.TotalPrice = Round2(summary.TotalPrice)
	return summary
}

// Round2 rounds to two decimal places for wire-format totals.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}
