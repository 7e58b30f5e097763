package extract

import (
	"math"
	"strconv"
	"strings"
	"time"
	"unicode"

	"ordintake/internal/model"
	"ordintake/internal/ner"
)

// Now returns the current time. Split for testability.
var Now = func() time.Time { return time.Now() }

// Extractor turns raw email text into line items plus order metadata.
// Extraction is total: malformed input yields empty fields, never an error.
type Extractor struct {
	ner ner.Recognizer
}

// New creates an Extractor. r may be nil when no NER capability is
// available; name extraction then relies on signature patterns only.
func New(r ner.Recognizer) *Extractor {
	return &Extractor{ner: r}
}

// Extract applies the pattern library to text and returns the extracted
// items together with the order metadata, including a freshly minted order
// ID. Every metadata field except the order ID is best-effort.
func (e *Extractor) Extract(text string) ([]model.RawLineItem, model.OrderMetadata) {
	items := extractItems(text)

	md := model.OrderMetadata{}
	md.DeliveryDate = extractDeliveryDate(text)
	md.ShippingAddress = extractAddress(text)
	md.CustomerName = extractCustomerName(e.ner, text)
	md.CustomerEmail = emailRe.FindString(text)
	md.CustomerNotes = extractNotes(text)
	md.Urgency = detectUrgency(text, md.DeliveryDate)
	md.OrderID = GenerateOrderID(md.CustomerName)
	return items, md
}

func extractItems(text string) []model.RawLineItem {
	var items []model.RawLineItem
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		for _, p := range itemPatterns {
			m := p.re.FindStringSubmatch(line)
			if m == nil {
				continue
			}
			qty, err := strconv.Atoi(m[p.qtyIdx])
			if err != nil || qty <= 0 {
				break
			}
			name := strings.TrimSpace(m[p.nameIdx])
			if name == "" {
				break
			}
			items = append(items, model.RawLineItem{Quantity: qty, RawName: name})
			break // one item per line at most
		}
	}
	return items
}

func extractDeliveryDate(text string) string {
	for _, re := range datePatterns {
		if m := re.FindStringSubmatch(text); m != nil {
			return strings.TrimSpace(m[1])
		}
	}
	return ""
}

// extractAddress captures the remainder of the labeled line plus any
// continuation lines, stopping at a blank line or a line starting with a
// capital letter (assumed to be the next sentence, not the address).
func extractAddress(text string) string {
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		m := addressLabelRe.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		block := []string{}
		if first := strings.TrimSpace(m[1]); first != "" {
			block = append(block, first)
		}
		for j := i + 1; j < len(lines); j++ {
			l := strings.TrimSpace(lines[j])
			if l == "" {
				break
			}
			r := []rune(l)[0]
			if unicode.IsUpper(r) && len(block) > 0 {
				break
			}
			block = append(block, l)
		}
		if len(block) == 0 {
			return ""
		}
		return strings.Join(block, "\n")
	}
	return ""
}

func extractCustomerName(r ner.Recognizer, text string) string {
	if name := ner.FirstPerson(r, text); name != "" {
		return name
	}
	for _, re := range signaturePatterns {
		if m := re.FindStringSubmatch(text); m != nil {
			return m[1]
		}
	}
	return ""
}

func extractNotes(text string) string {
	for _, re := range notesLabelPatterns {
		if m := re.FindStringSubmatch(text); m != nil {
			return strings.TrimSpace(m[1])
		}
	}
	for _, re := range notesRequestPatterns {
		m := re.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		candidate := strings.TrimSpace(m[1])
		if containsItemWord(candidate) {
			continue
		}
		return candidate
	}
	return ""
}

func containsItemWord(s string) bool {
	low := strings.ToLower(s)
	for _, w := range itemWords {
		if strings.Contains(low, w) {
			return true
		}
	}
	return false
}

func detectUrgency(text string, deliveryDate string) model.Urgency {
	if urgencyRe.MatchString(text) {
		return model.UrgencyHigh
	}
	if deliveryDate != "" {
		// Date patterns match case-insensitively but time.Parse does not,
		// so normalize the month's case before parsing.
		normalized := normalizeMonthCase(deliveryDate)
		for _, layout := range deliveryDateLayouts {
			d, err := time.Parse(layout, normalized)
			if err != nil {
				continue
			}
			days := int(math.Floor(d.Sub(Now()).Hours() / 24))
			if days >= 0 && days < 7 {
				return model.UrgencyMedium
			}
			break
		}
		// Unparseable dates carry no urgency signal.
	}
	return model.UrgencyNormal
}

// normalizeMonthCase upcases the first letter of the leading month word and
// lowercases the rest, so "june 10, 2025" and "JUNE 10, 2025" both parse.
func normalizeMonthCase(s string) string {
	r := []rune(s)
	for i := range r {
		if !unicode.IsLetter(r[i]) {
			break
		}
		if i == 0 {
			r[i] = unicode.ToUpper(r[i])
		} else {
			r[i] = unicode.ToLower(r[i])
		}
	}
	return string(r)
}

// GenerateOrderID mints an order ID from an optional customer name and the
// current time at minute resolution. Two calls in the same minute with the
// same name return the same ID; uniqueness is timestamp-dependent.
func GenerateOrderID(customerName string) string {
	ts := Now().Format("200601021504")
	if customerName == "" {
		return "ORDER-" + ts
	}
	var b strings.Builder
	n := 0
	for _, r := range customerName {
		if n >= 5 {
			break
		}
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(unicode.ToUpper(r))
			n++
		}
	}
	return b.String() + "-" + ts
}
