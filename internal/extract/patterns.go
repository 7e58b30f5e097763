package extract

import "regexp"

// The extraction strategy is an ordered pattern list per field: try each
// pattern in order, take the first match, stop. Patterns are static data;
// all state lives in the caller.

// itemPattern matches one line item on a single line. Group indexes differ
// because the "Qty:" form puts the quantity on the right.
type itemPattern struct {
	re      *regexp.Regexp
	qtyIdx  int
	nameIdx int
}

var itemPatterns = []itemPattern{
	// "9 x Coffee STRÅDAL 620", optionally bulleted
	{regexp.MustCompile(`(?i)[-*]?\s*(\d+)\s*x\s+(.+)`), 1, 2},
	// "Bed TRÄNBERG 858 – Qty: 2"
	{regexp.MustCompile(`(?i)[-*]?\s*(.+?)\s*[–-]\s*(?:Qty|Quantity):\s*(\d+)`), 2, 1},
	// "3 units of Bar FJÄRMARK 344"
	{regexp.MustCompile(`(?i)(\d+)\s+(?:pieces|units?)\s+of\s+(.+)`), 1, 2},
	// generic "quantity x product" fallback
	{regexp.MustCompile(`(?i)(\d+)\s*x\s+(.+)`), 1, 2},
}

// Delivery-date phrases. Group 1 is always the verbatim date text.
var datePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)(?:delivery|deliver|ship|get)\s+(?:by|before|on|to\s+me\s+by)\s+([A-Za-z]+\s+\d{1,2},?\s+\d{4})`),
	regexp.MustCompile(`(?i)(?:delivery|deliver|ship)\s+date:\s*([A-Za-z]+\s+\d{1,2},?\s+\d{4})`),
	regexp.MustCompile(`(?i)requested\s+delivery\s+date:\s*([A-Za-z]+\s+\d{1,2},?\s+\d{4})`),
	regexp.MustCompile(`(?i)(?:by|before)\s+([A-Za-z]+\s+\d{1,2},?\s+\d{4})`),
}

// addressLabelRe finds the label that introduces a shipping address; the
// captured remainder of the line is the first address line. Continuation
// lines are handled by the extractor since RE2 has no lookahead to express
// "stop before a capitalized line".
var addressLabelRe = regexp.MustCompile(`(?i)(?:ship\s+to|delivery\s+address|send\s+to):\s*(.*)`)

// Notes labels, then request phrases as fallback. Label captures run to the
// next blank line; request-phrase captures containing itemWords are rejected
// because they describe the order itself, not a genuine note.
var notesLabelPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)(?:notes?|comments?|additional\s+information):\s*(.+(?:\n.+)*)`),
	regexp.MustCompile(`(?i)(?:please\s+note|note\s+that)\s+(.+(?:\n.+)*)`),
}

var notesRequestPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)(?:please|kindly)\s+([^.!?\n]+(?:\s+and\s+[^.!?\n]+)?)[.!?]`),
	regexp.MustCompile(`(?i)(?:would\s+like|need)\s+([^.!?\n]+(?:\s+and\s+[^.!?\n]+)?)[.!?]`),
}

var itemWords = []string{"order", "deliver", "ship", "send", "purchase"}

// Signature and sender patterns for the customer name fallback.
var signaturePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?:Thanks|Regards|Sincerely|Cheers|Best),?\s*\n\s*([A-Z][a-z]+ [A-Z][a-z]+)`),
	regexp.MustCompile(`(?:From|Sent by):?\s*([A-Z][a-z]+ [A-Z][a-z]+)`),
}

var emailRe = regexp.MustCompile(`[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}`)

// Urgency keywords; any whole-word hit means High.
var urgencyRe = regexp.MustCompile(`(?i)\b(?:urgent|asap|as soon as possible|emergency|quickly|rush|immediate|priority)\b`)

// Accepted layouts for date-based urgency. Failures are silently skipped.
var deliveryDateLayouts = []string{"January 2, 2006", "January 2 2006"}
