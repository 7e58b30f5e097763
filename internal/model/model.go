package model

// Urgency classifies how soon an order needs handling.
type Urgency string

const (
	UrgencyNormal Urgency = "Normal"
	UrgencyMedium Urgency = "Medium"
	UrgencyHigh   Urgency = "High"
)

// ItemStatus is the validation outcome for a single line item.
type ItemStatus string

const (
	StatusValid      ItemStatus = "Valid"
	StatusNotFound   ItemStatus = "Not Found"
	StatusStockIssue ItemStatus = "Stock Issue"
	StatusMOQIssue   ItemStatus = "MOQ Issue"
	StatusAmbiguous  ItemStatus = "Ambiguous"
)

// RawLineItem is one extracted (quantity, description) pair from an email.
type RawLineItem struct {
	Quantity int    `json:"quantity"`
	RawName  string `json:"raw_name"`
}

// OrderMetadata holds everything extracted from an email besides the items.
// All fields are best-effort except OrderID, which is always minted.
type OrderMetadata struct {
	OrderID         string  `json:"order_id"`
	DeliveryDate    string  `json:"delivery_date,omitempty"`
	ShippingAddress string  `json:"shipping_address,omitempty"`
	CustomerName    string  `json:"customer_name,omitempty"`
	CustomerEmail   string  `json:"customer_email,omitempty"`
	CustomerNotes   string  `json:"customer_notes,omitempty"`
	Urgency         Urgency `json:"urgency"`
}

// ValidatedLineItem is one line item after catalog matching and policy checks.
type ValidatedLineItem struct {
	SKU           string     `json:"sku,omitempty"`
	MatchedName   string     `json:"matched_name,omitempty"`
	RequestedName string     `json:"requested_name"`
	RequestedQty  int        `json:"requested_qty"`
	Stock         int        `json:"stock"`
	MOQ           int        `json:"moq"`
	Price         float64    `json:"price"`
	LineTotal     float64    `json:"line_total"`
	MatchScore    int        `json:"match_score"`
	Description   string     `json:"description,omitempty"`
	Issue         string     `json:"issue,omitempty"`
	Status        ItemStatus `json:"status"`
}

// Alternative is one secondary catalog candidate for an ambiguous match.
type Alternative struct {
	Name  string `json:"name"`
	SKU   string `json:"sku"`
	Score int    `json:"score"`
}

// ValidationSummary aggregates validated items. TotalPrice and TotalItems
// exclude Stock Issue items; Not Found items contribute zero either way.
type ValidationSummary struct {
	Items                  []ValidatedLineItem      `json:"items"`
	TotalPrice             float64                  `json:"total_price"`
	TotalItems             int                      `json:"total_items"`
	HasIssues              bool                     `json:"has_issues"`
	AlternativeSuggestions map[string][]Alternative `json:"alternative_suggestions,omitempty"`
}

// Order pairs extracted metadata with its validation results. This is the
// unit the merger, order log and order store all operate on.
type Order struct {
	OrderDetails      OrderMetadata     `json:"order_details"`
	ValidationResults ValidationSummary `json:"validation_results"`
}

// MergedMetadata is the metadata side of a combined order. Customer names,
// addresses and delivery dates become lists because inputs may disagree.
type MergedMetadata struct {
	OrderID           string   `json:"order_id"`
	CustomerNames     []string `json:"customer_names"`
	ShippingAddresses []string `json:"shipping_addresses"`
	DeliveryDates     []string `json:"delivery_dates"`
	Urgency           Urgency  `json:"urgency"`
}

// MergedOrder is the output of combining several validated orders.
type MergedOrder struct {
	OrderDetails      MergedMetadata    `json:"order_details"`
	ValidationResults ValidationSummary `json:"validation_results"`
}
