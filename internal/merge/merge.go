package merge

import (
	"ordintake/internal/extract"
	"ordintake/internal/model"
	"ordintake/internal/validate"
)

// Orders combines several validated orders into one. Metadata fields are
// unioned with first-seen order preserved. Urgency is High if any input is
// High, else Normal: Medium is deliberately not propagated, since a merged
// order spans customers and only a hard urgency signal should survive.
//
// Items are grouped by sku; items without a sku cannot be reconciled and are
// dropped. Quantities are summed, the line total is recomputed from the
// first-seen price, and the status folds to the first non-Valid status
// encountered. A later Valid occurrence never upgrades a downgraded item.
func Orders(orders []model.Order) model.MergedOrder {
	details := model.MergedMetadata{
		OrderID:           "MERGED-" + extract.GenerateOrderID(""),
		CustomerNames:     []string{},
		ShippingAddresses: []string{},
		DeliveryDates:     []string{},
		Urgency:           model.UrgencyNormal,
	}

	merged := map[string]*model.ValidatedLineItem{}
	var skuOrder []string

	for _, o := range orders {
		md := o.OrderDetails
		details.CustomerNames = appendUnique(details.CustomerNames, md.CustomerName)
		details.ShippingAddresses = appendUnique(details.ShippingAddresses, md.ShippingAddress)
		details.DeliveryDates = appendUnique(details.DeliveryDates, md.DeliveryDate)
		if md.Urgency == model.UrgencyHigh {
			details.Urgency = model.UrgencyHigh
		}

		for _, item := range o.ValidationResults.Items {
			if item.SKU == "" {
				continue
			}
			cur, ok := merged[item.SKU]
			if !ok {
				cp := item
				merged[item.SKU] = &cp
				skuOrder = append(skuOrder, item.SKU)
				continue
			}
			cur.RequestedQty += item.RequestedQty
			cur.LineTotal = cur.Price * float64(cur.RequestedQty)
			if item.Status != model.StatusValid && cur.Status == model.StatusValid {
				cur.Status = item.Status
				cur.Issue = item.Issue
			}
		}
	}

	summary := model.ValidationSummary{Items: []model.ValidatedLineItem{}}
	for _, sku := range skuOrder {
		item := *merged[sku]
		summary.Items = append(summary.Items, item)
		if item.Status != model.StatusStockIssue {
			summary.TotalPrice += item.LineTotal
			summary.TotalItems += item.RequestedQty
		}
		if item.Status != model.StatusValid {
			summary.HasIssues = true
		}
	}
	summary.TotalPrice = validate.Round2(summary.TotalPrice)

	return model.MergedOrder{OrderDetails: details, ValidationResults: summary}
}

func appendUnique(list []string, v string) []string {
	if v == "" {
		return list
	}
	for _, existing := range list {
		if existing == v {
			return list
		}
	}
	return append(list, v)
}
