package invoices

import (
	"github.com/photoproos/platform/models"
	"github.com/photoproos/platform/services"
)

const maxTaxRateBps = 10000

// LineItemInput is one billable row as submitted
type LineItemInput struct {
	Description    string `json:"description" validate:"required,max=500"`
	Quantity       int64  `json:"quantity" validate:"gt=0"`
	UnitPriceCents int64  `json:"unit_price_cents" validate:"gte=0"`
}

// Totals is the computed money breakdown of an invoice
type Totals struct {
	LineItems     []models.LineItem
	SubtotalCents int64
	DiscountCents int64
	TaxCents      int64
	TotalCents    int64
}

// ComputeTotals prices the line items and applies discount then tax.
// Tax is rounded half-up on the discounted subtotal.
func ComputeTotals(items []LineItemInput, discountCents, taxRateBps int64) (*Totals, error) {
	if len(items) == 0 {
		return nil, services.Validation("at least one line item is required")
	}
	if discountCents < 0 {
		return nil, services.Validation("discount cannot be negative")
	}
	if taxRateBps < 0 || taxRateBps > maxTaxRateBps {
		return nil, services.Validation("tax rate must be between 0 and 10000 basis points")
	}

	t := &Totals{LineItems: make([]models.LineItem, 0, len(items)), DiscountCents: discountCents}
	for _, in := range items {
		if in.Quantity <= 0 {
			return nil, services.Validation("line item quantity must be positive")
		}
		if in.UnitPriceCents < 0 {
			return nil, services.Validation("line item price cannot be negative")
		}
		line := models.LineItem{
			Description:    in.Description,
			Quantity:       in.Quantity,
			UnitPriceCents: in.UnitPriceCents,
			TotalCents:     in.Quantity * in.UnitPriceCents,
		}
		t.LineItems = append(t.LineItems, line)
		t.SubtotalCents += line.TotalCents
	}

	if discountCents > t.SubtotalCents {
		return nil, services.Validation("discount cannot exceed subtotal")
	}

	taxable := t.SubtotalCents - discountCents
	t.TaxCents = (taxable*taxRateBps + maxTaxRateBps/2) / maxTaxRateBps
	t.TotalCents = taxable + t.TaxCents
	return t, nil
}

func (t *Totals) apply(inv *models.Invoice, taxRateBps int64) {
	inv.LineItems = t.LineItems
	inv.SubtotalCents = t.SubtotalCents
	inv.DiscountCents = t.DiscountCents
	inv.TaxRateBps = taxRateBps
	inv.TaxCents = t.TaxCents
	inv.TotalCents = t.TotalCents
}
