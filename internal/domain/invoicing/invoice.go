package invoicing

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// Status is the payment state of an invoice
type Status string

const (
	StatusPending Status = "pending"
	StatusPaid    Status = "paid"
)

// IsValid reports whether s is one of the known invoice statuses
func (s Status) IsValid() bool {
	return s == StatusPending || s == StatusPaid
}

// DateLayout is the calendar date format stored with an invoice
const DateLayout = "2006-01-02"

// Invoice is a persisted invoice row.
// Amount is held in integer minor units (cents) everywhere past the form boundary.
type Invoice struct {
	ID         string
	CustomerID string
	Amount     int64
	Status     Status
	Date       string
}

// MajorAmount returns the amount in major currency units
func (i *Invoice) MajorAmount() decimal.Decimal {
	return FromMinorUnits(i.Amount)
}

// NewInvoice builds an unsaved invoice from validated form input, stamped
// with the UTC calendar date of now. The store assigns the id.
func NewInvoice(d Draft, now time.Time) *Invoice {
	return &Invoice{
		CustomerID: d.CustomerID,
		Amount:     ToMinorUnits(d.Amount),
		Status:     d.Status,
		Date:       now.UTC().Format(DateLayout),
	}
}

// ToMinorUnits converts a major-unit amount to cents, rounding half away from zero
func ToMinorUnits(amount decimal.Decimal) int64 {
	return amount.Shift(2).Round(0).IntPart()
}

// FromMinorUnits converts cents back to a major-unit amount
func FromMinorUnits(cents int64) decimal.Decimal {
	return decimal.New(cents, -2)
}

// InvoiceSummary is one row of the invoices listing, joined with its customer
type InvoiceSummary struct {
	ID       string `json:"id"`
	Amount   int64  `json:"amount"`
	Status   Status `json:"status"`
	Date     string `json:"date"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	ImageURL string `json:"image_url"`
}

// ListFilter narrows the invoices listing
type ListFilter struct {
	Query    string
	Page     int
	PageSize int
}

// Offset returns the row offset for the filter's page (pages start at 1)
func (f ListFilter) Offset() int {
	if f.Page < 1 {
		return 0
	}
	return (f.Page - 1) * f.PageSize
}

// InvoicePage is a page of the invoices listing
type InvoicePage struct {
	Items      []InvoiceSummary `json:"items"`
	Total      int64            `json:"total"`
	Page       int              `json:"page"`
	PageSize   int              `json:"page_size"`
	TotalPages int              `json:"total_pages"`
}

// InvoiceRepository persists invoices.
// Update and Delete against an id that does not exist are silent no-ops.
type InvoiceRepository interface {
	// Insert stores a new invoice; the id is assigned by the store
	Insert(ctx context.Context, inv *Invoice) error

	// Update overwrites customer, amount and status of the invoice with inv.ID
	Update(ctx context.Context, inv *Invoice) error

	// Delete removes the invoice with the given id
	Delete(ctx context.Context, id string) error

	// FindByID finds an invoice by id, returning shared.ErrNotFound when missing
	FindByID(ctx context.Context, id string) (*Invoice, error)

	// List returns a page of invoices matching the filter, newest first
	List(ctx context.Context, filter ListFilter) (*InvoicePage, error)
}
