package persistence

import (
	"context"
	"errors"
	"strings"

	"github.com/invoicedash/backend/internal/domain/invoicing"
	"github.com/invoicedash/backend/internal/domain/shared"
	"github.com/invoicedash/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

const (
	insertInvoiceSQL = `INSERT INTO invoices (customer_id, amount, status, date) VALUES (?, ?, ?, ?)`
	updateInvoiceSQL = `UPDATE invoices SET customer_id = ?, amount = ?, status = ? WHERE id = ?`
	deleteInvoiceSQL = `DELETE FROM invoices WHERE id = ?`

	invoiceSummaryColumns = "invoices.id, invoices.amount, invoices.status, invoices.date, " +
		"customers.name, customers.email, customers.image_url"
	invoiceSearchCondition = "LOWER(customers.name) LIKE ? OR LOWER(customers.email) LIKE ? OR " +
		"CAST(invoices.amount AS TEXT) LIKE ? OR CAST(invoices.date AS TEXT) LIKE ? OR LOWER(invoices.status) LIKE ?"
)

// GormInvoiceRepository implements invoicing.InvoiceRepository using GORM.
// Each mutation is a single parameterized statement; no transaction spans
// more than one statement.
type GormInvoiceRepository struct {
	db *gorm.DB
}

// NewGormInvoiceRepository creates a new GormInvoiceRepository
func NewGormInvoiceRepository(db *gorm.DB) *GormInvoiceRepository {
	return &GormInvoiceRepository{db: db}
}

// Insert stores a new invoice; the id is assigned by the database
func (r *GormInvoiceRepository) Insert(ctx context.Context, inv *invoicing.Invoice) error {
	return r.db.WithContext(ctx).
		Exec(insertInvoiceSQL, inv.CustomerID, inv.Amount, string(inv.Status), inv.Date).
		Error
}

// Update overwrites customer, amount and status. A missing id updates no rows and is not an error.
func (r *GormInvoiceRepository) Update(ctx context.Context, inv *invoicing.Invoice) error {
	return r.db.WithContext(ctx).
		Exec(updateInvoiceSQL, inv.CustomerID, inv.Amount, string(inv.Status), inv.ID).
		Error
}

// Delete removes the invoice. A missing id deletes no rows and is not an error.
func (r *GormInvoiceRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Exec(deleteInvoiceSQL, id).Error
}

// FindByID finds an invoice by id
func (r *GormInvoiceRepository) FindByID(ctx context.Context, id string) (*invoicing.Invoice, error) {
	var model models.InvoiceModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// List returns a page of invoices joined with their customers, newest first.
// The query matches case-insensitively against customer name and email,
// and against the amount, date and status as text.
func (r *GormInvoiceRepository) List(ctx context.Context, filter invoicing.ListFilter) (*invoicing.InvoicePage, error) {
	scope := func() *gorm.DB {
		q := r.db.WithContext(ctx).
			Table("invoices").
			Joins("JOIN customers ON invoices.customer_id = customers.id")
		if term := strings.TrimSpace(filter.Query); term != "" {
			pattern := "%" + strings.ToLower(term) + "%"
			q = q.Where(invoiceSearchCondition, pattern, pattern, pattern, pattern, pattern)
		}
		return q
	}

	var total int64
	if err := scope().Count(&total).Error; err != nil {
		return nil, err
	}

	var rows []models.InvoiceSummaryRow
	err := scope().
		Select(invoiceSummaryColumns).
		Order("invoices.date DESC").
		Limit(filter.PageSize).
		Offset(filter.Offset()).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	items := make([]invoicing.InvoiceSummary, len(rows))
	for i := range rows {
		items[i] = rows[i].ToDomain()
	}

	page := &invoicing.InvoicePage{
		Items:    items,
		Total:    total,
		Page:     max(filter.Page, 1),
		PageSize: filter.PageSize,
	}
	if filter.PageSize > 0 {
		page.TotalPages = int((total + int64(filter.PageSize) - 1) / int64(filter.PageSize))
	}
	return page, nil
}
