package models

import (
	"time"

	"github.com/invoicedash/backend/internal/domain/invoicing"
)

// InvoiceModel is the persistence model for the invoices table
type InvoiceModel struct {
	ID         string    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	CustomerID string    `gorm:"type:uuid;not null;index"`
	Amount     int64     `gorm:"not null"` // minor units
	Status     string    `gorm:"type:varchar(255);not null"`
	Date       time.Time `gorm:"type:date;not null"`
}

// TableName returns the table name for GORM
func (InvoiceModel) TableName() string {
	return "invoices"
}

// ToDomain converts the persistence model to a domain Invoice
func (m *InvoiceModel) ToDomain() *invoicing.Invoice {
	return &invoicing.Invoice{
		ID:         m.ID,
		CustomerID: m.CustomerID,
		Amount:     m.Amount,
		Status:     invoicing.Status(m.Status),
		Date:       m.Date.Format(invoicing.DateLayout),
	}
}

// CustomerModel is the persistence model for the customers table
type CustomerModel struct {
	ID       string `gorm:"type:uuid;primaryKey"`
	Name     string `gorm:"type:varchar(255);not null"`
	Email    string `gorm:"type:varchar(255);not null"`
	ImageURL string `gorm:"column:image_url;type:varchar(255);not null"`
}

// TableName returns the table name for GORM
func (CustomerModel) TableName() string {
	return "customers"
}

// ToDomain converts the persistence model to a domain Customer
func (m *CustomerModel) ToDomain() invoicing.Customer {
	return invoicing.Customer{
		ID:       m.ID,
		Name:     m.Name,
		Email:    m.Email,
		ImageURL: m.ImageURL,
	}
}

// CustomerModelFromDomain creates a persistence model from a domain Customer
func CustomerModelFromDomain(c *invoicing.Customer) *CustomerModel {
	return &CustomerModel{
		ID:       c.ID,
		Name:     c.Name,
		Email:    c.Email,
		ImageURL: c.ImageURL,
	}
}

// InvoiceSummaryRow is the scan target of the invoices listing join
type InvoiceSummaryRow struct {
	ID       string
	Amount   int64
	Status   string
	Date     time.Time
	Name     string
	Email    string
	ImageURL string
}

// ToDomain converts the row to a domain InvoiceSummary
func (r *InvoiceSummaryRow) ToDomain() invoicing.InvoiceSummary {
	return invoicing.InvoiceSummary{
		ID:       r.ID,
		Amount:   r.Amount,
		Status:   invoicing.Status(r.Status),
		Date:     r.Date.Format(invoicing.DateLayout),
		Name:     r.Name,
		Email:    r.Email,
		ImageURL: r.ImageURL,
	}
}
