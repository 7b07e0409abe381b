package persistence

import (
	"context"

	"github.com/google/uuid"
	"github.com/invoicedash/backend/internal/domain/invoicing"
	"github.com/invoicedash/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormCustomerRepository implements invoicing.CustomerRepository using GORM
type GormCustomerRepository struct {
	db *gorm.DB
}

// NewGormCustomerRepository creates a new GormCustomerRepository
func NewGormCustomerRepository(db *gorm.DB) *GormCustomerRepository {
	return &GormCustomerRepository{db: db}
}

// List returns every customer ordered by name
func (r *GormCustomerRepository) List(ctx context.Context) ([]invoicing.Customer, error) {
	var rows []models.CustomerModel
	if err := r.db.WithContext(ctx).Order("name ASC").Find(&rows).Error; err != nil {
		return nil, err
	}

	customers := make([]invoicing.Customer, len(rows))
	for i := range rows {
		customers[i] = rows[i].ToDomain()
	}
	return customers, nil
}

// Create stores a new customer, assigning an id when none is set
func (r *GormCustomerRepository) Create(ctx context.Context, customer *invoicing.Customer) error {
	if customer.ID == "" {
		customer.ID = uuid.New().String()
	}
	return r.db.WithContext(ctx).Create(models.CustomerModelFromDomain(customer)).Error
}
