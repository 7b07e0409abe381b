package invoicing

import (
	"context"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/invoicedash/backend/internal/domain/invoicing"
	"github.com/invoicedash/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// CreateCustomerInput contains the input for creating a customer
type CreateCustomerInput struct {
	Name     string `validate:"required,max=255"`
	Email    string `validate:"required,email"`
	ImageURL string `validate:"omitempty,max=255"`
}

// CustomerService manages the customers invoices are billed to
type CustomerService struct {
	customers invoicing.CustomerRepository
	validate  *validator.Validate
	logger    *zap.Logger
}

// NewCustomerService creates a new customer service
func NewCustomerService(customers invoicing.CustomerRepository, logger *zap.Logger) *CustomerService {
	return &CustomerService{
		customers: customers,
		validate:  validator.New(),
		logger:    logger,
	}
}

// CreateCustomer validates and stores a new customer
func (s *CustomerService) CreateCustomer(ctx context.Context, input CreateCustomerInput) (*invoicing.Customer, error) {
	input.Name = strings.TrimSpace(input.Name)
	input.Email = strings.ToLower(strings.TrimSpace(input.Email))
	if err := s.validate.Struct(input); err != nil {
		return nil, shared.NewDomainError("INVALID_CUSTOMER", err.Error())
	}

	customer := &invoicing.Customer{
		Name:     input.Name,
		Email:    input.Email,
		ImageURL: input.ImageURL,
	}
	if err := s.customers.Create(ctx, customer); err != nil {
		return nil, err
	}

	s.logger.Info("Customer created", zap.String("customer_id", customer.ID))
	return customer, nil
}
