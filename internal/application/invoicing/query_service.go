package invoicing

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/invoicedash/backend/internal/domain/invoicing"
	"github.com/invoicedash/backend/internal/domain/shared"
	"github.com/invoicedash/backend/internal/infrastructure/telemetry"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// QueryServiceConfig contains configuration for the query service
type QueryServiceConfig struct {
	ListingPath string
	PageSize    int
	ViewTTL     time.Duration
}

// QueryService serves the invoice listing and the data behind the invoice forms
type QueryService struct {
	invoices  invoicing.InvoiceRepository
	customers invoicing.CustomerRepository
	views     shared.ViewCache
	config    QueryServiceConfig
	logger    *zap.Logger
}

// NewQueryService creates a new query service
func NewQueryService(
	invoices invoicing.InvoiceRepository,
	customers invoicing.CustomerRepository,
	views shared.ViewCache,
	config QueryServiceConfig,
	logger *zap.Logger,
) *QueryService {
	if config.PageSize <= 0 {
		config.PageSize = 6
	}
	return &QueryService{
		invoices:  invoices,
		customers: customers,
		views:     views,
		config:    config,
		logger:    logger,
	}
}

// CustomerOption is one entry of the customer select
type CustomerOption struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// CreateFormData is the data needed to render the create form
type CreateFormData struct {
	Customers []CustomerOption `json:"customers"`
}

// InvoiceForm is an invoice as the edit form shows it, amount in major units
type InvoiceForm struct {
	ID         string           `json:"id"`
	CustomerID string           `json:"customer_id"`
	Amount     decimal.Decimal  `json:"amount"`
	Status     invoicing.Status `json:"status"`
}

// EditFormData is the data needed to render the edit form
type EditFormData struct {
	Invoice   InvoiceForm      `json:"invoice"`
	Customers []CustomerOption `json:"customers"`
}

// ListInvoices returns one page of the listing filtered by query.
// Pages are served from the view cache; a cache failure falls through to the store.
func (s *QueryService) ListInvoices(ctx context.Context, query string, page int) (*invoicing.InvoicePage, error) {
	query = strings.TrimSpace(query)
	if page < 1 {
		page = 1
	}
	variant := fmt.Sprintf("query=%s&page=%d", query, page)

	ctx, span := telemetry.StartServiceSpan(ctx, "invoice", "list", telemetry.SpanAttrPage, page)
	defer span.End()

	cached, ok, err := s.views.Get(ctx, s.config.ListingPath, variant)
	if err != nil {
		s.logger.Warn("Failed to read cached invoice listing", zap.String("variant", variant), zap.Error(err))
	}
	if ok {
		var result invoicing.InvoicePage
		if err := json.Unmarshal(cached, &result); err == nil {
			telemetry.SetAttributes(span, telemetry.SpanAttrCacheHit, true)
			return &result, nil
		}
		s.logger.Warn("Discarding unreadable cached invoice listing", zap.String("variant", variant))
	}

	// Taken before the store read so an invalidation that lands while the
	// page is loading keeps this result out of the cache.
	generation, genErr := s.views.Generation(ctx, s.config.ListingPath)
	if genErr != nil {
		s.logger.Warn("Failed to read invoice listing generation", zap.Error(genErr))
	}

	result, err := s.invoices.List(ctx, invoicing.ListFilter{
		Query:    query,
		Page:     page,
		PageSize: s.config.PageSize,
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to fetch invoices: %w", err)
	}
	telemetry.SetAttributes(span, telemetry.SpanAttrCacheHit, false)

	if genErr != nil {
		return result, nil
	}
	payload, err := json.Marshal(result)
	if err != nil {
		return nil, fmt.Errorf("failed to encode invoices: %w", err)
	}
	stored, err := s.views.Set(ctx, s.config.ListingPath, variant, payload, s.config.ViewTTL, generation)
	if err != nil {
		s.logger.Warn("Failed to cache invoice listing", zap.String("variant", variant), zap.Error(err))
	} else if !stored {
		s.logger.Debug("Invoice listing changed while loading, not cached", zap.String("variant", variant))
	}

	return result, nil
}

// GetCreateFormData returns the customers for the create form
func (s *QueryService) GetCreateFormData(ctx context.Context) (*CreateFormData, error) {
	options, err := s.customerOptions(ctx)
	if err != nil {
		return nil, err
	}
	return &CreateFormData{Customers: options}, nil
}

// GetEditFormData returns invoice id and the customers for the edit form.
// A missing invoice is reported as shared.ErrNotFound.
func (s *QueryService) GetEditFormData(ctx context.Context, id string) (*EditFormData, error) {
	inv, err := s.invoices.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	options, err := s.customerOptions(ctx)
	if err != nil {
		return nil, err
	}

	return &EditFormData{
		Invoice: InvoiceForm{
			ID:         inv.ID,
			CustomerID: inv.CustomerID,
			Amount:     inv.MajorAmount(),
			Status:     inv.Status,
		},
		Customers: options,
	}, nil
}

func (s *QueryService) customerOptions(ctx context.Context) ([]CustomerOption, error) {
	customers, err := s.customers.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch customers: %w", err)
	}

	options := make([]CustomerOption, len(customers))
	for i, c := range customers {
		options[i] = CustomerOption{ID: c.ID, Name: c.Name}
	}
	return options, nil
}
