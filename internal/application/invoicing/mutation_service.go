package invoicing

import (
	"context"
	"time"

	"github.com/invoicedash/backend/internal/domain/invoicing"
	"github.com/invoicedash/backend/internal/domain/shared"
	"github.com/invoicedash/backend/internal/infrastructure/telemetry"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// MutationServiceConfig contains configuration for the mutation service
type MutationServiceConfig struct {
	ListingPath string // invalidated after every mutation and used as the redirect target
	Policies    Policies
}

// MutationService creates, updates and deletes invoices from form submissions
type MutationService struct {
	repo   invoicing.InvoiceRepository
	views  shared.ViewCache
	schema *invoicing.Schema
	config MutationServiceConfig
	logger *zap.Logger
	now    func() time.Time
}

// NewMutationService creates a new mutation service
func NewMutationService(
	repo invoicing.InvoiceRepository,
	views shared.ViewCache,
	config MutationServiceConfig,
	logger *zap.Logger,
) *MutationService {
	return &MutationService{
		repo:   repo,
		views:  views,
		schema: invoicing.NewFormSchema(),
		config: config,
		logger: logger,
		now:    time.Now,
	}
}

// FormFieldNames returns the form fields read by create and update
func (s *MutationService) FormFieldNames() []string {
	return s.schema.Fields()
}

// CreateInvoice validates the form and inserts a new invoice dated today.
// Field errors come back as a form state; the previous state is not consulted.
func (s *MutationService) CreateInvoice(ctx context.Context, _ *FormState, form invoicing.FormFields) (*ActionResult, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "invoice", "create")
	defer span.End()

	draft, fieldErrs := s.schema.SafeParse(form)
	if fieldErrs != nil {
		s.logger.Debug("Invoice form rejected", zap.Strings("fields", fieldErrs.Fields()))
		return Render(&FormState{
			Errors:  fieldErrs,
			Message: MsgMissingFields,
			Values:  form,
		}), nil
	}

	inv := invoicing.NewInvoice(draft, s.now())
	telemetry.SetAttributes(span,
		telemetry.SpanAttrCustomerID, inv.CustomerID,
		telemetry.SpanAttrAmount, inv.Amount)
	if err := s.repo.Insert(ctx, inv); err != nil {
		if result, handled, err := s.handleFailure(ctx, invoicing.OpCreate, "", form, err); handled {
			return result, err
		}
	} else {
		s.logger.Info("Invoice created",
			zap.String("customer_id", inv.CustomerID),
			zap.Int64("amount", inv.Amount))
	}

	s.invalidateListing(ctx)
	return Redirect(s.config.ListingPath), nil
}

// UpdateInvoice validates the form and overwrites customer, amount and status
// of invoice id. Invalid input is returned as a *invoicing.ValidationError
// rather than a form state.
func (s *MutationService) UpdateInvoice(ctx context.Context, id string, form invoicing.FormFields) (*ActionResult, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "invoice", "update", telemetry.SpanAttrInvoiceID, id)
	defer span.End()

	draft, err := s.schema.Parse(form)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	inv := invoicing.NewInvoice(draft, s.now())
	inv.ID = id
	if err := s.repo.Update(ctx, inv); err != nil {
		if result, handled, err := s.handleFailure(ctx, invoicing.OpUpdate, id, form, err); handled {
			return result, err
		}
	} else {
		s.logger.Info("Invoice updated", zap.String("invoice_id", id))
	}

	s.invalidateListing(ctx)
	return Redirect(s.config.ListingPath), nil
}

// DeleteInvoice removes invoice id. It completes in place without a redirect.
func (s *MutationService) DeleteInvoice(ctx context.Context, id string) (*ActionResult, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "invoice", "delete", telemetry.SpanAttrInvoiceID, id)
	defer span.End()

	if err := s.repo.Delete(ctx, id); err != nil {
		if result, handled, err := s.handleFailure(ctx, invoicing.OpDelete, id, nil, err); handled {
			return result, err
		}
	} else {
		s.logger.Info("Invoice deleted", zap.String("invoice_id", id))
	}

	s.invalidateListing(ctx)
	return Completed(), nil
}

// handleFailure applies the operation's failure policy. handled is false when
// the mutation should carry on as if it had succeeded.
func (s *MutationService) handleFailure(
	ctx context.Context,
	op invoicing.Operation,
	id string,
	form invoicing.FormFields,
	cause error,
) (result *ActionResult, handled bool, err error) {
	policy := s.config.Policies.For(op)
	span := trace.SpanFromContext(ctx)
	telemetry.RecordError(span, cause)
	telemetry.SetAttributes(span, telemetry.SpanAttrOutcome, string(policy))

	fields := []zap.Field{
		zap.String("operation", string(op)),
		zap.Error(cause),
	}
	if id != "" {
		fields = append(fields, zap.String("invoice_id", id))
	}

	switch policy {
	case PolicyLogAndContinue:
		s.logger.Error("Invoice write failed", fields...)
		return nil, false, nil
	case PolicySurface:
		s.logger.Warn("Invoice write failed", fields...)
		return Render(&FormState{
			Message: failureMessages[op],
			Values:  form,
		}), true, nil
	default:
		return nil, true, &invoicing.PersistenceError{Op: op, Err: cause}
	}
}

// invalidateListing marks every cached variant of the listing page stale.
// A cache failure does not fail the mutation.
func (s *MutationService) invalidateListing(ctx context.Context) {
	if err := s.views.Invalidate(ctx, s.config.ListingPath); err != nil {
		s.logger.Warn("Failed to invalidate invoice listing",
			zap.String("path", s.config.ListingPath),
			zap.Error(err))
	}
}
