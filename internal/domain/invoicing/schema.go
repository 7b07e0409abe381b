package invoicing

import (
	"net/url"
	"reflect"
	"slices"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

// Form field names
const (
	FieldID         = "id"
	FieldCustomerID = "customerId"
	FieldAmount     = "amount"
	FieldStatus     = "status"
	FieldDate       = "date"
)

// Field error messages
const (
	MsgSelectCustomer = "Please select a customer."
	MsgAmountPositive = "Please enter an amount greater than $0."
	MsgSelectStatus   = "Please select an invoice status."
	MsgInvalidID      = "Invalid invoice id."
	MsgInvalidDate    = "Invalid invoice date."
)

// FormFields is a raw form submission. A missing key means the field was not
// submitted at all, which is distinct from an empty value.
type FormFields map[string]string

// FormFieldsFromValues takes the first value of each named field.
// Fields absent from values are left out of the result.
func FormFieldsFromValues(values url.Values, names ...string) FormFields {
	fields := make(FormFields, len(names))
	for _, name := range names {
		if v, ok := values[name]; ok && len(v) > 0 {
			fields[name] = v[0]
		}
	}
	return fields
}

// Draft is the validated, typed content of an invoice form
type Draft struct {
	ID         string
	CustomerID string
	Amount     decimal.Decimal
	Status     Status
	Date       string
}

// fieldRule is one row of a schema: coerce turns the raw value into the typed
// value (ok=false when it cannot), tag is the validator constraint the typed
// value must satisfy, and message is reported when either step fails.
type fieldRule struct {
	field   string
	coerce  func(raw string, present bool) (any, bool)
	tag     string
	message string
	assign  func(d *Draft, v any)
}

// Schema validates invoice form submissions field by field. Every rule is
// evaluated, so one call reports all failing fields together.
type Schema struct {
	validate *validator.Validate
	rules    []fieldRule
}

// NewInvoiceSchema returns the schema covering every invoice field
func NewInvoiceSchema() *Schema {
	v := validator.New()
	v.RegisterCustomTypeFunc(func(field reflect.Value) any {
		if d, ok := field.Interface().(decimal.Decimal); ok {
			f, _ := d.Float64()
			return f
		}
		return nil
	}, decimal.Decimal{})

	return &Schema{
		validate: v,
		rules: []fieldRule{
			{
				field:   FieldID,
				coerce:  coerceString,
				tag:     "required",
				message: MsgInvalidID,
				assign:  func(d *Draft, v any) { d.ID = v.(string) },
			},
			{
				field:   FieldCustomerID,
				coerce:  coerceString,
				tag:     "required",
				message: MsgSelectCustomer,
				assign:  func(d *Draft, v any) { d.CustomerID = v.(string) },
			},
			{
				field:   FieldAmount,
				coerce:  coerceDecimal,
				tag:     "gt=0",
				message: MsgAmountPositive,
				assign:  func(d *Draft, v any) { d.Amount = v.(decimal.Decimal) },
			},
			{
				field:   FieldStatus,
				coerce:  coerceString,
				tag:     "required,oneof=pending paid",
				message: MsgSelectStatus,
				assign:  func(d *Draft, v any) { d.Status = Status(v.(string)) },
			},
			{
				field:   FieldDate,
				coerce:  coerceString,
				tag:     "required,datetime=" + DateLayout,
				message: MsgInvalidDate,
				assign:  func(d *Draft, v any) { d.Date = v.(string) },
			},
		},
	}
}

// NewFormSchema returns the schema for create and update submissions.
// id and date are assigned by the system and are not accepted from the form.
func NewFormSchema() *Schema {
	return NewInvoiceSchema().Omit(FieldID, FieldDate)
}

// Omit returns a copy of the schema without the named fields
func (s *Schema) Omit(fields ...string) *Schema {
	rules := make([]fieldRule, 0, len(s.rules))
	for _, r := range s.rules {
		if !slices.Contains(fields, r.field) {
			rules = append(rules, r)
		}
	}
	return &Schema{validate: s.validate, rules: rules}
}

// Fields returns the field names the schema reads, in rule order
func (s *Schema) Fields() []string {
	names := make([]string, len(s.rules))
	for i, r := range s.rules {
		names[i] = r.field
	}
	return names
}

// SafeParse validates form and returns either the draft (errs is nil) or the
// collected field errors.
func (s *Schema) SafeParse(form FormFields) (Draft, FieldErrors) {
	var draft Draft
	errs := FieldErrors{}

	for _, r := range s.rules {
		raw, present := form[r.field]
		value, ok := r.coerce(raw, present)
		if !ok || s.validate.Var(value, r.tag) != nil {
			errs.Add(r.field, r.message)
			continue
		}
		r.assign(&draft, value)
	}

	if errs.HasErrors() {
		return Draft{}, errs
	}
	return draft, nil
}

// Parse validates form and returns a *ValidationError when any field fails
func (s *Schema) Parse(form FormFields) (Draft, error) {
	draft, errs := s.SafeParse(form)
	if errs != nil {
		return Draft{}, &ValidationError{Fields: errs}
	}
	return draft, nil
}

func coerceString(raw string, present bool) (any, bool) {
	if !present {
		return nil, false
	}
	return raw, true
}

// coerceDecimal reads a number the way a browser form number does: surrounding
// whitespace is ignored and an absent or blank value counts as zero.
// The result is rounded to whole cents so the constraint checks the amount
// that is actually stored.
func coerceDecimal(raw string, present bool) (any, bool) {
	raw = strings.TrimSpace(raw)
	if !present || raw == "" {
		return decimal.Zero, true
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return nil, false
	}
	return FromMinorUnits(ToMinorUnits(d)), true
}
