package invoicing

import (
	"fmt"
	"strings"

	"github.com/invoicedash/backend/internal/domain/invoicing"
)

// FailurePolicy decides what a mutation does when the store rejects it
type FailurePolicy string

const (
	// PolicySurface returns a form state with a generic database error message
	PolicySurface FailurePolicy = "surface"
	// PolicyLogAndContinue logs the failure and finishes as if the write succeeded
	PolicyLogAndContinue FailurePolicy = "log"
	// PolicyRaise returns the failure to the caller as a *invoicing.PersistenceError
	PolicyRaise FailurePolicy = "raise"
)

// ParseFailurePolicy parses a configured policy name
func ParseFailurePolicy(s string) (FailurePolicy, error) {
	switch p := FailurePolicy(strings.ToLower(strings.TrimSpace(s))); p {
	case PolicySurface, PolicyLogAndContinue, PolicyRaise:
		return p, nil
	default:
		return "", fmt.Errorf("unknown failure policy %q (want surface, log or raise)", s)
	}
}

// Policies holds the failure policy of each mutation
type Policies struct {
	Create FailurePolicy
	Update FailurePolicy
	Delete FailurePolicy
}

// DefaultPolicies surfaces create failures, logs update failures and raises
// delete failures
func DefaultPolicies() Policies {
	return Policies{
		Create: PolicySurface,
		Update: PolicyLogAndContinue,
		Delete: PolicyRaise,
	}
}

// ParsePolicies parses the three configured policy names
func ParsePolicies(create, update, del string) (Policies, error) {
	var p Policies
	var err error
	if p.Create, err = ParseFailurePolicy(create); err != nil {
		return Policies{}, fmt.Errorf("create: %w", err)
	}
	if p.Update, err = ParseFailurePolicy(update); err != nil {
		return Policies{}, fmt.Errorf("update: %w", err)
	}
	if p.Delete, err = ParseFailurePolicy(del); err != nil {
		return Policies{}, fmt.Errorf("delete: %w", err)
	}
	return p, nil
}

// For returns the policy of op
func (p Policies) For(op invoicing.Operation) FailurePolicy {
	switch op {
	case invoicing.OpCreate:
		return p.Create
	case invoicing.OpUpdate:
		return p.Update
	default:
		return p.Delete
	}
}
