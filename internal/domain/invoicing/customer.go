package invoicing

import "context"

// Customer is the party an invoice is billed to
type Customer struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	ImageURL string `json:"image_url"`
}

// CustomerRepository persists customers
type CustomerRepository interface {
	// List returns every customer ordered by name
	List(ctx context.Context) ([]Customer, error)

	// Create stores a new customer; an empty ID is assigned by the store
	Create(ctx context.Context, customer *Customer) error
}
