//go:build integration

package integration

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/invoicedash/backend/internal/domain/identity"
	"github.com/invoicedash/backend/internal/domain/invoicing"
	"github.com/invoicedash/backend/internal/domain/shared"
	"github.com/invoicedash/backend/internal/infrastructure/persistence"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedCustomer(t *testing.T, repo *persistence.GormCustomerRepository, name, email string) invoicing.Customer {
	t.Helper()
	c := invoicing.Customer{Name: name, Email: email, ImageURL: "/customers/" + name + ".png"}
	require.NoError(t, repo.Create(context.Background(), &c))
	return c
}

func TestInvoiceRepository_Integration(t *testing.T) {
	tdb := NewTestDB(t)
	ctx := context.Background()
	customers := persistence.NewGormCustomerRepository(tdb.DB)
	invoices := persistence.NewGormInvoiceRepository(tdb.DB)

	rabbit := seedCustomer(t, customers, "Evil Rabbit", "evil@rabbit.com")
	delba := seedCustomer(t, customers, "Delba de Oliveira", "delba@oliveira.com")

	t.Run("insert assigns an id and list orders newest first", func(t *testing.T) {
		require.NoError(t, invoices.Insert(ctx, &invoicing.Invoice{CustomerID: rabbit.ID, Amount: 15795, Status: invoicing.StatusPending, Date: "2022-12-06"}))
		require.NoError(t, invoices.Insert(ctx, &invoicing.Invoice{CustomerID: delba.ID, Amount: 20348, Status: invoicing.StatusPaid, Date: "2023-06-27"}))

		page, err := invoices.List(ctx, invoicing.ListFilter{Page: 1, PageSize: 6})
		require.NoError(t, err)
		require.Len(t, page.Items, 2)
		assert.Equal(t, int64(2), page.Total)
		assert.Equal(t, 1, page.TotalPages)
		assert.Equal(t, "2023-06-27", page.Items[0].Date)
		assert.Equal(t, "Delba de Oliveira", page.Items[0].Name)
		assert.NotEmpty(t, page.Items[0].ID)
	})

	t.Run("list searches customer, status, amount and date", func(t *testing.T) {
		for query, want := range map[string]int{
			"RABBIT":   1,
			"oliveira": 1,
			"paid":     1,
			"pending":  1,
			"15795":    1,
			"2022-12":  1,
			"nonesuch": 0,
			"@":        2,
		} {
			page, err := invoices.List(ctx, invoicing.ListFilter{Query: query, Page: 1, PageSize: 6})
			require.NoError(t, err, query)
			assert.Len(t, page.Items, want, "query %q", query)
		}
	})

	t.Run("update and find", func(t *testing.T) {
		page, err := invoices.List(ctx, invoicing.ListFilter{Query: "rabbit", Page: 1, PageSize: 6})
		require.NoError(t, err)
		id := page.Items[0].ID

		require.NoError(t, invoices.Update(ctx, &invoicing.Invoice{ID: id, CustomerID: delba.ID, Amount: 100, Status: invoicing.StatusPaid}))

		inv, err := invoices.FindByID(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, delba.ID, inv.CustomerID)
		assert.Equal(t, int64(100), inv.Amount)
		assert.Equal(t, invoicing.StatusPaid, inv.Status)
		assert.Equal(t, "2022-12-06", inv.Date, "update keeps the original date")
	})

	t.Run("missing ids", func(t *testing.T) {
		missing := uuid.New().String()

		_, err := invoices.FindByID(ctx, missing)
		assert.ErrorIs(t, err, shared.ErrNotFound)
		assert.NoError(t, invoices.Update(ctx, &invoicing.Invoice{ID: missing, CustomerID: delba.ID, Amount: 1, Status: invoicing.StatusPaid}))
		assert.NoError(t, invoices.Delete(ctx, missing))
	})

	t.Run("status outside the schema is rejected by the table", func(t *testing.T) {
		err := invoices.Insert(ctx, &invoicing.Invoice{CustomerID: rabbit.ID, Amount: 1, Status: "overdue", Date: "2024-01-01"})
		assert.Error(t, err)
	})

	t.Run("non-positive amount is rejected by the table", func(t *testing.T) {
		err := invoices.Insert(ctx, &invoicing.Invoice{CustomerID: rabbit.ID, Amount: 0, Status: invoicing.StatusPaid, Date: "2024-01-01"})
		assert.Error(t, err)
	})

	t.Run("delete", func(t *testing.T) {
		page, err := invoices.List(ctx, invoicing.ListFilter{Page: 1, PageSize: 6})
		require.NoError(t, err)
		for _, item := range page.Items {
			require.NoError(t, invoices.Delete(ctx, item.ID))
		}

		page, err = invoices.List(ctx, invoicing.ListFilter{Page: 1, PageSize: 6})
		require.NoError(t, err)
		assert.Empty(t, page.Items)
		assert.Equal(t, int64(0), page.Total)
	})
}

func TestInvoiceRepository_Pagination(t *testing.T) {
	tdb := NewTestDB(t)
	ctx := context.Background()
	customers := persistence.NewGormCustomerRepository(tdb.DB)
	invoices := persistence.NewGormInvoiceRepository(tdb.DB)

	c := seedCustomer(t, customers, "Lee Robinson", "lee@robinson.com")
	for day := 1; day <= 8; day++ {
		require.NoError(t, invoices.Insert(ctx, &invoicing.Invoice{
			CustomerID: c.ID,
			Amount:     int64(day * 100),
			Status:     invoicing.StatusPending,
			Date:       fmt.Sprintf("2024-01-%02d", day),
		}))
	}

	page, err := invoices.List(ctx, invoicing.ListFilter{Page: 2, PageSize: 6})
	require.NoError(t, err)
	assert.Equal(t, int64(8), page.Total)
	assert.Equal(t, 2, page.TotalPages)
	require.Len(t, page.Items, 2)
	assert.Equal(t, "2024-01-02", page.Items[0].Date)
	assert.Equal(t, "2024-01-01", page.Items[1].Date)
}

func TestCustomerRepository_Integration(t *testing.T) {
	tdb := NewTestDB(t)
	ctx := context.Background()
	customers := persistence.NewGormCustomerRepository(tdb.DB)

	seedCustomer(t, customers, "Michael Novotny", "michael@novotny.com")
	seedCustomer(t, customers, "Amy Burns", "amy@burns.com")

	list, err := customers.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "Amy Burns", list[0].Name)
	assert.Equal(t, "Michael Novotny", list[1].Name)
}

func TestUserRepository_Integration(t *testing.T) {
	tdb := NewTestDB(t)
	ctx := context.Background()
	users := persistence.NewGormUserRepository(tdb.DB)

	user, err := identity.NewUser("User", "User@NextMail.com", "123456")
	require.NoError(t, err)
	require.NoError(t, users.Create(ctx, user))

	found, err := users.FindByEmail(ctx, "user@nextmail.com")
	require.NoError(t, err)
	assert.Equal(t, user.ID, found.ID)
	assert.True(t, found.VerifyPassword("123456"))

	dup, err := identity.NewUser("Other", "user@nextmail.com", "654321")
	require.NoError(t, err)
	assert.ErrorIs(t, users.Create(ctx, dup), shared.ErrAlreadyExists)

	_, err = users.FindByEmail(ctx, "nobody@nextmail.com")
	assert.ErrorIs(t, err, shared.ErrNotFound)
}
