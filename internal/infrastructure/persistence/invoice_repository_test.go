package persistence

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/invoicedash/backend/internal/domain/invoicing"
	"github.com/invoicedash/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGormInvoiceRepository_Statements(t *testing.T) {
	ctx := context.Background()
	inv := &invoicing.Invoice{
		ID:         "6f1c2d9e-9a47-4c2e-8a7b-0d3b1f6f7a10",
		CustomerID: "C1",
		Amount:     1250,
		Status:     invoicing.StatusPending,
		Date:       "2024-06-01",
	}

	t.Run("insert passes customer, minor units, status and date", func(t *testing.T) {
		db, mock := newMockGormDB(t)
		repo := NewGormInvoiceRepository(db)

		mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO invoices (customer_id, amount, status, date) VALUES ($1, $2, $3, $4)`)).
			WithArgs("C1", int64(1250), "pending", "2024-06-01").
			WillReturnResult(sqlmock.NewResult(0, 1))

		require.NoError(t, repo.Insert(ctx, inv))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("update is scoped by id", func(t *testing.T) {
		db, mock := newMockGormDB(t)
		repo := NewGormInvoiceRepository(db)

		mock.ExpectExec(regexp.QuoteMeta(`UPDATE invoices SET customer_id = $1, amount = $2, status = $3 WHERE id = $4`)).
			WithArgs("C1", int64(1250), "pending", inv.ID).
			WillReturnResult(sqlmock.NewResult(0, 1))

		require.NoError(t, repo.Update(ctx, inv))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("delete is scoped by id", func(t *testing.T) {
		db, mock := newMockGormDB(t)
		repo := NewGormInvoiceRepository(db)

		mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM invoices WHERE id = $1`)).
			WithArgs(inv.ID).
			WillReturnResult(sqlmock.NewResult(0, 0))

		require.NoError(t, repo.Delete(ctx, inv.ID))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("store failures are returned", func(t *testing.T) {
		db, mock := newMockGormDB(t)
		repo := NewGormInvoiceRepository(db)
		dbErr := errors.New("connection reset")

		mock.ExpectExec(`INSERT INTO invoices`).WillReturnError(dbErr)

		err := repo.Insert(ctx, inv)
		assert.ErrorIs(t, err, dbErr)
	})

	t.Run("find by id", func(t *testing.T) {
		db, mock := newMockGormDB(t)
		repo := NewGormInvoiceRepository(db)

		rows := sqlmock.NewRows([]string{"id", "customer_id", "amount", "status", "date"}).
			AddRow(inv.ID, "C1", int64(1250), "paid", time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC))
		mock.ExpectQuery(`SELECT \* FROM "invoices" WHERE id = \$1 ORDER BY .* LIMIT .*`).
			WithArgs(inv.ID, 1).
			WillReturnRows(rows)

		found, err := repo.FindByID(ctx, inv.ID)

		require.NoError(t, err)
		assert.Equal(t, invoicing.StatusPaid, found.Status)
		assert.Equal(t, "2024-06-01", found.Date)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("list counts then selects a page", func(t *testing.T) {
		db, mock := newMockGormDB(t)
		repo := NewGormInvoiceRepository(db)

		mock.ExpectQuery(`SELECT count\(\*\) FROM "invoices" JOIN customers ON invoices.customer_id = customers.id WHERE .*LIKE`).
			WithArgs("%amy%", "%amy%", "%amy%", "%amy%", "%amy%").
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(7))
		mock.ExpectQuery(`SELECT invoices.id, .* FROM "invoices" JOIN customers .* ORDER BY invoices.date DESC LIMIT \$6 OFFSET \$7`).
			WithArgs("%amy%", "%amy%", "%amy%", "%amy%", "%amy%", 6, 6).
			WillReturnRows(sqlmock.NewRows([]string{"id", "amount", "status", "date", "name", "email", "image_url"}).
				AddRow("inv-7", int64(500), "pending", time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC), "Amy Burns", "amy@burns.com", "/amy.png"))

		page, err := repo.List(ctx, invoicing.ListFilter{Query: " Amy ", Page: 2, PageSize: 6})

		require.NoError(t, err)
		assert.Equal(t, int64(7), page.Total)
		assert.Equal(t, 2, page.TotalPages)
		require.Len(t, page.Items, 1)
		assert.Equal(t, "2024-01-02", page.Items[0].Date)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func seedCustomer(t *testing.T, repo *GormCustomerRepository, id, name, email string) {
	t.Helper()
	require.NoError(t, repo.Create(context.Background(), &invoicing.Customer{ID: id, Name: name, Email: email}))
}

func TestGormInvoiceRepository_SQLite(t *testing.T) {
	ctx := context.Background()

	t.Run("insert assigns id and round trips the amount", func(t *testing.T) {
		db := newSQLiteDB(t)
		repo := NewGormInvoiceRepository(db)
		seedCustomer(t, NewGormCustomerRepository(db), "C1", "Amy Burns", "amy@burns.com")

		draft := invoicing.Draft{CustomerID: "C1", Amount: decimal.RequireFromString("12.50"), Status: invoicing.StatusPending}
		require.NoError(t, repo.Insert(ctx, invoicing.NewInvoice(draft, time.Date(2024, 6, 1, 8, 0, 0, 0, time.UTC))))

		page, err := repo.List(ctx, invoicing.ListFilter{Page: 1, PageSize: 6})
		require.NoError(t, err)
		require.Len(t, page.Items, 1)
		assert.NotEmpty(t, page.Items[0].ID)

		stored, err := repo.FindByID(ctx, page.Items[0].ID)
		require.NoError(t, err)
		assert.Equal(t, int64(1250), stored.Amount)
		assert.True(t, stored.MajorAmount().Equal(draft.Amount))
		assert.Equal(t, "2024-06-01", stored.Date)
	})

	t.Run("insert with unknown customer fails and stores nothing", func(t *testing.T) {
		db := newSQLiteDB(t)
		repo := NewGormInvoiceRepository(db)

		err := repo.Insert(ctx, &invoicing.Invoice{CustomerID: "missing", Amount: 100, Status: invoicing.StatusPaid, Date: "2024-06-01"})
		assert.Error(t, err)

		page, err := repo.List(ctx, invoicing.ListFilter{Page: 1, PageSize: 6})
		require.NoError(t, err)
		assert.Zero(t, page.Total)
	})

	t.Run("update and delete of a missing id are no-ops", func(t *testing.T) {
		repo := NewGormInvoiceRepository(newSQLiteDB(t))

		assert.NoError(t, repo.Update(ctx, &invoicing.Invoice{ID: "nope", CustomerID: "C1", Amount: 1, Status: invoicing.StatusPaid}))
		assert.NoError(t, repo.Delete(ctx, "nope"))
		assert.NoError(t, repo.Delete(ctx, "nope"))
	})

	t.Run("update changes customer, amount and status only", func(t *testing.T) {
		db := newSQLiteDB(t)
		repo := NewGormInvoiceRepository(db)
		customers := NewGormCustomerRepository(db)
		seedCustomer(t, customers, "C1", "Amy Burns", "amy@burns.com")
		seedCustomer(t, customers, "C2", "Lee Robinson", "lee@robinson.com")
		require.NoError(t, db.Exec(`INSERT INTO invoices (id, customer_id, amount, status, date) VALUES ('inv-1', 'C1', 100, 'pending', '2023-01-01')`).Error)

		require.NoError(t, repo.Update(ctx, &invoicing.Invoice{ID: "inv-1", CustomerID: "C2", Amount: 4200, Status: invoicing.StatusPaid}))

		stored, err := repo.FindByID(ctx, "inv-1")
		require.NoError(t, err)
		assert.Equal(t, "C2", stored.CustomerID)
		assert.Equal(t, int64(4200), stored.Amount)
		assert.Equal(t, invoicing.StatusPaid, stored.Status)
		assert.Equal(t, "2023-01-01", stored.Date)
	})

	t.Run("delete removes the row", func(t *testing.T) {
		db := newSQLiteDB(t)
		repo := NewGormInvoiceRepository(db)
		seedCustomer(t, NewGormCustomerRepository(db), "C1", "Amy Burns", "amy@burns.com")
		require.NoError(t, db.Exec(`INSERT INTO invoices (id, customer_id, amount, status, date) VALUES ('inv-1', 'C1', 100, 'pending', '2023-01-01')`).Error)

		require.NoError(t, repo.Delete(ctx, "inv-1"))

		_, err := repo.FindByID(ctx, "inv-1")
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})

	t.Run("list filters, orders by date and pages", func(t *testing.T) {
		db := newSQLiteDB(t)
		repo := NewGormInvoiceRepository(db)
		customers := NewGormCustomerRepository(db)
		seedCustomer(t, customers, "C1", "Amy Burns", "amy@burns.com")
		seedCustomer(t, customers, "C2", "Lee Robinson", "lee@robinson.com")
		for _, stmt := range []string{
			`INSERT INTO invoices (id, customer_id, amount, status, date) VALUES ('a1', 'C1', 100, 'pending', '2023-01-01')`,
			`INSERT INTO invoices (id, customer_id, amount, status, date) VALUES ('a2', 'C1', 200, 'paid', '2023-03-01')`,
			`INSERT INTO invoices (id, customer_id, amount, status, date) VALUES ('a3', 'C1', 300, 'paid', '2023-02-01')`,
			`INSERT INTO invoices (id, customer_id, amount, status, date) VALUES ('l1', 'C2', 400, 'pending', '2023-04-01')`,
		} {
			require.NoError(t, db.Exec(stmt).Error)
		}

		page, err := repo.List(ctx, invoicing.ListFilter{Query: "AMY", Page: 1, PageSize: 2})
		require.NoError(t, err)
		assert.Equal(t, int64(3), page.Total)
		assert.Equal(t, 2, page.TotalPages)
		require.Len(t, page.Items, 2)
		assert.Equal(t, "a2", page.Items[0].ID)
		assert.Equal(t, "a3", page.Items[1].ID)
		assert.Equal(t, "Amy Burns", page.Items[0].Name)

		page, err = repo.List(ctx, invoicing.ListFilter{Query: "amy", Page: 2, PageSize: 2})
		require.NoError(t, err)
		require.Len(t, page.Items, 1)
		assert.Equal(t, "a1", page.Items[0].ID)

		page, err = repo.List(ctx, invoicing.ListFilter{Query: "pending", Page: 1, PageSize: 6})
		require.NoError(t, err)
		assert.Equal(t, int64(2), page.Total)

		page, err = repo.List(ctx, invoicing.ListFilter{Query: "2023-04", Page: 1, PageSize: 6})
		require.NoError(t, err)
		require.Len(t, page.Items, 1)
		assert.Equal(t, "l1", page.Items[0].ID)
	})
}
