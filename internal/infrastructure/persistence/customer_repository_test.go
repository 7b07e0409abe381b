package persistence

import (
	"context"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/invoicedash/backend/internal/domain/invoicing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGormCustomerRepository_List(t *testing.T) {
	t.Run("orders by name", func(t *testing.T) {
		db, mock := newMockGormDB(t)
		repo := NewGormCustomerRepository(db)

		mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "customers" ORDER BY name ASC`)).
			WillReturnRows(sqlmock.NewRows([]string{"id", "name", "email", "image_url"}).
				AddRow("c1", "Amy Burns", "amy@burns.com", "/amy.png").
				AddRow("c2", "Balazs Orban", "balazs@orban.com", "/balazs.png"))

		customers, err := repo.List(context.Background())

		require.NoError(t, err)
		require.Len(t, customers, 2)
		assert.Equal(t, "Amy Burns", customers[0].Name)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("returns customers sorted from the store", func(t *testing.T) {
		repo := NewGormCustomerRepository(newSQLiteDB(t))
		ctx := context.Background()

		require.NoError(t, repo.Create(ctx, &invoicing.Customer{Name: "Lee Robinson", Email: "lee@robinson.com"}))
		require.NoError(t, repo.Create(ctx, &invoicing.Customer{Name: "Amy Burns", Email: "amy@burns.com"}))

		customers, err := repo.List(ctx)
		require.NoError(t, err)
		require.Len(t, customers, 2)
		assert.Equal(t, "Amy Burns", customers[0].Name)
		assert.Equal(t, "Lee Robinson", customers[1].Name)
	})
}

func TestGormCustomerRepository_Create(t *testing.T) {
	t.Run("assigns an id when empty", func(t *testing.T) {
		repo := NewGormCustomerRepository(newSQLiteDB(t))
		customer := &invoicing.Customer{Name: "Amy Burns", Email: "amy@burns.com"}

		require.NoError(t, repo.Create(context.Background(), customer))

		assert.Len(t, customer.ID, 36)
	})

	t.Run("keeps a given id", func(t *testing.T) {
		repo := NewGormCustomerRepository(newSQLiteDB(t))
		customer := &invoicing.Customer{ID: "fixed", Name: "Amy Burns", Email: "amy@burns.com"}

		require.NoError(t, repo.Create(context.Background(), customer))

		assert.Equal(t, "fixed", customer.ID)
	})
}
