package cli

import (
	"context"
	"errors"
	"fmt"
	"io/fs"

	appidentity "github.com/invoicedash/backend/internal/application/identity"
	appinvoicing "github.com/invoicedash/backend/internal/application/invoicing"
	"github.com/invoicedash/backend/internal/domain/invoicing"
	"github.com/invoicedash/backend/internal/infrastructure/config"
	"github.com/invoicedash/backend/internal/infrastructure/logger"
	"github.com/invoicedash/backend/internal/infrastructure/migration"
	"github.com/invoicedash/backend/internal/infrastructure/persistence"
	"go.uber.org/zap"
)

// Migrator drives schema migrations
type Migrator interface {
	Up() error
	Down() error
	Steps(n int) error
	Version() (uint, bool, error)
	Force(version int) error
	Close() error
}

// UserCreator registers dashboard users
type UserCreator interface {
	CreateUser(ctx context.Context, input appidentity.CreateUserInput) (*appidentity.UserInfo, error)
}

// CustomerCreator stores customers
type CustomerCreator interface {
	CreateCustomer(ctx context.Context, input appinvoicing.CreateCustomerInput) (*invoicing.Customer, error)
}

// Runtime opens what a command needs. The database is only connected on
// first use, so commands that never touch it run without one.
type Runtime interface {
	Migrator(source fs.FS) (Migrator, error)
	Users() (UserCreator, error)
	Customers() (CustomerCreator, error)
	Close() error
}

// RuntimeFactory creates a Runtime logging at the given level
type RuntimeFactory func(logLevel string) (Runtime, error)

type envRuntime struct {
	cfg *config.Config
	log *zap.Logger
	db  *persistence.Database
}

// NewEnvRuntime loads the configuration from config.toml and the environment
func NewEnvRuntime(logLevel string) (Runtime, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	log, err := logger.New(&logger.Config{
		Level:      logLevel,
		Format:     "console",
		Output:     "stderr",
		TimeFormat: "2006-01-02 15:04:05",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	return &envRuntime{cfg: cfg, log: log}, nil
}

func (r *envRuntime) database() (*persistence.Database, error) {
	if r.db != nil {
		return r.db, nil
	}
	gormLog := logger.NewGormLogger(r.log, logger.MapGormLogLevel(r.cfg.Database.LogLevel))
	db, err := persistence.NewDatabase(&r.cfg.Database, persistence.WithLogger(gormLog))
	if err != nil {
		return nil, err
	}
	r.db = db
	return db, nil
}

func (r *envRuntime) Migrator(source fs.FS) (Migrator, error) {
	return migration.Open(r.cfg.Database.DSN(), source, r.log)
}

func (r *envRuntime) Users() (UserCreator, error) {
	db, err := r.database()
	if err != nil {
		return nil, err
	}
	return appidentity.NewUserService(persistence.NewGormUserRepository(db.DB), r.log), nil
}

func (r *envRuntime) Customers() (CustomerCreator, error) {
	db, err := r.database()
	if err != nil {
		return nil, err
	}
	return appinvoicing.NewCustomerService(persistence.NewGormCustomerRepository(db.DB), r.log), nil
}

func (r *envRuntime) Close() error {
	var errs []error
	if r.db != nil {
		errs = append(errs, r.db.Close())
	}
	// Sync fails on terminals; nothing is lost there
	_ = r.log.Sync()
	return errors.Join(errs...)
}
