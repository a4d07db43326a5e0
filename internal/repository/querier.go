package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	apperrors "github.com/Sherryli112/HatGiveMe/pkg/util"
)

// Querier is the subset of pgx operations shared by *pgxpool.Pool and
// pgx.Tx, allowing repositories to run against either.
type Querier interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// TxRepos bundles repositories bound to a single transaction.
type TxRepos struct {
	Users    UserRepository
	Products ProductRepository
	Orders   OrderRepository
}

// UnitOfWork runs a function inside one database transaction. The repos
// handed to fn are scoped to that transaction; any error aborts it fully.
type UnitOfWork interface {
	Run(ctx context.Context, fn func(ctx context.Context, r TxRepos) error) error
	RunSerializable(ctx context.Context, fn func(ctx context.Context, r TxRepos) error) error
}

type pgxUnitOfWork struct {
	pool *pgxpool.Pool
}

// NewUnitOfWork returns a Postgres-backed unit of work.
func NewUnitOfWork(pool *pgxpool.Pool) UnitOfWork {
	return &pgxUnitOfWork{pool: pool}
}

func (u *pgxUnitOfWork) Run(ctx context.Context, fn func(ctx context.Context, r TxRepos) error) error {
	return u.run(ctx, pgx.TxOptions{}, fn)
}

func (u *pgxUnitOfWork) RunSerializable(ctx context.Context, fn func(ctx context.Context, r TxRepos) error) error {
	return u.run(ctx, pgx.TxOptions{IsoLevel: pgx.Serializable}, fn)
}

func (u *pgxUnitOfWork) run(ctx context.Context, opts pgx.TxOptions, fn func(ctx context.Context, r TxRepos) error) error {
	tx, err := u.pool.BeginTx(ctx, opts)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	repos := TxRepos{
		Users:    NewUserRepository(tx),
		Products: NewProductRepository(tx),
		Orders:   NewOrderRepository(tx),
	}
	if err := fn(ctx, repos); err != nil {
		return translateTxError(err)
	}
	if err := tx.Commit(ctx); err != nil {
		return translateTxError(err)
	}
	return nil
}

// translateTxError maps serialization and deadlock failures onto the
// retryable conflict error.
func translateTxError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && (pgErr.Code == "40001" || pgErr.Code == "40P01") {
		return apperrors.NewConflict("transaction conflict", nil)
	}
	return err
}
