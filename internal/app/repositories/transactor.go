package repositories

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/yigit/altklausuren/internal/db"
)

// TxRepositories are repositories bound to one open transaction
type TxRepositories struct {
	Exams     IExamRepository
	Solutions ISolutionRepository
	Users     *UserRepository
}

// Transactor runs a unit of work atomically
type Transactor interface {
	WithinTransaction(ctx context.Context, fn func(ctx context.Context, repos TxRepositories) error) error
}

// PgTransactor implements Transactor on a pgx pool
type PgTransactor struct {
	db *db.PostgresDB
}

// NewPgTransactor creates a new PgTransactor
func NewPgTransactor(pool *pgxpool.Pool) *PgTransactor {
	return &PgTransactor{db: &db.PostgresDB{Pool: pool}}
}

// WithinTransaction commits when fn returns nil and rolls back otherwise
func (t *PgTransactor) WithinTransaction(ctx context.Context, fn func(ctx context.Context, repos TxRepositories) error) error {
	return t.db.WithTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		return fn(ctx, TxRepositories{
			Exams:     NewExamRepository(tx),
			Solutions: NewSolutionRepository(tx),
			Users:     NewUserRepository(tx),
		})
	})
}
