package repositories

import (
	"context"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Querier is the subset of pgx shared by *pgxpool.Pool and pgx.Tx, so the
// same repository code runs inside and outside a transaction.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

func statementBuilder() squirrel.StatementBuilderType {
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
}

// Repositories holds all the repository instances
type Repositories struct {
	ExamRepository     *ExamRepository
	SolutionRepository *SolutionRepository
	UserRepository     *UserRepository
	Transactor         *PgTransactor
}

// NewRepositories initializes all repositories
func NewRepositories(pool *pgxpool.Pool) *Repositories {
	return &Repositories{
		ExamRepository:     NewExamRepository(pool),
		SolutionRepository: NewSolutionRepository(pool),
		UserRepository:     NewUserRepository(pool),
		Transactor:         NewPgTransactor(pool),
	}
}
