package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/yigit/altklausuren/internal/app/models"
	"github.com/yigit/altklausuren/internal/pkg/apperrors"
	"github.com/yigit/altklausuren/internal/pkg/dberrors"
	"github.com/yigit/altklausuren/internal/pkg/logger"
)

// ISolutionRepository defines solution persistence operations
type ISolutionRepository interface {
	FindBySemester(ctx context.Context, semester string) ([]models.SolutionMetadata, error)
	FindByID(ctx context.Context, id int64) (*models.Solution, error)
	GetPDF(ctx context.Context, id int64) (*models.PDFDocument, error)
	Create(ctx context.Context, solution *models.Solution) (int64, error)
}

// SolutionRepository handles loesungen table operations
type SolutionRepository struct {
	db Querier
	sb squirrel.StatementBuilderType
}

// NewSolutionRepository creates a new SolutionRepository
func NewSolutionRepository(db Querier) *SolutionRepository {
	return &SolutionRepository{
		db: db,
		sb: statementBuilder(),
	}
}

// FindBySemester lists solutions whose exam belongs to the semester,
// ordered by the exam's subject.
func (r *SolutionRepository) FindBySemester(ctx context.Context, semester string) ([]models.SolutionMetadata, error) {
	sql, args, err := r.sb.Select("l.id", "k.name", "k.fach", "k.id AS klausur_id").
		From("loesungen l").
		Join("klausuren k ON l.klausur_id = k.id").
		Where(squirrel.Eq{"k.semester": semester}).
		OrderBy("k.fach ASC", "l.id ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build list loesungen query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Str("semester", semester).Msg("Error querying loesungen")
		return nil, fmt.Errorf("error listing loesungen: %w", err)
	}
	defer rows.Close()

	solutions := []models.SolutionMetadata{}
	for rows.Next() {
		var s models.SolutionMetadata
		if err := rows.Scan(&s.ID, &s.Name, &s.Fach, &s.ExamID); err != nil {
			return nil, fmt.Errorf("error scanning loesung row: %w", err)
		}
		solutions = append(solutions, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating loesungen: %w", err)
	}

	return solutions, nil
}

// FindByID loads a solution including its PDF
func (r *SolutionRepository) FindByID(ctx context.Context, id int64) (*models.Solution, error) {
	sql, args, err := r.sb.Select("id", "klausur_id", "loesung_pdf", "created_at").
		From("loesungen").
		Where(squirrel.Eq{"id": id}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get loesung query: %w", err)
	}

	var s models.Solution
	if err := r.db.QueryRow(ctx, sql, args...).Scan(&s.ID, &s.ExamID, &s.PDF, &s.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrSolutionNotFound
		}
		return nil, fmt.Errorf("error querying loesung ID=%d: %w", id, err)
	}

	return &s, nil
}

// GetPDF returns the solution PDF named after its exam
func (r *SolutionRepository) GetPDF(ctx context.Context, id int64) (*models.PDFDocument, error) {
	sql, args, err := r.sb.Select("l.loesung_pdf", "k.name").
		From("loesungen l").
		Join("klausuren k ON l.klausur_id = k.id").
		Where(squirrel.Eq{"l.id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build loesung pdf query: %w", err)
	}

	var (
		content  []byte
		examName string
	)
	if err := r.db.QueryRow(ctx, sql, args...).Scan(&content, &examName); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			logger.Warn().Int64("loesungID", id).Msg("Loesung PDF not found")
			return nil, apperrors.ErrSolutionNotFound
		}
		return nil, fmt.Errorf("error querying loesung pdf ID=%d: %w", id, err)
	}

	return &models.PDFDocument{
		Filename: models.SolutionPDFFilename(examName),
		Content:  content,
	}, nil
}

// Create inserts a solution for an existing exam
func (r *SolutionRepository) Create(ctx context.Context, solution *models.Solution) (int64, error) {
	sql, args, err := r.sb.Insert("loesungen").
		Columns("klausur_id", "loesung_pdf").
		Values(solution.ExamID, solution.PDF).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build create loesung query: %w", err)
	}

	var id int64
	if err := r.db.QueryRow(ctx, sql, args...).Scan(&id); err != nil {
		if dberrors.IsForeignKeyViolation(err) {
			return 0, apperrors.Wrap(apperrors.KindValidation, apperrors.ErrExamNotFound.Message, err)
		}
		logger.Error().Err(err).Int64("klausurID", solution.ExamID).Msg("Error executing create loesung query")
		return 0, fmt.Errorf("error inserting loesung: %w", err)
	}

	solution.ID = id
	logger.Info().Int64("loesungID", id).Int64("klausurID", solution.ExamID).Msg("Loesung created")
	return id, nil
}
