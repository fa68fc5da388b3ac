package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/yigit/altklausuren/internal/app/models"
	"github.com/yigit/altklausuren/internal/pkg/apperrors"
	"github.com/yigit/altklausuren/internal/pkg/logger"
)

// IExamRepository defines exam persistence operations
type IExamRepository interface {
	FindBySemester(ctx context.Context, semester string) ([]models.ExamMetadata, error)
	FindByID(ctx context.Context, id int64) (*models.Exam, error)
	GetPDF(ctx context.Context, id int64) (*models.PDFDocument, error)
	Create(ctx context.Context, exam *models.Exam) (int64, error)
}

// ExamRepository handles klausuren table operations
type ExamRepository struct {
	db Querier
	sb squirrel.StatementBuilderType
}

// NewExamRepository creates a new ExamRepository
func NewExamRepository(db Querier) *ExamRepository {
	return &ExamRepository{
		db: db,
		sb: statementBuilder(),
	}
}

// FindBySemester lists exam metadata for one semester ordered by subject
func (r *ExamRepository) FindBySemester(ctx context.Context, semester string) ([]models.ExamMetadata, error) {
	sql, args, err := r.sb.Select("id", "name", "fach", "semester").
		From("klausuren").
		Where(squirrel.Eq{"semester": semester}).
		OrderBy("fach ASC", "id ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build list klausuren query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Str("semester", semester).Msg("Error querying klausuren")
		return nil, fmt.Errorf("error listing klausuren: %w", err)
	}
	defer rows.Close()

	exams := []models.ExamMetadata{}
	for rows.Next() {
		var e models.ExamMetadata
		if err := rows.Scan(&e.ID, &e.Name, &e.Fach, &e.Semester); err != nil {
			return nil, fmt.Errorf("error scanning klausur row: %w", err)
		}
		exams = append(exams, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating klausuren: %w", err)
	}

	return exams, nil
}

// FindByID loads an exam including its PDF
func (r *ExamRepository) FindByID(ctx context.Context, id int64) (*models.Exam, error) {
	sql, args, err := r.sb.Select("id", "name", "fach", "semester", "klausur_pdf", "created_at").
		From("klausuren").
		Where(squirrel.Eq{"id": id}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get klausur query: %w", err)
	}

	var exam models.Exam
	err = r.db.QueryRow(ctx, sql, args...).Scan(
		&exam.ID, &exam.Name, &exam.Fach, &exam.Semester, &exam.PDF, &exam.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrExamNotFound
		}
		return nil, fmt.Errorf("error querying klausur ID=%d: %w", id, err)
	}

	return &exam, nil
}

// GetPDF returns the exam PDF named after the exam
func (r *ExamRepository) GetPDF(ctx context.Context, id int64) (*models.PDFDocument, error) {
	sql, args, err := r.sb.Select("klausur_pdf", "name").
		From("klausuren").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build klausur pdf query: %w", err)
	}

	var (
		content []byte
		name    string
	)
	if err := r.db.QueryRow(ctx, sql, args...).Scan(&content, &name); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			logger.Warn().Int64("klausurID", id).Msg("Klausur PDF not found")
			return nil, apperrors.ErrExamNotFound
		}
		return nil, fmt.Errorf("error querying klausur pdf ID=%d: %w", id, err)
	}

	return &models.PDFDocument{
		Filename: models.ExamPDFFilename(name),
		Content:  content,
	}, nil
}

// Create inserts an exam and returns its generated id
func (r *ExamRepository) Create(ctx context.Context, exam *models.Exam) (int64, error) {
	sql, args, err := r.sb.Insert("klausuren").
		Columns("name", "fach", "semester", "klausur_pdf").
		Values(exam.Name, exam.Fach, exam.Semester, exam.PDF).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build create klausur query: %w", err)
	}

	var id int64
	if err := r.db.QueryRow(ctx, sql, args...).Scan(&id); err != nil {
		logger.Error().Err(err).Msg("Error executing create klausur query")
		return 0, fmt.Errorf("error inserting klausur: %w", err)
	}

	exam.ID = id
	logger.Info().Int64("klausurID", id).Str("fach", exam.Fach).Msg("Klausur created")
	return id, nil
}
