package services

import (
	"context"
	"fmt"

	"github.com/yigit/altklausuren/internal/app/models"
	"github.com/yigit/altklausuren/internal/app/repositories"
	"github.com/yigit/altklausuren/internal/pkg/apperrors"
)

// ExamService defines the interface for exam queries
type ExamService interface {
	ListBySemester(ctx context.Context, semester string) ([]models.ExamMetadata, error)
	GetPDF(ctx context.Context, id int64) (*models.PDFDocument, error)
}

type examServiceImpl struct {
	examRepo repositories.IExamRepository
}

// NewExamService creates a new ExamService
func NewExamService(examRepo repositories.IExamRepository) ExamService {
	return &examServiceImpl{examRepo: examRepo}
}

// ListBySemester returns exam metadata ordered by subject; no match yields an empty slice
func (s *examServiceImpl) ListBySemester(ctx context.Context, semester string) ([]models.ExamMetadata, error) {
	exams, err := s.examRepo.FindBySemester(ctx, semester)
	if err != nil {
		return nil, fmt.Errorf("error listing exams for semester %q: %w", semester, err)
	}
	if exams == nil {
		exams = []models.ExamMetadata{}
	}
	return exams, nil
}

// GetPDF returns the exam PDF or apperrors.ErrExamNotFound
func (s *examServiceImpl) GetPDF(ctx context.Context, id int64) (*models.PDFDocument, error) {
	if id <= 0 {
		return nil, apperrors.ErrExamNotFound
	}
	doc, err := s.examRepo.GetPDF(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("error fetching exam pdf %d: %w", id, err)
	}
	return doc, nil
}
