package services

import (
	"context"
	"fmt"

	"github.com/yigit/altklausuren/internal/app/models"
	"github.com/yigit/altklausuren/internal/app/repositories"
	"github.com/yigit/altklausuren/internal/pkg/apperrors"
)

// SolutionService defines the interface for solution queries
type SolutionService interface {
	ListBySemester(ctx context.Context, semester string) ([]models.SolutionMetadata, error)
	GetPDF(ctx context.Context, id int64) (*models.PDFDocument, error)
}

type solutionServiceImpl struct {
	solutionRepo repositories.ISolutionRepository
}

// NewSolutionService creates a new SolutionService
func NewSolutionService(solutionRepo repositories.ISolutionRepository) SolutionService {
	return &solutionServiceImpl{solutionRepo: solutionRepo}
}

// ListBySemester returns solutions whose exam belongs to the semester
func (s *solutionServiceImpl) ListBySemester(ctx context.Context, semester string) ([]models.SolutionMetadata, error) {
	solutions, err := s.solutionRepo.FindBySemester(ctx, semester)
	if err != nil {
		return nil, fmt.Errorf("error listing solutions for semester %q: %w", semester, err)
	}
	if solutions == nil {
		solutions = []models.SolutionMetadata{}
	}
	return solutions, nil
}

// GetPDF returns the solution PDF or apperrors.ErrSolutionNotFound
func (s *solutionServiceImpl) GetPDF(ctx context.Context, id int64) (*models.PDFDocument, error) {
	if id <= 0 {
		return nil, apperrors.ErrSolutionNotFound
	}
	doc, err := s.solutionRepo.GetPDF(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("error fetching solution pdf %d: %w", id, err)
	}
	return doc, nil
}
