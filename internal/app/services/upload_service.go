package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"github.com/yigit/altklausuren/internal/app/models"
	"github.com/yigit/altklausuren/internal/app/models/dto"
	"github.com/yigit/altklausuren/internal/app/repositories"
	"github.com/yigit/altklausuren/internal/pkg/apperrors"
	"github.com/yigit/altklausuren/internal/pkg/validation"
)

// UploadService defines the interface for storing new exams
type UploadService interface {
	Upload(ctx context.Context, input dto.UploadInput) (*dto.UploadResult, error)
}

type uploadServiceImpl struct {
	tx          repositories.Transactor
	maxFileSize int64
	logger      zerolog.Logger
}

// NewUploadService creates a new UploadService; maxFileSize <= 0 disables the size check
func NewUploadService(tx repositories.Transactor, maxFileSize int64, logger zerolog.Logger) UploadService {
	return &uploadServiceImpl{
		tx:          tx,
		maxFileSize: maxFileSize,
		logger:      logger,
	}
}

type uploadFields struct {
	Name     string `validate:"notblank"`
	Fach     string `validate:"notblank"`
	Semester string `validate:"notblank"`
}

// Upload validates the input and then inserts the exam and, if present,
// its solution in one transaction.
func (s *uploadServiceImpl) Upload(ctx context.Context, input dto.UploadInput) (*dto.UploadResult, error) {
	if err := s.validate(input); err != nil {
		return nil, err
	}

	exam := &models.Exam{
		Name:     strings.TrimSpace(input.Name),
		Fach:     strings.TrimSpace(input.Fach),
		Semester: strings.TrimSpace(input.Semester),
		PDF:      input.Klausur.Content,
	}

	result := &dto.UploadResult{}
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context, repos repositories.TxRepositories) error {
		examID, err := repos.Exams.Create(ctx, exam)
		if err != nil {
			return fmt.Errorf("error storing exam: %w", err)
		}
		result.ExamID = examID

		if input.Loesung == nil {
			return nil
		}

		solutionID, err := repos.Solutions.Create(ctx, &models.Solution{
			ExamID: examID,
			PDF:    input.Loesung.Content,
		})
		if err != nil {
			return fmt.Errorf("error storing solution: %w", err)
		}
		result.SolutionID = &solutionID
		return nil
	})
	if err != nil {
		s.logger.Error().Err(err).Str("name", exam.Name).Str("fach", exam.Fach).Msg("Upload rolled back")
		return nil, err
	}

	event := s.logger.Info().Int64("klausurID", result.ExamID).Str("fach", exam.Fach).Str("semester", exam.Semester)
	if result.SolutionID != nil {
		event = event.Int64("loesungID", *result.SolutionID)
	}
	event.Msg("Upload stored")

	return result, nil
}

func (s *uploadServiceImpl) validate(input dto.UploadInput) error {
	if err := validation.Struct(uploadFields{
		Name:     input.Name,
		Fach:     input.Fach,
		Semester: input.Semester,
	}); err != nil {
		return apperrors.Wrap(apperrors.KindValidation, apperrors.ErrMissingFields.Message, err)
	}

	if input.Klausur == nil || len(input.Klausur.Content) == 0 {
		return apperrors.ErrMissingExamPDF
	}

	if s.maxFileSize > 0 {
		if int64(len(input.Klausur.Content)) > s.maxFileSize {
			return apperrors.ErrFileTooLarge
		}
		if input.Loesung != nil && int64(len(input.Loesung.Content)) > s.maxFileSize {
			return apperrors.ErrFileTooLarge
		}
	}

	return nil
}
