package controllers

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/yigit/altklausuren/internal/app/models/dto"
	"github.com/yigit/altklausuren/internal/app/services"
	"github.com/yigit/altklausuren/internal/middleware"
	"github.com/yigit/altklausuren/internal/pkg/apperrors"
	"github.com/yigit/altklausuren/internal/pkg/metrics"
)

const (
	msgUploadSuccess = "Upload erfolgreich"
	msgUploadFailed  = "Server-Fehler beim Verarbeiten des Uploads"
)

// UploadController handles exam uploads
type UploadController struct {
	uploadService services.UploadService
	metrics       *metrics.Metrics
	maxFileSize   int64
}

// NewUploadController creates a new UploadController
func NewUploadController(uploadService services.UploadService, m *metrics.Metrics, maxFileSize int64) *UploadController {
	return &UploadController{
		uploadService: uploadService,
		metrics:       m,
		maxFileSize:   maxFileSize,
	}
}

// Upload stores an exam PDF and an optional solution PDF
// @Summary Upload exam
// @Tags upload
// @Accept multipart/form-data
// @Produce json
// @Param name formData string true "Exam name"
// @Param fach formData string true "Subject"
// @Param semester formData string true "Semester"
// @Param klausur formData file true "Exam PDF"
// @Param loesung formData file false "Solution PDF"
// @Success 200 {object} dto.UploadResponse
// @Failure 400 {object} dto.MessageResponse
// @Failure 401 {object} dto.MessageResponse
// @Failure 413 {object} dto.MessageResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /api/upload [post]
func (c *UploadController) Upload(ctx *gin.Context) {
	failed := dto.ErrorResponse{Error: msgUploadFailed}

	var form dto.UploadForm
	if err := ctx.ShouldBindWith(&form, binding.FormMultipart); err != nil {
		middleware.HandleAPIError(ctx, classifyFormError(err), failed)
		return
	}

	input := dto.UploadInput{
		Name:     form.Name,
		Fach:     form.Fach,
		Semester: form.Semester,
	}

	var err error
	if input.Klausur, err = c.readFile(form.Klausur); err != nil {
		middleware.HandleAPIError(ctx, err, failed)
		return
	}
	if input.Loesung, err = c.readFile(form.Loesung); err != nil {
		middleware.HandleAPIError(ctx, err, failed)
		return
	}

	result, err := c.uploadService.Upload(ctx.Request.Context(), input)
	if err != nil {
		middleware.HandleAPIError(ctx, err, failed)
		return
	}

	if c.metrics != nil {
		c.metrics.UploadCompleted(result.SolutionID != nil)
	}

	ctx.JSON(http.StatusOK, dto.UploadResponse{
		Message:   msgUploadSuccess,
		KlausurID: result.ExamID,
		LoesungID: result.SolutionID,
	})
}

// readFile loads an uploaded part into memory; a missing part yields nil
func (c *UploadController) readFile(fh *multipart.FileHeader) (*dto.UploadFile, error) {
	if fh == nil {
		return nil, nil
	}
	if c.maxFileSize > 0 && fh.Size > c.maxFileSize {
		return nil, apperrors.ErrFileTooLarge
	}

	f, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open uploaded file %q: %w", fh.Filename, err)
	}
	defer f.Close()

	content, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("failed to read uploaded file %q: %w", fh.Filename, err)
	}
	return &dto.UploadFile{Filename: fh.Filename, Content: content}, nil
}

// classifyFormError maps multipart parsing failures onto client errors
func classifyFormError(err error) error {
	var maxBytesErr *http.MaxBytesError
	if errors.As(err, &maxBytesErr) {
		return apperrors.Wrap(apperrors.KindPayloadTooLarge, apperrors.ErrFileTooLarge.Message, err)
	}
	return apperrors.Wrap(apperrors.KindValidation, apperrors.ErrMissingFields.Message, err)
}
