package controllers

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/yigit/altklausuren/internal/app/models"
	"github.com/yigit/altklausuren/internal/app/models/dto"
	"github.com/yigit/altklausuren/internal/app/services"
	"github.com/yigit/altklausuren/internal/middleware"
	"github.com/yigit/altklausuren/internal/pkg/apperrors"
)

// Client-facing texts of the read endpoints
const (
	msgExamsLoadFailed     = "Fehler beim Laden der Klausuren"
	msgSolutionsLoadFailed = "Fehler beim Laden der Lösungen"
	msgPDFNotFound         = "Nicht gefunden."
	msgPDFFetchFailed      = "Fehler beim Abrufen."
)

// ExamController serves exam and solution listings and PDF downloads
type ExamController struct {
	examService     services.ExamService
	solutionService services.SolutionService
}

// NewExamController creates a new ExamController
func NewExamController(examService services.ExamService, solutionService services.SolutionService) *ExamController {
	return &ExamController{
		examService:     examService,
		solutionService: solutionService,
	}
}

// ListExams handles retrieving the exams of a semester
// @Summary List exams of a semester
// @Tags klausuren
// @Produce json
// @Param semester path string true "Semester label"
// @Success 200 {array} models.ExamMetadata
// @Failure 500 {object} dto.ErrorResponse
// @Router /api/exams/{semester} [get]
func (c *ExamController) ListExams(ctx *gin.Context) {
	exams, err := c.examService.ListBySemester(ctx.Request.Context(), ctx.Param("semester"))
	if err != nil {
		middleware.HandleAPIError(ctx, err, dto.ErrorResponse{Error: msgExamsLoadFailed})
		return
	}
	ctx.JSON(http.StatusOK, exams)
}

// ListSolutions handles retrieving the solutions of a semester
// @Summary List solutions of a semester
// @Tags loesungen
// @Produce json
// @Param semester path string true "Semester label"
// @Success 200 {array} models.SolutionMetadata
// @Failure 500 {object} dto.ErrorResponse
// @Router /api/solutions/{semester} [get]
func (c *ExamController) ListSolutions(ctx *gin.Context) {
	solutions, err := c.solutionService.ListBySemester(ctx.Request.Context(), ctx.Param("semester"))
	if err != nil {
		middleware.HandleAPIError(ctx, err, dto.ErrorResponse{Error: msgSolutionsLoadFailed})
		return
	}
	ctx.JSON(http.StatusOK, solutions)
}

// DownloadExamPDF streams an exam PDF as an attachment
// @Summary Download exam PDF
// @Tags klausuren
// @Produce application/pdf
// @Param id path int true "Exam ID"
// @Success 200 {file} binary
// @Failure 400 {string} string "Ungültige ID"
// @Failure 404 {string} string "Nicht gefunden."
// @Router /klausuren/{id}/pdf [get]
func (c *ExamController) DownloadExamPDF(ctx *gin.Context) {
	id, err := parseID(ctx.Param("id"))
	if err != nil {
		middleware.HandlePlainError(ctx, err, msgPDFNotFound, msgPDFFetchFailed)
		return
	}

	doc, err := c.examService.GetPDF(ctx.Request.Context(), id)
	if err != nil {
		middleware.HandlePlainError(ctx, err, msgPDFNotFound, msgPDFFetchFailed)
		return
	}
	writePDF(ctx, doc)
}

// DownloadSolutionPDF streams a solution PDF as an attachment
// @Summary Download solution PDF
// @Tags loesungen
// @Produce application/pdf
// @Param id path int true "Solution ID"
// @Success 200 {file} binary
// @Failure 400 {string} string "Ungültige ID"
// @Failure 404 {string} string "Nicht gefunden."
// @Router /loesungen/{id}/pdf [get]
func (c *ExamController) DownloadSolutionPDF(ctx *gin.Context) {
	id, err := parseID(ctx.Param("id"))
	if err != nil {
		middleware.HandlePlainError(ctx, err, msgPDFNotFound, msgPDFFetchFailed)
		return
	}

	doc, err := c.solutionService.GetPDF(ctx.Request.Context(), id)
	if err != nil {
		middleware.HandlePlainError(ctx, err, msgPDFNotFound, msgPDFFetchFailed)
		return
	}
	writePDF(ctx, doc)
}

func parseID(raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, apperrors.Wrap(apperrors.KindValidation, apperrors.ErrInvalidID.Message, err)
	}
	return id, nil
}

func writePDF(ctx *gin.Context, doc *models.PDFDocument) {
	ctx.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", doc.Filename))
	ctx.Data(http.StatusOK, "application/pdf", doc.Content)
}
