package models

import (
	"strings"
	"time"
)

// Exam is a past exam ("Klausur") with its PDF
type Exam struct {
	ID        int64     `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	Fach      string    `json:"fach" db:"fach"`
	Semester  string    `json:"semester" db:"semester"`
	PDF       []byte    `json:"-" db:"klausur_pdf"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
}

// ExamMetadata is the PDF-free view of an exam returned by list queries
type ExamMetadata struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Fach     string `json:"fach"`
	Semester string `json:"semester"`
}

// IsValid reports whether name, fach and semester are set
func (e *Exam) IsValid() bool {
	return strings.TrimSpace(e.Name) != "" &&
		strings.TrimSpace(e.Fach) != "" &&
		strings.TrimSpace(e.Semester) != ""
}

// Metadata returns the exam without its PDF bytes
func (e *Exam) Metadata() ExamMetadata {
	return ExamMetadata{
		ID:       e.ID,
		Name:     e.Name,
		Fach:     e.Fach,
		Semester: e.Semester,
	}
}

// PDFFilename is the download name of the exam PDF
func (e *Exam) PDFFilename() string {
	return ExamPDFFilename(e.Name)
}

// ExamPDFFilename builds "<name>.pdf"
func ExamPDFFilename(examName string) string {
	return examName + ".pdf"
}
