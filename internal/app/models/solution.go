package models

import "time"

// SolutionFilenameSuffix is appended to the exam name for solution downloads
const SolutionFilenameSuffix = "_Loesung"

// Solution is a solution ("Lösung") PDF belonging to one exam
type Solution struct {
	ID        int64     `json:"id" db:"id"`
	ExamID    int64     `json:"klausur_id" db:"klausur_id"`
	PDF       []byte    `json:"-" db:"loesung_pdf"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
}

// SolutionMetadata is a solution joined with its exam's name and subject
type SolutionMetadata struct {
	ID     int64  `json:"id"`
	Name   string `json:"name"`
	Fach   string `json:"fach"`
	ExamID int64  `json:"klausur_id"`
}

// IsValid reports whether the solution references an exam
func (s *Solution) IsValid() bool {
	return s.ExamID > 0
}

// Metadata returns the solution without its PDF, using the parent exam's
// name and subject.
func (s *Solution) Metadata(exam *Exam) SolutionMetadata {
	meta := SolutionMetadata{ID: s.ID, ExamID: s.ExamID}
	if exam != nil {
		meta.Name = exam.Name
		meta.Fach = exam.Fach
	}
	return meta
}

// SolutionPDFFilename builds "<exam name>_Loesung.pdf"
func SolutionPDFFilename(examName string) string {
	return examName + SolutionFilenameSuffix + ".pdf"
}
