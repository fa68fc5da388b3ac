package models

// PDFDocument is a PDF payload ready for download
type PDFDocument struct {
	Filename string
	Content  []byte
}
