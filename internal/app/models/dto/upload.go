package dto

// UploadFile is an uploaded PDF read into memory
type UploadFile struct {
	Filename string
	Content  []byte
}

// UploadInput is what the upload use case receives from the route layer
type UploadInput struct {
	Name     string
	Fach     string
	Semester string
	Klausur  *UploadFile
	Loesung  *UploadFile
}

// UploadResult holds the ids created by an upload
type UploadResult struct {
	ExamID     int64
	SolutionID *int64
}
