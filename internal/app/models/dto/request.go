package dto

import "mime/multipart"

// LoginRequest represents login credentials
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// UploadForm is the multipart body of POST /api/upload
type UploadForm struct {
	Name     string                `form:"name"`
	Fach     string                `form:"fach"`
	Semester string                `form:"semester"`
	Klausur  *multipart.FileHeader `form:"klausur"`
	Loesung  *multipart.FileHeader `form:"loesung"`
}
