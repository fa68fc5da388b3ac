package dto

// MessageResponse carries a single client-facing message
type MessageResponse struct {
	Message string `json:"message"`
}

// ErrorResponse is returned by list and upload endpoints on server faults
type ErrorResponse struct {
	Error string `json:"error"`
}

// LoginResponse is returned after a successful login
type LoginResponse struct {
	Success  bool   `json:"success"`
	Message  string `json:"message"`
	UserID   int64  `json:"userId"`
	Username string `json:"username"`
}

// LogoutResponse is returned after the session was destroyed
type LogoutResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// AuthStatusResponse reports whether the caller has an active session
type AuthStatusResponse struct {
	Authenticated bool   `json:"authenticated"`
	Username      string `json:"username,omitempty"`
}

// UploadResponse carries the ids created by an upload
type UploadResponse struct {
	Message   string `json:"message"`
	KlausurID int64  `json:"klausurId"`
	LoesungID *int64 `json:"loesungId"`
}

// HealthResponse reports store reachability
type HealthResponse struct {
	Status   string `json:"status"`
	Database bool   `json:"database"`
}
