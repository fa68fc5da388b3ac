package apperrors

import "errors"

// Kind classifies an error so the HTTP layer can pick a status code without
// inspecting messages.
type Kind int

const (
	// KindInternal is an infrastructure failure (store unreachable, query error)
	KindInternal Kind = iota
	// KindValidation is a missing or malformed required field
	KindValidation
	// KindNotFound is an unknown exam or solution id
	KindNotFound
	// KindInvalidCredentials is a failed login
	KindInvalidCredentials
	// KindUnauthorized is a protected operation without an active session
	KindUnauthorized
	// KindPayloadTooLarge is an upload part above the configured limit
	KindPayloadTooLarge
)

// String returns the kind name used in logs
func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not_found"
	case KindInvalidCredentials:
		return "invalid_credentials"
	case KindUnauthorized:
		return "unauthorized"
	case KindPayloadTooLarge:
		return "payload_too_large"
	default:
		return "internal"
	}
}

// Error is an application error carrying its kind and a client-facing message.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

// Error implements error interface
func (e *Error) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.Kind.String()
}

// Unwrap implements errors.Unwrap interface
func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches another *Error of the same kind and message, which lets
// sentinel values below be compared with errors.Is after wrapping.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && t.Message == e.Message
}

// New creates an error of the given kind
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Wrap attaches a kind and message to an underlying error
func Wrap(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// Validation errors
var (
	ErrMissingFields      = New(KindValidation, "Name, Fach und Semester sind erforderlich.")
	ErrMissingExamPDF     = New(KindValidation, "Klausur-PDF ist erforderlich.")
	ErrMissingCredentials = New(KindValidation, "Benutzername und Passwort sind erforderlich")
	ErrMissingSemester    = New(KindValidation, "Semester ist erforderlich")
	ErrInvalidID          = New(KindValidation, "Ungültige ID")
	ErrInvalidExam        = New(KindValidation, "Ungültige Klausur-Daten")
	ErrInvalidSolution    = New(KindValidation, "Ungültige Lösungs-Daten")
)

// Resource errors
var (
	ErrExamNotFound     = New(KindNotFound, "Klausur nicht gefunden")
	ErrSolutionNotFound = New(KindNotFound, "Lösung nicht gefunden")
	ErrUserNotFound     = New(KindNotFound, "Benutzer nicht gefunden")
)

// Authentication errors
var (
	// ErrInvalidCredentials is returned for both unknown users and wrong passwords
	ErrInvalidCredentials = New(KindInvalidCredentials, "Ungültiger Benutzername oder Passwort")
	ErrSessionRequired    = New(KindUnauthorized, "Authentifizierung erforderlich")
)

// Upload errors
var (
	ErrFileTooLarge = New(KindPayloadTooLarge, "Datei überschreitet die maximale Größe.")
)

// KindOf returns the kind of the first *Error in err's chain, or KindInternal.
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindInternal
}

// MessageOf returns the client-facing message of the first *Error in err's
// chain, or fallback when err carries none.
func MessageOf(err error, fallback string) string {
	var appErr *Error
	if errors.As(err, &appErr) && appErr.Message != "" {
		return appErr.Message
	}
	return fallback
}

// IsKind reports whether err is of the given kind
func IsKind(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}
