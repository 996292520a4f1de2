package domain

import "errors"

// MaxUploadBytes caps the size of an uploaded progress CSV.
const MaxUploadBytes = 5 << 20

var (
	ErrNotFound       = errors.New("project not found")
	ErrNotCSV         = errors.New("file must be a CSV")
	ErrTooLarge       = errors.New("file exceeds 5MB")
	ErrEmptyFile      = errors.New("CSV file is empty or has no data rows")
	ErrMissingColumns = errors.New("missing required columns")
	ErrNoValidRows    = errors.New("no valid rows to import")
	ErrInvalidPath    = errors.New("invalid object path")
	ErrInvalidWeek    = errors.New("week must be a positive number")
)

type Project struct {
	ID   int64  `json:"project_id"`
	Name string `json:"name"`
}

// PhaseProgress is one projects_phase row: the progress of a phase of a
// project in a given week.
type PhaseProgress struct {
	ProjectID        int64   `json:"project_id"`
	DomainID         int64   `json:"domains_id"`
	Progress         float64 `json:"progress"`
	ExpectedProgress float64 `json:"expected_progress"`
	Order            int     `json:"order"`
	Period           int     `json:"period"`
}

// RowError points at a CSV line, counting the header as line 1.
type RowError struct {
	Row     int    `json:"row"`
	Message string `json:"message"`
}

// ImportReport summarises one import run.
type ImportReport struct {
	File              string     `json:"file"`
	ParsedRows        int        `json:"parsed_rows"`
	ValidRows         int        `json:"valid_rows"`
	Inserted          int        `json:"inserted"`
	Updated           int        `json:"updated"`
	InsertedOrUpdated int        `json:"inserted_or_updated"`
	FileDeleted       bool       `json:"file_deleted"`
	DetectedDelimiter string     `json:"detected_delimiter"`
	Encoding          string     `json:"encoding"`
	Ms                int64      `json:"ms"`
	ErrorsCount       int        `json:"errors_count"`
	Errors            []RowError `json:"errors"`
}
