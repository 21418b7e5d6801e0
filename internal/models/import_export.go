package models

import "time"

type ImportJobStatus string

const (
	ImportProcessing ImportJobStatus = "processing"
	ImportCompleted  ImportJobStatus = "completed"
	ImportFailed     ImportJobStatus = "failed"
)

// ImportSummary describes the outcome of a faculty/subject bulk import.
type ImportSummary struct {
	FileName        string                  `json:"file_name"`
	Status          ImportJobStatus         `json:"status"`
	TotalRows       int                     `json:"total_rows"`
	ProcessedRows   int                     `json:"processed_rows"`
	SuccessCount    int                     `json:"success_count"`
	ErrorCount      int                     `json:"error_count"`
	CreatedFaculty  int                     `json:"created_faculty"`
	UpdatedFaculty  int                     `json:"updated_faculty"`
	CreatedSubjects int                     `json:"created_subjects"`
	CreatedSections int                     `json:"created_sections"`
	Errors          []ImportValidationError `json:"errors"`
	ProcessingTime  time.Duration           `json:"processing_time"`
}

type ImportValidationError struct {
	Row     int    `json:"row"`
	Column  string `json:"column"`
	Message string `json:"message"`
	Value   string `json:"value"`
	Code    string `json:"code"`
}

type ExportFormat string

const (
	ExportCSV  ExportFormat = "csv"
	ExportXLSX ExportFormat = "xlsx"
)
