package models

import (
	"time"
)

// EnforcementAction is a government-side progress event (issuing a notice,
// forced demolition, ...). Rows are append-only; each append overwrites the
// parent case's status with StatusSnapshot.
type EnforcementAction struct {
	CreatedAt      time.Time `json:"created_at"`
	ActionDate     time.Time `json:"action_date"`
	ActionStage    string    `json:"action_stage"`
	Executor       string    `json:"executor"`
	StatusSnapshot string    `json:"status_snapshot"`
	ID             int64     `json:"id"`
	CaseID         int64     `json:"case_id"`
}

// BuildingProgress is an inspector-side observation of the physical state of
// the construction (foundation poured, walls up, ...). Append-only, with the
// same status-linkage side effect as EnforcementAction.
type BuildingProgress struct {
	CreatedAt      time.Time `json:"created_at"`
	DiscoveryDate  time.Time `json:"discovery_date"`
	PhotoPath      *string   `json:"photo_path,omitempty"`
	Description    string    `json:"description"`
	Inspector      string    `json:"inspector"`
	StatusSnapshot string    `json:"status_snapshot"`
	ID             int64     `json:"id"`
	CaseID         int64     `json:"case_id"`
}

// FileArchive is the metadata record for an uploaded supporting document.
// Only FileName participates in compliance matching.
type FileArchive struct {
	UploadedAt    time.Time `json:"uploaded_at"`
	EnforcementID *int64    `json:"enforcement_id,omitempty"`
	DocumentCode  *string   `json:"document_code,omitempty"`
	FileName      string    `json:"file_name"`
	FilePath      string    `json:"file_path"`
	FileType      string    `json:"file_type"`
	ID            int64     `json:"id"`
	CaseID        int64     `json:"case_id"`
}
