package model

import (
	"encoding/json"
	"time"
)

// Resume statuses.
const (
	ResumeStatusPending   = "pending"
	ResumeStatusProcessed = "processed"
	ResumeStatusFailed    = "failed"
)

// Resume is an uploaded resume file owned by one user. FilePath is the
// object key in the resume bucket.
type Resume struct {
	ID        uint64    `json:"id"`
	UserID    uint64    `json:"userId"`
	Title     string    `json:"title"`
	FileName  string    `json:"fileName"`
	FilePath  string    `json:"filePath"`
	FileSize  int64     `json:"fileSize"`
	MimeType  string    `json:"mimeType"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// ResumeAnalysis holds one analysis run for a resume. The payload columns
// are stored as JSON text and passed through untouched.
type ResumeAnalysis struct {
	ID              uint64          `json:"id"`
	ResumeID        uint64          `json:"resumeId"`
	Analysis        json.RawMessage `json:"analysis"`
	Score           *int            `json:"score"`
	Skills          json.RawMessage `json:"skills,omitempty"`
	Experience      json.RawMessage `json:"experience,omitempty"`
	Recommendations json.RawMessage `json:"recommendations,omitempty"`
	CreatedAt       time.Time       `json:"createdAt"`
	UpdatedAt       time.Time       `json:"updatedAt"`
}
