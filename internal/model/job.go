package model

import "time"

// Job is a posting candidates can apply to.
type Job struct {
	ID           uint64    `json:"id"`
	Title        string    `json:"title"`
	Company      string    `json:"company"`
	Description  string    `json:"description"`
	Requirements []string  `json:"requirements"`
	Location     string    `json:"location"`
	Salary       string    `json:"salary"`
	JobType      string    `json:"jobType"`
	IsActive     bool      `json:"isActive"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// Application statuses, in pipeline order.
const (
	ApplicationApplied     = "applied"
	ApplicationReviewing   = "reviewing"
	ApplicationInterviewed = "interviewed"
	ApplicationOffered     = "offered"
	ApplicationRejected    = "rejected"
)

// ApplicationStatuses lists every valid application status.
var ApplicationStatuses = []string{
	ApplicationApplied,
	ApplicationReviewing,
	ApplicationInterviewed,
	ApplicationOffered,
	ApplicationRejected,
}

// JobApplication links a user, a job and the resume they applied with.
// MatchScore is 0-100 when set.
type JobApplication struct {
	ID         uint64    `json:"id"`
	UserID     uint64    `json:"userId"`
	JobID      uint64    `json:"jobId"`
	ResumeID   uint64    `json:"resumeId"`
	Status     string    `json:"status"`
	MatchScore *int      `json:"matchScore"`
	Notes      string    `json:"notes"`
	AppliedAt  time.Time `json:"appliedAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// ValidApplicationStatus reports whether s is a known status.
func ValidApplicationStatus(s string) bool {
	for _, v := range ApplicationStatuses {
		if v == s {
			return true
		}
	}
	return false
}
