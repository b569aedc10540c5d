package dto

import "time"

const (
	EventApplicationSubmitted = "application.submitted"
	EventApplicationCancelled = "application.cancelled"
	EventApplicationAccepted  = "application.accepted"
	EventApplicationRejected  = "application.rejected"
)

// ApplicationEvent is published after an application transition commits.
type ApplicationEvent struct {
	EventID        string    `json:"event_id"`
	Type           string    `json:"type"`
	ApplicationID  uint      `json:"application_id"`
	RoleID         uint      `json:"role_id"`
	ProjectID      uint      `json:"project_id"`
	StudentID      uint      `json:"student_id"`
	Status         string    `json:"status"`
	StudentName    string    `json:"student_name,omitempty"`
	StudentContact string    `json:"student_contact,omitempty"`
	OccurredAt     time.Time `json:"occurred_at"`
}
