package domain

import (
	"fmt"
	"strings"
	"time"
)

type ProjectStatus string

const (
	ProjectStatusDraft      ProjectStatus = "draft"
	ProjectStatusRecruiting ProjectStatus = "recruiting"
	ProjectStatusInProgress ProjectStatus = "in_progress"
	ProjectStatusCompleted  ProjectStatus = "completed"
	ProjectStatusTerminated ProjectStatus = "terminated"
)

func ParseProjectStatus(s string) (ProjectStatus, error) {
	st := ProjectStatus(strings.ToLower(strings.TrimSpace(s)))
	if !st.Valid() {
		return "", fmt.Errorf("invalid project status %q", s)
	}
	return st, nil
}

func (s ProjectStatus) Valid() bool {
	switch s {
	case ProjectStatusDraft, ProjectStatusRecruiting, ProjectStatusInProgress,
		ProjectStatusCompleted, ProjectStatusTerminated:
		return true
	}
	return false
}

// Published reports whether the project is visible and still able to take
// on members: it has left draft and has not been terminated.
func (s ProjectStatus) Published() bool {
	return s.Valid() && s != ProjectStatusDraft && s != ProjectStatusTerminated
}

type Project struct {
	ID          uint          `gorm:"primaryKey" json:"project_id"`
	Name        string        `gorm:"type:varchar(200);not null" json:"project_name"`
	Description string        `gorm:"type:text" json:"description"`
	PublisherID uint          `gorm:"not null;index" json:"publisher_id"`
	Publisher   *User         `gorm:"foreignKey:PublisherID;constraint:OnDelete:CASCADE" json:"-"`
	Company     string        `gorm:"type:varchar(255);not null" json:"company"`
	Status      ProjectStatus `gorm:"type:varchar(20);not null;default:recruiting;index" json:"project_status"`
	Deadline    *time.Time    `json:"deadline,omitempty"`
	ResultURL   string        `gorm:"type:text" json:"result_url"`
	PublishedAt time.Time     `gorm:"autoCreateTime" json:"publish_time"`
}

func (Project) TableName() string { return "project" }
