package domain

import (
	"fmt"
	"strings"
	"time"
)

type ApplicationStatus string

const (
	ApplicationStatusPending   ApplicationStatus = "pending"
	ApplicationStatusAccepted  ApplicationStatus = "accepted"
	ApplicationStatusRejected  ApplicationStatus = "rejected"
	ApplicationStatusCancelled ApplicationStatus = "cancelled"
)

func (s ApplicationStatus) Valid() bool {
	switch s {
	case ApplicationStatusPending, ApplicationStatusAccepted,
		ApplicationStatusRejected, ApplicationStatusCancelled:
		return true
	}
	return false
}

// Active statuses hold the (role, student) slot; a second application for the
// same role is refused while one of these exists.
func (s ApplicationStatus) Active() bool {
	return s == ApplicationStatusPending || s == ApplicationStatusAccepted
}

// Reopenable statuses may be restarted at pending by a fresh submission.
func (s ApplicationStatus) Reopenable() bool {
	return s == ApplicationStatusRejected || s == ApplicationStatusCancelled
}

// CanTransition reports whether the state machine allows from -> to.
// Only pending has outgoing edges; resubmission is modelled as a reopen.
func (s ApplicationStatus) CanTransition(to ApplicationStatus) bool {
	if s != ApplicationStatusPending {
		return false
	}
	switch to {
	case ApplicationStatusAccepted, ApplicationStatusRejected, ApplicationStatusCancelled:
		return true
	}
	return false
}

type ReviewDecision string

const (
	DecisionAccepted ReviewDecision = "accepted"
	DecisionRejected ReviewDecision = "rejected"
)

func ParseReviewDecision(s string) (ReviewDecision, error) {
	d := ReviewDecision(strings.ToLower(strings.TrimSpace(s)))
	switch d {
	case DecisionAccepted, DecisionRejected:
		return d, nil
	}
	return "", fmt.Errorf("invalid decision %q", s)
}

func (d ReviewDecision) Status() ApplicationStatus {
	return ApplicationStatus(d)
}

type RoleApplication struct {
	ID         uint              `gorm:"primaryKey" json:"application_id"`
	RoleID     uint              `gorm:"not null;uniqueIndex:uidx_role_application_role_student" json:"role_id"`
	Role       *Role             `gorm:"foreignKey:RoleID;constraint:OnDelete:CASCADE" json:"-"`
	ProjectID  uint              `gorm:"not null;index:idx_role_application_project_student" json:"project_id"`
	Project    *Project          `gorm:"foreignKey:ProjectID;constraint:OnDelete:CASCADE" json:"-"`
	StudentID  uint              `gorm:"not null;uniqueIndex:uidx_role_application_role_student;index:idx_role_application_project_student" json:"student_id"`
	Student    *User             `gorm:"foreignKey:StudentID;constraint:OnDelete:CASCADE" json:"-"`
	Motivation string            `gorm:"type:text" json:"motivation"`
	Status     ApplicationStatus `gorm:"type:varchar(20);not null;default:pending" json:"status"`
	AppliedAt  time.Time         `gorm:"not null" json:"apply_time"`
	UpdatedAt  time.Time         `json:"update_time"`
}

func (RoleApplication) TableName() string { return "role_application" }
