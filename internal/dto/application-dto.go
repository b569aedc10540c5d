package dto

import "time"

type ApplyRequest struct {
	Motivation string `json:"motivation"`
}

type ApplyResponse struct {
	ApplicationID uint `json:"application_id"`
}

type ReviewRequest struct {
	Decision string `json:"decision" example:"accepted"`
}

// StudentApplicationRow is an application joined with its role and project
// names, as listed on the student's dashboard.
type StudentApplicationRow struct {
	ApplicationID uint      `json:"application_id"`
	Status        string    `json:"status"`
	Motivation    string    `json:"motivation"`
	ApplyTime     time.Time `json:"apply_time"`
	UpdateTime    time.Time `json:"update_time"`
	RoleID        uint      `json:"role_id"`
	RoleName      string    `json:"role_name"`
	ProjectID     uint      `json:"project_id"`
	ProjectName   string    `json:"project_name"`
	Company       string    `json:"company"`
}

// RoleApplicantRow is one applicant of a role as seen by the publishing enterprise.
type RoleApplicantRow struct {
	ApplicationID uint      `json:"application_id"`
	Status        string    `json:"status"`
	Motivation    string    `json:"motivation"`
	ApplyTime     time.Time `json:"apply_time"`
	UpdateTime    time.Time `json:"update_time"`
	StudentID     uint      `json:"student_id"`
	StudentName   string    `json:"student_name"`
	RealName      string    `json:"real_name"`
}

type TeamMemberRow struct {
	ApplicationID uint      `json:"application_id"`
	StudentID     uint      `json:"user_id"`
	StudentName   string    `json:"user_name"`
	RealName      string    `json:"real_name"`
	RoleID        uint      `json:"role_id"`
	RoleName      string    `json:"role_name"`
	JoinedAt      time.Time `json:"joined_at"`
}

type TeamResponse struct {
	ProjectID   uint            `json:"project_id"`
	ProjectName string          `json:"project_name"`
	Members     []TeamMemberRow `json:"members"`
}
