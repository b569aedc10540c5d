package dto

import "time"

type ProjectCreateRequest struct {
	ProjectName   string     `json:"project_name"`
	Description   string     `json:"description"`
	Company       string     `json:"company"`
	ProjectStatus string     `json:"project_status"`
	Deadline      *time.Time `json:"deadline,omitempty"`
	ResultURL     string     `json:"result_url"`
}

// ProjectUpdateRequest is a partial update; nil fields are left unchanged.
type ProjectUpdateRequest struct {
	ProjectName   *string    `json:"project_name,omitempty"`
	Description   *string    `json:"description,omitempty"`
	Company       *string    `json:"company,omitempty"`
	ProjectStatus *string    `json:"project_status,omitempty"`
	Deadline      *time.Time `json:"deadline,omitempty"`
	ResultURL     *string    `json:"result_url,omitempty"`
}

type RoleCreateRequest struct {
	RoleName     string     `json:"role_name"`
	TaskDesc     string     `json:"task_desc"`
	SkillTags    []string   `json:"skill_tags"`
	LimitNum     *int       `json:"limit_num,omitempty"`
	RoleStatus   string     `json:"role_status"`
	TaskDeadline *time.Time `json:"task_deadline,omitempty"`
}

type RoleUpdateRequest struct {
	RoleName     *string    `json:"role_name,omitempty"`
	TaskDesc     *string    `json:"task_desc,omitempty"`
	SkillTags    []string   `json:"skill_tags,omitempty"`
	LimitNum     *int       `json:"limit_num,omitempty"`
	RoleStatus   *string    `json:"role_status,omitempty"`
	TaskDeadline *time.Time `json:"task_deadline,omitempty"`
}

type ProjectSummary struct {
	ProjectID     uint       `json:"project_id"`
	ProjectName   string     `json:"project_name"`
	Description   string     `json:"description"`
	ProjectStatus string     `json:"project_status"`
	PublishTime   time.Time  `json:"publish_time"`
	Deadline      *time.Time `json:"deadline,omitempty"`
	Company       string     `json:"company"`
}

type RoleSummary struct {
	RoleID       uint       `json:"role_id"`
	ProjectID    uint       `json:"project_id"`
	RoleName     string     `json:"role_name"`
	TaskDesc     string     `json:"task_desc"`
	SkillTags    []string   `json:"skill_tags"`
	LimitNum     int        `json:"limit_num"`
	JoinNum      int        `json:"join_num"`
	OpenSeats    int        `json:"open_seats"`
	RoleStatus   string     `json:"role_status"`
	TaskDeadline *time.Time `json:"task_deadline,omitempty"`
}

// ProjectDetailResponse is the public view of one project and its roles.
type ProjectDetailResponse struct {
	ProjectSummary
	PublisherID   uint          `json:"publisher_id"`
	PublisherName string        `json:"publisher_name"`
	ResultURL     string        `json:"result_url"`
	Roles         []RoleSummary `json:"roles"`
}
