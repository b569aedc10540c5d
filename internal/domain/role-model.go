package domain

import (
	"fmt"
	"strings"
	"time"

	"gorm.io/datatypes"
)

type RoleStatus string

const (
	RoleStatusRecruiting RoleStatus = "recruiting"
	RoleStatusInProgress RoleStatus = "in_progress"
	RoleStatusCompleted  RoleStatus = "completed"
)

func ParseRoleStatus(s string) (RoleStatus, error) {
	st := RoleStatus(strings.ToLower(strings.TrimSpace(s)))
	if !st.Valid() {
		return "", fmt.Errorf("invalid role status %q", s)
	}
	return st, nil
}

func (s RoleStatus) Valid() bool {
	switch s {
	case RoleStatusRecruiting, RoleStatusInProgress, RoleStatusCompleted:
		return true
	}
	return false
}

// Role is an open position in a project. JoinNum counts accepted
// applications and is only moved by an acceptance; it never exceeds LimitNum.
type Role struct {
	ID           uint                        `gorm:"primaryKey" json:"role_id"`
	ProjectID    uint                        `gorm:"not null;uniqueIndex:uidx_role_project_name" json:"project_id"`
	Project      *Project                    `gorm:"foreignKey:ProjectID;constraint:OnDelete:CASCADE" json:"-"`
	Name         string                      `gorm:"type:varchar(100);not null;uniqueIndex:uidx_role_project_name" json:"role_name"`
	TaskDesc     string                      `gorm:"type:text;not null" json:"task_desc"`
	SkillTags    datatypes.JSONSlice[string] `gorm:"type:jsonb" json:"skill_tags"`
	LimitNum     int                         `gorm:"not null;default:1;check:chk_role_limit_num,limit_num >= 1" json:"limit_num"`
	JoinNum      int                         `gorm:"not null;default:0;check:chk_role_join_num,join_num >= 0 AND join_num <= limit_num" json:"join_num"`
	Status       RoleStatus                  `gorm:"type:varchar(20);not null;default:recruiting" json:"role_status"`
	TaskDeadline *time.Time                  `json:"task_deadline,omitempty"`
}

func (Role) TableName() string { return "role" }

func (r *Role) HasOpenSeat() bool {
	return r.JoinNum < r.LimitNum
}

func (r *Role) OpenSeats() int {
	if r.JoinNum >= r.LimitNum {
		return 0
	}
	return r.LimitNum - r.JoinNum
}
