package domain

import (
	"fmt"
	"strings"
	"time"

	"gorm.io/datatypes"
)

type UserType string

const (
	UserTypeStudent    UserType = "student"
	UserTypeEnterprise UserType = "enterprise"
)

func ParseUserType(s string) (UserType, error) {
	t := UserType(strings.ToLower(strings.TrimSpace(s)))
	switch t {
	case UserTypeStudent, UserTypeEnterprise:
		return t, nil
	}
	return "", fmt.Errorf("invalid user type %q", s)
}

const (
	UserStatusActive   = "active"
	UserStatusDisabled = "disabled"
)

type User struct {
	ID            uint                        `gorm:"primaryKey" json:"user_id"`
	Username      string                      `gorm:"type:varchar(64);uniqueIndex;not null" json:"username"`
	PasswordHash  string                      `gorm:"not null" json:"-"`
	UserType      UserType                    `gorm:"type:varchar(20);not null" json:"user_type"`
	RealName      string                      `gorm:"type:varchar(100);not null" json:"real_name"`
	SchoolCompany string                      `gorm:"type:varchar(255)" json:"school_company"`
	SkillTags     datatypes.JSONSlice[string] `gorm:"type:jsonb" json:"skill_tags"`
	Contact       string                      `gorm:"type:varchar(255)" json:"contact"`
	Status        string                      `gorm:"type:varchar(20);not null;default:active" json:"status"`
	LastLogin     *time.Time                  `json:"last_login,omitempty"`
	CreatedAt     time.Time                   `gorm:"autoCreateTime" json:"create_time"`
}

func (User) TableName() string { return "user" }

func (u *User) Active() bool {
	return u.Status == "" || u.Status == UserStatusActive
}
