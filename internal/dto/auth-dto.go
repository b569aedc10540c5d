package dto

type RegisterRequest struct {
	Username      string   `json:"username" validate:"required,min=3"`
	Email         string   `json:"email,omitempty"`
	Password      string   `json:"password" validate:"required,min=6"`
	UserType      string   `json:"user_type" validate:"required,oneof=student enterprise"`
	RealName      string   `json:"real_name" validate:"required"`
	SchoolCompany string   `json:"school_company" validate:"required"`
	SkillTags     []string `json:"skill_tags,omitempty"`
	Contact       string   `json:"contact,omitempty"`
}

type RegisterResponse struct {
	UserID   uint   `json:"user_id"`
	UserType string `json:"user_type"`
}

type UserLogin struct {
	Username string `json:"username"`
	Email    string `json:"email,omitempty"`
	Password string `json:"password" validate:"required"`
}

type LoginResponse struct {
	Token    string `json:"token"`
	UserID   uint   `json:"user_id"`
	UserType string `json:"user_type"`
}

type UserProfileResponse struct {
	UserID        uint     `json:"user_id"`
	Username      string   `json:"username"`
	UserType      string   `json:"user_type"`
	RealName      string   `json:"real_name"`
	SchoolCompany string   `json:"school_company"`
	SkillTags     []string `json:"skill_tags"`
	Contact       string   `json:"contact"`
}
