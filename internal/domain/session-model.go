package domain

import "time"

// AuthToken is an opaque bearer token issued at login. Tokens do not expire;
// logout deletes them.
type AuthToken struct {
	Token     string    `gorm:"primaryKey;type:varchar(128)" json:"token"`
	UserID    uint      `gorm:"not null;index" json:"user_id"`
	User      *User     `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (AuthToken) TableName() string { return "auth_tokens" }
