// Package model defines database models
package model

import "time"

type User struct {
	ID           string     `gorm:"primaryKey;type:varchar(36)" json:"user_uuid"`
	UserID       string     `gorm:"uniqueIndex;size:50;not null" json:"user_id"` // Login name picked by the user
	Nickname     string     `gorm:"uniqueIndex;size:15;not null" json:"nickname"`
	Email        string     `gorm:"uniqueIndex;size:50;not null" json:"email"`
	PasswordHash string     `gorm:"not null" json:"-"`
	AvatarKey    string     `json:"avatar_key,omitempty"`
	Verified     bool       `gorm:"default:false" json:"verified"`
	ExpiresAt    *time.Time `json:"-"` // Unverified accounts are purged after this point
	CreatedAt    time.Time  `json:"created_at"`
}

// Profile is the public view of a user shown to other users
type Profile struct {
	ID        string    `json:"user_uuid"`
	UserID    string    `json:"user_id"`
	Nickname  string    `json:"nickname"`
	AvatarKey string    `json:"avatar_key,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

func (u *User) Profile() Profile {
	return Profile{
		ID:        u.ID,
		UserID:    u.UserID,
		Nickname:  u.Nickname,
		AvatarKey: u.AvatarKey,
		CreatedAt: u.CreatedAt,
	}
}
