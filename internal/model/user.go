package model

import "time"

// User is a directory entry for a planner account. Contact fields feed the
// remote reminder channels; empty values disable the respective channel.
type User struct {
	ID           uint   `gorm:"primaryKey"`
	Username     string `gorm:"uniqueIndex"`
	PasswordHash string
	Role         string // "student" or "teacher"
	Email        string
	PhoneNumber  string
	TelegramChat int64
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
