package model

import "time"

type TokenPurpose string

const (
	PurposeVerifyEmail   TokenPurpose = "verify_email"
	PurposeResetPassword TokenPurpose = "reset_password"
)

// AccountToken is a single-use token shared by the email verification and
// password reset flows. The purpose column keeps the two apart so a reset
// token can never verify an email and vice versa
type AccountToken struct {
	ID        int          `gorm:"primaryKey;autoIncrement"`
	UserID    string       `gorm:"index;not null"`
	Token     string       `gorm:"uniqueIndex;not null"`
	Purpose   TokenPurpose `gorm:"size:32;index;not null"`
	ExpiresAt time.Time    `gorm:"index;not null"`
	UsedAt    *time.Time
	CreatedAt time.Time

	User User `gorm:"foreignKey:UserID"`
}

func (t *AccountToken) Expired() bool {
	return time.Now().After(t.ExpiresAt)
}

func (t *AccountToken) Used() bool {
	return t.UsedAt != nil
}
