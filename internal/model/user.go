package model

import "time"

type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

type UserStatus string

const (
	StatusActive   UserStatus = "active"
	StatusInactive UserStatus = "inactive"
)

type User struct {
	ID                string `gorm:"primaryKey"`
	FirstName         string `gorm:"size:100;not null"`
	LastName          string `gorm:"size:100;not null"`
	Email             string `gorm:"uniqueIndex;not null"`
	PasswordHash      string `gorm:"not null" json:"-"`
	Role              Role   `gorm:"size:16;not null;default:'user'"`
	IsActive          bool   `gorm:"default:true"`
	EmailVerified     bool   `gorm:"default:false"`
	PasswordChangedAt *time.Time
	CreatedAt         time.Time
	UpdatedAt         time.Time

	Tokens []AccountToken `gorm:"foreignKey:UserID"`
}

func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAdmin
}

func (u *User) FullName() string {
	return u.FirstName + " " + u.LastName
}

// Status maps the IsActive flag to the value exposed in API responses and
// accepted by the search filter
func (u *User) Status() UserStatus {
	if u.IsActive {
		return StatusActive
	}
	return StatusInactive
}

// PublicUser is the sanitized shape of a user returned by the API. The
// password hash never leaves the model layer
type PublicUser struct {
	ID                string     `json:"id"`
	FirstName         string     `json:"firstName"`
	LastName          string     `json:"lastName"`
	Email             string     `json:"email"`
	Role              Role       `json:"role"`
	IsActive          bool       `json:"isActive"`
	EmailVerified     bool       `json:"emailVerified"`
	PasswordChangedAt *time.Time `json:"passwordChangedAt,omitempty"`
	CreatedAt         time.Time  `json:"createdAt"`
	UpdatedAt         time.Time  `json:"updatedAt"`
}

func (u *User) Public() PublicUser {
	return PublicUser{
		ID:                u.ID,
		FirstName:         u.FirstName,
		LastName:          u.LastName,
		Email:             u.Email,
		Role:              u.Role,
		IsActive:          u.IsActive,
		EmailVerified:     u.EmailVerified,
		PasswordChangedAt: u.PasswordChangedAt,
		CreatedAt:         u.CreatedAt,
		UpdatedAt:         u.UpdatedAt,
	}
}
