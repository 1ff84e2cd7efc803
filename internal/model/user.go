package model

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Role is a closed set of caller roles.
type Role string

const (
	RoleUser    Role = "user"
	RoleCreator Role = "creator"
	RoleAdmin   Role = "admin"
)

// DefaultContestLimit is the posting quota of an account that never bought a package.
const DefaultContestLimit = 2

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleCreator, RoleAdmin:
		return true
	}
	return false
}

// ParseRole normalizes s and reports whether it names a known role.
func ParseRole(s string) (Role, bool) {
	r := Role(strings.ToLower(strings.TrimSpace(s)))
	return r, r.Valid()
}

// NormalizeEmail is the identity key form of an email address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// User represents an account on the platform.
type User struct {
	ID           string    `json:"id" gorm:"type:char(36);primaryKey" bson:"_id"`
	Name         string    `json:"name" gorm:"size:255" bson:"name"`
	Email        string    `json:"email" gorm:"uniqueIndex;size:255;not null" bson:"email"`
	PasswordHash *string   `json:"-" gorm:"size:255" bson:"password_hash,omitempty"` // nil for social-login-only accounts
	Role         Role      `json:"role" gorm:"type:varchar(20);not null;default:'user';index" bson:"role"`
	Photo        string    `json:"photo,omitempty" gorm:"size:1024" bson:"photo,omitempty"`
	Bio          string    `json:"bio,omitempty" gorm:"type:text" bson:"bio,omitempty"`
	ContestLimit int       `json:"contestLimit" gorm:"not null;default:2" bson:"contest_limit"`
	PackageID    *string   `json:"package,omitempty" gorm:"size:32" bson:"package,omitempty"`
	CreatedAt    time.Time `json:"createdAt" bson:"created_at"`
	UpdatedAt    time.Time `json:"updatedAt" bson:"updated_at"`
}

// HasPassword reports whether the account can log in with a local password.
func (u *User) HasPassword() bool {
	return u.PasswordHash != nil && *u.PasswordHash != ""
}

// BeforeCreate sets UUID before creating the record.
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	return nil
}

// ProfilePatch carries the self-editable profile fields. Nil fields are left untouched.
type ProfilePatch struct {
	Name  *string `json:"name"`
	Photo *string `json:"photo"`
	Bio   *string `json:"bio"`
}

// Apply writes the supplied fields onto u.
func (p ProfilePatch) Apply(u *User) {
	if p.Name != nil {
		u.Name = *p.Name
	}
	if p.Photo != nil {
		u.Photo = *p.Photo
	}
	if p.Bio != nil {
		u.Bio = *p.Bio
	}
}
