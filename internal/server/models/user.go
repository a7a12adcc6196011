package models

import "time"

// User is a registered author. It holds at least one proof of identity:
// a bcrypt password hash, a linked Google subject, or both.
type User struct {
	ID           string
	Username     string
	Email        string
	PasswordHash *string
	GoogleID     *string
	FirstName    string
	LastName     string
	Avatar       string
	Bio          string
	Bookmarks    []string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// HasPassword reports whether the user can log in with a password.
func (u *User) HasPassword() bool {
	return u.PasswordHash != nil && *u.PasswordHash != ""
}

// HasGoogle reports whether a Google identity is linked to the user.
func (u *User) HasGoogle() bool {
	return u.GoogleID != nil && *u.GoogleID != ""
}

// ProfileUpdate carries the optional profile fields of a profile edit.
// Nil fields are left unchanged.
type ProfileUpdate struct {
	FirstName *string
	LastName  *string
	Bio       *string
	Avatar    *string
}

// Apply copies the non-nil fields onto u.
func (p ProfileUpdate) Apply(u *User) {
	if p.FirstName != nil {
		u.FirstName = *p.FirstName
	}
	if p.LastName != nil {
		u.LastName = *p.LastName
	}
	if p.Bio != nil {
		u.Bio = *p.Bio
	}
	if p.Avatar != nil {
		u.Avatar = *p.Avatar
	}
}
