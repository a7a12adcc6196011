package services

import (
	"net/mail"
	"strings"
	"unicode/utf8"

	"github.com/mindbloging/mindbloging/internal/common"
	"github.com/mindbloging/mindbloging/internal/server/auth"
	"github.com/mindbloging/mindbloging/internal/server/models"
)

const (
	minUsernameLen = 3
	maxUsernameLen = 30
	minPasswordLen = 6
	maxTitleLen    = 200
	maxExcerptLen  = 300
)

// RegisterInput is a password registration request.
type RegisterInput struct {
	Username  string
	Email     string
	Password  string
	FirstName string
	LastName  string
}

func (in *RegisterInput) normalize() {
	in.Username = strings.TrimSpace(in.Username)
	in.Email = NormalizeEmail(in.Email)
	in.FirstName = strings.TrimSpace(in.FirstName)
	in.LastName = strings.TrimSpace(in.LastName)
}

func (in *RegisterInput) validate() error {
	if n := utf8.RuneCountInString(in.Username); n < minUsernameLen || n > maxUsernameLen {
		return invalid("Username must be between 3 and 30 characters")
	}
	if !validEmail(in.Email) {
		return invalid("Please enter a valid email")
	}
	if len(in.Password) < minPasswordLen {
		return invalid("Password must be at least 6 characters")
	}
	if len(in.Password) > auth.MaxPasswordBytes {
		return invalid("Password must be at most 72 bytes")
	}
	if in.FirstName == "" {
		return invalid("First name is required")
	}
	if in.LastName == "" {
		return invalid("Last name is required")
	}
	return nil
}

// NormalizeEmail lower-cases and trims an email address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func validEmail(email string) bool {
	addr, err := mail.ParseAddress(email)
	return err == nil && addr.Address == email && addr.Name == ""
}

func invalid(msg string) error {
	return common.Detail(common.ErrorValidation, msg)
}

func validateProfile(upd *models.ProfileUpdate) error {
	for _, f := range []**string{&upd.FirstName, &upd.LastName} {
		if *f == nil {
			continue
		}
		v := strings.TrimSpace(**f)
		if v == "" {
			return invalid("Name cannot be empty")
		}
		*f = &v
	}
	if upd.Bio != nil && utf8.RuneCountInString(*upd.Bio) > 500 {
		return invalid("Bio cannot exceed 500 characters")
	}
	return nil
}
