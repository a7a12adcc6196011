// Package identity decides how an incoming credential maps onto a stored
// user. The functions here are pure: they look at what the store returned
// and produce a Decision that the caller applies with exactly one write.
package identity

import (
	"errors"

	"github.com/mindbloging/mindbloging/internal/common"
	"github.com/mindbloging/mindbloging/internal/server/models"
)

// Action is what a resolution asks the caller to do.
type Action int

const (
	// ActionCreate inserts a new user.
	ActionCreate Action = iota
	// ActionLink attaches the asserted third-party id to Decision.User.
	ActionLink
	// ActionUseExisting signs in Decision.User without any write.
	ActionUseExisting
	// ActionReject fails with Decision.Err.
	ActionReject
)

func (a Action) String() string {
	switch a {
	case ActionCreate:
		return "create"
	case ActionLink:
		return "link"
	case ActionUseExisting:
		return "use_existing"
	case ActionReject:
		return "reject"
	}
	return "unknown"
}

type Decision struct {
	Action Action
	User   *models.User
	Err    error
}

// Client-facing messages of the rejections.
const (
	MsgEmailExists        = "Email already exists"
	MsgUsernameExists     = "Username already exists"
	MsgInvalidCredentials = "Invalid credentials"
	MsgGoogleFailed       = "Google authentication failed"
)

var (
	errEmailExists    = common.Detail(common.ErrDuplicateIdentity, MsgEmailExists)
	errUsernameExists = common.Detail(common.ErrDuplicateIdentity, MsgUsernameExists)
)

// ErrInvalidCredentials is the single error for every password login failure.
var ErrInvalidCredentials = common.Detail(common.ErrInvalidCredentials, MsgInvalidCredentials)

// ErrGoogleFailed is the single error for every Google sign-in failure.
var ErrGoogleFailed = common.Detail(common.ErrUpstreamIdentity, MsgGoogleFailed)

// errSubjectMismatch is logged, never shown: the client sees ErrGoogleFailed.
var errSubjectMismatch = errors.New("email is linked to a different google account")

// DecideRegistration resolves a password registration against the users that
// already hold the requested email or username. Email wins over username when
// both collide.
func DecideRegistration(email, username string, existing []*models.User) Decision {
	for _, u := range existing {
		if u.Email == email {
			return Decision{Action: ActionReject, Err: errEmailExists}
		}
	}
	for _, u := range existing {
		if u.Username == username {
			return Decision{Action: ActionReject, Err: errUsernameExists}
		}
	}
	return Decision{Action: ActionCreate}
}

// RegistrationConflict maps a unique violation raised by a concurrent
// registration to the same rejection DecideRegistration would have produced.
func RegistrationConflict(emailTaken bool) error {
	if emailTaken {
		return errEmailExists
	}
	return errUsernameExists
}

// DecideThirdParty resolves a verified assertion against the user found by the
// asserted email (nil when there is none).
func DecideThirdParty(a *Assertion, byEmail *models.User) Decision {
	if byEmail == nil {
		return Decision{Action: ActionCreate}
	}
	if !byEmail.HasGoogle() {
		return Decision{Action: ActionLink, User: byEmail}
	}
	if *byEmail.GoogleID == a.Subject {
		return Decision{Action: ActionUseExisting, User: byEmail}
	}
	return Decision{Action: ActionReject, User: byEmail, Err: errSubjectMismatch}
}

// DecideLogin resolves a password login. passwordOK is only consulted when a
// user with a password exists; every other path yields ErrInvalidCredentials.
func DecideLogin(byEmail *models.User, passwordOK func(hash string) bool) Decision {
	if byEmail == nil || !byEmail.HasPassword() || !passwordOK(*byEmail.PasswordHash) {
		return Decision{Action: ActionReject, Err: ErrInvalidCredentials}
	}
	return Decision{Action: ActionUseExisting, User: byEmail}
}

// IsSubjectMismatch reports whether err is the rejection DecideThirdParty
// returns for an email linked to another subject.
func IsSubjectMismatch(err error) bool {
	return errors.Is(err, errSubjectMismatch)
}
