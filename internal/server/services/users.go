// Package services contains the server-side business logic. UserService
// resolves credentials to users and issues session tokens; the other services
// cover posts, comments, bookmarks, the dashboard and media uploads.
package services

import (
	"context"
	"database/sql"
	"errors"

	"github.com/mindbloging/mindbloging/internal/common"
	"github.com/mindbloging/mindbloging/internal/logging"
	"github.com/mindbloging/mindbloging/internal/server/auth"
	"github.com/mindbloging/mindbloging/internal/server/identity"
	"github.com/mindbloging/mindbloging/internal/server/models"
	"github.com/mindbloging/mindbloging/internal/server/repositories/repomanager"
	usersrepo "github.com/mindbloging/mindbloging/internal/server/repositories/users"
)

// maxUsernameSuffix bounds the search for a free username during Google signup.
const maxUsernameSuffix = 1000

// maxResolveAttempts bounds re-resolution when a concurrent request wins a race
// on the same email.
const maxResolveAttempts = 3

// AuthResult is the outcome of a successful sign-in.
type AuthResult struct {
	Token string
	User  *models.User
}

type UserService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	tokens      *auth.TokenService
	hasher      auth.PasswordHasher
	google      auth.IdentityVerifier
	logger      logging.Logger
}

func NewUserService(db *sql.DB, m repomanager.RepositoryManager, tokens *auth.TokenService,
	hasher auth.PasswordHasher, google auth.IdentityVerifier, l logging.Logger) *UserService {
	return &UserService{
		db:          db,
		repomanager: m,
		tokens:      tokens,
		hasher:      hasher,
		google:      google,
		logger:      l.With("module", "user_service"),
	}
}

// Register creates a password user. An email or username that is already in
// use, including by a concurrent registration, yields common.ErrDuplicateIdentity.
func (s *UserService) Register(ctx context.Context, in RegisterInput) (*AuthResult, error) {
	in.normalize()
	if err := in.validate(); err != nil {
		return nil, err
	}

	repo := s.repomanager.Users(s.db)

	existing, err := repo.FindByEmailOrUsername(ctx, in.Email, in.Username)
	if err != nil {
		s.logger.Error(ctx, "lookup failed", "error", err)
		return nil, common.ErrorInternal
	}

	d := identity.DecideRegistration(in.Email, in.Username, existing)
	if d.Action == identity.ActionReject {
		return nil, d.Err
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		s.logger.Error(ctx, "password hashing failed", "error", err)
		return nil, common.ErrorInternal
	}

	u, err := repo.Create(ctx, &models.User{
		Username:     in.Username,
		Email:        in.Email,
		PasswordHash: &hash,
		FirstName:    in.FirstName,
		LastName:     in.LastName,
	})
	switch {
	case errors.Is(err, usersrepo.ErrEmailTaken):
		return nil, identity.RegistrationConflict(true)
	case errors.Is(err, usersrepo.ErrUsernameTaken):
		return nil, identity.RegistrationConflict(false)
	case err != nil:
		s.logger.Error(ctx, "create user failed", "error", err)
		return nil, common.ErrorInternal
	}

	s.logger.Info(ctx, "user registered", "user_id", u.ID)
	return s.issue(ctx, u)
}

// Login checks an email and password. Unknown email, a user without a
// password and a wrong password all return the same error after the same
// amount of hashing work.
func (s *UserService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	email = NormalizeEmail(email)
	if email == "" || password == "" {
		return nil, invalid("Email and password are required")
	}

	u, err := s.repomanager.Users(s.db).GetByEmail(ctx, email)
	if err != nil && !errors.Is(err, common.ErrorNotFound) {
		s.logger.Error(ctx, "lookup failed", "error", err)
		return nil, common.ErrorInternal
	}

	if u == nil || !u.HasPassword() {
		s.hasher.CompareDummy(password)
	}

	d := identity.DecideLogin(u, func(hash string) bool {
		return s.hasher.Compare(hash, password)
	})
	if d.Action == identity.ActionReject {
		return nil, d.Err
	}

	return s.issue(ctx, d.User)
}

// LoginWithGoogle verifies a Google ID token and signs in the matching user,
// linking or creating it as needed. Every failure of the token or of the
// account match yields identity.ErrGoogleFailed.
func (s *UserService) LoginWithGoogle(ctx context.Context, credential string) (*AuthResult, error) {
	a, err := s.google.Verify(ctx, credential)
	if err != nil {
		s.logger.Warn(ctx, "google verification failed", "error", err)
		return nil, identity.ErrGoogleFailed
	}

	u, err := s.resolveGoogle(ctx, a)
	if err != nil {
		return nil, err
	}

	return s.issue(ctx, u)
}

func (s *UserService) resolveGoogle(ctx context.Context, a *identity.Assertion) (*models.User, error) {
	repo := s.repomanager.Users(s.db)

	for attempt := 0; attempt < maxResolveAttempts; attempt++ {
		existing, err := repo.GetByEmail(ctx, a.Email)
		if err != nil && !errors.Is(err, common.ErrorNotFound) {
			s.logger.Error(ctx, "lookup failed", "error", err)
			return nil, common.ErrorInternal
		}

		d := identity.DecideThirdParty(a, existing)
		s.logger.Debug(ctx, "google sign-in resolved", "action", d.Action.String())

		switch d.Action {
		case identity.ActionUseExisting:
			return d.User, nil

		case identity.ActionReject:
			s.logger.Warn(ctx, "google sign-in rejected", "user_id", d.User.ID, "error", d.Err)
			return nil, identity.ErrGoogleFailed

		case identity.ActionLink:
			u, err := repo.LinkGoogle(ctx, d.User.ID, a.Subject, identity.LinkAvatar(a.Picture))
			if errors.Is(err, usersrepo.ErrAlreadyLinked) {
				continue
			}
			if err != nil {
				return nil, s.googleWriteError(ctx, err)
			}
			s.logger.Info(ctx, "google identity linked", "user_id", u.ID)
			return u, nil

		case identity.ActionCreate:
			u, err := s.createGoogleUser(ctx, repo, a)
			if errors.Is(err, usersrepo.ErrEmailTaken) {
				continue
			}
			if err != nil {
				return nil, s.googleWriteError(ctx, err)
			}
			s.logger.Info(ctx, "user registered with google", "user_id", u.ID)
			return u, nil
		}
	}

	s.logger.Error(ctx, "google sign-in did not settle", "attempts", maxResolveAttempts)
	return nil, common.ErrorInternal
}

// createGoogleUser inserts a user for a, trying base, base1, base2... until a
// username is free. A username taken between the check and the insert moves
// on to the next suffix.
func (s *UserService) createGoogleUser(ctx context.Context, repo usersrepo.Repository, a *identity.Assertion) (*models.User, error) {
	base := identity.BaseUsername(a.Email)
	first, last := identity.Names(a)
	subject := a.Subject

	for n := 0; n <= maxUsernameSuffix; n++ {
		username := identity.UsernameCandidate(base, n)

		taken, err := repo.UsernameExists(ctx, username)
		if err != nil {
			return nil, err
		}
		if taken {
			continue
		}

		display := a.Name
		if display == "" {
			display = username
		}

		u, err := repo.Create(ctx, &models.User{
			Username:  username,
			Email:     a.Email,
			GoogleID:  &subject,
			FirstName: first,
			LastName:  last,
			Avatar:    identity.Avatar(a.Picture, display),
		})
		if errors.Is(err, usersrepo.ErrUsernameTaken) {
			continue
		}
		return u, err
	}

	return nil, errors.New("no free username for " + base)
}

func (s *UserService) googleWriteError(ctx context.Context, err error) error {
	if errors.Is(err, usersrepo.ErrGoogleIDTaken) {
		s.logger.Warn(ctx, "google subject already linked to another user")
		return identity.ErrGoogleFailed
	}
	s.logger.Error(ctx, "google sign-in write failed", "error", err)
	return common.ErrorInternal
}

// Me returns the user with its bookmarked post ids.
func (s *UserService) Me(ctx context.Context, userID string) (*models.User, error) {
	u, err := s.repomanager.Users(s.db).GetByID(ctx, userID)
	if err != nil {
		return nil, s.userError(ctx, err)
	}

	u.Bookmarks, err = s.repomanager.Bookmarks(s.db).PostIDs(ctx, userID)
	if err != nil {
		s.logger.Error(ctx, "bookmarks lookup failed", "error", err)
		return nil, common.ErrorInternal
	}
	return u, nil
}

// UpdateProfile changes the supplied profile fields of userID.
func (s *UserService) UpdateProfile(ctx context.Context, userID string, upd models.ProfileUpdate) (*models.User, error) {
	if err := validateProfile(&upd); err != nil {
		return nil, err
	}

	u, err := s.repomanager.Users(s.db).UpdateProfile(ctx, userID, upd)
	if err != nil {
		return nil, s.userError(ctx, err)
	}
	return u, nil
}

func (s *UserService) issue(ctx context.Context, u *models.User) (*AuthResult, error) {
	token, err := s.tokens.GenerateToken(u.ID)
	if err != nil {
		s.logger.Error(ctx, "token signing failed", "error", err)
		return nil, common.ErrorInternal
	}
	return &AuthResult{Token: token, User: u}, nil
}

func (s *UserService) userError(ctx context.Context, err error) error {
	if errors.Is(err, common.ErrorNotFound) {
		return common.Detail(common.ErrorNotFound, "User not found")
	}
	s.logger.Error(ctx, "user query failed", "error", err)
	return common.ErrorInternal
}
