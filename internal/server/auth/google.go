package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/mindbloging/mindbloging/internal/common"
	"github.com/mindbloging/mindbloging/internal/server/identity"
	"google.golang.org/api/idtoken"
	"google.golang.org/api/option"
)

// IdentityVerifier turns a third-party credential into a verified assertion.
// Every failure matches common.ErrUpstreamIdentity.
type IdentityVerifier interface {
	Verify(ctx context.Context, credential string) (*identity.Assertion, error)
}

var googleIssuers = map[string]bool{
	"accounts.google.com":         true,
	"https://accounts.google.com": true,
}

var errGoogleNotConfigured = errors.New("google client id is not configured")

// newIDTokenValidator is a seam for tests.
var newIDTokenValidator = func(ctx context.Context, opts ...idtoken.ClientOption) (*idtoken.Validator, error) {
	return idtoken.NewValidator(ctx, opts...)
}

// GoogleVerifier checks Google ID tokens against Google's signing keys and the
// configured OAuth client id.
type GoogleVerifier struct {
	clientID string
	validate func(ctx context.Context, token, audience string) (*idtoken.Payload, error)
}

func NewGoogleVerifier(ctx context.Context, clientID string, client *http.Client) (*GoogleVerifier, error) {
	if client == nil {
		client = http.DefaultClient
	}
	v, err := newIDTokenValidator(ctx, option.WithHTTPClient(client))
	if err != nil {
		return nil, fmt.Errorf("google token validator: %w", err)
	}
	return &GoogleVerifier{clientID: clientID, validate: v.Validate}, nil
}

func (g *GoogleVerifier) Verify(ctx context.Context, credential string) (*identity.Assertion, error) {
	if g.clientID == "" {
		return nil, upstream(errGoogleNotConfigured)
	}
	if credential == "" {
		return nil, upstream(errors.New("empty credential"))
	}

	payload, err := g.validate(ctx, credential, g.clientID)
	if err != nil {
		return nil, upstream(err)
	}

	return assertionFromPayload(payload)
}

func assertionFromPayload(p *idtoken.Payload) (*identity.Assertion, error) {
	if !googleIssuers[p.Issuer] {
		return nil, upstream(fmt.Errorf("unexpected issuer %q", p.Issuer))
	}
	if p.Subject == "" {
		return nil, upstream(errors.New("missing subject"))
	}

	a := &identity.Assertion{
		Provider:      identity.ProviderGoogle,
		Subject:       p.Subject,
		Email:         strings.ToLower(strings.TrimSpace(claimString(p.Claims, "email"))),
		EmailVerified: claimBool(p.Claims, "email_verified"),
		GivenName:     claimString(p.Claims, "given_name"),
		FamilyName:    claimString(p.Claims, "family_name"),
		Name:          claimString(p.Claims, "name"),
		Picture:       claimString(p.Claims, "picture"),
	}
	if a.Email == "" {
		return nil, upstream(errors.New("missing email"))
	}
	if !a.EmailVerified {
		return nil, upstream(errors.New("email not verified"))
	}
	return a, nil
}

func upstream(err error) error {
	return fmt.Errorf("%w: %v", common.ErrUpstreamIdentity, err)
}

func claimString(claims map[string]any, key string) string {
	s, _ := claims[key].(string)
	return s
}

// claimBool accepts both JSON booleans and the "true" strings some Google
// tokens carry.
func claimBool(claims map[string]any, key string) bool {
	switch v := claims[key].(type) {
	case bool:
		return v
	case string:
		return v == "true"
	}
	return false
}
