package identity

// ProviderGoogle names the only third-party identity provider.
const ProviderGoogle = "google"

// Assertion is a verified statement from a third-party provider about who
// the caller is.
type Assertion struct {
	Provider      string
	Subject       string
	Email         string
	EmailVerified bool
	GivenName     string
	FamilyName    string
	Name          string
	Picture       string
}
