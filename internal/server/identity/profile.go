package identity

import (
	"net/url"
	"regexp"
	"strconv"
	"strings"
)

const fallbackName = "User"

var imageURL = regexp.MustCompile(`(?i)^https?://.+\.(jpg|jpeg|png|gif|webp)$`)

// BaseUsername derives the username seed from the local part of email.
func BaseUsername(email string) string {
	local, _, _ := strings.Cut(email, "@")
	local = strings.TrimSpace(local)
	if local == "" {
		return strings.ToLower(fallbackName)
	}
	return local
}

// UsernameCandidate returns the n-th username to try for base: base, base1,
// base2 and so on.
func UsernameCandidate(base string, n int) string {
	if n == 0 {
		return base
	}
	return base + strconv.Itoa(n)
}

// Names returns the first and last name for a new user created from a.
// given_name and family_name are preferred, then the split display name.
func Names(a *Assertion) (first, last string) {
	first, last = strings.TrimSpace(a.GivenName), strings.TrimSpace(a.FamilyName)

	parts := strings.Fields(a.Name)
	if first == "" && len(parts) > 0 {
		first = parts[0]
	}
	if last == "" && len(parts) > 1 {
		last = strings.Join(parts[1:], " ")
	}

	if first == "" {
		first = fallbackName
	}
	if last == "" {
		last = fallbackName
	}
	return first, last
}

// Avatar returns picture when it is an http(s) image URL and a generated
// initials avatar for displayName otherwise.
func Avatar(picture, displayName string) string {
	if imageURL.MatchString(picture) {
		return picture
	}
	return "https://ui-avatars.com/api/?name=" + strings.ReplaceAll(url.QueryEscape(strings.TrimSpace(displayName)), "+", "%20")
}

// LinkAvatar returns the avatar to store when linking: picture if it is an
// http(s) URL, empty otherwise. Provider picture URLs often carry no file
// extension. The repository only applies it to users without one.
func LinkAvatar(picture string) string {
	picture = strings.TrimSpace(picture)
	u, err := url.Parse(picture)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return ""
	}
	return picture
}
