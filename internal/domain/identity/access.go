package identity

import "strings"

// Decision is the outcome of an access check
type Decision int

const (
	// Allow lets the request through
	Allow Decision = iota
	// Deny sends an anonymous visitor to the login page
	Deny
	// Redirect sends a signed-in user to the landing page
	Redirect
)

func (d Decision) String() string {
	switch d {
	case Allow:
		return "allow"
	case Deny:
		return "deny"
	case Redirect:
		return "redirect"
	default:
		return "unknown"
	}
}

// AccessPolicy decides page access from the request path and whether a
// session is present. It keeps no state between calls.
type AccessPolicy struct {
	// ProtectedPrefix is the path namespace that needs a session
	ProtectedPrefix string
	// LoginPath is where denied requests are sent
	LoginPath string
	// LandingPath is where signed-in users visiting public pages are sent
	LandingPath string
}

// DefaultAccessPolicy protects /dashboard and signs in at /login
func DefaultAccessPolicy() AccessPolicy {
	return AccessPolicy{
		ProtectedPrefix: "/dashboard",
		LoginPath:       "/login",
		LandingPath:     "/dashboard",
	}
}

// Authorize returns the access decision for path. Matching is a plain
// string prefix, so "/dashboardx" is protected as well.
func (p AccessPolicy) Authorize(loggedIn bool, path string) Decision {
	if strings.HasPrefix(path, p.ProtectedPrefix) {
		if loggedIn {
			return Allow
		}
		return Deny
	}
	if loggedIn {
		return Redirect
	}
	return Allow
}

// IsSafeCallback reports whether target is a local protected path that a
// successful sign-in may return to.
func (p AccessPolicy) IsSafeCallback(target string) bool {
	if target == "" || strings.HasPrefix(target, "//") || strings.Contains(target, `\`) {
		return false
	}
	return strings.HasPrefix(target, p.ProtectedPrefix)
}
