// Package gate decides, for one navigation, whether a protected view may be
// rendered or where the client has to be sent instead.
//
// Authentication is always checked before role membership: a signed-out
// client is sent to the login page whatever the allowed roles are.
package gate

import (
	"net/url"
	"strings"

	"github.com/ecivil/civil-portal/internal/core/domain"
)

// Outcome is the terminal result of one evaluation.
type Outcome int

const (
	Render Outcome = iota
	RedirectLogin
	RedirectRoleHome
	RedirectLanding
)

func (o Outcome) String() string {
	switch o {
	case Render:
		return "render"
	case RedirectLogin:
		return "redirect_login"
	case RedirectRoleHome:
		return "redirect_role_home"
	case RedirectLanding:
		return "redirect_landing"
	default:
		return "unknown"
	}
}

// Decision is an Outcome plus, for redirects, the target location.
type Decision struct {
	Outcome  Outcome
	Location string
}

// Policy is the set of roles allowed to render a view tree. An empty policy
// renders for nobody.
type Policy struct {
	allowed map[domain.Role]struct{}
}

func NewPolicy(allowed ...domain.Role) Policy {
	p := Policy{allowed: make(map[domain.Role]struct{}, len(allowed))}
	for _, r := range allowed {
		p.allowed[r] = struct{}{}
	}
	return p
}

// Allows reports whether r is in the policy.
func (p Policy) Allows(r domain.Role) bool {
	_, ok := p.allowed[r]
	return ok
}

// Evaluate decides the navigation to requested for user (nil when signed
// out).
func (p Policy) Evaluate(user *domain.User, requested string) Decision {
	if user == nil {
		return Decision{Outcome: RedirectLogin, Location: LoginLocation(requested)}
	}
	if p.Allows(user.Role) {
		return Decision{Outcome: Render}
	}
	if user.Role.Valid() {
		return Decision{Outcome: RedirectRoleHome, Location: domain.HomeFor(user.Role)}
	}
	return Decision{Outcome: RedirectLanding, Location: domain.LandingPath}
}

// LoginLocation is the login page carrying requested as its return target.
func LoginLocation(requested string) string {
	if !isLocalPath(requested) {
		return domain.LoginPath
	}
	return domain.LoginPath + "?" + url.Values{"from": {requested}}.Encode()
}

// ReturnTarget picks where to send user after a successful login: back to
// from when the user's role may render it, otherwise the role home.
func ReturnTarget(user *domain.User, from string) string {
	if user == nil {
		return domain.LoginPath
	}
	if isLocalPath(from) {
		path := from
		if i := strings.IndexAny(path, "?#"); i >= 0 {
			path = path[:i]
		}
		if owner, ok := domain.RoleForPath(path); ok && owner == user.Role {
			return from
		}
	}
	return domain.HomeFor(user.Role)
}

// isLocalPath rejects absolute and scheme-relative URLs so return targets
// cannot leave the portal.
func isLocalPath(p string) bool {
	return strings.HasPrefix(p, "/") && !strings.HasPrefix(p, "//") && !strings.HasPrefix(p, "/\\")
}
