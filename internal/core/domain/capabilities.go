package domain

import "strings"

// LandingPath is the public landing page, the fallback for any navigation
// that has no better target.
const LandingPath = "/"

// LoginPath is the public login page.
const LoginPath = "/login"

// NavItem is one entry of the role navigation.
type NavItem struct {
	Path  string
	Label string
}

// View is a leaf page mounted under a role prefix. Path is relative to the
// prefix and may carry echo route params.
type View struct {
	Name string
	Path string
}

// Capability groups everything the portal derives from a role.
type Capability struct {
	Role         Role
	Prefix       string
	Home         string
	Title        string
	Label        string
	ProfileRoute string
	// Settings exposes the platform settings entry in the user menu.
	Settings bool
	Nav      []NavItem
	Views    []View
}

// Capabilities is the single role table consulted by the gate, the shell,
// the router and the post-login redirect.
var Capabilities = map[Role]Capability{
	RoleCitizen: {
		Role:         RoleCitizen,
		Prefix:       "/citizen",
		Home:         "/citizen/dashboard",
		Title:        "Espace Citoyen",
		Label:        "Citoyen",
		ProfileRoute: "/citizen/profile",
		Nav: []NavItem{
			{Path: "/citizen/dashboard", Label: "Tableau de bord"},
			{Path: "/citizen/new-request", Label: "Nouvelle demande"},
			{Path: "/citizen/requests", Label: "Suivi de demandes"},
			{Path: "/citizen/profile", Label: "Mon profil"},
		},
		Views: []View{
			{Name: "dashboard", Path: "/dashboard"},
			{Name: "new-request", Path: "/new-request"},
			{Name: "requests", Path: "/requests"},
			{Name: "request-detail", Path: "/requests/:id"},
			{Name: "payment", Path: "/payment/:id"},
			{Name: "profile", Path: "/profile"},
		},
	},
	RoleAgent: {
		Role:         RoleAgent,
		Prefix:       "/agent",
		Home:         "/agent/dashboard",
		Title:        "Portail Agent",
		Label:        "Agent",
		ProfileRoute: "/agent/dashboard",
		Nav: []NavItem{
			{Path: "/agent/dashboard", Label: "Tableau de bord"},
			{Path: "/agent/requests", Label: "Demandes à traiter"},
			{Path: "/agent/history", Label: "Historique"},
		},
		Views: []View{
			{Name: "dashboard", Path: "/dashboard"},
			{Name: "requests", Path: "/requests"},
			{Name: "process-request", Path: "/process/:id"},
			{Name: "generate-document", Path: "/generate/:id"},
			{Name: "history", Path: "/history"},
		},
	},
	RoleAdmin: {
		Role:         RoleAdmin,
		Prefix:       "/admin",
		Home:         "/admin/dashboard",
		Title:        "Administration",
		Label:        "Administrateur",
		ProfileRoute: "/admin/dashboard",
		Settings:     true,
		Nav: []NavItem{
			{Path: "/admin/dashboard", Label: "Tableau de bord"},
			{Path: "/admin/users", Label: "Gestion utilisateurs"},
			{Path: "/admin/document-types", Label: "Types de documents"},
			{Path: "/admin/payments", Label: "Suivi des paiements"},
			{Path: "/admin/statistics", Label: "Statistiques"},
		},
		Views: []View{
			{Name: "dashboard", Path: "/dashboard"},
			{Name: "users", Path: "/users"},
			{Name: "document-types", Path: "/document-types"},
			{Name: "payments", Path: "/payments"},
			{Name: "statistics", Path: "/statistics"},
		},
	},
}

// Roles lists the known roles in a stable order.
var Roles = []Role{RoleCitizen, RoleAgent, RoleAdmin}

// HomeFor returns the canonical home of r, or the landing page for a role
// outside the table.
func HomeFor(r Role) string {
	if c, ok := Capabilities[r]; ok {
		return c.Home
	}
	return LandingPath
}

// RoleForPath returns the role whose prefix owns path. Public paths report
// false.
func RoleForPath(path string) (Role, bool) {
	for _, r := range Roles {
		prefix := Capabilities[r].Prefix
		if path == prefix || strings.HasPrefix(path, prefix+"/") {
			return r, true
		}
	}
	return "", false
}
