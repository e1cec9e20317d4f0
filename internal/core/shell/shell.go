// Package shell builds the navigation chrome of a signed-in user from the
// role capability table.
package shell

import (
	"strings"

	"github.com/ecivil/civil-portal/internal/core/domain"
)

const Brand = "E-Civil"

type NavItem struct {
	Path   string `json:"path"`
	Label  string `json:"label"`
	Active bool   `json:"active"`
}

// Chrome is the role-specific frame around a leaf view.
type Chrome struct {
	Brand        string      `json:"brand"`
	Role         domain.Role `json:"role"`
	Title        string      `json:"title"`
	UserName     string      `json:"userName"`
	RoleLabel    string      `json:"roleLabel"`
	Initials     string      `json:"initials"`
	Home         string      `json:"home"`
	ProfileRoute string      `json:"profileRoute"`
	Settings     bool        `json:"settings"`
	Nav          []NavItem   `json:"nav"`
	Logout       string      `json:"logout"`
}

// Build returns the chrome for user on currentPath. A nil user, or one whose
// role is outside the table, gets no chrome at all.
func Build(user *domain.User, currentPath string) *Chrome {
	if user == nil {
		return nil
	}
	c, ok := domain.Capabilities[user.Role]
	if !ok {
		return nil
	}

	nav := make([]NavItem, 0, len(c.Nav))
	for _, item := range c.Nav {
		nav = append(nav, NavItem{
			Path:   item.Path,
			Label:  item.Label,
			Active: item.Path == currentPath,
		})
	}

	return &Chrome{
		Brand:        Brand,
		Role:         c.Role,
		Title:        c.Title,
		UserName:     user.DisplayName(),
		RoleLabel:    roleLabel(c, user),
		Initials:     user.Initials(),
		Home:         c.Home,
		ProfileRoute: c.ProfileRoute,
		Settings:     c.Settings,
		Nav:          nav,
		Logout:       "/logout",
	}
}

// Agents are labelled with their commune.
func roleLabel(c domain.Capability, user *domain.User) string {
	if c.Role == domain.RoleAgent && strings.TrimSpace(user.Commune) != "" {
		return c.Label + " - " + user.Commune
	}
	return c.Label
}
