package gate

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ecivil/civil-portal/internal/core/domain"
)

var (
	admin   = &domain.User{ID: "admin-123", Email: "admin@ecivil.ci", Role: domain.RoleAdmin}
	agent   = &domain.User{ID: "agent-123", Email: "agent@ecivil.ci", Role: domain.RoleAgent}
	citizen = &domain.User{ID: "citizen-123", Email: "random@user.com", Role: domain.RoleCitizen}
)

func TestEvaluate_SignedOutAlwaysGoesToLogin(t *testing.T) {
	policies := map[string]Policy{
		"empty":   NewPolicy(),
		"citizen": NewPolicy(domain.RoleCitizen),
		"all":     NewPolicy(domain.Roles...),
	}
	for name, p := range policies {
		t.Run(name, func(t *testing.T) {
			d := p.Evaluate(nil, "/admin/users?page=2")
			assert.Equal(t, RedirectLogin, d.Outcome)
			assert.Equal(t, "/login?from=%2Fadmin%2Fusers%3Fpage%3D2", d.Location)
		})
	}
}

func TestEvaluate(t *testing.T) {
	tests := []struct {
		name     string
		policy   Policy
		user     *domain.User
		outcome  Outcome
		location string
	}{
		{"admin renders admin tree", NewPolicy(domain.RoleAdmin), admin, Render, ""},
		{"admin sent home from citizen tree", NewPolicy(domain.RoleCitizen), admin, RedirectRoleHome, "/admin/dashboard"},
		{"citizen sent to own home from agent tree", NewPolicy(domain.RoleAgent), citizen, RedirectRoleHome, "/citizen/dashboard"},
		{"agent renders multi-role policy", NewPolicy(domain.RoleAgent, domain.RoleAdmin), agent, Render, ""},
		{"empty policy denies", NewPolicy(), admin, RedirectRoleHome, "/admin/dashboard"},
		{"unknown role lands", NewPolicy(domain.RoleAdmin), &domain.User{ID: "x", Role: "auditor"}, RedirectLanding, "/"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := tt.policy.Evaluate(tt.user, "/somewhere")
			assert.Equal(t, tt.outcome, d.Outcome)
			assert.Equal(t, tt.location, d.Location)
		})
	}
}

func TestLoginLocation_RejectsForeignTargets(t *testing.T) {
	assert.Equal(t, "/login", LoginLocation("https://evil.example/x"))
	assert.Equal(t, "/login", LoginLocation("//evil.example/x"))
	assert.Equal(t, "/login", LoginLocation(""))
	assert.Equal(t, "/login?from=%2Fcitizen%2Fprofile", LoginLocation("/citizen/profile"))
}

func TestReturnTarget(t *testing.T) {
	assert.Equal(t, "/citizen/requests/42", ReturnTarget(citizen, "/citizen/requests/42"))
	assert.Equal(t, "/citizen/dashboard", ReturnTarget(citizen, "/agent/history"))
	assert.Equal(t, "/admin/dashboard", ReturnTarget(admin, ""))
	assert.Equal(t, "/admin/dashboard", ReturnTarget(admin, "//evil.example/admin"))
	assert.Equal(t, "/admin/users?page=2", ReturnTarget(admin, "/admin/users?page=2"))
	assert.Equal(t, "/agent/dashboard", ReturnTarget(agent, "/register"))
	assert.Equal(t, "/login", ReturnTarget(nil, "/admin/users"))
}

func TestOutcomeString(t *testing.T) {
	assert.Equal(t, "render", Render.String())
	assert.Equal(t, "redirect_login", RedirectLogin.String())
	assert.Equal(t, "redirect_role_home", RedirectRoleHome.String())
	assert.Equal(t, "redirect_landing", RedirectLanding.String())
}
