package shell

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ecivil/civil-portal/internal/core/domain"
)

func TestBuild_NoUser(t *testing.T) {
	assert.Nil(t, Build(nil, "/citizen/dashboard"))
	assert.Nil(t, Build(&domain.User{ID: "x", Role: "auditor"}, "/"))
}

func TestBuild_Citizen(t *testing.T) {
	u := &domain.User{ID: "c1", FirstName: "awa", LastName: "Kone", Role: domain.RoleCitizen, Commune: "Cocody"}

	c := Build(u, "/citizen/requests")
	require.NotNil(t, c)

	assert.Equal(t, Brand, c.Brand)
	assert.Equal(t, "Espace Citoyen", c.Title)
	assert.Equal(t, "Citoyen", c.RoleLabel)
	assert.Equal(t, "awa Kone", c.UserName)
	assert.Equal(t, "AK", c.Initials)
	assert.Equal(t, "/citizen/profile", c.ProfileRoute)
	assert.False(t, c.Settings)
	assert.Equal(t, "/logout", c.Logout)

	var active []string
	for _, item := range c.Nav {
		if item.Active {
			active = append(active, item.Path)
		}
	}
	assert.Equal(t, []string{"/citizen/requests"}, active)
}

func TestBuild_AgentLabelCarriesCommune(t *testing.T) {
	c := Build(&domain.User{ID: "a", Role: domain.RoleAgent, Commune: "Abidjan-Plateau"}, "/agent/dashboard")
	require.NotNil(t, c)
	assert.Equal(t, "Agent - Abidjan-Plateau", c.RoleLabel)
	assert.Equal(t, "Portail Agent", c.Title)

	c = Build(&domain.User{ID: "a", Role: domain.RoleAgent}, "/agent/dashboard")
	assert.Equal(t, "Agent", c.RoleLabel)
}

func TestBuild_AdminExposesSettings(t *testing.T) {
	c := Build(&domain.User{ID: "a", FirstName: "Admin", LastName: "User", Role: domain.RoleAdmin}, "/admin/users")
	require.NotNil(t, c)
	assert.True(t, c.Settings)
	assert.Equal(t, "Administration", c.Title)
	assert.Equal(t, "Administrateur", c.RoleLabel)
	assert.Len(t, c.Nav, 5)
}

func TestBuild_NavIsNotShared(t *testing.T) {
	u := &domain.User{ID: "a", Role: domain.RoleAdmin}
	c := Build(u, "/admin/users")
	c.Nav[0].Label = "changed"

	assert.NotEqual(t, "changed", domain.Capabilities[domain.RoleAdmin].Nav[0].Label)
}
