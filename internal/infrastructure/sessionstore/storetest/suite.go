// Package storetest is the behaviour suite every SessionStore implementation
// must pass.
package storetest

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"github.com/ecivil/civil-portal/internal/core/domain"
	"github.com/ecivil/civil-portal/internal/core/ports"
)

// Suite exercises a SessionStore. Embed it and set NewStore and PutRaw in
// SetupTest.
type Suite struct {
	suite.Suite

	// NewStore returns an empty store.
	NewStore func() ports.SessionStore
	// PutRaw writes slot content bypassing the codec.
	PutRaw func(slot string, raw []byte)

	Store ports.SessionStore
	Ctx   context.Context
}

func (s *Suite) SetupTest() {
	s.Ctx = context.Background()
	s.Store = s.NewStore()
}

func (s *Suite) slot() string {
	return uuid.NewString()
}

func (s *Suite) TestRoundTrip() {
	users := []*domain.User{
		{ID: "admin-123", FirstName: "Admin", LastName: "User", Email: "admin@ecivil.ci", Role: domain.RoleAdmin},
		{ID: "agent-123", FirstName: "Agent", LastName: "User", Email: "agent@ecivil.ci", Role: domain.RoleAgent, Commune: "Abidjan-Plateau"},
		{ID: uuid.NewString(), FirstName: "Aïcha", LastName: "N'Guessan", Email: "aicha@example.ci", Phone: "+225 0102030405", Role: domain.RoleCitizen, Commune: "Cocody"},
	}
	for _, u := range users {
		slot := s.slot()
		s.Require().NoError(s.Store.Save(s.Ctx, slot, u))

		got, err := s.Store.Load(s.Ctx, slot)
		s.Require().NoError(err)
		s.Equal(u, got)
	}
}

func (s *Suite) TestLoadMissingSlot() {
	got, err := s.Store.Load(s.Ctx, s.slot())
	s.Require().NoError(err)
	s.Nil(got)
}

func (s *Suite) TestSaveOverwrites() {
	slot := s.slot()
	s.Require().NoError(s.Store.Save(s.Ctx, slot, &domain.User{ID: "1", Email: "a@example.ci", Role: domain.RoleCitizen}))
	s.Require().NoError(s.Store.Save(s.Ctx, slot, &domain.User{ID: "2", Email: "b@example.ci", Role: domain.RoleAgent}))

	got, err := s.Store.Load(s.Ctx, slot)
	s.Require().NoError(err)
	s.Equal("2", got.ID)
}

func (s *Suite) TestClear() {
	slot := s.slot()
	s.Require().NoError(s.Store.Save(s.Ctx, slot, &domain.User{ID: "1", Email: "a@example.ci", Role: domain.RoleCitizen}))
	s.Require().NoError(s.Store.Clear(s.Ctx, slot))

	got, err := s.Store.Load(s.Ctx, slot)
	s.Require().NoError(err)
	s.Nil(got)

	s.NoError(s.Store.Clear(s.Ctx, slot), "clearing an empty slot is not an error")
}

func (s *Suite) TestSlotsAreIndependent() {
	a, b := s.slot(), s.slot()
	s.Require().NoError(s.Store.Save(s.Ctx, a, &domain.User{ID: "1", Email: "a@example.ci", Role: domain.RoleCitizen}))

	got, err := s.Store.Load(s.Ctx, b)
	s.Require().NoError(err)
	s.Nil(got)
}

func (s *Suite) TestCorruptContent() {
	cases := map[string]string{
		"not json":     "{not json",
		"wrong shape":  `["admin"]`,
		"missing id":   `{"email":"a@example.ci","role":"admin"}`,
		"unknown role": `{"id":"1","email":"a@example.ci","role":"root"}`,
	}
	for name, raw := range cases {
		s.Run(name, func() {
			slot := s.slot()
			s.PutRaw(slot, []byte(raw))

			got, err := s.Store.Load(s.Ctx, slot)
			s.Nil(got)
			s.ErrorIs(err, domain.ErrStorageCorrupt)
		})
	}
}
