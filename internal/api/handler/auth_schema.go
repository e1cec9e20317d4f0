package handler

import (
	"github.com/ecivil/civil-portal/internal/core/domain"
	"github.com/ecivil/civil-portal/internal/core/ports"
)

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
	// From is the location the gate diverted the client from.
	From string `json:"from,omitempty"`
}

type registerRequest struct {
	FirstName string `json:"firstName" validate:"required,max=100"`
	LastName  string `json:"lastName" validate:"required,max=100"`
	Email     string `json:"email" validate:"required,email"`
	Phone     string `json:"phone,omitempty" validate:"omitempty,max=32"`
	Commune   string `json:"commune,omitempty" validate:"omitempty,max=100"`
	Password  string `json:"password" validate:"required,min=8"`
}

func (r registerRequest) toDomain() domain.Registration {
	return domain.Registration{
		FirstName: r.FirstName,
		LastName:  r.LastName,
		Email:     r.Email,
		Phone:     r.Phone,
		Commune:   r.Commune,
		Password:  r.Password,
	}
}

type forgotPasswordRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// authResponse is returned by login and register.
type authResponse struct {
	User     *domain.User `json:"user"`
	Redirect string       `json:"redirect"`
}

// sessionResponse is the auth state snapshot of the requesting client.
type sessionResponse struct {
	Authenticated bool         `json:"authenticated"`
	Loading       bool         `json:"loading"`
	State         string       `json:"state"`
	User          *domain.User `json:"user,omitempty"`
	Home          string       `json:"home,omitempty"`
}

type messageResponse struct {
	Message  string `json:"message"`
	Redirect string `json:"redirect,omitempty"`
}

func snapshot(s ports.AuthSession) sessionResponse {
	resp := sessionResponse{
		Authenticated: s.IsAuthenticated(),
		Loading:       s.Loading(),
		State:         s.State().String(),
		User:          s.User(),
	}
	if resp.User != nil {
		resp.Home = domain.HomeFor(resp.User.Role)
	}
	return resp
}
