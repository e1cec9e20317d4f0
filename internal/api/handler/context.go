package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/ecivil/civil-portal/internal/api/middleware"
	"github.com/ecivil/civil-portal/internal/core/ports"
)

// ctxSession returns the auth session the Client middleware attached to the
// request. Its absence means the route was mounted outside that middleware.
func ctxSession(c echo.Context) (ports.AuthSession, error) {
	if s := middleware.SessionFrom(c); s != nil {
		return s, nil
	}
	return nil, echo.NewHTTPError(http.StatusInternalServerError, "missing client session")
}
