package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/ecivil/civil-portal/internal/core/domain"
	"github.com/ecivil/civil-portal/internal/core/shell"
)

// Public pages reachable without signing in.
const (
	PageLanding        = "landing"
	PageLogin          = "login"
	PageRegister       = "register"
	PageForgotPassword = "forgot-password"
)

// pageResponse describes a public page together with the visitor's session.
type pageResponse struct {
	Page    string          `json:"page"`
	Session sessionResponse `json:"session"`
	// From is echoed back on the login page so the form can return there.
	From string `json:"from,omitempty"`
}

// viewResponse is a protected leaf view framed by the role chrome.
type viewResponse struct {
	View   string            `json:"view"`
	Params map[string]string `json:"params,omitempty"`
	Chrome *shell.Chrome     `json:"chrome"`
}

// PortalHandler serves page descriptors. Page content lives in the client;
// the server decides which page, under which chrome, a client may see.
type PortalHandler struct{}

func NewPortalHandler() *PortalHandler {
	return &PortalHandler{}
}

// Public returns a handler for the named public page.
func (h *PortalHandler) Public(page string) echo.HandlerFunc {
	return func(c echo.Context) error {
		sess, err := ctxSession(c)
		if err != nil {
			return err
		}
		resp := pageResponse{Page: page, Session: snapshot(sess)}
		if page == PageLogin {
			resp.From = c.QueryParam("from")
		}
		return c.JSON(http.StatusOK, resp)
	}
}

// View returns a handler rendering the named leaf view. The gate has already
// run; a session that lost its user in between gets an empty response.
func (h *PortalHandler) View(name string) echo.HandlerFunc {
	return func(c echo.Context) error {
		sess, err := ctxSession(c)
		if err != nil {
			return err
		}
		chrome := shell.Build(sess.User(), c.Request().URL.Path)
		if chrome == nil {
			return c.NoContent(http.StatusNoContent)
		}

		var params map[string]string
		if names := c.ParamNames(); len(names) > 0 {
			params = make(map[string]string, len(names))
			for _, n := range names {
				if n == "*" {
					continue
				}
				params[n] = c.Param(n)
			}
		}
		return c.JSON(http.StatusOK, viewResponse{View: name, Params: params, Chrome: chrome})
	}
}

// RedirectTo returns a handler answering 302 to location.
func (h *PortalHandler) RedirectTo(location string) echo.HandlerFunc {
	return func(c echo.Context) error {
		return c.Redirect(http.StatusFound, location)
	}
}

// Unmatched sends any unknown location, including unknown paths under a
// role prefix, to the landing page.
func (h *PortalHandler) Unmatched(c echo.Context) error {
	return c.Redirect(http.StatusFound, domain.LandingPath)
}
