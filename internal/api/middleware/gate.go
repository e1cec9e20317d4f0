package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/ecivil/civil-portal/internal/api/metrics"
	"github.com/ecivil/civil-portal/internal/core/domain"
	"github.com/ecivil/civil-portal/internal/core/gate"
)

// Gate guards a view group. The request renders only when the session user
// holds one of the allowed roles; otherwise the client is redirected with no
// body. group labels the decision metric.
func Gate(group string, allowed ...domain.Role) echo.MiddlewareFunc {
	policy := gate.NewPolicy(allowed...)

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			var user *domain.User
			if sess := SessionFrom(c); sess != nil {
				user = sess.User()
			}

			d := policy.Evaluate(user, c.Request().URL.RequestURI())
			metrics.GateDecisionsTotal.WithLabelValues(group, d.Outcome.String()).Inc()

			if d.Outcome == gate.Render {
				return next(c)
			}
			return c.Redirect(http.StatusFound, d.Location)
		}
	}
}
