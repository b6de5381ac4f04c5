package adminapi

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/talkincode/storebuilder/internal/cart"
	"github.com/talkincode/storebuilder/internal/session"
	"github.com/talkincode/storebuilder/internal/webserver"
	"github.com/talkincode/storebuilder/internal/wizard"
)

type sessionOverview struct {
	ID         string          `json:"id"`
	Onboarding wizard.State    `json:"onboarding"`
	Preview    session.Preview `json:"preview"`
	Cart       cart.Summary    `json:"cart"`
	Comments   int             `json:"comments"`
	Validated  int             `json:"validated"`
	Completed  []int           `json:"completed_milestones"`
	CreatedAt  time.Time       `json:"created_at"`
}

func registerSessionRoutes() {
	webserver.ApiGET("/session", getSession)
	webserver.ApiDELETE("/session", resetSession)
}

func getSession(c echo.Context) error {
	return withSession(c, func(s *session.Session) error {
		return ok(c, sessionOverview{
			ID:         s.ID,
			Onboarding: s.Onboarding.Snapshot(),
			Preview:    s.Preview(),
			Cart:       s.Cart.Summary(),
			Comments:   s.Board.Len(),
			Validated:  s.Board.ValidatedCount(),
			Completed:  s.Milestones.Completed(),
			CreatedAt:  s.Created(),
		})
	})
}

// resetSession drops every piece of state of the session. The cookie stays,
// so the next request starts from scratch.
func resetSession(c echo.Context) error {
	appCtx := GetAppContext(c)
	sid := webserver.SessionID(c)
	if err := appCtx.Uploads().Purge(c.Request().Context(), sid); err != nil {
		zap.L().Error("failed to purge session products", zap.String("session", sid), zap.Error(err))
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to reset session", err.Error())
	}
	_ = appCtx.Sessions().Delete(sid)
	return ok(c, map[string]interface{}{"id": sid})
}
