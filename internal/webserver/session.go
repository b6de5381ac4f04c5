package webserver

import (
	"github.com/labstack/echo-contrib/session"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/talkincode/storebuilder/pkg/common"
)

const (
	CookieName   = "storebuilder"
	SessionIDKey = "sid"
)

// sessionIDMiddleware issues a session id cookie on first contact and
// exposes the id to handlers.
func sessionIDMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		sess, err := session.Get(CookieName, c)
		if sess == nil {
			return err
		}
		if err != nil {
			// tampered or rotated-secret cookies start over
			zap.L().Debug("discarding session cookie", zap.Error(err))
		}
		sid, _ := sess.Values[SessionIDKey].(string)
		if sid == "" {
			if sid, err = common.RandomToken(); err != nil {
				return err
			}
			sess.Values[SessionIDKey] = sid
			if err := sess.Save(c.Request(), c.Response()); err != nil {
				return err
			}
		}
		c.Set(SessionIDKey, sid)
		return next(c)
	}
}

// SessionID returns the id issued for the current request.
func SessionID(c echo.Context) string {
	sid, _ := c.Get(SessionIDKey).(string)
	return sid
}
