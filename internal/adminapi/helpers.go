package adminapi

import (
	"math"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/talkincode/storebuilder/internal/app"
	"github.com/talkincode/storebuilder/internal/events"
	"github.com/talkincode/storebuilder/internal/session"
	"github.com/talkincode/storebuilder/internal/webserver"
	"github.com/talkincode/storebuilder/pkg/common"
)

const (
	defaultPageSize = 20
	maxPageSize     = 500
)

// Response wraps successful payloads
type Response struct {
	Data interface{} `json:"data"`
}

// PageMeta describes one page of a listing
type PageMeta struct {
	Total      int64 `json:"total"`
	Page       int   `json:"page"`
	PageSize   int   `json:"pageSize"`
	TotalPages int   `json:"totalPages"`
}

// PagedResponse wraps a page of rows
type PagedResponse struct {
	Data interface{} `json:"data"`
	Meta PageMeta    `json:"meta"`
}

// ErrorResponse is the failure envelope
type ErrorResponse struct {
	Error   string      `json:"error"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

func ok(c echo.Context, data interface{}) error {
	return c.JSON(http.StatusOK, Response{Data: data})
}

func fail(c echo.Context, status int, code, message string, details interface{}) error {
	return c.JSON(status, ErrorResponse{Error: code, Message: message, Details: details})
}

func paged(c echo.Context, rows interface{}, total int64, page, pageSize int) error {
	totalPages := 1
	if pageSize > 0 && total > 0 {
		totalPages = int(math.Ceil(float64(total) / float64(pageSize)))
	}
	return c.JSON(http.StatusOK, PagedResponse{
		Data: rows,
		Meta: PageMeta{Total: total, Page: page, PageSize: pageSize, TotalPages: totalPages},
	})
}

// parsePagination reads page and pageSize query params with sane bounds
func parsePagination(c echo.Context) (page, pageSize int) {
	page, pageSize = 1, defaultPageSize
	if p, err := strconv.Atoi(c.QueryParam("page")); err == nil && p > 0 {
		page = p
	}
	if ps, err := strconv.Atoi(c.QueryParam("pageSize")); err == nil && ps > 0 && ps <= maxPageSize {
		pageSize = ps
	}
	return page, pageSize
}

func parseIDParam(c echo.Context, name string) (int64, error) {
	return common.ParseID(c.Param(name))
}

// GetAppContext returns the application context attached by the web server
func GetAppContext(c echo.Context) app.AppContext {
	return c.Get(webserver.AppContextKey).(app.AppContext)
}

// GetDB returns the database handle bound to the request context
func GetDB(c echo.Context) *gorm.DB {
	return GetAppContext(c).DB().WithContext(c.Request().Context())
}

// currentSession returns the preview session of the request, creating it on
// first contact.
func currentSession(c echo.Context) *session.Session {
	sid := webserver.SessionID(c)
	s, created := GetAppContext(c).Sessions().GetOrCreate(sid)
	if created {
		publish(c, events.TopicSessionCreated, "")
	}
	return s
}

// withSession runs fn under the session lock.
func withSession(c echo.Context, fn func(s *session.Session) error) error {
	return currentSession(c).Do(fn)
}

func publish(c echo.Context, topic, detail string) {
	GetAppContext(c).Events().Publish(topic, webserver.SessionID(c), c.RealIP(), detail)
}

func formatID(id int64) string {
	return strconv.FormatInt(id, 10)
}
