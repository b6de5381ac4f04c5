package adminapi

import (
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/talkincode/storebuilder/internal/domain"
	"github.com/talkincode/storebuilder/internal/upload"
	"github.com/talkincode/storebuilder/internal/webserver"
	"github.com/talkincode/storebuilder/pkg/metrics"
)

func registerSystemRoutes() {
	webserver.ApiGET("/system/metrics", getMetrics)
	webserver.ApiGET("/system/activity", listActivity)
}

// getMetrics returns the latest value of every metric. With name it returns
// the stored samples of that metric over the given window (default 1h).
func getMetrics(c echo.Context) error {
	name := strings.TrimSpace(c.QueryParam("name"))
	if name == "" {
		return ok(c, map[string]interface{}{
			"sessions": GetAppContext(c).Sessions().Len(),
			"values":   metrics.Snapshot(),
		})
	}
	window := time.Hour
	if w := c.QueryParam("window"); w != "" {
		d, err := time.ParseDuration(w)
		if err != nil || d <= 0 {
			return fail(c, http.StatusBadRequest, "INVALID_WINDOW", "Window must be a positive duration", w)
		}
		window = d
	}
	points, err := metrics.Series(name, time.Now().Add(-window))
	if err != nil {
		return fail(c, http.StatusInternalServerError, "METRICS_ERROR", "Failed to query metric", err.Error())
	}
	if points == nil {
		points = []metrics.Point{}
	}
	return ok(c, map[string]interface{}{"name": name, "points": points})
}

// listActivity pages through the activity log of the current session.
func listActivity(c echo.Context) error {
	page, pageSize := parsePagination(c)
	db := GetDB(c).Model(&domain.SysOprLog{}).Where("session_id = ?", webserver.SessionID(c))
	if action := strings.TrimSpace(c.QueryParam("action")); action != "" {
		db = db.Where("opt_action = ?", action)
	}

	var total int64
	if err := db.Count(&total).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query activity", err.Error())
	}
	pg := upload.Paginate(total, page, pageSize)
	var rows []domain.SysOprLog
	if err := db.Order("opt_time DESC").Offset(pg.Offset()).Limit(pg.PageSize).Find(&rows).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query activity", err.Error())
	}
	return paged(c, rows, total, pg.Page, pg.PageSize)
}
