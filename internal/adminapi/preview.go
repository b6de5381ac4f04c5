package adminapi

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/talkincode/storebuilder/internal/session"
	"github.com/talkincode/storebuilder/internal/webserver"
)

type pagePayload struct {
	Page      string `json:"page"`
	ProductID string `json:"product_id"`
}

type devicePayload struct {
	Device string `json:"device"`
}

type searchPayload struct {
	Term string `json:"term"`
}

func registerPreviewRoutes() {
	webserver.ApiGET("/preview", getPreview)
	webserver.ApiPUT("/preview/page", setPreviewPage)
	webserver.ApiPUT("/preview/device", setPreviewDevice)
	webserver.ApiPUT("/preview/search", setPreviewSearch)
}

func getPreview(c echo.Context) error {
	return withSession(c, func(s *session.Session) error {
		return ok(c, s.Preview())
	})
}

// setPreviewPage navigates the preview. A product id opens the product page.
func setPreviewPage(c echo.Context) error {
	var payload pagePayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse page", err.Error())
	}

	var productID int64
	if strings.TrimSpace(payload.ProductID) != "" {
		id, err := strconv.ParseInt(strings.TrimSpace(payload.ProductID), 10, 64)
		if err != nil || id <= 0 {
			return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid product ID", nil)
		}
		if _, err := loadCatalogProduct(c, id); errors.Is(err, errProductNotFound) {
			return fail(c, http.StatusNotFound, "NOT_FOUND", "Product not found", nil)
		} else if err != nil {
			return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query product", err.Error())
		}
		productID = id
	}

	var page session.Page
	if productID == 0 {
		p, err := session.ParsePage(payload.Page)
		if err != nil {
			return fail(c, http.StatusBadRequest, "INVALID_PAGE", err.Error(), session.Pages)
		}
		page = p
	}

	return withSession(c, func(s *session.Session) error {
		if productID != 0 {
			s.SelectProduct(productID)
		} else {
			s.Navigate(page)
		}
		return ok(c, s.Preview())
	})
}

func setPreviewDevice(c echo.Context) error {
	var payload devicePayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse device", err.Error())
	}
	d, err := session.ParseDevice(payload.Device)
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_DEVICE", err.Error(), nil)
	}
	return withSession(c, func(s *session.Session) error {
		s.SetDevice(d)
		return ok(c, s.Preview())
	})
}

func setPreviewSearch(c echo.Context) error {
	var payload searchPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse search", err.Error())
	}
	return withSession(c, func(s *session.Session) error {
		s.SetSearch(strings.TrimSpace(payload.Term))
		return ok(c, s.Preview())
	})
}
