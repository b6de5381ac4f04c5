package adminapi

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/talkincode/storebuilder/internal/cart"
	"github.com/talkincode/storebuilder/internal/domain"
	"github.com/talkincode/storebuilder/internal/session"
	"github.com/talkincode/storebuilder/internal/upload"
	"github.com/talkincode/storebuilder/internal/webserver"
)

var errProductNotFound = errors.New("catalog product not found")

func registerCatalogRoutes() {
	webserver.ApiGET("/catalog", listCatalog)
	webserver.ApiGET("/catalog/:id", getCatalogProduct)
}

func loadCatalog(c echo.Context) ([]domain.CatalogProduct, error) {
	var rows []domain.CatalogProduct
	err := GetDB(c).Order("sort ASC, id ASC").Find(&rows).Error
	return rows, err
}

func loadCatalogProduct(c echo.Context, id int64) (*domain.CatalogProduct, error) {
	var p domain.CatalogProduct
	err := GetDB(c).Where("id = ?", id).First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errProductNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// listCatalog returns the storefront products matching the search term. The
// q param wins over the preview search term of the session.
func listCatalog(c echo.Context) error {
	page, pageSize := parsePagination(c)
	term := strings.TrimSpace(c.QueryParam("q"))
	if term == "" {
		_ = withSession(c, func(s *session.Session) error {
			term = s.Search()
			return nil
		})
	}

	rows, err := loadCatalog(c)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query products", err.Error())
	}
	matched := make([]domain.CatalogProduct, 0, len(rows))
	for _, p := range rows {
		if cart.MatchName(p.Name, term) {
			matched = append(matched, p)
		}
	}

	pg := upload.Paginate(int64(len(matched)), page, pageSize)
	start := pg.Offset()
	end := start + pg.PageSize
	if end > len(matched) {
		end = len(matched)
	}
	return paged(c, matched[start:end], pg.Total, pg.Page, pg.PageSize)
}

func getCatalogProduct(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid product ID", nil)
	}
	p, err := loadCatalogProduct(c, id)
	if errors.Is(err, errProductNotFound) {
		return fail(c, http.StatusNotFound, "NOT_FOUND", "Product not found", nil)
	}
	if err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query product", err.Error())
	}
	return ok(c, p)
}
