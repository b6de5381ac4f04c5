package adminapi

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/talkincode/storebuilder/internal/domain"
	"github.com/talkincode/storebuilder/internal/events"
	"github.com/talkincode/storebuilder/internal/session"
	"github.com/talkincode/storebuilder/internal/upload"
	"github.com/talkincode/storebuilder/internal/webserver"
)

// formPayload carries the fields to change; absent fields keep their value.
type formPayload struct {
	Name        *string `json:"name"`
	Price       *string `json:"price"`
	Image       *string `json:"image"`
	Description *string `json:"description"`
	Stock       *string `json:"stock"`
	Supplier    *string `json:"supplier"`
}

type stagePayload struct {
	Stage string `json:"stage"`
	Move  string `json:"move"`
}

type variationPayload struct {
	Value string `json:"value"`
}

func registerUploadRoutes() {
	webserver.ApiGET("/upload/form", getUploadForm)
	webserver.ApiPUT("/upload/form", updateUploadForm)
	webserver.ApiDELETE("/upload/form", cancelUploadEdit)
	webserver.ApiPUT("/upload/stage", setUploadStage)
	webserver.ApiPOST("/upload/variations", addUploadVariation)
	webserver.ApiPUT("/upload/variations/:index", setUploadVariation)
	webserver.ApiDELETE("/upload/variations/:index", removeUploadVariation)
	webserver.ApiPOST("/upload/submit", submitUpload)

	webserver.ApiGET("/upload/products", listUploadProducts)
	webserver.ApiGET("/upload/products/export", exportUploadProducts)
	webserver.ApiPOST("/upload/products/:id/edit", editUploadProduct)
	webserver.ApiDELETE("/upload/products/:id", deleteUploadProduct)
}

func getUploadForm(c echo.Context) error {
	return withSession(c, func(s *session.Session) error {
		return ok(c, s.Upload.View())
	})
}

func updateUploadForm(c echo.Context) error {
	var payload formPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse form", err.Error())
	}
	return withSession(c, func(s *session.Session) error {
		f := &s.Upload.Fields
		for _, kv := range []struct {
			src *string
			dst *string
		}{
			{payload.Name, &f.Name},
			{payload.Price, &f.Price},
			{payload.Image, &f.Image},
			{payload.Description, &f.Description},
			{payload.Stock, &f.Stock},
			{payload.Supplier, &f.Supplier},
		} {
			if kv.src != nil {
				*kv.dst = *kv.src
			}
		}
		return ok(c, s.Upload.View())
	})
}

func cancelUploadEdit(c echo.Context) error {
	return withSession(c, func(s *session.Session) error {
		if err := GetAppContext(c).Uploads().CancelEdit(s.Upload); err != nil {
			return uploadError(c, err)
		}
		return ok(c, s.Upload.View())
	})
}

// setUploadStage jumps to a stage, or moves with "next" / "prev".
func setUploadStage(c echo.Context) error {
	var payload stagePayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse stage", err.Error())
	}
	return withSession(c, func(s *session.Session) error {
		switch payload.Move {
		case "next":
			s.Upload.Next()
		case "prev":
			s.Upload.Prev()
		case "":
			stage, err := upload.ParseStage(payload.Stage)
			if err != nil {
				return fail(c, http.StatusBadRequest, "INVALID_STAGE", err.Error(), upload.Stages)
			}
			if err := s.Upload.Goto(stage); err != nil {
				return fail(c, http.StatusBadRequest, "INVALID_STAGE", err.Error(), upload.Stages)
			}
		default:
			return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Move must be 'next' or 'prev'", nil)
		}
		return ok(c, s.Upload.View())
	})
}

func addUploadVariation(c echo.Context) error {
	return withSession(c, func(s *session.Session) error {
		s.Upload.AddVariation()
		return ok(c, s.Upload.View())
	})
}

func setUploadVariation(c echo.Context) error {
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_INDEX", "Invalid variation index", nil)
	}
	var payload variationPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse variation", err.Error())
	}
	return withSession(c, func(s *session.Session) error {
		if err := s.Upload.SetVariation(index, payload.Value); err != nil {
			return uploadError(c, err)
		}
		return ok(c, s.Upload.View())
	})
}

func removeUploadVariation(c echo.Context) error {
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_INDEX", "Invalid variation index", nil)
	}
	return withSession(c, func(s *session.Session) error {
		if err := s.Upload.RemoveVariation(index); err != nil {
			return uploadError(c, err)
		}
		return ok(c, s.Upload.View())
	})
}

// submitUpload saves the form as a new product, or replaces the product
// being edited.
func submitUpload(c echo.Context) error {
	return withSession(c, func(s *session.Session) error {
		p, err := GetAppContext(c).Uploads().Submit(c.Request().Context(), s.ID, s.Upload)
		if err != nil {
			return uploadError(c, err)
		}
		publish(c, events.TopicProductSaved, p.Name)
		return ok(c, p)
	})
}

func listUploadProducts(c echo.Context) error {
	page, _ := parsePagination(c)
	sid := webserver.SessionID(c)
	rows, pg, err := GetAppContext(c).Uploads().List(c.Request().Context(), sid, page)
	if err != nil {
		return uploadError(c, err)
	}
	if rows == nil {
		rows = []domain.UploadProduct{}
	}
	return paged(c, rows, pg.Total, pg.Page, pg.PageSize)
}

func exportUploadProducts(c echo.Context) error {
	sid := webserver.SessionID(c)
	filename := fmt.Sprintf("products-%s.csv", time.Now().Format("20060102150405"))
	var buf bytes.Buffer
	if err := GetAppContext(c).Uploads().ExportCSV(c.Request().Context(), sid, &buf); err != nil {
		zap.L().Error("csv export failed", zap.String("session", sid), zap.Error(err))
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to export products", err.Error())
	}
	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", filename))
	return c.Blob(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
}

func editUploadProduct(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid product ID", nil)
	}
	return withSession(c, func(s *session.Session) error {
		if _, err := GetAppContext(c).Uploads().Edit(c.Request().Context(), s.ID, id, s.Upload); err != nil {
			return uploadError(c, err)
		}
		return ok(c, s.Upload.View())
	})
}

func deleteUploadProduct(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid product ID", nil)
	}
	return withSession(c, func(s *session.Session) error {
		if err := GetAppContext(c).Uploads().Delete(c.Request().Context(), s.ID, id, s.Upload); err != nil {
			return uploadError(c, err)
		}
		publish(c, events.TopicProductDeleted, formatID(id))
		return ok(c, map[string]interface{}{"id": formatID(id)})
	})
}

func uploadError(c echo.Context, err error) error {
	var ve *upload.ValidationError
	switch {
	case errors.As(err, &ve):
		return fail(c, http.StatusBadRequest, "VALIDATION_ERROR", ve.Error(), map[string]string{
			"field":  ve.Field,
			"reason": ve.Reason,
		})
	case errors.Is(err, upload.ErrProductNotFound):
		return fail(c, http.StatusNotFound, "NOT_FOUND", "Product not found", nil)
	case errors.Is(err, upload.ErrVariationIndex):
		return fail(c, http.StatusBadRequest, "INVALID_INDEX", "Variation index out of range", nil)
	case errors.Is(err, upload.ErrNotEditing):
		return fail(c, http.StatusConflict, "NOT_EDITING", "No product is being edited", nil)
	default:
		zap.L().Error("upload request failed", zap.Error(err))
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to store product", err.Error())
	}
}
