package adminapi

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/talkincode/storebuilder/config"
	"github.com/talkincode/storebuilder/internal/app"
	"github.com/talkincode/storebuilder/internal/domain"
	"github.com/talkincode/storebuilder/internal/webserver"
)

type testEnv struct {
	t   *testing.T
	app *app.Application
	e   *echo.Echo
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	cfg := *config.DefaultAppConfig
	cfg.Web.Secret = "adminapi-test"
	a := app.NewApplication(&cfg)
	require.NoError(t, a.InitWithDB(db))

	srv := webserver.Init(cfg.Web, a)
	Init()
	return &testEnv{t: t, app: a, e: srv.Echo()}
}

// client is one browser: it keeps the session cookie between requests.
type client struct {
	env     *testEnv
	cookies map[string]*http.Cookie
}

func (env *testEnv) client() *client {
	return &client{env: env, cookies: map[string]*http.Cookie{}}
}

func (cl *client) do(method, path string, body interface{}) *httptest.ResponseRecorder {
	cl.env.t.Helper()
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(cl.env.t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, webserver.ApiPrefix+path, reader)
	if body != nil {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	for _, ck := range cl.cookies {
		req.AddCookie(ck)
	}
	rec := httptest.NewRecorder()
	cl.env.e.ServeHTTP(rec, req)
	for _, ck := range rec.Result().Cookies() {
		cl.cookies[ck.Name] = ck
	}
	return rec
}

func decodeData(t *testing.T, rec *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	var env struct {
		Data json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	require.NoError(t, json.Unmarshal(env.Data, v), string(env.Data))
}

func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body), rec.Body.String())
	return body.Error
}

func TestOnboardingFlow(t *testing.T) {
	env := newTestEnv(t)
	cl := env.client()

	rec := cl.do(http.MethodGet, "/onboarding", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var st struct {
		Index    int     `json:"index"`
		Total    int     `json:"total"`
		Done     bool    `json:"done"`
		Progress float64 `json:"progress"`
		Profile  *struct {
			Name string `json:"name"`
			Goal string `json:"goal"`
		} `json:"profile"`
	}
	decodeData(t, rec, &st)
	assert.Equal(t, 0, st.Index)
	assert.Equal(t, 6, st.Total)

	rec = cl.do(http.MethodPost, "/onboarding/answer", map[string]string{"value": "Nobody"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "INVALID_OPTION", errorCode(t, rec))

	for _, v := range []string{"john", "26-35", "professional", "Cycling", "Travel", "Open a shop"} {
		rec = cl.do(http.MethodPost, "/onboarding/answer", map[string]string{"value": v})
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	}
	decodeData(t, rec, &st)
	assert.True(t, st.Done)
	assert.Equal(t, float64(100), st.Progress)
	require.NotNil(t, st.Profile)
	assert.Equal(t, "john", st.Profile.Name)
	assert.Equal(t, "Open a shop", st.Profile.Goal)

	rec = cl.do(http.MethodPost, "/onboarding/answer", map[string]string{"value": "again"})
	assert.Equal(t, http.StatusConflict, rec.Code)
}

type cartView struct {
	Lines []struct {
		ProductID string `json:"product_id"`
		Quantity  int    `json:"quantity"`
	} `json:"lines"`
	ItemCount int    `json:"item_count"`
	Total     string `json:"total"`
}

func TestCartMergesAndRemovesLines(t *testing.T) {
	env := newTestEnv(t)
	cl := env.client()

	cl.do(http.MethodPost, "/cart/items", map[string]string{"product_id": "1"})
	rec := cl.do(http.MethodPost, "/cart/items", map[string]string{"product_id": "1"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var cv cartView
	decodeData(t, rec, &cv)
	require.Len(t, cv.Lines, 1)
	assert.Equal(t, 2, cv.Lines[0].Quantity)
	assert.Equal(t, "49.98", cv.Total)

	rec = cl.do(http.MethodPost, "/cart/items", map[string]string{"product_id": "6"})
	decodeData(t, rec, &cv)
	assert.Len(t, cv.Lines, 2)
	assert.Equal(t, 3, cv.ItemCount)

	rec = cl.do(http.MethodPut, "/cart/items/1", map[string]int{"quantity": 0})
	require.Equal(t, http.StatusOK, rec.Code)
	decodeData(t, rec, &cv)
	require.Len(t, cv.Lines, 1)
	assert.Equal(t, "6", cv.Lines[0].ProductID)

	rec = cl.do(http.MethodPut, "/cart/items/6", map[string]int{"quantity": -1})
	assert.Equal(t, "INVALID_QUANTITY", errorCode(t, rec))
	rec = cl.do(http.MethodDelete, "/cart/items/1", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	rec = cl.do(http.MethodPost, "/cart/items", map[string]string{"product_id": "99"})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSessionsAreIsolated(t *testing.T) {
	env := newTestEnv(t)
	alice, bob := env.client(), env.client()

	alice.do(http.MethodPost, "/cart/items", map[string]string{"product_id": "2"})
	var cv cartView
	decodeData(t, bob.do(http.MethodGet, "/cart", nil), &cv)
	assert.Empty(t, cv.Lines)
	decodeData(t, alice.do(http.MethodGet, "/cart", nil), &cv)
	assert.Len(t, cv.Lines, 1)

	rec := alice.do(http.MethodDelete, "/session", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	decodeData(t, alice.do(http.MethodGet, "/cart", nil), &cv)
	assert.Empty(t, cv.Lines)
}

type commentView struct {
	ID         string `json:"id"`
	Title      string `json:"title"`
	Status     string `json:"status"`
	Page       string `json:"page"`
	Attachment string `json:"attachment"`
}

func addComment(t *testing.T, cl *client, title string) commentView {
	t.Helper()
	rec := cl.do(http.MethodPost, "/annotations/click", map[string]float64{"x": 10, "y": 20})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	rec = cl.do(http.MethodPost, "/annotations/draft", map[string]string{"title": title, "description": "details"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var cm commentView
	decodeData(t, rec, &cm)
	return cm
}

func TestAnnotationsAndMilestones(t *testing.T) {
	env := newTestEnv(t)
	cl := env.client()

	rec := cl.do(http.MethodPost, "/annotations/click", map[string]float64{"x": 1, "y": 1})
	assert.Equal(t, "MODE_OFF", errorCode(t, rec))

	cl.do(http.MethodPut, "/annotations/mode", map[string]bool{"enabled": true})
	first := addComment(t, cl, "Logo")
	assert.Equal(t, "pending", first.Status)
	assert.Equal(t, "home", first.Page)
	assert.Equal(t, config.DefaultAppConfig.Store.AnnotationAttachment, first.Attachment)

	rec = cl.do(http.MethodPost, "/annotations/draft", map[string]string{"title": "Logo", "description": "details"})
	assert.Equal(t, "NO_DRAFT", errorCode(t, rec), "a second confirm does not duplicate the comment")

	second := addComment(t, cl, "Colors")
	addComment(t, cl, "Footer")

	for _, id := range []string{first.ID, second.ID} {
		rec = cl.do(http.MethodPost, "/annotations/"+id+"/validate", nil)
		require.Equal(t, http.StatusOK, rec.Code)
	}

	var board struct {
		Count     int    `json:"count"`
		Validated int    `json:"validated"`
		Markers   []any  `json:"markers"`
		Page      string `json:"page"`
	}
	decodeData(t, cl.do(http.MethodGet, "/annotations", nil), &board)
	assert.Equal(t, 3, board.Count)
	assert.Equal(t, 2, board.Validated)
	assert.Len(t, board.Markers, 3)

	// Store Setup needs one validated comment, Product Upload three.
	rec = cl.do(http.MethodPost, "/milestones/pay", nil)
	assert.Equal(t, "NO_SELECTION", errorCode(t, rec))

	require.Equal(t, http.StatusOK, cl.do(http.MethodPost, "/milestones/1/select", nil).Code)
	rec = cl.do(http.MethodPost, "/milestones/pay", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var mv struct {
		Completed []int `json:"completed"`
	}
	decodeData(t, rec, &mv)
	assert.Equal(t, []int{1}, mv.Completed)

	rec = cl.do(http.MethodPost, "/milestones/1/select", nil)
	assert.Equal(t, "ALREADY_COMPLETED", errorCode(t, rec))

	require.Equal(t, http.StatusOK, cl.do(http.MethodPost, "/milestones/2/select", nil).Code)
	rec = cl.do(http.MethodPost, "/milestones/pay", nil)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "THRESHOLD_NOT_MET", errorCode(t, rec))

	rec = cl.do(http.MethodDelete, "/annotations/"+second.ID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	rec = cl.do(http.MethodPost, "/annotations/"+second.ID+"/validate", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	require.Equal(t, http.StatusOK, cl.do(http.MethodPost, "/annotations/review", nil).Code)
}

func TestAnnotationCap(t *testing.T) {
	env := newTestEnv(t)
	cl := env.client()
	cl.do(http.MethodPut, "/annotations/mode", map[string]bool{"enabled": true})
	for i := 0; i < 10; i++ {
		addComment(t, cl, fmt.Sprintf("c%d", i))
	}
	rec := cl.do(http.MethodPost, "/annotations/click", map[string]float64{"x": 1, "y": 1})
	assert.Equal(t, "LIMIT_REACHED", errorCode(t, rec))
}

func TestPreviewNavigationAndSearch(t *testing.T) {
	env := newTestEnv(t)
	cl := env.client()

	rec := cl.do(http.MethodPut, "/preview/page", map[string]string{"product_id": "3"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var pv struct {
		Page     string `json:"page"`
		Device   string `json:"device"`
		Product  int64  `json:"product"`
		Viewport struct {
			Width int `json:"width"`
		} `json:"viewport"`
	}
	decodeData(t, rec, &pv)
	assert.Equal(t, "product", pv.Page)
	assert.Equal(t, int64(3), pv.Product)

	rec = cl.do(http.MethodPut, "/preview/page", map[string]string{"page": "checkout"})
	assert.Equal(t, "INVALID_PAGE", errorCode(t, rec))

	rec = cl.do(http.MethodPut, "/preview/device", map[string]string{"device": "mobile"})
	decodeData(t, rec, &pv)
	assert.Equal(t, 320, pv.Viewport.Width)

	cl.do(http.MethodPut, "/preview/search", map[string]string{"term": "BAMBOO"})
	var rows []struct {
		Name string `json:"name"`
	}
	rec = cl.do(http.MethodGet, "/catalog", nil)
	decodeData(t, rec, &rows)
	require.Len(t, rows, 1)
	assert.Equal(t, "Bamboo Toothbrush Set", rows[0].Name)

	decodeData(t, cl.do(http.MethodGet, "/catalog?q=o", nil), &rows)
	assert.Len(t, rows, 6)

	rec = cl.do(http.MethodGet, "/catalog?q=o&page=2&pageSize=4", nil)
	decodeData(t, rec, &rows)
	assert.Len(t, rows, 2)

	assert.Equal(t, http.StatusNotFound, cl.do(http.MethodGet, "/catalog/42", nil).Code)
	assert.Equal(t, http.StatusBadRequest, cl.do(http.MethodGet, "/catalog/abc", nil).Code)
}

func TestUploadWizard(t *testing.T) {
	env := newTestEnv(t)
	cl := env.client()

	rec := cl.do(http.MethodPut, "/upload/form", map[string]string{"name": "Widget", "price": "abc", "stock": "5"})
	require.Equal(t, http.StatusOK, rec.Code)
	rec = cl.do(http.MethodPost, "/upload/submit", nil)
	assert.Equal(t, "VALIDATION_ERROR", errorCode(t, rec))

	cl.do(http.MethodPut, "/upload/form", map[string]string{"price": "19.99"})
	rec = cl.do(http.MethodPut, "/upload/stage", map[string]string{"move": "next"})
	var fv struct {
		Name       string   `json:"name"`
		Stage      string   `json:"stage"`
		Variations []string `json:"variations"`
		EditingID  string   `json:"editing_id"`
	}
	decodeData(t, rec, &fv)
	assert.Equal(t, "stock", fv.Stage)
	assert.Equal(t, "Widget", fv.Name, "fields survive stage changes")

	cl.do(http.MethodPut, "/upload/variations/0", map[string]string{"value": "Red"})
	rec = cl.do(http.MethodPost, "/upload/variations", nil)
	decodeData(t, rec, &fv)
	assert.Equal(t, []string{"Red", ""}, fv.Variations)
	assert.Equal(t, "INVALID_INDEX", errorCode(t, cl.do(http.MethodDelete, "/upload/variations/9", nil)))

	rec = cl.do(http.MethodPost, "/upload/submit", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var p struct {
		ID         string   `json:"id"`
		Price      float64  `json:"price"`
		Stock      int      `json:"stock"`
		Variations []string `json:"variations"`
	}
	decodeData(t, rec, &p)
	assert.Equal(t, 19.99, p.Price)
	assert.Equal(t, 5, p.Stock)
	assert.Equal(t, []string{"Red"}, p.Variations)

	decodeData(t, cl.do(http.MethodGet, "/upload/form", nil), &fv)
	assert.Equal(t, "", fv.Name, "form resets after submit")
	assert.Equal(t, "basic", fv.Stage)

	rec = cl.do(http.MethodGet, "/upload/products", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var list PagedResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	assert.Equal(t, int64(1), list.Meta.Total)
	assert.Equal(t, 25, list.Meta.PageSize)

	rec = cl.do(http.MethodPost, "/upload/products/"+p.ID+"/edit", nil)
	decodeData(t, rec, &fv)
	assert.Equal(t, p.ID, fv.EditingID)
	assert.Equal(t, "Widget", fv.Name)

	rec = cl.do(http.MethodGet, "/upload/products/export", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get(echo.HeaderContentType), "text/csv")
	assert.True(t, strings.HasPrefix(rec.Body.String(), "id,name,price"))

	other := env.client()
	assert.Equal(t, http.StatusNotFound, other.do(http.MethodDelete, "/upload/products/"+p.ID, nil).Code)

	require.Equal(t, http.StatusOK, cl.do(http.MethodDelete, "/upload/products/"+p.ID, nil).Code)
	var after struct {
		EditingID string `json:"editing_id"`
	}
	decodeData(t, cl.do(http.MethodGet, "/upload/form", nil), &after)
	assert.Empty(t, after.EditingID, "deleting the edited product resets the form")
}

func TestActivityAndMetrics(t *testing.T) {
	env := newTestEnv(t)
	cl := env.client()
	cl.do(http.MethodPost, "/cart/items", map[string]string{"product_id": "1"})

	rec := cl.do(http.MethodGet, "/system/activity?action=cart:changed", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var list PagedResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	assert.Equal(t, int64(1), list.Meta.Total)

	rec = cl.do(http.MethodGet, "/system/metrics", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var m struct {
		Sessions int              `json:"sessions"`
		Values   map[string]int64 `json:"values"`
	}
	decodeData(t, rec, &m)
	assert.Equal(t, 1, m.Sessions)
	assert.Positive(t, m.Values["store_event_cart:changed"])

	rec = cl.do(http.MethodGet, "/system/metrics?name=x&window=bogus", nil)
	assert.Equal(t, "INVALID_WINDOW", errorCode(t, rec))
}

func TestCatalogClampsHugePageNumbers(t *testing.T) {
	env := newTestEnv(t)
	cl := env.client()

	rec := cl.do(http.MethodGet, "/catalog?page=922337203685477581&pageSize=20", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var list struct {
		Data []struct {
			Name string `json:"name"`
		} `json:"data"`
		Meta PageMeta `json:"meta"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	assert.Equal(t, 1, list.Meta.Page)
	assert.Equal(t, int64(6), list.Meta.Total)
	assert.Len(t, list.Data, 6)

	rec = cl.do(http.MethodGet, "/system/activity?page=922337203685477581", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
}

func TestExportFailureUsesErrorEnvelope(t *testing.T) {
	env := newTestEnv(t)
	cl := env.client()
	require.NoError(t, env.app.DB().Migrator().DropTable(&domain.UploadProduct{}))

	rec := cl.do(http.MethodGet, "/upload/products/export", nil)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "DATABASE_ERROR", errorCode(t, rec))
	assert.Empty(t, rec.Header().Get(echo.HeaderContentDisposition))
}
