package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	apperrors "cars-api/internal/common/errors"
	"cars-api/internal/common/logger"
	"cars-api/internal/common/validation"
	"cars-api/internal/http/middleware"
	"cars-api/internal/models"
)

type fakeCars struct {
	cars    []models.Car
	err     error
	lastReq models.PageRequest
	query   string
}

func (f *fakeCars) page(req models.PageRequest, cars []models.Car) models.Page[models.Car] {
	start := req.Offset()
	if start > len(cars) {
		start = len(cars)
	}
	end := start + req.Size
	if end > len(cars) {
		end = len(cars)
	}
	return models.NewPage(cars[start:end], req, int64(len(cars)))
}

func (f *fakeCars) ListAll(ctx context.Context, req models.PageRequest) (models.Page[models.Car], error) {
	f.lastReq = req
	if f.err != nil {
		return models.Page[models.Car]{}, f.err
	}
	return f.page(req, f.cars), nil
}

func (f *fakeCars) Get(ctx context.Context, id int64) (models.Car, error) {
	if f.err != nil {
		return models.Car{}, f.err
	}
	for _, c := range f.cars {
		if c.ID == id {
			return c, nil
		}
	}
	return models.Car{}, apperrors.NewResourceNotFoundError("Car", id)
}

func (f *fakeCars) Search(ctx context.Context, query string, req models.PageRequest) (models.Page[models.Car], error) {
	f.lastReq = req
	f.query = query
	if f.err != nil {
		return models.Page[models.Car]{}, f.err
	}
	return f.page(req, f.cars), nil
}

func makeCars(n int, brand string) []models.Car {
	cars := make([]models.Car, 0, n)
	for i := 1; i <= n; i++ {
		cars = append(cars, models.Car{
			ID:        int64(i),
			Make:      brand,
			Model:     "Model 3",
			ModelYear: 2021,
			Color:     "white",
			Price:     decimal.NewFromInt(40000),
		})
	}
	return cars
}

func setup(t *testing.T, fake *fakeCars) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	v, err := validation.NewPageRequestValidator(20, 2000)
	require.NoError(t, err)
	h := NewCarHandler(fake, v, logger.NewTestLogger(t))

	r := gin.New()
	r.Use(middleware.RequestID())
	r.GET("/api/cars", h.List)
	r.GET("/api/cars/:id", h.Get)
	r.GET("/api/_search/cars", h.Search)
	return r
}

func serve(r *gin.Engine, target string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	r.ServeHTTP(w, req)
	return w
}

func TestList_FirstPage(t *testing.T) {
	r := setup(t, &fakeCars{cars: makeCars(25, "Ford")})

	w := serve(r, "/api/cars?page=0&size=10")
	require.Equal(t, http.StatusOK, w.Code)

	var body []map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Len(t, body, 10)

	assert.Equal(t, "25", w.Header().Get("X-Total-Count"))
	assert.Equal(t, "3", w.Header().Get("X-Total-Pages"))
	assert.Equal(t,
		`<http://example.com/api/cars?page=1&size=10>; rel="next",`+
			`<http://example.com/api/cars?page=2&size=10>; rel="last",`+
			`<http://example.com/api/cars?page=0&size=10>; rel="first"`,
		w.Header().Get("Link"))
	assert.NotEmpty(t, w.Header().Get(middleware.HeaderRequestID))
}

func TestList_DefaultsAndSort(t *testing.T) {
	fake := &fakeCars{cars: makeCars(3, "Ford")}
	r := setup(t, fake)

	w := serve(r, "/api/cars?sort=price,desc&sort=id")
	require.Equal(t, http.StatusOK, w.Code)

	assert.Equal(t, models.PageRequest{
		Page: 0,
		Size: 20,
		Sort: []models.Order{
			{Property: models.SortByPrice, Direction: models.Desc},
			{Property: models.SortByID, Direction: models.Asc},
		},
	}, fake.lastReq)
}

func TestList_EmptyStore(t *testing.T) {
	r := setup(t, &fakeCars{})

	w := serve(r, "/api/cars")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, w.Body.String())
	assert.Equal(t, "0", w.Header().Get("X-Total-Count"))
	assert.Equal(t, "0", w.Header().Get("X-Total-Pages"))
}

func TestList_InvalidSize(t *testing.T) {
	r := setup(t, &fakeCars{})

	w := serve(r, "/api/cars?size=5000")
	require.Equal(t, http.StatusBadRequest, w.Code)

	var body ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, apperrors.ErrCodeInvalidRequest, body.Code)
	assert.NotEmpty(t, body.RequestID)
}

func TestList_StoreTimeout(t *testing.T) {
	r := setup(t, &fakeCars{err: apperrors.NewQueryTimeoutError("FindAll")})

	w := serve(r, "/api/cars")
	require.Equal(t, http.StatusGatewayTimeout, w.Code)

	var body ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, apperrors.ErrCodeQueryTimeout, body.Code)
	assert.Empty(t, body.Details)
}

func TestGet_Found(t *testing.T) {
	r := setup(t, &fakeCars{cars: makeCars(3, "Tesla")})

	w := serve(r, "/api/cars/2")
	require.Equal(t, http.StatusOK, w.Code)

	var car models.Car
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &car))
	assert.Equal(t, int64(2), car.ID)
	assert.Equal(t, "Tesla", car.Make)
	assert.True(t, decimal.NewFromInt(40000).Equal(car.Price))
}

func TestGet_NotFound(t *testing.T) {
	r := setup(t, &fakeCars{cars: makeCars(3, "Tesla")})

	w := serve(r, "/api/cars/999")
	require.Equal(t, http.StatusNotFound, w.Code)

	var body ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, apperrors.ErrCodeResourceNotFound, body.Code)
	assert.Equal(t, w.Header().Get(middleware.HeaderRequestID), body.RequestID)
}

func TestGet_NonIntegerID(t *testing.T) {
	r := setup(t, &fakeCars{})

	w := serve(r, "/api/cars/abc")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSearch(t *testing.T) {
	fake := &fakeCars{cars: makeCars(3, "Tesla")}
	r := setup(t, fake)

	w := serve(r, "/api/_search/cars?query=tesla")
	require.Equal(t, http.StatusOK, w.Code)

	var body []models.Car
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Len(t, body, 3)
	assert.Equal(t, "tesla", fake.query)
	assert.Equal(t, "3", w.Header().Get("X-Total-Count"))
	assert.Equal(t, "1", w.Header().Get("X-Total-Pages"))
	assert.Equal(t,
		`<http://example.com/api/_search/cars?page=0&query=tesla&size=20>; rel="last",`+
			`<http://example.com/api/_search/cars?page=0&query=tesla&size=20>; rel="first"`,
		w.Header().Get("Link"))
}

func TestSearch_QueryPassedVerbatim(t *testing.T) {
	fake := &fakeCars{}
	r := setup(t, fake)

	w := serve(r, "/api/_search/cars?query=make%3Atesla%20AND%20color%3Ared")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "make:tesla AND color:red", fake.query)
}

func TestSearch_MissingQuery(t *testing.T) {
	r := setup(t, &fakeCars{})

	w := serve(r, "/api/_search/cars")
	require.Equal(t, http.StatusBadRequest, w.Code)

	var body ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, apperrors.ErrCodeInvalidRequest, body.Code)
}

func TestSearch_RejectedQuery(t *testing.T) {
	r := setup(t, &fakeCars{err: apperrors.NewInvalidSearchQueryError("make:(", "parse_exception")})

	w := serve(r, "/api/_search/cars?query=make:(")
	require.Equal(t, http.StatusBadRequest, w.Code)

	var body ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, apperrors.ErrCodeInvalidSearchQuery, body.Code)
	assert.Equal(t, "parse_exception", body.Details)
}

func TestRequestURL_HonoursForwardedHeaders(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodGet, "/api/cars?page=1", nil)
	c.Request.Header.Set("X-Forwarded-Proto", "https")
	c.Request.Header.Set("X-Forwarded-Host", "cars.example.org")

	assert.Equal(t, "https://cars.example.org/api/cars?page=1", requestURL(c).String())
}

func TestList_ServerFailureLoggedWithCategory(t *testing.T) {
	gin.SetMode(gin.TestMode)
	core, logs := observer.New(zapcore.ErrorLevel)

	v, err := validation.NewPageRequestValidator(20, 2000)
	require.NoError(t, err)
	h := NewCarHandler(&fakeCars{err: apperrors.NewQueryTimeoutError("findAll")}, v, logger.NewZapAdapter(zap.New(core)))

	r := gin.New()
	r.Use(middleware.RequestID())
	r.GET("/api/cars", h.List)

	w := serve(r, "/api/cars")
	require.Equal(t, http.StatusGatewayTimeout, w.Code)

	entries := logs.FilterMessage("car query failed").All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "ENTITY_STORE", fields["category"])
	assert.Equal(t, w.Header().Get(middleware.HeaderRequestID), fields["request_id"])
}
