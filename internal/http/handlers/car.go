package handlers

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"

	apperrors "cars-api/internal/common/errors"
	"cars-api/internal/common/logger"
	"cars-api/internal/common/validation"
	"cars-api/internal/http/middleware"
	"cars-api/internal/models"
	"cars-api/internal/pagination"
)

// CarQueries is the read surface the car handlers serve.
type CarQueries interface {
	ListAll(ctx context.Context, req models.PageRequest) (models.Page[models.Car], error)
	Get(ctx context.Context, id int64) (models.Car, error)
	Search(ctx context.Context, query string, req models.PageRequest) (models.Page[models.Car], error)
}

type CarHandler struct {
	cars      CarQueries
	validator *validation.PageRequestValidator
	logger    logger.Logger
}

func NewCarHandler(cars CarQueries, validator *validation.PageRequestValidator, log logger.Logger) *CarHandler {
	return &CarHandler{
		cars:      cars,
		validator: validator,
		logger:    log.WithFields(map[string]interface{}{"handler": "car"}),
	}
}

// List handles GET /cars.
func (h *CarHandler) List(c *gin.Context) {
	req, err := h.validator.Parse(c.Request.URL.Query())
	if err != nil {
		h.fail(c, err)
		return
	}

	page, err := h.cars.ListAll(c.Request.Context(), req)
	if err != nil {
		h.fail(c, err)
		return
	}
	writePage(c, page)
}

// Get handles GET /cars/:id.
func (h *CarHandler) Get(c *gin.Context) {
	id, err := validation.ID(c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}

	car, err := h.cars.Get(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, car)
}

// Search handles GET /_search/cars.
func (h *CarHandler) Search(c *gin.Context) {
	values := c.Request.URL.Query()
	query, err := validation.RequiredString(values, pagination.ParamQuery)
	if err != nil {
		h.fail(c, err)
		return
	}
	req, err := h.validator.Parse(values)
	if err != nil {
		h.fail(c, err)
		return
	}

	page, err := h.cars.Search(c.Request.Context(), query, req)
	if err != nil {
		h.fail(c, err)
		return
	}
	writePage(c, page)
}

func (h *CarHandler) fail(c *gin.Context, err error) {
	se := apperrors.AsStandardError(err)
	if apperrors.HTTPStatus(se.Code) >= http.StatusInternalServerError {
		h.logger.WithError(err).Error("car query failed", map[string]interface{}{
			"request_id": middleware.GetRequestID(c),
			"code":       se.Code,
			"category":   apperrors.GetErrorCategory(se.Code),
			"details":    se.Details,
		})
	}
	RespondError(c, err)
}

func writePage(c *gin.Context, page models.Page[models.Car]) {
	env := pagination.ToEnvelope(page, requestURL(c))
	for name, values := range env.Headers {
		for _, v := range values {
			c.Writer.Header().Add(name, v)
		}
	}
	c.JSON(http.StatusOK, env.Body)
}

// requestURL rebuilds the absolute URL the client used. X-Forwarded-Proto and
// X-Forwarded-Host only reach here from trusted proxies; see middleware.TrustedForwarding.
func requestURL(c *gin.Context) *url.URL {
	scheme := "http"
	if c.Request.TLS != nil {
		scheme = "https"
	}
	if proto := c.GetHeader("X-Forwarded-Proto"); proto != "" {
		scheme = strings.TrimSpace(strings.Split(proto, ",")[0])
	}

	host := c.Request.Host
	if fwd := c.GetHeader("X-Forwarded-Host"); fwd != "" {
		host = strings.TrimSpace(strings.Split(fwd, ",")[0])
	}

	return &url.URL{
		Scheme:   scheme,
		Host:     host,
		Path:     c.Request.URL.Path,
		RawPath:  c.Request.URL.RawPath,
		RawQuery: c.Request.URL.RawQuery,
	}
}
