package validation

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	apperrors "cars-api/internal/common/errors"
	"cars-api/internal/models"
)

// PageRequestValidator turns page, size and sort query parameters into a
// models.PageRequest, rejecting anything outside the page-request schema.
type PageRequestValidator struct {
	defaultSize int
	schema      *gojsonschema.Schema
}

func NewPageRequestValidator(defaultSize, maxSize int) (*PageRequestValidator, error) {
	schema, err := gojsonschema.NewSchema(gojsonschema.NewGoLoader(pageRequestSchema(maxSize)))
	if err != nil {
		return nil, fmt.Errorf("compile page request schema: %w", err)
	}
	return &PageRequestValidator{defaultSize: defaultSize, schema: schema}, nil
}

func pageRequestSchema(maxSize int) map[string]interface{} {
	properties := make([]interface{}, 0, len(models.SortProperties))
	for _, p := range models.SortProperties {
		properties = append(properties, string(p))
	}

	return map[string]interface{}{
		"type":     "object",
		"required": []interface{}{"page", "size"},
		"properties": map[string]interface{}{
			"page": map[string]interface{}{
				"type":    "integer",
				"minimum": 0,
			},
			"size": map[string]interface{}{
				"type":    "integer",
				"minimum": 1,
				"maximum": maxSize,
			},
			"sort": map[string]interface{}{
				"type": "array",
				"items": map[string]interface{}{
					"type":     "object",
					"required": []interface{}{"property", "direction"},
					"properties": map[string]interface{}{
						"property":  map[string]interface{}{"enum": properties},
						"direction": map[string]interface{}{"enum": []interface{}{string(models.Asc), string(models.Desc)}},
					},
				},
			},
		},
	}
}

// Parse reads page (default 0), size (default from config) and any number of
// sort=property[,property...][,asc|desc] values. Blank sort values are ignored.
func (v *PageRequestValidator) Parse(values url.Values) (models.PageRequest, error) {
	page, err := intParam(values, "page", 0)
	if err != nil {
		return models.PageRequest{}, err
	}
	size, err := intParam(values, "size", v.defaultSize)
	if err != nil {
		return models.PageRequest{}, err
	}

	var orders []models.Order
	for _, raw := range values["sort"] {
		orders = append(orders, parseOrders(raw)...)
	}
	sort := make([]interface{}, 0, len(orders))
	for _, order := range orders {
		sort = append(sort, map[string]interface{}{
			"property":  string(order.Property),
			"direction": string(order.Direction),
		})
	}

	doc := map[string]interface{}{
		"page": page,
		"size": size,
		"sort": sort,
	}
	if err := v.validate(doc); err != nil {
		return models.PageRequest{}, err
	}

	return models.PageRequest{Page: page, Size: size, Sort: orders}, nil
}

func (v *PageRequestValidator) validate(doc map[string]interface{}) error {
	result, err := v.schema.Validate(gojsonschema.NewGoLoader(doc))
	if err != nil {
		return apperrors.NewInvalidRequestError("pagination", err.Error())
	}
	if result.Valid() {
		return nil
	}

	msgs := make([]string, len(result.Errors()))
	for i, desc := range result.Errors() {
		msgs[i] = desc.String()
	}
	return apperrors.NewInvalidRequestError(fieldName(result.Errors()[0].Field()), strings.Join(msgs, "; "))
}

// fieldName maps a schema path such as "sort.0.direction" back to the query parameter.
func fieldName(path string) string {
	if i := strings.IndexByte(path, '.'); i >= 0 {
		return path[:i]
	}
	return path
}

func intParam(values url.Values, name string, def int) (int, error) {
	raw := strings.TrimSpace(values.Get(name))
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, apperrors.NewInvalidRequestError(name, fmt.Sprintf("%q is not an integer", raw))
	}
	return n, nil
}

// parseOrders expands one sort value. A trailing asc or desc applies to every
// property before it; without one the properties sort ascending.
func parseOrders(raw string) []models.Order {
	var tokens []string
	for _, tok := range strings.Split(raw, ",") {
		if tok = strings.TrimSpace(tok); tok != "" {
			tokens = append(tokens, tok)
		}
	}
	if len(tokens) == 0 {
		return nil
	}

	dir := models.Asc
	if last := models.Direction(strings.ToLower(tokens[len(tokens)-1])); last == models.Asc || last == models.Desc {
		dir = last
		tokens = tokens[:len(tokens)-1]
	}

	orders := make([]models.Order, 0, len(tokens))
	for _, prop := range tokens {
		orders = append(orders, models.Order{Property: models.SortProperty(prop), Direction: dir})
	}
	return orders
}

// RequiredString returns the value of name untouched, or an InvalidRequest
// error when it is absent or blank.
func RequiredString(values url.Values, name string) (string, error) {
	v := values.Get(name)
	if strings.TrimSpace(v) == "" {
		return "", apperrors.NewInvalidRequestError(name, "parameter is required")
	}
	return v, nil
}

// ID parses a path identifier as an int64.
func ID(raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, apperrors.NewInvalidRequestError("id", fmt.Sprintf("%q is not a valid id", raw))
	}
	return id, nil
}
