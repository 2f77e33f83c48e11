// Package pagination translates page requests into store addressing and
// store pages into response envelopes carrying navigation headers.
package pagination

import (
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"cars-api/internal/models"
)

const (
	HeaderTotalCount = "X-Total-Count"
	HeaderTotalPages = "X-Total-Pages"
	HeaderLink       = "Link"

	ParamPage  = "page"
	ParamSize  = "size"
	ParamSort  = "sort"
	ParamQuery = "query"
)

// sqlColumns maps sortable properties to car table columns.
var sqlColumns = map[models.SortProperty]string{
	models.SortByID:        "id",
	models.SortByMake:      "make",
	models.SortByModel:     "model",
	models.SortByModelYear: "model_year",
	models.SortByColor:     "color",
	models.SortByPrice:     "price",
}

// searchFields maps sortable properties to index fields; text fields sort on their keyword sub-field.
var searchFields = map[models.SortProperty]string{
	models.SortByID:        "id",
	models.SortByMake:      "make.keyword",
	models.SortByModel:     "model.keyword",
	models.SortByModelYear: "modelYear",
	models.SortByColor:     "color.keyword",
	models.SortByPrice:     "price",
}

type SQLPage struct {
	OrderBy string
	Limit   int
	Offset  int
}

type SearchPage struct {
	From int
	Size int
	Sort []map[string]interface{}
}

// Envelope is the outward response: the page content plus navigation headers.
type Envelope[T any] struct {
	Body    []T
	Headers http.Header
}

// ToSQL maps req onto ORDER BY/LIMIT/OFFSET. The order always ends with id so
// that pages are stable when sort keys tie or no sort is given.
func ToSQL(req models.PageRequest) SQLPage {
	terms := make([]string, 0, len(req.Sort)+1)
	hasID := false
	for _, o := range req.Sort {
		col, ok := sqlColumns[o.Property]
		if !ok {
			continue
		}
		if o.Property == models.SortByID {
			hasID = true
		}
		terms = append(terms, col+" "+sqlDirection(o.Direction))
	}
	if !hasID {
		terms = append(terms, "id ASC")
	}

	return SQLPage{
		OrderBy: strings.Join(terms, ", "),
		Limit:   req.Size,
		Offset:  req.Offset(),
	}
}

func sqlDirection(d models.Direction) string {
	if d == models.Desc {
		return "DESC"
	}
	return "ASC"
}

// ToSearch maps req onto from/size/sort. An empty Sort leaves relevance ordering to the index.
func ToSearch(req models.PageRequest) SearchPage {
	var sort []map[string]interface{}
	for _, o := range req.Sort {
		field, ok := searchFields[o.Property]
		if !ok {
			continue
		}
		dir := models.Asc
		if o.Direction == models.Desc {
			dir = models.Desc
		}
		sort = append(sort, map[string]interface{}{
			field: map[string]interface{}{"order": string(dir)},
		})
	}

	return SearchPage{
		From: req.Offset(),
		Size: req.Size,
		Sort: sort,
	}
}

// ToEnvelope builds the response for page. requestURI is the absolute URI of
// the originating request; links reuse it with page and size replaced.
func ToEnvelope[T any](page models.Page[T], requestURI *url.URL) Envelope[T] {
	body := page.Content
	if body == nil {
		body = []T{}
	}

	headers := http.Header{}
	headers.Set(HeaderTotalCount, strconv.FormatInt(page.TotalElements, 10))
	headers.Set(HeaderTotalPages, strconv.Itoa(page.TotalPages()))
	headers.Set(HeaderLink, linkHeader(page, requestURI))

	return Envelope[T]{Body: body, Headers: headers}
}

func linkHeader[T any](page models.Page[T], requestURI *url.URL) string {
	links := make([]string, 0, 4)
	if page.HasNext() {
		links = append(links, link(requestURI, page.Number+1, page.Size, "next"))
	}
	if page.HasPrevious() {
		links = append(links, link(requestURI, page.Number-1, page.Size, "prev"))
	}

	lastPage := 0
	if page.TotalPages() > 0 {
		lastPage = page.TotalPages() - 1
	}
	links = append(links, link(requestURI, lastPage, page.Size, "last"))
	links = append(links, link(requestURI, 0, page.Size, "first"))

	return strings.Join(links, ",")
}

func link(base *url.URL, pageNumber, size int, rel string) string {
	return "<" + pageURI(base, pageNumber, size) + `>; rel="` + rel + `"`
}

func pageURI(base *url.URL, pageNumber, size int) string {
	u := *base
	q := u.Query()
	q.Set(ParamPage, strconv.Itoa(pageNumber))
	q.Set(ParamSize, strconv.Itoa(size))
	u.RawQuery = q.Encode()
	u.Fragment = ""
	return u.String()
}
