// Package search holds the full-text read path over the car index.
package search

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
	json "github.com/goccy/go-json"

	apperrors "cars-api/internal/common/errors"
	"cars-api/internal/common/logger"
	"cars-api/internal/models"
	"cars-api/internal/pagination"
)

// CarSearchRepository is the search index: free-text query with pagination.
type CarSearchRepository interface {
	Search(ctx context.Context, query string, req models.PageRequest) (models.Page[models.Car], error)
}

// ElasticsearchCarRepository runs query_string searches against one index.
type ElasticsearchCarRepository struct {
	client *elasticsearch.Client
	index  string
	logger logger.Logger
}

func NewElasticsearchCarRepository(client *elasticsearch.Client, index string, log logger.Logger) *ElasticsearchCarRepository {
	return &ElasticsearchCarRepository{
		client: client,
		index:  index,
		logger: log.WithFields(map[string]interface{}{"repository": "car-search", "index": index}),
	}
}

type searchResponse struct {
	Took int64 `json:"took"`
	Hits struct {
		Total struct {
			Value int64 `json:"value"`
		} `json:"total"`
		Hits []struct {
			ID     string     `json:"_id"`
			Source models.Car `json:"_source"`
		} `json:"hits"`
	} `json:"hits"`
}

// BuildQuery renders the request body for query. The query text is handed to
// the index untouched; its syntax is the index's query_string language.
func BuildQuery(query string, sp pagination.SearchPage) map[string]interface{} {
	body := map[string]interface{}{
		"query": map[string]interface{}{
			"query_string": map[string]interface{}{
				"query": query,
			},
		},
	}
	if len(sp.Sort) > 0 {
		body["sort"] = sp.Sort
	}
	return body
}

func (r *ElasticsearchCarRepository) Search(ctx context.Context, query string, req models.PageRequest) (models.Page[models.Car], error) {
	sp := pagination.ToSearch(req)

	body, err := json.Marshal(BuildQuery(query, sp))
	if err != nil {
		return models.Page[models.Car]{}, apperrors.NewSearchQueryFailedError(r.index, err)
	}

	searchReq := esapi.SearchRequest{
		Index:          []string{r.index},
		Body:           bytes.NewReader(body),
		From:           &sp.From,
		Size:           &sp.Size,
		TrackTotalHits: true,
	}

	start := time.Now()
	res, err := searchReq.Do(ctx, r.client)
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) || errors.Is(err, context.DeadlineExceeded) {
			return models.Page[models.Car]{}, apperrors.NewSearchTimeoutError(r.index)
		}
		return models.Page[models.Car]{}, apperrors.NewElasticsearchConnectionFailedError(err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return models.Page[models.Car]{}, r.responseError(query, res)
	}

	var sr searchResponse
	if err := json.NewDecoder(res.Body).Decode(&sr); err != nil {
		return models.Page[models.Car]{}, apperrors.NewSearchQueryFailedError(r.index, fmt.Errorf("decode response: %w", err))
	}

	cars := make([]models.Car, 0, len(sr.Hits.Hits))
	for _, hit := range sr.Hits.Hits {
		car := hit.Source
		if car.ID == 0 {
			// documents indexed without an id attribute carry it only as _id
			if id, err := strconv.ParseInt(hit.ID, 10, 64); err == nil {
				car.ID = id
			}
		}
		cars = append(cars, car)
	}

	r.logger.Debug("search executed", map[string]interface{}{
		"page":       req.Page,
		"size":       req.Size,
		"hitCount":   len(cars),
		"totalHits":  sr.Hits.Total.Value,
		"tookMs":     sr.Took,
		"durationMs": time.Since(start).Milliseconds(),
	})

	return models.NewPage(cars, req, sr.Hits.Total.Value), nil
}

func (r *ElasticsearchCarRepository) responseError(query string, res *esapi.Response) error {
	raw, _ := io.ReadAll(res.Body)
	details := fmt.Errorf("%s: %s", res.Status(), bytes.TrimSpace(raw))

	switch res.StatusCode {
	case http.StatusNotFound:
		return apperrors.NewIndexNotFoundError(r.index)
	case http.StatusBadRequest:
		return apperrors.NewInvalidSearchQueryError(query, details.Error())
	case http.StatusRequestTimeout, http.StatusGatewayTimeout:
		return apperrors.NewSearchTimeoutError(r.index)
	case http.StatusServiceUnavailable:
		return apperrors.NewElasticsearchConnectionFailedError(details)
	default:
		return apperrors.NewSearchQueryFailedError(r.index, details)
	}
}

func (r *ElasticsearchCarRepository) Ping(ctx context.Context) error {
	res, err := r.client.Ping(r.client.Ping.WithContext(ctx))
	if err != nil {
		return apperrors.NewElasticsearchConnectionFailedError(err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return apperrors.NewElasticsearchConnectionFailedError(fmt.Errorf("ping: %s", res.Status()))
	}
	return nil
}
