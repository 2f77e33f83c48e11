package search

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "cars-api/internal/common/errors"
	"cars-api/internal/common/logger"
	"cars-api/internal/models"
	"cars-api/internal/pagination"
)

type capturedRequest struct {
	Method string
	Path   string
	Query  map[string]string
	Body   map[string]interface{}
}

// fakeIndex serves the subset of the Elasticsearch REST API the repository uses.
func fakeIndex(t *testing.T, status int, response string) (*elasticsearch.Client, *[]capturedRequest) {
	t.Helper()
	var captured []capturedRequest

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c := capturedRequest{Method: r.Method, Path: r.URL.Path, Query: map[string]string{}}
		for k := range r.URL.Query() {
			c.Query[k] = r.URL.Query().Get(k)
		}
		if raw, _ := io.ReadAll(r.Body); len(raw) > 0 {
			require.NoError(t, json.Unmarshal(raw, &c.Body))
		}
		captured = append(captured, c)

		w.Header().Set("X-Elastic-Product", "Elasticsearch")
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(response))
	}))
	t.Cleanup(srv.Close)

	client, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses:    []string{srv.URL},
		DisableRetry: true,
	})
	require.NoError(t, err)
	return client, &captured
}

func hitsResponse(total int64, ids ...int64) string {
	hits := make([]string, 0, len(ids))
	for _, id := range ids {
		hits = append(hits, fmt.Sprintf(
			`{"_index":"car","_id":"%d","_score":1.2,"_source":{"id":%d,"make":"Tesla","model":"Model S","modelYear":2021,"color":"black","price":79990.50}}`,
			id, id))
	}
	return fmt.Sprintf(`{"took":3,"timed_out":false,"hits":{"total":{"value":%d,"relation":"eq"},"max_score":1.2,"hits":[%s]}}`,
		total, strings.Join(hits, ","))
}

func TestElasticsearchCarRepository_Search(t *testing.T) {
	client, captured := fakeIndex(t, http.StatusOK, hitsResponse(3, 4, 9, 2))
	repo := NewElasticsearchCarRepository(client, "car", logger.NewTestLogger(t))

	page, err := repo.Search(context.Background(), "tesla", models.PageRequest{Page: 0, Size: 20})
	require.NoError(t, err)

	assert.Len(t, page.Content, 3)
	assert.Equal(t, int64(3), page.TotalElements)
	assert.Equal(t, 1, page.TotalPages())
	assert.Equal(t, []int64{4, 9, 2}, []int64{page.Content[0].ID, page.Content[1].ID, page.Content[2].ID})
	assert.Equal(t, "79990.5", page.Content[0].Price.String())

	require.Len(t, *captured, 1)
	req := (*captured)[0]
	assert.Equal(t, "/car/_search", req.Path)
	assert.Equal(t, "0", req.Query["from"])
	assert.Equal(t, "20", req.Query["size"])
	assert.Equal(t, "true", req.Query["track_total_hits"])
	assert.Equal(t, map[string]interface{}{
		"query_string": map[string]interface{}{"query": "tesla"},
	}, req.Body["query"])
	assert.NotContains(t, req.Body, "sort")
}

func TestElasticsearchCarRepository_Search_PassesQueryVerbatimWithSort(t *testing.T) {
	client, captured := fakeIndex(t, http.StatusOK, hitsResponse(0))
	repo := NewElasticsearchCarRepository(client, "car", logger.NewTestLogger(t))

	raw := `make:"Tesla" AND (color:red OR modelYear:[2020 TO *])`
	page, err := repo.Search(context.Background(), raw, models.PageRequest{
		Page: 2,
		Size: 5,
		Sort: []models.Order{{Property: models.SortByModelYear, Direction: models.Desc}},
	})
	require.NoError(t, err)
	assert.Empty(t, page.Content)
	assert.NotNil(t, page.Content)

	req := (*captured)[0]
	assert.Equal(t, "10", req.Query["from"])
	assert.Equal(t, "5", req.Query["size"])
	assert.Equal(t, raw, req.Body["query"].(map[string]interface{})["query_string"].(map[string]interface{})["query"])
	assert.Equal(t, []interface{}{
		map[string]interface{}{"modelYear": map[string]interface{}{"order": "desc"}},
	}, req.Body["sort"])
}

func TestElasticsearchCarRepository_Search_IDFromDocumentID(t *testing.T) {
	body := `{"took":1,"hits":{"total":{"value":2,"relation":"eq"},"hits":[` +
		`{"_index":"car","_id":"17","_source":{"make":"Tesla","model":"Model 3","modelYear":2022,"color":"red","price":41990}},` +
		`{"_index":"car","_id":"18","_source":{"id":5,"make":"Tesla","model":"Model Y","modelYear":2023,"color":"white","price":52990}}` +
		`]}}`
	client, _ := fakeIndex(t, http.StatusOK, body)
	repo := NewElasticsearchCarRepository(client, "car", logger.NewTestLogger(t))

	page, err := repo.Search(context.Background(), "tesla", models.PageRequest{Page: 0, Size: 20})
	require.NoError(t, err)

	require.Len(t, page.Content, 2)
	assert.Equal(t, int64(17), page.Content[0].ID)
	assert.Equal(t, int64(5), page.Content[1].ID)
}

func TestElasticsearchCarRepository_Search_BeyondLastPage(t *testing.T) {
	client, _ := fakeIndex(t, http.StatusOK, hitsResponse(3))
	repo := NewElasticsearchCarRepository(client, "car", logger.NewTestLogger(t))

	page, err := repo.Search(context.Background(), "tesla", models.PageRequest{Page: 4, Size: 20})
	require.NoError(t, err)

	assert.Empty(t, page.Content)
	assert.Equal(t, int64(3), page.TotalElements)
	assert.Equal(t, 4, page.Number)
}

func TestElasticsearchCarRepository_Search_Errors(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		body     string
		wantCode apperrors.ErrorCode
	}{
		{"syntax error", http.StatusBadRequest, `{"error":{"type":"query_shard_exception"},"status":400}`, apperrors.ErrCodeInvalidSearchQuery},
		{"missing index", http.StatusNotFound, `{"error":{"type":"index_not_found_exception"},"status":404}`, apperrors.ErrCodeIndexNotFound},
		{"cluster failure", http.StatusInternalServerError, `{"error":{"type":"search_phase_execution_exception"},"status":500}`, apperrors.ErrCodeSearchQueryFailed},
		{"unavailable", http.StatusServiceUnavailable, `{"error":{"type":"cluster_block_exception"},"status":503}`, apperrors.ErrCodeElasticsearchConnectionFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, _ := fakeIndex(t, tt.status, tt.body)
			repo := NewElasticsearchCarRepository(client, "car", logger.NewTestLogger(t))

			_, err := repo.Search(context.Background(), "make:(", models.PageRequest{Page: 0, Size: 20})
			require.Error(t, err)
			assert.True(t, apperrors.HasCode(err, tt.wantCode), "got %v", err)
		})
	}
}

func TestElasticsearchCarRepository_Search_Unreachable(t *testing.T) {
	client, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses:    []string{"http://127.0.0.1:1"},
		DisableRetry: true,
	})
	require.NoError(t, err)
	repo := NewElasticsearchCarRepository(client, "car", logger.NewTestLogger(t))

	_, err = repo.Search(context.Background(), "tesla", models.PageRequest{Page: 0, Size: 20})
	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeElasticsearchConnectionFailed))
}

func TestBuildQuery(t *testing.T) {
	body := BuildQuery("a OR b", pagination.SearchPage{From: 0, Size: 20})
	assert.Equal(t, map[string]interface{}{
		"query": map[string]interface{}{
			"query_string": map[string]interface{}{"query": "a OR b"},
		},
	}, body)
}
