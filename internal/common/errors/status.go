package errors

import "net/http"

// HTTPStatusMapping maps error codes to the status returned to API clients.
var HTTPStatusMapping = map[ErrorCode]int{
	ErrCodeResourceNotFound:              http.StatusNotFound,
	ErrCodeInvalidRequest:                http.StatusBadRequest,
	ErrCodeInvalidSearchQuery:            http.StatusBadRequest,
	ErrCodeDatabaseConnectionFailed:      http.StatusServiceUnavailable,
	ErrCodeQueryExecutionFailed:          http.StatusInternalServerError,
	ErrCodeQueryTimeout:                  http.StatusGatewayTimeout,
	ErrCodeElasticsearchConnectionFailed: http.StatusServiceUnavailable,
	ErrCodeSearchQueryFailed:             http.StatusInternalServerError,
	ErrCodeSearchTimeout:                 http.StatusGatewayTimeout,
	ErrCodeIndexNotFound:                 http.StatusInternalServerError,
	ErrCodeInternal:                      http.StatusInternalServerError,
}

func HTTPStatus(code ErrorCode) int {
	if status, ok := HTTPStatusMapping[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

func GetErrorCategory(code ErrorCode) string {
	switch code {
	case ErrCodeResourceNotFound, ErrCodeInvalidRequest, ErrCodeInvalidSearchQuery:
		return "CLIENT"
	case ErrCodeDatabaseConnectionFailed, ErrCodeQueryExecutionFailed, ErrCodeQueryTimeout:
		return "ENTITY_STORE"
	case ErrCodeElasticsearchConnectionFailed, ErrCodeSearchQueryFailed,
		ErrCodeSearchTimeout, ErrCodeIndexNotFound:
		return "SEARCH_INDEX"
	default:
		return "INTERNAL"
	}
}
