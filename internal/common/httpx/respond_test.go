package httpx

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"medtransport/internal/common/apperr"
)

func TestErrorMapsKind(t *testing.T) {
	rec := httptest.NewRecorder()
	Error(rec, apperr.NotFound("report abc not found"))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "report abc not found")
	assert.Contains(t, rec.Body.String(), "not_found")
}

func TestErrorHidesInternalDetail(t *testing.T) {
	rec := httptest.NewRecorder()
	Error(rec, errors.New("pq: connection refused"))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "connection refused")
	assert.Contains(t, rec.Body.String(), "internal server error")
}

func TestQueryInt(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/reports?page=3&size=abc", nil)

	assert.Equal(t, 3, QueryInt(r, "page", 1))
	assert.Equal(t, 10, QueryInt(r, "size", 10))
	assert.Equal(t, 1, QueryInt(r, "missing", 1))
}
