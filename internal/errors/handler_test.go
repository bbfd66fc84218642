package errors

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"clinicpulse/internal/dataset"
	"clinicpulse/internal/ingest"
)

func newTestHandler() *ErrorHandler {
	return NewErrorHandler(slog.New(slog.NewTextHandler(io.Discard, nil)), false)
}

func decodeProblem(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestHandleErrorSchemaMismatch(t *testing.T) {
	h := newTestHandler()
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/dataset", nil)

	h.HandleError(rec, req, &dataset.SchemaError{Missing: []string{"Year", "Deaths in Clinic 1"}})

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	body := decodeProblem(t, rec)
	assert.Equal(t, TypeSchemaMismatch, body["type"])
	assert.ElementsMatch(t, []interface{}{"Year", "Deaths in Clinic 1"}, body["missing_columns"])
}

func TestHandleErrorSourceUnavailable(t *testing.T) {
	h := newTestHandler()
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/dataset", nil)

	fetchErr := &ingest.SourceFetchError{Source: "https://example.com/data.csv", Err: fmt.Errorf("unexpected status 404 Not Found")}
	h.HandleError(rec, req, fmt.Errorf("load failed: %w", fetchErr))

	assert.Equal(t, http.StatusBadGateway, rec.Code)
	body := decodeProblem(t, rec)
	assert.Equal(t, TypeSourceUnavailable, body["type"])
	assert.Equal(t, "https://example.com/data.csv", body["source"])
	assert.Contains(t, body["detail"], "404")
}

func TestHandleErrorAPIError(t *testing.T) {
	h := newTestHandler()
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/dataset/range", nil)

	h.HandleError(rec, req, ErrValidation("from", "invalid period bound"))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	body := decodeProblem(t, rec)
	assert.Equal(t, TypeValidation, body["type"])
	assert.Equal(t, "VALIDATION_FAILED", body["error_code"])
}

func TestHandleErrorContextCancelled(t *testing.T) {
	h := newTestHandler()
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/dataset", nil)

	h.HandleError(rec, req, context.Canceled)
	assert.Equal(t, http.StatusGatewayTimeout, rec.Code)
}

func TestHandleErrorGenericFallback(t *testing.T) {
	h := newTestHandler()
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/dataset", nil)

	h.HandleError(rec, req, fmt.Errorf("something odd"))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	body := decodeProblem(t, rec)
	assert.Equal(t, TypeInternal, body["type"])
	// Internal detail is not leaked to the client.
	assert.NotContains(t, body["detail"], "something odd")
}

func TestNotFound(t *testing.T) {
	h := newTestHandler()
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/nope", nil)

	h.NotFound(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestProblemDetailsMarshalIncludesExtensions(t *testing.T) {
	pd := NewProblemDetails(422, TypeSchemaMismatch, "Schema Mismatch", "missing columns", "/api/dataset").
		WithExtension("missing_columns", []string{"Year"})

	data, err := json.Marshal(pd)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"missing_columns":["Year"]`)
	assert.Contains(t, string(data), `"status":422`)
}
