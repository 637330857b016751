package playground

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lumen-lang/lumen/internal/compiler/pipeline"
	"github.com/lumen-lang/lumen/internal/diagnostics"
	"github.com/lumen-lang/lumen/internal/web/router"
)

func TestHandleCompileSuccess(t *testing.T) {
	srv := New(nil, nil, nil, nil)

	body, _ := json.Marshal(compileRequest{Source: "LET x: Integer = 1;"})
	req := httptest.NewRequest(http.MethodPost, "/api/compile", bytes.NewReader(body))
	rec := httptest.NewRecorder()

	srv.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp compileResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Ok)
	assert.Contains(t, resp.Output, "BigInteger")
}

func TestHandleCompileFailure(t *testing.T) {
	srv := New(nil, nil, nil, nil)

	body, _ := json.Marshal(compileRequest{Source: "let x: Integer = "})
	req := httptest.NewRequest(http.MethodPost, "/api/compile", bytes.NewReader(body))
	rec := httptest.NewRecorder()

	srv.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp compileResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.False(t, resp.Ok)
	require.Len(t, resp.Diagnostics, 1)
	assert.Equal(t, "parse", string(resp.Diagnostics[0].Stage))
}

func TestHandleHistoryDisabledWithoutStore(t *testing.T) {
	srv := New(nil, nil, nil, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/history", nil)
	rec := httptest.NewRecorder()

	srv.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandleRoutesListsRegisteredResources(t *testing.T) {
	srv := New(nil, nil, nil, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/routes", nil)
	rec := httptest.NewRecorder()

	srv.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var routes []router.RouteInfo
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &routes))

	var found *router.RouteInfo
	for i := range routes {
		if routes[i].Pattern == "/api/compile" {
			found = &routes[i]
		}
	}
	require.NotNil(t, found)
	assert.Equal(t, "lumen.compile", found.ResourceName)
	assert.Equal(t, "compile", found.Operation)
}

func TestCompileJobHandlerRunsSourceThroughPipeline(t *testing.T) {
	srv := New(nil, nil, nil, nil)

	err := srv.CompileJobHandler(context.Background(), map[string]interface{}{"source": "LET x: Integer = 1;"})
	assert.NoError(t, err)
}

func TestCompileJobHandlerToleratesInvalidSource(t *testing.T) {
	srv := New(nil, nil, nil, nil)

	err := srv.CompileJobHandler(context.Background(), map[string]interface{}{"source": "let x: Integer = "})
	assert.NoError(t, err)
}

func TestHandleHistoryFiltersByStage(t *testing.T) {
	store, err := diagnostics.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	defer store.Close()

	srv := New(store, nil, nil, nil)

	srv.recordRun(context.Background(), "LET x = 1;", pipeline.Compile("LET x = 1;"))
	srv.recordRun(context.Background(), "let x: Integer = ", pipeline.Compile("let x: Integer = "))

	req := httptest.NewRequest(http.MethodGet, "/api/history?stage=parse", nil)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var runs []diagnostics.Run
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &runs))
	require.Len(t, runs, 1)
	assert.Equal(t, "parse", runs[0].Stage)
}
