package health

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chantierplus/internal/testutil"
)

func serve(r *mux.Router, path string) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, path, nil))
	return rr
}

func TestReady(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, fs.MkdirAll("/uploads", 0o755))

	r := mux.NewRouter()
	RegisterRoutes(r, DB(testutil.NewDB(t)), WritableDir(fs, "/uploads"))
	assert.Equal(t, http.StatusOK, serve(r, "/healthz").Code)
	assert.Equal(t, http.StatusOK, serve(r, "/readyz").Code)

	entries, err := afero.ReadDir(fs, "/uploads")
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestNotReady(t *testing.T) {
	r := mux.NewRouter()
	RegisterRoutes(r,
		DB(nil),
		WritableDir(afero.NewReadOnlyFs(afero.NewMemMapFs()), "/uploads"),
		Check{Name: "custom", Run: func(context.Context) error { return errors.New("down") }},
	)
	rr := serve(r, "/readyz")
	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
	assert.Contains(t, rr.Body.String(), `"db":"db not configured"`)
	assert.Contains(t, rr.Body.String(), `"storage"`)
	assert.Contains(t, rr.Body.String(), `"custom":"down"`)
}
