package company_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chantierplus/internal/company"
	"chantierplus/internal/middleware"
	"chantierplus/internal/models"
	"chantierplus/internal/repo"
	"chantierplus/internal/testutil"
)

func TestInfo(t *testing.T) {
	gdb := testutil.NewDB(t)
	fx := testutil.Seed(t, gdb, "btp")
	r := mux.NewRouter()
	company.RegisterRoutes(r, company.NewHandler(repo.NewCompanyStore(gdb)))

	get := func(u *models.UserProfile) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/company/info", nil)
		if u != nil {
			req = req.WithContext(middleware.WithUser(req.Context(), u))
		}
		rr := httptest.NewRecorder()
		r.ServeHTTP(rr, req)
		return rr
	}

	rr := get(&fx.Employee)
	require.Equal(t, http.StatusOK, rr.Code)
	var c models.Company
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &c))
	assert.Equal(t, "btp", c.Name)

	assert.Equal(t, http.StatusNotFound, get(&models.UserProfile{CompanyID: uuid.New()}).Code)
	assert.Equal(t, http.StatusUnauthorized, get(nil).Code)
}
