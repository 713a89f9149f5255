package chantiers_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"chantierplus/internal/chantiers"
	"chantierplus/internal/middleware"
	"chantierplus/internal/models"
	"chantierplus/internal/repo"
	"chantierplus/internal/testutil"
)

type env struct {
	db     *gorm.DB
	router *mux.Router
	fx     testutil.Fixture
	rival  testutil.Fixture
}

// asUser подставляет пользователя вместо проверки токена.
func asUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var u models.UserProfile
		if err := json.Unmarshal([]byte(r.Header.Get("X-Test-User")), &u); err != nil {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r.WithContext(middleware.WithUser(r.Context(), &u)))
	})
}

func newEnv(t *testing.T) *env {
	gdb := testutil.NewDB(t)
	r := mux.NewRouter()
	chantiers.RegisterRoutes(r, chantiers.NewHandler(repo.NewChantierStore(gdb), repo.NewAvenantStore(gdb)), asUser)
	return &env{db: gdb, router: r, fx: testutil.Seed(t, gdb, "btp"), rival: testutil.Seed(t, gdb, "rival")}
}

func (e *env) do(t *testing.T, method, path string, u *models.UserProfile, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	raw, err := json.Marshal(u)
	require.NoError(t, err)
	req.Header.Set("X-Test-User", string(raw))
	rr := httptest.NewRecorder()
	e.router.ServeHTTP(rr, req)
	return rr
}

func TestCreateAndList(t *testing.T) {
	e := newEnv(t)

	rr := e.do(t, http.MethodPost, "/chantiers", &e.fx.Employee, map[string]string{
		"name": "Loft Bastille", "address": "3 rue de Lappe", "contact_email": "loft@client.fr",
	})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	var created models.Chantier
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &created))
	assert.Equal(t, e.fx.Company.ID, created.CompanyID)

	rr = e.do(t, http.MethodGet, "/chantiers", &e.fx.Employee, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	var list []models.Chantier
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &list))
	require.Len(t, list, 2)
	assert.Equal(t, e.fx.Chantier.ID, list[0].ID)

	rr = e.do(t, http.MethodGet, "/chantiers?skip=1&limit=1", &e.fx.Employee, nil)
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &list))
	require.Len(t, list, 1)
	assert.Equal(t, created.ID, list[0].ID)

	rr = e.do(t, http.MethodGet, "/chantiers?limit=-1", &e.fx.Employee, nil)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestCreateValidation(t *testing.T) {
	e := newEnv(t)
	rr := e.do(t, http.MethodPost, "/chantiers", &e.fx.Employee, map[string]string{
		"name": "X", "address": "Y", "contact_email": "not-an-email",
	})
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestGetAndAvenants(t *testing.T) {
	e := newEnv(t)
	base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	for i, d := range []string{"premier", "second"} {
		a := models.NewAvenant(models.AvenantParams{
			ChantierID:  e.fx.Chantier.ID,
			Description: d,
			Type:        models.ModeForfait,
			Price:       decimal.NewNullDecimal(decimal.NewFromInt(100)),
			TotalHT:     decimal.NewFromInt(100),
			Status:      models.StatusSigned,
			SignedAt:    base.Add(time.Duration(i) * time.Hour),
		})
		require.NoError(t, e.db.Create(a).Error)
	}

	path := "/chantiers/" + e.fx.Chantier.ID.String()
	assert.Equal(t, http.StatusOK, e.do(t, http.MethodGet, path, &e.fx.Employee, nil).Code)
	assert.Equal(t, http.StatusForbidden, e.do(t, http.MethodGet, path, &e.rival.Employee, nil).Code)
	assert.Equal(t, http.StatusNotFound, e.do(t, http.MethodGet, "/chantiers/"+uuid.NewString(), &e.fx.Employee, nil).Code)

	rr := e.do(t, http.MethodGet, path+"/avenants", &e.fx.Owners[0], nil)
	require.Equal(t, http.StatusOK, rr.Code)
	var list []models.Avenant
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &list))
	require.Len(t, list, 2)
	assert.Equal(t, "second", list[0].Description)

	assert.Equal(t, http.StatusForbidden, e.do(t, http.MethodGet, path+"/avenants", &e.rival.Owners[0], nil).Code)
}
