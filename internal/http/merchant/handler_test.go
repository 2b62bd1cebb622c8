package merchant_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	merchantHandler "github.com/MrJamesThe3rd/kontoflyt/internal/http/merchant"
	"github.com/MrJamesThe3rd/kontoflyt/internal/merchant"
)

func newRouter(repo *merchant.MockRepository) http.Handler {
	router := chi.NewRouter()
	merchantHandler.NewHandler(merchant.NewService(repo)).Routes(router)

	return router
}

func TestNormalize(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := merchant.NewMockRepository(ctrl)
	repo.EXPECT().FindAlias(gomock.Any(), "100022 NOK").Return("", nil)

	req := httptest.NewRequest(http.MethodGet, "/normalize?raw=100022+NOK&fallback=SPOTIFY+P2A1", nil)
	rec := httptest.NewRecorder()
	newRouter(repo).ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "Spotify", body["merchant"])
	assert.Equal(t, "name", body["kind"])
}

func TestNormalize_MissingRaw(t *testing.T) {
	ctrl := gomock.NewController(t)

	rec := httptest.NewRecorder()
	newRouter(merchant.NewMockRepository(ctrl)).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/normalize", nil))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestLearn(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := merchant.NewMockRepository(ctrl)
	repo.EXPECT().CreateAlias(gomock.Any(), "100022", "Barnehagen").Return(nil)

	body := strings.NewReader(`{"raw_pattern":"100022","preferred_merchant":"Barnehagen"}`)
	rec := httptest.NewRecorder()
	newRouter(repo).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/aliases", body))

	assert.Equal(t, http.StatusCreated, rec.Code)

	rec = httptest.NewRecorder()
	newRouter(repo).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/aliases", strings.NewReader(`{}`)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
