package activities

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListActivitiesReturnsFullArray(t *testing.T) {
	svc := NewService(NewMemoryRepository(Fixtures()), nil, nil)
	r := chi.NewRouter()
	NewHandler(nil, svc).MountRoutes(r)

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusOK, rr.Code)

	var rows []Activity
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&rows))
	require.Len(t, rows, 2)
	assert.Equal(t, "Login", rows[0].Action)
	assert.Equal(t, "Jane Doe", rows[1].User)
}
