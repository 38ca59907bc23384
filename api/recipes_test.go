package api

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListRecipes(t *testing.T) {
	s := newTestServer(t)

	code, body := s.do(t, http.MethodGet, "/api/recipes", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, []string{"52854", "52771"}, itemIDs(t, body["items"]))
	assert.EqualValues(t, 3, body["total_items"])
	assert.EqualValues(t, 2, body["total_pages"])
	assert.Equal(t, []any{1.0, 2.0}, body["pager"])

	code, body = s.do(t, http.MethodGet, "/api/recipes?page=2", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, []string{"52785"}, itemIDs(t, body["items"]))

	code, body = s.do(t, http.MethodGet, "/api/recipes?search=pie&category=Dessert", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, []string{"52807"}, itemIDs(t, body["items"]))
	assert.EqualValues(t, 1, body["page"], "new criteria reset the page")
	criteria := body["criteria"].(map[string]any)
	assert.Equal(t, "pie", criteria["search"])
	assert.Equal(t, "Dessert", criteria["category"])

	code, body = s.do(t, http.MethodGet, "/api/recipes?search=pie&category=Dessert&page=5", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Empty(t, body["items"], "page beyond range is empty")
	assert.Equal(t, 1, s.src.Calls("search_by_name"), "same criteria do not refetch")

	code, _ = s.do(t, http.MethodGet, "/api/recipes?page=abc", nil)
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestListRecipes_NewCriteriaIgnorePage(t *testing.T) {
	s := newTestServer(t)

	code, body := s.do(t, http.MethodGet, "/api/recipes?category=Dessert&page=2", nil)
	require.Equal(t, http.StatusOK, code)
	assert.EqualValues(t, 1, body["page"])
	assert.Equal(t, []string{"52807", "52854"}, itemIDs(t, body["items"]))

	code, body = s.do(t, http.MethodGet, "/api/recipes?category=Dessert&page=2", nil)
	require.Equal(t, http.StatusOK, code)
	assert.EqualValues(t, 2, body["page"], "unchanged criteria honour the page")
	assert.Empty(t, body["items"])
}

func TestListRecipes_ErrorAndReset(t *testing.T) {
	s := newTestServer(t)
	s.src.Err = errors.New("api down")

	code, body := s.do(t, http.MethodGet, "/api/recipes?category=Dessert", nil)
	require.Equal(t, http.StatusBadGateway, code)
	assert.Equal(t, "Error applying filters", body["error"])
	assert.Equal(t, []string{"52854", "52771"}, itemIDs(t, body["items"]), "previous results kept")

	s.src.Err = nil
	code, body = s.do(t, http.MethodPost, "/api/recipes/reset", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Nil(t, body["error"])
	assert.EqualValues(t, 3, body["total_items"])

	code, body = s.do(t, http.MethodGet, "/api/recipes?category=Dessert", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, []string{"52807", "52854"}, itemIDs(t, body["items"]))
}

func TestGetRecipe(t *testing.T) {
	s := newTestServer(t)

	code, body := s.do(t, http.MethodGet, "/api/recipes/52807", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "Key Lime Pie", body["strMeal"])
	assert.Equal(t, []any{"Limes - 4", "Butter - 100g"}, body["ingredient_lines"])
	assert.Equal(t, false, body["in_cart"])

	code, body = s.do(t, http.MethodGet, "/api/recipes/0", nil)
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "Recipe not found", body["error"])

	s.src.Err = errors.New("timeout")
	code, _ = s.do(t, http.MethodGet, "/api/recipes/52807", nil)
	assert.Equal(t, http.StatusBadGateway, code)
}
