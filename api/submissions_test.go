package api

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateSubmission(t *testing.T) {
	s := newTestServer(t)

	code, body := s.do(t, http.MethodPost, "/api/submissions/validate", map[string]any{
		"step":       1,
		"submission": map[string]any{"name": "Shakshuka", "category": ""},
	})
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, false, body["valid"])
	assert.EqualValues(t, 1, body["next_step"])
	assert.Equal(t, map[string]any{"category": "Select a category"}, body["errors"])
	assert.Len(t, body["categories"], 6)

	code, body = s.do(t, http.MethodPost, "/api/submissions/validate", map[string]any{
		"step":       2,
		"submission": map[string]any{"ingredients": []string{"", "Eggs", ""}},
	})
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, true, body["valid"])
	assert.EqualValues(t, 3, body["next_step"])
	assert.EqualValues(t, 1, body["prev_step"])
}

func TestSubmit(t *testing.T) {
	s := newTestServer(t)
	complete := map[string]any{
		"name":         "Shakshuka",
		"category":     "Breakfast",
		"ingredients":  []string{"Eggs", "Tomatoes", ""},
		"instructions": "Simmer, then poach the eggs.",
	}

	code, body := s.do(t, http.MethodPost, "/api/submissions", complete)
	require.Equal(t, http.StatusCreated, code)
	assert.NotEmpty(t, body["id"])
	require.Len(t, s.sink.got, 1)
	assert.Equal(t, "Shakshuka", s.sink.got[0].Name)

	code, body = s.do(t, http.MethodPost, "/api/submissions", map[string]any{"name": "Half done"})
	require.Equal(t, http.StatusUnprocessableEntity, code)
	assert.Contains(t, body["errors"], "instructions")

	s.sink.err = errors.New("webhook down")
	code, _ = s.do(t, http.MethodPost, "/api/submissions", complete)
	assert.Equal(t, http.StatusBadGateway, code)
}
