package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"recipebox/catalog"
	"recipebox/mealdb"
)

type recipesResponse struct {
	catalog.Page[mealdb.Recipe]
	Criteria catalog.Criteria `json:"criteria"`
	Pager    []int            `json:"pager,omitempty"`
	Error    string           `json:"error,omitempty"`
}

func newRecipesResponse(p catalog.Page[mealdb.Recipe], snap catalog.Snapshot) recipesResponse {
	return recipesResponse{
		Page:     p,
		Criteria: snap.Criteria,
		Pager:    catalog.PageNumbers(p.Page, p.TotalPages),
		Error:    snap.Error,
	}
}

// Categories lists the recipe categories and the ingredient shortcuts for the filter bar.
func (h *Handler) Categories(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"categories":  h.engine.Categories(),
		"ingredients": catalog.CommonIngredients,
	})
}

// ListRecipes applies the query criteria when they differ from the active ones (or the last
// run failed) and returns the requested page. A request that applies new criteria always
// lands on page 1.
func (h *Handler) ListRecipes(c *gin.Context) {
	page, ok := pageParam(c)
	if !ok {
		errorJSON(c, http.StatusBadRequest, "page must be a number")
		return
	}

	criteria := catalog.Criteria{
		Search:     c.Query("search"),
		Category:   c.Query("category"),
		Ingredient: c.Query("ingredient"),
	}.Normalize()

	if criteria != h.view.Criteria() || h.view.Snapshot().Error != "" {
		p, err := h.view.Apply(c.Request.Context(), criteria)
		switch {
		case errors.Is(err, catalog.ErrSuperseded):
			errorJSON(c, http.StatusConflict, "A newer search replaced this one")
			return
		case err != nil:
			slog.Error("API: Filter failed", "error", err)
			c.JSON(http.StatusBadGateway, newRecipesResponse(p, h.view.Snapshot()))
			return
		}
		c.JSON(http.StatusOK, newRecipesResponse(p, h.view.Snapshot()))
		return
	}

	p := h.view.SetPage(page)
	c.JSON(http.StatusOK, newRecipesResponse(p, h.view.Snapshot()))
}

// ResetRecipes clears every filter and returns the first page of the baseline, fetching the
// baseline again if it never loaded.
func (h *Handler) ResetRecipes(c *gin.Context) {
	p, err := h.view.Reset(c.Request.Context())
	switch {
	case errors.Is(err, catalog.ErrSuperseded):
		errorJSON(c, http.StatusConflict, "A newer search replaced this one")
		return
	case err != nil:
		slog.Error("API: Baseline reload failed", "error", err)
		c.JSON(http.StatusBadGateway, newRecipesResponse(p, h.view.Snapshot()))
		return
	}
	c.JSON(http.StatusOK, newRecipesResponse(p, h.view.Snapshot()))
}

type recipeDetail struct {
	mealdb.Recipe
	IngredientLines []string `json:"ingredient_lines"`
	InCart          bool     `json:"in_cart"`
	InWishlist      bool     `json:"in_wishlist"`
}

// GetRecipe returns the full recipe record.
func (h *Handler) GetRecipe(c *gin.Context) {
	id := c.Param("id")
	r, err := h.engine.Source().Lookup(c.Request.Context(), id)
	if errors.Is(err, mealdb.ErrNotFound) {
		errorJSON(c, http.StatusNotFound, "Recipe not found")
		return
	}
	if err != nil {
		slog.Error("API: Recipe lookup failed", "id", id, "error", err)
		errorJSON(c, http.StatusBadGateway, "Failed to fetch recipe details")
		return
	}

	c.JSON(http.StatusOK, recipeDetail{
		Recipe:          *r,
		IngredientLines: r.IngredientLines(),
		InCart:          h.cart.State().Contains(id),
		InWishlist:      h.wishlist.State().Contains(id),
	})
}
