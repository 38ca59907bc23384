package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"recipebox/mealdb"
	"recipebox/store"
)

type cartResponse struct {
	Items          []store.CartItem `json:"items"`
	Count          int              `json:"count"`
	TotalCents     int64            `json:"total_cents"`
	UnitPriceCents int64            `json:"unit_price_cents"`
}

func (h *Handler) cartResponse() cartResponse {
	s := h.cart.State()
	return cartResponse{
		Items:          s.Items,
		Count:          s.Count(),
		TotalCents:     s.Total(h.cart.UnitPrice()),
		UnitPriceCents: h.cart.UnitPrice(),
	}
}

// bindRecipe reads a recipe body; the id is mandatory.
func bindRecipe(c *gin.Context) (mealdb.Recipe, bool) {
	var r mealdb.Recipe
	if err := c.ShouldBindJSON(&r); err != nil {
		errorJSON(c, http.StatusBadRequest, "Invalid recipe: "+err.Error())
		return r, false
	}
	if r.ID == "" {
		errorJSON(c, http.StatusBadRequest, "Invalid recipe: idMeal is required")
		return r, false
	}
	return r, true
}

func (h *Handler) GetCart(c *gin.Context) {
	c.JSON(http.StatusOK, h.cartResponse())
}

// AddToCart adds the posted recipe with quantity 1. Recipes already in the cart are left as they are.
func (h *Handler) AddToCart(c *gin.Context) {
	r, ok := bindRecipe(c)
	if !ok {
		return
	}
	if err := h.cart.Add(c.Request.Context(), r); err != nil {
		storeFailed(c, "cart.add", err)
		return
	}
	c.JSON(http.StatusOK, h.cartResponse())
}

type quantityRequest struct {
	Quantity *int `json:"quantity"`
}

// SetCartQuantity replaces the quantity of one line. Quantities below 1 leave the line unchanged.
func (h *Handler) SetCartQuantity(c *gin.Context) {
	var req quantityRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Quantity == nil {
		errorJSON(c, http.StatusBadRequest, "quantity is required")
		return
	}
	id := c.Param("id")
	if !h.cart.State().Contains(id) {
		errorJSON(c, http.StatusNotFound, "Recipe is not in the cart")
		return
	}
	if err := h.cart.SetQuantity(c.Request.Context(), id, *req.Quantity); err != nil {
		storeFailed(c, "cart.set_quantity", err)
		return
	}
	c.JSON(http.StatusOK, h.cartResponse())
}

func (h *Handler) RemoveFromCart(c *gin.Context) {
	if err := h.cart.Remove(c.Request.Context(), c.Param("id")); err != nil {
		storeFailed(c, "cart.remove", err)
		return
	}
	c.JSON(http.StatusOK, h.cartResponse())
}

func (h *Handler) ClearCart(c *gin.Context) {
	if err := h.cart.Clear(c.Request.Context()); err != nil {
		storeFailed(c, "cart.clear", err)
		return
	}
	c.JSON(http.StatusOK, h.cartResponse())
}
