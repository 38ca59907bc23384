package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"recipebox/catalog"
	"recipebox/mealdb"
)

type wishlistResponse struct {
	catalog.Page[mealdb.Recipe]
	Pager []int `json:"pager,omitempty"`
}

func (h *Handler) wishlistPage(page int) wishlistResponse {
	p := catalog.Paginate(h.wishlist.State().Items, page, h.wishlistPageSize)
	return wishlistResponse{Page: p, Pager: catalog.PageNumbers(p.Page, p.TotalPages)}
}

// GetWishlist returns one page of saved recipes.
func (h *Handler) GetWishlist(c *gin.Context) {
	page, ok := pageParam(c)
	if !ok {
		errorJSON(c, http.StatusBadRequest, "page must be a number")
		return
	}
	c.JSON(http.StatusOK, h.wishlistPage(page))
}

func (h *Handler) AddToWishlist(c *gin.Context) {
	r, ok := bindRecipe(c)
	if !ok {
		return
	}
	if err := h.wishlist.Add(c.Request.Context(), r); err != nil {
		storeFailed(c, "wishlist.add", err)
		return
	}
	c.JSON(http.StatusOK, h.wishlistPage(1))
}

func (h *Handler) RemoveFromWishlist(c *gin.Context) {
	if err := h.wishlist.Remove(c.Request.Context(), c.Param("id")); err != nil {
		storeFailed(c, "wishlist.remove", err)
		return
	}
	c.JSON(http.StatusOK, h.wishlistPage(1))
}

func (h *Handler) ClearWishlist(c *gin.Context) {
	if err := h.wishlist.Clear(c.Request.Context()); err != nil {
		storeFailed(c, "wishlist.clear", err)
		return
	}
	c.JSON(http.StatusOK, h.wishlistPage(1))
}

// MoveToCart adds a saved recipe to the cart and returns the cart.
func (h *Handler) MoveToCart(c *gin.Context) {
	moved, err := h.wishlist.MoveToCart(c.Request.Context(), c.Param("id"), h.cart)
	if err != nil {
		storeFailed(c, "wishlist.move_to_cart", err)
		return
	}
	if !moved {
		errorJSON(c, http.StatusNotFound, "Recipe is not in the wishlist")
		return
	}
	c.JSON(http.StatusOK, h.cartResponse())
}
