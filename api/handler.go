// Package api exposes the catalog, cart, wishlist, auth and submission operations over HTTP.
package api

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"recipebox/catalog"
	"recipebox/forms"
	"recipebox/store"
)

// Handler serves the HTTP routes. All state lives in the injected containers.
type Handler struct {
	view             *catalog.View
	engine           *catalog.Engine
	cart             *store.Cart
	wishlist         *store.Wishlist
	auth             *store.Auth
	sink             forms.Sink
	wishlistPageSize int
}

type HandlerOpts struct {
	View     *catalog.View
	Engine   *catalog.Engine
	Cart     *store.Cart
	Wishlist *store.Wishlist
	Auth     *store.Auth
	// Sink receives accepted recipe submissions. Defaults to forms.LogSink.
	Sink             forms.Sink
	WishlistPageSize int
}

func NewHandler(opts HandlerOpts) (*Handler, error) {
	if opts.View == nil || opts.Engine == nil {
		return nil, errors.New("catalog view and engine are required")
	}
	if opts.Cart == nil || opts.Wishlist == nil || opts.Auth == nil {
		return nil, errors.New("cart, wishlist and auth stores are required")
	}
	if opts.Sink == nil {
		opts.Sink = forms.LogSink{}
	}
	if opts.WishlistPageSize <= 0 {
		opts.WishlistPageSize = catalog.WishlistPageSize
	}
	return &Handler{
		view:             opts.View,
		engine:           opts.Engine,
		cart:             opts.Cart,
		wishlist:         opts.Wishlist,
		auth:             opts.Auth,
		sink:             opts.Sink,
		wishlistPageSize: opts.WishlistPageSize,
	}, nil
}

// Health reports liveness.
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// errorJSON writes {"error": msg}.
func errorJSON(c *gin.Context, status int, msg string) {
	c.AbortWithStatusJSON(status, gin.H{"error": msg})
}

// storeFailed reports a persistence failure without leaking backend details.
func storeFailed(c *gin.Context, op string, err error) {
	slog.Error("API: Store operation failed", "op", op, "error", err)
	errorJSON(c, http.StatusInternalServerError, "Could not save your changes")
}

// pageParam reads ?page, defaulting to 1. ok is false when the value is not an integer.
func pageParam(c *gin.Context) (int, bool) {
	raw := c.Query("page")
	if raw == "" {
		return 1, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false
	}
	return n, true
}
