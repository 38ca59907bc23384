package store

import (
	"context"
	"log/slog"
	"slices"
	"sync"

	"recipebox/mealdb"
	"recipebox/store/storage"
)

// WishlistState is the ordered list of saved recipes, unique by id.
type WishlistState struct {
	Items []mealdb.Recipe `json:"items"`
}

type WishlistAction interface{ wishlistAction() }

// AddToWishlist saves the recipe unless it is already saved.
type AddToWishlist struct{ Recipe mealdb.Recipe }

type RemoveFromWishlist struct{ ID string }

type ClearWishlist struct{}

func (AddToWishlist) wishlistAction()      {}
func (RemoveFromWishlist) wishlistAction() {}
func (ClearWishlist) wishlistAction()      {}

// ReduceWishlist returns the state after applying a. It never modifies s.
func ReduceWishlist(s WishlistState, a WishlistAction) WishlistState {
	switch a := a.(type) {
	case AddToWishlist:
		if s.Contains(a.Recipe.ID) {
			return s
		}
		return WishlistState{Items: append(slices.Clone(s.Items), a.Recipe)}

	case RemoveFromWishlist:
		return WishlistState{Items: slices.DeleteFunc(slices.Clone(s.Items), func(r mealdb.Recipe) bool {
			return r.ID == a.ID
		})}

	case ClearWishlist:
		return WishlistState{Items: []mealdb.Recipe{}}
	}
	return s
}

func (s WishlistState) Contains(id string) bool {
	return slices.ContainsFunc(s.Items, func(r mealdb.Recipe) bool { return r.ID == id })
}

// Wishlist is the persisted wishlist container. Safe for concurrent use.
type Wishlist struct {
	mu    sync.RWMutex
	state WishlistState
	items record[[]mealdb.Recipe]
}

func NewWishlist(state storage.State) *Wishlist {
	return &Wishlist{
		state: WishlistState{Items: []mealdb.Recipe{}},
		items: record[[]mealdb.Recipe]{name: KeyWishlist, state: state},
	}
}

func (w *Wishlist) Load(ctx context.Context) error {
	items, err := w.items.load(ctx, []mealdb.Recipe{})
	if err != nil {
		return err
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	w.state = WishlistState{Items: items}
	slog.Info("STORE: Wishlist loaded", "items", len(items))
	return nil
}

func (w *Wishlist) Dispatch(ctx context.Context, a WishlistAction) (WishlistState, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	next := ReduceWishlist(w.state, a)
	if err := w.items.save(ctx, next.Items); err != nil {
		slog.Error("STORE: Failed to persist wishlist", "action", actionName(a), "error", err)
		return w.state, err
	}
	w.state = next
	return next, nil
}

func (w *Wishlist) Add(ctx context.Context, r mealdb.Recipe) error {
	_, err := w.Dispatch(ctx, AddToWishlist{Recipe: r})
	return err
}

func (w *Wishlist) Remove(ctx context.Context, id string) error {
	_, err := w.Dispatch(ctx, RemoveFromWishlist{ID: id})
	return err
}

func (w *Wishlist) Clear(ctx context.Context) error {
	_, err := w.Dispatch(ctx, ClearWishlist{})
	return err
}

// Get returns the saved recipe with the given id.
func (w *Wishlist) Get(id string) (mealdb.Recipe, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	i := slices.IndexFunc(w.state.Items, func(r mealdb.Recipe) bool { return r.ID == id })
	if i < 0 {
		return mealdb.Recipe{}, false
	}
	return w.state.Items[i], true
}

// MoveToCart adds the saved recipe to the cart. The recipe stays on the wishlist.
func (w *Wishlist) MoveToCart(ctx context.Context, id string, cart *Cart) (bool, error) {
	r, ok := w.Get(id)
	if !ok {
		return false, nil
	}
	return true, cart.Add(ctx, r)
}

func (w *Wishlist) State() WishlistState {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return WishlistState{Items: slices.Clone(w.state.Items)}
}
