package store

import (
	"context"
	"log/slog"
	"slices"
	"sync"

	"recipebox/mealdb"
	"recipebox/store/storage"
)

// DefaultUnitPriceCents is the price of one cart line unit ($10.00). It does not come from the recipe data.
const DefaultUnitPriceCents int64 = 1000

type CartItem struct {
	Recipe   mealdb.Recipe `json:"recipe"`
	Quantity int           `json:"quantity"`
}

// CartState is the ordered list of cart lines. Recipe ids are unique and quantities are >= 1.
type CartState struct {
	Items []CartItem `json:"items"`
}

// CartAction is one of AddToCart, RemoveFromCart, SetCartQuantity or ClearCart.
type CartAction interface{ cartAction() }

// AddToCart inserts the recipe with quantity 1. Adding a recipe already in the cart does nothing.
type AddToCart struct{ Recipe mealdb.Recipe }

type RemoveFromCart struct{ ID string }

// SetCartQuantity replaces a line's quantity. Quantities below 1 are ignored.
type SetCartQuantity struct {
	ID       string
	Quantity int
}

type ClearCart struct{}

func (AddToCart) cartAction()       {}
func (RemoveFromCart) cartAction()  {}
func (SetCartQuantity) cartAction() {}
func (ClearCart) cartAction()       {}

// ReduceCart returns the state after applying a. It never modifies s.
func ReduceCart(s CartState, a CartAction) CartState {
	switch a := a.(type) {
	case AddToCart:
		if s.index(a.Recipe.ID) >= 0 {
			return s
		}
		items := append(slices.Clone(s.Items), CartItem{Recipe: a.Recipe, Quantity: 1})
		return CartState{Items: items}

	case RemoveFromCart:
		items := slices.DeleteFunc(slices.Clone(s.Items), func(it CartItem) bool {
			return it.Recipe.ID == a.ID
		})
		return CartState{Items: items}

	case SetCartQuantity:
		i := s.index(a.ID)
		if a.Quantity < 1 || i < 0 {
			return s
		}
		items := slices.Clone(s.Items)
		items[i].Quantity = a.Quantity
		return CartState{Items: items}

	case ClearCart:
		return CartState{Items: []CartItem{}}
	}
	return s
}

func (s CartState) index(id string) int {
	return slices.IndexFunc(s.Items, func(it CartItem) bool { return it.Recipe.ID == id })
}

// Contains reports whether the recipe is in the cart.
func (s CartState) Contains(id string) bool { return s.index(id) >= 0 }

// Count is the total number of units across all lines.
func (s CartState) Count() int {
	n := 0
	for _, it := range s.Items {
		n += it.Quantity
	}
	return n
}

// Total is the sum of unitPrice × quantity over all lines, in cents.
func (s CartState) Total(unitPrice int64) int64 {
	var total int64
	for _, it := range s.Items {
		total += unitPrice * int64(it.Quantity)
	}
	return total
}

// Cart is the persisted cart container. Safe for concurrent use.
type Cart struct {
	mu        sync.RWMutex
	state     CartState
	items     record[[]CartItem]
	unitPrice int64
}

func NewCart(state storage.State, unitPriceCents int64) *Cart {
	if unitPriceCents <= 0 {
		unitPriceCents = DefaultUnitPriceCents
	}
	return &Cart{
		state:     CartState{Items: []CartItem{}},
		items:     record[[]CartItem]{name: KeyCart, state: state},
		unitPrice: unitPriceCents,
	}
}

// Load replaces the in-memory cart with the persisted one.
func (c *Cart) Load(ctx context.Context) error {
	items, err := c.items.load(ctx, []CartItem{})
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.state = CartState{Items: items}
	slog.Info("STORE: Cart loaded", "items", len(items))
	return nil
}

// Dispatch reduces a into the cart and persists the full resulting item list.
func (c *Cart) Dispatch(ctx context.Context, a CartAction) (CartState, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	next := ReduceCart(c.state, a)
	if err := c.items.save(ctx, next.Items); err != nil {
		slog.Error("STORE: Failed to persist cart", "action", actionName(a), "error", err)
		return c.state, err
	}
	c.state = next
	return next, nil
}

func (c *Cart) Add(ctx context.Context, r mealdb.Recipe) error {
	_, err := c.Dispatch(ctx, AddToCart{Recipe: r})
	return err
}

func (c *Cart) Remove(ctx context.Context, id string) error {
	_, err := c.Dispatch(ctx, RemoveFromCart{ID: id})
	return err
}

func (c *Cart) SetQuantity(ctx context.Context, id string, quantity int) error {
	_, err := c.Dispatch(ctx, SetCartQuantity{ID: id, Quantity: quantity})
	return err
}

func (c *Cart) Clear(ctx context.Context) error {
	_, err := c.Dispatch(ctx, ClearCart{})
	return err
}

// State returns a copy of the current cart.
func (c *Cart) State() CartState {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return CartState{Items: slices.Clone(c.state.Items)}
}

// Total is the current cart total in cents.
func (c *Cart) Total() int64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state.Total(c.unitPrice)
}

func (c *Cart) UnitPrice() int64 { return c.unitPrice }

// Count is the number of units in the cart.
func (c *Cart) Count() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state.Count()
}
