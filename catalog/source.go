// Package catalog composes the recipe list shown on the catalog screen from search,
// category and ingredient criteria, and paginates the result.
package catalog

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"recipebox/mealdb"
)

// Source is the subset of the recipe API the engine needs. *mealdb.Client satisfies it.
type Source interface {
	Categories(ctx context.Context) ([]mealdb.Category, error)
	FilterByArea(ctx context.Context, area string) ([]mealdb.Recipe, error)
	SearchByName(ctx context.Context, name string) ([]mealdb.Recipe, error)
	FilterByCategory(ctx context.Context, category string) ([]mealdb.Recipe, error)
	FilterByIngredient(ctx context.Context, ingredient string) ([]mealdb.Recipe, error)
	Lookup(ctx context.Context, id string) (*mealdb.Recipe, error)
}

var _ Source = (*mealdb.Client)(nil)

// StaticSource serves canned data, keyed by the query value. Calls are counted so tests
// can assert which endpoints a filter run touched.
type StaticSource struct {
	CategoryList []mealdb.Category
	Areas        map[string][]mealdb.Recipe
	Names        map[string][]mealdb.Recipe
	ByCategory   map[string][]mealdb.Recipe
	ByIngredient map[string][]mealdb.Recipe
	Details      map[string]mealdb.Recipe

	// Err, when set, is returned by every call.
	Err error
	// Block, when set, is waited on (or ctx cancellation) before SearchByName returns.
	Block chan struct{}

	mu    sync.Mutex
	calls map[string]int
}

func (s *StaticSource) record(op string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.calls == nil {
		s.calls = make(map[string]int)
	}
	s.calls[op]++
}

// Calls returns how many times op was invoked.
func (s *StaticSource) Calls(op string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[op]
}

func (s *StaticSource) Categories(ctx context.Context) ([]mealdb.Category, error) {
	s.record("categories")
	if s.Err != nil {
		return nil, s.Err
	}
	return s.CategoryList, nil
}

func (s *StaticSource) FilterByArea(ctx context.Context, area string) ([]mealdb.Recipe, error) {
	s.record("filter_by_area")
	return s.lookup(s.Areas, area)
}

func (s *StaticSource) SearchByName(ctx context.Context, name string) ([]mealdb.Recipe, error) {
	s.record("search_by_name")
	if s.Block != nil {
		select {
		case <-s.Block:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return s.lookup(s.Names, strings.ToLower(name))
}

func (s *StaticSource) FilterByCategory(ctx context.Context, category string) ([]mealdb.Recipe, error) {
	s.record("filter_by_category")
	return s.lookup(s.ByCategory, category)
}

func (s *StaticSource) FilterByIngredient(ctx context.Context, ingredient string) ([]mealdb.Recipe, error) {
	s.record("filter_by_ingredient")
	return s.lookup(s.ByIngredient, ingredient)
}

func (s *StaticSource) Lookup(ctx context.Context, id string) (*mealdb.Recipe, error) {
	s.record("lookup")
	if s.Err != nil {
		return nil, s.Err
	}
	r, ok := s.Details[id]
	if !ok {
		return nil, fmt.Errorf("lookup %s: %w", id, mealdb.ErrNotFound)
	}
	return &r, nil
}

func (s *StaticSource) lookup(m map[string][]mealdb.Recipe, key string) ([]mealdb.Recipe, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	return append([]mealdb.Recipe{}, m[key]...), nil
}
