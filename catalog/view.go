package catalog

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"sync"

	"recipebox/mealdb"
)

// ErrSuperseded is returned by View.Apply when a newer Apply started before it finished.
// Its results are discarded.
var ErrSuperseded = errors.New("filter superseded by a newer request")

// Messages shown on the catalog screen when a fetch fails.
const (
	FilterErrorMessage   = "Error applying filters"
	BaselineErrorMessage = "Failed to fetch recipes"
)

// View is the catalog screen state: the active criteria, the filtered results, the
// selected page and the error banner. Safe for concurrent use.
type View struct {
	engine   *Engine
	pageSize int

	mu         sync.Mutex
	criteria   Criteria
	results    []mealdb.Recipe
	page       int
	errMsg     string
	generation uint64
	cancel     context.CancelFunc
}

// Snapshot describes what the catalog screen currently shows.
type Snapshot struct {
	Criteria   Criteria `json:"criteria"`
	Page       int      `json:"page"`
	TotalPages int      `json:"total_pages"`
	Total      int      `json:"total"`
	Pager      []int    `json:"pager,omitempty"`
	Error      string   `json:"error,omitempty"`
}

// NewView starts on page 1 of the engine's baseline. A non-positive pageSize selects
// CatalogPageSize. If the baseline failed to load the view opens with the error banner.
func NewView(engine *Engine, pageSize int) *View {
	if pageSize <= 0 {
		pageSize = CatalogPageSize
	}
	v := &View{
		engine:   engine,
		pageSize: pageSize,
		results:  engine.Baseline(),
		page:     1,
	}
	if engine.BaselineErr() != nil {
		v.errMsg = BaselineErrorMessage
	}
	return v
}

// Apply sets the criteria, resets to page 1 and runs the filter. Starting an Apply cancels
// any run still in flight; only the latest run's outcome is kept and earlier callers get
// ErrSuperseded. On failure the error banner is set and the previous results stay.
func (v *View) Apply(ctx context.Context, c Criteria) (Page[mealdb.Recipe], error) {
	c = c.Normalize()

	v.mu.Lock()
	if v.cancel != nil {
		v.cancel()
	}
	v.generation++
	gen := v.generation
	runCtx, cancel := context.WithCancel(ctx)
	v.cancel = cancel
	v.criteria = c
	v.page = 1
	v.mu.Unlock()

	results, err := v.engine.run(runCtx, gen, c)

	v.mu.Lock()
	defer v.mu.Unlock()
	cancel()
	if gen != v.generation {
		slog.Info("CATALOG: Discarding superseded filter result", "generation", gen, "latest", v.generation)
		return Page[mealdb.Recipe]{}, ErrSuperseded
	}
	v.cancel = nil

	if err != nil {
		v.errMsg = FilterErrorMessage
		if c.IsZero() {
			v.errMsg = BaselineErrorMessage
		}
		return v.current(), err
	}
	v.results = results
	v.errMsg = ""
	return v.current(), nil
}

// Reset clears the criteria and error and shows the baseline from page 1. Any run in flight
// is superseded. When no baseline is loaded, or the last load failed, it is fetched again;
// a failure leaves the baseline error banner up.
func (v *View) Reset(ctx context.Context) (Page[mealdb.Recipe], error) {
	v.mu.Lock()
	if v.cancel != nil {
		v.cancel()
		v.cancel = nil
	}
	v.generation++
	gen := v.generation
	v.criteria = Criteria{}
	v.page = 1
	v.mu.Unlock()

	var err error
	if !v.engine.BaselineLoaded() || v.engine.BaselineErr() != nil {
		err = v.engine.LoadBaseline(ctx)
	}

	v.mu.Lock()
	defer v.mu.Unlock()
	if gen != v.generation {
		return Page[mealdb.Recipe]{}, ErrSuperseded
	}
	v.results = v.engine.Baseline()
	v.errMsg = ""
	if err != nil {
		v.errMsg = BaselineErrorMessage
	}
	return v.current(), err
}

// SetPage selects page n. Pages out of range show no items.
func (v *View) SetPage(n int) Page[mealdb.Recipe] {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.page = n
	return v.current()
}

// Current returns the selected page of the current results.
func (v *View) Current() Page[mealdb.Recipe] {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.current()
}

func (v *View) Criteria() Criteria {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.criteria
}

// Results returns a copy of the full filtered sequence.
func (v *View) Results() []mealdb.Recipe {
	v.mu.Lock()
	defer v.mu.Unlock()
	return slices.Clone(v.results)
}

func (v *View) Snapshot() Snapshot {
	v.mu.Lock()
	defer v.mu.Unlock()
	p := v.current()
	return Snapshot{
		Criteria:   v.criteria,
		Page:       p.Page,
		TotalPages: p.TotalPages,
		Total:      p.TotalItems,
		Pager:      PageNumbers(p.Page, p.TotalPages),
		Error:      v.errMsg,
	}
}

func (v *View) current() Page[mealdb.Recipe] {
	return Paginate(v.results, v.page, v.pageSize)
}
