package catalog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	metricnoop "go.opentelemetry.io/otel/metric/noop"
	"go.opentelemetry.io/otel/trace"
	tracenoop "go.opentelemetry.io/otel/trace/noop"
	"golang.org/x/sync/errgroup"

	"recipebox"
	"recipebox/mealdb"
)

// DefaultAreas are the regions whose recipes make up the unfiltered catalog.
var DefaultAreas = []string{"American", "Italian", "Indian"}

// Options configures an Engine. Zero values select the defaults.
type Options struct {
	Areas []string
	// DetailConcurrency bounds the detail lookups used to narrow a search by category.
	// 1 (the default) looks candidates up one at a time.
	DetailConcurrency int
	Logger            recipebox.FilterLogger
	Tracer            trace.Tracer
	Meter             metric.Meter
}

// Engine runs filter queries against a Source and holds the baseline catalog.
type Engine struct {
	src         Source
	areas       []string
	concurrency int
	logger      recipebox.FilterLogger
	tracer      trace.Tracer

	runs          metric.Int64Counter
	runsFailed    metric.Int64Counter
	runsCancelled metric.Int64Counter
	detailLookups metric.Int64Counter
	duration      metric.Float64Histogram

	mu          sync.RWMutex
	baseline    []mealdb.Recipe
	categories  []mealdb.Category
	loaded      bool
	baselineErr error
}

func NewEngine(src Source, opts Options) *Engine {
	e := &Engine{
		src:         src,
		areas:       opts.Areas,
		concurrency: opts.DetailConcurrency,
		logger:      opts.Logger,
		tracer:      opts.Tracer,
		baseline:    []mealdb.Recipe{},
		categories:  []mealdb.Category{},
	}
	if len(e.areas) == 0 {
		e.areas = DefaultAreas
	}
	if e.concurrency < 1 {
		e.concurrency = 1
	}
	if e.logger == nil {
		e.logger = recipebox.NewNoOpFilterLogger()
	}
	if e.tracer == nil {
		e.tracer = tracenoop.NewTracerProvider().Tracer(recipebox.TracerNameCatalog)
	}

	meter := opts.Meter
	if meter == nil {
		meter = metricnoop.NewMeterProvider().Meter(recipebox.TracerNameCatalog)
	}
	e.runs, _ = meter.Int64Counter("catalog_filter_runs_total",
		metric.WithDescription("Total number of catalog filter runs"))
	e.runsFailed, _ = meter.Int64Counter("catalog_filter_runs_failed_total",
		metric.WithDescription("Total number of catalog filter runs that failed"))
	e.runsCancelled, _ = meter.Int64Counter("catalog_filter_runs_cancelled_total",
		metric.WithDescription("Total number of catalog filter runs cancelled before completion"))
	e.detailLookups, _ = meter.Int64Counter("catalog_detail_lookups_total",
		metric.WithDescription("Total number of recipe detail lookups issued while narrowing by category"))
	e.duration, _ = meter.Float64Histogram("catalog_filter_duration_seconds",
		metric.WithDescription("Duration of catalog filter runs in seconds"))

	return e
}

// LoadBaseline fetches the categories and every configured area concurrently. The baseline
// is the area results concatenated in configured order. A failure is remembered until a
// later load succeeds; a previously loaded baseline is kept.
func (e *Engine) LoadBaseline(ctx context.Context) error {
	ctx, span := e.tracer.Start(ctx, "Engine.LoadBaseline")
	defer span.End()

	g, gctx := errgroup.WithContext(ctx)

	var categories []mealdb.Category
	g.Go(func() error {
		var err error
		categories, err = e.src.Categories(gctx)
		if err != nil {
			return fmt.Errorf("categories: %w", err)
		}
		return nil
	})

	perArea := make([][]mealdb.Recipe, len(e.areas))
	for i, area := range e.areas {
		g.Go(func() error {
			recipes, err := e.src.FilterByArea(gctx, area)
			if err != nil {
				return fmt.Errorf("area %s: %w", area, err)
			}
			perArea[i] = recipes
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		span.SetStatus(codes.Error, "baseline load failed")
		span.RecordError(err)
		slog.Error("CATALOG: Failed to load baseline", "error", err)
		err = fmt.Errorf("load baseline: %w", err)
		e.mu.Lock()
		e.baselineErr = err
		e.mu.Unlock()
		return err
	}

	baseline := slices.Concat(perArea...)
	if baseline == nil {
		baseline = []mealdb.Recipe{}
	}
	if categories == nil {
		categories = []mealdb.Category{}
	}

	e.mu.Lock()
	e.baseline = baseline
	e.categories = categories
	e.loaded = true
	e.baselineErr = nil
	e.mu.Unlock()

	span.SetAttributes(attribute.Int("baseline.size", len(baseline)), attribute.Int("categories.count", len(categories)))
	slog.Info("CATALOG: Baseline loaded", "areas", e.areas, "recipes", len(baseline), "categories", len(categories))
	return nil
}

// Baseline returns a copy of the unfiltered catalog.
func (e *Engine) Baseline() []mealdb.Recipe {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return slices.Clone(e.baseline)
}

// BaselineErr reports why the most recent baseline load failed, or nil.
func (e *Engine) BaselineErr() error {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.baselineErr
}

// BaselineLoaded reports whether a baseline load has ever succeeded.
func (e *Engine) BaselineLoaded() bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.loaded
}

// Categories returns a copy of the category list fetched with the baseline.
func (e *Engine) Categories() []mealdb.Category {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return slices.Clone(e.categories)
}

// Source returns the recipe source the engine queries.
func (e *Engine) Source() Source { return e.src }

// Filter returns the recipes matching c, in source order.
//
//  1. a search replaces the working set with the name search result;
//  2. otherwise a category replaces it with the category listing;
//  3. otherwise an ingredient replaces it with the ingredient listing;
//  4. search and category together keep only candidates whose detail category matches;
//  5. an ingredient alongside a search or category intersects with the ingredient listing.
//
// Empty criteria return the baseline, loading it first if no load has succeeded yet.
func (e *Engine) Filter(ctx context.Context, c Criteria) ([]mealdb.Recipe, error) {
	return e.run(ctx, 0, c)
}

func (e *Engine) run(ctx context.Context, generation uint64, c Criteria) ([]mealdb.Recipe, error) {
	c = c.Normalize()
	start := time.Now()

	ctx, span := e.tracer.Start(ctx, "Engine.Filter", trace.WithAttributes(
		attribute.String("criteria.search", c.Search),
		attribute.String("criteria.category", c.Category),
		attribute.String("criteria.ingredient", c.Ingredient),
		attribute.Int64("generation", int64(generation)),
	))
	defer span.End()

	e.runs.Add(ctx, 1)
	runLog := recipebox.FilterRunLog{
		Generation: generation,
		Timestamp:  start,
		Search:     c.Search,
		Category:   c.Category,
		Ingredient: c.Ingredient,
	}

	slog.Info("CATALOG: Applying filters", "search", c.Search, "category", c.Category, "ingredient", c.Ingredient, "generation", generation)

	result, err := e.compose(ctx, c, &runLog)

	elapsed := time.Since(start)
	e.duration.Record(ctx, elapsed.Seconds())
	runLog.DurationMS = elapsed.Milliseconds()
	runLog.Results = len(result)
	switch {
	case errors.Is(err, context.Canceled):
		runLog.Error = err.Error()
		e.runsCancelled.Add(ctx, 1)
		span.SetAttributes(attribute.Bool("cancelled", true))
		slog.Info("CATALOG: Filter run cancelled", "generation", generation)
	case err != nil:
		runLog.Error = err.Error()
		e.runsFailed.Add(ctx, 1)
		span.SetStatus(codes.Error, "filter failed")
		span.RecordError(err)
		slog.Error("CATALOG: Filter run failed", "error", err, "generation", generation)
	default:
		span.SetAttributes(attribute.Int("results", len(result)))
		slog.Info("CATALOG: Filter run completed", "results", len(result), "duration_ms", runLog.DurationMS)
	}

	if lerr := e.logger.LogRun(runLog); lerr != nil {
		slog.Warn("CATALOG: Failed to log filter run", "error", lerr)
	}
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (e *Engine) compose(ctx context.Context, c Criteria, runLog *recipebox.FilterRunLog) ([]mealdb.Recipe, error) {
	if c.IsZero() {
		if !e.BaselineLoaded() {
			if err := e.LoadBaseline(ctx); err != nil {
				runLog.Steps = append(runLog.Steps, recipebox.FilterStepLog{Name: "baseline", Error: err.Error()})
				return nil, err
			}
		}
		baseline := e.Baseline()
		runLog.Steps = append(runLog.Steps, recipebox.FilterStepLog{Name: "baseline", Count: len(baseline)})
		return baseline, nil
	}

	var (
		result []mealdb.Recipe
		err    error
	)
	switch {
	case c.Search != "":
		result, err = e.step(ctx, runLog, "search_by_name", c.Search, func(ctx context.Context) ([]mealdb.Recipe, error) {
			return e.src.SearchByName(ctx, c.Search)
		})
	case c.Category != "":
		result, err = e.step(ctx, runLog, "filter_by_category", c.Category, func(ctx context.Context) ([]mealdb.Recipe, error) {
			return e.src.FilterByCategory(ctx, c.Category)
		})
	default:
		result, err = e.step(ctx, runLog, "filter_by_ingredient", c.Ingredient, func(ctx context.Context) ([]mealdb.Recipe, error) {
			return e.src.FilterByIngredient(ctx, c.Ingredient)
		})
	}
	if err != nil {
		return nil, err
	}

	if c.Search != "" && c.Category != "" {
		candidates := result
		result, err = e.step(ctx, runLog, "narrow_by_category", c.Category, func(ctx context.Context) ([]mealdb.Recipe, error) {
			return e.narrowByCategory(ctx, candidates, c.Category)
		})
		if err != nil {
			return nil, err
		}
	}

	if (c.Search != "" || c.Category != "") && c.Ingredient != "" {
		working := result
		result, err = e.step(ctx, runLog, "intersect_ingredient", c.Ingredient, func(ctx context.Context) ([]mealdb.Recipe, error) {
			listing, err := e.src.FilterByIngredient(ctx, c.Ingredient)
			if err != nil {
				return nil, err
			}
			return intersect(working, listing), nil
		})
		if err != nil {
			return nil, err
		}
	}

	if result == nil {
		result = []mealdb.Recipe{}
	}
	return result, nil
}

// step runs fn inside its own span and appends its outcome to the run log.
func (e *Engine) step(ctx context.Context, runLog *recipebox.FilterRunLog, name, input string, fn func(context.Context) ([]mealdb.Recipe, error)) ([]mealdb.Recipe, error) {
	ctx, span := e.tracer.Start(ctx, "Engine.Filter."+name, trace.WithAttributes(attribute.String("input", input)))
	defer span.End()

	start := time.Now()
	out, err := fn(ctx)
	stepLog := recipebox.FilterStepLog{
		Name:       name,
		Input:      input,
		Count:      len(out),
		DurationMS: time.Since(start).Milliseconds(),
	}
	if err != nil {
		stepLog.Error = err.Error()
		span.SetStatus(codes.Error, name+" failed")
		span.RecordError(err)
		runLog.Steps = append(runLog.Steps, stepLog)
		return nil, fmt.Errorf("%s: %w", name, err)
	}

	span.SetAttributes(attribute.Int("count", len(out)))
	runLog.Steps = append(runLog.Steps, stepLog)
	return out, nil
}

// narrowByCategory keeps the candidates whose detail record is in category. Lookups are
// an ordered fold over the candidates: with a concurrency of 1 they run one after another,
// otherwise up to that many run at once. Either way the output keeps candidate order.
// Candidates the API no longer knows are dropped.
func (e *Engine) narrowByCategory(ctx context.Context, candidates []mealdb.Recipe, category string) ([]mealdb.Recipe, error) {
	keep := make([]bool, len(candidates))

	check := func(ctx context.Context, i int) error {
		e.detailLookups.Add(ctx, 1)
		detail, err := e.src.Lookup(ctx, candidates[i].ID)
		if errors.Is(err, mealdb.ErrNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		keep[i] = detail.Category == category
		return nil
	}

	if e.concurrency == 1 {
		for i := range candidates {
			if err := check(ctx, i); err != nil {
				return nil, err
			}
		}
	} else {
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(e.concurrency)
		for i := range candidates {
			g.Go(func() error { return check(gctx, i) })
		}
		if err := g.Wait(); err != nil {
			return nil, err
		}
	}

	out := make([]mealdb.Recipe, 0, len(candidates))
	for i, r := range candidates {
		if keep[i] {
			out = append(out, r)
		}
	}
	return out, nil
}

// intersect keeps the members of working whose id appears in listing, in working order.
func intersect(working, listing []mealdb.Recipe) []mealdb.Recipe {
	ids := make(map[string]struct{}, len(listing))
	for _, r := range listing {
		ids[r.ID] = struct{}{}
	}
	out := make([]mealdb.Recipe, 0, len(working))
	for _, r := range working {
		if _, ok := ids[r.ID]; ok {
			out = append(out, r)
		}
	}
	return out
}
