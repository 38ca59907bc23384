package catalog

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"recipebox"
	"recipebox/mealdb"
)

func meal(id, name string) mealdb.Recipe { return mealdb.Recipe{ID: id, Name: name} }

func detail(id, name, category string) mealdb.Recipe {
	return mealdb.Recipe{ID: id, Name: name, Category: category}
}

// recordingLogger keeps every logged run.
type recordingLogger struct {
	mu   sync.Mutex
	runs []recipebox.FilterRunLog
}

func (l *recordingLogger) LogRun(run recipebox.FilterRunLog) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.runs = append(l.runs, run)
	return nil
}

func (l *recordingLogger) last() recipebox.FilterRunLog {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.runs[len(l.runs)-1]
}

func fixtureSource() *StaticSource {
	return &StaticSource{
		CategoryList: []mealdb.Category{{ID: "1", Name: "Beef"}, {ID: "3", Name: "Dessert"}},
		Areas: map[string][]mealdb.Recipe{
			"American": {meal("52854", "Pancakes"), meal("52855", "Banana Pancakes")},
			"Italian":  {meal("52771", "Spicy Arrabiata Penne")},
			"Indian":   {meal("52785", "Dal fry")},
		},
		Names: map[string][]mealdb.Recipe{
			"chicken": {meal("52795", "Chicken Handi"), meal("52831", "Chicken Karaage"), meal("53026", "Chicken Pie")},
			"pie":     {meal("53026", "Chicken Pie"), meal("52807", "Key Lime Pie"), meal("52900", "Apple Pie")},
		},
		ByCategory: map[string][]mealdb.Recipe{
			"Dessert": {meal("52807", "Key Lime Pie"), meal("52900", "Apple Pie"), meal("52854", "Pancakes")},
		},
		ByIngredient: map[string][]mealdb.Recipe{
			"Eggs":  {meal("52854", "Pancakes"), meal("52900", "Apple Pie"), meal("53026", "Chicken Pie")},
			"Limes": {meal("52807", "Key Lime Pie")},
		},
		Details: map[string]mealdb.Recipe{
			"52795": detail("52795", "Chicken Handi", "Chicken"),
			"52831": detail("52831", "Chicken Karaage", "Chicken"),
			"53026": detail("53026", "Chicken Pie", "Chicken"),
			"52807": detail("52807", "Key Lime Pie", "Dessert"),
			"52900": detail("52900", "Apple Pie", "Dessert"),
		},
	}
}

func ids(recipes []mealdb.Recipe) []string {
	out := make([]string, 0, len(recipes))
	for _, r := range recipes {
		out = append(out, r.ID)
	}
	return out
}

func TestEngine_LoadBaseline(t *testing.T) {
	src := fixtureSource()
	e := NewEngine(src, Options{})

	require.NoError(t, e.LoadBaseline(context.Background()))
	assert.Equal(t, []string{"52854", "52855", "52771", "52785"}, ids(e.Baseline()), "areas concatenated in configured order")
	assert.Len(t, e.Categories(), 2)
	assert.Equal(t, 3, src.Calls("filter_by_area"))
	assert.Equal(t, 1, src.Calls("categories"))

	baseline := e.Baseline()
	baseline[0].Name = "changed"
	assert.Equal(t, "Pancakes", e.Baseline()[0].Name, "Baseline returns a copy")
}

func TestEngine_LoadBaseline_CustomAreas(t *testing.T) {
	e := NewEngine(fixtureSource(), Options{Areas: []string{"Indian", "American"}})
	require.NoError(t, e.LoadBaseline(context.Background()))
	assert.Equal(t, []string{"52785", "52854", "52855"}, ids(e.Baseline()))
}

func TestEngine_LoadBaseline_Error(t *testing.T) {
	src := fixtureSource()
	src.Err = errors.New("connection refused")
	e := NewEngine(src, Options{})

	err := e.LoadBaseline(context.Background())
	require.ErrorIs(t, err, src.Err)
	assert.Empty(t, e.Baseline())
	assert.Empty(t, e.Categories())
	assert.ErrorIs(t, e.BaselineErr(), src.Err)
	assert.False(t, e.BaselineLoaded())

	src.Err = nil
	require.NoError(t, e.LoadBaseline(context.Background()))
	assert.NoError(t, e.BaselineErr())
	assert.True(t, e.BaselineLoaded())
}

func TestEngine_FilterLoadsMissingBaseline(t *testing.T) {
	src := fixtureSource()
	e := NewEngine(src, Options{})

	got, err := e.Filter(context.Background(), Criteria{})
	require.NoError(t, err)
	assert.Equal(t, []string{"52854", "52855", "52771", "52785"}, ids(got))
	assert.Equal(t, 3, src.Calls("filter_by_area"))

	_, err = e.Filter(context.Background(), Criteria{})
	require.NoError(t, err)
	assert.Equal(t, 3, src.Calls("filter_by_area"), "loaded once")
}

func TestEngine_CancelledRunIsNotAFailure(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	src := fixtureSource()
	src.Block = make(chan struct{})
	e := NewEngine(src, Options{Meter: provider.Meter("test")})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := e.Filter(ctx, Criteria{Search: "chicken"})
	require.ErrorIs(t, err, context.Canceled)

	src.Err = errors.New("timeout")
	_, err = e.Filter(context.Background(), Criteria{Category: "Dessert"})
	require.Error(t, err)

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))
	sums := map[string]int64{}
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if sum, ok := m.Data.(metricdata.Sum[int64]); ok {
				for _, dp := range sum.DataPoints {
					sums[m.Name] += dp.Value
				}
			}
		}
	}
	assert.Equal(t, int64(2), sums["catalog_filter_runs_total"])
	assert.Equal(t, int64(1), sums["catalog_filter_runs_cancelled_total"])
	assert.Equal(t, int64(1), sums["catalog_filter_runs_failed_total"])
}

func TestEngine_Filter(t *testing.T) {
	tests := []struct {
		name     string
		criteria Criteria
		want     []string
		steps    []string
	}{
		{
			name:     "empty criteria returns baseline",
			criteria: Criteria{},
			want:     []string{"52854", "52855", "52771", "52785"},
			steps:    []string{"baseline"},
		},
		{
			name:     "blank criteria count as empty",
			criteria: Criteria{Search: "  ", Category: "\t"},
			want:     []string{"52854", "52855", "52771", "52785"},
			steps:    []string{"baseline"},
		},
		{
			name:     "search only",
			criteria: Criteria{Search: "chicken"},
			want:     []string{"52795", "52831", "53026"},
			steps:    []string{"search_by_name"},
		},
		{
			name:     "category only",
			criteria: Criteria{Category: "Dessert"},
			want:     []string{"52807", "52900", "52854"},
			steps:    []string{"filter_by_category"},
		},
		{
			name:     "ingredient only",
			criteria: Criteria{Ingredient: "Eggs"},
			want:     []string{"52854", "52900", "53026"},
			steps:    []string{"filter_by_ingredient"},
		},
		{
			name:     "search and category narrows by detail category",
			criteria: Criteria{Search: "pie", Category: "Dessert"},
			want:     []string{"52807", "52900"},
			steps:    []string{"search_by_name", "narrow_by_category"},
		},
		{
			name:     "search chicken in Dessert is empty",
			criteria: Criteria{Search: "chicken", Category: "Dessert"},
			want:     []string{},
			steps:    []string{"search_by_name", "narrow_by_category"},
		},
		{
			name:     "search and ingredient intersects",
			criteria: Criteria{Search: "pie", Ingredient: "Eggs"},
			want:     []string{"53026", "52900"},
			steps:    []string{"search_by_name", "intersect_ingredient"},
		},
		{
			name:     "category and ingredient intersects",
			criteria: Criteria{Category: "Dessert", Ingredient: "Limes"},
			want:     []string{"52807"},
			steps:    []string{"filter_by_category", "intersect_ingredient"},
		},
		{
			name:     "all three",
			criteria: Criteria{Search: "pie", Category: "Dessert", Ingredient: "Eggs"},
			want:     []string{"52900"},
			steps:    []string{"search_by_name", "narrow_by_category", "intersect_ingredient"},
		},
		{
			name:     "unknown search",
			criteria: Criteria{Search: "zzz"},
			want:     []string{},
			steps:    []string{"search_by_name"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger := &recordingLogger{}
			e := NewEngine(fixtureSource(), Options{Logger: logger})
			require.NoError(t, e.LoadBaseline(context.Background()))

			got, err := e.Filter(context.Background(), tt.criteria)
			require.NoError(t, err)
			assert.Equal(t, tt.want, ids(got))

			run := logger.last()
			var steps []string
			for _, s := range run.Steps {
				steps = append(steps, s.Name)
			}
			assert.Equal(t, tt.steps, steps)
			assert.Equal(t, len(tt.want), run.Results)
			assert.Empty(t, run.Error)
		})
	}
}

func TestEngine_Filter_DetailLookups(t *testing.T) {
	src := fixtureSource()
	e := NewEngine(src, Options{})

	_, err := e.Filter(context.Background(), Criteria{Search: "pie", Category: "Dessert"})
	require.NoError(t, err)
	assert.Equal(t, 3, src.Calls("lookup"), "one lookup per candidate")
	assert.Zero(t, src.Calls("filter_by_category"), "search takes precedence over category")
}

func TestEngine_Filter_DropsUnknownDetails(t *testing.T) {
	src := fixtureSource()
	delete(src.Details, "52807")
	e := NewEngine(src, Options{})

	got, err := e.Filter(context.Background(), Criteria{Search: "pie", Category: "Dessert"})
	require.NoError(t, err)
	assert.Equal(t, []string{"52900"}, ids(got))
}

func TestEngine_Filter_ConcurrentLookupsKeepOrder(t *testing.T) {
	src := fixtureSource()
	var candidates []mealdb.Recipe
	for _, id := range []string{"a", "b", "c", "d", "e", "f", "g", "h"} {
		candidates = append(candidates, meal(id, id))
		category := "Beef"
		if id == "b" || id == "e" || id == "h" {
			category = "Dessert"
		}
		src.Details[id] = detail(id, id, category)
	}
	src.Names["many"] = candidates

	for _, n := range []int{1, 3, 8, 20} {
		e := NewEngine(src, Options{DetailConcurrency: n})
		got, err := e.Filter(context.Background(), Criteria{Search: "many", Category: "Dessert"})
		require.NoError(t, err)
		assert.Equal(t, []string{"b", "e", "h"}, ids(got), "concurrency %d", n)
	}
}

func TestEngine_Filter_Error(t *testing.T) {
	src := fixtureSource()
	src.Err = errors.New("503 Service Unavailable")
	logger := &recordingLogger{}
	e := NewEngine(src, Options{Logger: logger})

	got, err := e.Filter(context.Background(), Criteria{Category: "Dessert"})
	require.ErrorIs(t, err, src.Err)
	assert.Nil(t, got)
	assert.Contains(t, err.Error(), "filter_by_category")

	run := logger.last()
	assert.NotEmpty(t, run.Error)
	require.Len(t, run.Steps, 1)
	assert.NotEmpty(t, run.Steps[0].Error)
}

func TestIntersect(t *testing.T) {
	working := []mealdb.Recipe{meal("1", "a"), meal("2", "b"), meal("3", "c")}
	listing := []mealdb.Recipe{meal("3", "c"), meal("1", "a"), meal("9", "z")}

	assert.Equal(t, []string{"1", "3"}, ids(intersect(working, listing)))
	assert.Empty(t, intersect(working, nil))
	assert.Empty(t, intersect(nil, listing))
}
