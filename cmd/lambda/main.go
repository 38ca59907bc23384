package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/joeshaw/envdecode"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"recipebox"
	"recipebox/catalog"
	"recipebox/mealdb"
)

type Params struct {
	Search     string `json:"search"`
	Category   string `json:"category"`
	Ingredient string `json:"ingredient"`
	Page       int    `json:"page"`
}

type Results struct {
	catalog.Page[mealdb.Recipe]
	Pager []int `json:"pager,omitempty"`
}

// queryHandler answers a single catalog query. The engine fetches the baseline only for
// queries without criteria.
type queryHandler struct {
	engine   *catalog.Engine
	pageSize int
	tracer   trace.Tracer
}

func (h *queryHandler) handle(ctx context.Context, params Params) (Results, error) {
	ctx, span := h.tracer.Start(ctx, "Lambda.Query", trace.WithAttributes(
		attribute.String("criteria.search", params.Search),
		attribute.String("criteria.category", params.Category),
		attribute.String("criteria.ingredient", params.Ingredient),
		attribute.Int("page", params.Page),
	))
	defer span.End()

	criteria := catalog.Criteria{Search: params.Search, Category: params.Category, Ingredient: params.Ingredient}.Normalize()
	recipes, err := h.engine.Filter(ctx, criteria)
	if err != nil {
		slog.Error("RESULT: Error applying filters", "error", err)
		return Results{}, err
	}

	page := params.Page
	if page == 0 {
		page = 1
	}
	p := catalog.Paginate(recipes, page, h.pageSize)
	return Results{Page: p, Pager: catalog.PageNumbers(p.Page, p.TotalPages)}, nil
}

func main() {
	fn := func(ctx context.Context, params Params) (Results, error) {
		var catalogConfig recipebox.CatalogConfig
		if err := envdecode.Decode(&catalogConfig); err != nil {
			log.Fatalf("Failed to decode: %s", err)
		}

		var serverConfig recipebox.ServerConfig
		if err := envdecode.Decode(&serverConfig); err != nil {
			log.Fatalf("Failed to decode: %s", err)
		}

		telemetry := recipebox.NoopTelemetry()
		if serverConfig.TelemetryEnabled {
			var err error
			telemetry, err = recipebox.InitOtel(ctx, recipebox.TracerNameLambda)
			if err != nil {
				slog.Error("SETUP: Failed to initialize OpenTelemetry", "error", err)
				return Results{}, err
			}
		}
		defer func() {
			if err := telemetry.Shutdown(ctx); err != nil {
				slog.Error("SETUP: Failed to shutdown OpenTelemetry", "error", err)
			}
		}()

		client, err := mealdb.NewClient(mealdb.ClientOpts{
			BaseURL:    catalogConfig.MealDBBaseURL,
			HTTPClient: &http.Client{Timeout: catalogConfig.RequestTimeout},
			Tracer:     telemetry.Tracer(recipebox.TracerNameMealDB),
		})
		if err != nil {
			slog.Error("SETUP: Failed to create recipe API client", "error", err)
			return Results{}, err
		}

		h := &queryHandler{
			engine: catalog.NewEngine(client, catalog.Options{
				Areas:             catalogConfig.BaselineAreas,
				DetailConcurrency: catalogConfig.DetailConcurrency,
				Logger:            recipebox.NewStdoutFilterLogger(),
				Tracer:            telemetry.Tracer(recipebox.TracerNameCatalog),
				Meter:             telemetry.Meter(recipebox.TracerNameCatalog),
			}),
			pageSize: catalogConfig.PageSize,
			tracer:   telemetry.Tracer(recipebox.TracerNameLambda),
		}
		slog.Info("SETUP: Catalog engine initialized", "areas", catalogConfig.BaselineAreas)

		return h.handle(ctx, params)
	}

	lambda.Start(fn)
}
