package mealdb

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"recipebox"
)

// ErrNotFound is returned by Lookup when the API has no meal with the given id.
var ErrNotFound = errors.New("mealdb: recipe not found")

type Client struct {
	baseURL    string
	httpClient recipebox.HTTPClient
	tracer     trace.Tracer
}

type ClientOpts struct {
	BaseURL    string
	HTTPClient recipebox.HTTPClient
	Tracer     trace.Tracer
}

func NewClient(opts ClientOpts) (*Client, error) {
	u, err := url.Parse(opts.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid mealdb base url %q", opts.BaseURL)
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = http.DefaultClient
	}
	if opts.Tracer == nil {
		opts.Tracer = noop.NewTracerProvider().Tracer("")
	}

	return &Client{
		baseURL:    strings.TrimRight(opts.BaseURL, "/"),
		httpClient: opts.HTTPClient,
		tracer:     opts.Tracer,
	}, nil
}

type mealsResponse struct {
	Meals []Recipe `json:"meals"`
}

type categoriesResponse struct {
	Categories []Category `json:"categories"`
}

// Categories lists all meal categories.
func (c *Client) Categories(ctx context.Context) ([]Category, error) {
	var out categoriesResponse
	if err := c.get(ctx, "categories", "categories.php", nil, &out); err != nil {
		return nil, err
	}
	if out.Categories == nil {
		return []Category{}, nil
	}
	return out.Categories, nil
}

// FilterByArea lists meals from a cuisine area, e.g. "Italian".
func (c *Client) FilterByArea(ctx context.Context, area string) ([]Recipe, error) {
	return c.meals(ctx, "filter_by_area", "filter.php", url.Values{"a": {area}})
}

// SearchByName lists meals whose name contains name.
func (c *Client) SearchByName(ctx context.Context, name string) ([]Recipe, error) {
	return c.meals(ctx, "search_by_name", "search.php", url.Values{"s": {name}})
}

// FilterByCategory lists meals in a category, e.g. "Dessert".
func (c *Client) FilterByCategory(ctx context.Context, category string) ([]Recipe, error) {
	return c.meals(ctx, "filter_by_category", "filter.php", url.Values{"c": {category}})
}

// FilterByIngredient lists meals using a main ingredient, e.g. "Chicken".
func (c *Client) FilterByIngredient(ctx context.Context, ingredient string) ([]Recipe, error) {
	return c.meals(ctx, "filter_by_ingredient", "filter.php", url.Values{"i": {ingredient}})
}

// Lookup fetches the full record of one meal.
func (c *Client) Lookup(ctx context.Context, id string) (*Recipe, error) {
	meals, err := c.meals(ctx, "lookup", "lookup.php", url.Values{"i": {id}})
	if err != nil {
		return nil, err
	}
	if len(meals) == 0 {
		return nil, fmt.Errorf("lookup %s: %w", id, ErrNotFound)
	}
	return &meals[0], nil
}

func (c *Client) meals(ctx context.Context, op, path string, query url.Values) ([]Recipe, error) {
	var out mealsResponse
	if err := c.get(ctx, op, path, query, &out); err != nil {
		return nil, err
	}
	// the API answers {"meals": null} for an empty result
	if out.Meals == nil {
		return []Recipe{}, nil
	}
	return out.Meals, nil
}

func (c *Client) get(ctx context.Context, op, path string, query url.Values, out any) error {
	ctx, span := c.tracer.Start(ctx, "mealdb."+op, trace.WithAttributes(
		attribute.String("mealdb.path", path),
		attribute.String("mealdb.query", query.Encode()),
	))
	defer span.End()

	endpoint := c.baseURL + "/" + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return c.fail(span, fmt.Errorf("%s: %w", op, err))
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return c.fail(span, fmt.Errorf("%s: %w", op, err))
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return c.fail(span, fmt.Errorf("%s: read body: %w", op, err))
	}
	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))

	if resp.StatusCode != http.StatusOK {
		return c.fail(span, fmt.Errorf("%s: unexpected status %s", op, resp.Status))
	}

	if err := json.Unmarshal(body, out); err != nil {
		slog.Warn("MEALDB: decode failed", "op", op, "err", err, "body_len", len(body))
		return c.fail(span, fmt.Errorf("%s: decode response: %w", op, err))
	}
	return nil
}

func (c *Client) fail(span trace.Span, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	return err
}
